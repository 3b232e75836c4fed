//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visage-chat/visage/internal/transcript"
)

func TestRepository_SessionLifecycle(t *testing.T) {
	pool := startPostgres(t)
	repo := transcript.NewRepository(pool)
	ctx := context.Background()

	created, err := repo.CreateSession(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, transcript.DefaultTitle, created.Title)
	assert.Contains(t, created.ID, "session_")

	fetched, err := repo.GetSession(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, created.ID, fetched.ID)

	require.NoError(t, repo.UpdateTitle(ctx, created.ID, "renamed"))
	fetched, err = repo.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", fetched.Title)

	sessions, err := repo.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, repo.DeleteSession(ctx, created.ID))
	gone, err := repo.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRepository_EnsureSessionIsIdempotent(t *testing.T) {
	pool := startPostgres(t)
	repo := transcript.NewRepository(pool)
	ctx := context.Background()

	first, err := repo.EnsureSession(ctx, "session_fixed")
	require.NoError(t, err)
	require.NotNil(t, first)

	require.NoError(t, repo.UpdateTitle(ctx, "session_fixed", "named by first message"))

	second, err := repo.EnsureSession(ctx, "session_fixed")
	require.NoError(t, err)
	assert.Equal(t, "named by first message", second.Title, "ensure must not reset an existing session")
}

func TestRepository_MessagesOrderedAndCascaded(t *testing.T) {
	pool := startPostgres(t)
	repo := transcript.NewRepository(pool)
	ctx := context.Background()

	session, err := repo.CreateSession(ctx, "chat")
	require.NoError(t, err)

	require.NoError(t, repo.AddMessage(ctx, session.ID, transcript.SenderUser, "hello"))
	require.NoError(t, repo.AddMessage(ctx, session.ID, transcript.SenderBot, "hi there"))

	messages, err := repo.ListMessages(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, transcript.SenderUser, messages[0].Sender)
	assert.Equal(t, transcript.SenderBot, messages[1].Sender)

	require.NoError(t, repo.DeleteSession(ctx, session.ID))
	messages, err = repo.ListMessages(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, messages, "messages cascade with their session")
}

func TestRepository_DeleteMissingSessionFails(t *testing.T) {
	pool := startPostgres(t)
	repo := transcript.NewRepository(pool)

	err := repo.DeleteSession(context.Background(), "session_ghost")
	assert.Error(t, err)
}
