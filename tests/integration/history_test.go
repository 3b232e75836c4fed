//go:build integration

package integration

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visage-chat/visage/internal/history"
	"github.com/visage-chat/visage/internal/vectorstore"
)

func TestHistoryIndex_AppendAndRetrieve(t *testing.T) {
	pool := startPostgres(t)
	store := vectorstore.NewPgStore(pool, bagEmbedder{}, "chat_history")
	index := history.NewIndex(store)
	ctx := context.Background()

	require.NoError(t, index.Append(ctx, "s1",
		"what is the capital of portugal",
		"The capital of Portugal is Lisbon."))
	require.NoError(t, index.Append(ctx, "s1",
		"how do I cook rice",
		"Rinse the rice, then simmer it covered."))

	got, err := index.RetrieveSemantic(ctx, "s1", "capital portugal lisbon", 1)
	require.NoError(t, err)
	assert.Contains(t, got, "User: what is the capital of portugal")
	assert.Contains(t, got, "AI: The capital of Portugal is Lisbon.")
	// One exchange requested: the rice exchange must not leak in.
	assert.NotContains(t, got, "rice")
}

func TestHistoryIndex_ExchangeCountedOnce(t *testing.T) {
	pool := startPostgres(t)
	store := vectorstore.NewPgStore(pool, bagEmbedder{}, "chat_history")
	index := history.NewIndex(store)
	ctx := context.Background()

	require.NoError(t, index.Append(ctx, "s1", "tell me about whales", "Whales are marine mammals."))

	// Both the question and answer documents match, but the composite
	// appears once.
	got, err := index.RetrieveSemantic(ctx, "s1", "whales marine mammals", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(got, "User: tell me about whales"))
}

func TestHistoryIndex_SessionScoping(t *testing.T) {
	pool := startPostgres(t)
	store := vectorstore.NewPgStore(pool, bagEmbedder{}, "chat_history")
	index := history.NewIndex(store)
	ctx := context.Background()

	require.NoError(t, index.Append(ctx, "s1", "secret plans for the party", "Noted."))

	got, err := index.RetrieveSemantic(ctx, "s2", "secret plans for the party", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistoryIndex_RecentFallbackSentinel(t *testing.T) {
	pool := startPostgres(t)
	store := vectorstore.NewPgStore(pool, bagEmbedder{}, "chat_history")
	index := history.NewIndex(store)

	got := index.RetrieveRecent(context.Background(), "empty-session", history.DefaultRecentN)
	assert.Equal(t, history.NoHistorySentinel, got)
}

func TestHistoryIndex_DeleteSession(t *testing.T) {
	pool := startPostgres(t)
	store := vectorstore.NewPgStore(pool, bagEmbedder{}, "chat_history")
	index := history.NewIndex(store)
	ctx := context.Background()

	require.NoError(t, index.Append(ctx, "s1", "remember this", "I will."))
	require.NoError(t, index.DeleteSession(ctx, "s1"))

	got, err := index.RetrieveSemantic(ctx, "s1", "remember this", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}
