//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visage-chat/visage/internal/vectorstore"
)

func TestPgStore_QueryRanksByDistance(t *testing.T) {
	pool := startPostgres(t)
	store := vectorstore.NewPgStore(pool, bagEmbedder{}, "ranking")
	ctx := context.Background()

	docs := []vectorstore.Document{
		{ID: "cooking", Text: "recipe for tomato pasta with basil"},
		{ID: "weather", Text: "the forecast says heavy rain tomorrow"},
		{ID: "pasta", Text: "tomato pasta is best with fresh basil"},
	}
	for _, doc := range docs {
		require.NoError(t, store.Upsert(ctx, doc))
	}

	matches, err := store.Query(ctx, "tomato pasta basil", 2, vectorstore.Filter{})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	ids := []string{matches[0].ID, matches[1].ID}
	assert.ElementsMatch(t, []string{"cooking", "pasta"}, ids)
	assert.LessOrEqual(t, matches[0].Distance, matches[1].Distance)
}

func TestPgStore_MetadataFilterScopesQuery(t *testing.T) {
	pool := startPostgres(t)
	store := vectorstore.NewPgStore(pool, bagEmbedder{}, "filtered")
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, vectorstore.Document{
		ID: "a1", Text: "shared subject line",
		Metadata: map[string]string{"session_id": "s1"},
	}))
	require.NoError(t, store.Upsert(ctx, vectorstore.Document{
		ID: "b1", Text: "shared subject line",
		Metadata: map[string]string{"session_id": "s2"},
	}))

	matches, err := store.Query(ctx, "shared subject line", 10,
		vectorstore.Filter{Key: "session_id", Value: "s1"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a1", matches[0].ID)
}

func TestPgStore_CollectionsAreIsolated(t *testing.T) {
	pool := startPostgres(t)
	first := vectorstore.NewPgStore(pool, bagEmbedder{}, "first")
	second := vectorstore.NewPgStore(pool, bagEmbedder{}, "second")
	ctx := context.Background()

	require.NoError(t, first.Upsert(ctx, vectorstore.Document{ID: "only", Text: "isolated content"}))

	matches, err := second.Query(ctx, "isolated content", 10, vectorstore.Filter{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestPgStore_UpsertOverwrites(t *testing.T) {
	pool := startPostgres(t)
	store := vectorstore.NewPgStore(pool, bagEmbedder{}, "overwrite")
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, vectorstore.Document{
		ID: "doc", Text: "original text",
		Metadata: map[string]string{"version": "1"},
	}))
	require.NoError(t, store.Upsert(ctx, vectorstore.Document{
		ID: "doc", Text: "replacement text",
		Metadata: map[string]string{"version": "2"},
	}))

	matches, err := store.Query(ctx, "replacement text", 10, vectorstore.Filter{})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "2", matches[0].Metadata["version"])
}

func TestPgStore_DeleteByFilter(t *testing.T) {
	pool := startPostgres(t)
	store := vectorstore.NewPgStore(pool, bagEmbedder{}, "deletion")
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, vectorstore.Document{
		ID: "keep", Text: "keep me", Metadata: map[string]string{"session_id": "s1"},
	}))
	require.NoError(t, store.Upsert(ctx, vectorstore.Document{
		ID: "drop", Text: "drop me", Metadata: map[string]string{"session_id": "s2"},
	}))

	require.NoError(t, store.Delete(ctx, vectorstore.Filter{Key: "session_id", Value: "s2"}))

	matches, err := store.Query(ctx, "keep me drop me", 10, vectorstore.Filter{})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "keep", matches[0].ID)
}
