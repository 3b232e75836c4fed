//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visage-chat/visage/internal/emotion"
	"github.com/visage-chat/visage/internal/vectorstore"
)

// The bag-of-words embedder keeps identical texts at distance 0 and
// disjoint texts near 1, so a tight threshold separates the two.
const testThreshold = 0.3

func TestEmotionCache_SeedAndResolveRoundTrip(t *testing.T) {
	pool := startPostgres(t)
	store := vectorstore.NewPgStore(pool, bagEmbedder{}, "avatar_emotions")
	cache := emotion.NewCache(store, testThreshold)
	ctx := context.Background()

	require.NoError(t, cache.Seed(ctx))

	res := cache.Resolve(ctx, "happy", "whatever description")
	assert.False(t, res.Deferred)
	assert.Equal(t, "/static/avatars/happy_01.png", res.ImageRef)
}

func TestEmotionCache_GeneratedAssetIsReusable(t *testing.T) {
	pool := startPostgres(t)
	store := vectorstore.NewPgStore(pool, bagEmbedder{}, "avatar_emotions")
	cache := emotion.NewCache(store, testThreshold)
	ctx := context.Background()

	asset := emotion.Asset{
		ID:          "gen_test",
		Description: "eyebrows raised in delighted disbelief",
		ImageRef:    "/static/avatars/generated_test.png",
		Provenance:  emotion.ProvenanceGenerated,
	}
	require.NoError(t, cache.Register(ctx, asset))

	// The exact description now resolves without regeneration.
	res := cache.Resolve(ctx, "surprised", "eyebrows raised in delighted disbelief")
	assert.False(t, res.Deferred)
	assert.Equal(t, "/static/avatars/generated_test.png", res.ImageRef)

	// An unrelated description still defers.
	res = cache.Resolve(ctx, "surprised", "slumped shoulders and a vacant stare")
	assert.True(t, res.Deferred)
}
