package emotion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/visage-chat/visage/internal/metrics"
	"github.com/visage-chat/visage/internal/vectorstore"
)

// Cache resolves emotion descriptions to avatar assets. The five known
// categories resolve through a fixed map; everything else goes through a
// k=1 approximate search against the asset index.
type Cache struct {
	store      vectorstore.Store
	categories map[string]string

	// threshold is the exclusive upper bound on embedding distance for
	// accepting an approximate match. A distance equal to the threshold
	// defers to generation.
	threshold float64
}

// NewCache creates a cache with the given acceptance threshold.
func NewCache(store vectorstore.Store, threshold float64) *Cache {
	categories := make(map[string]string, len(seedAssets))
	for _, asset := range seedAssets {
		categories[asset.category] = asset.ImageRef
	}
	return &Cache{
		store:      store,
		categories: categories,
		threshold:  threshold,
	}
}

// Resolve decides whether a cached asset can represent the emotion.
// A store failure is not propagated: it defers to generation, never to a
// wrong cached image.
func (c *Cache) Resolve(ctx context.Context, category, description string) Resolution {
	// Exact category match is cheaper and more reliable than approximate
	// text similarity, so the known categories skip the index entirely.
	if ref, ok := c.categories[strings.ToLower(category)]; ok {
		metrics.AvatarResolutionsTotal.WithLabelValues("fast_path").Inc()
		return Resolution{ImageRef: ref}
	}

	matches, err := c.store.Query(ctx, description, 1, vectorstore.Filter{})
	if err != nil {
		slog.Warn("emotion cache: query failed, deferring to generation", "error", err)
		metrics.AvatarResolutionsTotal.WithLabelValues("deferred").Inc()
		return Resolution{Deferred: true}
	}

	if len(matches) > 0 && matches[0].Distance < c.threshold {
		metrics.AvatarResolutionsTotal.WithLabelValues("match").Inc()
		return Resolution{ImageRef: matches[0].Metadata[metaImagePath]}
	}

	metrics.AvatarResolutionsTotal.WithLabelValues("deferred").Inc()
	return Resolution{Deferred: true}
}

// Register adds an asset to the index. IDs are globally unique by
// construction; re-registering an ID overwrites it.
func (c *Cache) Register(ctx context.Context, asset Asset) error {
	err := c.store.Upsert(ctx, vectorstore.Document{
		ID:   asset.ID,
		Text: asset.Description,
		Metadata: map[string]string{
			metaImagePath: asset.ImageRef,
			metaSource:    string(asset.Provenance),
		},
	})
	if err != nil {
		return fmt.Errorf("registering asset %s: %w", asset.ID, err)
	}
	return nil
}
