package emotion

import (
	"context"
	"fmt"
	"log/slog"
)

type seedAsset struct {
	Asset
	category string
}

// seedAssets bind each known category to exactly one pre-rendered avatar.
// Every category having a resolvable asset is a precondition for correct
// operation.
var seedAssets = []seedAsset{
	{category: "happy", Asset: Asset{ID: "happy_01", Description: "a warm, friendly smile with happy eyes", ImageRef: "/static/avatars/happy_01.png", Provenance: ProvenanceSeeded}},
	{category: "sad", Asset: Asset{ID: "sad_01", Description: "a sad expression with downcast eyes", ImageRef: "/static/avatars/sad_01.png", Provenance: ProvenanceSeeded}},
	{category: "angry", Asset: Asset{ID: "angry_01", Description: "an angry face with intense eyes", ImageRef: "/static/avatars/angry_01.png", Provenance: ProvenanceSeeded}},
	{category: "confused", Asset: Asset{ID: "confused_01", Description: "a confused look with furrowed brows", ImageRef: "/static/avatars/confused_01.png", Provenance: ProvenanceSeeded}},
	{category: "neutral", Asset: Asset{ID: "neutral_01", Description: "a neutral, calm expression", ImageRef: "/static/avatars/neutral_01.png", Provenance: ProvenanceSeeded}},
}

// Seed registers the category assets in the index. Upserts are idempotent,
// so seeding on every startup is safe.
func (c *Cache) Seed(ctx context.Context) error {
	for _, s := range seedAssets {
		if err := c.Register(ctx, s.Asset); err != nil {
			return fmt.Errorf("seeding %s: %w", s.category, err)
		}
	}
	slog.Info("seeded emotion assets", "count", len(seedAssets))
	return nil
}
