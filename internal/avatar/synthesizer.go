package avatar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Synthesizer renders an avatar and persists it under the static root.
type Synthesizer struct {
	renderer  Renderer
	staticDir string
}

func NewSynthesizer(renderer Renderer, staticDir string) *Synthesizer {
	return &Synthesizer{renderer: renderer, staticDir: staticDir}
}

// Execute produces a new avatar image for the emotion description and
// returns its public image ref ("/static/avatars/generated_<id>.png").
// The filename is unique per invocation, so repeated synthesis of the
// same emotion never clobbers an earlier asset.
func (s *Synthesizer) Execute(ctx context.Context, emotionDescription string) (string, error) {
	img, err := s.renderer.Render(ctx, emotionDescription)
	if err != nil {
		return "", fmt.Errorf("rendering avatar: %w", err)
	}

	dir := filepath.Join(s.staticDir, "avatars")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating avatar directory: %w", err)
	}

	name := "generated_" + uuid.NewString() + ".png"
	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("saving avatar image: %w", err)
	}

	return "/static/avatars/" + name, nil
}
