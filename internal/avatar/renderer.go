package avatar

import (
	"context"
	"crypto/sha256"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Renderer produces an avatar image for an emotion description.
type Renderer interface {
	Render(ctx context.Context, emotionDescription string) (image.Image, error)
}

// PlaceholderRenderer paints a deterministic vertical gradient seeded by
// the emotion description. It stands in for a real image-generation
// backend and keeps the pipeline exercisable without one.
type PlaceholderRenderer struct {
	Size int
}

func NewPlaceholderRenderer() *PlaceholderRenderer {
	return &PlaceholderRenderer{Size: 256}
}

func (r *PlaceholderRenderer) Render(_ context.Context, emotionDescription string) (image.Image, error) {
	sum := sha256.Sum256([]byte(emotionDescription))
	top := color.NRGBA{R: sum[0], G: sum[1], B: sum[2], A: 255}
	bottom := color.NRGBA{R: sum[3], G: sum[4], B: sum[5], A: 255}

	img := image.NewNRGBA(image.Rect(0, 0, r.Size, r.Size))
	for y := 0; y < r.Size; y++ {
		t := float64(y) / float64(r.Size-1)
		row := color.NRGBA{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 255,
		}
		for x := 0; x < r.Size; x++ {
			img.SetNRGBA(x, y, row)
		}
	}

	return imaging.Blur(img, 1.5), nil
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
