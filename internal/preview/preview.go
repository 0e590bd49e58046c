// Package preview decodes an extracted frame for display after a run.
package preview

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxSide bounds the longer edge of a thumbnail in pixels.
const DefaultMaxSide = 320

// Load decodes any format the extractor can write.
func Load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, format, nil
}

// Thumbnail loads path and scales it so the longer edge is at most maxSide,
// keeping the aspect ratio. Stats are measured on the full-size frame.
func Thumbnail(path string, maxSide int) (image.Image, Stats, error) {
	img, _, err := Load(path)
	if err != nil {
		return nil, Stats{}, err
	}
	return Fit(img, maxSide), Measure(img), nil
}

// Fit scales img down to fit a maxSide square. A non-positive maxSide means
// DefaultMaxSide.
func Fit(img image.Image, maxSide int) image.Image {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	b := img.Bounds()
	if b.Dx() <= maxSide && b.Dy() <= maxSide {
		return img
	}
	// resize keeps the ratio when one dimension is 0
	if b.Dx() >= b.Dy() {
		return resize.Resize(uint(maxSide), 0, img, resize.Bilinear)
	}
	return resize.Resize(0, uint(maxSide), img, resize.Bilinear)
}
