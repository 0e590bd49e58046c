package preview

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame_000001.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestThumbnailKeepsAspect(t *testing.T) {
	path := writePNG(t, solid(640, 360, color.RGBA{200, 10, 10, 255}))

	thumb, stats, err := Thumbnail(path, 160)
	require.NoError(t, err)
	assert.Equal(t, 160, thumb.Bounds().Dx())
	assert.Equal(t, 90, thumb.Bounds().Dy())
	assert.Equal(t, 640, stats.Width, "stats come from the full frame")
	assert.Equal(t, 360, stats.Height)
}

func TestThumbnailPortrait(t *testing.T) {
	path := writePNG(t, solid(100, 400, color.White))

	thumb, _, err := Thumbnail(path, 200)
	require.NoError(t, err)
	assert.Equal(t, 50, thumb.Bounds().Dx())
	assert.Equal(t, 200, thumb.Bounds().Dy())
}

func TestThumbnailSmallImageUntouched(t *testing.T) {
	path := writePNG(t, solid(32, 24, color.Black))

	thumb, _, err := Thumbnail(path, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 24), thumb.Bounds())
}

func TestLoadBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame_000001.bmp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, solid(8, 8, color.Gray{128})))
	require.NoError(t, f.Close())

	_, format, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)
}

func TestLoadErrors(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	junk := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0644))
	_, _, err = Load(junk)
	assert.ErrorContains(t, err, "failed to decode")
}

func TestMeasure(t *testing.T) {
	white := Measure(solid(4, 4, color.White))
	assert.InDelta(t, 255, white.Brightness, 0.5)
	assert.InDelta(t, 0, white.Contrast, 0.001)
	assert.InDelta(t, 0, white.Colorfulness, 0.001)

	red := Measure(solid(4, 4, color.RGBA{255, 0, 0, 255}))
	assert.InDelta(t, 0.299*255, red.Brightness, 0.5)
	assert.Greater(t, red.Colorfulness, 0.5)

	half := solid(2, 1, color.Black)
	half.Set(1, 0, color.White)
	st := Measure(half)
	assert.InDelta(t, 127.5, st.Contrast, 0.5)
	assert.Equal(t, "3x2, brightness 0, contrast 0", Measure(solid(3, 2, color.Black)).String())

	assert.Equal(t, Stats{}, Measure(image.NewRGBA(image.Rect(0, 0, 0, 0))))
}
