package preview

import (
	"fmt"
	"image"
	"math"
)

// Stats summarizes the exposure of a frame.
type Stats struct {
	Width  int
	Height int
	// Brightness is the mean luminance in [0, 255].
	Brightness float64
	// Contrast is the luminance standard deviation.
	Contrast float64
	// Colorfulness is the mean spread between channel averages, in [0, 1].
	Colorfulness float64
}

func (s Stats) String() string {
	return fmt.Sprintf("%dx%d, brightness %.0f, contrast %.0f", s.Width, s.Height, s.Brightness, s.Contrast)
}

// Measure walks every pixel once.
func Measure(img image.Image) Stats {
	bounds := img.Bounds()
	st := Stats{Width: bounds.Dx(), Height: bounds.Dy()}
	pixels := float64(bounds.Dx() * bounds.Dy())
	if pixels == 0 {
		return st
	}

	var rSum, gSum, bSum, lumSum, lumSqSum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rf, gf, bf := float64(r>>8), float64(g>>8), float64(b>>8)
			rSum += rf
			gSum += gf
			bSum += bf
			lum := 0.299*rf + 0.587*gf + 0.114*bf
			lumSum += lum
			lumSqSum += lum * lum
		}
	}

	rMean, gMean, bMean := rSum/pixels, gSum/pixels, bSum/pixels
	st.Brightness = lumSum / pixels
	st.Contrast = math.Sqrt(math.Max(0, lumSqSum/pixels-st.Brightness*st.Brightness))
	spread := math.Abs(rMean-gMean) + math.Abs(gMean-bMean) + math.Abs(bMean-rMean)
	st.Colorfulness = math.Min(1, spread/255)
	return st
}
