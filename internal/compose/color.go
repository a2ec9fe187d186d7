package compose

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// BrightnessThreshold splits "dark background, use white text" from "light
// background, use black text". Brightness is the unweighted mean of the
// averaged region's three channels; exactly at the threshold counts as dark.
const BrightnessThreshold = 128

// DecideColors reduces the label's destination region to its average color
// and picks text colors for contrast. The primary color fills the label;
// the secondary is the sampled average itself, used for the drop shadow so
// it blends with the background.
func DecideColors(sample image.Image) (primary, secondary color.NRGBA) {
	// A box-filter resize to a single pixel is an order-independent mean
	// of the region.
	avg := imaging.Resize(sample, 1, 1, imaging.Box).NRGBAAt(0, 0)

	brightness := (float64(avg.R) + float64(avg.G) + float64(avg.B)) / 3
	if brightness > BrightnessThreshold {
		primary = color.NRGBA{A: 255}
	} else {
		primary = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	avg.A = 255
	return primary, avg
}
