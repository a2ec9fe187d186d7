package compose

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func uniformImage(c color.NRGBA, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDecideColors(t *testing.T) {
	cases := []struct {
		name        string
		region      color.NRGBA
		wantPrimary color.NRGBA
	}{
		{
			name:        "white background gets black text",
			region:      color.NRGBA{255, 255, 255, 255},
			wantPrimary: color.NRGBA{0, 0, 0, 255},
		},
		{
			name:        "black background gets white text",
			region:      color.NRGBA{0, 0, 0, 255},
			wantPrimary: color.NRGBA{255, 255, 255, 255},
		},
		{
			name:        "threshold boundary counts as dark",
			region:      color.NRGBA{128, 128, 128, 255},
			wantPrimary: color.NRGBA{255, 255, 255, 255},
		},
		{
			name:        "just above threshold counts as light",
			region:      color.NRGBA{129, 129, 129, 255},
			wantPrimary: color.NRGBA{0, 0, 0, 255},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			primary, secondary := DecideColors(uniformImage(tc.region, 40, 20))
			assert.Equal(t, tc.wantPrimary, primary)
			assert.Equal(t, tc.region, secondary)
		})
	}
}

func TestDecideColorsMixedRegionAverages(t *testing.T) {
	// Half white, half black averages to mid gray, which reads as dark.
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 0, 0, 255})

	primary, _ := DecideColors(img)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, primary)
}
