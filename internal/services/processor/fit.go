package processor

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

var paddingColor = color.NRGBA{A: 255}

// fitContain scales img to fit inside width x height preserving aspect ratio,
// centered on opaque black. The result is always exactly width x height.
func fitContain(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	scale := math.Min(float64(width)/float64(b.Dx()), float64(height)/float64(b.Dy()))

	w := clampDim(int(math.Round(float64(b.Dx())*scale)), width)
	h := clampDim(int(math.Round(float64(b.Dy())*scale)), height)

	resized := imaging.Resize(img, w, h, imaging.Lanczos)
	background := imaging.New(width, height, paddingColor)

	return imaging.PasteCenter(background, resized)
}

func clampDim(v, limit int) int {
	return max(1, min(v, limit))
}
