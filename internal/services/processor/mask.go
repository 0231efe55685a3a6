package processor

import (
	"image"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points so that a quarter curve approximates a circle.
const kappa = 0.5522847498

// roundedRectMask rasterizes an anti-aliased rounded rectangle into an alpha
// mask of the given size. Pixels inside r are opaque, everything else is zero.
func roundedRectMask(size image.Point, r image.Rectangle, radius int) *image.Alpha {
	mask := image.NewAlpha(image.Rectangle{Max: size})
	r = r.Intersect(mask.Bounds())
	if r.Empty() {
		return mask
	}

	x0, y0 := float32(r.Min.X), float32(r.Min.Y)
	x1, y1 := float32(r.Max.X), float32(r.Max.Y)
	rad := float32(math.Min(float64(radius), float64(min(r.Dx(), r.Dy()))/2))

	z := vector.NewRasterizer(size.X, size.Y)
	if rad <= 0 {
		z.MoveTo(x0, y0)
		z.LineTo(x1, y0)
		z.LineTo(x1, y1)
		z.LineTo(x0, y1)
	} else {
		c := rad * (1 - kappa)
		z.MoveTo(x0+rad, y0)
		z.LineTo(x1-rad, y0)
		z.CubeTo(x1-c, y0, x1, y0+c, x1, y0+rad)
		z.LineTo(x1, y1-rad)
		z.CubeTo(x1, y1-c, x1-c, y1, x1-rad, y1)
		z.LineTo(x0+rad, y1)
		z.CubeTo(x0+c, y1, x0, y1-c, x0, y1-rad)
		z.LineTo(x0, y0+rad)
		z.CubeTo(x0, y0+c, x0+c, y0, x0+rad, y0)
	}
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return mask
}

// applyDestinationIn keeps dst pixels only where mask is opaque, scaling
// alpha by the mask coverage. mask must cover dst's bounds.
func applyDestinationIn(dst *image.NRGBA, mask *image.Alpha) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := dst.Pix[dst.PixOffset(b.Min.X, y):]
		for x := b.Min.X; x < b.Max.X; x++ {
			i := (x - b.Min.X) * 4
			m := uint32(mask.AlphaAt(x, y).A)
			if m == 0xff {
				continue
			}
			if m == 0 {
				row[i], row[i+1], row[i+2], row[i+3] = 0, 0, 0, 0
				continue
			}
			row[i+3] = uint8((uint32(row[i+3])*m + 127) / 255)
		}
	}
}
