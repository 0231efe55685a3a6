package processor

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/device-mockup/internal/models"
	"github.com/phambaophuc/device-mockup/internal/services/assets"
	"go.uber.org/zap"
)

// SilhouetteMask produces the device outline used to clip the final mockup.
type SilhouetteMask interface {
	Name() string
	Alpha(size image.Point) *image.Alpha
}

// PixelMask is a precomputed per-pixel silhouette. Its alpha channel marks
// device pixels; fully opaque masks are read by luminance instead.
type PixelMask struct {
	img image.Image
}

func (m PixelMask) Name() string { return "pixel" }

func (m PixelMask) Alpha(size image.Point) *image.Alpha {
	src := m.img
	if src.Bounds().Size() != size {
		src = imaging.Resize(src, size.X, size.Y, imaging.Linear)
	}
	nrgba := imaging.Clone(src)

	mask := image.NewAlpha(image.Rectangle{Max: size})
	opaque := true
	for i := 3; i < len(nrgba.Pix); i += 4 {
		if nrgba.Pix[i] != 0xff {
			opaque = false
			break
		}
	}

	for i, j := 0, 0; i < len(nrgba.Pix); i, j = i+4, j+1 {
		if opaque {
			p := nrgba.Pix[i : i+3 : i+3]
			mask.Pix[j] = uint8((uint32(p[0]) + uint32(p[1]) + uint32(p[2])) / 3)
		} else {
			mask.Pix[j] = nrgba.Pix[i+3]
		}
	}

	return mask
}

// ApproximateRectMask synthesizes the silhouette from the catalog geometry.
type ApproximateRectMask struct {
	Silhouette models.Rect
}

func (m ApproximateRectMask) Name() string { return "approximate" }

func (m ApproximateRectMask) Alpha(size image.Point) *image.Alpha {
	return roundedRectMask(size, m.Silhouette.Bounds(), m.Silhouette.CornerRadius)
}

// selectSilhouette prefers the precomputed mask asset and falls back to the
// catalog geometry when the asset is missing or unreadable.
func (p *Compositor) selectSilhouette(ctx context.Context, device models.DeviceModel) SilhouetteMask {
	name := assets.MaskName(device.Name)

	data, err := p.assets.Fetch(ctx, name)
	if err != nil {
		p.logger.Debug("Silhouette mask unavailable, using approximate mask",
			zap.String("model", device.Key), zap.Error(err))
		return ApproximateRectMask{Silhouette: device.Silhouette}
	}

	img, err := decodeImage(data, "silhouette mask")
	if err != nil {
		p.logger.Warn("Silhouette mask unreadable, using approximate mask",
			zap.String("model", device.Key), zap.Error(err))
		return ApproximateRectMask{Silhouette: device.Silhouette}
	}

	return PixelMask{img: img}
}
