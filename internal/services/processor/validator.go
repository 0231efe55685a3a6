package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds the decoded size of a screenshot, about 40 megapixels.
const DefaultMaxPixels int64 = 40_000_000

// ErrTooManyPixels marks screenshots rejected by the pixel limit.
var ErrTooManyPixels = errors.New("image has too many pixels")

// decodeImage decodes raster bytes and rejects empty images.
func decodeImage(data []byte, what string) (image.Image, error) {
	if len(data) == 0 {
		return nil, &ImageDecodeError{What: what, Cause: fmt.Errorf("empty input")}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{What: what, Cause: err}
	}

	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &ImageDecodeError{What: what, Cause: fmt.Errorf("image has no pixels")}
	}

	return img, nil
}

// ValidateImage reads only the image header and rejects screenshots that
// cannot be decoded or whose pixel area exceeds the compositor limit.
func (p *Compositor) ValidateImage(data []byte) error {
	if len(data) == 0 {
		return &ImageDecodeError{What: "screenshot", Cause: fmt.Errorf("empty input")}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return &ImageDecodeError{What: "screenshot", Cause: err}
	}

	if p.maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > p.maxPixels {
		return &ImageDecodeError{
			What:  "screenshot",
			Cause: fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, p.maxPixels),
		}
	}

	return nil
}
