package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

var pngEncoder = &png.Encoder{CompressionLevel: png.DefaultCompression}

func (p *Compositor) encodePNG(img image.Image) ([]byte, error) {
	buffer := &bytes.Buffer{}
	if err := pngEncoder.Encode(buffer, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buffer.Bytes(), nil
}
