package processor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phambaophuc/device-mockup/internal/devices"
	"github.com/phambaophuc/device-mockup/internal/models"
	"github.com/phambaophuc/device-mockup/internal/services/assets"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	frameColor   = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	outsideColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	red          = color.NRGBA{R: 255, A: 255}
)

const testCatalog = `
default_model: mini
models:
  - key: mini
    name: Mini Phone
    colors: [Black, White]
    default_color: Black
    bezel: {width: 100, height: 200}
    silhouette: {top: 5, left: 5, width: 90, height: 190, corner_radius: 12}
    screen: {top: 10, left: 10, width: 80, height: 180, corner_radius: 8}
`

func loadTestCatalog(t *testing.T) *devices.Catalog {
	t.Helper()
	c, err := devices.Load(strings.NewReader(testCatalog))
	require.NoError(t, err)
	return c
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return encodeTestPNG(t, img)
}

func encodeTestPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// bezelImage paints a frame with a transparent screen cutout. Pixels outside
// the silhouette are opaque white so clipping is observable.
func bezelImage(device models.DeviceModel, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	silhouette := device.Silhouette.Bounds()
	screen := device.Screen.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := image.Pt(x, y)
			switch {
			case p.In(screen):
				img.SetNRGBA(x, y, color.NRGBA{})
			case p.In(silhouette):
				img.SetNRGBA(x, y, frameColor)
			default:
				img.SetNRGBA(x, y, outsideColor)
			}
		}
	}
	return img
}

func writeAsset(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func writeBezels(t *testing.T, dir string, device models.DeviceModel, colors ...string) {
	t.Helper()
	data := encodeTestPNG(t, bezelImage(device, device.BezelSize.Width, device.BezelSize.Height))
	for _, c := range colors {
		writeAsset(t, dir, assets.BezelName(device.Name, c), data)
	}
}

func decodePNG(t *testing.T, data []byte) *image.NRGBA {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	out := image.NewNRGBA(img.Bounds())
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func newTestCompositor(t *testing.T, catalog *devices.Catalog, dir string) *Compositor {
	t.Helper()
	return NewCompositor(catalog, assets.NewDirStore(dir), zap.NewNop())
}
