package processor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/device-mockup/internal/devices"
	"github.com/phambaophuc/device-mockup/internal/models"
	"github.com/phambaophuc/device-mockup/internal/services/assets"
	"go.uber.org/zap"
)

// Compositor insets screenshots into device bezels. It holds no mutable
// state and is safe for concurrent use.
type Compositor struct {
	catalog   *devices.Catalog
	assets    assets.Store
	logger    *zap.Logger
	maxPixels int64
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithMaxPixels overrides DefaultMaxPixels. Zero or less disables the check.
func WithMaxPixels(n int64) Option {
	return func(p *Compositor) {
		p.maxPixels = n
	}
}

func NewCompositor(catalog *devices.Catalog, store assets.Store, logger *zap.Logger, opts ...Option) *Compositor {
	p := &Compositor{
		catalog:   catalog,
		assets:    store,
		logger:    logger,
		maxPixels: DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve applies the model and color defaults and validates both.
func (p *Compositor) Resolve(modelKey, colorChoice string) (models.DeviceModel, string, error) {
	if modelKey == "" {
		modelKey = p.catalog.DefaultKey()
	}

	device, ok := p.catalog.Lookup(modelKey)
	if !ok {
		return models.DeviceModel{}, "", &UnknownModelError{Model: modelKey, Valid: p.catalog.Keys()}
	}

	if colorChoice == "" {
		return device, device.DefaultColor, nil
	}
	if !device.HasColor(colorChoice) {
		return models.DeviceModel{}, "", &UnknownColorError{Model: modelKey, Color: colorChoice, Valid: device.Colors}
	}

	return device, colorChoice, nil
}

// Composite renders screenshot inside the bezel of modelKey in colorChoice
// and returns the PNG. Empty modelKey and colorChoice select the defaults.
func (p *Compositor) Composite(ctx context.Context, screenshot []byte, modelKey, colorChoice string) (*models.Mockup, error) {
	device, colorName, err := p.Resolve(modelKey, colorChoice)
	if err != nil {
		return nil, err
	}

	bezel, err := p.loadBezel(ctx, device, colorName)
	if err != nil {
		return nil, err
	}

	if err := p.ValidateImage(screenshot); err != nil {
		return nil, err
	}

	shot, err := decodeImage(screenshot, "screenshot")
	if err != nil {
		return nil, err
	}

	silhouette := p.selectSilhouette(ctx, device)
	canvas := render(device, bezel, shot, silhouette)

	data, err := p.encodePNG(canvas)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Mockup composited",
		zap.String("model", device.Key),
		zap.String("color", colorName),
		zap.String("silhouette", silhouette.Name()),
		zap.Int("bytes", len(data)))

	return &models.Mockup{
		PNG:    data,
		Model:  device.Key,
		Color:  colorName,
		Width:  canvas.Bounds().Dx(),
		Height: canvas.Bounds().Dy(),
	}, nil
}

func (p *Compositor) loadBezel(ctx context.Context, device models.DeviceModel, colorName string) (image.Image, error) {
	data, err := p.assets.Fetch(ctx, assets.BezelName(device.Name, colorName))
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			return nil, &BezelUnavailableError{
				Model:     device.Key,
				Color:     colorName,
				Suggested: p.availableColors(ctx, device, colorName),
				Cause:     err,
			}
		}
		return nil, fmt.Errorf("failed to load bezel: %w", err)
	}

	return decodeImage(data, "bezel")
}

// availableColors lists the other colors whose bezel is present, or the
// model default when none can be found.
func (p *Compositor) availableColors(ctx context.Context, device models.DeviceModel, missing string) []string {
	var present []string
	for _, c := range device.Colors {
		if c == missing {
			continue
		}
		if p.assets.Exists(ctx, assets.BezelName(device.Name, c)) {
			present = append(present, c)
		}
	}

	if len(present) == 0 {
		return []string{device.DefaultColor}
	}
	return present
}

// render runs the fixed pipeline: fit, round, place under the bezel, clip.
func render(device models.DeviceModel, bezel, shot image.Image, silhouette SilhouetteMask) *image.NRGBA {
	screen := screenLayer(shot, device.Screen)

	size := bezel.Bounds().Size()
	canvas := imaging.New(size.X, size.Y, color.NRGBA{})
	canvas = imaging.Overlay(canvas, screen, image.Pt(device.Screen.Left, device.Screen.Top), 1.0)
	canvas = imaging.Overlay(canvas, bezel, image.Pt(0, 0), 1.0)

	applyDestinationIn(canvas, silhouette.Alpha(size))

	return canvas
}

// screenLayer fits the screenshot to the screen region and rounds its corners.
func screenLayer(shot image.Image, screen models.Rect) *image.NRGBA {
	layer := fitContain(shot, screen.Width, screen.Height)

	size := image.Pt(screen.Width, screen.Height)
	applyDestinationIn(layer, roundedRectMask(size, image.Rectangle{Max: size}, screen.CornerRadius))

	return layer
}
