package devices

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/phambaophuc/device-mockup/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	DefaultModel string               `yaml:"default_model"`
	Models       []models.DeviceModel `yaml:"models"`
}

// Catalog is the immutable table of supported device models.
type Catalog struct {
	models     map[string]models.DeviceModel
	keys       []string
	defaultKey string
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// LoadFile reads a catalog from path, or the built-in one when path is empty.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open device catalog: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes a YAML catalog and validates every model.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse device catalog: %w", err)
	}

	return New(file.DefaultModel, file.Models)
}

// New builds a catalog from already decoded models.
func New(defaultKey string, list []models.DeviceModel) (*Catalog, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("device catalog is empty")
	}

	c := &Catalog{
		models:     make(map[string]models.DeviceModel, len(list)),
		defaultKey: defaultKey,
	}

	for _, m := range list {
		if err := Validate(m); err != nil {
			return nil, err
		}
		if _, dup := c.models[m.Key]; dup {
			return nil, fmt.Errorf("device %q: duplicate key", m.Key)
		}
		m.Colors = append([]string(nil), m.Colors...)
		c.models[m.Key] = m
		c.keys = append(c.keys, m.Key)
	}
	sort.Strings(c.keys)

	if _, ok := c.models[defaultKey]; !ok {
		return nil, fmt.Errorf("default model %q is not in the catalog", defaultKey)
	}

	return c, nil
}

// Validate checks the geometry and color invariants of one model.
func Validate(m models.DeviceModel) error {
	if m.Key == "" || m.Name == "" {
		return fmt.Errorf("device %q: key and name are required", m.Key)
	}
	if len(m.Colors) == 0 {
		return fmt.Errorf("device %q: no colors", m.Key)
	}
	if !m.HasColor(m.DefaultColor) {
		return fmt.Errorf("device %q: default color %q is not an available color", m.Key, m.DefaultColor)
	}
	if m.BezelSize.Width <= 0 || m.BezelSize.Height <= 0 {
		return fmt.Errorf("device %q: bezel size must be positive", m.Key)
	}
	if m.Screen.Width <= 0 || m.Screen.Height <= 0 {
		return fmt.Errorf("device %q: screen size must be positive", m.Key)
	}
	if m.Screen.CornerRadius < 0 || m.Silhouette.CornerRadius < 0 {
		return fmt.Errorf("device %q: corner radius must not be negative", m.Key)
	}

	canvas := models.Rect{Width: m.BezelSize.Width, Height: m.BezelSize.Height}
	if !canvas.Contains(m.Silhouette) {
		return fmt.Errorf("device %q: silhouette %v exceeds bezel %dx%d",
			m.Key, m.Silhouette.Bounds(), m.BezelSize.Width, m.BezelSize.Height)
	}
	if !m.Silhouette.Contains(m.Screen) {
		return fmt.Errorf("device %q: screen %v exceeds silhouette %v",
			m.Key, m.Screen.Bounds(), m.Silhouette.Bounds())
	}

	return nil
}

// Lookup returns the model for key.
func (c *Catalog) Lookup(key string) (models.DeviceModel, bool) {
	m, ok := c.models[key]
	if ok {
		m.Colors = append([]string(nil), m.Colors...)
	}
	return m, ok
}

// Keys returns the sorted model keys.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

func (c *Catalog) DefaultKey() string {
	return c.defaultKey
}

// All returns every model ordered by key.
func (c *Catalog) All() []models.DeviceModel {
	out := make([]models.DeviceModel, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.models[k])
	}
	return out
}
