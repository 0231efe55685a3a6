package models

import "image"

// Size is a pixel width and height.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rect is a rounded rectangle placed on a bezel canvas.
type Rect struct {
	Top          int `json:"top" yaml:"top"`
	Left         int `json:"left" yaml:"left"`
	Width        int `json:"width" yaml:"width"`
	Height       int `json:"height" yaml:"height"`
	CornerRadius int `json:"corner_radius" yaml:"corner_radius"`
}

// Bounds returns the rectangle in canvas coordinates.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// Contains reports whether other lies entirely within r.
func (r Rect) Contains(other Rect) bool {
	return other.Bounds().In(r.Bounds())
}

// DeviceModel describes one phone model and where its screen sits on the bezel artwork.
type DeviceModel struct {
	Key          string   `json:"key" yaml:"key"`
	Name         string   `json:"name" yaml:"name"`
	Colors       []string `json:"colors" yaml:"colors"`
	DefaultColor string   `json:"default_color" yaml:"default_color"`
	BezelSize    Size     `json:"bezel_size" yaml:"bezel"`
	Silhouette   Rect     `json:"silhouette" yaml:"silhouette"`
	Screen       Rect     `json:"screen" yaml:"screen"`
}

func (d DeviceModel) HasColor(color string) bool {
	for _, c := range d.Colors {
		if c == color {
			return true
		}
	}
	return false
}
