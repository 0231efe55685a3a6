package assets

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested asset does not exist in the store.
var ErrNotFound = errors.New("asset not found")

// Store is a read-only source of bezel artwork and silhouette masks.
type Store interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	Exists(ctx context.Context, name string) bool
}

// BezelName is the asset name of the portrait bezel for a model and color.
func BezelName(modelName, color string) string {
	return fmt.Sprintf("%s - %s - Portrait.png", modelName, color)
}

// MaskName is the asset name of the precomputed silhouette mask for a model.
func MaskName(modelName string) string {
	return fmt.Sprintf("%s - Mask.png", modelName)
}
