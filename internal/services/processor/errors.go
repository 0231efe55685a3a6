package processor

import (
	"fmt"
	"strings"
)

// UnknownModelError is returned when the model key is not in the catalog.
type UnknownModelError struct {
	Model string
	Valid []string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q (valid models: %s)", e.Model, strings.Join(e.Valid, ", "))
}

// UnknownColorError is returned when the color is not offered for the model.
type UnknownColorError struct {
	Model string
	Color string
	Valid []string
}

func (e *UnknownColorError) Error() string {
	return fmt.Sprintf("unknown color %q for model %q (valid colors: %s)",
		e.Color, e.Model, strings.Join(e.Valid, ", "))
}

// BezelUnavailableError is returned when the bezel artwork for a color is missing.
type BezelUnavailableError struct {
	Model     string
	Color     string
	Suggested []string
	Cause     error
}

func (e *BezelUnavailableError) Error() string {
	return fmt.Sprintf("bezel not available for %s in %q (try: %s)",
		e.Model, e.Color, strings.Join(e.Suggested, ", "))
}

func (e *BezelUnavailableError) Unwrap() error {
	return e.Cause
}

// ImageDecodeError wraps a failure to decode the screenshot or an asset.
type ImageDecodeError struct {
	What  string
	Cause error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.What, e.Cause)
}

func (e *ImageDecodeError) Unwrap() error {
	return e.Cause
}
