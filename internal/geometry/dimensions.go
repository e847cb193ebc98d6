package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidScale is returned when a scale or scale factor is zero, negative
// or not a finite number.
var ErrInvalidScale = errors.New("invalid scale")

// ErrInvalidDimensions is returned when a physical size is not strictly positive.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// Dimensions is the physical size of a furniture item or room in centimeters.
type Dimensions struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Depth  float64 `json:"depth" yaml:"depth"`
}

// Validate checks that every axis is a positive finite number.
func (d Dimensions) Validate() error {
	for _, axis := range []struct {
		name  string
		value float64
	}{
		{"width", d.Width},
		{"height", d.Height},
		{"depth", d.Depth},
	} {
		if !finite(axis.value) || axis.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidDimensions, axis.name, axis.value)
		}
	}
	return nil
}

// String formats the dimensions as "W×H×D cm".
func (d Dimensions) String() string {
	return fmt.Sprintf("%g×%g×%g cm", d.Width, d.Height, d.Depth)
}

// ValidScale reports whether scale can be applied to a size.
func ValidScale(scale float64) bool {
	return finite(scale) && scale > 0
}

// ScaledSize multiplies every axis of d by scale.
//
// Returns ErrInvalidScale (wrapped) when scale <= 0 or is not finite.
func ScaledSize(d Dimensions, scale float64) (Dimensions, error) {
	if !ValidScale(scale) {
		return Dimensions{}, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	return Dimensions{
		Width:  d.Width * scale,
		Height: d.Height * scale,
		Depth:  d.Depth * scale,
	}, nil
}

// Frontal projects the item's front face (width × height) onto the screen
// using pixelsPerCm.
func (d Dimensions) Frontal(pixelsPerCm float64) Size {
	return Size{
		Width:  d.Width * pixelsPerCm,
		Height: d.Height * pixelsPerCm,
	}
}
