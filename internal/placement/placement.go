// Package placement holds the user-controlled position and scale of a
// furniture overlay.
//
// Positions are absolute screen coordinates (drag gestures report the pointer
// position, not a delta) and are never clamped: an off-screen placement is a
// legal state, and whether it fits is decided by the fit package. Scale is
// always clamped to the configured range.
package placement

import (
	"fmt"

	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
)

// Nominal gesture factors used by the scale buttons.
const (
	ScaleUpFactor   = 1.1
	ScaleDownFactor = 0.9
)

// floorBias is the fraction of the viewport height where a reset overlay
// lands, so the item appears to stand on the floor.
const floorBias = 0.7

// DefaultScale is the scale an overlay starts at and returns to on Reset.
const DefaultScale = 1.0

// ScaleRange bounds the overlay scale.
type ScaleRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// DefaultScaleRange is used when a mode does not specify its own.
var DefaultScaleRange = ScaleRange{Min: 0.1, Max: 3.0}

// Validate checks that the range is positive and ordered.
func (r ScaleRange) Validate() error {
	if !geometry.ValidScale(r.Min) || !geometry.ValidScale(r.Max) || r.Min > r.Max {
		return fmt.Errorf("%w: range [%v, %v]", geometry.ErrInvalidScale, r.Min, r.Max)
	}
	return nil
}

// Clamp saturates s into [Min, Max].
func (r ScaleRange) Clamp(s float64) float64 {
	if s < r.Min {
		return r.Min
	}
	if s > r.Max {
		return r.Max
	}
	return s
}

// Placement is a snapshot of an overlay's position and scale.
type Placement struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Center returns the overlay anchor point.
func (p Placement) Center() geometry.Point {
	return geometry.Point{X: p.X, Y: p.Y}
}

// State is the mutable placement of one overlay.
//
// State is not safe for concurrent use; the owning session serializes access.
type State struct {
	current  Placement
	scales   ScaleRange
	viewport geometry.Rect
}

// New creates a State positioned at the default spot of viewport.
func New(viewport geometry.Rect, scales ScaleRange) *State {
	s := &State{
		scales:   scales,
		viewport: viewport,
	}
	s.Reset()
	return s
}

// Current returns a copy of the current placement.
func (s *State) Current() Placement {
	return s.current
}

// Range returns the active scale range.
func (s *State) Range() ScaleRange {
	return s.scales
}

// Move sets the overlay center to (x, y). No clamping is applied.
func (s *State) Move(x, y float64) {
	s.current.X = x
	s.current.Y = y
}

// AdjustScale multiplies the current scale by factor and clamps the result to
// the scale range.
//
// A factor that is zero, negative or not finite returns ErrInvalidScale and
// leaves the state unchanged.
func (s *State) AdjustScale(factor float64) error {
	if !geometry.ValidScale(factor) {
		return fmt.Errorf("adjust scale by %v: %w", factor, geometry.ErrInvalidScale)
	}
	s.current.Scale = s.scales.Clamp(s.current.Scale * factor)
	return nil
}

// SetScale sets an absolute scale, clamped to the range.
func (s *State) SetScale(scale float64) error {
	if !geometry.ValidScale(scale) {
		return fmt.Errorf("set scale to %v: %w", scale, geometry.ErrInvalidScale)
	}
	s.current.Scale = s.scales.Clamp(scale)
	return nil
}

// SetRange replaces the scale range and re-clamps the current scale.
func (s *State) SetRange(r ScaleRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.scales = r
	s.current.Scale = r.Clamp(s.current.Scale)
	return nil
}

// SetViewport changes the rectangle Reset anchors to. The current position is
// left alone.
func (s *State) SetViewport(viewport geometry.Rect) {
	s.viewport = viewport
}

// Reset returns to the default position (horizontal center, 70% down the
// viewport) and the default scale.
func (s *State) Reset() {
	s.current = Placement{
		X:     s.viewport.Left + s.viewport.Width()/2,
		Y:     s.viewport.Top + s.viewport.Height()*floorBias,
		Scale: s.scales.Clamp(DefaultScale),
	}
}
