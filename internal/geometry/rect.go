package geometry

import "math"

// Point is a position in screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is an on-screen extent.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle given by its four edges.
//
// Left <= Right and Top <= Bottom for well-formed rectangles. A Rect with
// Right <= Left or Bottom <= Top is degenerate.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// RectFromXYWH builds a Rect from its top-left corner and size.
func RectFromXYWH(x, y, width, height float64) Rect {
	return Rect{
		Left:   x,
		Top:    y,
		Right:  x + width,
		Bottom: y + height,
	}
}

// BoundingRect centers a rectangle of the given size on center.
//
//	left   = center.X - size.Width/2
//	top    = center.Y - size.Height/2
//	right  = center.X + size.Width/2
//	bottom = center.Y + size.Height/2
func BoundingRect(center Point, size Size) Rect {
	halfW := size.Width / 2
	halfH := size.Height / 2
	return Rect{
		Left:   center.X - halfW,
		Top:    center.Y - halfH,
		Right:  center.X + halfW,
		Bottom: center.Y + halfH,
	}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical extent.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{
		X: (r.Left + r.Right) / 2,
		Y: (r.Top + r.Bottom) / 2,
	}
}

// IsDegenerate reports whether the rectangle has no area, including
// rectangles with non-finite edges.
func (r Rect) IsDegenerate() bool {
	if !finite(r.Left) || !finite(r.Top) || !finite(r.Right) || !finite(r.Bottom) {
		return true
	}
	return r.Width() <= 0 || r.Height() <= 0
}

// ContainsStrict reports whether inner lies strictly inside r on every edge.
func (r Rect) ContainsStrict(inner Rect) bool {
	return inner.Left > r.Left &&
		inner.Right < r.Right &&
		inner.Top > r.Top &&
		inner.Bottom < r.Bottom
}

// Overlaps reports whether the projections of a and b intersect on both axes.
//
// The test is
//
//	!(a.Right <= b.Left || a.Left >= b.Right || a.Bottom <= b.Top || a.Top >= b.Bottom)
//
// so rectangles sharing exactly one edge do not overlap. Degenerate
// rectangles never overlap anything. Overlaps(a, b) == Overlaps(b, a).
func Overlaps(a, b Rect) bool {
	if a.IsDegenerate() || b.IsDegenerate() {
		return false
	}
	return !(a.Right <= b.Left || a.Left >= b.Right || a.Bottom <= b.Top || a.Top >= b.Bottom)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
