// Package geometry provides the size and rectangle primitives shared by the
// placement, obstacle and fit packages.
//
// # Units
//
// Dimensions are physical sizes in centimeters. Rect, Point and Size live in
// screen space (whatever unit the viewport reports, usually pixels). The two
// are never compared directly; callers convert with an explicit
// pixels-per-centimeter factor.
//
// # Coordinate System
//
// Screen coordinates follow the image convention used throughout this module:
//   - Origin (0, 0) at top-left
//   - X increases rightward
//   - Y increases downward
//
// # Anchoring
//
// Overlay geometry is anchored at its center. BoundingRect is the single place
// where a center point and a size become a Rect; every fit check builds its
// rectangle through it.
//
// # Overlap Semantics
//
// Overlaps uses strict inequalities. Rectangles that only share an edge do not
// overlap, and degenerate rectangles (zero or negative width or height) never
// overlap anything.
package geometry
