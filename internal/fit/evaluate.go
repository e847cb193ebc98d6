// Package fit decides whether a furniture item, at its current placement and
// scale, fits the observed or specified space.
//
// # Precedence
//
// Evaluate runs its checks in a fixed order and the first failing check
// decides the verdict:
//
//  1. No item selected: fits, empty reason.
//  2. Obstacle collision (UseObstacles): the overlay's centered rectangle is
//     tested against the obstacle snapshot.
//  3. Screen bounds (UseScreenBounds): the overlay must lie strictly inside
//     the viewport.
//  4. Room dimensions (UseRoomBounds): scaled width and depth, and height when
//     CompareHeight is set, must not exceed the room, compared in centimeters.
//  5. Reasonable size (UseScreenBounds): the overlay must be narrower than
//     60% and shorter than 40% of the viewport.
//  6. Otherwise the item fits.
//
// Out-of-bounds is reported before too-large, and each has its own Code, so
// the two are always distinguishable.
//
// # Purity
//
// Evaluate has no side effects and reads nothing but its arguments. Identical
// inputs always give identical results, which makes it cheap to call on every
// gesture tick or registry refresh.
package fit

import (
	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/ironsheep/fitcheck-mcp/internal/obstacles"
	"github.com/ironsheep/fitcheck-mcp/internal/placement"
)

// Size heuristic limits, as fractions of the viewport.
const (
	maxViewportWidthFraction  = 0.6
	maxViewportHeightFraction = 0.4
)

// Bounds describes the space an item is checked against. Either field may be
// nil; a nil field disables the checks that need it.
type Bounds struct {
	Room     *geometry.Dimensions `json:"room,omitempty"`
	Viewport *geometry.Rect       `json:"viewport,omitempty"`
}

// Evaluate computes the fit verdict for item at p.
//
// item is nil when nothing is selected. regions is the obstacle snapshot; it
// is ignored unless cfg.UseObstacles is set. Evaluate never panics and never
// returns an error: an unusable scale yields a non-fitting result with
// CodeInvalid.
func Evaluate(cfg Config, item *geometry.Dimensions, p placement.Placement, b Bounds, regions []obstacles.Region) Result {
	if item == nil {
		return Result{Fits: true, Code: CodeNone}
	}

	scaled, err := geometry.ScaledSize(*item, p.Scale)
	if err != nil {
		return rejected(CodeInvalid, reasonInvalid)
	}
	onScreen := scaled.Frontal(cfg.pixelsPerCm())
	rect := geometry.BoundingRect(p.Center(), onScreen)

	if cfg.UseObstacles {
		if c := obstacles.CollidesWith(regions, rect); c.Collision {
			return blockedBy(*c.Region)
		}
	}

	if cfg.UseScreenBounds && b.Viewport != nil {
		if !b.Viewport.ContainsStrict(rect) {
			return rejected(CodeOutOfBounds, reasonOutOfBounds)
		}
	}

	if cfg.UseRoomBounds && b.Room != nil {
		if r, ok := checkRoom(scaled, *b.Room, cfg.CompareHeight); !ok {
			return r
		}
	}

	if cfg.UseScreenBounds && b.Viewport != nil {
		vp := *b.Viewport
		if !(onScreen.Width < maxViewportWidthFraction*vp.Width() &&
			onScreen.Height < maxViewportHeightFraction*vp.Height()) {
			return rejected(CodeTooLarge, reasonTooLarge)
		}
	}

	if cfg.UseObstacles && obstacles.KnownClear(regions, rect) != nil {
		return fits(CodeClear, reasonClear)
	}
	return fits(CodeFits, reasonFits)
}

// ScreenRect returns the overlay rectangle Evaluate tests for item at p.
//
// Returns ErrInvalidScale (wrapped) when p.Scale is unusable.
func ScreenRect(cfg Config, item geometry.Dimensions, p placement.Placement) (geometry.Rect, error) {
	scaled, err := geometry.ScaledSize(item, p.Scale)
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.BoundingRect(p.Center(), scaled.Frontal(cfg.pixelsPerCm())), nil
}

// checkRoom compares physical sizes only; screen position plays no part.
// Bounds are inclusive.
func checkRoom(item, room geometry.Dimensions, compareHeight bool) (Result, bool) {
	if item.Width > room.Width {
		return exceeds(CodeTooWide, "width", item.Width, room.Width), false
	}
	if item.Depth > room.Depth {
		return exceeds(CodeTooDeep, "depth", item.Depth, room.Depth), false
	}
	if compareHeight && item.Height > room.Height {
		return exceeds(CodeTooTall, "height", item.Height, room.Height), false
	}
	return Result{}, true
}

// MaxRoomScale returns the largest scale within cfg.ScaleRange at which item
// still passes the room check, or 0 if even the minimum scale is too big.
func MaxRoomScale(cfg Config, item, room geometry.Dimensions) float64 {
	limit := room.Width / item.Width
	if d := room.Depth / item.Depth; d < limit {
		limit = d
	}
	if cfg.CompareHeight {
		if h := room.Height / item.Height; h < limit {
			limit = h
		}
	}
	if !(limit >= cfg.ScaleRange.Min) {
		return 0
	}
	return cfg.ScaleRange.Clamp(limit)
}
