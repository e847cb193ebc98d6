// Package obstacles keeps the latest snapshot of detected regions and answers
// collision queries against it.
//
// The registry is fed by a detector (see package detector) and read by the
// fit evaluator. Every feed replaces the previous snapshot completely; regions
// are never merged, so a region that stops being detected disappears on the
// next refresh.
package obstacles

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
)

// ConfidenceThreshold is the minimum confidence (exclusive) for a region to
// take part in collision or clear-space queries. Anything at or below it is
// treated as detector noise.
const ConfidenceThreshold = 0.5

// ErrMalformedRegion describes a region that cannot be used for geometry:
// non-finite coordinates, negative or non-finite size, or a confidence
// outside [0, 1].
var ErrMalformedRegion = errors.New("malformed region")

// Class is the detector's classification of a region.
type Class string

const (
	ClassObstacle Class = "obstacle"
	ClassClear    Class = "clear"
)

// Region is one detected area of the observed space.
//
// (X, Y) is the top-left corner in the same screen space as placements.
type Region struct {
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	Width      float64 `json:"width" yaml:"width"`
	Height     float64 `json:"height" yaml:"height"`
	Class      Class   `json:"class" yaml:"class"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Label      string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// Rect returns the region's rectangle.
func (r Region) Rect() geometry.Rect {
	return geometry.RectFromXYWH(r.X, r.Y, r.Width, r.Height)
}

// Name returns the label, falling back to the classification.
func (r Region) Name() string {
	if r.Label != "" {
		return r.Label
	}
	return string(r.Class)
}

// Validate reports whether r can be stored.
func (r Region) Validate() error {
	switch {
	case !finite(r.X) || !finite(r.Y):
		return fmt.Errorf("%w: non-finite position (%v, %v)", ErrMalformedRegion, r.X, r.Y)
	case !finite(r.Width) || !finite(r.Height):
		return fmt.Errorf("%w: non-finite size %vx%v", ErrMalformedRegion, r.Width, r.Height)
	case r.Width < 0 || r.Height < 0:
		return fmt.Errorf("%w: negative size %vx%v", ErrMalformedRegion, r.Width, r.Height)
	case !finite(r.Confidence) || r.Confidence < 0 || r.Confidence > 1:
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrMalformedRegion, r.Confidence)
	case r.Class != ClassObstacle && r.Class != ClassClear:
		return fmt.Errorf("%w: unknown class %q", ErrMalformedRegion, r.Class)
	}
	return nil
}

// Collision is the answer to a CollidesWith query.
type Collision struct {
	Collision bool    `json:"collision"`
	Region    *Region `json:"region,omitempty"`
}

// Registry holds the current region snapshot.
//
// Registry is safe for concurrent use: a background refresher may replace the
// snapshot while the evaluator reads it.
type Registry struct {
	mu      sync.RWMutex
	regions []Region
	version uint64
	dropped uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetRegions atomically replaces the snapshot with regions.
//
// Malformed regions are dropped and logged rather than rejected as a batch, so
// a partly corrupt detector feed still yields usable obstacles. The number of
// dropped regions is returned and added to Dropped.
func (r *Registry) SetRegions(regions []Region) int {
	accepted := make([]Region, 0, len(regions))
	dropped := 0
	for i, region := range regions {
		if err := region.Validate(); err != nil {
			log.Printf("obstacles: dropping region %d: %v", i, err)
			dropped++
			continue
		}
		accepted = append(accepted, region)
	}

	r.mu.Lock()
	r.regions = accepted
	r.version++
	r.dropped += uint64(dropped)
	r.mu.Unlock()

	return dropped
}

// Snapshot returns a copy of the current regions.
func (r *Registry) Snapshot() []Region {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Region, len(r.regions))
	copy(out, r.regions)
	return out
}

// Version increases by one on every SetRegions call.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Dropped is the total number of malformed regions discarded so far.
func (r *Registry) Dropped() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}

// CollidesWith reports the obstacle overlapping rect, if any.
func (r *Registry) CollidesWith(rect geometry.Rect) Collision {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return CollidesWith(r.regions, rect)
}

// KnownClear returns the clear region overlapping rect, if any.
func (r *Registry) KnownClear(rect geometry.Rect) *Region {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return KnownClear(r.regions, rect)
}

// CollidesWith searches regions for an Obstacle above ConfidenceThreshold that
// overlaps rect.
//
// When several obstacles overlap, the one with the highest confidence is
// reported; ties go to the earliest region in the slice. The returned Region
// is a copy.
func CollidesWith(regions []Region, rect geometry.Rect) Collision {
	best := bestOverlap(regions, rect, ClassObstacle)
	if best == nil {
		return Collision{}
	}
	return Collision{Collision: true, Region: best}
}

// KnownClear searches regions for a Clear region above ConfidenceThreshold
// that overlaps rect, using the same selection policy as CollidesWith.
func KnownClear(regions []Region, rect geometry.Rect) *Region {
	return bestOverlap(regions, rect, ClassClear)
}

func bestOverlap(regions []Region, rect geometry.Rect, class Class) *Region {
	bestIdx := -1
	for i, region := range regions {
		if region.Class != class || region.Confidence <= ConfidenceThreshold {
			continue
		}
		if !geometry.Overlaps(region.Rect(), rect) {
			continue
		}
		if bestIdx < 0 || region.Confidence > regions[bestIdx].Confidence {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil
	}
	found := regions[bestIdx]
	return &found
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
