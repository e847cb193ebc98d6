package detector

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/ironsheep/fitcheck-mcp/internal/obstacles"
)

// Detector produces a fresh region snapshot.
type Detector interface {
	Detect(ctx context.Context) ([]obstacles.Region, error)
}

// Kind names a detector implementation in configuration.
type Kind string

const (
	KindNone   Kind = "none"
	KindStatic Kind = "static"
	KindRandom Kind = "random"
	KindFrame  Kind = "frame"
)

// StaticDetector always returns the same regions.
type StaticDetector struct {
	Regions []obstacles.Region
}

// Detect returns a copy of the configured regions.
func (d *StaticDetector) Detect(ctx context.Context) ([]obstacles.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]obstacles.Region, len(d.Regions))
	copy(out, d.Regions)
	return out, nil
}

// Placeholder labels used by RandomDetector.
var randomLabels = []string{"chair", "table", "plant", "box", "lamp", "person"}

// DefaultMaxRegions is the region cap for RandomDetector when none is given.
const DefaultMaxRegions = 3

// RandomDetector invents between 0 and MaxRegions regions inside the
// viewport on every call.
//
// Roughly seven in ten regions are obstacles, the rest clear floor.
// Confidence is uniform in [0.3, 1.0], so some obstacles fall below the
// registry's noise floor. The same seed yields the same sequence.
type RandomDetector struct {
	mu         sync.Mutex
	rng        *rand.Rand
	viewport   geometry.Rect
	maxRegions int
}

// NewRandomDetector creates a seeded placeholder detector.
//
// Returns an error if the viewport is degenerate.
func NewRandomDetector(viewport geometry.Rect, maxRegions int, seed int64) (*RandomDetector, error) {
	if viewport.IsDegenerate() {
		return nil, fmt.Errorf("invalid viewport %vx%v", viewport.Width(), viewport.Height())
	}
	if maxRegions <= 0 {
		maxRegions = DefaultMaxRegions
	}
	return &RandomDetector{
		rng:        rand.New(rand.NewSource(seed)),
		viewport:   viewport,
		maxRegions: maxRegions,
	}, nil
}

// SetViewport changes the area new regions are generated in.
func (d *RandomDetector) SetViewport(viewport geometry.Rect) {
	d.mu.Lock()
	d.viewport = viewport
	d.mu.Unlock()
}

// Detect generates a new random snapshot.
func (d *RandomDetector) Detect(ctx context.Context) ([]obstacles.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	vp := d.viewport
	n := d.rng.Intn(d.maxRegions + 1)
	regions := make([]obstacles.Region, 0, n)

	for i := 0; i < n; i++ {
		// 10% to 30% of the viewport on each axis
		w := vp.Width() * (0.1 + 0.2*d.rng.Float64())
		h := vp.Height() * (0.1 + 0.2*d.rng.Float64())
		x := vp.Left + d.rng.Float64()*(vp.Width()-w)
		y := vp.Top + d.rng.Float64()*(vp.Height()-h)

		region := obstacles.Region{
			X:          x,
			Y:          y,
			Width:      w,
			Height:     h,
			Class:      obstacles.ClassObstacle,
			Confidence: roundConfidence(0.3 + 0.7*d.rng.Float64()),
			Label:      randomLabels[d.rng.Intn(len(randomLabels))],
		}
		if d.rng.Float64() >= 0.7 {
			region.Class = obstacles.ClassClear
			region.Label = "floor"
		}
		regions = append(regions, region)
	}

	return regions, nil
}

func roundConfidence(c float64) float64 {
	return float64(int(c*100+0.5)) / 100
}
