package detector

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/ironsheep/fitcheck-mcp/internal/detection"
	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/ironsheep/fitcheck-mcp/internal/imaging"
	"github.com/ironsheep/fitcheck-mcp/internal/obstacles"
)

// FrameOptions tunes the still-frame heuristics.
type FrameOptions struct {
	// MaxSide is the longest side of the working copy. Default: 320.
	MaxSide int `yaml:"max_side" json:"max_side"`

	// BlurRadius is the Gaussian radius applied before thresholding. Default: 1.5.
	BlurRadius float64 `yaml:"blur_radius" json:"blur_radius"`

	// Threshold is the luminance cut between objects and floor. Default: 96.
	Threshold uint8 `yaml:"threshold" json:"threshold"`

	// MinAreaFraction is the smallest blob, as a fraction of the frame area,
	// reported as an obstacle. Default: 0.005.
	MinAreaFraction float64 `yaml:"min_area_fraction" json:"min_area_fraction"`

	// MaxRegions caps the number of obstacle regions per frame. Default: 10.
	MaxRegions int `yaml:"max_regions" json:"max_regions"`
}

// DefaultFrameOptions returns the tuned defaults.
func DefaultFrameOptions() FrameOptions {
	return FrameOptions{
		MaxSide:         320,
		BlurRadius:      1.5,
		Threshold:       imaging.DefaultThreshold,
		MinAreaFraction: 0.005,
		MaxRegions:      10,
	}
}

// withDefaults fills zero fields from DefaultFrameOptions.
func (o FrameOptions) withDefaults() FrameOptions {
	d := DefaultFrameOptions()
	if o.MaxSide <= 0 {
		o.MaxSide = d.MaxSide
	}
	if o.BlurRadius < 0 {
		o.BlurRadius = 0
	} else if o.BlurRadius == 0 {
		o.BlurRadius = d.BlurRadius
	}
	if o.Threshold == 0 {
		o.Threshold = d.Threshold
	}
	if o.MinAreaFraction <= 0 {
		o.MinAreaFraction = d.MinAreaFraction
	}
	if o.MaxRegions <= 0 {
		o.MaxRegions = d.MaxRegions
	}
	return o
}

// FrameDetector analyzes the image at Path on every call.
//
// The frame is re-read from disk each time because camera bridges overwrite
// one file in place. The decoded frame stays in the cache so overlay previews
// can reuse it without another decode.
type FrameDetector struct {
	mu       sync.Mutex
	path     string
	cache    *imaging.FrameCache
	viewport geometry.Rect
	opts     FrameOptions
}

// NewFrameDetector creates a detector for the frame file at path.
//
// Returns an error if path is empty or the viewport is degenerate.
func NewFrameDetector(path string, cache *imaging.FrameCache, viewport geometry.Rect, opts FrameOptions) (*FrameDetector, error) {
	if path == "" {
		return nil, fmt.Errorf("frame path is required")
	}
	if viewport.IsDegenerate() {
		return nil, fmt.Errorf("invalid viewport %vx%v", viewport.Width(), viewport.Height())
	}
	if cache == nil {
		cache = imaging.NewFrameCache()
	}
	return &FrameDetector{
		path:     path,
		cache:    cache,
		viewport: viewport,
		opts:     opts.withDefaults(),
	}, nil
}

// Path returns the frame file being analyzed.
func (d *FrameDetector) Path() string {
	return d.path
}

// SetViewport changes the coordinate space regions are mapped into.
func (d *FrameDetector) SetViewport(viewport geometry.Rect) {
	d.mu.Lock()
	d.viewport = viewport
	d.mu.Unlock()
}

// Detect loads the current frame and converts its blobs and clear floor
// windows into viewport regions.
func (d *FrameDetector) Detect(ctx context.Context) ([]obstacles.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	viewport := d.viewport
	opts := d.opts
	d.mu.Unlock()

	frame, err := d.cache.LoadFresh(d.path)
	if err != nil {
		return nil, err
	}

	small, err := imaging.Downscale(frame, opts.MaxSide)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mask := imaging.Binarize(small, opts.BlurRadius, opts.Threshold)
	return analyzeMask(mask, viewport, opts), nil
}

// analyzeMask turns a binarized frame into regions in viewport space.
func analyzeMask(mask *image.Gray, viewport geometry.Rect, opts FrameOptions) []obstacles.Region {
	bounds := mask.Bounds()
	minArea := int(opts.MinAreaFraction * float64(bounds.Dx()*bounds.Dy()))

	sx := viewport.Width() / float64(bounds.Dx())
	sy := viewport.Height() / float64(bounds.Dy())
	toRegion := func(r image.Rectangle, class obstacles.Class, confidence float64, label string) obstacles.Region {
		return obstacles.Region{
			X:          viewport.Left + float64(r.Min.X-bounds.Min.X)*sx,
			Y:          viewport.Top + float64(r.Min.Y-bounds.Min.Y)*sy,
			Width:      float64(r.Dx()) * sx,
			Height:     float64(r.Dy()) * sy,
			Class:      class,
			Confidence: confidence,
			Label:      label,
		}
	}

	regions := make([]obstacles.Region, 0)

	blobs := detection.DetectBlobs(mask, minArea)
	for i, b := range blobs {
		if i >= opts.MaxRegions {
			break
		}
		regions = append(regions, toRegion(b.Bounds, obstacles.ClassObstacle, roundConfidence(b.Confidence), "object"))
	}

	for _, c := range detection.DetectClearAreas(mask) {
		regions = append(regions, toRegion(c.Bounds, obstacles.ClassClear, c.Confidence, "floor"))
	}

	return regions
}
