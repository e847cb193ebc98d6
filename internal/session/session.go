// Package session ties one viewer's state together: the selected item, its
// placement, the space bounds, the obstacle registry and the detector that
// feeds it.
//
// Every mutating call re-evaluates the fit and returns the fresh verdict, so
// callers never hold a stale result. Results are never stored.
//
// A Session is safe for concurrent use. Gesture calls (Move, AdjustScale and
// friends) take the session lock only; the background refresher writes to the
// registry, which has its own lock, so gestures never wait on detection.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/fitcheck-mcp/internal/catalog"
	"github.com/ironsheep/fitcheck-mcp/internal/detector"
	"github.com/ironsheep/fitcheck-mcp/internal/fit"
	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/ironsheep/fitcheck-mcp/internal/imaging"
	"github.com/ironsheep/fitcheck-mcp/internal/obstacles"
	"github.com/ironsheep/fitcheck-mcp/internal/placement"
)

var (
	// ErrNoDetector is returned by detection calls when no detector is set.
	ErrNoDetector = errors.New("no detector configured")

	// ErrNoItem is returned by calls that need a selected item.
	ErrNoItem = errors.New("no item selected")

	// ErrNoRoom is returned by calls that need room dimensions.
	ErrNoRoom = errors.New("no room dimensions set")
)

// Options configures a new Session.
type Options struct {
	Mode        fit.Mode
	Viewport    geometry.Rect
	Room        *geometry.Dimensions
	PixelsPerCm float64

	// Catalog resolves item IDs. Required.
	Catalog *catalog.Catalog

	// Detector feeds the registry. Nil leaves obstacle detection off until
	// SetDetector is called.
	Detector        detector.Detector
	RefreshInterval time.Duration

	// Frames is shared with a FrameDetector so previews reuse decoded frames.
	Frames *imaging.FrameCache

	// FramePath is the camera frame drawn under overlay previews, if any.
	FramePath string
}

// Session is one viewer's fit-checking state.
type Session struct {
	id string

	mu        sync.Mutex
	cfg       fit.Config
	catalog   *catalog.Catalog
	item      *catalog.Item
	state     *placement.State
	viewport  geometry.Rect
	room      *geometry.Dimensions
	frames    *imaging.FrameCache
	framePath string

	registry  *obstacles.Registry
	detector  detector.Detector
	refresher *detector.Refresher
	interval  time.Duration
}

// New creates a session with no item selected.
//
// Returns an error if the mode is unknown, the viewport is degenerate, the
// room is invalid or no catalog is given.
func New(opts Options) (*Session, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	cfg, err := fit.Preset(opts.Mode)
	if err != nil {
		return nil, err
	}
	if opts.PixelsPerCm > 0 {
		cfg.PixelsPerCm = opts.PixelsPerCm
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Viewport.IsDegenerate() {
		return nil, fmt.Errorf("invalid viewport %vx%v", opts.Viewport.Width(), opts.Viewport.Height())
	}
	if opts.Room != nil {
		if err := opts.Room.Validate(); err != nil {
			return nil, fmt.Errorf("room: %w", err)
		}
	}

	frames := opts.Frames
	if frames == nil {
		frames = imaging.NewFrameCache()
	}
	interval := opts.RefreshInterval
	if interval == 0 {
		interval = 2 * time.Second
	}

	s := &Session{
		id:        uuid.New().String(),
		cfg:       cfg,
		catalog:   opts.Catalog,
		state:     placement.New(opts.Viewport, cfg.ScaleRange),
		viewport:  opts.Viewport,
		room:      copyDims(opts.Room),
		frames:    frames,
		framePath: opts.FramePath,
		registry:  obstacles.NewRegistry(),
		interval:  interval,
	}

	if opts.Detector != nil {
		if err := s.SetDetector(opts.Detector); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Registry returns the obstacle registry the session evaluates against.
func (s *Session) Registry() *obstacles.Registry {
	return s.registry
}

// Evaluate returns the verdict for the current state.
func (s *Session) Evaluate() fit.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluateLocked()
}

func (s *Session) evaluateLocked() fit.Result {
	var dims *geometry.Dimensions
	if s.item != nil {
		d := s.item.Dimensions
		dims = &d
	}
	vp := s.viewport
	bounds := fit.Bounds{Room: s.room, Viewport: &vp}
	return fit.Evaluate(s.cfg, dims, s.state.Current(), bounds, s.registry.Snapshot())
}

// SelectItem selects a catalog item by ID or name and resets the placement.
func (s *Session) SelectItem(id string) (catalog.Item, fit.Result, error) {
	it, err := s.catalog.Find(id)
	if err != nil {
		return catalog.Item{}, fit.Result{}, err
	}
	return it, s.UseItem(it), nil
}

// UseItem selects it (typically a custom item) and resets the placement.
func (s *Session) UseItem(it catalog.Item) fit.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.item = &it
	s.state.Reset()
	return s.evaluateLocked()
}

// ClearItem deselects the current item.
func (s *Session) ClearItem() fit.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.item = nil
	return s.evaluateLocked()
}

// Item returns the selected item, if any.
func (s *Session) Item() (catalog.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.item == nil {
		return catalog.Item{}, false
	}
	return *s.item, true
}

// SetMode switches to a preset mode. The pixel factor is kept and the
// current scale is re-clamped to the new range.
func (s *Session) SetMode(mode fit.Mode) (fit.Result, error) {
	cfg, err := fit.Preset(mode)
	if err != nil {
		return fit.Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg.PixelsPerCm = s.cfg.PixelsPerCm
	if err := s.state.SetRange(cfg.ScaleRange); err != nil {
		return fit.Result{}, err
	}
	s.cfg = cfg
	return s.evaluateLocked(), nil
}

// Config returns the active fit configuration.
func (s *Session) Config() fit.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetRoom sets the room dimensions. Nil clears them.
func (s *Session) SetRoom(room *geometry.Dimensions) (fit.Result, error) {
	if room != nil {
		if err := room.Validate(); err != nil {
			return fit.Result{}, fmt.Errorf("room: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.room = copyDims(room)
	return s.evaluateLocked(), nil
}

// viewportSetter is implemented by detectors that map into viewport space.
type viewportSetter interface {
	SetViewport(geometry.Rect)
}

// SetViewport changes the screen area. The placement keeps its position;
// only the reset anchor moves.
func (s *Session) SetViewport(vp geometry.Rect) (fit.Result, error) {
	if vp.IsDegenerate() {
		return fit.Result{}, fmt.Errorf("invalid viewport %vx%v", vp.Width(), vp.Height())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewport = vp
	s.state.SetViewport(vp)
	if vs, ok := s.detector.(viewportSetter); ok {
		vs.SetViewport(vp)
	}
	return s.evaluateLocked(), nil
}

// Move places the overlay center at (x, y).
func (s *Session) Move(x, y float64) fit.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Move(x, y)
	return s.evaluateLocked()
}

// AdjustScale multiplies the scale by factor, saturating at the mode range.
func (s *Session) AdjustScale(factor float64) (fit.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.AdjustScale(factor); err != nil {
		return fit.Result{}, err
	}
	return s.evaluateLocked(), nil
}

// SetScale sets an absolute scale, clamped to the mode range.
func (s *Session) SetScale(scale float64) (fit.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.SetScale(scale); err != nil {
		return fit.Result{}, err
	}
	return s.evaluateLocked(), nil
}

// Reset returns the overlay to its default position and scale.
func (s *Session) Reset() fit.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Reset()
	return s.evaluateLocked()
}

// Placement returns the current placement and scale range.
func (s *Session) Placement() (placement.Placement, placement.ScaleRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Current(), s.state.Range()
}

// SetRegions replaces the obstacle snapshot directly, as a manual feed.
// Returns the new verdict and the number of malformed regions dropped.
func (s *Session) SetRegions(regions []obstacles.Region) (fit.Result, int) {
	dropped := s.registry.SetRegions(regions)
	return s.Evaluate(), dropped
}

// MaxScale returns the largest scale at which the selected item still fits
// the room, or 0 if it never does.
func (s *Session) MaxScale() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.item == nil {
		return 0, ErrNoItem
	}
	if s.room == nil {
		return 0, ErrNoRoom
	}
	return fit.MaxRoomScale(s.cfg, s.item.Dimensions, *s.room), nil
}

// OverlayRect returns the selected item's on-screen rectangle.
func (s *Session) OverlayRect() (geometry.Rect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlayRectLocked()
}

func (s *Session) overlayRectLocked() (geometry.Rect, error) {
	if s.item == nil {
		return geometry.Rect{}, ErrNoItem
	}
	return fit.ScreenRect(s.cfg, s.item.Dimensions, s.state.Current())
}

// RenderOverlay draws the current overlay over the latest camera frame (or a
// blank background when no frame path is set).
func (s *Session) RenderOverlay() (*imaging.OverlayResult, fit.Result, error) {
	s.mu.Lock()
	rect, err := s.overlayRectLocked()
	result := s.evaluateLocked()
	vp := s.viewport
	framePath := s.framePath
	s.mu.Unlock()

	if err != nil {
		return nil, fit.Result{}, err
	}

	frame := latestFrame(s.frames, framePath)
	preview, err := imaging.RenderOverlay(frame, vp, rect, s.registry.Snapshot(), result.Fits)
	if err != nil {
		return nil, fit.Result{}, err
	}
	return preview, result, nil
}

// SetFramePath changes the frame drawn under previews. A different path
// drops the previous frame from the cache.
func (s *Session) SetFramePath(path string) {
	s.mu.Lock()
	old := s.framePath
	s.framePath = path
	s.mu.Unlock()

	if old != "" && old != path {
		s.frames.Evict(old)
	}
}

// Close stops background detection and releases cached frames.
func (s *Session) Close() {
	s.mu.Lock()
	r := s.refresher
	s.mu.Unlock()

	if r != nil {
		r.Stop()
	}
	s.frames.Clear()
}

func copyDims(d *geometry.Dimensions) *geometry.Dimensions {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
