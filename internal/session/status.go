package session

import (
	"github.com/ironsheep/fitcheck-mcp/internal/catalog"
	"github.com/ironsheep/fitcheck-mcp/internal/detector"
	"github.com/ironsheep/fitcheck-mcp/internal/fit"
	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/ironsheep/fitcheck-mcp/internal/placement"
)

// Status is a snapshot of everything a presentation layer draws.
type Status struct {
	ID         string               `json:"id"`
	Config     fit.Config           `json:"config"`
	Item       *catalog.Item        `json:"item,omitempty"`
	Placement  placement.Placement  `json:"placement"`
	ScaleRange placement.ScaleRange `json:"scale_range"`
	Overlay    *geometry.Rect       `json:"overlay,omitempty"`
	Viewport   geometry.Rect        `json:"viewport"`
	Room       *geometry.Dimensions `json:"room,omitempty"`
	Regions    int                  `json:"regions"`
	Version    uint64               `json:"registry_version"`
	Dropped    uint64               `json:"dropped_regions"`
	Detector   *detector.Stats      `json:"detector,omitempty"`
	Result     fit.Result           `json:"result"`
}

// Status returns the current state and verdict.
func (s *Session) Status() Status {
	s.mu.Lock()
	st := Status{
		ID:         s.id,
		Config:     s.cfg,
		Placement:  s.state.Current(),
		ScaleRange: s.state.Range(),
		Viewport:   s.viewport,
		Room:       copyDims(s.room),
		Result:     s.evaluateLocked(),
	}
	if s.item != nil {
		it := *s.item
		st.Item = &it
		if r, err := s.overlayRectLocked(); err == nil {
			st.Overlay = &r
		}
	}
	refresher := s.refresher
	s.mu.Unlock()

	st.Regions = len(s.registry.Snapshot())
	st.Version = s.registry.Version()
	st.Dropped = s.registry.Dropped()
	if refresher != nil {
		stats := refresher.Stats()
		st.Detector = &stats
	}
	return st
}
