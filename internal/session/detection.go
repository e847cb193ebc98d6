package session

import (
	"context"
	"image"
	"log"

	"github.com/ironsheep/fitcheck-mcp/internal/detector"
	"github.com/ironsheep/fitcheck-mcp/internal/fit"
	"github.com/ironsheep/fitcheck-mcp/internal/imaging"
)

// SetDetector swaps the detector. A running refresher is stopped; it is not
// restarted for the new detector. Passing nil disables detection.
func (s *Session) SetDetector(d detector.Detector) error {
	var r *detector.Refresher
	if d != nil {
		var err error
		r, err = detector.NewRefresher(d, s.registry, s.interval)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	old := s.refresher
	s.detector = d
	s.refresher = r
	if vs, ok := d.(viewportSetter); ok {
		vs.SetViewport(s.viewport)
	}
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	return nil
}

func (s *Session) currentRefresher() (*detector.Refresher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refresher == nil {
		return nil, ErrNoDetector
	}
	return s.refresher, nil
}

// DetectNow runs one detection cycle and re-evaluates.
//
// ran is false when a refresh was already in flight and this one was
// skipped. A detector error is returned with the verdict against the
// unchanged registry.
func (s *Session) DetectNow(ctx context.Context) (bool, fit.Result, error) {
	r, err := s.currentRefresher()
	if err != nil {
		return false, fit.Result{}, err
	}

	ran, err := r.RefreshNow(ctx)
	return ran, s.Evaluate(), err
}

// StartDetector begins periodic detection until StopDetector, Close, or
// cancellation of ctx.
func (s *Session) StartDetector(ctx context.Context) error {
	r, err := s.currentRefresher()
	if err != nil {
		return err
	}
	return r.Start(ctx)
}

// StopDetector stops periodic detection. It is a no-op when nothing runs.
func (s *Session) StopDetector() {
	if r, err := s.currentRefresher(); err == nil {
		r.Stop()
	}
}

// DetectorStats returns the refresher counters, or false without a detector.
func (s *Session) DetectorStats() (detector.Stats, bool) {
	r, err := s.currentRefresher()
	if err != nil {
		return detector.Stats{}, false
	}
	return r.Stats(), true
}

// latestFrame returns the cached frame at path, or nil when there is none.
// Preview rendering falls back to a blank background rather than failing.
func latestFrame(frames *imaging.FrameCache, path string) image.Image {
	if path == "" {
		return nil
	}
	img, err := frames.Load(path)
	if err != nil {
		log.Printf("session: preview without frame: %v", err)
		return nil
	}
	return img
}
