package detector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ironsheep/fitcheck-mcp/internal/logging"
	"github.com/ironsheep/fitcheck-mcp/internal/obstacles"
)

// ErrRunning is returned by Start when the refresher is already running.
var ErrRunning = errors.New("refresher already running")

// MinInterval is the shortest accepted refresh period.
const MinInterval = 100 * time.Millisecond

// Stats counts refresh outcomes since the refresher was created.
type Stats struct {
	Runs     uint64 `json:"runs"`
	Skipped  uint64 `json:"skipped"`
	Failures uint64 `json:"failures"`
	Running  bool   `json:"running"`
	Busy     bool   `json:"busy"`
}

// Refresher feeds a registry from a detector, on a timer or on demand.
//
// # Example Usage
//
//	r, _ := detector.NewRefresher(det, registry, 2*time.Second)
//	if err := r.Start(ctx); err != nil {
//	    return err
//	}
//	defer r.Stop()
type Refresher struct {
	detector Detector
	registry *obstacles.Registry
	interval time.Duration

	busy     atomic.Bool
	runs     atomic.Uint64
	skipped  atomic.Uint64
	failures atomic.Uint64

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	inflight sync.WaitGroup
}

// NewRefresher creates a stopped refresher.
//
// Returns an error if detector or registry is nil, or interval is shorter
// than MinInterval.
func NewRefresher(d Detector, registry *obstacles.Registry, interval time.Duration) (*Refresher, error) {
	if d == nil || registry == nil {
		return nil, fmt.Errorf("detector and registry are required")
	}
	if interval < MinInterval {
		return nil, fmt.Errorf("refresh interval %v shorter than %v", interval, MinInterval)
	}
	return &Refresher{
		detector: d,
		registry: registry,
		interval: interval,
	}, nil
}

// Interval returns the refresh period.
func (r *Refresher) Interval() time.Duration {
	return r.interval
}

// RefreshNow runs one detection and replaces the registry snapshot.
//
// Returns false without calling the detector when another refresh is still
// in flight. A detector error is returned and logged, and the registry keeps
// its previous snapshot.
func (r *Refresher) RefreshNow(ctx context.Context) (bool, error) {
	if !r.busy.CompareAndSwap(false, true) {
		r.skipped.Add(1)
		logging.Debugf("detector: refresh skipped, previous still running")
		return false, nil
	}
	defer r.busy.Store(false)

	r.runs.Add(1)
	regions, err := r.detector.Detect(ctx)
	if err != nil {
		r.failures.Add(1)
		log.Printf("detector: refresh failed: %v", err)
		return true, err
	}

	dropped := r.registry.SetRegions(regions)
	logging.Debugf("detector: %d regions (%d dropped), version %d", len(regions), dropped, r.registry.Version())
	return true, nil
}

// Start runs an immediate refresh and then one per interval until ctx is
// cancelled or Stop is called. Ticks that find a refresh in flight are
// skipped.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runningLocked() {
		return ErrRunning
	}

	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	r.inflight.Add(1)
	go r.loop(ctx, r.done)

	log.Printf("detector: refresher started (every %v)", r.interval)
	return nil
}

func (r *Refresher) loop(ctx context.Context, done chan struct{}) {
	defer r.inflight.Done()
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick refreshes on its own goroutine so a slow detector shows up as
// skipped ticks rather than a drifting timer.
func (r *Refresher) tick(ctx context.Context) {
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		_, _ = r.RefreshNow(ctx)
	}()
}

// Stop cancels the timer and waits for any in-flight refresh to return.
// Stopping a stopped refresher is a no-op.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
	r.inflight.Wait()
	log.Printf("detector: refresher stopped")
}

// Running reports whether the timer is active. A refresher whose Start
// context was cancelled is no longer running and may be started again.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runningLocked()
}

func (r *Refresher) runningLocked() bool {
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Stats returns the current counters.
func (r *Refresher) Stats() Stats {
	return Stats{
		Runs:     r.runs.Load(),
		Skipped:  r.skipped.Load(),
		Failures: r.failures.Load(),
		Running:  r.Running(),
		Busy:     r.busy.Load(),
	}
}
