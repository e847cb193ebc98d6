// Package detector supplies obstacle regions to the registry.
//
// A Detector is a black box returning zero or more regions in viewport
// coordinates. The fit evaluator never talks to a detector directly: a
// Refresher runs the detector on a timer (or on demand) and replaces the
// registry snapshot with whatever it returns.
//
// # Implementations
//
//   - StaticDetector: a fixed region list, for manual feeds and tests
//   - RandomDetector: seeded placeholder that invents plausible regions
//   - FrameDetector: heuristic still-frame analysis of a camera image on disk
//
// # Refresh Model
//
// Refresher guards the detector with a busy flag. A tick that arrives while a
// detection is still running is skipped, never queued, so a slow detector
// cannot pile up work. Detector errors are logged and leave the registry as
// it was. Stop (or cancelling the Start context) ends the timer goroutine.
package detector
