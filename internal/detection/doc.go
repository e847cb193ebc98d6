// Package detection finds candidate obstacles and clear floor areas in a
// binarized camera frame.
//
// This package is the heuristic backend behind detector.FrameDetector. It has
// no knowledge of furniture or fit rules: it turns a foreground mask into
// pixel-space boxes with confidence scores, and the caller maps those boxes
// into viewport coordinates.
//
// # Input
//
// Every function takes a *image.Gray mask as produced by imaging.Binarize:
//   - 0 (black) marks foreground pixels (dark, high-contrast objects)
//   - any other value marks background
//
// # Algorithm Overview
//
//  1. Blobs: 8-connected flood fill over foreground pixels groups them into
//     components; each component's bounding box becomes a Blob.
//  2. Filtering: components below a minimum area, or covering almost the
//     whole frame (usually a dark background rather than an object), are
//     discarded.
//  3. Clear areas: a sliding window scans the lower part of the frame for
//     windows with almost no foreground. Overlapping windows are merged.
//
// # Coordinate System
//
// Boxes are image.Rectangle values in the mask's coordinate space:
//   - Min is inclusive, Max is exclusive
//   - Origin at the mask's Bounds().Min
//
// # Confidence Scores
//
//   - Blobs: fill ratio, the fraction of the bounding box covered by the
//     component. Solid objects score near 1.0, thin stray edges score low.
//   - Clear areas: 1 - density/MaxClearDensity, so an empty window scores 1.0.
//
// # Limitations
//
// The heuristics assume a reasonably bright, uniform floor. Dark floors,
// strong shadows and patterned rugs produce false obstacles; the registry's
// confidence floor discards the weakest of them.
package detection
