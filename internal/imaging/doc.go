// Package imaging loads camera frames and prepares them for obstacle
// detection and overlay previews.
//
// # Coordinate System
//
// Frames use the standard image convention: (0,0) at top-left, X rightward,
// Y downward. Overlay rendering maps the viewport rectangle onto the frame so
// viewport coordinates and preview pixels line up one to one.
//
// # Pipeline
//
// Detection runs on a reduced copy of the frame:
//
//  1. Downscale: fit the frame into a maximum side length (Lanczos)
//  2. Blur: Gaussian blur to suppress sensor noise and floor texture
//  3. Threshold: split into foreground (0) and background (255)
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. The periodic refresher loads frames
// from its own goroutine while tool calls may evict or clear the cache.
//
// # Colors
//
// Verdict colors follow the overlay convention: green when the item fits, red
// when it does not. Item colors are normalized to lowercase "#rrggbb".
package imaging
