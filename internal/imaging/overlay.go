package imaging

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/ironsheep/fitcheck-mcp/internal/obstacles"
)

// maxPreviewSide bounds preview images so a bogus viewport cannot allocate
// gigabytes.
const maxPreviewSide = 4096

const borderWidth = 3

// OverlayResult contains a rendered fit preview.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Fits        bool   `json:"fits"`
}

// RenderOverlay draws the furniture overlay on top of frame.
//
// The frame (or a neutral background when frame is nil) is resized to the
// viewport so viewport coordinates map directly to preview pixels. Regions
// are outlined (obstacles orange, clear areas blue), then the overlay is
// tinted and bordered in the verdict color.
//
// Returns an error if the viewport is degenerate or larger than 4096 pixels
// on a side, or if PNG encoding fails.
func RenderOverlay(frame image.Image, viewport, overlay geometry.Rect, regions []obstacles.Region, fits bool) (*OverlayResult, error) {
	if viewport.IsDegenerate() {
		return nil, fmt.Errorf("invalid viewport %vx%v", viewport.Width(), viewport.Height())
	}
	width := int(math.Round(viewport.Width()))
	height := int(math.Round(viewport.Height()))
	if width < 1 || height < 1 || width > maxPreviewSide || height > maxPreviewSide {
		return nil, fmt.Errorf("viewport %dx%d outside preview limits (1-%d)", width, height, maxPreviewSide)
	}

	var canvas *image.NRGBA
	if frame != nil {
		canvas = imaging.Resize(frame, width, height, imaging.Linear)
	} else {
		canvas = imaging.New(width, height, color.NRGBA{R: 40, G: 40, B: 40, A: 255})
	}

	// Coordinates far outside the canvas are pinned just past its edges so
	// they still land off-canvas after the border inset.
	pad := float64(borderWidth + 1)
	pin := func(v, limit float64) int {
		return int(math.Round(math.Max(-pad, math.Min(limit+pad, v))))
	}
	toCanvas := func(r geometry.Rect) image.Rectangle {
		return image.Rect(
			pin(r.Left-viewport.Left, float64(width)),
			pin(r.Top-viewport.Top, float64(height)),
			pin(r.Right-viewport.Left, float64(width)),
			pin(r.Bottom-viewport.Top, float64(height)),
		)
	}

	for _, region := range regions {
		if region.Confidence <= obstacles.ConfidenceThreshold {
			continue
		}
		c := obstacleColor
		if region.Class == obstacles.ClassClear {
			c = clearColor
		}
		strokeRect(canvas, toCanvas(region.Rect()), c, 1)
	}

	verdict := VerdictColor(fits)
	box := toCanvas(overlay).Intersect(canvas.Bounds())
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			canvas.Set(x, y, Tint(canvas.At(x, y), verdict, 0.3))
		}
	}
	strokeRect(canvas, toCanvas(overlay), verdict, borderWidth)

	data, err := EncodePNG(canvas)
	if err != nil {
		return nil, err
	}

	return &OverlayResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
		Fits:        fits,
	}, nil
}

// strokeRect draws a border of the given thickness inside r, clipped to img.
// Only the visible part of each edge is walked.
func strokeRect(img *image.NRGBA, r image.Rectangle, c color.Color, thickness int) {
	clip := img.Bounds()
	for t := 0; t < thickness; t++ {
		inner := image.Rectangle{
			Min: image.Pt(r.Min.X+t, r.Min.Y+t),
			Max: image.Pt(r.Max.X-1-t, r.Max.Y-1-t),
		}
		if inner.Min.X > inner.Max.X || inner.Min.Y > inner.Max.Y {
			return
		}

		x0, x1 := max(inner.Min.X, clip.Min.X), min(inner.Max.X, clip.Max.X-1)
		for _, y := range []int{inner.Min.Y, inner.Max.Y} {
			if y < clip.Min.Y || y >= clip.Max.Y {
				continue
			}
			for x := x0; x <= x1; x++ {
				img.Set(x, y, c)
			}
		}

		y0, y1 := max(inner.Min.Y, clip.Min.Y), min(inner.Max.Y, clip.Max.Y-1)
		for _, x := range []int{inner.Min.X, inner.Max.X} {
			if x < clip.Min.X || x >= clip.Max.X {
				continue
			}
			for y := y0; y <= y1; y++ {
				img.Set(x, y, c)
			}
		}
	}
}
