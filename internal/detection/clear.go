package detection

import (
	"image"
	"math"
	"sort"
)

// MaxClearDensity is the highest foreground density a window may have and
// still count as clear floor.
const MaxClearDensity = 0.02

// floorStart is the fraction of the frame height below which floor is searched.
const floorStart = 0.5

// ClearArea is a window of the frame with (almost) no foreground.
type ClearArea struct {
	Bounds     image.Rectangle `json:"bounds"`
	Confidence float64         `json:"confidence"`
}

// DetectClearAreas scans the lower half of mask for empty floor.
//
// The window is a quarter of the frame wide and a sixth of it tall and moves
// in half-window steps. Windows with density <= MaxClearDensity are kept with
// confidence 1 - density/MaxClearDensity; overlapping windows are merged into
// their union, keeping the highest confidence.
//
// Returns areas sorted by confidence (highest first). Frames smaller than
// 8×12 pixels yield no areas.
func DetectClearAreas(mask *image.Gray) []ClearArea {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	winW := width / 4
	winH := height / 6
	if winW < 2 || winH < 2 {
		return []ClearArea{}
	}
	stepX := winW / 2
	stepY := winH / 2

	candidates := make([]ClearArea, 0)
	startY := int(float64(height) * floorStart)

	for y := startY; y <= height-winH; y += stepY {
		for x := 0; x <= width-winW; x += stepX {
			count := 0
			for wy := 0; wy < winH; wy++ {
				for wx := 0; wx < winW; wx++ {
					if isForeground(mask, x+wx, y+wy) {
						count++
					}
				}
			}

			density := float64(count) / float64(winW*winH)
			if density > MaxClearDensity {
				continue
			}

			confidence := 1.0 - density/MaxClearDensity
			candidates = append(candidates, ClearArea{
				Bounds:     image.Rect(x, y, x+winW, y+winH).Add(bounds.Min),
				Confidence: math.Round(confidence*1000) / 1000,
			})
		}
	}

	merged := mergeOverlapping(candidates)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})

	return merged
}

// mergeOverlapping folds each area into the first merged area it overlaps.
func mergeOverlapping(areas []ClearArea) []ClearArea {
	merged := make([]ClearArea, 0, len(areas))

	for _, a := range areas {
		folded := false
		for i := range merged {
			if a.Bounds.Overlaps(merged[i].Bounds) {
				merged[i].Bounds = merged[i].Bounds.Union(a.Bounds)
				merged[i].Confidence = math.Max(merged[i].Confidence, a.Confidence)
				folded = true
				break
			}
		}
		if !folded {
			merged = append(merged, a)
		}
	}

	return merged
}
