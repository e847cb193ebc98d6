package detection

import (
	"image"
	"sort"
)

// maxFrameCoverage is the largest fraction of the frame a single blob may
// cover before it is treated as background.
const maxFrameCoverage = 0.9

// minComponentPixels discards specks smaller than this regardless of minArea.
const minComponentPixels = 10

// Blob is a connected group of foreground pixels.
type Blob struct {
	// Bounds is the bounding box of the component (Max exclusive).
	Bounds image.Rectangle `json:"bounds"`

	// Pixels is the number of foreground pixels in the component.
	Pixels int `json:"pixels"`

	// Confidence is Pixels divided by the bounding box area (0.0 to 1.0).
	Confidence float64 `json:"confidence"`
}

// DetectBlobs finds connected foreground components in mask.
//
// Parameters:
//   - mask: Binarized frame; 0 is foreground.
//   - minArea: Minimum bounding-box area in square pixels. Typical: 0.5% of
//     the frame area.
//
// Returns blobs sorted by confidence (highest first), then by area.
//
// # Algorithm
//
//  1. Scan the mask row by row for unvisited foreground pixels
//  2. Flood-fill each one (8-connected, iterative) to collect its component
//  3. Compute the component's bounding box and fill ratio
//  4. Drop specks, components under minArea, and components covering more
//     than 90% of the frame
func DetectBlobs(mask *image.Gray, minArea int) []Blob {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	frameArea := width * height

	visited := make([]bool, width*height)
	blobs := make([]Blob, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !isForeground(mask, x, y) {
				continue
			}

			box, pixels := floodFill(mask, visited, x, y)
			if pixels < minComponentPixels {
				continue
			}

			boxArea := area(box)
			if boxArea < minArea || float64(boxArea) > maxFrameCoverage*float64(frameArea) {
				continue
			}

			blobs = append(blobs, Blob{
				Bounds:     box.Add(bounds.Min),
				Pixels:     pixels,
				Confidence: float64(pixels) / float64(boxArea),
			})
		}
	}

	sort.SliceStable(blobs, func(i, j int) bool {
		if blobs[i].Confidence != blobs[j].Confidence {
			return blobs[i].Confidence > blobs[j].Confidence
		}
		return area(blobs[i].Bounds) > area(blobs[j].Bounds)
	})

	return blobs
}

// floodFill collects the component containing (startX, startY), marking it
// visited. Coordinates are relative to the mask origin. Uses an explicit stack
// so large components cannot overflow the goroutine stack.
func floodFill(mask *image.Gray, visited []bool, startX, startY int) (image.Rectangle, int) {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	minX, minY := startX, startY
	maxX, maxY := startX, startY
	pixels := 0

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		idx := p.Y*width + p.X
		if visited[idx] || !isForeground(mask, p.X, p.Y) {
			continue
		}
		visited[idx] = true
		pixels++

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}

	return image.Rect(minX, minY, maxX+1, maxY+1), pixels
}

// isForeground reads the mask at (x, y) relative to its origin.
func isForeground(mask *image.Gray, x, y int) bool {
	b := mask.Bounds()
	return mask.GrayAt(x+b.Min.X, y+b.Min.Y).Y == 0
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
