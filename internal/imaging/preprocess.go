package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// DefaultThreshold separates dark objects from a bright floor.
const DefaultThreshold uint8 = 96

// Downscale fits img into a maxSide × maxSide box, preserving aspect ratio.
// Frames already within the box are copied unchanged.
//
// Returns an error if maxSide is not positive.
func Downscale(img image.Image, maxSide int) (*image.NRGBA, error) {
	if maxSide <= 0 {
		return nil, fmt.Errorf("invalid max side %d: must be positive", maxSide)
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos), nil
}

// Binarize blurs img and thresholds it into a detection mask.
//
// Parameters:
//   - img: Source frame, usually the output of Downscale.
//   - blurRadius: Gaussian radius in pixels. 0 disables blurring.
//   - level: Luminance threshold. Pixels darker than level become 0
//     (foreground), all others 255.
func Binarize(img image.Image, blurRadius float64, level uint8) *image.Gray {
	src := img
	if blurRadius > 0 {
		src = blur.Gaussian(img, blurRadius)
	}
	return segment.Threshold(src, level)
}
