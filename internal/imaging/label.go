package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// minLabelHeight is the height small label crops are upscaled to before OCR.
const minLabelHeight = 600

// PrepareLabel crops a product-label photo to region and readies it for OCR.
//
// An empty region keeps the whole photo. Crops shorter than 600 pixels are
// upscaled, then the result is converted to grayscale with boosted contrast.
//
// Returns an error if region is not inside the photo.
func PrepareLabel(img image.Image, region image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if region.Empty() {
		region = bounds
	}
	if !region.In(bounds) {
		return nil, fmt.Errorf("label region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			region.Min.X, region.Min.Y, region.Max.X, region.Max.Y,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	label := imaging.Crop(img, region)
	if h := label.Bounds().Dy(); h < minLabelHeight {
		label = imaging.Resize(label, 0, minLabelHeight, imaging.Lanczos)
	}
	label = imaging.Grayscale(label)
	return imaging.AdjustContrast(label, 20), nil
}

// NamedRegion resolves a region name such as "bottom-half" against bounds.
//
// Supported names: top-left, top-right, bottom-left, bottom-right, top-half,
// bottom-half, left-half, right-half, center and full (or empty).
func NamedRegion(bounds image.Rectangle, name string) (image.Rectangle, error) {
	w := bounds.Dx()
	h := bounds.Dy()
	midX := w / 2
	midY := h / 2

	var r image.Rectangle
	switch name {
	case "", "full":
		r = image.Rect(0, 0, w, h)
	case "top-left":
		r = image.Rect(0, 0, midX, midY)
	case "top-right":
		r = image.Rect(midX, 0, w, midY)
	case "bottom-left":
		r = image.Rect(0, midY, midX, h)
	case "bottom-right":
		r = image.Rect(midX, midY, w, h)
	case "top-half":
		r = image.Rect(0, 0, w, midY)
	case "bottom-half":
		r = image.Rect(0, midY, w, h)
	case "left-half":
		r = image.Rect(0, 0, midX, h)
	case "right-half":
		r = image.Rect(midX, 0, w, h)
	case "center":
		r = image.Rect(w/4, h/4, w-w/4, h-h/4)
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", name)
	}
	return r.Add(bounds.Min), nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
