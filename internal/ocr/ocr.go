package ocr

import (
	"errors"
	"image"
)

// ErrUnavailable is returned when the binary was built without Tesseract.
var ErrUnavailable = errors.New("OCR unavailable: built without cgo/tesseract")

// DefaultLanguage is used when no language is given.
const DefaultLanguage = "eng"

// Word is one recognized word with its location.
type Word struct {
	Text string `json:"text"`

	// Confidence is the recognition confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds image.Rectangle `json:"bounds"`
}

// Result is the text recognized in one image.
type Result struct {
	// Text is all recognized text with its original line breaks.
	Text string `json:"text"`

	// Words may be empty when word boxes could not be extracted.
	Words []Word `json:"words"`
}

// Info describes the OCR backend.
type Info struct {
	Available bool   `json:"available"`
	Backend   string `json:"backend"`
	Version   string `json:"version,omitempty"`
}
