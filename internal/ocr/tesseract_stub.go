//go:build !cgo

package ocr

import (
	"fmt"
	"image"
	"os"
)

// Available reports whether Tesseract can be used.
func Available() bool {
	return false
}

// GetInfo describes the missing backend.
func GetInfo() Info {
	return Info{Available: false, Backend: "none"}
}

// ExtractText always fails with ErrUnavailable once the file is found.
func ExtractText(path, lang string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return nil, ErrUnavailable
}

// ExtractImage always fails with ErrUnavailable.
func ExtractImage(img image.Image, lang string) (*Result, error) {
	return nil, ErrUnavailable
}
