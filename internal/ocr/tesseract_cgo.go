//go:build cgo

package ocr

import (
	"fmt"
	"image"
	"os"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/fitcheck-mcp/internal/imaging"
)

// Available reports whether Tesseract can be used.
func Available() bool {
	return true
}

// GetInfo describes the linked Tesseract library.
func GetInfo() Info {
	client := gosseract.NewClient()
	defer client.Close()

	return Info{
		Available: true,
		Backend:   "gosseract",
		Version:   client.Version(),
	}
}

// ExtractText runs OCR on the image file at path.
//
// Returns an error if the file cannot be read, the language data is missing,
// or recognition fails.
func ExtractText(path, lang string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	client, err := newClient(lang)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImage(path); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	return recognize(client)
}

// ExtractImage runs OCR on an in-memory image, typically the output of
// imaging.PrepareLabel.
func ExtractImage(img image.Image, lang string) (*Result, error) {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	client, err := newClient(lang)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	return recognize(client)
}

func newClient(lang string) (*gosseract.Client, error) {
	client := gosseract.NewClient()

	if prefix := tessdataPrefix(); prefix != "" {
		if err := client.SetTessdataPrefix(prefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(language(lang)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return client, nil
}

func recognize(client *gosseract.Client) (*Result, error) {
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]Word, 0)
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil {
		for _, box := range boxes {
			words = append(words, Word{
				Text:       box.Word,
				Confidence: float64(box.Confidence) / 100.0,
				Bounds:     box.Box,
			})
		}
	}

	return &Result{Text: text, Words: words}, nil
}

func language(lang string) string {
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}

// tessdataPrefix returns the FITCHECK_TESSDATA language data override.
func tessdataPrefix() string {
	return os.Getenv("FITCHECK_TESSDATA")
}
