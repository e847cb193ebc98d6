// Package ocr reads text from product-label photos using Tesseract.
//
// The recognized text feeds catalog.ParseLabelDimensions, which turns a
// photographed furniture tag into a custom item.
//
// # Prerequisites
//
// Builds with cgo enabled link against Tesseract through gosseract/v2, so the
// library and its language data must be installed:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Builds without cgo compile a stub whose functions return ErrUnavailable.
// Callers should check Available before offering label scanning.
//
// # Languages
//
// The default language is English ("eng"). Other Tesseract codes such as
// "deu" or "fra" work when their data files are installed. Digits, "x" and
// unit suffixes are all the label parser needs, so English data reads most
// labels regardless of their language.
package ocr
