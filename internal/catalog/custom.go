package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/ironsheep/fitcheck-mcp/internal/imaging"
)

// Fallback dimensions for custom items, in centimetres.
const (
	FallbackWidth  = 100.0
	FallbackHeight = 100.0
	FallbackDepth  = 50.0
)

// MaxLength is the largest accepted furniture dimension, in centimetres.
const MaxLength = 10000.0

const (
	customCategory = "custom"
	customName     = "Custom Item"
	defaultColor   = "#9b59b6"
)

// CustomSpec is user-entered input for a custom item. Every field is raw
// text as typed.
type CustomSpec struct {
	Name        string `json:"name"`
	Width       string `json:"width"`
	Height      string `json:"height"`
	Depth       string `json:"depth"`
	Color       string `json:"color"`
	SourceImage string `json:"source_image"`
}

// NewCustom builds a fresh custom item from spec.
//
// Unusable dimensions, including any above MaxLength, fall back to
// FallbackWidth, FallbackHeight and FallbackDepth, and an invalid color falls back to the default custom
// color. The names of the fields that fell back are returned alongside the
// item (width, height, depth, color).
func NewCustom(spec CustomSpec) (Item, []string) {
	var fellBack []string

	axis := func(name, raw string, fallback float64) float64 {
		v, ok := parseLength(raw)
		if !ok {
			fellBack = append(fellBack, name)
			return fallback
		}
		return v
	}

	dims := geometry.Dimensions{
		Width:  axis("width", spec.Width, FallbackWidth),
		Height: axis("height", spec.Height, FallbackHeight),
		Depth:  axis("depth", spec.Depth, FallbackDepth),
	}

	color := defaultColor
	if spec.Color != "" {
		if c, err := imaging.NormalizeHex(spec.Color); err == nil {
			color = c
		} else {
			fellBack = append(fellBack, "color")
		}
	}

	name := strings.TrimSpace(spec.Name)
	if name == "" {
		name = customName
	}

	return Item{
		ID:          "custom-" + uuid.New().String(),
		Name:        name,
		Category:    customCategory,
		Dimensions:  dims,
		Color:       color,
		SourceImage: spec.SourceImage,
	}, fellBack
}

// parseLength reads a positive number up to MaxLength, tolerating a
// trailing "cm" and a decimal comma.
func parseLength(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimSpace(strings.TrimSuffix(s, "cm"))
	s = strings.Replace(s, ",", ".", 1)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v > MaxLength {
		return 0, false
	}
	return v, true
}
