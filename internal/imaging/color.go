package imaging

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Verdict colors for the overlay border.
var (
	FitColor   = mustHex("#2ecc71")
	NoFitColor = mustHex("#e74c3c")
)

// Annotation colors for detected regions in previews.
var (
	obstacleColor = mustHex("#f39c12")
	clearColor    = mustHex("#3498db")
)

// VerdictColor returns the border color for a fit verdict.
func VerdictColor(fits bool) colorful.Color {
	if fits {
		return FitColor
	}
	return NoFitColor
}

// NormalizeHex parses a "#rgb" or "#rrggbb" color (case-insensitive, "#"
// optional) and returns it as lowercase "#rrggbb".
func NormalizeHex(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	switch len(s) {
	case 4:
		s = fmt.Sprintf("#%c%c%c%c%c%c", s[1], s[1], s[2], s[2], s[3], s[3])
	case 7:
	default:
		return "", fmt.Errorf("invalid color %q: want #rgb or #rrggbb", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c.Hex(), nil
}

// Tint blends base toward over by t (0 = base, 1 = over) in Lab space.
func Tint(base color.Color, over colorful.Color, t float64) color.Color {
	c, ok := colorful.MakeColor(base)
	if !ok {
		return over
	}
	return c.BlendLab(over, t).Clamped()
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
