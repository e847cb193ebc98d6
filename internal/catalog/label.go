package catalog

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
)

// ErrNoDimensions is returned when label text holds no usable dimensions.
var ErrNoDimensions = errors.New("no dimensions found in label text")

const (
	number    = `(\d+(?:[.,]\d+)?)`
	unit      = `((?:cm|mm|in(?:ch(?:es)?)?)\b|")`
	innerUnit = `(cm|mm|in(?:ch(?:es)?)?|")?`
)

var (
	// 200 x 85 x 90 cm, 200×85×90, 2000*850*900mm, 80in x 30in x 20
	tripleRe = regexp.MustCompile(`(?i)` + number + `\s*` + innerUnit + `\s*[x×*]\s*` + number + `\s*` + innerUnit + `\s*[x×*]\s*` + number + `\s*` + unit + `?`)

	// W: 200cm, Height 85 cm, D=90
	axisRe = regexp.MustCompile(`(?i)\b(width|height|depth|w|h|d)\b\s*[:=]?\s*` + number + `\s*` + unit + `?`)
)

// ParseLabelDimensions extracts width, height and depth from OCR'd label
// text.
//
// A "W x H x D" triple is preferred; otherwise labelled axes are collected
// individually and all three must be present. Values in millimetres or
// inches are converted to centimetres. A triple value without its own unit
// takes the trailing unit, or the first unit in the triple when there is no
// trailing one; text without any unit is read as centimetres. Any axis above
// MaxLength rejects the reading.
func ParseLabelDimensions(text string) (geometry.Dimensions, error) {
	if m := tripleRe.FindStringSubmatch(text); m != nil {
		fallback := m[6]
		if fallback == "" {
			fallback = firstNonEmpty(m[2], m[4])
		}
		d := geometry.Dimensions{
			Width:  toCm(m[1], firstNonEmpty(m[2], fallback)),
			Height: toCm(m[3], firstNonEmpty(m[4], fallback)),
			Depth:  toCm(m[5], firstNonEmpty(m[6], fallback)),
		}
		if usable(d) {
			return d, nil
		}
	}

	var d geometry.Dimensions
	for _, m := range axisRe.FindAllStringSubmatch(text, -1) {
		v := toCm(m[2], m[3])
		switch strings.ToLower(m[1])[0] {
		case 'w':
			if d.Width == 0 {
				d.Width = v
			}
		case 'h':
			if d.Height == 0 {
				d.Height = v
			}
		case 'd':
			if d.Depth == 0 {
				d.Depth = v
			}
		}
	}
	if !usable(d) {
		return geometry.Dimensions{}, ErrNoDimensions
	}
	return d, nil
}

func usable(d geometry.Dimensions) bool {
	return d.Validate() == nil && d.Width <= MaxLength && d.Height <= MaxLength && d.Depth <= MaxLength
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func toCm(value, unit string) float64 {
	v, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	switch u := strings.ToLower(unit); {
	case u == "mm":
		return v / 10
	case u == `"` || strings.HasPrefix(u, "in"):
		return v * 2.54
	}
	return v
}
