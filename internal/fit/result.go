package fit

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ironsheep/fitcheck-mcp/internal/obstacles"
)

// Code identifies which rule produced a Result.
type Code string

const (
	CodeNone        Code = "none"
	CodeFits        Code = "fits"
	CodeClear       Code = "clear"
	CodeBlocked     Code = "blocked"
	CodeOutOfBounds Code = "out_of_bounds"
	CodeTooWide     Code = "too_wide"
	CodeTooDeep     Code = "too_deep"
	CodeTooTall     Code = "too_tall"
	CodeTooLarge    Code = "too_large"
	CodeInvalid     Code = "invalid"
)

// Result is the fit verdict for one evaluation. It is derived on demand and
// never stored.
type Result struct {
	Fits           bool              `json:"fits"`
	Reason         string            `json:"reason"`
	Code           Code              `json:"code"`
	BlockingRegion *obstacles.Region `json:"blocking_region,omitempty"`
}

const (
	reasonFits        = "Fits!"
	reasonClear       = "Clear space detected"
	reasonOutOfBounds = "Out of bounds"
	reasonTooLarge    = "Too large for view"
	reasonInvalid     = "Invalid scale"
)

func fits(code Code, reason string) Result {
	return Result{Fits: true, Reason: reason, Code: code}
}

func rejected(code Code, reason string) Result {
	return Result{Fits: false, Reason: reason, Code: code}
}

func blockedBy(region obstacles.Region) Result {
	r := rejected(CodeBlocked, fmt.Sprintf("Blocked by %s (%.0f%% confidence)", region.Name(), region.Confidence*100))
	r.BlockingRegion = &region
	return r
}

func exceeds(code Code, axis string, item, room float64) Result {
	var word string
	switch code {
	case CodeTooWide:
		word = "Too wide"
	case CodeTooDeep:
		word = "Too deep"
	default:
		word = "Too tall"
	}
	return rejected(code, fmt.Sprintf("%s: %scm exceeds room %s %scm", word, cm(item), axis, cm(room)))
}

// cm rounds to one decimal and drops a trailing ".0".
func cm(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
