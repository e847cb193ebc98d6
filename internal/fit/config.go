package fit

import (
	"fmt"
	"sort"

	"github.com/ironsheep/fitcheck-mcp/internal/placement"
)

// Mode names a preset combination of checks.
type Mode string

const (
	// ModeRoom compares the item against typed-in room dimensions only.
	ModeRoom Mode = "room"
	// ModeRoom3D is ModeRoom with the height axis compared as well.
	ModeRoom3D Mode = "room3d"
	// ModeCamera checks the overlay against detected obstacles and the camera view.
	ModeCamera Mode = "camera"
	// ModeHybrid runs every check.
	ModeHybrid Mode = "hybrid"
	// ModePreview only keeps the overlay on screen and reasonably sized.
	ModePreview Mode = "preview"
)

// Config selects which checks run and how screen geometry is derived.
type Config struct {
	Mode            Mode                 `json:"mode" yaml:"mode"`
	UseObstacles    bool                 `json:"use_obstacles" yaml:"use_obstacles"`
	UseRoomBounds   bool                 `json:"use_room_bounds" yaml:"use_room_bounds"`
	UseScreenBounds bool                 `json:"use_screen_bounds" yaml:"use_screen_bounds"`
	CompareHeight   bool                 `json:"compare_height" yaml:"compare_height"`
	ScaleRange      placement.ScaleRange `json:"scale_range" yaml:"scale_range"`

	// PixelsPerCm converts the item's physical front face into screen units
	// before any screen-space check.
	PixelsPerCm float64 `json:"pixels_per_cm" yaml:"pixels_per_cm"`
}

var presets = map[Mode]Config{
	ModeRoom: {
		Mode:          ModeRoom,
		UseRoomBounds: true,
		ScaleRange:    placement.ScaleRange{Min: 0.5, Max: 2.0},
		PixelsPerCm:   1,
	},
	ModeRoom3D: {
		Mode:          ModeRoom3D,
		UseRoomBounds: true,
		CompareHeight: true,
		ScaleRange:    placement.ScaleRange{Min: 0.5, Max: 2.0},
		PixelsPerCm:   1,
	},
	ModeCamera: {
		Mode:            ModeCamera,
		UseObstacles:    true,
		UseScreenBounds: true,
		ScaleRange:      placement.DefaultScaleRange,
		PixelsPerCm:     1,
	},
	ModeHybrid: {
		Mode:            ModeHybrid,
		UseObstacles:    true,
		UseRoomBounds:   true,
		UseScreenBounds: true,
		ScaleRange:      placement.DefaultScaleRange,
		PixelsPerCm:     1,
	},
	ModePreview: {
		Mode:            ModePreview,
		UseScreenBounds: true,
		ScaleRange:      placement.ScaleRange{Min: 0.5, Max: 2.0},
		PixelsPerCm:     1,
	},
}

// Preset returns the configuration for a named mode.
func Preset(mode Mode) (Config, error) {
	cfg, ok := presets[mode]
	if !ok {
		return Config{}, fmt.Errorf("unknown mode %q (known: %v)", mode, Modes())
	}
	return cfg, nil
}

// Modes lists the preset names in sorted order.
func Modes() []Mode {
	modes := make([]Mode, 0, len(presets))
	for m := range presets {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// Validate checks the scale range and pixel factor.
func (c Config) Validate() error {
	if err := c.ScaleRange.Validate(); err != nil {
		return fmt.Errorf("mode %s: %w", c.Mode, err)
	}
	if c.PixelsPerCm <= 0 {
		return fmt.Errorf("mode %s: pixels_per_cm must be positive, got %v", c.Mode, c.PixelsPerCm)
	}
	return nil
}

func (c Config) pixelsPerCm() float64 {
	if c.PixelsPerCm <= 0 {
		return 1
	}
	return c.PixelsPerCm
}
