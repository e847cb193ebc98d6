// Package config loads fitcheck-mcp settings from an optional YAML file and
// FITCHECK_* environment variables.
//
// Precedence, lowest first: built-in defaults, the YAML file, environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/fitcheck-mcp/internal/detector"
	"github.com/ironsheep/fitcheck-mcp/internal/fit"
	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/ironsheep/fitcheck-mcp/internal/obstacles"
)

// Viewport is the screen area the overlay lives in, in screen units.
type Viewport struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Rect returns the viewport anchored at the origin.
func (v Viewport) Rect() geometry.Rect {
	return geometry.RectFromXYWH(0, 0, v.Width, v.Height)
}

// Detector selects and tunes the obstacle detector. Regions is the fixed
// scene reported by the static kind.
type Detector struct {
	Kind       detector.Kind         `yaml:"kind" json:"kind"`
	Interval   time.Duration         `yaml:"interval" json:"interval"`
	AutoStart  bool                  `yaml:"auto_start" json:"auto_start"`
	Seed       int64                 `yaml:"seed" json:"seed"`
	MaxRegions int                   `yaml:"max_regions" json:"max_regions"`
	FramePath  string                `yaml:"frame_path" json:"frame_path"`
	Frame      detector.FrameOptions `yaml:"frame" json:"frame"`
	Regions    []obstacles.Region    `yaml:"regions" json:"regions,omitempty"`
}

// Config holds every setting.
type Config struct {
	Mode        fit.Mode             `yaml:"mode" json:"mode"`
	Viewport    Viewport             `yaml:"viewport" json:"viewport"`
	Room        *geometry.Dimensions `yaml:"room" json:"room,omitempty"`
	PixelsPerCm float64              `yaml:"pixels_per_cm" json:"pixels_per_cm"`
	CatalogFile string               `yaml:"catalog_file" json:"catalog_file,omitempty"`
	OCRLanguage string               `yaml:"ocr_language" json:"ocr_language"`
	LogLevel    string               `yaml:"log_level" json:"log_level"`
	Detector    Detector             `yaml:"detector" json:"detector"`
}

// Default returns the built-in settings: camera mode on a 1280×720 viewport
// with the random placeholder detector refreshing every two seconds.
func Default() *Config {
	return &Config{
		Mode:        fit.ModeCamera,
		Viewport:    Viewport{Width: 1280, Height: 720},
		PixelsPerCm: 1,
		OCRLanguage: "eng",
		LogLevel:    "info",
		Detector: Detector{
			Kind:       detector.KindRandom,
			Interval:   2 * time.Second,
			Seed:       1,
			MaxRegions: detector.DefaultMaxRegions,
			Frame:      detector.DefaultFrameOptions(),
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Mode = fit.Mode(getEnv("FITCHECK_MODE", string(c.Mode)))
	c.Viewport.Width = getEnvAsFloat("FITCHECK_VIEWPORT_WIDTH", c.Viewport.Width)
	c.Viewport.Height = getEnvAsFloat("FITCHECK_VIEWPORT_HEIGHT", c.Viewport.Height)
	c.PixelsPerCm = getEnvAsFloat("FITCHECK_PIXELS_PER_CM", c.PixelsPerCm)
	c.CatalogFile = getEnv("FITCHECK_CATALOG", c.CatalogFile)
	c.OCRLanguage = getEnv("FITCHECK_OCR_LANG", c.OCRLanguage)
	c.LogLevel = getEnv("FITCHECK_LOG_LEVEL", c.LogLevel)

	c.Detector.Kind = detector.Kind(getEnv("FITCHECK_DETECTOR", string(c.Detector.Kind)))
	c.Detector.Interval = getEnvAsDuration("FITCHECK_DETECTOR_INTERVAL", c.Detector.Interval)
	c.Detector.Seed = int64(getEnvAsInt("FITCHECK_DETECTOR_SEED", int(c.Detector.Seed)))
	c.Detector.FramePath = getEnv("FITCHECK_FRAME_PATH", c.Detector.FramePath)
	c.Detector.AutoStart = getEnvAsBool("FITCHECK_DETECTOR_AUTOSTART", c.Detector.AutoStart)

	if room := os.Getenv("FITCHECK_ROOM"); room != "" {
		d, err := ParseRoom(room)
		if err != nil {
			return fmt.Errorf("FITCHECK_ROOM: %w", err)
		}
		c.Room = &d
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if _, err := fit.Preset(c.Mode); err != nil {
		return err
	}
	if !(c.Viewport.Width > 0 && c.Viewport.Height > 0) || math.IsInf(c.Viewport.Width, 0) || math.IsInf(c.Viewport.Height, 0) {
		return fmt.Errorf("invalid viewport %vx%v: must be positive", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Room != nil {
		if err := c.Room.Validate(); err != nil {
			return fmt.Errorf("room: %w", err)
		}
	}
	if !(c.PixelsPerCm > 0) || math.IsInf(c.PixelsPerCm, 0) {
		return fmt.Errorf("invalid pixels_per_cm %v: must be positive", c.PixelsPerCm)
	}

	switch c.Detector.Kind {
	case detector.KindNone, detector.KindRandom:
	case detector.KindStatic:
		if len(c.Detector.Regions) == 0 {
			return fmt.Errorf("detector kind %q requires regions", c.Detector.Kind)
		}
		for i, r := range c.Detector.Regions {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("detector region %d: %w", i, err)
			}
		}
	case detector.KindFrame:
		if c.Detector.FramePath == "" {
			return fmt.Errorf("detector kind %q requires frame_path", c.Detector.Kind)
		}
	default:
		return fmt.Errorf("unknown detector kind %q", c.Detector.Kind)
	}
	if c.Detector.Kind != detector.KindStatic && len(c.Detector.Regions) > 0 {
		return fmt.Errorf("detector regions only apply to kind %q", detector.KindStatic)
	}
	if c.Detector.Kind != detector.KindNone && c.Detector.Interval < detector.MinInterval {
		return fmt.Errorf("detector interval %v shorter than %v", c.Detector.Interval, detector.MinInterval)
	}
	return nil
}

// ParseRoom reads room dimensions written as "WxHxD" in centimetres.
func ParseRoom(s string) (geometry.Dimensions, error) {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == 'x' || r == '×' || r == ','
	})
	if len(parts) != 3 {
		return geometry.Dimensions{}, fmt.Errorf("room %q: want WxHxD", s)
	}

	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Dimensions{}, fmt.Errorf("room %q: %w", s, err)
		}
		vals[i] = v
	}

	d := geometry.Dimensions{Width: vals[0], Height: vals[1], Depth: vals[2]}
	if err := d.Validate(); err != nil {
		return geometry.Dimensions{}, err
	}
	return d, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}
