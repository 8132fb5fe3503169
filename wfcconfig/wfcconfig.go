// Package wfcconfig loads the overlapping-WFC run parameters from
// environment variables, in the shape of the example pack's
// internal/config package: struct fields tagged with their env var and
// default, a zero-value-safe Load, and a Validate that rejects impossible
// dimensions before a Solver is ever built.
package wfcconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds everything a cmd/wfc invocation needs beyond the input and
// output paths themselves.
type Config struct {
	Width  int `env:"WFC_WIDTH" default:"128"`
	Height int `env:"WFC_HEIGHT" default:"128"`

	TileWidth  int `env:"WFC_TILE_WIDTH" default:"3"`
	TileHeight int `env:"WFC_TILE_HEIGHT" default:"3"`

	Expand bool `env:"WFC_EXPAND" default:"true"`
	XFlip  bool `env:"WFC_XFLIP" default:"true"`
	YFlip  bool `env:"WFC_YFLIP" default:"true"`
	Rotate bool `env:"WFC_ROTATE" default:"true"`

	// Seed of 0 means "use the wall clock", matching wfc.New's default.
	Seed int64 `env:"WFC_SEED" default:"0"`

	// MaxCollapseCount of -1 means unbounded.
	MaxCollapseCount int `env:"WFC_MAX_COLLAPSE" default:"-1"`

	LogLevel string `env:"WFC_LOG_LEVEL" default:"info"`
}

// LoadOptions holds command-line overrides applied on top of the
// environment and the defaults, exactly as rcarmo-go-rdp's
// LoadWithOverrides layers flags over env over defaults.
type LoadOptions struct {
	Width, Height         int
	TileWidth, TileHeight int
	Expand, XFlip, YFlip, Rotate *bool
	Seed                  *int64
	MaxCollapseCount      *int
	LogLevel              string
}

// Load returns the default configuration as shaped by the environment.
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

// LoadWithOverrides loads configuration from the environment, then applies
// any non-zero field in opts on top, then validates the result.
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	cfg := &Config{
		Width:            getIntWithDefault("WFC_WIDTH", 128),
		Height:           getIntWithDefault("WFC_HEIGHT", 128),
		TileWidth:        getIntWithDefault("WFC_TILE_WIDTH", 3),
		TileHeight:       getIntWithDefault("WFC_TILE_HEIGHT", 3),
		Expand:           getBoolWithDefault("WFC_EXPAND", true),
		XFlip:            getBoolWithDefault("WFC_XFLIP", true),
		YFlip:            getBoolWithDefault("WFC_YFLIP", true),
		Rotate:           getBoolWithDefault("WFC_ROTATE", true),
		Seed:             getInt64WithDefault("WFC_SEED", 0),
		MaxCollapseCount: getIntWithDefault("WFC_MAX_COLLAPSE", -1),
		LogLevel:         getEnvWithDefault("WFC_LOG_LEVEL", "info"),
	}

	if opts.Width != 0 {
		cfg.Width = opts.Width
	}
	if opts.Height != 0 {
		cfg.Height = opts.Height
	}
	if opts.TileWidth != 0 {
		cfg.TileWidth = opts.TileWidth
	}
	if opts.TileHeight != 0 {
		cfg.TileHeight = opts.TileHeight
	}
	if opts.Expand != nil {
		cfg.Expand = *opts.Expand
	}
	if opts.XFlip != nil {
		cfg.XFlip = *opts.XFlip
	}
	if opts.YFlip != nil {
		cfg.YFlip = *opts.YFlip
	}
	if opts.Rotate != nil {
		cfg.Rotate = *opts.Rotate
	}
	if opts.Seed != nil {
		cfg.Seed = *opts.Seed
	}
	if opts.MaxCollapseCount != nil {
		cfg.MaxCollapseCount = *opts.MaxCollapseCount
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that wfc.New would reject anyway, so the
// CLI can fail fast with a usage error instead of an opaque solver error.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("wfcconfig: output size %dx%d must be positive", c.Width, c.Height)
	}
	if c.TileWidth <= 0 || c.TileHeight <= 0 {
		return fmt.Errorf("wfcconfig: tile size %dx%d must be positive", c.TileWidth, c.TileHeight)
	}
	if c.MaxCollapseCount < -1 {
		return fmt.Errorf("wfcconfig: max collapse count %d must be -1 or non-negative", c.MaxCollapseCount)
	}
	return nil
}

func getEnvWithDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getIntWithDefault(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func getInt64WithDefault(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getBoolWithDefault(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}
