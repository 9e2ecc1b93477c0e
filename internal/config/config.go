// Package config loads server settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ironsheep/digit-vision-mcp/internal/vision"
)

// Environment variable names.
const (
	EnvLogLevel   = "DIGIT_MCP_LOG_LEVEL"
	EnvLogFile    = "DIGIT_MCP_LOG_FILE"
	EnvResolution = "DIGIT_MCP_RESOLUTION"
	EnvRasterMode = "DIGIT_MCP_RASTER_MODE"
	EnvThreshold  = "DIGIT_MCP_THRESHOLD"
	EnvContrast   = "DIGIT_MCP_CONTRAST"
)

// Config holds every tunable of the server.
type Config struct {
	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string

	// Resolution is the canvas side used when rasterizing images.
	Resolution int `validate:"min=5,max=400"`

	RasterMode string  `validate:"oneof=threshold contrast"`
	Threshold  int     `validate:"min=1,max=255"`
	Contrast   float64 `validate:"min=0,max=100"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:   "info",
		Resolution: vision.DefaultResolution,
		RasterMode: "threshold",
		Threshold:  128,
		Contrast:   25,
	}
}

// Load reads .env (if present) and then the environment. Variables already in
// the environment win over .env entries.
func Load() (Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv paths. Missing files are skipped.
func LoadFiles(paths ...string) (Config, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read %s: %w", p, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function, applying defaults for
// unset variables and validating the result.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvLogFile); ok {
		cfg.LogFile = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvRasterMode); ok && v != "" {
		cfg.RasterMode = strings.ToLower(strings.TrimSpace(v))
	}

	var err error
	if cfg.Resolution, err = intVar(lookup, EnvResolution, cfg.Resolution); err != nil {
		return Config{}, err
	}
	if cfg.Threshold, err = intVar(lookup, EnvThreshold, cfg.Threshold); err != nil {
		return Config{}, err
	}
	if v, ok := lookup(EnvContrast); ok && v != "" {
		cfg.Contrast, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvContrast, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if err := Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func intVar(lookup func(string) (string, bool), name string, def int) (int, error) {
	v, ok := lookup(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}
