package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/KyungWonPark/lsdgrad/internal/gradient"
)

// ErrInvalid reports a configuration value outside its allowed range
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings shared by every subcommand
type Config struct {
	Components      int     `yaml:"components"`
	Method          string  `yaml:"method"`
	Epsilon         float64 `yaml:"epsilon"`
	Workers         int     `yaml:"workers"`
	CacheDir        string  `yaml:"cache_dir"`
	CacheMaxEntries int     `yaml:"cache_max_entries"`
	MetricsFile     string  `yaml:"metrics_file"`
	LogLevel        string  `yaml:"log_level"`
	Resolution      float64 `yaml:"resolution"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Components:      gradient.DefaultComponents,
		Method:          string(gradient.PCA),
		Epsilon:         gradient.DefaultEpsilon,
		Workers:         0,
		CacheMaxEntries: 64,
		LogLevel:        "info",
		Resolution:      1.0,
	}
}

// Load reads defaults, then the YAML file at path (if any), then LSDGRAD_* environment variables
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("failed to parse config YAML %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadDotEnv loads a .env file into the environment; a missing file is not an error
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}

	return nil
}

func (c *Config) applyEnv() error {
	ints := map[string]*int{
		"LSDGRAD_COMPONENTS":        &c.Components,
		"LSDGRAD_WORKERS":           &c.Workers,
		"LSDGRAD_CACHE_MAX_ENTRIES": &c.CacheMaxEntries,
	}
	for name, dst := range ints {
		if v, ok := os.LookupEnv(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, name, v)
			}
			*dst = n
		}
	}

	strs := map[string]*string{
		"LSDGRAD_METHOD":       &c.Method,
		"LSDGRAD_CACHE_DIR":    &c.CacheDir,
		"LSDGRAD_METRICS_FILE": &c.MetricsFile,
		"LSDGRAD_LOG_LEVEL":    &c.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	return nil
}

// Validate checks every field
func (c Config) Validate() error {
	if c.Components < 1 {
		return fmt.Errorf("%w: components must be at least 1, got %d", ErrInvalid, c.Components)
	}
	if _, err := gradient.ParseMethod(c.Method); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !(c.Epsilon > 0) || math.IsInf(c.Epsilon, 0) {
		return fmt.Errorf("%w: epsilon must be positive and finite, got %g", ErrInvalid, c.Epsilon)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("%w: cache_max_entries must not be negative, got %d", ErrInvalid, c.CacheMaxEntries)
	}
	if c.CacheDir != "" && c.CacheMaxEntries == 0 {
		return fmt.Errorf("%w: cache_dir is set but cache_max_entries is 0", ErrInvalid)
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %g", ErrInvalid, c.Resolution)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}

	return nil
}

// Level returns the parsed log level
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}

	return lvl
}
