package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/spline3d/internal/logger"
)

// ErrInvalid is returned for configurations that fail validation.
var ErrInvalid = errors.New("invalid config")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path wins over the search
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./spline3d.yaml",
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Spline3D")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Spline3D")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "spline3d")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "spline3d")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate rejects settings the tools cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Spline.ArcLengthSamples < 1:
		return fmt.Errorf("%w: spline.arc_length_samples must be positive", ErrInvalid)
	case c.Spline.SamplesPerSegment < 1:
		return fmt.Errorf("%w: spline.samples_per_segment must be positive", ErrInvalid)
	case c.Road.Segments < 1:
		return fmt.Errorf("%w: road.segments must be positive", ErrInvalid)
	case c.Distribution.ArcLengthSamples < 1:
		return fmt.Errorf("%w: distribution.arc_length_samples must be positive", ErrInvalid)
	case c.Distribution.Count < 0:
		return fmt.Errorf("%w: distribution.count must not be negative", ErrInvalid)
	case c.Follow.TickRate < 1:
		return fmt.Errorf("%w: follow.tick_rate must be positive", ErrInvalid)
	case c.Projection.MaxDistance < 0:
		return fmt.Errorf("%w: projection.max_distance must not be negative", ErrInvalid)
	case c.Viewer.Scale <= 0:
		return fmt.Errorf("%w: viewer.scale must be positive", ErrInvalid)
	case c.Logging.Format != logger.FormatConsole && c.Logging.Format != logger.FormatJSON:
		return fmt.Errorf("%w: logging.format must be console or json", ErrInvalid)
	}
	return nil
}
