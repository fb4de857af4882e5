// Package config handles tool configuration loading and management.
package config

import (
	"github.com/Faultbox/spline3d/internal/logger"
	"github.com/Faultbox/spline3d/internal/scene"
	"github.com/Faultbox/spline3d/internal/surface"
)

// Config holds all tool settings.
type Config struct {
	Spline       SplineConfig       `yaml:"spline"`
	Road         RoadConfig         `yaml:"road"`
	Distribution DistributionConfig `yaml:"distribution"`
	Follow       FollowConfig       `yaml:"follow"`
	Projection   ProjectionConfig   `yaml:"projection"`
	Viewer       ViewerConfig       `yaml:"viewer"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// SplineConfig holds curve sampling settings.
type SplineConfig struct {
	ArcLengthSamples  int `yaml:"arc_length_samples"`  // Table resolution for length queries
	SamplesPerSegment int `yaml:"samples_per_segment"` // Polyline resolution for drawing and projection
}

// RoadConfig holds road generation defaults.
type RoadConfig struct {
	Segments          int     `yaml:"segments"`
	UVTileLength      float32 `yaml:"uv_tile_length"`
	FallbackHalfWidth float32 `yaml:"fallback_half_width"`
}

// DistributionConfig holds distribution defaults.
type DistributionConfig struct {
	Count            int `yaml:"count"`
	ArcLengthSamples int `yaml:"arc_length_samples"`
}

// FollowConfig holds follower simulation settings.
type FollowConfig struct {
	TickRate int     `yaml:"tick_rate"` // Simulated ticks per second
	Duration float32 `yaml:"duration"`  // Seconds simulated by the CLI
}

// ProjectionConfig holds the defaults applied to projection blocks.
type ProjectionConfig struct {
	surface.Config `yaml:",inline"`
	VisualOffset   float32 `yaml:"visual_offset"`
}

// ViewerConfig holds viewer window settings.
type ViewerConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Scale    float32 `yaml:"scale"` // Pixels per world unit
	VSync    bool    `yaml:"vsync"`
	ShowGrid bool    `yaml:"show_grid"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`   // debug, info, warn, error
	Format     string `yaml:"format"`  // console or json
	Console    bool   `yaml:"console"` // Log to stderr
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Options converts the settings for logger.Init.
func (l LoggingConfig) Options() logger.Options {
	return logger.Options{
		Level:   l.Level,
		Format:  l.Format,
		Console: l.Console,
		File: logger.FileOptions{
			Path:       l.LogFile,
			MaxSizeMB:  l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			MaxAgeDays: l.MaxAgeDays,
			Compress:   l.Compress,
		},
	}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Spline: SplineConfig{
			ArcLengthSamples:  128,
			SamplesPerSegment: 16,
		},
		Road: RoadConfig{
			Segments:          32,
			UVTileLength:      1,
			FallbackHalfWidth: 2,
		},
		Distribution: DistributionConfig{
			Count:            10,
			ArcLengthSamples: 256,
		},
		Follow: FollowConfig{
			TickRate: 60,
			Duration: 5,
		},
		Projection: ProjectionConfig{
			Config:       surface.DefaultConfig(),
			VisualOffset: surface.DefaultVisualOffset,
		},
		Viewer: ViewerConfig{
			Width:    1280,
			Height:   720,
			Scale:    20,
			VSync:    true,
			ShowGrid: true,
		},
		Logging: defaultLogging(),
	}
}

func defaultLogging() LoggingConfig {
	opts := logger.DefaultOptions()
	return LoggingConfig{
		Level:      opts.Level,
		Format:     opts.Format,
		Console:    opts.Console,
		MaxSizeMB:  opts.File.MaxSizeMB,
		MaxBackups: opts.File.MaxBackups,
		MaxAgeDays: opts.File.MaxAgeDays,
		Compress:   opts.File.Compress,
	}
}

// SceneSettings converts the config into settings for a scene.
func (c *Config) SceneSettings() scene.Settings {
	return scene.Settings{
		DistributionSamples: c.Distribution.ArcLengthSamples,
		CurveSamples:        c.Spline.SamplesPerSegment,
		FallbackHalfWidth:   c.Road.FallbackHalfWidth,
		VisualOffset:        c.Projection.VisualOffset,
		RoadSegments:        c.Road.Segments,
		RoadUVTileLength:    c.Road.UVTileLength,
		DistributionCount:   c.Distribution.Count,
		Projection:          c.Projection.Config,
	}
}
