package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Sampling defaults
	if cfg.Spline.ArcLengthSamples != 128 {
		t.Errorf("expected arc length samples 128, got %d", cfg.Spline.ArcLengthSamples)
	}
	if cfg.Distribution.ArcLengthSamples != 256 {
		t.Errorf("expected distribution samples 256, got %d", cfg.Distribution.ArcLengthSamples)
	}

	// Road defaults
	if cfg.Road.Segments != 32 {
		t.Errorf("expected 32 road segments, got %d", cfg.Road.Segments)
	}
	if cfg.Road.FallbackHalfWidth != 2 {
		t.Errorf("expected fallback half width 2, got %f", cfg.Road.FallbackHalfWidth)
	}

	// Projection defaults
	if !cfg.Projection.Enabled {
		t.Error("expected projection to be enabled by default")
	}
	if cfg.Projection.RayOriginOffset != 10 {
		t.Errorf("expected ray origin offset 10, got %f", cfg.Projection.RayOriginOffset)
	}
	if cfg.Projection.MaxDistance != 100 {
		t.Errorf("expected max distance 100, got %f", cfg.Projection.MaxDistance)
	}
	if cfg.Projection.VisualOffset != 0.3 {
		t.Errorf("expected visual offset 0.3, got %f", cfg.Projection.VisualOffset)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("expected log format 'console', got %s", cfg.Logging.Format)
	}
	if !cfg.Logging.Console {
		t.Error("expected console logging enabled")
	}
	if cfg.Logging.MaxSizeMB != 10 {
		t.Errorf("expected max size 10MB, got %d", cfg.Logging.MaxSizeMB)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
spline:
  arc_length_samples: 64
  samples_per_segment: 8

road:
  segments: 12
  uv_tile_length: 4

projection:
  max_distance: 50
  align_to_normal: true
  visual_offset: 0.5

viewer:
  width: 800
  scale: 30

logging:
  level: "debug"
  format: "json"
  console: false
  log_file: "spline.log"
  max_backups: 7
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Spline.ArcLengthSamples != 64 {
		t.Errorf("expected arc length samples 64, got %d", cfg.Spline.ArcLengthSamples)
	}
	if cfg.Road.Segments != 12 {
		t.Errorf("expected 12 segments, got %d", cfg.Road.Segments)
	}
	if cfg.Road.UVTileLength != 4 {
		t.Errorf("expected uv tile length 4, got %f", cfg.Road.UVTileLength)
	}

	// Inline projection fields merge with defaults
	if cfg.Projection.MaxDistance != 50 {
		t.Errorf("expected max distance 50, got %f", cfg.Projection.MaxDistance)
	}
	if !cfg.Projection.AlignToNormal {
		t.Error("expected align_to_normal to be true")
	}
	if cfg.Projection.RayOriginOffset != 10 {
		t.Errorf("expected ray origin offset to keep default 10, got %f", cfg.Projection.RayOriginOffset)
	}
	if cfg.Projection.VisualOffset != 0.5 {
		t.Errorf("expected visual offset 0.5, got %f", cfg.Projection.VisualOffset)
	}

	if cfg.Viewer.Width != 800 {
		t.Errorf("expected width 800, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 720 {
		t.Errorf("expected height to keep default 720, got %d", cfg.Viewer.Height)
	}

	if cfg.Logging.LogFile != "spline.log" {
		t.Errorf("expected log file 'spline.log', got %s", cfg.Logging.LogFile)
	}

	opts := cfg.Logging.Options()
	if opts.Format != "json" || opts.Console {
		t.Errorf("expected json file-only logging, got format %s console %v", opts.Format, opts.Console)
	}
	if opts.File.Path != "spline.log" || opts.File.MaxBackups != 7 || opts.File.MaxAgeDays != 14 {
		t.Errorf("unexpected file options: %+v", opts.File)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
road:
  segments: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero arc samples", func(c *Config) { c.Spline.ArcLengthSamples = 0 }},
		{"zero samples per segment", func(c *Config) { c.Spline.SamplesPerSegment = 0 }},
		{"zero segments", func(c *Config) { c.Road.Segments = 0 }},
		{"negative count", func(c *Config) { c.Distribution.Count = -1 }},
		{"zero tick rate", func(c *Config) { c.Follow.TickRate = 0 }},
		{"negative distance", func(c *Config) { c.Projection.MaxDistance = -1 }},
		{"zero scale", func(c *Config) { c.Viewer.Scale = 0 }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestSceneSettings(t *testing.T) {
	cfg := Default()
	cfg.Road.Segments = 7
	cfg.Projection.NormalOffset = 0.25

	s := cfg.SceneSettings()
	if s.RoadSegments != 7 {
		t.Errorf("expected road segments 7, got %d", s.RoadSegments)
	}
	if s.DistributionSamples != 256 {
		t.Errorf("expected distribution samples 256, got %d", s.DistributionSamples)
	}
	if s.Projection.NormalOffset != 0.25 {
		t.Errorf("expected normal offset 0.25, got %f", s.Projection.NormalOffset)
	}
	if s.CurveSamples != 16 {
		t.Errorf("expected curve samples 16, got %d", s.CurveSamples)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Viewer.Scale = 42
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Viewer.Scale != 42 {
		t.Errorf("expected scale 42, got %f", loaded.Viewer.Scale)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile("spline3d.yaml", []byte("road:\n  segments: 8\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path != "./spline3d.yaml" {
		t.Errorf("expected ./spline3d.yaml, got %s", path)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "segments flag",
			setup: func() { *flagSegments = 64 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Road.Segments != 64 {
					t.Errorf("expected 64 segments, got %d", cfg.Road.Segments)
				}
			},
			teardown: func() { *flagSegments = 0 },
		},
		{
			name: "viewer flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
				*flagScale = 12.5
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Viewer.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Viewer.Width)
				}
				if cfg.Viewer.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Viewer.Height)
				}
				if cfg.Viewer.Scale != 12.5 {
					t.Errorf("expected scale 12.5, got %f", cfg.Viewer.Scale)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
				*flagScale = 0
			},
		},
		{
			name:  "log file flag",
			setup: func() { *flagLogFile = "out.log" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "out.log" {
					t.Errorf("expected log file out.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagLogFile = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
viewer:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height from file
	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Viewer.Height)
	}
}
