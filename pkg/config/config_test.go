package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/projectday/postergen/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Page.WidthMM != 594 || cfg.Page.HeightMM != 841 {
		t.Errorf("default page = %.0fx%.0f, want 594x841", cfg.Page.WidthMM, cfg.Page.HeightMM)
	}
	if cfg.Layout.TeamAnchor != TeamAnchorFixedBottom {
		t.Errorf("default team anchor = %q, want %q", cfg.Layout.TeamAnchor, TeamAnchorFixedBottom)
	}
}

func TestLoadTOMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[page]
width_mm = 420.0
height_mm = 594.0

[fonts]
body_size = 14.0

[layout]
team_anchor = "flow-from-content"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Page.WidthMM != 420 {
		t.Errorf("width = %v, want 420", cfg.Page.WidthMM)
	}
	if cfg.Fonts.BodySize != 14 {
		t.Errorf("body size = %v, want 14", cfg.Fonts.BodySize)
	}
	if cfg.Layout.TeamAnchor != TeamAnchorFlow {
		t.Errorf("team anchor = %q, want %q", cfg.Layout.TeamAnchor, TeamAnchorFlow)
	}
	// Untouched values keep their defaults.
	if cfg.Fonts.TitleSize != 48 {
		t.Errorf("title size = %v, want default 48", cfg.Fonts.TitleSize)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"page": {"width_mm": 594, "height_mm": 841}, "output": {"naming_pattern": "{project_id}", "folder": "out"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.NamingPattern != "{project_id}" {
		t.Errorf("naming pattern = %q", cfg.Output.NamingPattern)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero page width", func(c *Config) { c.Page.WidthMM = 0 }},
		{"image taller than page", func(c *Config) { c.Layout.ImageHeightMM = c.Page.HeightMM }},
		{"unknown fit mode", func(c *Config) { c.Layout.ImageFitMode = "stretch" }},
		{"unknown team anchor", func(c *Config) { c.Layout.TeamAnchor = "floating" }},
		{"negative padding", func(c *Config) { c.Layout.PaddingLeftMM = -1 }},
		{"text column wider than page", func(c *Config) { c.Layout.TextColumnWidthMM = c.Page.WidthMM }},
		{"zero min font size", func(c *Config) { c.Fonts.MinFontSize = 0 }},
		{"zero line spacing", func(c *Config) { c.Fonts.LineSpacing = 0 }},
		{"body size below minimum", func(c *Config) { c.Fonts.BodySize = 5 }},
		{"empty naming pattern", func(c *Config) { c.Output.NamingPattern = "" }},
		{"zero logo height", func(c *Config) { c.Logos.HeightMM = 0 }},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}
