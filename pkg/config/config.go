// Package config loads and validates postergen configuration.
//
// Configuration is TOML (config.toml) with JSON accepted as an
// alternative. Load starts from defaults and applies file overrides, so a
// partial file is fine. Validation distinguishes contract violations (bad
// page geometry, impossible font sizes) that must fail before any record
// is processed from per-record problems, which are the pipeline's concern.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/projectday/postergen/pkg/errors"
	"github.com/projectday/postergen/pkg/layout"
)

// Team block anchoring strategies. FixedBottom places the team block a
// fixed distance above the bottom padding; FlowFromContent continues from
// wherever the last content section ended.
const (
	TeamAnchorFixedBottom = "fixed-bottom"
	TeamAnchorFlow        = "flow-from-content"
)

// Page holds the physical page dimensions. Default is A1 portrait.
type Page struct {
	WidthMM  float64 `toml:"width_mm" json:"width_mm"`
	HeightMM float64 `toml:"height_mm" json:"height_mm"`
}

// Layout positions the poster regions, all values in millimeters.
type Layout struct {
	ImageHeightMM float64 `toml:"image_height_mm" json:"image_height_mm"`
	ImageFitMode  string  `toml:"image_fit_mode" json:"image_fit_mode"`

	PaddingLeftMM   float64 `toml:"content_padding_left_mm" json:"content_padding_left_mm"`
	PaddingRightMM  float64 `toml:"content_padding_right_mm" json:"content_padding_right_mm"`
	PaddingTopMM    float64 `toml:"content_padding_top_mm" json:"content_padding_top_mm"`
	PaddingBottomMM float64 `toml:"content_padding_bottom_mm" json:"content_padding_bottom_mm"`

	TextColumnWidthMM float64 `toml:"text_column_width_mm" json:"text_column_width_mm"`
	TitleBoxHeightMM  float64 `toml:"title_box_height_mm" json:"title_box_height_mm"`
	TeamBlockHeightMM float64 `toml:"team_block_height_mm" json:"team_block_height_mm"`

	// TeamAnchor selects between the two observed team block behaviors:
	// "fixed-bottom" (default) or "flow-from-content".
	TeamAnchor string `toml:"team_anchor" json:"team_anchor"`
}

// Fonts selects font identifiers and point sizes. Identifiers refer to
// registry names; Files maps extra identifiers to TTF file hints resolved
// through the asset resolver at startup.
type Fonts struct {
	TitleFont string  `toml:"title_font" json:"title_font"`
	TitleSize float64 `toml:"title_size" json:"title_size"`

	HeadingFont string  `toml:"heading_font" json:"heading_font"`
	HeadingSize float64 `toml:"heading_size" json:"heading_size"`

	BodyFont string  `toml:"body_font" json:"body_font"`
	BodySize float64 `toml:"body_size" json:"body_size"`

	MinFontSize float64 `toml:"min_font_size" json:"min_font_size"`
	LineSpacing float64 `toml:"line_spacing" json:"line_spacing"`

	Files map[string]string `toml:"files" json:"files,omitempty"`
}

// Columns maps workbook header names to record fields. Matching is
// case-insensitive.
type Columns struct {
	ProjectID     string `toml:"project_id" json:"project_id"`
	ProjectName   string `toml:"project_name" json:"project_name"`
	Problem       string `toml:"problem" json:"problem"`
	Solution      string `toml:"solution" json:"solution"`
	Product       string `toml:"product" json:"product"`
	Team          string `toml:"team" json:"team"`
	ImageFilename string `toml:"image_filename" json:"image_filename"`
}

// Labels are the fixed heading strings drawn on every poster.
type Labels struct {
	Title    string `toml:"title" json:"title"`
	Problem  string `toml:"problem" json:"problem"`
	Solution string `toml:"solution" json:"solution"`
	Product  string `toml:"product" json:"product"`
	Team     string `toml:"team" json:"team"`
}

// Output controls artifact naming and destination.
type Output struct {
	// NamingPattern supports {project_id} and {project_name} placeholders;
	// the expanded name is sanitized for filesystem safety.
	NamingPattern string `toml:"naming_pattern" json:"naming_pattern"`
	Folder        string `toml:"folder" json:"folder"`
}

// Logos configures the decorative logo strip.
type Logos struct {
	Paths     []string `toml:"paths" json:"paths,omitempty"`
	HeightMM  float64  `toml:"height_mm" json:"height_mm"`
	SpacingMM float64  `toml:"spacing_mm" json:"spacing_mm"`
}

// Cache configures the rendered-artifact cache.
type Cache struct {
	// Backend is "file" (default), "redis", or "none".
	Backend   string `toml:"backend" json:"backend"`
	Dir       string `toml:"dir" json:"dir,omitempty"`
	RedisAddr string `toml:"redis_addr" json:"redis_addr,omitempty"`
	TTLHours  int    `toml:"ttl_hours" json:"ttl_hours"`
}

// Config is the root configuration container.
type Config struct {
	Page    Page    `toml:"page" json:"page"`
	Layout  Layout  `toml:"layout" json:"layout"`
	Fonts   Fonts   `toml:"fonts" json:"fonts"`
	Columns Columns `toml:"columns" json:"columns"`
	Labels  Labels  `toml:"labels" json:"labels"`
	Output  Output  `toml:"output" json:"output"`
	Logos   Logos   `toml:"logos" json:"logos"`
	Cache   Cache   `toml:"cache" json:"cache"`
}

// Default returns the built-in configuration: an A1 poster with a cover
// image band, Go fonts, and English section labels.
func Default() Config {
	return Config{
		Page: Page{WidthMM: 594, HeightMM: 841},
		Layout: Layout{
			ImageHeightMM:     434,
			ImageFitMode:      string(layout.FitCover),
			PaddingLeftMM:     40,
			PaddingRightMM:    40,
			PaddingTopMM:      20,
			PaddingBottomMM:   20,
			TextColumnWidthMM: 225,
			TitleBoxHeightMM:  65,
			TeamBlockHeightMM: 70,
			TeamAnchor:        TeamAnchorFixedBottom,
		},
		Fonts: Fonts{
			TitleFont:   "GoBold",
			TitleSize:   48,
			HeadingFont: "GoBold",
			HeadingSize: 24,
			BodyFont:    "GoRegular",
			BodySize:    18,
			MinFontSize: 10,
			LineSpacing: 1.2,
		},
		Columns: Columns{
			ProjectID:     "project_id",
			ProjectName:   "project_name",
			Problem:       "problem",
			Solution:      "solution",
			Product:       "product",
			Team:          "team",
			ImageFilename: "image_filename",
		},
		Labels: Labels{
			Title:    "Project",
			Problem:  "Problem",
			Solution: "Solution",
			Product:  "Product",
			Team:     "Team",
		},
		Output: Output{
			NamingPattern: "{project_id}_{project_name}",
			Folder:        "output",
		},
		Logos: Logos{HeightMM: 40, SpacingMM: 10},
		Cache: Cache{Backend: "file", TTLHours: 24 * 7},
	}
}

// Load reads a configuration file and merges it over the defaults. An
// empty path returns the defaults unchanged. The format is chosen by
// extension: .toml (default) or .json.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks programmer-facing contract violations that must fail
// before any record is composed.
func (c Config) Validate() error {
	if c.Page.WidthMM <= 0 || c.Page.HeightMM <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "page dimensions must be positive, got %.1fx%.1f mm", c.Page.WidthMM, c.Page.HeightMM)
	}
	if c.Layout.ImageHeightMM < 0 || c.Layout.ImageHeightMM >= c.Page.HeightMM {
		return errors.New(errors.ErrCodeInvalidConfig, "image height %.1f mm must be within the page height", c.Layout.ImageHeightMM)
	}
	if !layout.FitMode(c.Layout.ImageFitMode).Valid() {
		return errors.New(errors.ErrCodeInvalidConfig, "image fit mode must be %q or %q, got %q", layout.FitCover, layout.FitContain, c.Layout.ImageFitMode)
	}
	if a := c.Layout.TeamAnchor; a != TeamAnchorFixedBottom && a != TeamAnchorFlow {
		return errors.New(errors.ErrCodeInvalidConfig, "team anchor must be %q or %q, got %q", TeamAnchorFixedBottom, TeamAnchorFlow, a)
	}
	for _, p := range []float64{c.Layout.PaddingLeftMM, c.Layout.PaddingRightMM, c.Layout.PaddingTopMM, c.Layout.PaddingBottomMM} {
		if p < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "content padding must not be negative")
		}
	}
	if c.Layout.TextColumnWidthMM <= 0 || c.Layout.TextColumnWidthMM >= c.Page.WidthMM {
		return errors.New(errors.ErrCodeInvalidConfig, "text column width %.1f mm must be within the page width", c.Layout.TextColumnWidthMM)
	}

	if c.Fonts.MinFontSize <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "min font size must be positive, got %.1f", c.Fonts.MinFontSize)
	}
	if c.Fonts.LineSpacing <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "line spacing must be positive, got %.2f", c.Fonts.LineSpacing)
	}
	for _, s := range []float64{c.Fonts.TitleSize, c.Fonts.HeadingSize, c.Fonts.BodySize} {
		if s < c.Fonts.MinFontSize {
			return errors.New(errors.ErrCodeInvalidConfig, "font size %.1f is below the minimum %.1f", s, c.Fonts.MinFontSize)
		}
	}

	if c.Output.NamingPattern == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "output naming pattern must not be empty")
	}
	if c.Logos.HeightMM <= 0 || c.Logos.SpacingMM < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "logo height must be positive and spacing non-negative")
	}

	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend must be file, redis, or none, got %q", c.Cache.Backend)
	}

	return nil
}
