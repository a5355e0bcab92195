// Package pipeline provides the core poster pipeline: read the workbook,
// compose a plan per record, render the requested formats. CLI and server
// share this package so behavior stays identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Read: Load project records from the Excel workbook
//  2. Compose: Produce an immutable draw plan per record
//  3. Render: Execute each plan into the requested output formats
//
// Records are independent, so the compose and render stages fan out over
// a bounded worker pool. One bad record fails alone; the run continues.
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/projectday/postergen/pkg/config"
	"github.com/projectday/postergen/pkg/errors"
	"github.com/projectday/postergen/pkg/render"
)

const (
	// DefaultWorkers bounds the compose/render fan-out.
	DefaultWorkers = 4

	// DefaultPNGScale is the raster resolution multiplier.
	DefaultPNGScale = 2.0
)

// DefaultFormats is used when no output formats are requested.
var DefaultFormats = []string{render.FormatPDF}

// Options contains all configuration for a pipeline run.
// The struct supports JSON serialization for server requests.
type Options struct {
	// Input
	Workbook  string `json:"workbook"`
	ImagesDir string `json:"images_dir,omitempty"`
	FontsDir  string `json:"fonts_dir,omitempty"`

	// Records filters the run to the given project ids. Empty means all.
	Records []string `json:"records,omitempty"`

	// Output
	OutputDir string   `json:"output_dir,omitempty"`
	Formats   []string `json:"formats,omitempty"`
	PNGScale  float64  `json:"png_scale,omitempty"`

	// Refresh bypasses the cache for reads (results are still stored).
	Refresh bool `json:"refresh,omitempty"`

	// Workers bounds the per-record fan-out.
	Workers int `json:"workers,omitempty"`

	// Config is the layout configuration. Zero value means defaults.
	Config config.Config `json:"config"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Workbook == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "workbook path is required")
	}

	// A zero page means the config was never populated.
	if o.Config.Page.WidthMM == 0 && o.Config.Page.HeightMM == 0 {
		o.Config = config.Default()
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}

	if o.OutputDir == "" {
		o.OutputDir = o.Config.Output.Folder
	}
	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	for _, f := range o.Formats {
		if !render.ValidFormat(f) {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", f)
		}
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// wantsRecord reports whether the run includes the given project id.
func (o *Options) wantsRecord(id string) bool {
	if len(o.Records) == 0 {
		return true
	}
	for _, want := range o.Records {
		if want == id {
			return true
		}
	}
	return false
}
