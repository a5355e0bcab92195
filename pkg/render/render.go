// Package render executes poster plans: it turns the composer's draw
// instructions into actual artifacts. Three sinks are provided — SVG
// (native), PNG (raster via gg), and PDF (SVG piped through
// rsvg-convert) — plus a JSON sink for plan round-trips.
//
// Plans use points with a bottom-left origin; every sink performs the
// y-flip into its own top-down coordinate system.
package render

import (
	"github.com/projectday/postergen/pkg/compose"
	"github.com/projectday/postergen/pkg/errors"
	"github.com/projectday/postergen/pkg/fonts"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidFormat reports whether f is a supported output format.
func ValidFormat(f string) bool { return validFormats[f] }

// Options configures rendering.
type Options struct {
	// Registry supplies font faces for the raster sink. Required for PNG.
	Registry *fonts.Registry
	// PNGScale is the raster resolution multiplier (default 2.0).
	PNGScale float64
}

// Render executes plan into the requested format.
func Render(plan *compose.Plan, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return SVG(plan)
	case FormatPNG:
		scale := opts.PNGScale
		if scale <= 0 {
			scale = 2.0
		}
		return PNG(plan, opts.Registry, scale)
	case FormatPDF:
		return PDF(plan)
	case FormatJSON:
		return MarshalPlan(plan)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
}
