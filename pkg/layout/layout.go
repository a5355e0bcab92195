// Package layout implements the poster layout core: rectangle geometry,
// glyph-metric text wrapping with shrink-to-fit, and cover/contain image
// placement.
//
// All coordinates are in points with a bottom-left origin and y increasing
// upward, matching the page coordinate system of the output formats. The
// package performs no I/O: glyph widths come from an injected [Metrics]
// provider and image dimensions are passed in by the caller.
package layout

// MM is the size of one millimeter in points. Configuration values are
// expressed in millimeters and converted once at composition time.
const MM = 72.0 / 25.4

// Rect is an axis-aligned rectangle in points, bottom-left origin.
// A degenerate rect (zero width or height) is legal.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Top returns the y coordinate of the upper edge.
func (r Rect) Top() float64 { return r.Y + r.H }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// CenterX returns the horizontal center point.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center point.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Inset returns a copy of r shrunk by the given margins on each side.
func (r Rect) Inset(left, right, top, bottom float64) Rect {
	return Rect{
		X: r.X + left,
		Y: r.Y + bottom,
		W: r.W - left - right,
		H: r.H - top - bottom,
	}
}

// Metrics measures glyph advance widths. Implementations must be pure:
// the same (font, size, text) always yields the same width, so callers
// may memoize results and share a provider across goroutines.
type Metrics interface {
	// Width returns the advance width of text in points when set in the
	// given font at the given size.
	Width(font string, size float64, text string) float64
}

// TextStyle describes how a block of text is set.
type TextStyle struct {
	Font        string  // resolved font identifier
	Size        float64 // initial size in points
	LineSpacing float64 // line pitch multiplier, e.g. 1.2
	MinSize     float64 // smallest size the shrink loop may reach
}

// FitResult is the outcome of fitting text into a box. Lines were produced
// at exactly Size; if Truncated, the last line ends with an ellipsis whose
// measured width does not exceed the box width.
type FitResult struct {
	Lines     []string
	Size      float64
	Truncated bool
}
