package compose

import "github.com/projectday/postergen/pkg/layout"

// ItemKind discriminates plan items.
type ItemKind string

// Plan item kinds, in the vocabulary of the renderer.
const (
	ItemRect  ItemKind = "rect"
	ItemImage ItemKind = "image"
	ItemText  ItemKind = "text"
)

// Item is one draw instruction with fully resolved absolute geometry.
// Coordinates are points, bottom-left origin. Which fields are meaningful
// depends on Kind:
//
//   - rect: Rect, Fill, Stroke
//   - image: Path, Rect (draw rectangle), Clip (optional clip rectangle)
//   - text: Text, Font, Size, X, Y (baseline start), Center
type Item struct {
	Kind ItemKind `json:"kind"`

	Rect layout.Rect  `json:"rect,omitempty"`
	Clip *layout.Rect `json:"clip,omitempty"`

	Path string `json:"path,omitempty"`

	Text   string  `json:"text,omitempty"`
	Font   string  `json:"font,omitempty"`
	Size   float64 `json:"size,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Center bool    `json:"center,omitempty"` // X is the text center, not its left edge

	Fill   bool `json:"fill,omitempty"`
	Stroke bool `json:"stroke,omitempty"`
}

// Plan is the composer's output for one record: an ordered, immutable
// sequence of draw instructions plus the page geometry they assume. It is
// consumed once by a renderer and never mutated after composition.
type Plan struct {
	RecordID   string  `json:"record_id"`
	Title      string  `json:"title"`
	OutputName string  `json:"output_name"`
	PageW      float64 `json:"page_w"`
	PageH      float64 `json:"page_h"`
	Items      []Item  `json:"items"`
}

// WarningKind classifies non-fatal layout problems.
type WarningKind string

// Warning kinds accumulated during composition.
const (
	WarnTextTruncated   WarningKind = "text_truncated"
	WarnImageMissing    WarningKind = "image_missing"
	WarnImageDrawFailed WarningKind = "image_draw_failed"
	WarnLogoSkipped     WarningKind = "logo_skipped"
)

// Warning records a non-fatal problem attached to a plan. Warnings never
// abort composition; the plan still completes with a placeholder or a
// skipped element.
type Warning struct {
	Subject string      `json:"subject"` // record id plus region, e.g. "P1/problem"
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}
