package layout

import "github.com/projectday/postergen/pkg/errors"

// FitMode selects how an image is scaled into a target rectangle.
type FitMode string

const (
	// FitCover scales the image to fully cover the target, cropping the
	// overflow axis symmetrically. The renderer must clip to the target.
	FitCover FitMode = "cover"

	// FitContain scales the image to fit entirely inside the target,
	// centered on both axes. No clipping is required.
	FitContain FitMode = "contain"
)

// Valid reports whether m is a known fit mode.
func (m FitMode) Valid() bool { return m == FitCover || m == FitContain }

// Placement is the resolved geometry for drawing an image. Draw is where
// the scaled image goes; it may extend beyond the target in cover mode,
// in which case Clip holds the target rect the renderer must clip to.
type Placement struct {
	Draw Rect  `json:"draw"`
	Clip *Rect `json:"clip,omitempty"`
}

// Place computes the draw and clip rectangles for an image with intrinsic
// pixel dimensions iw × ih inside target. Scaling is always uniform.
// Degenerate intrinsic dimensions are a contract violation reported as an
// INVALID_IMAGE error; callers substitute a placeholder.
func Place(iw, ih int, target Rect, mode FitMode) (Placement, error) {
	if iw <= 0 || ih <= 0 {
		return Placement{}, errors.New(errors.ErrCodeInvalidImage, "degenerate image dimensions %dx%d", iw, ih)
	}

	w := float64(iw)
	h := float64(ih)

	var scale float64
	switch mode {
	case FitContain:
		scale = min(target.W/w, target.H/h)
	case FitCover:
		scale = max(target.W/w, target.H/h)
	default:
		return Placement{}, errors.New(errors.ErrCodeUnsupported, "unknown fit mode %q", mode)
	}

	sw := w * scale
	sh := h * scale

	draw := Rect{
		X: target.X + (target.W-sw)/2,
		Y: target.Y + (target.H-sh)/2,
		W: sw,
		H: sh,
	}

	if mode == FitCover {
		clip := target
		return Placement{Draw: draw, Clip: &clip}, nil
	}
	return Placement{Draw: draw}, nil
}
