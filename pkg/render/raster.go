package render

import (
	"bytes"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/projectday/postergen/pkg/compose"
	"github.com/projectday/postergen/pkg/errors"
	"github.com/projectday/postergen/pkg/fonts"
)

// PNG rasterizes the plan at the given scale (pixels per point). A scale
// of 2.0 yields roughly 144 DPI output. The registry supplies the font
// faces named by text items.
func PNG(plan *compose.Plan, reg *fonts.Registry, scale float64) ([]byte, error) {
	if reg == nil {
		return nil, errors.New(errors.ErrCodeRender, "png rendering requires a font registry")
	}

	px := func(v float64) float64 { return v * scale }
	// Flipped top edge of a bottom-left rect, in pixels.
	topPx := func(r interface{ Top() float64 }) float64 { return px(plan.PageH - r.Top()) }

	dc := gg.NewContext(int(math.Ceil(px(plan.PageW))), int(math.Ceil(px(plan.PageH))))
	dc.SetColor(color.White)
	dc.Clear()

	for _, item := range plan.Items {
		switch item.Kind {
		case compose.ItemRect:
			dc.DrawRectangle(px(item.Rect.X), topPx(item.Rect), px(item.Rect.W), px(item.Rect.H))
			if item.Fill {
				dc.SetRGB(0.94, 0.94, 0.94)
				dc.FillPreserve()
			}
			if item.Stroke {
				dc.SetRGB(0.6, 0.6, 0.6)
				dc.SetLineWidth(scale)
				dc.Stroke()
			}
			dc.ClearPath()

		case compose.ItemImage:
			if err := drawRasterImage(dc, plan, item, px, topPx); err != nil {
				return nil, err
			}

		case compose.ItemText:
			face, err := reg.Face(item.Font, item.Size*scale)
			if err != nil {
				return nil, err
			}
			dc.SetFontFace(face)
			dc.SetColor(color.Black)
			baseline := px(plan.PageH - item.Y)
			if item.Center {
				dc.DrawStringAnchored(item.Text, px(item.X), baseline, 0.5, 0)
			} else {
				dc.DrawString(item.Text, px(item.X), baseline)
			}

		default:
			return nil, errors.New(errors.ErrCodeInvalidPlan, "unknown item kind %q", item.Kind)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "encoding png")
	}
	return buf.Bytes(), nil
}

func drawRasterImage(dc *gg.Context, plan *compose.Plan, item compose.Item, px func(float64) float64, topPx func(interface{ Top() float64 }) float64) error {
	img, err := imaging.Open(item.Path, imaging.AutoOrientation(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "opening image %s", item.Path)
	}

	w := int(math.Round(px(item.Rect.W)))
	h := int(math.Round(px(item.Rect.H)))
	if w < 1 || h < 1 {
		return nil
	}
	resized := imaging.Resize(img, w, h, imaging.Lanczos)

	if item.Clip != nil {
		dc.Push()
		dc.DrawRectangle(px(item.Clip.X), topPx(item.Clip), px(item.Clip.W), px(item.Clip.H))
		dc.Clip()
		dc.DrawImage(resized, int(math.Round(px(item.Rect.X))), int(math.Round(topPx(item.Rect))))
		dc.ResetClip()
		dc.Pop()
		return nil
	}

	dc.DrawImage(resized, int(math.Round(px(item.Rect.X))), int(math.Round(topPx(item.Rect))))
	return nil
}
