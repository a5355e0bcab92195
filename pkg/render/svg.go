package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/projectday/postergen/pkg/compose"
	"github.com/projectday/postergen/pkg/errors"
)

// SVG renders the plan as a standalone SVG document. Image items are
// inlined as base64 data URIs so the result has no file dependencies.
func SVG(plan *compose.Plan) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		plan.PageW, plan.PageH, plan.PageW, plan.PageH)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.2f" height="%.2f" fill="#ffffff"/>`+"\n",
		plan.PageW, plan.PageH)

	for i, item := range plan.Items {
		switch item.Kind {
		case compose.ItemRect:
			renderSVGRect(&buf, plan, item)
		case compose.ItemImage:
			if err := renderSVGImage(&buf, plan, item, i); err != nil {
				return nil, err
			}
		case compose.ItemText:
			renderSVGText(&buf, plan, item)
		default:
			return nil, errors.New(errors.ErrCodeInvalidPlan, "unknown item kind %q", item.Kind)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// svgY flips a bottom-left y coordinate into SVG's top-down space.
func svgY(plan *compose.Plan, y float64) float64 {
	return plan.PageH - y
}

func renderSVGRect(buf *bytes.Buffer, plan *compose.Plan, item compose.Item) {
	fill := "none"
	if item.Fill {
		fill = "#f0f0f0"
	}
	stroke := "none"
	strokeWidth := 0.0
	if item.Stroke {
		stroke = "#999999"
		strokeWidth = 1.0
	}
	fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
		item.Rect.X, svgY(plan, item.Rect.Top()), item.Rect.W, item.Rect.H, fill, stroke, strokeWidth)
}

func renderSVGImage(buf *bytes.Buffer, plan *compose.Plan, item compose.Item, idx int) error {
	data, err := os.ReadFile(item.Path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "reading image %s", item.Path)
	}

	href := fmt.Sprintf("data:%s;base64,%s", imageMIME(item.Path), base64.StdEncoding.EncodeToString(data))

	if item.Clip != nil {
		clipID := fmt.Sprintf("clip-%d", idx)
		fmt.Fprintf(buf, `  <clipPath id="%s"><rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/></clipPath>`+"\n",
			clipID, item.Clip.X, svgY(plan, item.Clip.Top()), item.Clip.W, item.Clip.H)
		fmt.Fprintf(buf, `  <image x="%.2f" y="%.2f" width="%.2f" height="%.2f" preserveAspectRatio="none" clip-path="url(#%s)" href="%s"/>`+"\n",
			item.Rect.X, svgY(plan, item.Rect.Top()), item.Rect.W, item.Rect.H, clipID, href)
		return nil
	}

	fmt.Fprintf(buf, `  <image x="%.2f" y="%.2f" width="%.2f" height="%.2f" preserveAspectRatio="none" href="%s"/>`+"\n",
		item.Rect.X, svgY(plan, item.Rect.Top()), item.Rect.W, item.Rect.H, href)
	return nil
}

func renderSVGText(buf *bytes.Buffer, plan *compose.Plan, item compose.Item) {
	anchor := "start"
	if item.Center {
		anchor = "middle"
	}
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-family="%s, sans-serif" font-size="%.2f" text-anchor="%s">%s</text>`+"\n",
		item.X, svgY(plan, item.Y), EscapeXML(item.Font), item.Size, anchor, EscapeXML(item.Text))
}

// imageMIME guesses the MIME type from the file extension.
func imageMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
)

// EscapeXML escapes special characters for safe embedding in SVG output.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
