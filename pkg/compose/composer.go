// Package compose turns one project record plus configuration into a
// poster plan: an ordered list of draw instructions with fully resolved
// geometry, ready for any renderer.
//
// The composer owns the page geometry model. Regions are derived in a
// fixed order — image band, title block, content sections, team block,
// logo strip — because later regions depend on the space earlier ones
// consume. Composition is pure and stateless across records: a Composer
// only reads its injected configuration, metrics provider, and image
// prober, so records may be composed concurrently.
package compose

import (
	"path/filepath"

	"github.com/projectday/postergen/pkg/config"
	"github.com/projectday/postergen/pkg/layout"
	"github.com/projectday/postergen/pkg/record"
)

// Fixed layout constants, in millimeters. These mirror the poster
// template and are not meant to be configured per deployment.
const (
	gutterMM         = 20 // between left column and text column
	labelGapMM       = 4  // between title label and the fitted name
	sectionReserveMM = 60 // vertical headroom kept out of section budgets
	sectionGapMM     = 15 // between consecutive sections
)

const (
	// titleLineCap is a deliberate display cap on the fitted project
	// name, independent of what the fitter returns.
	titleLineCap = 3

	// noticeSize is the font size of placeholder notices in the image band.
	noticeSize = 24.0

	// teamSizeDrop is subtracted from the body size for the team listing.
	teamSizeDrop = 2.0
)

// Prober reports the intrinsic pixel dimensions of an image file.
type Prober interface {
	Probe(path string) (w, h int, err error)
}

// FontSet carries the resolved font identifiers for the three text roles.
type FontSet struct {
	Title   string
	Heading string
	Body    string
}

// Composer builds poster plans. Create one per configuration and reuse
// it for every record; Compose never mutates the Composer.
type Composer struct {
	cfg     config.Config
	metrics layout.Metrics
	prober  Prober
	fonts   FontSet
}

// New creates a composer from validated configuration, a glyph metrics
// provider, an image prober, and resolved font identifiers.
func New(cfg config.Config, metrics layout.Metrics, prober Prober, fonts FontSet) *Composer {
	return &Composer{cfg: cfg, metrics: metrics, prober: prober, fonts: fonts}
}

// builder accumulates the plan and its warnings for a single record.
type builder struct {
	plan     *Plan
	warnings []Warning
}

func (b *builder) add(it Item) {
	b.plan.Items = append(b.plan.Items, it)
}

func (b *builder) warn(subject string, kind WarningKind, msg string) {
	b.warnings = append(b.warnings, Warning{Subject: subject, Kind: kind, Message: msg})
}

// drawLines emits one text item per line starting at top and flowing
// downward, and returns the vertical space used.
func (b *builder) drawLines(lines []string, font string, size, spacing, x, top float64) float64 {
	y := top - size
	for _, line := range lines {
		b.add(Item{Kind: ItemText, Text: line, Font: font, Size: size, X: x, Y: y})
		y -= size * spacing
	}
	return float64(len(lines)) * size * spacing
}

// placeholder draws a white stroked rectangle with a centered notice,
// used when an image cannot be drawn.
func (b *builder) placeholder(r layout.Rect, notice, font string) {
	b.add(Item{Kind: ItemRect, Rect: r, Fill: true, Stroke: true})
	b.add(Item{Kind: ItemText, Text: notice, Font: font, Size: noticeSize, X: r.CenterX(), Y: r.CenterY(), Center: true})
}

// Compose builds the poster plan for one record. imagePath may be empty
// when no image was found; logos are pre-resolved file paths. Compose
// never fails: problems surface as warnings and the plan still completes.
func (c *Composer) Compose(rec record.Record, imagePath string, logos []string) (*Plan, []Warning) {
	pageW := c.cfg.Page.WidthMM * layout.MM
	pageH := c.cfg.Page.HeightMM * layout.MM

	b := &builder{plan: &Plan{
		RecordID:   rec.ID,
		Title:      rec.Name,
		OutputName: FormatOutputName(c.cfg.Output.NamingPattern, rec.ID, rec.Name),
		PageW:      pageW,
		PageH:      pageH,
	}}

	padL := c.cfg.Layout.PaddingLeftMM * layout.MM
	padR := c.cfg.Layout.PaddingRightMM * layout.MM
	padT := c.cfg.Layout.PaddingTopMM * layout.MM
	padB := c.cfg.Layout.PaddingBottomMM * layout.MM
	textColW := c.cfg.Layout.TextColumnWidthMM * layout.MM
	leftColW := pageW - padL - padR - textColW - gutterMM*layout.MM

	// 1. Image band across the page top.
	imageRect := layout.Rect{
		X: 0,
		Y: pageH - c.cfg.Layout.ImageHeightMM*layout.MM,
		W: pageW,
		H: c.cfg.Layout.ImageHeightMM * layout.MM,
	}
	c.composeImage(b, rec, imagePath, imageRect)

	// 2. Content region below the band.
	contentTop := imageRect.Y - padT

	// 3. Left column: label plus the fitted project name.
	c.composeTitle(b, rec, padL, leftColW, contentTop)

	// 4. Right column: the three content sections.
	textX := pageW - padR - textColW
	sectionsEnd := c.composeSections(b, rec, textX, textColW, contentTop, padB)

	// 5. Team block, anchored per configuration.
	teamTop := padB + c.cfg.Layout.TeamBlockHeightMM*layout.MM
	if c.cfg.Layout.TeamAnchor == config.TeamAnchorFlow {
		teamTop = sectionsEnd
	}
	c.composeTeam(b, rec, textX, textColW, teamTop, padB)

	// 6. Logo strip along the bottom-left.
	c.composeLogos(b, rec, logos, padL, padB, leftColW)

	return b.plan, b.warnings
}

func (c *Composer) composeImage(b *builder, rec record.Record, imagePath string, target layout.Rect) {
	if imagePath == "" {
		b.placeholder(target, "No image available", c.fonts.Body)
		b.warn(rec.ID+"/image", WarnImageMissing, "no image available")
		return
	}

	iw, ih, err := c.prober.Probe(imagePath)
	var placement layout.Placement
	if err == nil {
		placement, err = layout.Place(iw, ih, target, layout.FitMode(c.cfg.Layout.ImageFitMode))
	}
	if err != nil {
		b.placeholder(target, "Image unavailable: "+filepath.Base(imagePath), c.fonts.Body)
		b.warn(rec.ID+"/image", WarnImageDrawFailed, err.Error())
		return
	}

	b.add(Item{Kind: ItemImage, Path: imagePath, Rect: placement.Draw, Clip: placement.Clip})
}

func (c *Composer) composeTitle(b *builder, rec record.Record, x, width, contentTop float64) {
	headingSize := c.cfg.Fonts.HeadingSize

	b.add(Item{Kind: ItemText, Text: c.cfg.Labels.Title, Font: c.fonts.Heading, Size: headingSize, X: x, Y: contentTop - headingSize})

	boxTop := contentTop - headingSize*1.6 - labelGapMM*layout.MM
	style := layout.TextStyle{
		Font:        c.fonts.Title,
		Size:        c.cfg.Fonts.TitleSize,
		LineSpacing: c.cfg.Fonts.LineSpacing,
		MinSize:     c.cfg.Fonts.MinFontSize,
	}

	res := layout.Fit(c.metrics, rec.Name, style, width, c.cfg.Layout.TitleBoxHeightMM*layout.MM)
	lines := res.Lines
	if len(lines) > titleLineCap {
		lines = lines[:titleLineCap]
	}
	b.drawLines(lines, c.fonts.Title, res.Size, style.LineSpacing, x, boxTop)

	if res.Truncated {
		b.warn(rec.ID+"/title", WarnTextTruncated, "project name truncated")
	}
}

// composeSections lays the three content sections top to bottom and
// returns the y position where content ended.
func (c *Composer) composeSections(b *builder, rec record.Record, x, width, contentTop, padB float64) float64 {
	headingSize := c.cfg.Fonts.HeadingSize
	spacing := c.cfg.Fonts.LineSpacing

	areaHeight := contentTop - padB
	budget := (areaHeight - sectionReserveMM*layout.MM) / 3

	style := layout.TextStyle{
		Font:        c.fonts.Body,
		Size:        c.cfg.Fonts.BodySize,
		LineSpacing: spacing,
		MinSize:     c.cfg.Fonts.MinFontSize,
	}

	sections := []struct {
		name  string
		label string
		text  string
	}{
		{"problem", c.cfg.Labels.Problem, rec.Problem},
		{"solution", c.cfg.Labels.Solution, rec.Solution},
		{"product", c.cfg.Labels.Product, rec.Product},
	}

	y := contentTop
	for _, s := range sections {
		b.add(Item{Kind: ItemText, Text: s.label, Font: c.fonts.Heading, Size: headingSize, X: x, Y: y - headingSize})
		headingHeight := headingSize * spacing * 1.5

		res := layout.Fit(c.metrics, s.text, style, width, budget-headingHeight)
		used := headingHeight + b.drawLines(res.Lines, c.fonts.Body, res.Size, spacing, x, y-headingHeight)

		if res.Truncated {
			b.warn(rec.ID+"/"+s.name, WarnTextTruncated, "text truncated in "+s.label+" section")
		}

		y -= used + sectionGapMM*layout.MM
	}
	return y
}

func (c *Composer) composeTeam(b *builder, rec record.Record, x, width, teamTop, padB float64) {
	headingSize := c.cfg.Fonts.HeadingSize

	b.add(Item{Kind: ItemText, Text: c.cfg.Labels.Team, Font: c.fonts.Heading, Size: headingSize, X: x, Y: teamTop - headingSize})

	textTop := teamTop - headingSize*1.8
	style := layout.TextStyle{
		Font:        c.fonts.Body,
		Size:        max(c.cfg.Fonts.BodySize-teamSizeDrop, c.cfg.Fonts.MinFontSize),
		LineSpacing: c.cfg.Fonts.LineSpacing,
		MinSize:     c.cfg.Fonts.MinFontSize,
	}

	res := layout.Fit(c.metrics, rec.Team, style, width, textTop-padB)
	b.drawLines(res.Lines, c.fonts.Body, res.Size, style.LineSpacing, x, textTop)

	if res.Truncated {
		b.warn(rec.ID+"/team", WarnTextTruncated, "team text truncated")
	}
}

func (c *Composer) composeLogos(b *builder, rec record.Record, logos []string, x, y, maxWidth float64) {
	if len(logos) == 0 {
		return
	}

	logoH := c.cfg.Logos.HeightMM * layout.MM
	spacing := c.cfg.Logos.SpacingMM * layout.MM
	curX := x

	for _, path := range logos {
		iw, ih, err := c.prober.Probe(path)
		if err != nil || iw <= 0 || ih <= 0 {
			b.warn(rec.ID+"/logos", WarnLogoSkipped, "unreadable logo "+filepath.Base(path))
			continue
		}

		logoW := logoH * float64(iw) / float64(ih)
		if curX+logoW > x+maxWidth {
			// Out of horizontal budget; remaining logos are decorative
			// and dropped silently.
			break
		}

		b.add(Item{Kind: ItemImage, Path: path, Rect: layout.Rect{X: curX, Y: y, W: logoW, H: logoH}})
		curX += logoW + spacing
	}
}
