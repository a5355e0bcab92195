package compose

import (
	"reflect"
	"strings"
	"testing"

	"github.com/projectday/postergen/pkg/config"
	"github.com/projectday/postergen/pkg/errors"
	"github.com/projectday/postergen/pkg/layout"
	"github.com/projectday/postergen/pkg/record"
)

// charMetrics is a deterministic fake: every rune advances size/2 points.
type charMetrics struct{}

func (charMetrics) Width(font string, size float64, text string) float64 {
	return float64(len([]rune(text))) * size * 0.5
}

// fakeProber serves canned image dimensions by path.
type fakeProber struct {
	dims map[string][2]int
}

func (p *fakeProber) Probe(path string) (int, int, error) {
	if d, ok := p.dims[path]; ok {
		return d[0], d[1], nil
	}
	return 0, 0, errors.New(errors.ErrCodeInvalidImage, "cannot decode %s", path)
}

var testFonts = FontSet{Title: "title", Heading: "heading", Body: "body"}

func testRecord() record.Record {
	return record.Record{
		ID:       "P1",
		Name:     "Smart Greenhouse",
		Problem:  "plants die when nobody waters them",
		Solution: "a controller that waters on schedule",
		Product:  "a connected greenhouse box",
		Team:     "Ann Ivanova\nBob Petrov",
	}
}

func newTestComposer(cfg config.Config, dims map[string][2]int) *Composer {
	return New(cfg, charMetrics{}, &fakeProber{dims: dims}, testFonts)
}

func itemsOfKind(plan *Plan, kind ItemKind) []Item {
	var out []Item
	for _, it := range plan.Items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

func TestComposeWithImage(t *testing.T) {
	cfg := config.Default()
	c := newTestComposer(cfg, map[string][2]int{"images/P1.jpg": {2000, 1000}})

	plan, warnings := c.Compose(testRecord(), "images/P1.jpg", nil)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if plan.RecordID != "P1" || plan.OutputName != "P1_Smart Greenhouse" {
		t.Errorf("plan identity = %q / %q", plan.RecordID, plan.OutputName)
	}

	images := itemsOfKind(plan, ItemImage)
	if len(images) != 1 {
		t.Fatalf("got %d image items, want 1", len(images))
	}

	img := images[0]
	if img.Path != "images/P1.jpg" {
		t.Errorf("image path = %q", img.Path)
	}
	// Default mode is cover: the draw rect must at least span the band
	// and carry a clip equal to it.
	band := layout.Rect{
		X: 0,
		Y: plan.PageH - cfg.Layout.ImageHeightMM*layout.MM,
		W: plan.PageW,
		H: cfg.Layout.ImageHeightMM * layout.MM,
	}
	if img.Clip == nil || *img.Clip != band {
		t.Errorf("image clip = %+v, want band %+v", img.Clip, band)
	}
	if img.Rect.W < band.W || img.Rect.H < band.H {
		t.Errorf("cover draw rect %+v under-covers band %+v", img.Rect, band)
	}

	// All labels are present as heading text.
	var headings []string
	for _, it := range itemsOfKind(plan, ItemText) {
		if it.Font == testFonts.Heading {
			headings = append(headings, it.Text)
		}
	}
	want := []string{cfg.Labels.Title, cfg.Labels.Problem, cfg.Labels.Solution, cfg.Labels.Product, cfg.Labels.Team}
	if !reflect.DeepEqual(headings, want) {
		t.Errorf("headings = %v, want %v", headings, want)
	}
}

func TestComposeMissingImage(t *testing.T) {
	c := newTestComposer(config.Default(), nil)

	plan, warnings := c.Compose(testRecord(), "", nil)

	rects := itemsOfKind(plan, ItemRect)
	if len(rects) != 1 || !rects[0].Fill || !rects[0].Stroke {
		t.Errorf("placeholder rect items = %+v", rects)
	}

	found := false
	for _, it := range itemsOfKind(plan, ItemText) {
		if it.Center && it.Text == "No image available" {
			found = true
		}
	}
	if !found {
		t.Error("centered placeholder notice not found")
	}

	if len(warnings) != 1 || warnings[0].Kind != WarnImageMissing {
		t.Errorf("warnings = %v, want one image_missing", warnings)
	}
}

func TestComposeUndecodableImage(t *testing.T) {
	c := newTestComposer(config.Default(), nil) // prober fails for every path

	plan, warnings := c.Compose(testRecord(), "images/broken.jpg", nil)

	if len(itemsOfKind(plan, ItemImage)) != 0 {
		t.Error("plan contains an image item for an undecodable image")
	}
	if len(warnings) != 1 || warnings[0].Kind != WarnImageDrawFailed {
		t.Errorf("warnings = %v, want one image_draw_failed", warnings)
	}
}

func TestComposeTitleLineCap(t *testing.T) {
	cfg := config.Default()
	c := newTestComposer(cfg, nil)

	rec := testRecord()
	rec.Name = strings.Repeat("Extremely Long Project Name ", 20)

	plan, _ := c.Compose(rec, "", nil)

	var titleLines int
	for _, it := range itemsOfKind(plan, ItemText) {
		if it.Font == testFonts.Title {
			titleLines++
		}
	}
	if titleLines > titleLineCap {
		t.Errorf("title drawn with %d lines, display cap is %d", titleLines, titleLineCap)
	}
}

func TestComposeTruncationWarnings(t *testing.T) {
	cfg := config.Default()
	// Shrink the page so body text cannot fit even at the minimum size.
	cfg.Page.HeightMM = 500
	cfg.Layout.ImageHeightMM = 420

	c := newTestComposer(cfg, nil)
	rec := testRecord()
	rec.Problem = strings.Repeat("a very long problem statement ", 200)

	_, warnings := c.Compose(rec, "", nil)

	found := false
	for _, w := range warnings {
		if w.Kind == WarnTextTruncated && w.Subject == "P1/problem" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want text_truncated for P1/problem", warnings)
	}
}

func TestComposeTeamAnchorVariants(t *testing.T) {
	rec := testRecord()

	teamHeadingY := func(anchor string) float64 {
		cfg := config.Default()
		cfg.Layout.TeamAnchor = anchor
		plan, _ := newTestComposer(cfg, nil).Compose(rec, "", nil)
		for _, it := range itemsOfKind(plan, ItemText) {
			if it.Font == testFonts.Heading && it.Text == cfg.Labels.Team {
				return it.Y
			}
		}
		t.Fatalf("team heading not found for anchor %q", anchor)
		return 0
	}

	cfg := config.Default()
	fixed := teamHeadingY(config.TeamAnchorFixedBottom)
	flowed := teamHeadingY(config.TeamAnchorFlow)

	wantFixed := (cfg.Layout.PaddingBottomMM+cfg.Layout.TeamBlockHeightMM)*layout.MM - cfg.Fonts.HeadingSize
	if fixed != wantFixed {
		t.Errorf("fixed-bottom team heading y = %v, want %v", fixed, wantFixed)
	}
	if fixed == flowed {
		t.Error("flow-from-content anchor produced the same position as fixed-bottom")
	}
}

func TestComposeEmptyTeamNoWarning(t *testing.T) {
	c := newTestComposer(config.Default(), nil)
	rec := testRecord()
	rec.Team = ""

	plan, warnings := c.Compose(rec, "", nil)

	for _, w := range warnings {
		if w.Kind == WarnTextTruncated && strings.HasSuffix(w.Subject, "/team") {
			t.Errorf("unexpected team truncation warning: %v", w)
		}
	}
	for _, it := range itemsOfKind(plan, ItemText) {
		if it.Font == testFonts.Body && it.Y < plan.PageH/4 && it.Text != "" && !it.Center {
			// Team body lines would be body-font text near the page bottom.
			t.Errorf("unexpected team body line %q", it.Text)
		}
	}
}

func TestComposeLogos(t *testing.T) {
	cfg := config.Default()
	dims := map[string][2]int{
		"logos/a.png": {100, 100}, // aspect 1.0
		"logos/b.png": {400, 100}, // aspect 4.0
		"logos/c.png": {100, 100},
	}
	c := newTestComposer(cfg, dims)

	// Narrow the logo area so only the first two logos fit: width is
	// height×aspect, so a=40mm, b=160mm at the default 40mm logo height.
	cfg2 := cfg
	cfg2.Layout.TextColumnWidthMM = cfg.Page.WidthMM - cfg.Layout.PaddingLeftMM - cfg.Layout.PaddingRightMM - gutterMM - 220
	c = newTestComposer(cfg2, dims)

	plan, warnings := c.Compose(testRecord(), "", []string{"logos/a.png", "logos/b.png", "logos/c.png", "logos/broken.png"})

	var logoPaths []string
	for _, it := range itemsOfKind(plan, ItemImage) {
		logoPaths = append(logoPaths, it.Path)
	}
	if !reflect.DeepEqual(logoPaths, []string{"logos/a.png", "logos/b.png"}) {
		t.Errorf("placed logos = %v, want a and b only", logoPaths)
	}

	// The over-budget logo is silently skipped; only the unreadable one warns.
	var skips int
	for _, w := range warnings {
		if w.Kind == WarnLogoSkipped {
			skips++
		}
	}
	if skips != 0 {
		t.Errorf("logo_skipped warnings = %d, want 0 (broken logo never reached)", skips)
	}
}

func TestComposeLogoUnreadable(t *testing.T) {
	c := newTestComposer(config.Default(), map[string][2]int{"logos/a.png": {100, 100}})

	plan, warnings := c.Compose(testRecord(), "", []string{"logos/broken.png", "logos/a.png"})

	var skips int
	for _, w := range warnings {
		if w.Kind == WarnLogoSkipped {
			skips++
		}
	}
	if skips != 1 {
		t.Errorf("logo_skipped warnings = %d, want 1", skips)
	}

	// The readable logo after the broken one is still placed.
	var placed int
	for _, it := range itemsOfKind(plan, ItemImage) {
		if it.Path == "logos/a.png" {
			placed++
		}
	}
	if placed != 1 {
		t.Error("readable logo after a broken one was not placed")
	}
}

func TestComposeIsStateless(t *testing.T) {
	c := newTestComposer(config.Default(), map[string][2]int{"images/P1.jpg": {800, 600}})
	rec := testRecord()

	planA, warnA := c.Compose(rec, "images/P1.jpg", nil)
	planB, warnB := c.Compose(rec, "images/P1.jpg", nil)

	if !reflect.DeepEqual(planA, planB) {
		t.Error("repeated composition produced different plans")
	}
	if !reflect.DeepEqual(warnA, warnB) {
		t.Error("repeated composition produced different warnings")
	}
}
