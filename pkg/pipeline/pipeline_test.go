package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/projectday/postergen/pkg/cache"
	"github.com/projectday/postergen/pkg/compose"
	"github.com/projectday/postergen/pkg/config"
	"github.com/projectday/postergen/pkg/errors"
	"github.com/projectday/postergen/pkg/render"
)

// writeWorkbook creates a temporary xlsx file with the given rows on the
// default sheet and returns its path.
func writeWorkbook(t *testing.T, dir string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		start, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, start, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(dir, "projects.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 80, G: 120, B: 160, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

var workbookHeader = []string{"project_id", "project_name", "problem", "solution", "product", "team", "image_filename"}

func testOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeImage(t, imagesDir, "P1.png", 160, 90)

	workbook := writeWorkbook(t, dir, [][]string{
		workbookHeader,
		{"P1", "Smart Greenhouse", "plants die", "automate watering", "a box", "Ann, Bob", ""},
		{"P2", "Route Planner", "traffic jams", "shortest paths", "an app", "Eve", ""},
	})

	return Options{
		Workbook:  workbook,
		ImagesDir: imagesDir,
		OutputDir: filepath.Join(dir, "out"),
		Formats:   []string{render.FormatSVG, render.FormatJSON},
	}
}

func newTestRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	r, err := NewRunner(c, nil, nil)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	return r
}

func TestExecuteWritesArtifacts(t *testing.T) {
	runner := newTestRunner(t, nil)
	opts := testOptions(t)

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if result.Stats.Records != 2 || result.Stats.Succeeded != 2 || result.Stats.Failed != 0 {
		t.Errorf("Stats = %+v, want 2 records, 2 succeeded", result.Stats)
	}

	for _, p := range result.Posters {
		if p.Err != nil {
			t.Fatalf("record %s failed: %v", p.RecordID, p.Err)
		}
		for _, format := range opts.Formats {
			path, ok := p.Artifacts[format]
			if !ok {
				t.Fatalf("record %s missing %s artifact", p.RecordID, format)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("artifact %s not written: %v", path, err)
			}
		}
	}

	// Records come back in workbook order regardless of worker scheduling.
	if result.Posters[0].RecordID != "P1" || result.Posters[1].RecordID != "P2" {
		t.Errorf("poster order = [%s %s], want [P1 P2]",
			result.Posters[0].RecordID, result.Posters[1].RecordID)
	}

	// P2 has no image on disk, so its plan carries the placeholder warning.
	found := false
	for _, w := range result.Posters[1].Warnings {
		if w.Kind == compose.WarnImageMissing {
			found = true
		}
	}
	if !found {
		t.Error("P2 should carry an image_missing warning")
	}
}

func TestExecuteRecordFilter(t *testing.T) {
	runner := newTestRunner(t, nil)
	opts := testOptions(t)
	opts.Records = []string{"P2"}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Posters) != 1 || result.Posters[0].RecordID != "P2" {
		t.Errorf("filtered run = %+v, want only P2", result.Posters)
	}
}

func TestExecuteIsolatesBadRecords(t *testing.T) {
	dir := t.TempDir()
	workbook := writeWorkbook(t, dir, [][]string{
		workbookHeader,
		{"P1", "", "plants die", "automate", "a box", "Ann", ""}, // name missing
		{"P2", "Route Planner", "traffic", "graphs", "an app", "Eve", ""},
	})

	runner := newTestRunner(t, nil)
	result, err := runner.Execute(context.Background(), Options{
		Workbook:  workbook,
		OutputDir: filepath.Join(dir, "out"),
		Formats:   []string{render.FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Stats.Failed != 1 || result.Stats.Succeeded != 1 {
		t.Errorf("Stats = %+v, want 1 failed, 1 succeeded", result.Stats)
	}
	if !errors.Is(result.Posters[0].Err, errors.ErrCodeInvalidRecord) {
		t.Errorf("P1 error = %v, want INVALID_RECORD", result.Posters[0].Err)
	}
	if result.Posters[1].Err != nil {
		t.Errorf("P2 should succeed, got %v", result.Posters[1].Err)
	}
}

func TestExecuteUsesArtifactCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := newTestRunner(t, fc)
	opts := testOptions(t)

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	for _, p := range first.Posters {
		for format, hit := range p.CacheHits {
			if hit {
				t.Errorf("first run should miss for %s/%s", p.RecordID, format)
			}
		}
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	for _, p := range second.Posters {
		for format, hit := range p.CacheHits {
			if !hit {
				t.Errorf("second run should hit for %s/%s", p.RecordID, format)
			}
		}
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := newTestRunner(t, fc)
	opts := testOptions(t)

	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}

	opts.Refresh = true
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	for _, p := range result.Posters {
		for format, hit := range p.CacheHits {
			if hit {
				t.Errorf("refresh run should not hit cache for %s/%s", p.RecordID, format)
			}
		}
	}
}

func TestExecuteMissingWorkbook(t *testing.T) {
	runner := newTestRunner(t, nil)
	_, err := runner.Execute(context.Background(), Options{
		Workbook:  "/nonexistent/projects.xlsx",
		OutputDir: t.TempDir(),
		Formats:   []string{render.FormatJSON},
	})
	if !errors.Is(err, errors.ErrCodeInvalidWorkbook) {
		t.Errorf("Execute() error = %v, want INVALID_WORKBOOK", err)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{
			name: "missing workbook",
			opts: Options{},
			code: errors.ErrCodeInvalidConfig,
		},
		{
			name: "bad format",
			opts: Options{Workbook: "projects.xlsx", Formats: []string{"docx"}},
			code: errors.ErrCodeInvalidFormat,
		},
		{
			name: "invalid config",
			opts: Options{
				Workbook: "projects.xlsx",
				Config: func() config.Config {
					c := config.Default()
					c.Fonts.LineSpacing = 0
					return c
				}(),
			},
			code: errors.ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Workbook: "projects.xlsx"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	if opts.OutputDir != config.Default().Output.Folder {
		t.Errorf("OutputDir = %q, want config default", opts.OutputDir)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != render.FormatPDF {
		t.Errorf("Formats = %v, want [pdf]", opts.Formats)
	}
	if opts.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", opts.Workers, DefaultWorkers)
	}
	if opts.PNGScale != DefaultPNGScale {
		t.Errorf("PNGScale = %g, want %g", opts.PNGScale, DefaultPNGScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}
