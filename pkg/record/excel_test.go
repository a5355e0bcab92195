package record

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/projectday/postergen/pkg/config"
	"github.com/projectday/postergen/pkg/errors"
)

// writeWorkbook creates a temporary xlsx file with the given rows on the
// default sheet and returns its path.
func writeWorkbook(t *testing.T, rows [][]string) string {
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

	path := filepath.Join(t.TempDir(), "projects.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		{"Project_ID", "Project_Name", "Problem", "Solution", "Product", "Team", "Image_Filename"},
		{"P1", "Smart Greenhouse", "plants die", "automate watering", "a box", "Ann, Bob", "greenhouse.png"},
		{"", "", "", "", "", "", ""}, // blank row skipped
		{"P2", "Route Planner", "traffic", "graphs", "an app", "Eve", ""},
	})

	cols := config.Columns{
		ProjectID:     "project_id",
		ProjectName:   "project_name",
		Problem:       "problem",
		Solution:      "solution",
		Product:       "product",
		Team:          "team",
		ImageFilename: "image_filename",
	}

	records, err := ReadWorkbook(path, cols)
	if err != nil {
		t.Fatalf("ReadWorkbook() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.ID != "P1" || first.Name != "Smart Greenhouse" || first.ImageFile != "greenhouse.png" {
		t.Errorf("first record = %+v", first)
	}
	if first.Row != 2 {
		t.Errorf("first record row = %d, want 2", first.Row)
	}

	second := records[1]
	if second.ID != "P2" || second.ImageFile != "" {
		t.Errorf("second record = %+v", second)
	}
	if second.Row != 4 {
		t.Errorf("second record row = %d, want 4 (blank row skipped)", second.Row)
	}
}

func TestReadWorkbookMissingColumns(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		{"project_id", "project_name"},
		{"P1", "Name"},
	})

	_, err := ReadWorkbook(path, config.Default().Columns)
	if !errors.Is(err, errors.ErrCodeInvalidWorkbook) {
		t.Errorf("error = %v, want INVALID_WORKBOOK", err)
	}
}

func TestReadWorkbookHeaderOnly(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		{"project_id", "project_name", "problem", "solution", "product", "team"},
	})

	_, err := ReadWorkbook(path, config.Default().Columns)
	if !errors.Is(err, errors.ErrCodeInvalidWorkbook) {
		t.Errorf("error = %v, want INVALID_WORKBOOK", err)
	}
}

func TestReadWorkbookMissingFile(t *testing.T) {
	_, err := ReadWorkbook("/nonexistent/projects.xlsx", config.Default().Columns)
	if !errors.Is(err, errors.ErrCodeInvalidWorkbook) {
		t.Errorf("error = %v, want INVALID_WORKBOOK", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		record   Record
		problems int
	}{
		{
			name: "complete record",
			record: Record{
				ID: "P1", Name: "n", Problem: "p", Solution: "s", Product: "pr", Team: "t",
			},
			problems: 0,
		},
		{
			name:     "empty record",
			record:   Record{},
			problems: 6,
		},
		{
			name: "image file is optional",
			record: Record{
				ID: "P1", Name: "n", Problem: "p", Solution: "s", Product: "pr", Team: "t", ImageFile: "",
			},
			problems: 0,
		},
		{
			name: "one missing field",
			record: Record{
				ID: "P1", Name: "n", Problem: "p", Solution: "s", Product: "pr",
			},
			problems: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Validate(); len(got) != tt.problems {
				t.Errorf("Validate() = %v, want %d problems", got, tt.problems)
			}
		})
	}
}
