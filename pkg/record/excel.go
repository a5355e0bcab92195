package record

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/projectday/postergen/pkg/config"
	"github.com/projectday/postergen/pkg/errors"
)

// ReadWorkbook reads all project records from the first sheet of an Excel
// workbook. The first row is treated as a header; columns are matched
// against cols case-insensitively. Completely blank rows are skipped.
// Missing required columns are a hard error, a missing image column is
// not (images can still be found by project id).
func ReadWorkbook(path string, cols config.Columns) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidWorkbook, err, "open workbook %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidWorkbook, "workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidWorkbook, err, "read sheet %s", sheets[0])
	}
	if len(rows) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidWorkbook, "workbook needs a header row and at least one data row")
	}

	idx, err := findColumns(rows[0], cols)
	if err != nil {
		return nil, err
	}

	var records []Record
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		records = append(records, Record{
			ID:        cell(row, idx.id),
			Name:      cell(row, idx.name),
			Problem:   cell(row, idx.problem),
			Solution:  cell(row, idx.solution),
			Product:   cell(row, idx.product),
			Team:      cell(row, idx.team),
			ImageFile: cell(row, idx.image),
			Row:       i + 2, // header is row 1
		})
	}
	return records, nil
}

// columnIndices holds the resolved header positions; -1 means absent.
type columnIndices struct {
	id, name, problem, solution, product, team, image int
}

func findColumns(header []string, cols config.Columns) (columnIndices, error) {
	lookup := make(map[string]int, len(header))
	for i, h := range header {
		lookup[strings.ToLower(strings.TrimSpace(h))] = i
	}

	find := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := lookup[strings.ToLower(strings.TrimSpace(name))]; ok {
			return i
		}
		return -1
	}

	idx := columnIndices{
		id:       find(cols.ProjectID),
		name:     find(cols.ProjectName),
		problem:  find(cols.Problem),
		solution: find(cols.Solution),
		product:  find(cols.Product),
		team:     find(cols.Team),
		image:    find(cols.ImageFilename),
	}

	missing := []string{}
	for _, c := range []struct {
		idx  int
		name string
	}{
		{idx.id, cols.ProjectID},
		{idx.name, cols.ProjectName},
		{idx.problem, cols.Problem},
		{idx.solution, cols.Solution},
		{idx.product, cols.Product},
		{idx.team, cols.Team},
	} {
		if c.idx < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return idx, errors.New(errors.ErrCodeInvalidWorkbook, "missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
