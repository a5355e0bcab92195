// Package record defines the project records posters are generated from
// and reads them out of Excel workbooks.
package record

import "fmt"

// Record is one project row from the workbook. All text fields except
// ImageFile are required for composition; ImageFile overrides the
// identifier-based image lookup when present.
type Record struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Problem   string `json:"problem"`
	Solution  string `json:"solution"`
	Product   string `json:"product"`
	Team      string `json:"team"`
	ImageFile string `json:"image_file,omitempty"`

	// Row is the 1-based workbook row the record came from, for error
	// reporting only.
	Row int `json:"row,omitempty"`
}

// Validate returns a list of problems with the record. An empty list
// means the record is ready for composition.
func (r Record) Validate() []string {
	var problems []string

	required := []struct {
		value string
		what  string
	}{
		{r.ID, "project id"},
		{r.Name, "project name"},
		{r.Problem, "problem description"},
		{r.Solution, "solution description"},
		{r.Product, "product description"},
		{r.Team, "team information"},
	}

	for _, f := range required {
		if f.value == "" {
			problems = append(problems, fmt.Sprintf("missing %s", f.what))
		}
	}
	return problems
}
