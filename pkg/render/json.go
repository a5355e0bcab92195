package render

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/projectday/postergen/pkg/compose"
	"github.com/projectday/postergen/pkg/errors"
)

// MarshalPlan encodes a plan as indented JSON.
func MarshalPlan(plan *compose.Plan) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePlan(plan, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePlan encodes a plan as JSON and writes it to w. The output can be
// re-imported with [ReadPlan] for a later render pass.
func WritePlan(plan *compose.Plan, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plan); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "encoding plan")
	}
	return nil
}

// ExportPlan writes a plan to a JSON file at path.
func ExportPlan(plan *compose.Plan, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "creating %s", path)
	}
	defer f.Close()
	return WritePlan(plan, f)
}

// ReadPlan decodes a JSON plan from r and validates it. Validation checks
// the page geometry, the item kinds, and the fields each kind requires;
// it does not check that image paths still exist.
//
// The returned plan is independent of r. ReadPlan does not close r.
func ReadPlan(r io.Reader) (*compose.Plan, error) {
	var plan compose.Plan
	if err := json.NewDecoder(r).Decode(&plan); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPlan, err, "decoding plan")
	}
	if err := validatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ImportPlan reads a JSON file at path and returns the decoded plan.
func ImportPlan(path string) (*compose.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opening %s", path)
	}
	defer f.Close()
	return ReadPlan(f)
}

func validatePlan(plan *compose.Plan) error {
	if plan.PageW <= 0 || plan.PageH <= 0 {
		return errors.New(errors.ErrCodeInvalidPlan, "page dimensions must be positive, got %gx%g", plan.PageW, plan.PageH)
	}
	for i, item := range plan.Items {
		switch item.Kind {
		case compose.ItemRect:
			if item.Rect.W < 0 || item.Rect.H < 0 {
				return errors.New(errors.ErrCodeInvalidPlan, "item %d: negative rect dimensions", i)
			}
		case compose.ItemImage:
			if item.Path == "" {
				return errors.New(errors.ErrCodeInvalidPlan, "item %d: image without path", i)
			}
		case compose.ItemText:
			if item.Font == "" {
				return errors.New(errors.ErrCodeInvalidPlan, "item %d: text without font", i)
			}
			if item.Size <= 0 {
				return errors.New(errors.ErrCodeInvalidPlan, "item %d: text size must be positive", i)
			}
		default:
			return errors.New(errors.ErrCodeInvalidPlan, "item %d: unknown kind %q", i, item.Kind)
		}
	}
	return nil
}
