package fonts

import (
	"testing"

	"github.com/projectday/postergen/pkg/errors"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

func TestBuiltinsRegistered(t *testing.T) {
	r := newTestRegistry(t)

	for _, name := range []string{GoRegular, GoBold, GoItalic} {
		if !r.Has(name) {
			t.Errorf("builtin %s not registered", name)
		}
	}
}

func TestResolve(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name      string
		requested string
		fallbacks []string
		want      string
		wantErr   bool
	}{
		{
			name:      "requested font exists",
			requested: GoBold,
			fallbacks: []string{GoRegular},
			want:      GoBold,
		},
		{
			name:      "falls back when requested missing",
			requested: "DejaVuSans",
			fallbacks: []string{GoRegular},
			want:      GoRegular,
		},
		{
			name:      "empty requested uses fallbacks",
			requested: "",
			fallbacks: []string{GoItalic},
			want:      GoItalic,
		},
		{
			name:      "nothing resolves",
			requested: "DejaVuSans",
			fallbacks: []string{"Arial", "Calibri"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.requested, tt.fallbacks...)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeFontNotFound) {
					t.Errorf("error = %v, want FONT_NOT_FOUND", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWidthIncreasesWithSize(t *testing.T) {
	r := newTestRegistry(t)

	small := r.Width(GoRegular, 10, "Alpha Beta Gamma")
	large := r.Width(GoRegular, 20, "Alpha Beta Gamma")

	if small <= 0 {
		t.Fatalf("Width at size 10 = %v, want > 0", small)
	}
	if large <= small {
		t.Errorf("Width(20) = %v not greater than Width(10) = %v", large, small)
	}
}

func TestWidthIsDeterministic(t *testing.T) {
	r := newTestRegistry(t)

	a := r.Width(GoRegular, 14, "postergen")
	b := r.Width(GoRegular, 14, "postergen")
	if a != b {
		t.Errorf("repeated measurement differs: %v vs %v", a, b)
	}
}

func TestWidthEmptyString(t *testing.T) {
	r := newTestRegistry(t)

	if w := r.Width(GoRegular, 14, ""); w != 0 {
		t.Errorf("Width(\"\") = %v, want 0", w)
	}
}

func TestExtents(t *testing.T) {
	r := newTestRegistry(t)

	ascent, descent := r.Extents(GoRegular, 12)
	if ascent <= 0 || descent <= 0 {
		t.Errorf("Extents = %v/%v, want positive values", ascent, descent)
	}
}

func TestFaceFallsBackToRegular(t *testing.T) {
	r := newTestRegistry(t)

	// Unknown names measure with GoRegular rather than failing mid-plan.
	if w := r.Width("NoSuchFont", 12, "x"); w <= 0 {
		t.Errorf("Width with unknown font = %v, want > 0", w)
	}
}
