// Package fonts provides the glyph metrics capability for poster layout.
//
// A [Registry] holds parsed OpenType fonts keyed by name and measures
// string advance widths through cached font faces. The Go fonts
// (GoRegular, GoBold, GoItalic) are embedded via x/image and always
// available, so measurement never depends on the host system; additional
// TTF/OTF files can be loaded at startup.
//
// Measurement is pure: the same (font, size, text) triple always yields
// the same width, and a single Registry may be shared across concurrent
// poster compositions.
package fonts

import (
	"os"
	"sort"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/projectday/postergen/pkg/errors"
)

// Builtin font names, always registered.
const (
	GoRegular = "GoRegular"
	GoBold    = "GoBold"
	GoItalic  = "GoItalic"
)

const dpi = 72 // 1 point == 1 pixel, so advances come back in points

// Registry holds parsed fonts and a face cache. The zero value is not
// usable; create one with NewRegistry.
type Registry struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	name string
	size float64
}

// NewRegistry creates a registry with the embedded Go fonts registered.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}

	builtins := map[string][]byte{
		GoRegular: goregular.TTF,
		GoBold:    gobold.TTF,
		GoItalic:  goitalic.TTF,
	}
	for name, data := range builtins {
		if err := r.Register(name, data); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register parses raw TTF/OTF data and stores it under name, replacing
// any font previously registered with the same name.
func (r *Registry) Register(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse font %s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.fonts[name] = f
	return nil
}

// LoadFile reads a font file from disk and registers it under name.
func (r *Registry) LoadFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read font %s", path)
	}
	return r.Register(name, data)
}

// Has reports whether a font is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.fonts[name]
	return ok
}

// Names returns the registered font names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.fonts))
	for name := range r.fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the first of requested and fallbacks that is registered.
// It never substitutes implicitly: when nothing resolves, a FONT_NOT_FOUND
// error names every candidate that was tried.
func (r *Registry) Resolve(requested string, fallbacks ...string) (string, error) {
	candidates := make([]string, 0, len(fallbacks)+1)
	if requested != "" {
		candidates = append(candidates, requested)
	}
	candidates = append(candidates, fallbacks...)

	for _, name := range candidates {
		if name != "" && r.Has(name) {
			return name, nil
		}
	}
	return "", errors.New(errors.ErrCodeFontNotFound, "no registered font among %v", candidates)
}

// Face returns a cached font.Face for the given font and size. Unknown
// font names fall back to GoRegular so that measurement and drawing stay
// total; font resolution is expected to have happened up front.
func (r *Registry) Face(name string, size float64) (font.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := faceKey{name: name, size: size}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}

	f, ok := r.fonts[name]
	if !ok {
		f = r.fonts[GoRegular]
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create face %s@%.1f", name, size)
	}

	r.faces[key] = face
	return face, nil
}

// Width returns the advance width of text in points, including kerning.
// It implements the layout.Metrics interface.
func (r *Registry) Width(name string, size float64, text string) float64 {
	face, err := r.Face(name, size)
	if err != nil {
		return 0
	}
	return fixedToFloat(font.MeasureString(face, text))
}

// Extents returns the ascent and descent of a font at the given size,
// both in points.
func (r *Registry) Extents(name string, size float64) (ascent, descent float64) {
	face, err := r.Face(name, size)
	if err != nil {
		return 0, 0
	}
	m := face.Metrics()
	return fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
}

// fixedToFloat converts a 26.6 fixed-point value to points.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
