// Package assets resolves files the poster pipeline needs — project
// images, logos, and font files — without leaking filesystem concerns
// into the layout core. The resolver is an injected capability with a
// narrow contract: given a hint, return a path or a typed not-found
// error.
package assets

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	// Decoders registered for dimension probing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/flopp/go-findfont"
	_ "golang.org/x/image/webp"

	"github.com/projectday/postergen/pkg/errors"
)

// imageExts are the extensions tried when locating an image by project
// id, in preference order.
var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Resolver locates assets relative to a project directory layout.
type Resolver struct {
	// ImagesDir holds project images named after record ids.
	ImagesDir string
	// FontsDir optionally holds bundled font files, checked before the
	// system font directories.
	FontsDir string
}

// FindImage returns the path of the image for a record. An explicit
// filename wins: it is tried relative to ImagesDir, then as given.
// Otherwise the record id is tried with each known image extension.
// A miss is an IMAGE_NOT_FOUND error, never a fatal condition.
func (r *Resolver) FindImage(id, filename string) (string, error) {
	if filename != "" {
		p := filepath.Join(r.ImagesDir, filename)
		if fileExists(p) {
			return p, nil
		}
		if fileExists(filename) {
			return filename, nil
		}
		return "", errors.New(errors.ErrCodeImageNotFound, "image %s not found for record %s", filename, id)
	}

	for _, ext := range imageExts {
		for _, name := range []string{id + ext, id + strings.ToUpper(ext)} {
			p := filepath.Join(r.ImagesDir, name)
			if fileExists(p) {
				return p, nil
			}
		}
	}
	return "", errors.New(errors.ErrCodeImageNotFound, "no image found for record %s in %s", id, r.ImagesDir)
}

// FindFont locates a font file by filename. The bundled fonts directory
// is searched first, then the system font directories via go-findfont.
func (r *Resolver) FindFont(filename string) (string, error) {
	if r.FontsDir != "" {
		p := filepath.Join(r.FontsDir, filename)
		if fileExists(p) {
			return p, nil
		}
	}

	p, err := findfont.Find(filename)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFontNotFound, err, "font file %s", filename)
	}
	return p, nil
}

// ResolveLogo returns the path for a configured logo entry. Relative
// paths are tried as given first, then relative to ImagesDir.
func (r *Resolver) ResolveLogo(path string) (string, error) {
	if fileExists(path) {
		return path, nil
	}
	if p := filepath.Join(r.ImagesDir, path); fileExists(p) {
		return p, nil
	}
	return "", errors.New(errors.ErrCodeFileNotFound, "logo %s not found", path)
}

// Probe returns the intrinsic pixel dimensions of an image file without
// decoding the pixel data.
func (r *Resolver) Probe(path string) (w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeImageNotFound, err, "open image %s", path)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode image %s", path)
	}
	return cfg.Width, cfg.Height, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
