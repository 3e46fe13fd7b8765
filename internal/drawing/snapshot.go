package drawing

import (
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/spf13/afero"
)

// Render paints ds, in order, onto a fresh w by h black canvas.
func Render(w, h int, ds []Drawable) *image.RGBA {
	c := NewCanvas(w, h, Black)
	for _, d := range ds {
		d.Draw(c)
	}
	return c.Image()
}

// SavePNG encodes img as PNG at path on fs, creating parent directories.
func SavePNG(fs afero.Fs, path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding snapshot %s: %w", path, err)
	}
	return f.Close()
}
