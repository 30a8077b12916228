package report

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

const (
	PreviewWidth  = 420
	PreviewHeight = 320

	// NoPreview is shown instead of the image when it cannot be produced.
	NoPreview = "No preview."
)

// PreviewResult is either a written thumbnail or a placeholder text.
type PreviewResult struct {
	Path        string
	Placeholder string
}

// Preview scales the screenshot at src to the fixed preview size and writes
// it to dst as PNG. Any failure yields the placeholder instead.
func Preview(src, dst string) PreviewResult {
	if err := resize(src, dst, PreviewWidth, PreviewHeight); err != nil {
		slog.Warn("Preview unavailable", "screenshot", src, "error", err)
		return PreviewResult{Placeholder: NoPreview}
	}
	return PreviewResult{Path: dst}
}

func resize(src, dst string, w, h int) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decode screenshot: %w", err)
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Over, nil)

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	return f.Close()
}
