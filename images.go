package folio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const jpegQuality = 80

// copyStatic copies every file in src to dst. JPEG and PNG images wider than
// maxWidth are scaled down on the way; other files are copied verbatim.
// It returns the number of files written and of images resized.
func copyStatic(src fs.FS, dst string, maxWidth int) (files, resized int, err error) {
	err = fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		if out, ok, err := resizeImage(data, path.Ext(p), maxWidth); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		} else if ok {
			data = out
			resized++
		}
		files++
		return os.WriteFile(target, data, 0o644)
	})
	return files, resized, err
}

// resizeImage scales a JPEG or PNG down to maxWidth, keeping its aspect
// ratio and format. ok is false when the image was left alone.
func resizeImage(data []byte, ext string, maxWidth int) (out []byte, ok bool, err error) {
	ext = strings.ToLower(ext)
	if maxWidth <= 0 || (ext != ".jpg" && ext != ".jpeg" && ext != ".png") {
		return nil, false, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= maxWidth {
		// Not decodable as an image: copy as-is.
		return nil, false, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := encodeScaled(&buf, img, ext, maxWidth); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}

func encodeScaled(w io.Writer, img image.Image, ext string, maxWidth int) error {
	bounds := img.Bounds()
	newH := bounds.Dy() * maxWidth / bounds.Dx()
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	if ext == ".png" {
		if err := png.Encode(w, dst); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	}
	if err := jpeg.Encode(w, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}
