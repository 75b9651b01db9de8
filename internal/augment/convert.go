package augment

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// Output pixel formats accepted at staging time. "original" passes the
// source bytes through untouched.
const (
	OutputFormatOriginal = "original"
	OutputFormatJPEG     = "jpeg"
	OutputFormatPNG      = "png"
	OutputFormatTIFF     = "tiff"
	OutputFormatBMP      = "bmp"
)

var outputExtensions = map[string]string{
	OutputFormatJPEG: ".jpg",
	OutputFormatPNG:  ".png",
	OutputFormatTIFF: ".tif",
	OutputFormatBMP:  ".bmp",
}

// OutputExtension returns the file extension for an output format, or the
// empty string for pass-through.
func OutputExtension(format string) string {
	return outputExtensions[format]
}

// OpenImage decodes an image file. WebP is handled explicitly; every other
// format goes through imaging's decoder.
func OpenImage(path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, err := webp.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode webp %s: %w", path, err)
		}
		return img, nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	return img, nil
}

// SaveImage encodes an image to path; the encoder is chosen from the path's
// extension.
func SaveImage(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save image %s: %w", path, err)
	}
	return nil
}

// ConvertTo re-encodes a source image file into the requested output format
// at dstPath (whose extension must already match the format).
func ConvertTo(srcPath, dstPath, format string) error {
	if format == "" || format == OutputFormatOriginal {
		return copyFile(srcPath, dstPath)
	}
	if _, ok := outputExtensions[format]; !ok {
		return fmt.Errorf("unsupported output format %q", format)
	}
	img, err := OpenImage(srcPath)
	if err != nil {
		return err
	}
	return SaveImage(img, dstPath)
}

func copyFile(srcPath, dstPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	return os.WriteFile(dstPath, data, 0o644)
}

// CopyFile is the raw-copy fallback used when per-image conversion fails.
func CopyFile(srcPath, dstPath string) error {
	return copyFile(srcPath, dstPath)
}
