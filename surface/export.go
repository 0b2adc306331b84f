package surface

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/mwantia/cncmaps/data"
	errs "github.com/mwantia/cncmaps/data/errors"
)

type ImageFormat int

const (
	PNG ImageFormat = iota
	JPEG
	BMP
	TIFF
)

func (f ImageFormat) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// Extension returns the file extension of f including the dot.
func (f ImageFormat) Extension() string {
	switch f {
	case JPEG:
		return ".jpg"
	case BMP:
		return ".bmp"
	case TIFF:
		return ".tiff"
	default:
		return ".png"
	}
}

// FormatFromPath derives the image format from the extension of path.
func FormatFromPath(path string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	}
	return PNG, fmt.Errorf("%w: image extension of '%s'", data.ErrUnsupported, path)
}

// pngCompression maps a quality of 0..9 onto the levels of image/png.
func pngCompression(quality int) png.CompressionLevel {
	switch {
	case quality <= 0:
		return png.NoCompression
	case quality <= 3:
		return png.BestSpeed
	case quality <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

// Encode writes rect of the surface to w. Quality is the compression level
// 0..9 for PNG and 1..100 for JPEG; it is ignored otherwise.
func (s *Surface) Encode(w io.Writer, format ImageFormat, quality int, rect image.Rectangle) error {
	img := s.ExportRegion(rect)

	switch format {
	case PNG:
		enc := &png.Encoder{CompressionLevel: pngCompression(quality)}
		return enc.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: max(1, min(100, quality))})
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w: image format %d", data.ErrUnsupported, format)
}

// SaveToFile encodes rect of the surface into the file at path.
func (s *Surface) SaveToFile(path string, format ImageFormat, quality int, rect image.Rectangle) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.SaveImage(err, path)
	}

	if err := s.Encode(f, format, quality, rect); err != nil {
		f.Close()
		return errs.SaveImage(err, path)
	}
	if err := f.Close(); err != nil {
		return errs.SaveImage(err, path)
	}
	return nil
}
