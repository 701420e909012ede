package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/yyyoichi/lsbsteg/internal/pixbuf"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrLossyFormat   = errors.New("format is lossy and would destroy the embedded bits")
	ErrUnknownFormat = errors.New("unknown image format")
	ErrNotPreserved  = errors.New("format does not preserve the carrier values")
)

// Format is a lossless output encoding.
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

type saveConfig struct {
	compression png.CompressionLevel
}

type SaveOption func(*saveConfig)

// WithCompression sets the PNG compression level. The default is
// png.NoCompression.
func WithCompression(level png.CompressionLevel) SaveOption {
	return func(c *saveConfig) {
		c.compression = level
	}
}

// FormatOf returns the output format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".jpg", ".jpeg", ".webp", ".gif":
		return "", fmt.Errorf("%w: %s", ErrLossyFormat, ext)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Decode reads any registered format: png, jpeg, gif, bmp, tiff and webp.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

func Load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format, opts ...SaveOption) error {
	cfg := saveConfig{compression: png.NoCompression}
	for _, opt := range opts {
		opt(&cfg)
	}
	switch f {
	case PNG:
		enc := png.Encoder{CompressionLevel: cfg.compression}
		return enc.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Save encodes img into path using the format implied by its extension.
// The encoded file is decoded again and must give back the same carrier
// buffer, shape included. Nothing is written when the format is rejected,
// encoding fails or the check fails.
func Save(path string, img image.Image, opts ...SaveOption) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, f, opts...); err != nil {
		return fmt.Errorf("failed to encode %s: %w", f, err)
	}
	if err := Verify(img, buf.Bytes()); err != nil {
		return fmt.Errorf("%s: %w", f, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Verify decodes encoded and checks it holds the carrier values of img.
func Verify(img image.Image, encoded []byte) error {
	got, _, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	want, have := pixbuf.FromImage(img), pixbuf.FromImage(got)
	if want.Shape() != have.Shape() {
		return fmt.Errorf("%w: shape %s reloads as %s", ErrNotPreserved, want.Shape(), have.Shape())
	}
	if !want.Equal(have) {
		return fmt.Errorf("%w: values changed", ErrNotPreserved)
	}
	return nil
}
