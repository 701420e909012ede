package imageio

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/lsbsteg/internal/pixbuf"
)

func createImage(width, height int, alpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			// odd values on purpose so that every LSB plane is populated
			img.SetNRGBA(x, y, color.NRGBA{uint8(x*31 + 1), uint8(y*17 + 3), uint8(x ^ y), alpha})
		}
	}
	return img
}

func TestFormatOf(t *testing.T) {
	test := []struct {
		path string
		exp  Format
		err  error
	}{
		{"out.png", PNG, nil},
		{"OUT.PNG", PNG, nil},
		{"a/b.bmp", BMP, nil},
		{"x.tif", TIFF, nil},
		{"x.tiff", TIFF, nil},
		{"x.jpg", "", ErrLossyFormat},
		{"x.jpeg", "", ErrLossyFormat},
		{"x.webp", "", ErrLossyFormat},
		{"x.txt", "", ErrUnknownFormat},
		{"noext", "", ErrUnknownFormat},
	}
	for _, tt := range test {
		t.Run(tt.path, func(t *testing.T) {
			f, err := FormatOf(tt.path)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exp, f)
		})
	}
}

func createGray(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = uint8(i*13 + 5)
	}
	return img
}

func TestSaveLoadLossless(t *testing.T) {
	test := []struct {
		name     string
		file     string
		src      image.Image
		channels int
	}{
		{"png opaque", "a.png", createImage(13, 7, 255), 3},
		{"png translucent", "b.png", createImage(13, 7, 128), 3},
		{"bmp opaque", "c.bmp", createImage(13, 7, 255), 3},
		{"tiff opaque", "d.tiff", createImage(13, 7, 255), 3},
		{"tiff translucent", "e.tif", createImage(13, 7, 77), 3},
		{"png gray", "f.png", createGray(13, 7), 1},
		{"bmp gray", "g.bmp", createGray(13, 7), 1},
		{"tiff gray", "h.tiff", createGray(13, 7), 1},
	}
	dir := t.TempDir()
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, Save(path, tt.src))

			img, _, err := Load(path)
			require.NoError(t, err)
			got := pixbuf.FromImage(img)
			assert.Equal(t, tt.channels, got.Channels)
			assert.True(t, pixbuf.FromImage(tt.src).Equal(got))
		})
	}
}

func TestVerify(t *testing.T) {
	src := createImage(6, 4, 255)
	var enc bytes.Buffer
	require.NoError(t, Encode(&enc, src, PNG))
	assert.NoError(t, Verify(src, enc.Bytes()))

	changed := createImage(6, 4, 255)
	changed.Pix[0] ^= 1
	assert.ErrorIs(t, Verify(changed, enc.Bytes()), ErrNotPreserved)

	var gray bytes.Buffer
	require.NoError(t, Encode(&gray, createGray(6, 4), PNG))
	err := Verify(src, gray.Bytes())
	assert.ErrorIs(t, err, ErrNotPreserved)
	assert.Contains(t, err.Error(), "4x6x3")

	assert.Error(t, Verify(src, []byte("not an image")))
}

func TestSaveCompression(t *testing.T) {
	src := createImage(32, 32, 255)
	var raw, compressed bytes.Buffer
	require.NoError(t, Encode(&raw, src, PNG))
	require.NoError(t, Encode(&compressed, src, PNG, WithCompression(-3)))
	assert.Greater(t, raw.Len(), 0)

	a, _, err := Decode(&raw)
	require.NoError(t, err)
	b, _, err := Decode(&compressed)
	require.NoError(t, err)
	assert.True(t, pixbuf.FromImage(a).Equal(pixbuf.FromImage(b)))
}

func TestSaveRejectsLossy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")
	err := Save(path, createImage(2, 2, 255))
	assert.ErrorIs(t, err, ErrLossyFormat)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetch(t *testing.T) {
	var body bytes.Buffer
	require.NoError(t, Encode(&body, createImage(8, 8, 255), PNG))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/carrier.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body.Bytes())
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), 0)
	img, err := f.Fetch(context.Background(), srv.URL+"/carrier.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)

	assert.True(t, IsURL(srv.URL))
	assert.False(t, IsURL("carrier.png"))
}
