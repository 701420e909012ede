package pixbuf

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {
	b := New(2, 3, 4)
	require.Len(t, b.Pix, 24)

	b.Set(1, 2, 3, 200)
	assert.Equal(t, uint8(200), b.At(1, 2, 3))
	assert.Equal(t, uint8(200), b.Pix[23])

	c := b.Clone()
	assert.True(t, b.Equal(c))
	c.Set(0, 0, 0, 1)
	assert.False(t, b.Equal(c))
	assert.Equal(t, uint8(0), b.At(0, 0, 0))

	assert.False(t, b.Equal(New(3, 2, 4)))
	assert.Nil(t, New(0, 10, 3).Pix)
}

func TestFromImage(t *testing.T) {
	t.Run("opaque rgba", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		img.Set(1, 0, color.RGBA{10, 20, 30, 255})
		for _, p := range [][2]int{{0, 0}, {0, 1}, {1, 1}} {
			img.Set(p[0], p[1], color.RGBA{0, 0, 0, 255})
		}
		b := FromImage(img)
		require.Equal(t, 3, b.Channels)
		assert.Equal(t, 2, b.Height)
		assert.Equal(t, 2, b.Width)
		assert.Equal(t, []uint8{10, 20, 30}, []uint8{b.At(0, 1, 0), b.At(0, 1, 1), b.At(0, 1, 2)})
	})

	t.Run("translucent", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		img.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 128})
		b := FromImage(img)
		require.Equal(t, 3, b.Channels)
		assert.Equal(t, []uint8{1, 2, 3}, b.Pix)
	})

	t.Run("gray palette", func(t *testing.T) {
		palette := make(color.Palette, 256)
		for i := range palette {
			palette[i] = color.RGBA{uint8(i), uint8(i), uint8(i), 0xff}
		}
		img := image.NewPaletted(image.Rect(0, 0, 3, 1), palette)
		img.Pix = []uint8{0, 128, 255}
		b := FromImage(img)
		require.Equal(t, 1, b.Channels)
		assert.Equal(t, []uint8{0, 128, 255}, b.Pix)
	})

	t.Run("color palette", func(t *testing.T) {
		img := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.RGBA{200, 10, 10, 0xff}})
		b := FromImage(img)
		require.Equal(t, 3, b.Channels)
		assert.Equal(t, []uint8{200, 10, 10}, b.Pix)
	})

	t.Run("gray", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 3, 1))
		img.SetGray(2, 0, color.Gray{77})
		b := FromImage(img)
		require.Equal(t, 1, b.Channels)
		assert.Equal(t, []uint8{0, 0, 77}, b.Pix)
	})

	t.Run("offset bounds", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(5, 5, 7, 6))
		img.SetNRGBA(6, 5, color.NRGBA{9, 9, 9, 255})
		img.SetNRGBA(5, 5, color.NRGBA{1, 1, 1, 255})
		b := FromImage(img)
		require.Equal(t, 3, b.Channels)
		assert.Equal(t, 1, b.Height)
		assert.Equal(t, 2, b.Width)
		assert.Equal(t, uint8(1), b.At(0, 0, 0))
		assert.Equal(t, uint8(9), b.At(0, 1, 0))
	})
}

func TestImage(t *testing.T) {
	test := []struct {
		name     string
		channels int
		model    color.Model
	}{
		{"gray", 1, color.GrayModel},
		{"rgb", 3, color.NRGBAModel},
		{"rgba", 4, color.NRGBAModel},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			b := New(4, 5, tt.channels)
			for i := range b.Pix {
				b.Pix[i] = uint8(i * 7)
			}
			img, err := b.Image()
			require.NoError(t, err)
			assert.Equal(t, tt.model, img.ColorModel())

			back := FromImage(img)
			require.Equal(t, min(tt.channels, 3), back.Channels)
			for i := range b.Height * b.Width {
				for ch := range back.Channels {
					assert.Equal(t, b.Pix[i*b.Channels+ch], back.Pix[i*back.Channels+ch])
				}
			}
			if tt.channels == 4 {
				assert.Equal(t, b.At(0, 1, 3), img.(*image.NRGBA).NRGBAAt(1, 0).A)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, err := New(1, 1, 2).Image()
		assert.ErrorIs(t, err, ErrUnsupportedChannels)
	})
}

func TestImageWithAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 4, 5))
	for y := 3; y < 5; y++ {
		for x := 2; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{10, 20, 30, 255})
		}
	}
	src.SetNRGBA(3, 4, color.NRGBA{10, 20, 30, 254})

	b := FromImage(src)
	require.Equal(t, 3, b.Channels)
	b.Set(1, 1, 0, 11)

	img, err := b.ImageWithAlpha(src)
	require.NoError(t, err)
	out := img.(*image.NRGBA)
	assert.Equal(t, color.NRGBA{11, 20, 30, 254}, out.NRGBAAt(1, 1))
	assert.Equal(t, uint8(255), out.NRGBAAt(0, 0).A)
	assert.Equal(t, b.Shape(), ShapeOf(img))

	_, err = b.ImageWithAlpha(image.NewNRGBA(image.Rect(0, 0, 3, 2)))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestValidate(t *testing.T) {
	test := []struct {
		name string
		buf  *Buffer
		ok   bool
	}{
		{"new", New(2, 3, 3), true},
		{"empty", New(0, 0, 0), true},
		{"nil", nil, false},
		{"short pix", &Buffer{Height: 2, Width: 2, Channels: 3, Pix: make([]uint8, 11)}, false},
		{"long pix", &Buffer{Height: 1, Width: 1, Channels: 1, Pix: make([]uint8, 2)}, false},
		{"no pix", &Buffer{Height: 4, Width: 4, Channels: 3}, false},
		{"negative", &Buffer{Height: -1, Width: 4, Channels: 3}, false},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.buf.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidBuffer)
		})
	}
}
