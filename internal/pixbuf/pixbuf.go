package pixbuf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/yyyoichi/lsbsteg/internal/traversal"
)

var (
	ErrUnsupportedChannels = errors.New("unsupported channel count")
	ErrInvalidBuffer       = errors.New("invalid pixel buffer")
	ErrSizeMismatch        = errors.New("image size does not match buffer")
)

// Buffer is a mutable [row][column][channel] array of 8-bit values stored
// row-major in Pix.
type Buffer struct {
	Height, Width, Channels int
	Pix                     []uint8
}

func New(height, width, channels int) *Buffer {
	b := &Buffer{Height: height, Width: width, Channels: channels}
	if n := b.Shape().Len(); n > 0 {
		b.Pix = make([]uint8, n)
	}
	return b
}

func (b *Buffer) Shape() traversal.Shape {
	return traversal.Shape{Height: b.Height, Width: b.Width, Channels: b.Channels}
}

// Validate reports whether b is usable: non-nil, no negative dimension and
// exactly Height*Width*Channels values in Pix.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil", ErrInvalidBuffer)
	}
	if b.Height < 0 || b.Width < 0 || b.Channels < 0 {
		return fmt.Errorf("%w: negative shape %s", ErrInvalidBuffer, b.Shape())
	}
	if n := b.Shape().Len(); len(b.Pix) != n {
		return fmt.Errorf("%w: shape %s needs %d values, have %d", ErrInvalidBuffer, b.Shape(), n, len(b.Pix))
	}
	return nil
}

func (b *Buffer) offset(row, col, ch int) int {
	return (row*b.Width+col)*b.Channels + ch
}

func (b *Buffer) At(row, col, ch int) uint8 {
	return b.Pix[b.offset(row, col, ch)]
}

func (b *Buffer) Set(row, col, ch int, v uint8) {
	b.Pix[b.offset(row, col, ch)] = v
}

func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Pix = bytes.Clone(b.Pix)
	return &c
}

func (b *Buffer) Equal(o *Buffer) bool {
	return b.Shape() == o.Shape() && bytes.Equal(b.Pix, o.Pix)
}

type opaquer interface {
	Opaque() bool
}

// ShapeOf returns the shape FromImage gives src without copying it.
func ShapeOf(src image.Image) traversal.Shape {
	bounds := src.Bounds()
	return traversal.Shape{Height: bounds.Dy(), Width: bounds.Dx(), Channels: channelsOf(src)}
}

// Gray images give one channel and everything else three. Alpha never
// becomes a channel: it can turn opaque when a cell changes, and the count
// must not depend on pixel values.
func channelsOf(src image.Image) int {
	if isGray(src) {
		return 1
	}
	return 3
}

func isGray(src image.Image) bool {
	if p, ok := src.(*image.Paletted); ok {
		return grayPalette(p.Palette)
	}
	switch src.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return true
	}
	return false
}

// grayPalette reports whether every entry is an opaque gray. 8-bit gray
// BMP files decode to such a palette.
func grayPalette(p color.Palette) bool {
	if len(p) == 0 {
		return false
	}
	for _, c := range p {
		r, g, b, a := c.RGBA()
		if r != g || g != b || a != 0xffff {
			return false
		}
	}
	return true
}

// FromImage copies src into a new buffer shaped by ShapeOf.
func FromImage(src image.Image) *Buffer {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	channels := channelsOf(src)
	b := New(height, width, channels)

	if channels == 1 {
		for y := range height {
			for x := range width {
				g := color.GrayModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				b.Set(y, x, 0, g.Y)
			}
		}
		return b
	}
	for y := range height {
		for x := range width {
			c := color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := b.offset(y, x, 0)
			b.Pix[i], b.Pix[i+1], b.Pix[i+2] = c.R, c.G, c.B
		}
	}
	return b
}

// Image builds an image at the origin holding the buffer's values.
// Three channel buffers give opaque images.
func (b *Buffer) Image() (image.Image, error) {
	return b.ImageWithAlpha(nil)
}

// ImageWithAlpha is Image for a buffer copied from src: a three channel
// buffer takes the alpha of each pixel from src. src must have the size of
// the buffer; nil means opaque.
func (b *Buffer) ImageWithAlpha(src image.Image) (image.Image, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, b.Width, b.Height)
	if src != nil && src.Bounds().Size() != rect.Size() {
		return nil, fmt.Errorf("%w: source %v, buffer %v", ErrSizeMismatch, src.Bounds().Size(), rect.Size())
	}
	if o, ok := src.(opaquer); ok && o.Opaque() {
		src = nil
	}
	var origin image.Point
	if src != nil {
		origin = src.Bounds().Min
	}

	switch b.Channels {
	case 1:
		dist := image.NewGray(rect)
		for y := range b.Height {
			copy(dist.Pix[y*dist.Stride:y*dist.Stride+b.Width], b.Pix[y*b.Width:(y+1)*b.Width])
		}
		return dist, nil
	case 3, 4:
		dist := image.NewNRGBA(rect)
		for y := range b.Height {
			for x := range b.Width {
				i := b.offset(y, x, 0)
				j := dist.PixOffset(x, y)
				dist.Pix[j], dist.Pix[j+1], dist.Pix[j+2] = b.Pix[i], b.Pix[i+1], b.Pix[i+2]
				switch {
				case b.Channels == 4:
					dist.Pix[j+3] = b.Pix[i+3]
				case src != nil:
					dist.Pix[j+3] = color.NRGBAModel.Convert(src.At(origin.X+x, origin.Y+y)).(color.NRGBA).A
				default:
					dist.Pix[j+3] = 0xff
				}
			}
		}
		return dist, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, b.Channels)
}
