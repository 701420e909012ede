// Package lsbsteg hides a text message in the least-significant bits of an
// image's channel values and recovers it.
//
// Cells are visited one channel plane at a time, row-major inside a plane.
// Each message byte is written MSB-first, one bit per cell, and the cell
// after the last message bit gets its LSB forced to 1. Extraction reads 8-bit
// groups until one has its high bit set, which is why message bytes are
// limited to 0x00-0x7f. Use WithPayload to carry arbitrary bytes.
//
// Alpha never carries message bits; EmbedImage copies it to the output as it
// is. The carrier must be stored losslessly; any recompression breaks
// extraction.
package lsbsteg

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/yyyoichi/lsbsteg/internal/lsb"
	"github.com/yyyoichi/lsbsteg/internal/pixbuf"
	"github.com/yyyoichi/lsbsteg/payload"
)

var (
	ErrEmptyMessage         = lsb.ErrEmptyMessage
	ErrCapacityExceeded     = lsb.ErrCapacityExceeded
	ErrUnsupportedCharacter = lsb.ErrUnsupportedCharacter
	ErrNoTerminatorFound    = lsb.ErrNoTerminatorFound
	ErrUnsupportedChannels  = pixbuf.ErrUnsupportedChannels
	ErrInvalidBuffer        = pixbuf.ErrInvalidBuffer
	ErrUnsupportedImage     = errors.New("image cannot carry a message")
)

// PixelBuffer is a mutable [row][column][channel] array of 8-bit values.
type PixelBuffer = pixbuf.Buffer

// NewPixelBuffer returns a zeroed buffer.
func NewPixelBuffer(height, width, channels int) *PixelBuffer {
	return pixbuf.New(height, width, channels)
}

// FromImage copies src into a new PixelBuffer.
// Gray images have one channel and all others three (RGB).
func FromImage(src image.Image) *PixelBuffer {
	return pixbuf.FromImage(src)
}

// Embed writes message into buf in place and returns buf.
// On error buf is unchanged.
func Embed(message string, buf *PixelBuffer) (*PixelBuffer, error) {
	if err := lsb.Embed(buf, message); err != nil {
		return nil, err
	}
	return buf, nil
}

// Extract reads the message embedded in buf.
func Extract(buf *PixelBuffer) (string, error) {
	return lsb.Extract(buf)
}

// Capacity returns the longest message, in bytes, Embed accepts for buf.
// It is 0 for an invalid buffer.
func Capacity(buf *PixelBuffer) int {
	if buf.Validate() != nil {
		return 0
	}
	return lsb.Capacity(buf.Shape())
}

// EmbedImage embeds message into a copy of src with the specified options.
// This is a convenience function that creates a Stego instance and calls its EmbedImage method.
func EmbedImage(ctx context.Context, src image.Image, message []byte, opts ...Option) (image.Image, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.EmbedImage(ctx, src, message)
}

// ExtractImage extracts a message from src with the specified options.
// This is a convenience function that creates a Stego instance and calls its ExtractImage method.
func ExtractImage(ctx context.Context, src image.Image, opts ...Option) ([]byte, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.ExtractImage(ctx, src)
}

type Stego struct {
	enveloped   bool
	payloadOpts []payload.Option
}

// New initializes an embedder/extractor. Without options, messages are
// embedded as they are and must be 7-bit ASCII.
func New(opts ...Option) (*Stego, error) {
	s := new(Stego)
	if err := s.init(opts...); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stego) init(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return err
		}
	}
	return nil
}

// EmbedImage returns a new image holding message. src is not modified.
//
// Process:
//  1. Converts the message to codec input (the payload envelope when enabled).
//  2. Copies src into a PixelBuffer.
//  3. Writes the message and terminator into the channel LSBs.
//  4. Builds the output image, keeping the alpha of src.
func (s *Stego) EmbedImage(ctx context.Context, src image.Image, message []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msg, err := s.encode(message)
	if err != nil {
		return nil, err
	}
	buf := pixbuf.FromImage(src)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := Embed(msg, buf); err != nil {
		return nil, err
	}
	dist, err := buf.ImageWithAlpha(src)
	if err != nil {
		return nil, fmt.Errorf("%w:%w", ErrUnsupportedImage, err)
	}
	return dist, nil
}

// ExtractImage returns the message held by src.
func (s *Stego) ExtractImage(ctx context.Context, src image.Image) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := pixbuf.FromImage(src)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msg, err := Extract(buf)
	if err != nil {
		return nil, err
	}
	return s.decode(msg)
}

// Capacity returns how many message bytes src can carry with the current options.
func (s *Stego) Capacity(src image.Image) int {
	n := lsb.Capacity(pixbuf.ShapeOf(src))
	if !s.enveloped {
		return n
	}
	return payload.Capacity(n, s.payloadOpts...)
}

func (s *Stego) encode(message []byte) (string, error) {
	if !s.enveloped {
		return string(message), nil
	}
	return payload.Encode(message, s.payloadOpts...)
}

func (s *Stego) decode(msg string) ([]byte, error) {
	if !s.enveloped {
		return []byte(msg), nil
	}
	return payload.Decode(msg, s.payloadOpts...)
}
