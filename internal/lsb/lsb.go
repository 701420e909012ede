package lsb

import (
	"errors"
	"fmt"
	"iter"

	"github.com/yyyoichi/lsbsteg/internal/bitconv"
	"github.com/yyyoichi/lsbsteg/internal/pixbuf"
	"github.com/yyyoichi/lsbsteg/internal/traversal"
)

var (
	ErrEmptyMessage         = errors.New("message is empty")
	ErrCapacityExceeded     = errors.New("message exceeds carrier capacity")
	ErrUnsupportedCharacter = errors.New("unsupported character")
	ErrNoTerminatorFound    = errors.New("no terminator found")
	ErrInvalidBuffer        = pixbuf.ErrInvalidBuffer
)

const (
	clearMask byte = 0xFE
	// MaxSymbol is the largest byte value that can be embedded. Bytes with the
	// high bit set would be read back as the terminator.
	MaxSymbol byte = 0x7F
	// the decoder needs a whole 8-bit group to see the terminator
	terminatorCells = 8
)

// Order yields the cells of a shape in scan order.
type Order func(traversal.Shape) iter.Seq2[int, traversal.Cell]

// Scan is the canonical Order.
func Scan(s traversal.Shape) iter.Seq2[int, traversal.Cell] {
	return s.Cells()
}

// Codec embeds and extracts messages along an Order.
type Codec struct {
	order Order
}

// New returns a Codec walking cells in order. A nil order means Scan.
func New(order Order) *Codec {
	if order == nil {
		order = Scan
	}
	return &Codec{order: order}
}

var std = New(nil)

func Embed(buf *pixbuf.Buffer, message string) error {
	return std.Embed(buf, message)
}

func Extract(buf *pixbuf.Buffer) (string, error) {
	return std.Extract(buf)
}

// Capacity returns the longest message, in bytes, that fits in s.
func Capacity(s traversal.Shape) int {
	n := s.Len() - terminatorCells
	if n < 0 {
		return 0
	}
	return n / 8
}

// Enable reports whether a message of msgLen bytes fits in s.
func Enable(s traversal.Shape, msgLen int) error {
	if need, total := msgLen*8+terminatorCells, s.Len(); need > total {
		return fmt.Errorf("%w: need %d cells, have %d", ErrCapacityExceeded, need, total)
	}
	return nil
}

// Validate checks that every byte of message can be embedded.
func Validate(message string) error {
	if len(message) == 0 {
		return ErrEmptyMessage
	}
	for i := range len(message) {
		if b := message[i]; b > MaxSymbol {
			return fmt.Errorf("%w: byte 0x%02x at offset %d is outside 0x00-0x7f", ErrUnsupportedCharacter, b, i)
		}
	}
	return nil
}

// Embed writes message into the LSBs of buf followed by the terminator.
// buf is left untouched when an error is returned.
func (c *Codec) Embed(buf *pixbuf.Buffer, message string) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if err := Validate(message); err != nil {
		return err
	}
	shape := buf.Shape()
	if err := Enable(shape, len(message)); err != nil {
		return err
	}

	stream := bitconv.NewReader([]byte(message))
	total := stream.Bits()
	for pos, cell := range c.order(shape) {
		v := buf.At(cell.Row, cell.Column, cell.Channel)
		if pos == total {
			buf.Set(cell.Row, cell.Column, cell.Channel, v|1)
			return nil
		}
		bit := stream.Read8R(1, pos)
		buf.Set(cell.Row, cell.Column, cell.Channel, (v&clearMask)|bit)
	}
	// unreachable after Enable
	return fmt.Errorf("%w: scan ended before the terminator", ErrCapacityExceeded)
}

// Extract reads bytes from the LSBs of buf until an 8-bit group with its
// high bit set.
func (c *Codec) Extract(buf *pixbuf.Buffer) (string, error) {
	if err := buf.Validate(); err != nil {
		return "", err
	}
	var (
		message []byte
		group   byte
		n       int
	)
	for _, cell := range c.order(buf.Shape()) {
		group = group<<1 | buf.At(cell.Row, cell.Column, cell.Channel)&1
		if n++; n < 8 {
			continue
		}
		if group&0x80 != 0 {
			return string(message), nil
		}
		message = append(message, group)
		group, n = 0, 0
	}
	return "", fmt.Errorf("%w: scanned %d cells", ErrNoTerminatorFound, buf.Shape().Len())
}
