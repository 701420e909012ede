// Package payload wraps arbitrary bytes in an envelope made only of 7-bit
// symbols, so binary or UTF-8 data can travel through the LSB codec whose
// messages are limited to 0x00-0x7f.
//
// The envelope is a bit stream packed 7 bits per symbol:
//
//	[32-bit big-endian byte length][body]
//
// The body is the data bits, optionally Golay-encoded (see WithGolay).
package payload

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/yyyoichi/lsbsteg/internal/bitconv"
)

const (
	headerBits = 32
	// MaxLen is the largest payload, in bytes.
	MaxLen = 1 << 28
)

var (
	ErrTruncated     = errors.New("payload is truncated")
	ErrInvalidSymbol = errors.New("invalid payload symbol")
	ErrTooLarge      = errors.New("payload is too large")
)

// Encode returns the envelope for data as a string of symbols 0x00-0x7f.
func Encode(data []byte, opts ...Option) (string, error) {
	if len(data) > MaxLen {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	c := newCodec(opts...)
	body, err := c.f.encode(bitconv.BytesToBools(data))
	if err != nil {
		return "", err
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))
	bits := append(bitconv.BytesToBools(header[:]), body...)
	return string(bitconv.Pack7(bits)), nil
}

// Decode reverses Encode. Symbols after the body are ignored.
func Decode(msg string, opts ...Option) ([]byte, error) {
	for i := range len(msg) {
		if msg[i] > 0x7f {
			return nil, fmt.Errorf("%w: 0x%02x at offset %d", ErrInvalidSymbol, msg[i], i)
		}
	}
	bits := bitconv.Unpack7([]byte(msg))
	if len(bits) < headerBits {
		return nil, fmt.Errorf("%w: %d header bits", ErrTruncated, len(bits))
	}
	length := binary.BigEndian.Uint32(bitconv.BoolsToBytes(bits[:headerBits]))
	if length > MaxLen {
		return nil, fmt.Errorf("%w: header claims %d bytes", ErrTooLarge, length)
	}
	if length == 0 {
		return []byte{}, nil
	}

	c := newCodec(opts...)
	size := int(length) * 8
	n := c.f.encodedLen(size)
	if rest := len(bits) - headerBits; rest < n {
		return nil, fmt.Errorf("%w: body has %d of %d bits", ErrTruncated, rest, n)
	}
	out, err := c.f.decode(bits[headerBits:headerBits+n], size)
	if err != nil {
		return nil, err
	}
	return bitconv.BoolsToBytes(out), nil
}

// Len returns the number of symbols Encode produces for n data bytes.
func Len(n int, opts ...Option) int {
	c := newCodec(opts...)
	bits := headerBits + c.f.encodedLen(n*8)
	return (bits + bitconv.SymbolBits - 1) / bitconv.SymbolBits
}

// Capacity returns the largest data length whose envelope fits in symbols.
func Capacity(symbols int, opts ...Option) int {
	lo, hi := 0, symbols*bitconv.SymbolBits/8
	if hi > MaxLen {
		hi = MaxLen
	}
	if Len(0, opts...) > symbols {
		return 0
	}
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if Len(mid, opts...) <= symbols {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
