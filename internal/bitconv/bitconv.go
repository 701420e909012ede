package bitconv

import (
	"fmt"

	"github.com/yyyoichi/bitstream-go"
)

// SymbolBits is the width of a symbol that keeps the high bit of a byte clear.
const SymbolBits = 7

func BytesToBools(b []byte) []bool {
	bits := make([]bool, 0, len(b)*8)
	for _, bb := range b {
		for i := 7; i >= 0; i-- {
			bits = append(bits, ((bb>>uint(i))&1) == 1)
		}
	}
	return bits
}

func BoolsToBytes(bits []bool) []byte {
	return pack(bits, 8)
}

// NewReader returns an MSB-first bit reader over data. Reader.Bits() is 8*len(data).
func NewReader(data []byte) *bitstream.BitReader[uint64] {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range data {
		w.Write8(0, 8, v)
	}
	r := bitstream.NewBitReader(w.Data(), 0, 0)
	r.SetBits(w.Bits())
	return r
}

// Pack7 splits bits into 7-bit symbols, MSB first. The last symbol is
// padded with zero bits.
func Pack7(bits []bool) []byte {
	return pack(bits, SymbolBits)
}

// Unpack7 is the inverse of Pack7. Only the low 7 bits of each symbol are read.
func Unpack7(symbols []byte) []bool {
	bits := make([]bool, 0, len(symbols)*SymbolBits)
	for _, s := range symbols {
		for i := SymbolBits - 1; i >= 0; i-- {
			bits = append(bits, ((s>>uint(i))&1) == 1)
		}
	}
	return bits
}

func pack(bits []bool, width int) []byte {
	n := (len(bits) + width - 1) / width
	out := make([]byte, n)
	for i, bit := range bits {
		if bit {
			out[i/width] |= 1 << uint(width-1-i%width)
		}
	}
	return out
}

// ToWords packs bits MSB-first into the 64-bit words used by bitstream
// readers and the Golay coder.
func ToWords(bits []bool) []uint64 {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, bit := range bits {
		w.WriteBool(bit)
	}
	return w.Data()
}

// FromWords reads the first n bits of words.
func FromWords(words []uint64, n int) ([]bool, error) {
	r := bitstream.NewBitReader(words, 0, 0)
	bits := make([]bool, n)
	for i := range bits {
		bit, err := r.ReadBitAt(i)
		if err != nil {
			return nil, fmt.Errorf("bit %d of %d: %w", i, n, err)
		}
		bits[i] = bit
	}
	return bits, nil
}
