package payload

import (
	"fmt"
	"math/rand"

	"github.com/yyyoichi/golay"
	"github.com/yyyoichi/lsbsteg/internal/bitconv"
)

// shuffle is a seeded permutation of n code bits: stored bit i is code
// bit s[i]. A run of damaged cells is spread over many code words.
type shuffle []int

func newShuffle(seed int64, n int) shuffle {
	return rand.New(rand.NewSource(seed)).Perm(n)
}

// scatter returns code in stored order.
func (s shuffle) scatter(code []bool) []bool {
	stored := make([]bool, len(s))
	for i, from := range s {
		stored[i] = code[from]
	}
	return stored
}

// gather is the inverse of scatter.
func (s shuffle) gather(stored []bool) []bool {
	code := make([]bool, len(s))
	for i, to := range s {
		code[to] = stored[i]
	}
	return code
}

var _ factory = shuffledgolay(0)

type shuffledgolay int64

func (sg shuffledgolay) encode(data []bool) ([]bool, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var encoded []uint64
	enc := golay.NewEncoder(&encoded)
	if err := enc.Encode(bitconv.ToWords(data), len(data)); err != nil {
		return nil, fmt.Errorf("golay encode: %w", err)
	}
	code, err := bitconv.FromWords(encoded, enc.Bits())
	if err != nil {
		return nil, fmt.Errorf("golay encode: %w", err)
	}
	return newShuffle(int64(sg), len(code)).scatter(code), nil
}

func (sg shuffledgolay) decode(body []bool, size int) ([]bool, error) {
	if size == 0 {
		return nil, nil
	}
	code := newShuffle(int64(sg), len(body)).gather(body)
	var decoded []uint64
	if err := golay.NewDecoder(bitconv.ToWords(code), len(code)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("golay decode: %w", err)
	}
	return bitconv.FromWords(decoded, size)
}

func (shuffledgolay) encodedLen(size int) int {
	if size == 0 {
		return 0
	}
	return golay.EncodedBits(size)
}

var _ factory = withoutecc{}

type withoutecc struct{}

func (withoutecc) encode(data []bool) ([]bool, error) {
	return data, nil
}

func (withoutecc) decode(body []bool, size int) ([]bool, error) {
	return body[:size], nil
}

func (withoutecc) encodedLen(size int) int {
	return size
}
