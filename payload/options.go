package payload

var (
	DefaultShuffleSeed int64 = 1234567890
)

type (
	// Option selects how the payload body is protected.
	Option func(*codec)
	codec  struct {
		f factory
	}
	// factory turns data bits into body bits and back.
	factory interface {
		encode(data []bool) ([]bool, error)
		// decode recovers size data bits from exactly encodedLen(size) body bits.
		decode(body []bool, size int) ([]bool, error)
		encodedLen(size int) int
	}
)

func newCodec(opts ...Option) codec {
	var c codec
	for _, opt := range opts {
		opt(&c)
	}
	if c.f == nil {
		c.f = withoutecc{}
	}
	return c
}

// WithoutECC stores the body bits as they are. This is the default.
func WithoutECC() Option {
	return func(c *codec) {
		c.f = withoutecc{}
	}
}

// WithGolay protects the body with the extended Golay code. The code word
// stream is permuted with a shuffle seeded by seed, so a run of flipped
// cells is spread over many code words. Decode must use the same seed.
func WithGolay(seed int64) Option {
	return func(c *codec) {
		c.f = shuffledgolay(seed)
	}
}
