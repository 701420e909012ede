package lsbsteg

import "github.com/yyyoichi/lsbsteg/payload"

type Option func(*Stego) error

// WithPayload wraps messages in the payload envelope before embedding, so
// any bytes (UTF-8 text, binary data) can be carried. The same options must
// be given when extracting.
//
// Without payload options the body is stored without error correction;
// pass payload.WithGolay to protect it.
func WithPayload(opts ...payload.Option) Option {
	return func(s *Stego) error {
		s.enveloped = true
		s.payloadOpts = opts
		return nil
	}
}
