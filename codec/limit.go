package codec

import (
	"errors"
	"fmt"
)

// ErrTooLarge reports a payload over the configured decode ceiling.
var ErrTooLarge = errors.New("codec: payload exceeds decode limit")

// Limited wraps another codec and refuses to decode payloads larger than a
// fixed ceiling. The backing store is shared infrastructure; a corrupted or
// hostile entry should fail here, before the inner codec allocates for it.
// Encode passes through untouched.
type Limited[V any] struct {
	inner Codec[V]
	max   int
}

var _ Codec[struct{}] = Limited[struct{}]{}

// Limit caps Decode at maxBytes. A maxBytes <= 0 disables the cap, making
// the wrapper a passthrough.
func Limit[V any](inner Codec[V], maxBytes int) Limited[V] {
	return Limited[V]{inner: inner, max: maxBytes}
}

func (c Limited[V]) Encode(v V) ([]byte, error) { return c.inner.Encode(v) }

func (c Limited[V]) Decode(b []byte) (V, error) {
	if c.max > 0 && len(b) > c.max {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(b), c.max)
	}
	return c.inner.Decode(b)
}
