package codec

import "github.com/fxamacker/cbor/v2"

// CBOR serializes values with fxamacker/cbor/v2. Construct with NewCBOR;
// the zero value carries no encode/decode modes and will panic on use.
//
// deterministic selects RFC 8949 core deterministic encoding, for callers
// that need byte-stable payloads (content hashing, dedup). The default is
// the library's preferred unsorted option set, smaller and faster.
// Timestamps are encoded as RFC3339Nano in both modes.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

func NewCBOR[V any](deterministic bool) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR panics on a bad mode configuration. For package-level variables
// in tests and examples; construct with NewCBOR in production paths.
func MustCBOR[V any](deterministic bool) CBOR[V] {
	c, err := NewCBOR[V](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
