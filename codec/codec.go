// Package codec translates entity values to and from the byte payloads kept
// in the backing store. The cache client shares one codec instance across
// goroutines, so implementations must be stateless or internally synchronized.
package codec

// Codec serializes V for storage and deserializes it on read. Decode is the
// security boundary for bytes coming back from shared infrastructure; wrap
// any codec with Limit to cap how much it will accept.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
