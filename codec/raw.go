package codec

// Bytes is the identity codec for values that are already byte slices. No
// copy is made; store implementations own their defensive copies (kv.Store
// requires byte-for-byte transparency, not isolation).
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String round-trips Go strings through their raw bytes. No encoding
// validation is performed.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
