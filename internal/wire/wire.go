// Package wire encodes the logical-expiration envelope stored for
// GetWithLogicalExpire entries: the codec payload plus the timestamp after
// which the entry is considered stale. Envelopes carry no physical TTL in
// the store; staleness is judged entirely from ExpireAt.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version      byte = 1
	kindEnvelope byte = 1
)

var (
	ErrCorrupt = errors.New("wire: corrupt envelope")
	magic4     = [...]byte{'D', 'L', 'C', 'R'}
)

type Envelope struct {
	ExpireAt time.Time
	Payload  []byte
}

func (e Envelope) Expired(now time.Time) bool {
	return now.After(e.ExpireAt)
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode: magic(4) | ver(1) | kind(1) | expireAt unix-nanos(u64 be) | vlen(u32 be) | payload(vlen)
func Encode(e Envelope) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 8 + 4 + len(e.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEnvelope)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(e.ExpireAt.UnixNano()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])

	buf.Write(e.Payload)
	return buf.Bytes()
}

func Decode(b []byte) (Envelope, error) {
	const hdr = 4 + 1 + 1 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindEnvelope {
		return Envelope{}, ErrCorrupt
	}

	off := 6

	nanos := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen > len(b)-off { // overflow-safe bound check
		return Envelope{}, ErrCorrupt
	}

	return Envelope{
		ExpireAt: time.Unix(0, nanos),
		Payload:  b[off : off+vlen],
	}, nil
}
