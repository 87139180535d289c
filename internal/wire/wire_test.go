package wire

import (
	"bytes"
	"testing"
	"time"
)

func TestEnvelopeRoundtrip(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute)
	payload := []byte(`{"id":1,"name":"Ada"}`)

	b := Encode(Envelope{ExpireAt: exp, Payload: payload})
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.ExpireAt.Equal(exp) {
		t.Fatalf("ExpireAt mismatch: got %v want %v", got.ExpireAt, exp)
	}
	if !bytes.Equal(got.Payload, payload) {
		t.Fatalf("Payload mismatch: got %q", got.Payload)
	}
}

func TestEnvelopeEmptyPayload(t *testing.T) {
	b := Encode(Envelope{ExpireAt: time.Now()})
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Payload) != 0 {
		t.Fatalf("expected empty payload, got %q", got.Payload)
	}
}

func TestDecodeRejectsCorrupt(t *testing.T) {
	good := Encode(Envelope{ExpireAt: time.Now(), Payload: []byte("x")})

	cases := map[string][]byte{
		"empty":      {},
		"short":      good[:8],
		"bad magic":  append([]byte("XXXX"), good[4:]...),
		"bad kind":   func() []byte { b := bytes.Clone(good); b[5] = 99; return b }(),
		"truncated":  good[:len(good)-1],
		"vlen lies":  func() []byte { b := bytes.Clone(good); b[17] = 0xFF; return b }(),
		"plain json": []byte(`{"id":1}`),
	}
	for name, b := range cases {
		if _, err := Decode(b); err == nil {
			t.Fatalf("%s: expected ErrCorrupt", name)
		}
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	fresh := Envelope{ExpireAt: now.Add(time.Minute)}
	stale := Envelope{ExpireAt: now.Add(-time.Minute)}

	if fresh.Expired(now) {
		t.Fatal("future ExpireAt reported expired")
	}
	if !stale.Expired(now) {
		t.Fatal("past ExpireAt not reported expired")
	}
}
