package redis

import (
	"testing"
	"time"

	"github.com/swahilipot/room-booking/internal/core/ports"
)

func TestIdempotencyKey_ScopedToUser(t *testing.T) {
	if got := idempotencyKey(10, "abc-123"); got != "idem:book:10:abc-123" {
		t.Fatalf("unexpected key: %s", got)
	}
	if idempotencyKey(10, "shared") == idempotencyKey(11, "shared") {
		t.Fatalf("different users must not share a key")
	}
}

func TestNewIdempotencyStore_DefaultTTL(t *testing.T) {
	if s := NewIdempotencyStore(nil, 0); s.ttl != 24*time.Hour {
		t.Fatalf("expected 24h default, got %s", s.ttl)
	}
	if s := NewIdempotencyStore(nil, time.Minute); s.ttl != time.Minute {
		t.Fatalf("expected explicit ttl, got %s", s.ttl)
	}
}

func TestIdempotencyRecord_Encoding(t *testing.T) {
	in := ports.IdempotencyRecord{Fingerprint: "room=1;date=2024-01-10;window=09:00:00-10:00:00", BookingID: 42}
	raw, err := encodeRecord(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeRecord(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}

	if _, err := decodeRecord("17"); err == nil {
		t.Fatalf("legacy bare ids must be rejected as malformed")
	}
}
