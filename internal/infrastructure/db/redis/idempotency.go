package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swahilipot/room-booking/internal/core/ports"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// reservationTTL bounds how long a crashed admission can hold a key.
	reservationTTL = time.Minute
)

// IdempotencyStore maps client-supplied Idempotency-Key values to the
// booking they produced.
// Key format: idem:book:<userID>:<key>
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl falls back to 24h.
func NewIdempotencyStore(client redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

type idempotencyValue struct {
	Fingerprint string `json:"fp"`
	BookingID   int64  `json:"id"`
}

// Reserve uses SET NX GET (Redis 7+) so claiming and reading the current
// holder is a single atomic command.
func (s *IdempotencyStore) Reserve(ctx context.Context, userID int64, key, fingerprint string) (ports.IdempotencyRecord, bool, error) {
	val, err := encodeRecord(ports.IdempotencyRecord{Fingerprint: fingerprint})
	if err != nil {
		return ports.IdempotencyRecord{}, false, err
	}
	prev, err := s.client.SetArgs(ctx, idempotencyKey(userID, key), val, redis.SetArgs{
		Mode: "NX",
		TTL:  reservationTTL,
		Get:  true,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return ports.IdempotencyRecord{Fingerprint: fingerprint}, true, nil
	}
	if err != nil {
		return ports.IdempotencyRecord{}, false, fmt.Errorf("idempotency reserve: %w", err)
	}
	rec, err := decodeRecord(prev)
	if err != nil {
		return ports.IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, userID int64, key string, rec ports.IdempotencyRecord) error {
	val, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, idempotencyKey(userID, key), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, userID int64, key string) error {
	if err := s.client.Del(ctx, idempotencyKey(userID, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func encodeRecord(rec ports.IdempotencyRecord) (string, error) {
	b, err := json.Marshal(idempotencyValue{Fingerprint: rec.Fingerprint, BookingID: rec.BookingID})
	if err != nil {
		return "", fmt.Errorf("idempotency encode: %w", err)
	}
	return string(b), nil
}

func decodeRecord(raw string) (ports.IdempotencyRecord, error) {
	var v idempotencyValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return ports.IdempotencyRecord{}, fmt.Errorf("idempotency lookup: malformed value %q", raw)
	}
	return ports.IdempotencyRecord{Fingerprint: v.Fingerprint, BookingID: v.BookingID}, nil
}

func idempotencyKey(userID int64, key string) string {
	return "idem:book:" + strconv.FormatInt(userID, 10) + ":" + key
}
