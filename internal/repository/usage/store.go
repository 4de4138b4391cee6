package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/postforge/postforge/internal/db"
)

// store is the consumer interface for usage counter operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store keeps per-user daily unit counters on top of DB (INCRBY + GET with TTL).
type Store struct {
	store     store
	keyPrefix string
	ttl       time.Duration
}

// New creates a usage counter store.
// ttl is the retention of a daily key past its first write (recommended: 48h).
func New(s store, keyPrefix string, ttl time.Duration) *Store {
	return &Store{
		store:     s,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// IncrUnits atomically increments the user's counter for the period and
// returns the new total. A negative delta reverses a prior increment.
func (s *Store) IncrUnits(ctx context.Context, userID, periodKey string, delta int64) (int64, error) {
	key := s.key(userID, periodKey)

	total, err := s.store.IncrBy(ctx, key, delta)
	if err != nil {
		return 0, fmt.Errorf("usage INCRBY %s: %w", key, err)
	}

	// Set TTL only if the key has no expiry yet (NX, not reset on repeat).
	if err := s.store.Expire(ctx, key, s.ttl, true); err != nil {
		return 0, fmt.Errorf("usage EXPIRE %s: %w", key, err)
	}

	return total, nil
}

// GetUnits returns the user's consumed units for the period.
// Returns 0 if the key does not exist.
func (s *Store) GetUnits(ctx context.Context, userID, periodKey string) (int64, error) {
	key := s.key(userID, periodKey)

	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("usage GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usage GET %s parse: %w", key, err)
	}
	return val, nil
}

// key builds the counter key: {prefix}usage:{userID}:{periodKey}.
func (s *Store) key(userID, periodKey string) string {
	return s.keyPrefix + "usage:" + userID + ":" + periodKey
}
