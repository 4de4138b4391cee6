package usage

import (
	"context"
	"time"

	"github.com/postforge/postforge/internal/db"
)

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	incrFn   func(ctx context.Context, key string, val int64) (int64, error)
	expireFn func(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	if m.incrFn != nil {
		return m.incrFn(ctx, key, val)
	}
	return val, nil
}

func (m *mockKVStore) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl, nx)
	}
	return nil
}
