package guard

import (
	"context"
	"sync"
)

// mockUsageStore implements UsageStore for tests.
type mockUsageStore struct {
	incrFn func(ctx context.Context, userID, periodKey string, delta int64) (int64, error)
	getFn  func(ctx context.Context, userID, periodKey string) (int64, error)

	incrCalls []incrCall
}

type incrCall struct {
	userID    string
	periodKey string
	delta     int64
}

func (m *mockUsageStore) IncrUnits(ctx context.Context, userID, periodKey string, delta int64) (int64, error) {
	m.incrCalls = append(m.incrCalls, incrCall{userID: userID, periodKey: periodKey, delta: delta})
	if m.incrFn != nil {
		return m.incrFn(ctx, userID, periodKey, delta)
	}
	return delta, nil
}

func (m *mockUsageStore) GetUnits(ctx context.Context, userID, periodKey string) (int64, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, periodKey)
	}
	return 0, nil
}

// memUsageStore is a concurrency-safe in-memory counter store. Increments
// serialize on a mutex the way INCRBY serializes in the server.
type memUsageStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newMemUsageStore() *memUsageStore {
	return &memUsageStore{counters: make(map[string]int64)}
}

func (m *memUsageStore) IncrUnits(_ context.Context, userID, periodKey string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + ":" + periodKey
	m.counters[key] += delta
	return m.counters[key], nil
}

func (m *memUsageStore) GetUnits(_ context.Context, userID, periodKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[userID+":"+periodKey], nil
}
