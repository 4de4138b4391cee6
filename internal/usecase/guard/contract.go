package guard

import "context"

// UsageStore is the persistence contract for per-user daily unit counters.
// IncrUnits must be atomic: concurrent calls for the same key serialize in
// the store and each returns the total after its own increment.
type UsageStore interface {
	IncrUnits(ctx context.Context, userID, periodKey string, delta int64) (int64, error)
	GetUnits(ctx context.Context, userID, periodKey string) (int64, error)
}
