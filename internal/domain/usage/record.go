// Package usage holds per-user daily consumption records and admission
// decisions for the cost guard.
package usage

import (
	"time"

	"github.com/postforge/postforge/internal/domain/money"
)

// PeriodKeyLayout is the accounting-day key format (UTC calendar date).
const PeriodKeyLayout = "2006-01-02"

// PeriodKeyAt derives the accounting-day key for an instant. Truncation is
// calendar-date in UTC, not a rolling 24h window: the period rolls over at
// midnight UTC regardless of the caller's local time.
func PeriodKeyAt(t time.Time) string {
	return t.UTC().Format(PeriodKeyLayout)
}

// PeriodEndAt returns the instant the period containing t rolls over
// (the next midnight UTC).
func PeriodEndAt(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.Add(24 * time.Hour)
}

// Record is one user's consumption for one accounting day. Cost is always
// derived from the unit count and the configured price, never stored or
// mutated independently.
type Record struct {
	userID        string
	periodKey     string
	unitsConsumed int64
	price         money.UnitPrice
}

// NewRecord creates a Record snapshot.
func NewRecord(userID, periodKey string, units int64, price money.UnitPrice) Record {
	return Record{
		userID:        userID,
		periodKey:     periodKey,
		unitsConsumed: units,
		price:         price,
	}
}

// UserID returns the metered principal.
func (r Record) UserID() string { return r.userID }

// PeriodKey returns the accounting day (YYYY-MM-DD, UTC).
func (r Record) PeriodKey() string { return r.periodKey }

// UnitsConsumed returns the metered units consumed so far this period.
func (r Record) UnitsConsumed() int64 { return r.unitsConsumed }

// CostAccrued returns the cost of the consumed units.
func (r Record) CostAccrued() money.Amount { return r.price.Cost(r.unitsConsumed) }

// IsZero reports whether nothing has been consumed this period.
func (r Record) IsZero() bool { return r.unitsConsumed == 0 }

// Decision is the outcome of an admission check.
type Decision struct {
	allowed   bool
	remaining money.Amount
}

// NewDecision creates a Decision. Remaining budget is floored at zero.
func NewDecision(allowed bool, remaining money.Amount) Decision {
	return Decision{allowed: allowed, remaining: remaining.ClampZero()}
}

// Allowed reports whether the operation may proceed.
func (d Decision) Allowed() bool { return d.allowed }

// Remaining returns the budget left after this decision, never negative.
func (d Decision) Remaining() money.Amount { return d.remaining }
