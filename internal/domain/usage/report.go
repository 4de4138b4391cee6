package usage

import (
	"time"

	"github.com/postforge/postforge/internal/domain/money"
)

// Report is a user-facing snapshot of the current accounting day's budget.
type Report struct {
	record    Record
	cap       money.Amount
	remaining money.Amount
	exhausted bool
	resetsAt  time.Time
}

// NewReport builds a Report from a consumption record and the daily cap.
// Remaining is derived and floored at zero.
func NewReport(record Record, dailyCap money.Amount, resetsAt time.Time) Report {
	remaining := (dailyCap - record.CostAccrued()).ClampZero()
	return Report{
		record:    record,
		cap:       dailyCap,
		remaining: remaining,
		exhausted: remaining == 0,
		resetsAt:  resetsAt,
	}
}

// Record returns the underlying consumption record.
func (r Report) Record() Record { return r.record }

// Cap returns the daily spend cap.
func (r Report) Cap() money.Amount { return r.cap }

// Remaining returns the budget left today, never negative.
func (r Report) Remaining() money.Amount { return r.remaining }

// Exhausted reports whether the budget is used up.
func (r Report) Exhausted() bool { return r.exhausted }

// ResetsAt returns the instant the budget resets (next midnight UTC).
func (r Report) ResetsAt() time.Time { return r.resetsAt }
