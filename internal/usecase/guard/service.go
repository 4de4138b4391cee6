package guard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/postforge/postforge/internal/domain"
	"github.com/postforge/postforge/internal/domain/money"
	domusage "github.com/postforge/postforge/internal/domain/usage"
	"github.com/postforge/postforge/internal/metrics"
)

// Service admits or denies billable operations against a per-user daily
// spend cap. The accounting day is the UTC calendar date.
type Service struct {
	store    UsageStore
	cap      money.Amount
	price    money.UnitPrice
	failOpen bool
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a guard service.
// failOpen controls behavior when the counter store is unreachable:
// true admits the request (availability over enforcement), false denies it.
func New(store UsageStore, dailyCap money.Amount, price money.UnitPrice, failOpen bool, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		cap:      dailyCap,
		price:    price,
		failOpen: failOpen,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckAndConsume atomically reserves estimatedUnits against the user's
// daily budget and returns the admission decision.
//
// The reservation is a single atomic increment on the store; the projected
// cost is computed from the returned total, and an over-cap reservation is
// compensated with a negative increment before denial. Two concurrent calls
// that jointly exceed the cap therefore serialize in the store and at most
// one is admitted. An allowed decision is returned only after the increment
// has been applied.
func (s *Service) CheckAndConsume(ctx context.Context, userID string, estimatedUnits int64) (domusage.Decision, error) {
	if strings.TrimSpace(userID) == "" {
		return domusage.Decision{}, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	if estimatedUnits < 0 {
		return domusage.Decision{}, fmt.Errorf("estimated units must not be negative, got %d: %w",
			estimatedUnits, domain.ErrInvalidInput)
	}

	periodKey := domusage.PeriodKeyAt(s.now())

	newTotal, err := s.store.IncrUnits(ctx, userID, periodKey, estimatedUnits)
	if err != nil {
		return s.onStoreError(userID, periodKey, err)
	}

	projected := s.price.Cost(newTotal)
	if projected > s.cap {
		// Roll the reservation back before denying. If the rollback fails
		// the counter stays inflated, which under-admits rather than
		// over-spends; the key expires with the period.
		if _, rbErr := s.store.IncrUnits(ctx, userID, periodKey, -estimatedUnits); rbErr != nil {
			s.logger.Error("Failed to roll back denied reservation",
				zap.String("user_id", userID),
				zap.String("period", periodKey),
				zap.Int64("units", estimatedUnits),
				zap.Error(rbErr),
			)
		}
		metrics.BudgetDecisionsTotal.WithLabelValues("denied").Inc()
		remaining := s.cap - s.price.Cost(newTotal-estimatedUnits)
		return domusage.NewDecision(false, remaining), nil
	}

	metrics.BudgetDecisionsTotal.WithLabelValues("allowed").Inc()
	return domusage.NewDecision(true, s.cap-projected), nil
}

// CurrentUsage returns the user's consumption record for the current
// accounting day. Read-only: a user with no activity gets a zero record and
// no counter is created.
func (s *Service) CurrentUsage(ctx context.Context, userID string) (domusage.Record, error) {
	if strings.TrimSpace(userID) == "" {
		return domusage.Record{}, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}

	periodKey := domusage.PeriodKeyAt(s.now())

	units, err := s.store.GetUnits(ctx, userID, periodKey)
	if err != nil {
		return domusage.Record{}, fmt.Errorf("read usage for %s: %w: %w", userID, domain.ErrStorageUnavailable, err)
	}

	return domusage.NewRecord(userID, periodKey, units, s.price), nil
}

// Cap returns the configured daily spend cap.
func (s *Service) Cap() money.Amount { return s.cap }

// UnitPrice returns the configured price per unit.
func (s *Service) UnitPrice() money.UnitPrice { return s.price }

// onStoreError applies the configured failure policy.
func (s *Service) onStoreError(userID, periodKey string, err error) (domusage.Decision, error) {
	metrics.BudgetDecisionsTotal.WithLabelValues("error").Inc()

	if !s.failOpen {
		return domusage.Decision{}, fmt.Errorf("reserve units for %s: %w: %w",
			userID, domain.ErrStorageUnavailable, err)
	}

	// Availability over enforcement: admit and report the full cap since
	// the actual usage is unknown.
	s.logger.Error("Usage store unreachable, admitting request",
		zap.String("user_id", userID),
		zap.String("period", periodKey),
		zap.Error(err),
	)
	return domusage.NewDecision(true, s.cap), nil
}
