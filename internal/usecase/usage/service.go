// Package usage builds user-facing budget reports.
package usage

import (
	"context"
	"fmt"
	"time"

	domusage "github.com/postforge/postforge/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	reader UsageReader
	now    func() time.Time
}

// New creates a Service.
func New(reader UsageReader) *Service {
	return &Service{reader: reader, now: time.Now}
}

// GetReport builds the user's budget report for the current accounting day.
func (s *Service) GetReport(ctx context.Context, userID string) (domusage.Report, error) {
	record, err := s.reader.CurrentUsage(ctx, userID)
	if err != nil {
		return domusage.Report{}, fmt.Errorf("current usage: %w", err)
	}

	return domusage.NewReport(record, s.reader.Cap(), domusage.PeriodEndAt(s.now())), nil
}
