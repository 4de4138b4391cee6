package usage

import (
	"context"

	"github.com/postforge/postforge/internal/domain/money"
	domusage "github.com/postforge/postforge/internal/domain/usage"
)

// UsageReader provides read access to budget state.
type UsageReader interface {
	CurrentUsage(ctx context.Context, userID string) (domusage.Record, error)
	Cap() money.Amount
}
