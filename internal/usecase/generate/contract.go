package generate

import (
	"context"

	dompost "github.com/postforge/postforge/internal/domain/post"
	domusage "github.com/postforge/postforge/internal/domain/usage"
)

// TextGenerator produces raw text from a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Guard admits billable operations against the user's budget.
type Guard interface {
	CheckAndConsume(ctx context.Context, userID string, estimatedUnits int64) (domusage.Decision, error)
}

// PostWriter persists generated posts.
type PostWriter interface {
	Save(ctx context.Context, p *dompost.Post) error
}
