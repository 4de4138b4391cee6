package thumbnail

import (
	"context"

	dompost "github.com/postforge/postforge/internal/domain/post"
	domusage "github.com/postforge/postforge/internal/domain/usage"
)

// ImageGenerator produces an image URL from a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Guard admits billable operations against the user's budget.
type Guard interface {
	CheckAndConsume(ctx context.Context, userID string, estimatedUnits int64) (domusage.Decision, error)
}

// PostRepo loads and stores posts.
type PostRepo interface {
	Get(ctx context.Context, userID, id string) (dompost.Post, error)
	Save(ctx context.Context, p *dompost.Post) error
}
