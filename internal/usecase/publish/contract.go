package publish

import (
	"context"

	dompost "github.com/postforge/postforge/internal/domain/post"
	domusage "github.com/postforge/postforge/internal/domain/usage"
)

// Publisher pushes a post to an external blog platform.
type Publisher interface {
	Publish(ctx context.Context, p *dompost.Post) (url string, err error)
	Target() string
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
