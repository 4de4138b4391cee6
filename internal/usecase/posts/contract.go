package posts

import (
	"context"

	dompost "github.com/postforge/postforge/internal/domain/post"
)

// Repository defines the storage contract for posts.
type Repository interface {
	Save(ctx context.Context, p *dompost.Post) error
	Get(ctx context.Context, userID, id string) (dompost.Post, error)
	List(ctx context.Context, userID string, q dompost.Query, cursor string, limit int) ([]dompost.Post, string, error)
	Delete(ctx context.Context, userID, id string) error
}
