// Package posts handles blog post CRUD.
package posts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/postforge/postforge/internal/domain"
	dompost "github.com/postforge/postforge/internal/domain/post"
)

// Service handles post CRUD operations.
type Service struct {
	repo        Repository
	defaultPage int
	maxPage     int
	now         func() time.Time
	newID       func() string
}

// New creates a posts service.
func New(repo Repository, defaultPage, maxPage int) *Service {
	if defaultPage <= 0 {
		defaultPage = 20
	}
	if maxPage <= 0 {
		maxPage = 100
	}
	return &Service{
		repo:        repo,
		defaultPage: defaultPage,
		maxPage:     maxPage,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

// Create validates and stores a new draft.
func (s *Service) Create(ctx context.Context, userID, topic, industry, title, content string) (dompost.Post, error) {
	p, err := dompost.New(s.newID(), userID, topic, industry, title, content, "", s.now())
	if err != nil {
		return dompost.Post{}, fmt.Errorf("validate post: %w: %w", domain.ErrInvalidInput, err)
	}

	if err := s.repo.Save(ctx, &p); err != nil {
		return dompost.Post{}, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// Get retrieves a user's post by ID.
func (s *Service) Get(ctx context.Context, userID, id string) (dompost.Post, error) {
	p, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// List returns a page of the user's posts matching the query.
func (s *Service) List(ctx context.Context, userID string, q dompost.Query, cursor string, limit int) (
	[]dompost.Post, string, error,
) {
	if limit <= 0 {
		limit = s.defaultPage
	}
	if limit > s.maxPage {
		limit = s.maxPage
	}

	items, next, err := s.repo.List(ctx, userID, q, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list posts: %w", err)
	}
	return items, next, nil
}

// Delete removes a user's post.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
