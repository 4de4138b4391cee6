// Package publish moves drafts to an external blog platform.
package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/postforge/postforge/internal/domain"
	dompost "github.com/postforge/postforge/internal/domain/post"
	"github.com/postforge/postforge/internal/metrics"
)

// Service publishes drafts through the configured publisher.
type Service struct {
	publisher      Publisher // nil when no publisher is configured
	guard          Guard
	posts          PostRepo
	estimatedUnits int64
	logger         *zap.Logger
	now            func() time.Time
}

// New creates a publish service. publisher may be nil; publishing then
// fails with ErrPublisherNotConfigured.
func New(publisher Publisher, guard Guard, posts PostRepo, estimatedUnits int64, logger *zap.Logger) *Service {
	return &Service{
		publisher:      publisher,
		guard:          guard,
		posts:          posts,
		estimatedUnits: estimatedUnits,
		logger:         logger,
		now:            time.Now,
	}
}

// Publish pushes the user's draft to the blog platform and records the
// published URL. Only drafts can be published; the status transition is
// enforced by the domain object.
func (s *Service) Publish(ctx context.Context, userID, postID string) (dompost.Post, error) {
	if strings.TrimSpace(postID) == "" {
		return dompost.Post{}, fmt.Errorf("post id is required: %w", domain.ErrInvalidInput)
	}
	if s.publisher == nil {
		return dompost.Post{}, domain.ErrPublisherNotConfigured
	}

	decision, err := s.guard.CheckAndConsume(ctx, userID, s.estimatedUnits)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("admit publish: %w", err)
	}
	if !decision.Allowed() {
		return dompost.Post{}, fmt.Errorf("publish denied, %s remaining today: %w",
			decision.Remaining().String(), domain.ErrBudgetExceeded)
	}

	p, err := s.posts.Get(ctx, userID, postID)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("load post %s: %w", postID, err)
	}
	if p.Status() != dompost.StatusDraft {
		return dompost.Post{}, fmt.Errorf("post %s is already published: %w", postID, domain.ErrInvalidInput)
	}

	target := s.publisher.Target()
	url, err := s.publisher.Publish(ctx, &p)
	if err != nil {
		metrics.PublishTotal.WithLabelValues(target, "error").Inc()
		return dompost.Post{}, fmt.Errorf("publish post %s: %w", postID, err)
	}

	published, err := p.Publish(url, s.now())
	if err != nil {
		return dompost.Post{}, fmt.Errorf("mark post %s published: %w: %w", postID, domain.ErrInvalidInput, err)
	}
	if err := s.posts.Save(ctx, &published); err != nil {
		return dompost.Post{}, fmt.Errorf("save post %s: %w", postID, err)
	}

	metrics.PublishTotal.WithLabelValues(target, "success").Inc()
	metrics.GenerationUnitsTotal.WithLabelValues("publish").Add(float64(s.estimatedUnits))
	s.logger.Info("Post published",
		zap.String("user_id", userID),
		zap.String("post_id", postID),
		zap.String("target", target),
		zap.String("url", url),
	)

	return published, nil
}
