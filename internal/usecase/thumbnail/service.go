// Package thumbnail attaches generated cover images to posts.
package thumbnail

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/postforge/postforge/internal/domain"
	dompost "github.com/postforge/postforge/internal/domain/post"
	"github.com/postforge/postforge/internal/metrics"
)

const unsplashBase = "https://source.unsplash.com/featured/"

// Service generates post thumbnails with a stock-photo fallback.
type Service struct {
	images         ImageGenerator
	guard          Guard
	posts          PostRepo
	estimatedUnits int64
	logger         *zap.Logger
	now            func() time.Time
}

// New creates a thumbnail service.
func New(images ImageGenerator, guard Guard, posts PostRepo, estimatedUnits int64, logger *zap.Logger) *Service {
	return &Service{
		images:         images,
		guard:          guard,
		posts:          posts,
		estimatedUnits: estimatedUnits,
		logger:         logger,
		now:            time.Now,
	}
}

// Generate creates a thumbnail for the post and saves the updated post.
// When the image provider fails, a topical Unsplash URL is used instead so
// the post always ends up with a cover image.
func (s *Service) Generate(ctx context.Context, userID, postID string) (dompost.Post, error) {
	if strings.TrimSpace(postID) == "" {
		return dompost.Post{}, fmt.Errorf("post id is required: %w", domain.ErrInvalidInput)
	}

	decision, err := s.guard.CheckAndConsume(ctx, userID, s.estimatedUnits)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("admit thumbnail: %w", err)
	}
	if !decision.Allowed() {
		return dompost.Post{}, fmt.Errorf("thumbnail denied, %s remaining today: %w",
			decision.Remaining().String(), domain.ErrBudgetExceeded)
	}
	metrics.GenerationUnitsTotal.WithLabelValues("thumbnail").Add(float64(s.estimatedUnits))

	p, err := s.posts.Get(ctx, userID, postID)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("load post %s: %w", postID, err)
	}

	imageURL, err := s.images.GenerateImage(ctx, imagePrompt(&p))
	if err != nil {
		imageURL = fallbackURL(&p)
		s.logger.Warn("Image provider failed, using stock fallback",
			zap.String("post_id", postID),
			zap.String("fallback", imageURL),
			zap.Error(err),
		)
	}

	updated := p.WithThumbnail(imageURL, s.now())
	if err := s.posts.Save(ctx, &updated); err != nil {
		return dompost.Post{}, fmt.Errorf("save post %s: %w", postID, err)
	}

	return updated, nil
}

func imagePrompt(p *dompost.Post) string {
	return fmt.Sprintf(
		"A professional, modern blog cover image for an article titled %q in the %s industry. "+
			"Clean composition, no text, suitable as a website hero image.",
		p.Title(), p.Industry(),
	)
}

// fallbackURL builds an Unsplash featured-photo URL for the post's subject.
func fallbackURL(p *dompost.Post) string {
	query := p.Topic()
	if query == "" {
		query = p.Industry()
	}
	return unsplashBase + "?" + url.QueryEscape(query)
}
