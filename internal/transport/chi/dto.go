package chi

import (
	"time"

	dompost "github.com/postforge/postforge/internal/domain/post"
	domusage "github.com/postforge/postforge/internal/domain/usage"
	"github.com/postforge/postforge/internal/usecase/generate"
	healthuc "github.com/postforge/postforge/internal/usecase/health"
)

// ErrorCode is a machine-readable error discriminator sent to clients.
type ErrorCode string

const (
	CodeBadRequest              ErrorCode = "bad_request"
	CodeValidationFailed        ErrorCode = "validation_failed"
	CodeUnauthorized            ErrorCode = "unauthorized"
	CodePostNotFound            ErrorCode = "post_not_found"
	CodeBudgetExceeded          ErrorCode = "budget_exceeded"
	CodeRateLimited             ErrorCode = "rate_limited"
	CodeGenerationProvider      ErrorCode = "generation_provider_error"
	CodePublishProvider         ErrorCode = "publish_provider_error"
	CodePublishUnauthorized     ErrorCode = "publish_unauthorized"
	CodeStorageUnavailable      ErrorCode = "storage_unavailable"
	CodePublisherNotConfigured  ErrorCode = "publisher_not_configured"
	CodeGenerationNotInProgress ErrorCode = "generation_not_in_progress"
	CodeInternalError           ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// IdeasRequest is the body of POST /v1/ideas.
type IdeasRequest struct {
	Topic    string `json:"topic"`
	Industry string `json:"industry"`
}

// IdeasResponse carries the generated blog titles.
type IdeasResponse struct {
	Ideas []string `json:"ideas"`
}

// ArticleRequest is the body of POST /v1/articles.
type ArticleRequest struct {
	Topic      string `json:"topic"`
	Industry   string `json:"industry"`
	Title      string `json:"title"`
	Keywords   string `json:"keywords,omitempty"`
	YouTubeURL string `json:"youtube_url,omitempty"`
}

// ProgressResponse is the body of GET /v1/articles/progress.
type ProgressResponse struct {
	Stage        string    `json:"stage"`
	Attempt      int       `json:"attempt"`
	MaxAttempts  int       `json:"max_attempts"`
	TargetWords  int       `json:"target_words"`
	CurrentWords int       `json:"current_words"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PostResponse is the API shape of a blog post.
type PostResponse struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic,omitempty"`
	Industry     string    `json:"industry"`
	Title        string    `json:"title"`
	Content      string    `json:"content,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Status       string    `json:"status"`
	PublishedURL string    `json:"published_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PostListResponse is a page of posts.
type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// UsageResponse is the body of GET /v1/usage.
type UsageResponse struct {
	PeriodKey     string    `json:"period_key"`
	UnitsConsumed int64     `json:"units_consumed"`
	CostAccrued   string    `json:"cost_accrued"`
	DailyCap      string    `json:"daily_cap"`
	Remaining     string    `json:"remaining"`
	Exhausted     bool      `json:"exhausted"`
	ResetsAt      time.Time `json:"resets_at"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func postToResponse(p dompost.Post) PostResponse {
	return PostResponse{
		ID:           p.ID(),
		Topic:        p.Topic(),
		Industry:     p.Industry(),
		Title:        p.Title(),
		Content:      p.Content(),
		ThumbnailURL: p.ThumbnailURL(),
		Status:       string(p.Status()),
		PublishedURL: p.PublishedURL(),
		CreatedAt:    p.CreatedAt().UTC(),
		UpdatedAt:    p.UpdatedAt().UTC(),
	}
}

func postListToResponse(posts []dompost.Post, nextCursor string) PostListResponse {
	out := PostListResponse{
		Posts:      make([]PostResponse, len(posts)),
		NextCursor: nextCursor,
	}
	for i := range posts {
		out.Posts[i] = postToResponse(posts[i])
		// list entries stay light, content is fetched per post
		out.Posts[i].Content = ""
	}
	return out
}

func usageToResponse(r domusage.Report) UsageResponse {
	return UsageResponse{
		PeriodKey:     r.Record().PeriodKey(),
		UnitsConsumed: r.Record().UnitsConsumed(),
		CostAccrued:   r.Record().CostAccrued().String(),
		DailyCap:      r.Cap().String(),
		Remaining:     r.Remaining().String(),
		Exhausted:     r.Exhausted(),
		ResetsAt:      r.ResetsAt().UTC(),
	}
}

func progressToResponse(p generate.Progress) ProgressResponse {
	return ProgressResponse{
		Stage:        p.Stage,
		Attempt:      p.Attempt,
		MaxAttempts:  p.MaxAttempts,
		TargetWords:  p.TargetWords,
		CurrentWords: p.CurrentWords,
		UpdatedAt:    p.UpdatedAt.UTC(),
	}
}

func healthToResponse(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks}
}
