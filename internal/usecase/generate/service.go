package generate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/postforge/postforge/internal/domain"
	dompost "github.com/postforge/postforge/internal/domain/post"
	"github.com/postforge/postforge/internal/domain/prompt"
	"github.com/postforge/postforge/internal/metrics"
)

// Estimates holds the units reserved up front per operation.
type Estimates struct {
	Ideas   int64
	Article int64
}

// Options tunes article generation.
type Options struct {
	Estimates   Estimates
	MaxAttempts int // regeneration attempts to reach TargetWords
	TargetWords int
}

// Progress is a snapshot of a user's running article generation.
type Progress struct {
	Stage        string // generating, regenerating, saving
	Attempt      int
	MaxAttempts  int
	TargetWords  int
	CurrentWords int
	UpdatedAt    time.Time
}

// Service generates blog ideas and articles.
type Service struct {
	generator TextGenerator
	guard     Guard
	posts     PostWriter
	prompts   *prompt.Registry
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string

	mu       sync.Mutex
	progress map[string]Progress
}

// New creates a generation service.
func New(generator TextGenerator, guard Guard, posts PostWriter, prompts *prompt.Registry,
	opts Options, logger *zap.Logger,
) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.TargetWords <= 0 {
		opts.TargetWords = 2000
	}
	return &Service{
		generator: generator,
		guard:     guard,
		posts:     posts,
		prompts:   prompts,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		progress:  make(map[string]Progress),
	}
}

// Ideas generates blog post title ideas for a topic.
func (s *Service) Ideas(ctx context.Context, userID, topic, industry string) ([]string, error) {
	if strings.TrimSpace(topic) == "" || strings.TrimSpace(industry) == "" {
		return nil, fmt.Errorf("topic and industry are required: %w", domain.ErrInvalidInput)
	}

	if err := s.admit(ctx, userID, s.opts.Estimates.Ideas, "ideas"); err != nil {
		return nil, err
	}

	tpl, err := s.prompts.ByID(prompt.IDBlogIdeas)
	if err != nil {
		return nil, fmt.Errorf("load ideas prompt: %w", err)
	}

	text, err := s.generator.GenerateText(ctx, tpl.Format(map[string]string{
		"topic":    topic,
		"industry": industry,
	}))
	if err != nil {
		return nil, fmt.Errorf("generate ideas: %w", err)
	}

	ideas := parseTitles(text, 3)
	if len(ideas) == 0 {
		return nil, fmt.Errorf("provider returned no usable titles: %w", domain.ErrGenerationProviderError)
	}
	return ideas, nil
}

// ArticleInput describes an article generation request.
type ArticleInput struct {
	UserID     string
	Topic      string
	Industry   string
	Title      string
	Keywords   string
	YouTubeURL string
}

// Article generates a full blog post and saves it as a draft. Short drafts
// are regenerated until the word target is met or attempts run out; the
// longest attempt wins.
func (s *Service) Article(ctx context.Context, in ArticleInput) (dompost.Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Industry) == "" {
		return dompost.Post{}, fmt.Errorf("title and industry are required: %w", domain.ErrInvalidInput)
	}

	if err := s.admit(ctx, in.UserID, s.opts.Estimates.Article, "article"); err != nil {
		return dompost.Post{}, err
	}

	tpl, err := s.prompts.ByID(prompt.IDBlogArticle)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("load article prompt: %w", err)
	}
	promptText := tpl.Format(map[string]string{
		"industry":    in.Industry,
		"title":       in.Title,
		"keywords":    in.Keywords,
		"youtube_url": in.YouTubeURL,
	})

	var best string
	bestWords := 0
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		stage := "generating"
		if attempt > 1 {
			stage = "regenerating"
		}
		s.setProgress(in.UserID, stage, attempt, bestWords)

		content, err := s.generator.GenerateText(ctx, promptText)
		if err != nil {
			s.clearProgress(in.UserID)
			return dompost.Post{}, fmt.Errorf("generate article: %w", err)
		}

		words := countWords(content)
		if words > bestWords {
			best = content
			bestWords = words
		}
		if words >= s.opts.TargetWords {
			break
		}
		s.logger.Info("Article below word target, retrying",
			zap.String("user_id", in.UserID),
			zap.Int("attempt", attempt),
			zap.Int("words", words),
			zap.Int("target", s.opts.TargetWords),
		)
	}

	s.setProgress(in.UserID, "saving", s.opts.MaxAttempts, bestWords)

	p, err := dompost.New(s.newID(), in.UserID, in.Topic, in.Industry, in.Title, best, "", s.now())
	if err != nil {
		s.clearProgress(in.UserID)
		return dompost.Post{}, fmt.Errorf("build post: %w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.posts.Save(ctx, &p); err != nil {
		s.clearProgress(in.UserID)
		return dompost.Post{}, fmt.Errorf("save post: %w", err)
	}

	s.clearProgress(in.UserID)
	return p, nil
}

// Progress reports the user's running article generation, if any.
func (s *Service) Progress(userID string) (Progress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[userID]
	return p, ok
}

// admit reserves units against the budget or denies the operation.
func (s *Service) admit(ctx context.Context, userID string, units int64, kind string) error {
	decision, err := s.guard.CheckAndConsume(ctx, userID, units)
	if err != nil {
		return fmt.Errorf("admit %s: %w", kind, err)
	}
	if !decision.Allowed() {
		return fmt.Errorf("%s denied, %s remaining today: %w",
			kind, decision.Remaining().String(), domain.ErrBudgetExceeded)
	}
	metrics.GenerationUnitsTotal.WithLabelValues(kind).Add(float64(units))
	return nil
}

func (s *Service) setProgress(userID, stage string, attempt, words int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[userID] = Progress{
		Stage:        stage,
		Attempt:      attempt,
		MaxAttempts:  s.opts.MaxAttempts,
		TargetWords:  s.opts.TargetWords,
		CurrentWords: words,
		UpdatedAt:    s.now(),
	}
}

func (s *Service) clearProgress(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.progress, userID)
}

// parseTitles extracts up to max clean titles from provider output,
// stripping list numbering, bullets and surrounding quotes.
func parseTitles(text string, max int) []string {
	var titles []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for len(line) > 0 && (line[0] == '-' || line[0] == '*') {
			line = strings.TrimSpace(line[1:])
		}
		line = stripNumbering(line)
		line = strings.Trim(line, `"'`)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		titles = append(titles, line)
		if len(titles) == max {
			break
		}
	}
	return titles
}

// stripNumbering removes a list-numbering prefix like "1." or "12)".
// A title that merely starts with digits ("10 Gym Habits") is left alone.
func stripNumbering(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return line
	}
	if line[i] != '.' && line[i] != ')' {
		return line
	}
	return strings.TrimLeft(line[i+1:], " \t")
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
