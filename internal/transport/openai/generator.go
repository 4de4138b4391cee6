package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/postforge/postforge/internal/domain"
	"github.com/postforge/postforge/internal/metrics"
)

// Generator produces blog content through an OpenAI-compatible API.
type Generator struct {
	client     *openai.Client
	model      string
	imageModel string
	logger     *zap.Logger

	maxRetries int
	backoff    func(attempt int) time.Duration
}

// Config holds the generation provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
	Logger     *zap.Logger
}

// NewGenerator creates an OpenAI-compatible content generation client.
func NewGenerator(cfg *Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
		logger:     cfg.Logger,
		maxRetries: 3,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
	}
}

// GenerateText runs one chat completion and returns the raw text.
// Rate-limited requests are retried with exponential backoff.
func (g *Generator) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()

	var resp openai.ChatCompletionResponse
	err := g.withRetry(ctx, func() error {
		var reqErr error
		resp, reqErr = g.client.CreateChatCompletion(ctx, req)
		return reqErr
	})

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues("text", g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues("text", errorType(err)).Inc()
		return "", parseAPIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.GenerationRequestsTotal.WithLabelValues("text", g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues("text", "empty_response").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationProviderError)
	}

	metrics.GenerationRequestsTotal.WithLabelValues("text", g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues("text", g.model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// GenerateImage creates one image and returns its URL.
func (g *Generator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	req := openai.ImageRequest{
		Model:          g.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	}

	start := time.Now()

	var resp openai.ImageResponse
	err := g.withRetry(ctx, func() error {
		var reqErr error
		resp, reqErr = g.client.CreateImage(ctx, req)
		return reqErr
	})

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues("image", g.imageModel, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues("image", errorType(err)).Inc()
		return "", parseAPIError(err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		metrics.GenerationRequestsTotal.WithLabelValues("image", g.imageModel, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues("image", "empty_response").Inc()
		return "", fmt.Errorf("empty image response: %w", domain.ErrGenerationProviderError)
	}

	metrics.GenerationRequestsTotal.WithLabelValues("image", g.imageModel, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues("image", g.imageModel).Observe(duration.Seconds())

	return resp.Data[0].URL, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// withRetry runs fn, retrying rate-limited calls with exponential backoff.
func (g *Generator) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !isRateLimited(err) || attempt >= g.maxRetries {
			return err
		}

		delay := g.backoff(attempt)
		g.logger.Warn("Provider rate limited, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// isRateLimited reports whether the API responded with HTTP 429.
func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429
	}
	return false
}

func errorType(err error) string {
	if isRateLimited(err) {
		return "rate_limited"
	}
	return "api_error"
}

// parseAPIError extracts a human-readable error from the API response.
// Errors are wrapped with domain sentinels for correct status mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrGenerationProviderError
	if isRateLimited(err) {
		wrap = domain.ErrRateLimited
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("generation API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("generation API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("generation API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("generation request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
