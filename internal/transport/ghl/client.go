// Package ghl publishes posts to a GoHighLevel blog.
package ghl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/postforge/postforge/internal/domain"
	dompost "github.com/postforge/postforge/internal/domain/post"
)

// Client talks to the GoHighLevel REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	blogID     string
	logger     *zap.Logger
}

// Config holds GoHighLevel connection settings.
type Config struct {
	APIKey  string
	BlogID  string
	BaseURL string
	Logger  *zap.Logger
}

// New creates a GoHighLevel publishing client.
func New(cfg *Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		blogID:     cfg.BlogID,
		logger:     cfg.Logger,
	}
}

// Target identifies this publisher in logs and metrics.
func (c *Client) Target() string { return "ghl" }

type publishRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
	Status   string `json:"status"`
}

type publishResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Publish creates a blog post and returns its public URL.
func (c *Client) Publish(ctx context.Context, p *dompost.Post) (string, error) {
	body, err := json.Marshal(publishRequest{
		Title:    p.Title(),
		Content:  p.Content(),
		ImageURL: p.ThumbnailURL(),
		Status:   "published",
	})
	if err != nil {
		return "", fmt.Errorf("marshal publish request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/blogs/%s/posts", c.baseURL, c.blogID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish to ghl: %w: %w", domain.ErrPublishProviderError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	if err := c.statusError("publish", resp.StatusCode, respBody); err != nil {
		return "", err
	}

	var parsed publishResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse ghl response: %w: %w", domain.ErrPublishProviderError, err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("ghl response missing post url: %w", domain.ErrPublishProviderError)
	}

	return parsed.URL, nil
}

// BlogDetails describes the configured GoHighLevel blog.
type BlogDetails struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// GetBlogDetails fetches the configured blog, verifying the API key and
// blog ID actually resolve to something.
func (c *Client) GetBlogDetails(ctx context.Context) (BlogDetails, error) {
	url := fmt.Sprintf("%s/v1/blogs/%s", c.baseURL, c.blogID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return BlogDetails{}, fmt.Errorf("build blog details request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return BlogDetails{}, fmt.Errorf("fetch ghl blog details: %w: %w", domain.ErrPublishProviderError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	if err := c.statusError("blog details", resp.StatusCode, respBody); err != nil {
		return BlogDetails{}, err
	}

	var parsed BlogDetails
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return BlogDetails{}, fmt.Errorf("parse ghl blog details: %w: %w", domain.ErrPublishProviderError, err)
	}

	return parsed, nil
}

// statusError maps a GoHighLevel HTTP status to a domain sentinel. Returns
// nil for 2xx.
func (c *Client) statusError(op string, status int, body []byte) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("ghl rejected credentials (%d): %w", status, domain.ErrPublishUnauthorized)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("ghl rate limited %s (%d): %w", op, status, domain.ErrRateLimited)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("ghl rejected %s (%d): %s: %w", op, status, body, domain.ErrInvalidInput)
	default:
		c.logger.Error("GHL request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.ByteString("body", body),
		)
		return fmt.Errorf("ghl %s failed (%d): %w", op, status, domain.ErrPublishProviderError)
	}
}
