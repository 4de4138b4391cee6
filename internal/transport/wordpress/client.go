// Package wordpress publishes posts to a WordPress site via its REST API
// with JWT authentication.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/postforge/postforge/internal/domain"
	dompost "github.com/postforge/postforge/internal/domain/post"
)

// Client talks to the WordPress REST API.
type Client struct {
	httpClient *http.Client
	siteURL    string
	username   string
	password   string
	category   string
	logger     *zap.Logger

	mu         sync.Mutex
	token      string
	categoryID int
}

// Config holds WordPress connection settings. Category, when set, names an
// existing site category that every published post is filed under.
type Config struct {
	SiteURL  string
	Username string
	Password string
	Category string
	Logger   *zap.Logger
}

// New creates a WordPress publishing client.
func New(cfg *Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		siteURL:    strings.TrimRight(cfg.SiteURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		category:   cfg.Category,
		logger:     cfg.Logger,
	}
}

// Target identifies this publisher in logs and metrics.
func (c *Client) Target() string { return "wordpress" }

type tokenResponse struct {
	Token string `json:"token"`
}

type postRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Status     string `json:"status"`
	Categories []int  `json:"categories,omitempty"`
}

type postResponse struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

// Publish creates a published post and returns its public link.
// A 401 drops the cached token and retries once with a fresh one.
func (c *Client) Publish(ctx context.Context, p *dompost.Post) (string, error) {
	link, err := c.createPost(ctx, p)
	if err == nil {
		return link, nil
	}
	if !isUnauthorized(err) {
		return "", err
	}

	c.invalidateToken()
	return c.createPost(ctx, p)
}

func (c *Client) createPost(ctx context.Context, p *dompost.Post) (string, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return "", err
	}

	var categories []int
	if c.category != "" {
		id, err := c.resolveCategoryID(ctx, token)
		if err != nil {
			return "", err
		}
		categories = []int{id}
	}

	body, err := json.Marshal(postRequest{
		Title:      p.Title(),
		Content:    p.Content(),
		Status:     "publish",
		Categories: categories,
	})
	if err != nil {
		return "", fmt.Errorf("marshal post request: %w", err)
	}

	url := c.siteURL + "/wp-json/wp/v2/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build post request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish to wordpress: %w: %w", domain.ErrPublishProviderError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("wordpress rejected token (%d): %w", resp.StatusCode, domain.ErrPublishUnauthorized)
	case resp.StatusCode >= 400:
		c.logger.Error("WordPress publish failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return "", fmt.Errorf("wordpress publish failed (%d): %w", resp.StatusCode, domain.ErrPublishProviderError)
	}

	var parsed postResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse wordpress response: %w: %w", domain.ErrPublishProviderError, err)
	}
	if parsed.Link == "" {
		return "", fmt.Errorf("wordpress response missing post link: %w", domain.ErrPublishProviderError)
	}

	return parsed.Link, nil
}

// authToken returns the cached JWT, fetching a new one if needed.
func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	url := c.siteURL + "/wp-json/jwt-auth/v1/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("wordpress token request: %w: %w", domain.ErrPublishProviderError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wordpress token request failed (%d): %w",
			resp.StatusCode, domain.ErrPublishUnauthorized)
	}

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse token response: %w: %w", domain.ErrPublishProviderError, err)
	}
	if parsed.Token == "" {
		return "", fmt.Errorf("wordpress token response empty: %w", domain.ErrPublishUnauthorized)
	}

	c.token = parsed.Token
	return c.token, nil
}

// Category is a WordPress post category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Categories lists the site's post categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.fetchCategories(ctx, token)
}

func (c *Client) fetchCategories(ctx context.Context, token string) ([]Category, error) {
	url := c.siteURL + "/wp-json/wp/v2/categories?per_page=100"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build categories request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list wordpress categories: %w: %w", domain.ErrPublishProviderError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("wordpress rejected token (%d): %w", resp.StatusCode, domain.ErrPublishUnauthorized)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("wordpress categories failed (%d): %w", resp.StatusCode, domain.ErrPublishProviderError)
	}

	var parsed []Category
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse categories response: %w: %w", domain.ErrPublishProviderError, err)
	}
	return parsed, nil
}

// resolveCategoryID validates the configured category name against the site
// and caches the matching ID.
func (c *Client) resolveCategoryID(ctx context.Context, token string) (int, error) {
	c.mu.Lock()
	cached := c.categoryID
	c.mu.Unlock()
	if cached != 0 {
		return cached, nil
	}

	cats, err := c.fetchCategories(ctx, token)
	if err != nil {
		return 0, err
	}
	for _, cat := range cats {
		if strings.EqualFold(cat.Name, c.category) {
			c.mu.Lock()
			c.categoryID = cat.ID
			c.mu.Unlock()
			return cat.ID, nil
		}
	}
	return 0, fmt.Errorf("wordpress category %q not found: %w", c.category, domain.ErrPublisherNotConfigured)
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func isUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrPublishUnauthorized)
}
