package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/postforge/postforge/internal/domain"
	dompost "github.com/postforge/postforge/internal/domain/post"
)

func testPost(t *testing.T) dompost.Post {
	t.Helper()
	p, err := dompost.New("p1", "user-1", "ai tools", "software",
		"My Post", "<p>body</p>", "", time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to build post: %v", err)
	}
	return p
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	return newTestClientWithCategory(t, "", handler)
}

func newTestClientWithCategory(t *testing.T, category string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(&Config{
		SiteURL:  server.URL,
		Username: "editor",
		Password: "secret",
		Category: category,
		Logger:   zap.NewNop(),
	})
}

func TestPublish_FetchesTokenThenPosts(t *testing.T) {
	var tokenCalls, postCalls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/jwt-auth/v1/token":
			tokenCalls++
			var creds map[string]string
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
				t.Fatalf("failed to decode credentials: %v", err)
			}
			if creds["username"] != "editor" || creds["password"] != "secret" {
				t.Errorf("unexpected credentials: %v", creds)
			}
			_ = json.NewEncoder(w).Encode(tokenResponse{Token: "jwt-token"})
		case "/wp-json/wp/v2/posts":
			postCalls++
			if r.Header.Get("Authorization") != "Bearer jwt-token" {
				t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
			}
			var req postRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("failed to decode post: %v", err)
			}
			if req.Status != "publish" {
				t.Errorf("expected status 'publish', got %q", req.Status)
			}
			_ = json.NewEncoder(w).Encode(postResponse{ID: 7, Link: "https://site.example.com/my-post"})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	p := testPost(t)
	link, err := c.Publish(context.Background(), &p)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if link != "https://site.example.com/my-post" {
		t.Errorf("unexpected link: %q", link)
	}
	if tokenCalls != 1 || postCalls != 1 {
		t.Errorf("expected 1 token call and 1 post call, got %d and %d", tokenCalls, postCalls)
	}
}

func TestPublish_ReusesToken(t *testing.T) {
	var tokenCalls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/jwt-auth/v1/token":
			tokenCalls++
			_ = json.NewEncoder(w).Encode(tokenResponse{Token: "jwt-token"})
		case "/wp-json/wp/v2/posts":
			_ = json.NewEncoder(w).Encode(postResponse{ID: 7, Link: "https://site.example.com/p"})
		}
	})

	p := testPost(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.Publish(ctx, &p); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}
	if tokenCalls != 1 {
		t.Errorf("expected a single token fetch, got %d", tokenCalls)
	}
}

func TestPublish_RefreshesExpiredToken(t *testing.T) {
	var tokenCalls, postCalls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/jwt-auth/v1/token":
			tokenCalls++
			_ = json.NewEncoder(w).Encode(tokenResponse{Token: "jwt-token"})
		case "/wp-json/wp/v2/posts":
			postCalls++
			if postCalls == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(postResponse{ID: 7, Link: "https://site.example.com/p"})
		}
	})

	p := testPost(t)
	link, err := c.Publish(context.Background(), &p)
	if err != nil {
		t.Fatalf("expected token refresh to recover, got %v", err)
	}
	if link == "" {
		t.Error("expected a post link")
	}
	if tokenCalls != 2 || postCalls != 2 {
		t.Errorf("expected 2 token calls and 2 post calls, got %d and %d", tokenCalls, postCalls)
	}
}

func TestPublish_FilesUnderConfiguredCategory(t *testing.T) {
	var categoryCalls int
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/jwt-auth/v1/token":
			_ = json.NewEncoder(w).Encode(tokenResponse{Token: "jwt-token"})
		case "/wp-json/wp/v2/categories":
			categoryCalls++
			_ = json.NewEncoder(w).Encode([]Category{
				{ID: 3, Name: "News"},
				{ID: 7, Name: "Marketing"},
			})
		case "/wp-json/wp/v2/posts":
			var req postRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("failed to decode post: %v", err)
			}
			if len(req.Categories) != 1 || req.Categories[0] != 7 {
				t.Errorf("expected categories [7], got %v", req.Categories)
			}
			_ = json.NewEncoder(w).Encode(postResponse{ID: 7, Link: "https://site.example.com/p"})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}
	c := newTestClientWithCategory(t, "marketing", handler)

	p := testPost(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.Publish(ctx, &p); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}
	if categoryCalls != 1 {
		t.Errorf("expected a single category lookup, got %d", categoryCalls)
	}
}

func TestPublish_UnknownCategory(t *testing.T) {
	c := newTestClientWithCategory(t, "ghost-writing", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/jwt-auth/v1/token":
			_ = json.NewEncoder(w).Encode(tokenResponse{Token: "jwt-token"})
		case "/wp-json/wp/v2/categories":
			_ = json.NewEncoder(w).Encode([]Category{{ID: 3, Name: "News"}})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	p := testPost(t)
	_, err := c.Publish(context.Background(), &p)
	if !errors.Is(err, domain.ErrPublisherNotConfigured) {
		t.Fatalf("expected ErrPublisherNotConfigured, got %v", err)
	}
}

func TestCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/jwt-auth/v1/token":
			_ = json.NewEncoder(w).Encode(tokenResponse{Token: "jwt-token"})
		case "/wp-json/wp/v2/categories":
			if r.Header.Get("Authorization") != "Bearer jwt-token" {
				t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
			}
			_ = json.NewEncoder(w).Encode([]Category{{ID: 1, Name: "Uncategorized"}})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	cats, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Uncategorized" {
		t.Errorf("unexpected categories: %+v", cats)
	}
}

func TestPublish_BadCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	p := testPost(t)
	_, err := c.Publish(context.Background(), &p)
	if !errors.Is(err, domain.ErrPublishUnauthorized) {
		t.Fatalf("expected ErrPublishUnauthorized, got %v", err)
	}
}

func TestPublish_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/jwt-auth/v1/token":
			_ = json.NewEncoder(w).Encode(tokenResponse{Token: "jwt-token"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	p := testPost(t)
	_, err := c.Publish(context.Background(), &p)
	if !errors.Is(err, domain.ErrPublishProviderError) {
		t.Fatalf("expected ErrPublishProviderError, got %v", err)
	}
}
