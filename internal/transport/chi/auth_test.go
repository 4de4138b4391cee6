package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/postforge/postforge/internal/config"
)

func captureUserHandler(gotUser *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUser = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_EmptyKeys_HeaderIdentity(t *testing.T) {
	var gotUser string
	mw := BearerAuthMiddleware(nil)
	handler := mw(captureUserHandler(&gotUser))

	req := httptest.NewRequest("GET", "/v1/posts", http.NoBody)
	req.Header.Set("X-User-ID", "dev-user")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("empty keys: got %d, want %d", rr.Code, http.StatusOK)
	}
	if gotUser != "dev-user" {
		t.Errorf("user: got %q, want dev-user", gotUser)
	}
}

func TestAuthMiddleware_EmptyKeys_AnonymousFallback(t *testing.T) {
	var gotUser string
	mw := BearerAuthMiddleware([]config.APIKeyConfig{{Key: "", UserID: "nobody"}})
	handler := mw(captureUserHandler(&gotUser))

	req := httptest.NewRequest("GET", "/v1/posts", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("empty string keys: got %d, want %d", rr.Code, http.StatusOK)
	}
	if gotUser != "anonymous" {
		t.Errorf("user: got %q, want anonymous", gotUser)
	}
}

func TestAuthMiddleware_ValidKey_ResolvesUser(t *testing.T) {
	var gotUser string
	mw := BearerAuthMiddleware([]config.APIKeyConfig{
		{Key: "secret-a", UserID: "user-a"},
		{Key: "secret-b", UserID: "user-b"},
	})
	handler := mw(captureUserHandler(&gotUser))

	req := httptest.NewRequest("GET", "/v1/posts", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret-b")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("valid key: got %d, want %d", rr.Code, http.StatusOK)
	}
	if gotUser != "user-b" {
		t.Errorf("user: got %q, want user-b", gotUser)
	}
}

func TestAuthMiddleware_MissingHeader_401(t *testing.T) {
	mw := BearerAuthMiddleware([]config.APIKeyConfig{{Key: "secret", UserID: "user-1"}})
	var gotUser string
	handler := mw(captureUserHandler(&gotUser))

	req := httptest.NewRequest("GET", "/v1/posts", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("missing header: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != CodeUnauthorized {
		t.Errorf("error code: got %s, want %s", errResp.Code, CodeUnauthorized)
	}
}

func TestAuthMiddleware_BasicScheme_401(t *testing.T) {
	mw := BearerAuthMiddleware([]config.APIKeyConfig{{Key: "secret", UserID: "user-1"}})
	var gotUser string
	handler := mw(captureUserHandler(&gotUser))

	req := httptest.NewRequest("GET", "/v1/posts", http.NoBody)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("basic scheme: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_InvalidToken_401(t *testing.T) {
	mw := BearerAuthMiddleware([]config.APIKeyConfig{{Key: "secret", UserID: "user-1"}})
	var gotUser string
	handler := mw(captureUserHandler(&gotUser))

	req := httptest.NewRequest("GET", "/v1/posts", http.NoBody)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_ExemptPaths_NoAuth(t *testing.T) {
	mw := BearerAuthMiddleware([]config.APIKeyConfig{{Key: "secret", UserID: "user-1"}})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest("GET", path, http.NoBody)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
}
