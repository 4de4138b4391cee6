package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/postforge/postforge/internal/domain"
	dompost "github.com/postforge/postforge/internal/domain/post"
	"github.com/postforge/postforge/internal/usecase/generate"
	healthuc "github.com/postforge/postforge/internal/usecase/health"
	postsuc "github.com/postforge/postforge/internal/usecase/posts"
	publishuc "github.com/postforge/postforge/internal/usecase/publish"
	thumbnailuc "github.com/postforge/postforge/internal/usecase/thumbnail"
	usageuc "github.com/postforge/postforge/internal/usecase/usage"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use case services into HTTP handlers.
type Server struct {
	generation    *generate.Service
	thumbnails    *thumbnailuc.Service
	publisher     *publishuc.Service
	posts         *postsuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	generation *generate.Service,
	thumbnails *thumbnailuc.Service,
	publisher *publishuc.Service,
	posts *postsuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		generation: generation,
		thumbnails: thumbnails,
		publisher:  publisher,
		posts:      posts,
		usage:      usage,
		health:     health,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrPostNotFound, http.StatusNotFound, CodePostNotFound),
		sentinelHandler(domain.ErrBudgetExceeded, http.StatusTooManyRequests, CodeBudgetExceeded),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, CodeGenerationProvider),
		sentinelHandler(domain.ErrPublishUnauthorized, http.StatusBadGateway, CodePublishUnauthorized),
		sentinelHandler(domain.ErrPublishProviderError, http.StatusBadGateway, CodePublishProvider),
		sentinelHandler(domain.ErrStorageUnavailable, http.StatusServiceUnavailable, CodeStorageUnavailable),
		sentinelHandler(domain.ErrPublisherNotConfigured, http.StatusNotImplemented, CodePublisherNotConfigured),
	}
	return s
}

// Routes mounts all API handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/ideas", s.GenerateIdeas)
		r.Post("/articles", s.GenerateArticle)
		r.Get("/articles/progress", s.GenerationProgress)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", s.ListPosts)
			r.Get("/{id}", s.GetPost)
			r.Delete("/{id}", s.DeletePost)
			r.Post("/{id}/thumbnail", s.GenerateThumbnail)
			r.Post("/{id}/publish", s.PublishPost)
		})

		r.Get("/usage", s.GetUsage)
	})
}

// GenerateIdeas handles POST /v1/ideas.
func (s *Server) GenerateIdeas(w http.ResponseWriter, r *http.Request) {
	var req IdeasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Topic is required")
		return
	}

	ideas, err := s.generation.Ideas(r.Context(), UserIDFromContext(r.Context()), req.Topic, req.Industry)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, IdeasResponse{Ideas: ideas})
}

// GenerateArticle handles POST /v1/articles.
func (s *Server) GenerateArticle(w http.ResponseWriter, r *http.Request) {
	var req ArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Title is required")
		return
	}

	post, err := s.generation.Article(r.Context(), generate.ArticleInput{
		UserID:     UserIDFromContext(r.Context()),
		Topic:      req.Topic,
		Industry:   req.Industry,
		Title:      req.Title,
		Keywords:   req.Keywords,
		YouTubeURL: req.YouTubeURL,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, postToResponse(post))
}

// GenerationProgress handles GET /v1/articles/progress.
func (s *Server) GenerationProgress(w http.ResponseWriter, r *http.Request) {
	p, ok := s.generation.Progress(UserIDFromContext(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, CodeGenerationNotInProgress, "no article generation in progress")
		return
	}

	writeJSON(w, http.StatusOK, progressToResponse(p))
}

// ListPosts handles GET /v1/posts.
func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	qp := r.URL.Query()

	q, err := dompost.NewQuery(qp.Get("status"), qp.Get("industry"), qp.Get("q"),
		qp.Get("sort_by"), qp.Get("sort_dir"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	limit := 0
	if raw := qp.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "limit must be a non-negative integer")
			return
		}
	}

	posts, next, err := s.posts.List(r.Context(), UserIDFromContext(r.Context()), q, qp.Get("cursor"), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postListToResponse(posts, next))
}

// GetPost handles GET /v1/posts/{id}.
func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.Get(r.Context(), UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postToResponse(post))
}

// DeletePost handles DELETE /v1/posts/{id}.
func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.Delete(r.Context(), UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateThumbnail handles POST /v1/posts/{id}/thumbnail.
func (s *Server) GenerateThumbnail(w http.ResponseWriter, r *http.Request) {
	post, err := s.thumbnails.Generate(r.Context(), UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postToResponse(post))
}

// PublishPost handles POST /v1/posts/{id}/publish.
func (s *Server) PublishPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.publisher.Publish(r.Context(), UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postToResponse(post))
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	report, err := s.usage.GetReport(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usageToResponse(report))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthToResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrPostNotFound,
		domain.ErrBudgetExceeded,
		domain.ErrRateLimited,
		domain.ErrGenerationProviderError,
		domain.ErrPublishUnauthorized,
		domain.ErrPublishProviderError,
		domain.ErrStorageUnavailable,
		domain.ErrPublisherNotConfigured,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
