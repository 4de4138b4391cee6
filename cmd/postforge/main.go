package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/postforge/postforge/internal/config"
	dbRedis "github.com/postforge/postforge/internal/db/redis"
	"github.com/postforge/postforge/internal/domain/prompt"
	logpkg "github.com/postforge/postforge/internal/logger"
	"github.com/postforge/postforge/internal/metrics"
	postrepo "github.com/postforge/postforge/internal/repository/post"
	usagerepo "github.com/postforge/postforge/internal/repository/usage"
	chiTransport "github.com/postforge/postforge/internal/transport/chi"
	"github.com/postforge/postforge/internal/transport/ghl"
	openaiGen "github.com/postforge/postforge/internal/transport/openai"
	"github.com/postforge/postforge/internal/transport/wordpress"
	generateuc "github.com/postforge/postforge/internal/usecase/generate"
	guarduc "github.com/postforge/postforge/internal/usecase/guard"
	healthuc "github.com/postforge/postforge/internal/usecase/health"
	postsuc "github.com/postforge/postforge/internal/usecase/posts"
	publishuc "github.com/postforge/postforge/internal/usecase/publish"
	thumbnailuc "github.com/postforge/postforge/internal/usecase/thumbnail"
	usageuc "github.com/postforge/postforge/internal/usecase/usage"
	"github.com/postforge/postforge/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting postforge API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Valkey speaks the same protocol as Redis, both drivers share the client.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register generation metrics explicitly (no init())
	metrics.RegisterGenerationMetrics()

	// Repositories
	usageTTL := time.Duration(cfg.Storage.UsageTTLHours) * time.Hour
	usageStore := usagerepo.New(store, cfg.Storage.KeyPrefix, usageTTL)
	postRepo := postrepo.New(store, cfg.Storage.KeyPrefix)

	// Usage guard — the budget gate every billable operation passes through
	dailyCap, err := cfg.DailyCap()
	if err != nil {
		logger.Fatal("Invalid daily cap", zap.Error(err))
	}
	unitPrice, err := cfg.UnitPrice()
	if err != nil {
		logger.Fatal("Invalid unit price", zap.Error(err))
	}
	guard := guarduc.New(usageStore, dailyCap, unitPrice, *cfg.Budget.FailOpen, logger)

	// Content generation provider
	generator := openaiGen.NewGenerator(&openaiGen.Config{
		APIKey:     cfg.Generation.APIKey,
		BaseURL:    cfg.Generation.BaseURL,
		Model:      cfg.Generation.Model,
		ImageModel: cfg.Generation.ImageModel,
		Logger:     logger,
	})

	// Blog publisher
	var publisher publishuc.Publisher
	switch cfg.Publisher.Driver {
	case "ghl":
		ghlClient := ghl.New(&ghl.Config{
			APIKey:  cfg.Publisher.GHL.APIKey,
			BlogID:  cfg.Publisher.GHL.BlogID,
			BaseURL: cfg.Publisher.GHL.BaseURL,
			Logger:  logger,
		})
		if details, err := ghlClient.GetBlogDetails(ctx); err != nil {
			logger.Warn("GHL blog check failed", zap.Error(err))
		} else {
			logger.Info("GHL blog resolved",
				zap.String("blog", details.Name),
				zap.String("url", details.URL),
			)
		}
		publisher = ghlClient
	case "wordpress":
		publisher = wordpress.New(&wordpress.Config{
			SiteURL:  cfg.Publisher.WordPress.SiteURL,
			Username: cfg.Publisher.WordPress.Username,
			Password: cfg.Publisher.WordPress.Password,
			Category: cfg.Publisher.WordPress.Category,
			Logger:   logger,
		})
	case "none":
		// Publishing disabled, endpoint returns 501.
	}
	if publisher != nil {
		logger.Info("Publisher configured", zap.String("target", publisher.Target()))
	}

	// Use case services
	genSvc := generateuc.New(generator, guard, postRepo, prompt.NewRegistry(), generateuc.Options{
		Estimates: generateuc.Estimates{
			Ideas:   cfg.Generation.Estimates.Ideas,
			Article: cfg.Generation.Estimates.Article,
		},
		MaxAttempts: cfg.Generation.MaxAttempts,
		TargetWords: cfg.Generation.TargetWords,
	}, logger)
	thumbSvc := thumbnailuc.New(generator, guard, postRepo, cfg.Generation.Estimates.Thumbnail, logger)
	pubSvc := publishuc.New(publisher, guard, postRepo, cfg.Generation.Estimates.Publish, logger)
	postSvc := postsuc.New(postRepo, 20, 100)
	usageSvc := usageuc.New(guard)
	healthSvc := healthuc.New(store, generator)

	// Create chi server
	server := chiTransport.NewServer(genSvc, thumbSvc, pubSvc, postSvc, usageSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
