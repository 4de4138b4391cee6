// Package domain holds the core types and sentinel errors of the service.
package domain

import "errors"

var (
	// ErrInvalidInput signals malformed caller input (empty user, negative units).
	ErrInvalidInput = errors.New("invalid input")
	// ErrPostNotFound signals a missing blog post.
	ErrPostNotFound = errors.New("post not found")
	// ErrPromptNotFound signals a missing prompt template.
	ErrPromptNotFound = errors.New("prompt template not found")
	// ErrBudgetExceeded signals that the daily spend cap denies the operation.
	ErrBudgetExceeded = errors.New("daily budget exceeded")
	// ErrStorageUnavailable signals that the usage store was unreachable while
	// the guard is configured fail-closed.
	ErrStorageUnavailable = errors.New("usage storage unavailable")
	// ErrRateLimited signals a rate limit hit on an upstream provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrGenerationProviderError signals an LLM provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrPublishProviderError signals a publishing backend failure.
	ErrPublishProviderError = errors.New("publish provider error")
	// ErrPublishUnauthorized signals rejected publisher credentials.
	ErrPublishUnauthorized = errors.New("publisher rejected credentials")
	// ErrPublisherNotConfigured signals missing publisher configuration.
	ErrPublisherNotConfigured = errors.New("publisher not configured")
)
