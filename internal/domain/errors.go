package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a malformed request (e.g. blank query).
	ErrValidation = errors.New("validation failed")
	// ErrServiceNotReady signals that a backing service handle is absent or still warming up.
	ErrServiceNotReady = errors.New("service not ready")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrProviderRateLimited signals an HTTP 429 from a generation provider.
	ErrProviderRateLimited = errors.New("generation provider rate limited")
	// ErrProviderError signals any other generation provider failure.
	ErrProviderError = errors.New("generation provider error")
)

// ProviderError describes a failed call to a generation provider.
// It unwraps to ErrProviderRateLimited for HTTP 429 and to ErrProviderError otherwise.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	if e.RateLimited() {
		return ErrProviderRateLimited
	}
	return ErrProviderError
}

// RateLimited reports whether the provider answered with HTTP 429.
func (e *ProviderError) RateLimited() bool { return e.StatusCode == 429 }

// NewProviderError creates a provider error.
func NewProviderError(provider string, statusCode int, message string) error {
	return &ProviderError{Provider: provider, StatusCode: statusCode, Message: message}
}
