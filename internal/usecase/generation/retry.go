package generation

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/logger"
	"github.com/kailas-cloud/hybridqa/internal/metrics"
)

var retryInPattern = regexp.MustCompile(`(?i)retry\s+in\s+([\d.]+)s`)

// RetryPolicy bounds rate-limit retries.
type RetryPolicy struct {
	// MaxAttempts counts the first call.
	MaxAttempts int
	// DefaultWait applies when the provider suggests no delay.
	DefaultWait time.Duration
	// Wait blocks for d or until ctx is done. Nil uses a timer.
	Wait func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy allows three attempts with a 20s fallback wait.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, DefaultWait: 20 * time.Second}
}

// RateLimitRetry retries its provider on HTTP 429. Any other error is returned at once.
type RateLimitRetry struct {
	inner  Provider
	policy RetryPolicy
}

// WithRateLimitRetry decorates a provider with bounded 429 backoff.
func WithRateLimitRetry(inner Provider, policy RetryPolicy) *RateLimitRetry {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.Wait == nil {
		policy.Wait = timerWait
	}
	return &RateLimitRetry{inner: inner, policy: policy}
}

// Name returns the inner provider name.
func (r *RateLimitRetry) Name() string { return r.inner.Name() }

// Complete calls the provider until success, a non-429 error, or the attempt cap.
func (r *RateLimitRetry) Complete(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContext(ctx)
	name := r.inner.Name()

	for attempt := 1; ; attempt++ {
		answer, err := r.inner.Complete(ctx, prompt)
		if err == nil {
			if attempt > 1 {
				log.Debug("Generation succeeded after retry", zap.String("provider", name), zap.Int("attempt", attempt))
			}
			return answer, nil
		}
		if !errors.Is(err, domain.ErrProviderRateLimited) || attempt >= r.policy.MaxAttempts {
			return "", err
		}

		wait := RetryAfter(err, r.policy.DefaultWait)
		log.Warn("Rate limited, retrying",
			zap.String("provider", name),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.policy.MaxAttempts),
		)
		metrics.GenerationRateLimitRetries.WithLabelValues(name).Inc()

		if werr := r.policy.Wait(ctx, wait); werr != nil {
			return "", werr
		}
	}
}

// RetryAfter extracts a "retry in N s" hint from err, rounded up to whole seconds.
func RetryAfter(err error, fallback time.Duration) time.Duration {
	msg := err.Error()
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		msg = pe.Message
	}

	m := retryInPattern.FindStringSubmatch(msg)
	if m == nil {
		return fallback
	}
	secs, perr := strconv.ParseFloat(m[1], 64)
	if perr != nil {
		return fallback
	}
	return time.Duration(math.Ceil(secs)) * time.Second
}

func timerWait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
