package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/hybridqa/internal/domain"
)

type recordingWait struct {
	waits []time.Duration
	err   error
}

func (r *recordingWait) wait(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return r.err
}

func rateLimited(msg string) error { return domain.NewProviderError("gemini", 429, msg) }

func TestRateLimitRetry_SucceedsAfterRetry(t *testing.T) {
	p := &mockProvider{name: "gemini", results: []mockResult{
		{err: rateLimited("Quota exceeded. Please retry in 2.3s.")},
		{answer: "ok"},
	}}
	w := &recordingWait{}
	r := WithRateLimitRetry(p, RetryPolicy{MaxAttempts: 3, DefaultWait: 20 * time.Second, Wait: w.wait})

	answer, err := r.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "ok" {
		t.Errorf("unexpected answer %q", answer)
	}
	if p.calls != 2 {
		t.Errorf("expected 2 calls, got %d", p.calls)
	}
	if len(w.waits) != 1 || w.waits[0] != 3*time.Second {
		t.Errorf("expected one 3s wait, got %v", w.waits)
	}
}

func TestRateLimitRetry_CapPropagatesRateLimit(t *testing.T) {
	p := &mockProvider{name: "gemini", results: []mockResult{{err: rateLimited("slow down")}}}
	w := &recordingWait{}
	r := WithRateLimitRetry(p, RetryPolicy{MaxAttempts: 3, DefaultWait: 20 * time.Second, Wait: w.wait})

	_, err := r.Complete(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrProviderRateLimited) {
		t.Fatalf("expected ErrProviderRateLimited, got %v", err)
	}
	if p.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", p.calls)
	}
	if len(w.waits) != 2 {
		t.Fatalf("expected 2 waits, got %d", len(w.waits))
	}
	for _, d := range w.waits {
		if d != 20*time.Second {
			t.Errorf("expected default 20s wait, got %v", d)
		}
	}
}

func TestRateLimitRetry_HardErrorNotRetried(t *testing.T) {
	p := &mockProvider{name: "gemini", results: []mockResult{{err: domain.NewProviderError("gemini", 400, "bad")}}}
	w := &recordingWait{}
	r := WithRateLimitRetry(p, RetryPolicy{MaxAttempts: 3, DefaultWait: time.Second, Wait: w.wait})

	_, err := r.Complete(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrProviderError) {
		t.Fatalf("expected ErrProviderError, got %v", err)
	}
	if p.calls != 1 || len(w.waits) != 0 {
		t.Errorf("expected a single call and no wait, got calls=%d waits=%d", p.calls, len(w.waits))
	}
}

func TestRateLimitRetry_WaitCanceled(t *testing.T) {
	p := &mockProvider{name: "gemini", results: []mockResult{{err: rateLimited("retry in 1s")}}}
	w := &recordingWait{err: context.Canceled}
	r := WithRateLimitRetry(p, RetryPolicy{MaxAttempts: 3, DefaultWait: time.Second, Wait: w.wait})

	_, err := r.Complete(context.Background(), "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected 1 call, got %d", p.calls)
	}
}

func TestRateLimitRetry_TimerHonoursContext(t *testing.T) {
	p := &mockProvider{name: "gemini", results: []mockResult{{err: rateLimited("retry in 60s")}}}
	r := WithRateLimitRetry(p, RetryPolicy{MaxAttempts: 3, DefaultWait: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Complete(ctx, "prompt")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("wait must stop when the context ends")
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"integer", rateLimited("Please retry in 7s."), 7 * time.Second},
		{"fraction rounds up", rateLimited("retry in 12.01s"), 13 * time.Second},
		{"case insensitive", rateLimited("RETRY IN 4S"), 4 * time.Second},
		{"no hint", rateLimited("Resource exhausted"), 20 * time.Second},
		{"plain error", errors.New("please retry in 5s"), 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RetryAfter(tt.err, 20*time.Second); got != tt.want {
				t.Errorf("RetryAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}
