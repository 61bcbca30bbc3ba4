package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/hybridqa/internal/domain"
)

func newTestChat(t *testing.T, h http.HandlerFunc) *Chat {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewChat(ChatConfig{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestChat_Complete(t *testing.T) {
	c := newTestChat(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req["model"])
		assert.EqualValues(t, 512, req["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" yes "}}]}`))
	})

	got, err := c.Complete(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "yes", got)
	assert.Equal(t, "openai", c.Name())
}

func TestChat_RateLimitedNotRetried(t *testing.T) {
	calls := 0
	c := newTestChat(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"requests","code":"rate_limit_exceeded"}}`))
	})

	_, err := c.Complete(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrProviderRateLimited)
	assert.Equal(t, 1, calls)
}

func TestNewChat_MissingKey(t *testing.T) {
	_, err := NewChat(ChatConfig{})
	assert.Error(t, err)
}
