package generation

import "context"

// Provider is a single LLM backend. Adapters return *domain.ProviderError on non-2xx responses.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
