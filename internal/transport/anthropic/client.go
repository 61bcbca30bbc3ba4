package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kailas-cloud/hybridqa/internal/domain"
)

// Defaults for the Anthropic Messages API.
const (
	Name         = "anthropic"
	DefaultModel = "claude-3-5-haiku-latest"
)

// Config holds Anthropic settings.
type Config struct {
	APIKey      string
	BaseURL     string // optional, useful for testing against a mock server
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Client answers prompts with the Anthropic Messages API.
type Client struct {
	client anthropicsdk.Client
	cfg    Config
}

// New creates an Anthropic client. Returns an error if the API key is missing.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: missing api key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.2
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{client: anthropicsdk.NewClient(opts...), cfg: cfg}, nil
}

// Name implements generation.Provider.
func (c *Client) Name() string { return Name }

// Complete sends prompt as a single user message and joins the text blocks of the reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
		},
		Temperature: anthropicsdk.Float(c.cfg.Temperature),
	})
	if err != nil {
		return "", mapError(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", domain.NewProviderError(Name, 0, "no text in response")
	}
	return strings.TrimSpace(b.String()), nil
}

func mapError(err error) error {
	var apiErr *anthropicsdk.Error
	if errors.As(err, &apiErr) {
		return domain.NewProviderError(Name, apiErr.StatusCode, apiErr.Error())
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("anthropic request: %w", err)
	}
	return domain.NewProviderError(Name, 0, err.Error())
}
