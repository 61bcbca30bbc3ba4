package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kailas-cloud/hybridqa/internal/domain"
)

// Defaults for the Gemini API.
const (
	Name         = "gemini"
	DefaultModel = "gemini-2.0-flash"
)

// Config holds Gemini settings. BaseURL is optional (tests, proxies).
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int32
	Temperature float32
}

// Client answers prompts with the Gemini generateContent API.
// It does not retry; wrap it with generation.WithRateLimitRetry.
type Client struct {
	client *genai.Client
	cfg    Config
}

// New creates a Gemini client. Returns an error if the API key is missing.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: missing api key")
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

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{client: client, cfg: cfg}, nil
}

// Name implements generation.Provider.
func (c *Client) Name() string { return Name }

// Complete sends prompt as a single user turn.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.cfg.Temperature),
		MaxOutputTokens: c.cfg.MaxTokens,
	})
	if err != nil {
		return "", mapError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", domain.NewProviderError(Name, 0, "no candidates in response")
	}
	return strings.TrimSpace(resp.Text()), nil
}

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewProviderError(Name, apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return domain.NewProviderError(Name, apiErrPtr.Code, apiErrPtr.Message)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gemini request: %w", err)
	}
	return domain.NewProviderError(Name, 0, err.Error())
}
