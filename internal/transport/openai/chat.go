package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/kailas-cloud/hybridqa/internal/domain"
)

// ChatName labels the OpenAI chat provider.
const ChatName = "openai"

// ChatConfig holds OpenAI chat settings. Zero values take gpt-3.5-turbo, 512 tokens, 0.2.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Chat answers prompts with the OpenAI chat completions API.
type Chat struct {
	client openaisdk.Client
	cfg    ChatConfig
}

// NewChat creates an OpenAI chat client. SDK retries are disabled so a 429
// surfaces as a provider error.
func NewChat(cfg ChatConfig) (*Chat, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: missing api key")
	}
	if cfg.Model == "" {
		cfg.Model = string(openaisdk.ChatModelGPT3_5Turbo)
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
	return &Chat{client: openaisdk.NewClient(opts...), cfg: cfg}, nil
}

// Name implements generation.Provider.
func (c *Chat) Name() string { return ChatName }

// Complete sends prompt as a single user message.
func (c *Chat) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.cfg.Model),
		Messages:    []openaisdk.ChatCompletionMessageParamUnion{openaisdk.UserMessage(prompt)},
		MaxTokens:   param.NewOpt(c.cfg.MaxTokens),
		Temperature: param.NewOpt(c.cfg.Temperature),
	})
	if err != nil {
		return "", mapChatError(err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewProviderError(ChatName, 0, "no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func mapChatError(err error) error {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return domain.NewProviderError(ChatName, apiErr.StatusCode, msg)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai request: %w", err)
	}
	return domain.NewProviderError(ChatName, 0, err.Error())
}
