package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/amoylab/coursechat/internal/common/config"
)

// ErrEmptyCompletion is returned when the model produced no choices
var ErrEmptyCompletion = errors.New("completion has no choices")

// Client wraps the OpenAI client with our configuration
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates a new OpenAI client. Requests are not retried.
func NewClient(cfg *config.OpenAIConfig) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Model returns the configured chat model
func (c *Client) Model() string {
	return c.model
}

// ChatCompletion handles chat completion requests
func (c *Client) ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: messages,
			Model:    c.model,
		},
	)
}

// Complete sends a system prompt and one user message and returns the reply text
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}
	completion, err := c.ChatCompletion(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return completion.Choices[0].Message.Content, nil
}
