package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// ErrEmptyResponse is returned when the API answers without any choice.
var ErrEmptyResponse = errors.New("openai: empty response")

// Completer sends one system+user exchange and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAIClient implements Completer using the OpenAI Chat Completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string // optional, for OpenAI-compatible gateways
	Temperature float32
}

// NewOpenAI returns nil when no API key is configured; callers treat a nil
// Completer as "LLM tier unavailable".
func NewOpenAI(cfg Config) *OpenAIClient {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.2
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cc), model: model, temperature: temp}
}

// Model returns the configured model name.
func (o *OpenAIClient) Model() string { return o.model }

func (o *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: o.temperature,
	})
	if err != nil {
		slog.Error("openai: chat completion error", "model", o.model, "err", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
