// Package llm talks to the chat model behind the in-app assistant. Mistral
// exposes an OpenAI-compatible API, so the OpenAI SDK is pointed at it.
package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
)

const (
	DefaultBaseURL = "https://api.mistral.ai/v1"
	DefaultModel   = "mistral-small-latest"
	DefaultTimeout = 30 * time.Second
)

var errNoChoices = errors.New("no choices in response")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type MistralClient struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

func NewMistralClient(apiKey, baseURL, model string, logger *zap.Logger, opts ...option.RequestOption) *MistralClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
	}

	return &MistralClient{
		client: openai.NewClient(append(base, opts...)...),
		model:  model,
		logger: logger,
	}
}

// Complete sends the system prompt followed by the conversation and returns
// the assistant's reply text.
func (c *MistralClient) Complete(ctx context.Context, system string, history []Message) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(system))
	for _, m := range history {
		if m.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Content))
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		c.logger.Error("chat completion failed", zap.String("model", c.model), zap.Error(err))
		return "", apperr.Upstream(err, "Failed to get a valid response from the assistant")
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Upstream(errNoChoices, "Failed to get a valid response from the assistant")
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("chat completion",
		zap.String("model", c.model),
		zap.Int("messages", len(messages)),
		zap.Int("reply_length", len(content)),
		zap.Duration("latency", time.Since(start)))
	return content, nil
}
