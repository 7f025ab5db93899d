package openai

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/newsgpt/newsgpt/internal/domain"
)

// ChatClient streams chat completions fragment by fragment.
type ChatClient struct {
	client *openai.Client
	logger *zap.Logger
}

// ChatConfig holds the chat provider settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Logger  *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat client.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatClient{
		client: openai.NewClientWithConfig(clientCfg),
		logger: cfg.Logger,
	}
}

// StreamCompletion runs one generation and relays each content delta to the
// handler, in arrival order, one at a time. Exactly one of
// OnComplete/OnError fires, except when OnFragment reports a write failure
// (client gone): the stream is then released with no terminal callback and
// the write error is returned.
func (c *ChatClient) StreamCompletion(ctx context.Context, req domain.GenerationRequest, h domain.StreamHandler) error {
	req = req.WithDefaults()

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stream:      true,
	})
	if err != nil {
		wrapped := parseAPIError("chat completion", err)
		h.OnError(wrapped)
		return wrapped
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			h.OnComplete()
			return nil
		}
		if err != nil {
			wrapped := parseAPIError("chat completion", err)
			h.OnError(wrapped)
			return wrapped
		}

		if len(resp.Choices) == 0 {
			continue
		}
		content := resp.Choices[0].Delta.Content
		if content == "" {
			continue
		}

		if err := h.OnFragment(content); err != nil {
			c.logger.Warn("Stopping generation stream, fragment write failed", zap.Error(err))
			return err
		}
	}
}
