package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Completer generates answers through an OpenAI-compatible chat API.
type Completer struct {
	client llms.Model
	logger *zap.Logger
}

// NewCompleter creates a completer for the given host and chat model.
func NewCompleter(host, model string, logger *zap.Logger) (*Completer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken(apiToken()),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}
	return &Completer{client: client, logger: logger}, nil
}

// Complete generates text for prompt at low temperature.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart(prompt)}},
	}
	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.1))
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}
