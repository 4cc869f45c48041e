package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/hyperjump/yomitori/internal/models"
)

// jsonAttempts bounds re-asks when the model returns malformed JSON.
const jsonAttempts = 3

// Annotator extracts entities and noun phrases through an OpenAI-compatible
// chat API in JSON mode.
type Annotator struct {
	client llms.Model
	logger *zap.Logger
}

// NewAnnotator creates an annotator for the given host and chat model.
func NewAnnotator(host, model string, logger *zap.Logger) (*Annotator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken(apiToken()),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create annotation client: %w", err)
	}
	return &Annotator{client: client, logger: logger}, nil
}

type entityResponse struct {
	Entities []models.Entity `json:"entities"`
}

type nounPhraseResponse struct {
	NounPhrases []string `json:"noun_phrases"`
}

// Annotate returns the named entities of text, in document order.
func (a *Annotator) Annotate(ctx context.Context, text string) ([]models.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var resp entityResponse
	if err := a.generateJSON(ctx, entitySystemPrompt, text, &resp); err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	entities := make([]models.Entity, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		e.Text = strings.TrimSpace(e.Text)
		if e.Text == "" {
			continue
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// NounPhrases returns the syntactic noun phrases of text.
func (a *Annotator) NounPhrases(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var resp nounPhraseResponse
	if err := a.generateJSON(ctx, nounPhraseSystemPrompt, text, &resp); err != nil {
		return nil, fmt.Errorf("noun phrases: %w", err)
	}
	return resp.NounPhrases, nil
}

// generateJSON sends a system+user chat request in JSON mode and unmarshals
// the response into out, retrying on malformed JSON.
func (a *Annotator) generateJSON(ctx context.Context, systemPrompt, text string, out any) error {
	content := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextPart(systemPrompt)}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart(text)}},
	}
	var lastErr error
	for attempt := 0; attempt < jsonAttempts; attempt++ {
		response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			return err
		}
		if len(response.Choices) == 0 {
			return fmt.Errorf("model returned no choices")
		}
		raw := stripCodeFences(response.Choices[0].Content)
		if err := json.Unmarshal([]byte(raw), out); err != nil {
			lastErr = err
			a.logger.Warn("malformed annotation response",
				zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		return nil
	}
	return fmt.Errorf("parse annotation response: %w", lastErr)
}

// stripCodeFences removes markdown code fences some models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
