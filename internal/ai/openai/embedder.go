// Package openai implements the ai collaborator contracts against
// OpenAI-compatible APIs (OpenAI, Ollama, LocalAI, vLLM) via langchaingo.
package openai

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Embedder produces embeddings through an OpenAI-compatible embeddings API.
type Embedder struct {
	embedder   embeddings.Embedder
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates an embedder for the given host and model. dimensions
// must match the model's output dimension.
func NewEmbedder(host, model string, dimensions int, logger *zap.Logger) (*Embedder, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken(apiToken()),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}
	emb, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &Embedder{embedder: emb, dimensions: dimensions, logger: logger}, nil
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding provider returned no vectors")
	}
	return vecs[0], nil
}

// EmbedTexts generates embeddings for multiple texts in one batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings", zap.Int("count", len(texts)))
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed texts: %w", err)
	}
	for i, v := range vecs {
		if len(v) != e.dimensions {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), e.dimensions)
		}
	}
	return vecs, nil
}

// Dimensions returns the configured embedding dimension.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// apiToken returns the provider API key, or a placeholder accepted by local
// OpenAI-compatible services that do not require authentication.
func apiToken() string {
	if token := os.Getenv("OPENAI_API_KEY"); token != "" {
		return token
	}
	return "none"
}
