// Package mock provides deterministic test doubles for the ai collaborator
// contracts. Behavior can be overridden per test via function fields.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync/atomic"
)

// Embedder is a test double for ai.Embedder. The same text always yields the
// same unit-length vector, so similarity comparisons are stable across runs.
// Safe for concurrent use, as the ai.Embedder contract requires.
type Embedder struct {
	// EmbedTextsFunc overrides EmbedTexts (and EmbedText) when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	dimensions int
	calls      atomic.Int64
}

// NewEmbedder returns a deterministic embedder of the given dimension.
func NewEmbedder(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &Embedder{dimensions: dimensions}
}

// EmbedText generates a deterministic embedding for text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedTexts generates deterministic embeddings for each text.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	if e.EmbedTextsFunc != nil {
		return e.EmbedTextsFunc(ctx, texts)
	}
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = deterministicVector(text, e.dimensions)
	}
	return vecs, nil
}

// Dimensions returns the embedding dimension.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Calls returns how many times an embed method was invoked.
func (e *Embedder) Calls() int { return int(e.calls.Load()) }

// deterministicVector derives a unit vector from the FNV hash of text.
func deterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()
	vec := make([]float32, dim)
	var sum float64
	for i := 0; i < dim; i++ {
		vec[i] = float32(math.Sin(float64(seed)*float64(i+1))*0.1 + 0.01)
		sum += float64(vec[i]) * float64(vec[i])
	}
	norm := float32(1.0 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= norm
	}
	return vec
}
