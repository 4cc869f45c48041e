// Package ai defines the contracts for the external model collaborators:
// embedding, entity annotation, and language generation.
package ai

import (
	"context"

	"github.com/hyperjump/yomitori/internal/models"
)

// Embedder generates vector embeddings from text. The dimension is fixed for
// the lifetime of one vector index; changing providers requires re-indexing.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// EmbedTexts generates embeddings for multiple texts in one batch, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the embedding dimension.
	Dimensions() int
}

// Annotator extracts structured information from document text.
// Implementations must be safe for concurrent use.
type Annotator interface {
	// Annotate returns the named entities found in text, in document order.
	Annotate(ctx context.Context, text string) ([]models.Entity, error)
	// NounPhrases returns the syntactic noun phrases of text. Used only for
	// tag derivation, which degrades gracefully when this fails.
	NounPhrases(ctx context.Context, text string) ([]string, error)
}

// Completer generates text from a prompt. Used only by the question-answering
// path.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
