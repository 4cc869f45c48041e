// Package vector provides the chunk-embedding index used for semantic retrieval.
package vector

import (
	"context"

	"github.com/hyperjump/yomitori/internal/models"
)

// Index stores chunk embeddings partitioned by document and answers
// similarity queries filtered to one document.
type Index interface {
	// ReplaceDocument removes any chunks previously indexed for docID and adds
	// the given set in one step, so reprocessing never mixes chunk sets.
	ReplaceDocument(ctx context.Context, docID string, chunks []*models.DocumentChunk) error
	// SearchDocument returns the top-k chunks of docID by inner product
	// against query (cosine similarity for normalized vectors), best first.
	SearchDocument(ctx context.Context, docID string, query []float32, k int) ([]*ChunkHit, error)
	// ChunksByDocument returns the indexed chunks of docID ordered by chunk index.
	ChunksByDocument(ctx context.Context, docID string) ([]*models.DocumentChunk, error)
	RemoveDocument(ctx context.Context, docID string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// ChunkHit is a single similarity search hit.
type ChunkHit struct {
	Chunk *models.DocumentChunk
	Score float64
}
