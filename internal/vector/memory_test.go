package vector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/yomitori/internal/models"
)

func chunk(docID string, idx int, text string, vec []float32) *models.DocumentChunk {
	return &models.DocumentChunk{
		ID:         docID + "_" + string(rune('0'+idx)),
		DocumentID: docID,
		ChunkIndex: idx,
		Text:       text,
		Vector:     vec,
	}
}

func TestMemoryIndex_ReplaceSearch(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	err = idx.ReplaceDocument(ctx, "doc1", []*models.DocumentChunk{
		chunk("doc1", 0, "first", []float32{1, 0, 0}),
		chunk("doc1", 1, "second", []float32{0.9, 0.1, 0}),
		chunk("doc1", 2, "third", []float32{0, 1, 0}),
	})
	if err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}

	hits, err := idx.SearchDocument(ctx, "doc1", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Chunk.Text != "first" {
		t.Errorf("top hit should be first, got %s", hits[0].Chunk.Text)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("hits not sorted by score: %v %v", hits[0].Score, hits[1].Score)
	}
}

func TestMemoryIndex_SearchFiltersByDocument(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	_ = idx.ReplaceDocument(ctx, "doc1", []*models.DocumentChunk{
		chunk("doc1", 0, "mine", []float32{1, 0}),
	})
	_ = idx.ReplaceDocument(ctx, "doc2", []*models.DocumentChunk{
		chunk("doc2", 0, "other", []float32{1, 0}),
	})

	hits, err := idx.SearchDocument(ctx, "doc1", []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Chunk.DocumentID != "doc1" {
		t.Errorf("hit from wrong document: %s", hits[0].Chunk.DocumentID)
	}
}

func TestMemoryIndex_ReplaceSwapsChunkSet(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	_ = idx.ReplaceDocument(ctx, "doc1", []*models.DocumentChunk{
		chunk("doc1", 0, "old a", []float32{1, 0}),
		chunk("doc1", 1, "old b", []float32{0, 1}),
		chunk("doc1", 2, "old c", []float32{1, 1}),
	})

	err := idx.ReplaceDocument(ctx, "doc1", []*models.DocumentChunk{
		chunk("doc1", 0, "new a", []float32{1, 0}),
		chunk("doc1", 1, "new b", []float32{0, 1}),
	})
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := idx.ChunksByDocument(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks after replace, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, ch.ChunkIndex)
		}
	}
	if chunks[0].Text != "new a" || chunks[1].Text != "new b" {
		t.Errorf("stale chunks survived replace: %q %q", chunks[0].Text, chunks[1].Text)
	}
}

func TestMemoryIndex_ReplaceWithEmptyClears(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	_ = idx.ReplaceDocument(ctx, "doc1", []*models.DocumentChunk{
		chunk("doc1", 0, "a", []float32{1, 0}),
	})
	if err := idx.ReplaceDocument(ctx, "doc1", nil); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 0 {
		t.Errorf("expected empty index, got size %d", idx.Size())
	}
}

func TestMemoryIndex_ReplaceValidation(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	if err := idx.ReplaceDocument(ctx, "", nil); err == nil {
		t.Error("expected error for empty document id")
	}
	err := idx.ReplaceDocument(ctx, "doc1", []*models.DocumentChunk{
		chunk("doc2", 0, "wrong owner", []float32{1, 0}),
	})
	if err == nil {
		t.Error("expected error for mismatched document id")
	}
	err = idx.ReplaceDocument(ctx, "doc1", []*models.DocumentChunk{
		chunk("doc1", 0, "wrong dims", []float32{1, 0, 0}),
	})
	if err == nil {
		t.Error("expected error for dimension mismatch")
	}
}

func TestMemoryIndex_Remove(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	_ = idx.ReplaceDocument(ctx, "doc1", []*models.DocumentChunk{
		chunk("doc1", 0, "a", []float32{1, 0}),
	})
	_ = idx.ReplaceDocument(ctx, "doc2", []*models.DocumentChunk{
		chunk("doc2", 0, "b", []float32{0, 1}),
	})
	if err := idx.RemoveDocument(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 1 {
		t.Errorf("expected size 1, got %d", idx.Size())
	}
}

func TestMemoryIndex_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	ctx := context.Background()

	idx, _ := NewMemoryIndex(3)
	_ = idx.ReplaceDocument(ctx, "doc1", []*models.DocumentChunk{
		chunk("doc1", 0, "hello", []float32{0.1, 0.2, 0.3}),
		chunk("doc1", 1, "world", []float32{0.4, 0.5, 0.6}),
	})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewMemoryIndex(3)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("expected 2 chunks after load, got %d", loaded.Size())
	}
	chunks, err := loaded.ChunksByDocument(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if chunks[0].Text != "hello" || chunks[1].Text != "world" {
		t.Errorf("chunk text lost in roundtrip: %q %q", chunks[0].Text, chunks[1].Text)
	}
	if chunks[1].Vector[2] != 0.6 {
		t.Errorf("vector lost in roundtrip: %v", chunks[1].Vector)
	}
}

func TestMemoryIndex_LoadMissingFile(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	if err := idx.Load(filepath.Join(t.TempDir(), "absent.bin")); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 0 {
		t.Errorf("expected empty index, got %d", idx.Size())
	}
}

func TestMemoryIndex_LoadDimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	idx, _ := NewMemoryIndex(3)
	_ = idx.ReplaceDocument(context.Background(), "doc1", []*models.DocumentChunk{
		chunk("doc1", 0, "a", []float32{1, 2, 3}),
	})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	other, _ := NewMemoryIndex(4)
	if err := other.Load(path); err == nil {
		t.Error("expected dimension mismatch error")
	}
}
