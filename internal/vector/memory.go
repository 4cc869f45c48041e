package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hyperjump/yomitori/internal/models"
)

// MemoryIndex is an in-memory chunk index using brute-force inner product
// search, suitable for the document-catalog scale this service targets.
type MemoryIndex struct {
	dimensions int
	chunks     []*models.DocumentChunk
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory index for vectors of the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		chunks:     make([]*models.DocumentChunk, 0),
	}, nil
}

// ReplaceDocument swaps docID's chunk set for the given one under a single
// lock acquisition, so readers never observe chunks from two runs mixed.
func (m *MemoryIndex) ReplaceDocument(ctx context.Context, docID string, chunks []*models.DocumentChunk) error {
	if docID == "" {
		return fmt.Errorf("document id is empty")
	}
	for _, ch := range chunks {
		if ch.DocumentID != docID {
			return fmt.Errorf("chunk %s belongs to document %s, not %s", ch.ID, ch.DocumentID, docID)
		}
		if len(ch.Vector) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(ch.Vector), m.dimensions)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]*models.DocumentChunk, 0, len(m.chunks)+len(chunks))
	for _, ch := range m.chunks {
		if ch.DocumentID != docID {
			kept = append(kept, ch)
		}
	}
	for _, ch := range chunks {
		vec := make([]float32, m.dimensions)
		copy(vec, ch.Vector)
		kept = append(kept, &models.DocumentChunk{
			ID:         ch.ID,
			DocumentID: ch.DocumentID,
			ChunkIndex: ch.ChunkIndex,
			Text:       ch.Text,
			Vector:     vec,
		})
	}
	m.chunks = kept
	return nil
}

// SearchDocument returns the top-k chunks of docID by inner product.
func (m *MemoryIndex) SearchDocument(ctx context.Context, docID string, query []float32, k int) ([]*ChunkHit, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 {
		return nil, nil
	}
	hits := make([]*ChunkHit, 0)
	for _, ch := range m.chunks {
		if ch.DocumentID != docID {
			continue
		}
		var dot float64
		for j := 0; j < m.dimensions; j++ {
			dot += float64(query[j] * ch.Vector[j])
		}
		hits = append(hits, &ChunkHit{Chunk: ch, Score: dot})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// ChunksByDocument returns docID's chunks ordered by chunk index.
func (m *MemoryIndex) ChunksByDocument(ctx context.Context, docID string) ([]*models.DocumentChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.DocumentChunk
	for _, ch := range m.chunks {
		if ch.DocumentID == docID {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

// RemoveDocument removes all chunks for docID.
func (m *MemoryIndex) RemoveDocument(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]*models.DocumentChunk, 0, len(m.chunks))
	for _, ch := range m.chunks {
		if ch.DocumentID != docID {
			kept = append(kept, ch)
		}
	}
	m.chunks = kept
	return nil
}

// Save persists the index to path. Directory is created if needed.
// Format: dimensions (4), n (4), then per chunk: id, documentID, text as
// length-prefixed strings, chunkIndex (4), vector (dimensions*4 bytes).
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.chunks))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, ch := range m.chunks {
		if err := writeString(f, ch.ID); err != nil {
			return fmt.Errorf("write chunk id: %w", err)
		}
		if err := writeString(f, ch.DocumentID); err != nil {
			return fmt.Errorf("write document id: %w", err)
		}
		if err := writeString(f, ch.Text); err != nil {
			return fmt.Errorf("write chunk text: %w", err)
		}
		if err := binary.Write(f, binary.LittleEndian, uint32(ch.ChunkIndex)); err != nil {
			return fmt.Errorf("write chunk index: %w", err)
		}
		if _, err := f.Write(float32SliceToBytes(ch.Vector)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads the index from path and replaces the in-memory contents.
// Dimensions must match. A missing file is not an error; the index is unchanged.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", dim, m.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	chunks := make([]*models.DocumentChunk, 0, n)
	buf := make([]byte, m.dimensions*4)
	for i := uint32(0); i < n; i++ {
		id, err := readString(f)
		if err != nil {
			return fmt.Errorf("read chunk id: %w", err)
		}
		docID, err := readString(f)
		if err != nil {
			return fmt.Errorf("read document id: %w", err)
		}
		text, err := readString(f)
		if err != nil {
			return fmt.Errorf("read chunk text: %w", err)
		}
		var chunkIndex uint32
		if err := binary.Read(f, binary.LittleEndian, &chunkIndex); err != nil {
			return fmt.Errorf("read chunk index: %w", err)
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		chunks = append(chunks, &models.DocumentChunk{
			ID:         id,
			DocumentID: docID,
			ChunkIndex: int(chunkIndex),
			Text:       text,
			Vector:     bytesToFloat32Slice(buf),
		})
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = chunks
	return nil
}

// Size returns the number of chunks in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

func writeString(f *os.File, s string) error {
	b := []byte(s)
	if err := binary.Write(f, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := f.Write(b)
	return err
}

func readString(f *os.File) (string, error) {
	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(f, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
