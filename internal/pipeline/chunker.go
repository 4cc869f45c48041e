// Package pipeline orchestrates the asynchronous document processing flow:
// download, extraction, annotation, tagging, chunking, embedding, indexing,
// and persistence.
package pipeline

import "strings"

// Chunker splits text into overlapping fixed-size character windows.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker with the given window size and overlap, in
// characters. Invalid values fall back to single-character windows and stride.
func NewChunker(size, overlap int) *Chunker {
	if size < 1 {
		size = 1
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk returns the non-blank windows of text in order. Windows start at
// offsets 0, size-overlap, 2*(size-overlap), ...; the final window may be
// shorter than size. Whitespace-only windows are dropped, so the position of
// a chunk in the returned slice is its dense chunk index.
func (c *Chunker) Chunk(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	step := c.size - c.overlap
	if step <= 0 {
		step = 1
	}
	chunks := make([]string, 0, (len(runes)+step-1)/step)
	for i := 0; i < len(runes); i += step {
		end := i + c.size
		if end > len(runes) {
			end = len(runes)
		}
		window := string(runes[i:end])
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, window)
		}
		if end >= len(runes) {
			break
		}
	}
	return chunks
}
