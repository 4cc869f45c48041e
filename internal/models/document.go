package models

import "time"

// Entity is a named entity extracted from document text, in document order.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Document is the durable record for one processed document. Its ID equals the
// job ID that produced it.
type Document struct {
	ID        string    `json:"id" db:"id"`
	Filename  string    `json:"filename" db:"filename"`
	MIME      string    `json:"mime" db:"mime"`
	BlobURI   string    `json:"blob_uri" db:"blob_uri"`
	Status    JobStatus `json:"status" db:"status"`
	Text      string    `json:"text" db:"text"`
	Entities  []Entity  `json:"entities" db:"entities"`
	Tags      []string  `json:"tags" db:"tags"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentChunk is one indexed chunk of a document's extracted text.
// ChunkIndex values for a document are dense over the kept (non-blank) chunks.
type DocumentChunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
	Vector     []float32 `json:"-"`
}

// DocumentSummary is one lexical search hit.
type DocumentSummary struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Status     JobStatus `json:"status"`
	Tags       []string  `json:"tags"`
	PreviewURL string    `json:"preview_url,omitempty"`
}

// Answer is the result of a semantic question over one document: the generated
// answer plus the retrieved chunks it was grounded on, best match first.
type Answer struct {
	Answer string   `json:"answer"`
	Chunks []string `json:"chunks"`
}
