// Package models defines core data structures for jobs, documents, and retrieval results.
package models

import "time"

// JobStatus is the lifecycle state of a processing job.
type JobStatus string

const (
	StatusReceived      JobStatus = "RECEIVED"
	StatusUploading     JobStatus = "UPLOADING"
	StatusQueued        JobStatus = "QUEUED"
	StatusOCRInProgress JobStatus = "OCR_IN_PROGRESS"
	StatusNLPInProgress JobStatus = "NLP_IN_PROGRESS"
	StatusCompleted     JobStatus = "COMPLETED"
	StatusFailed        JobStatus = "FAILED"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is one of the known lifecycle states.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusReceived, StatusUploading, StatusQueued,
		StatusOCRInProgress, StatusNLPInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// JobProgress is the ephemeral per-job progress record held in the status store.
// Text and Entities are an optional snapshot for fast status display; the
// document store holds the authoritative result.
type JobProgress struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	Stage       string     `json:"stage"`
	BlobURI     string     `json:"blob_uri,omitempty"`
	Text        string     `json:"text,omitempty"`
	Entities    []Entity   `json:"entities,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobUpdate is a partial update to a JobProgress record. Nil fields are left
// unchanged. Progress can only move forward: the stored value after an update
// is the max of the stored and supplied values.
type JobUpdate struct {
	Status   *JobStatus
	Progress *int
	Stage    *string
	BlobURI  *string
	Text     *string
	Entities []Entity
}

// StatusOf wraps a status value for use in a JobUpdate.
func StatusOf(s JobStatus) *JobStatus { return &s }

// IntOf wraps an int for use in a JobUpdate.
func IntOf(n int) *int { return &n }

// StringOf wraps a string for use in a JobUpdate.
func StringOf(s string) *string { return &s }
