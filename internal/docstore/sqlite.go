// Package docstore provides the durable document record store backed by SQLite.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/yomitori/internal/models"
)

// ErrNotFound is returned when no document exists for an ID.
var ErrNotFound = errors.New("document not found")

// Store persists document records in SQLite. The record's ID equals the job ID
// that produced it; the pipeline worker is the only writer during processing.
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		mime TEXT NOT NULL DEFAULT '',
		blob_uri TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'RECEIVED',
		text TEXT NOT NULL DEFAULT '',
		entities TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
	CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
	`
	_, err := db.Exec(schema)
	return err
}

// Create inserts a document record.
func (s *Store) Create(ctx context.Context, doc *models.Document) error {
	entitiesJSON, tagsJSON, err := marshalLists(doc)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, mime, blob_uri, status, text, entities, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.MIME, doc.BlobURI, string(doc.Status),
		doc.Text, entitiesJSON, tagsJSON, doc.CreatedAt, doc.UpdatedAt,
	)
	return err
}

// Get returns a document by ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, mime, blob_uri, status, text, entities, tags, created_at, updated_at
		 FROM documents WHERE id = ?`, id,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}

// SetStatus updates only the status of a document. Returns ErrNotFound if the
// document does not exist.
func (s *Store) SetStatus(ctx context.Context, id string, st models.JobStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, updated_at = ? WHERE id = ?`,
		string(st), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetBlobURI records the storage locator after upload and marks the document QUEUED.
func (s *Store) SetBlobURI(ctx context.Context, id, blobURI string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET blob_uri = ?, status = ?, updated_at = ? WHERE id = ?`,
		blobURI, string(models.StatusQueued), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateResult persists the final extraction result: text, entities, tags, and
// the terminal (or stage-boundary) status, in one write.
func (s *Store) UpdateResult(ctx context.Context, id string, text string, entities []models.Entity, tags []string, st models.JobStatus) error {
	doc := &models.Document{Entities: entities, Tags: tags}
	entitiesJSON, tagsJSON, err := marshalLists(doc)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET text = ?, entities = ?, tags = ?, status = ?, updated_at = ? WHERE id = ?`,
		text, entitiesJSON, tagsJSON, string(st), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// List returns all documents ordered by creation time, newest first. The
// lexical search path scans this list; the catalog scale makes that acceptable.
func (s *Store) List(ctx context.Context) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, mime, blob_uri, status, text, entities, tags, created_at, updated_at
		 FROM documents ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Count returns the total number of documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*models.Document, error) {
	var doc models.Document
	var status, entitiesJSON, tagsJSON string
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.MIME, &doc.BlobURI, &status,
		&doc.Text, &entitiesJSON, &tagsJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.Status = models.JobStatus(status)
	if err := json.Unmarshal([]byte(entitiesJSON), &doc.Entities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entities: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	return &doc, nil
}

func marshalLists(doc *models.Document) (entitiesJSON, tagsJSON string, err error) {
	entities := doc.Entities
	if entities == nil {
		entities = []models.Entity{}
	}
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	eb, err := json.Marshal(entities)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal entities: %w", err)
	}
	tb, err := json.Marshal(tags)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(eb), string(tb), nil
}

func requireRow(result sql.Result) error {
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
