// Package status provides the ephemeral per-job progress store.
//
// Records are kept in Badger, keyed by job ID. The store guarantees two
// invariants regardless of caller behavior: progress is monotonically
// non-decreasing, and COMPLETED/FAILED are terminal states that later
// updates cannot leave.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/yomitori/internal/models"
)

// ErrNotFound is returned when no progress record exists for a job ID.
var ErrNotFound = errors.New("job not found")

const keyPrefix = "job:"

// maxTxnRetries bounds retries of the read-modify-write transaction when
// Badger reports a conflict. The pipeline worker is the only writer per job,
// so conflicts are rare and transient.
const maxTxnRetries = 5

// Store is a Badger-backed progress store.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// badgerLoggerAdapter routes Badger's internal logging through zap.
type badgerLoggerAdapter struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (l *badgerLoggerAdapter) Errorf(msg string, args ...any)   { l.s.Errorf(msg, args...) }
func (l *badgerLoggerAdapter) Warningf(msg string, args ...any) { l.s.Warnf(msg, args...) }
func (l *badgerLoggerAdapter) Infof(msg string, args ...any)    { l.s.Debugf(msg, args...) }
func (l *badgerLoggerAdapter) Debugf(msg string, args ...any)   { l.s.Debugf(msg, args...) }

// Open opens (or creates) the status store at path. When inMemory is true,
// path is ignored and the store lives entirely in memory (used by tests).
func Open(path string, inMemory bool, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = &badgerLoggerAdapter{s: logger.Named("badger").Sugar()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open status store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// CreateJob allocates a new job ID and writes the initial progress record
// (RECEIVED, progress 10).
func (s *Store) CreateJob(ctx context.Context, filename string) (string, error) {
	jobID := uuid.New().String()
	rec := models.JobProgress{
		ID:        jobID,
		Filename:  filename,
		Status:    models.StatusReceived,
		Progress:  10,
		Stage:     "Upload requested",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.put(&rec); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	return jobID, nil
}

// Update merges upd into the stored record for jobID. Progress never rewinds:
// the effective value is max(supplied, stored). A record already in a terminal
// status keeps that status no matter what upd carries. Transitioning to
// COMPLETED stamps the completion time whether or not the caller supplied one.
// Returns ErrNotFound if the job does not exist.
func (s *Store) Update(ctx context.Context, jobID string, upd models.JobUpdate) error {
	var lastErr error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		lastErr = s.db.Update(func(txn *badger.Txn) error {
			rec, err := getRecord(txn, jobID)
			if err != nil {
				return err
			}
			applyUpdate(rec, upd)
			return setRecord(txn, rec)
		})
		if errors.Is(lastErr, badger.ErrConflict) {
			continue
		}
		return lastErr
	}
	return fmt.Errorf("update job %s: %w", jobID, lastErr)
}

// Get returns the progress record for jobID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, jobID string) (*models.JobProgress, error) {
	var rec *models.JobProgress
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getRecord(txn, jobID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// applyUpdate merges upd into rec, enforcing monotonic progress and terminal
// status stickiness.
func applyUpdate(rec *models.JobProgress, upd models.JobUpdate) {
	if upd.Status != nil && !rec.Status.Terminal() {
		rec.Status = *upd.Status
		if rec.Status == models.StatusCompleted && rec.CompletedAt == nil {
			now := time.Now().UTC()
			rec.CompletedAt = &now
		}
	}
	if upd.Progress != nil && *upd.Progress > rec.Progress {
		rec.Progress = *upd.Progress
	}
	if upd.Stage != nil {
		rec.Stage = *upd.Stage
	}
	if upd.BlobURI != nil {
		rec.BlobURI = *upd.BlobURI
	}
	if upd.Text != nil {
		rec.Text = *upd.Text
	}
	if upd.Entities != nil {
		rec.Entities = upd.Entities
	}
}

func makeKey(jobID string) []byte {
	return []byte(keyPrefix + jobID)
}

func getRecord(txn *badger.Txn, jobID string) (*models.JobProgress, error) {
	item, err := txn.Get(makeKey(jobID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec models.JobProgress
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return nil, fmt.Errorf("decode job record: %w", err)
	}
	return &rec, nil
}

func setRecord(txn *badger.Txn, rec *models.JobProgress) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode job record: %w", err)
	}
	return txn.Set(makeKey(rec.ID), data)
}

func (s *Store) put(rec *models.JobProgress) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return setRecord(txn, rec)
	})
}
