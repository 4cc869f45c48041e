package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/yomitori/internal/blob"
	"github.com/hyperjump/yomitori/internal/docstore"
	"github.com/hyperjump/yomitori/internal/models"
	"github.com/hyperjump/yomitori/internal/status"
)

// Pipeline accepts document submissions and hands them to a bounded pool of
// worker executions. Each execution handles one job to completion or failure;
// jobs share no mutable state, so executions run fully in parallel.
type Pipeline struct {
	worker *Worker
	status *status.Store
	docs   *docstore.Store
	blobs  blob.Store
	pool   *ants.Pool
	logger *zap.Logger
}

// New creates a pipeline with the given worker and a pool of the given size.
func New(worker *Worker, workers int, logger *zap.Logger) (*Pipeline, error) {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Pipeline{
		worker: worker,
		status: worker.status,
		docs:   worker.docs,
		blobs:  worker.blobs,
		pool:   pool,
		logger: logger,
	}, nil
}

// Submit accepts an uploaded document: it creates the job progress record and
// the durable document record, uploads the content to blob storage, and
// enqueues asynchronous processing. Returns the job ID, which also identifies
// the document.
func (p *Pipeline) Submit(ctx context.Context, filename string, content []byte, mimeType string) (string, error) {
	if filename == "" {
		return "", ErrEmptyFilename
	}
	if len(content) == 0 {
		return "", ErrEmptyFile
	}
	filename = filepath.Base(filename)

	jobID, err := p.status.CreateJob(ctx, filename)
	if err != nil {
		return "", err
	}

	doc := &models.Document{
		ID:       jobID,
		Filename: filename,
		MIME:     mimeType,
		Status:   models.StatusUploading,
	}
	if err := p.docs.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("create document record: %w", err)
	}

	if err := p.status.Update(ctx, jobID, models.JobUpdate{
		Status:   models.StatusOf(models.StatusUploading),
		Progress: models.IntOf(20),
		Stage:    models.StringOf("Uploading file"),
	}); err != nil {
		return "", err
	}

	dest := fmt.Sprintf("uploads/%s/%s", jobID, filename)
	blobURI, err := p.blobs.Put(ctx, content, dest, mimeType)
	if err != nil {
		return "", fmt.Errorf("upload blob: %w", err)
	}

	if err := p.docs.SetBlobURI(ctx, jobID, blobURI); err != nil {
		return "", err
	}
	if err := p.status.Update(ctx, jobID, models.JobUpdate{
		Status:   models.StatusOf(models.StatusQueued),
		Progress: models.IntOf(40),
		Stage:    models.StringOf("Queued"),
		BlobURI:  &blobURI,
	}); err != nil {
		return "", err
	}

	if err := p.pool.Submit(func() {
		// Processing outlives the upload request; errors are recorded on the
		// job by the worker itself.
		_ = p.worker.Process(context.Background(), jobID, blobURI, filename)
	}); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}

	p.logger.Info("job submitted", zap.String("job_id", jobID), zap.String("filename", filename))
	return jobID, nil
}

// Release stops the worker pool. In-flight jobs finish; queued jobs are dropped.
func (p *Pipeline) Release() {
	p.pool.Release()
}
