package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/hyperjump/yomitori/internal/ai"
	"github.com/hyperjump/yomitori/internal/blob"
	"github.com/hyperjump/yomitori/internal/config"
	"github.com/hyperjump/yomitori/internal/docstore"
	"github.com/hyperjump/yomitori/internal/extract"
	"github.com/hyperjump/yomitori/internal/models"
	"github.com/hyperjump/yomitori/internal/status"
	"github.com/hyperjump/yomitori/internal/tags"
	"github.com/hyperjump/yomitori/internal/vector"
	"github.com/hyperjump/yomitori/pkg/utils"
)

// Worker drives one job through all processing stages. It is the sole writer
// of both the status store and the document record during processing; stages
// for one job run strictly sequentially.
type Worker struct {
	status    *status.Store
	docs      *docstore.Store
	blobs     blob.Store
	engine    extract.Engine
	annotator ai.Annotator
	embedder  ai.Embedder
	index     vector.Index
	chunker   *Chunker
	cfg       *config.PipelineConfig
	logger    *zap.Logger
}

// NewWorker creates a worker with the given dependencies.
func NewWorker(
	st *status.Store,
	docs *docstore.Store,
	blobs blob.Store,
	engine extract.Engine,
	annotator ai.Annotator,
	embedder ai.Embedder,
	index vector.Index,
	cfg *config.PipelineConfig,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		status:    st,
		docs:      docs,
		blobs:     blobs,
		engine:    engine,
		annotator: annotator,
		embedder:  embedder,
		index:     index,
		chunker:   NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		cfg:       cfg,
		logger:    logger,
	}
}

// Process runs extraction, annotation, tagging, chunking, embedding, indexing,
// and persistence for one job. Any stage error marks the job FAILED in the
// status store and, best-effort, on the document record, then returns the
// error. Re-invoking with the same job ID is an idempotent re-run: later
// writes overwrite earlier ones keyed by the job ID.
func (w *Worker) Process(ctx context.Context, jobID, blobURI, filename string) error {
	w.logger.Info("processing job", zap.String("job_id", jobID), zap.String("filename", filename))

	if err := w.status.Update(ctx, jobID, models.JobUpdate{
		Status:   models.StatusOf(models.StatusOCRInProgress),
		Progress: models.IntOf(60),
		Stage:    models.StringOf("Downloading & extracting text"),
	}); err != nil {
		return w.fail(ctx, jobID, "status update", err)
	}

	text, err := w.extractStage(ctx, blobURI, filename)
	if err != nil {
		return w.fail(ctx, jobID, "text extraction", err)
	}

	if err := w.status.Update(ctx, jobID, models.JobUpdate{
		Status:   models.StatusOf(models.StatusNLPInProgress),
		Progress: models.IntOf(80),
		Stage:    models.StringOf("Extracting entities & tags"),
	}); err != nil {
		return w.fail(ctx, jobID, "status update", err)
	}

	entities, err := w.annotator.Annotate(ctx, text)
	if err != nil {
		return w.fail(ctx, jobID, "entity annotation", err)
	}

	docTags := w.deriveTags(ctx, text, entities)

	if err := w.indexChunks(ctx, jobID, text); err != nil {
		return w.fail(ctx, jobID, "chunk indexing", err)
	}

	capped := utils.Cap(text, w.cfg.MaxTextLength)
	if err := w.docs.UpdateResult(ctx, jobID, capped, entities, docTags, models.StatusCompleted); err != nil {
		return w.fail(ctx, jobID, "persist result", err)
	}

	preview := utils.Cap(text, w.cfg.PreviewLength)
	if err := w.status.Update(ctx, jobID, models.JobUpdate{
		Status:   models.StatusOf(models.StatusCompleted),
		Progress: models.IntOf(100),
		Stage:    models.StringOf("Done"),
		Text:     &preview,
		Entities: entities,
	}); err != nil {
		return w.fail(ctx, jobID, "status update", err)
	}

	w.logger.Info("job completed",
		zap.String("job_id", jobID),
		zap.Int("text_len", len(capped)),
		zap.Int("entities", len(entities)),
		zap.Int("tags", len(docTags)))
	return nil
}

// extractStage downloads the blob into a per-job working directory, removed
// on every exit path, and extracts text according to the detected file type.
func (w *Worker) extractStage(ctx context.Context, blobURI, filename string) (string, error) {
	content, err := w.blobs.Get(ctx, blobURI)
	if err != nil {
		return "", fmt.Errorf("download blob: %w", err)
	}

	dir, err := os.MkdirTemp("", "yomitori-job-")
	if err != nil {
		return "", fmt.Errorf("create working dir: %w", err)
	}
	defer os.RemoveAll(dir)

	localPath := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(localPath, content, 0600); err != nil {
		return "", fmt.Errorf("write working copy: %w", err)
	}

	ftype := extract.DetectType(filename)
	text, err := w.engine.ExtractText(ctx, localPath, ftype)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", ftype, err)
	}
	return text, nil
}

// deriveTags runs the tag derivation. The noun-phrase pass is best-effort: if
// the annotation collaborator fails there, tagging degrades to the entity and
// frequency passes.
func (w *Worker) deriveTags(ctx context.Context, text string, entities []models.Entity) []string {
	nounPhrases, err := w.annotator.NounPhrases(ctx, text)
	if err != nil {
		w.logger.Warn("noun phrase pass failed, tagging degrades to frequency-only", zap.Error(err))
		nounPhrases = nil
	}
	return tags.Derive(text, entities, nounPhrases, tags.Options{
		FrequencyK: w.cfg.FrequencyTagK,
		Limit:      w.cfg.TagLimit,
	})
}

// indexChunks chunks the text, embeds each non-blank chunk, and replaces the
// document's chunk set in the vector index so stale vectors never accumulate.
// Empty text replaces with an empty set, clearing any prior run.
func (w *Worker) indexChunks(ctx context.Context, docID, text string) error {
	pieces := w.chunker.Chunk(text)
	chunks := make([]*models.DocumentChunk, 0, len(pieces))
	if len(pieces) > 0 {
		vecs, err := w.embedder.EmbedTexts(ctx, pieces)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vecs) != len(pieces) {
			return fmt.Errorf("embedding provider returned %d vectors for %d chunks", len(vecs), len(pieces))
		}
		for i, piece := range pieces {
			chunks = append(chunks, &models.DocumentChunk{
				ID:         docID + "_" + strconv.Itoa(i),
				DocumentID: docID,
				ChunkIndex: i,
				Text:       piece,
				Vector:     vecs[i],
			})
		}
	}
	if err := w.index.ReplaceDocument(ctx, docID, chunks); err != nil {
		return fmt.Errorf("replace chunk set: %w", err)
	}
	return nil
}

// fail records the failure in the status store with a human-readable stage
// description and, best-effort, on the document record.
func (w *Worker) fail(ctx context.Context, jobID, stage string, cause error) error {
	w.logger.Error("job failed",
		zap.String("job_id", jobID),
		zap.String("stage", stage),
		zap.Error(cause))

	desc := fmt.Sprintf("Error in %s: %v", stage, cause)
	if err := w.status.Update(ctx, jobID, models.JobUpdate{
		Status: models.StatusOf(models.StatusFailed),
		Stage:  &desc,
	}); err != nil {
		w.logger.Error("failed to record job failure in status store", zap.Error(err))
	}
	if err := w.docs.SetStatus(ctx, jobID, models.StatusFailed); err != nil {
		w.logger.Error("failed to record job failure on document record", zap.Error(err))
	}
	return fmt.Errorf("%s: %w", stage, cause)
}
