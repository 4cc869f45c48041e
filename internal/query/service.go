// Package query answers lexical search over document records and semantic
// question-answering over indexed chunks.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/yomitori/internal/ai"
	"github.com/hyperjump/yomitori/internal/blob"
	"github.com/hyperjump/yomitori/internal/config"
	"github.com/hyperjump/yomitori/internal/docstore"
	"github.com/hyperjump/yomitori/internal/models"
	"github.com/hyperjump/yomitori/internal/vector"
	"github.com/hyperjump/yomitori/pkg/utils"
)

// ErrEmptyQuestion is returned by Ask for a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

// NoContentAnswer is returned when a document has no indexed chunks; the
// language generation collaborator is not consulted in that case.
const NoContentAnswer = "No relevant content found."

const chunkSeparator = "\n\n---\n"

// Service answers search and ask queries. It only reads pipeline state.
type Service struct {
	docs      *docstore.Store
	index     vector.Index
	embedder  ai.Embedder
	completer ai.Completer
	blobs     blob.Store
	cfg       *config.QueryConfig
	logger    *zap.Logger
}

// NewService creates a query service with the given dependencies.
func NewService(
	docs *docstore.Store,
	index vector.Index,
	embedder ai.Embedder,
	completer ai.Completer,
	blobs blob.Store,
	cfg *config.QueryConfig,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		docs:      docs,
		index:     index,
		embedder:  embedder,
		completer: completer,
		blobs:     blobs,
		cfg:       cfg,
		logger:    logger,
	}
}

// Ask embeds the question, retrieves the nearest chunks of one document, and
// asks the language generation collaborator to answer strictly from them.
// A document with zero indexed chunks yields NoContentAnswer without invoking
// generation. Returns the answer and the chunks used, best match first.
func (s *Service) Ask(ctx context.Context, documentID, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	queryVec, err := s.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.index.SearchDocument(ctx, documentID, queryVec, s.cfg.TopChunks)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	if len(hits) == 0 {
		return &models.Answer{Answer: NoContentAnswer, Chunks: []string{}}, nil
	}

	chunks := make([]string, len(hits))
	for i, hit := range hits {
		chunks[i] = hit.Chunk.Text
	}

	prompt := buildPrompt(strings.Join(chunks, chunkSeparator), question)
	answer, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Debug("answered question",
		zap.String("document_id", documentID),
		zap.Int("chunks", len(chunks)))
	return &models.Answer{Answer: answer, Chunks: chunks}, nil
}

// Search runs a case-insensitive substring match of q against filename, a
// bounded text prefix, tags, and entity text of every document record. An
// empty query returns no results without scanning the store. The document
// catalog stays small enough that a full scan beats maintaining an index.
func (s *Service) Search(ctx context.Context, q string) ([]models.DocumentSummary, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []models.DocumentSummary{}, nil
	}

	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	results := make([]models.DocumentSummary, 0)
	for _, doc := range docs {
		if !matches(doc, q, s.cfg.SearchTextPrefix) {
			continue
		}
		summary := models.DocumentSummary{
			ID:       doc.ID,
			Filename: doc.Filename,
			Status:   doc.Status,
			Tags:     doc.Tags,
		}
		if doc.BlobURI != "" {
			ttl := time.Duration(s.cfg.SignedURLMinutes) * time.Minute
			if url, err := s.blobs.SignedURL(doc.BlobURI, ttl); err == nil {
				summary.PreviewURL = url
			} else {
				s.logger.Warn("failed to sign preview URL",
					zap.String("document_id", doc.ID), zap.Error(err))
			}
		}
		results = append(results, summary)
	}
	return results, nil
}

// matches reports whether q occurs in the document's searchable fields.
func matches(doc *models.Document, q string, textPrefix int) bool {
	var b strings.Builder
	b.WriteString(strings.ToLower(doc.Filename))
	b.WriteByte(' ')
	b.WriteString(strings.ToLower(utils.Cap(doc.Text, textPrefix)))
	for _, tag := range doc.Tags {
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(tag))
	}
	for _, e := range doc.Entities {
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(e.Text))
	}
	return strings.Contains(b.String(), q)
}

func buildPrompt(context, question string) string {
	return fmt.Sprintf(`Answer the question using ONLY the document text below.

DOCUMENT:
%s

QUESTION:
%s

ANSWER:`, context, question)
}
