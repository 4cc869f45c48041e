package query

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/yomitori/internal/ai/mock"
	"github.com/hyperjump/yomitori/internal/blob"
	"github.com/hyperjump/yomitori/internal/config"
	"github.com/hyperjump/yomitori/internal/docstore"
	"github.com/hyperjump/yomitori/internal/models"
	"github.com/hyperjump/yomitori/internal/vector"
)

const testDimensions = 8

type serviceFixture struct {
	service   *Service
	docs      *docstore.Store
	index     *vector.MemoryIndex
	embedder  *mock.Embedder
	completer *mock.Completer
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	docs, err := docstore.Open(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { docs.Close() })

	index, err := vector.NewMemoryIndex(testDimensions)
	require.NoError(t, err)

	blobs, err := blob.NewDiskStore(t.TempDir(), "test-secret")
	require.NoError(t, err)

	embedder := mock.NewEmbedder(testDimensions)
	completer := mock.NewCompleter()

	cfg := &config.QueryConfig{TopChunks: 5, SignedURLMinutes: 20, SearchTextPrefix: 20000}
	service := NewService(docs, index, embedder, completer, blobs, cfg, nil)

	return &serviceFixture{
		service:   service,
		docs:      docs,
		index:     index,
		embedder:  embedder,
		completer: completer,
	}
}

func (f *serviceFixture) indexChunks(t *testing.T, docID string, texts ...string) {
	t.Helper()
	ctx := context.Background()
	vecs, err := f.embedder.EmbedTexts(ctx, texts)
	require.NoError(t, err)
	chunks := make([]*models.DocumentChunk, len(texts))
	for i, text := range texts {
		chunks[i] = &models.DocumentChunk{
			ID:         docID + "_" + string(rune('0'+i)),
			DocumentID: docID,
			ChunkIndex: i,
			Text:       text,
			Vector:     vecs[i],
		}
	}
	require.NoError(t, f.index.ReplaceDocument(ctx, docID, chunks))
}

func TestAskAnswersFromChunks(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.indexChunks(t, "doc1", "The tower is 330 meters tall.", "Construction finished in 1889.")
	var seenPrompt string
	f.completer.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		seenPrompt = prompt
		return "330 meters", nil
	}

	ans, err := f.service.Ask(ctx, "doc1", "How tall is the tower?")
	require.NoError(t, err)
	assert.Equal(t, "330 meters", ans.Answer)
	assert.Len(t, ans.Chunks, 2)

	assert.Contains(t, seenPrompt, "Answer the question using ONLY the document text below.")
	assert.Contains(t, seenPrompt, "The tower is 330 meters tall.")
	assert.Contains(t, seenPrompt, "QUESTION:\nHow tall is the tower?")
}

func TestAskNoChunksSkipsGeneration(t *testing.T) {
	f := newServiceFixture(t)

	ans, err := f.service.Ask(context.Background(), "doc-without-chunks", "anything?")
	require.NoError(t, err)
	assert.Equal(t, NoContentAnswer, ans.Answer)
	assert.Empty(t, ans.Chunks)
	assert.Equal(t, 0, f.completer.Calls(), "generation must not run without context chunks")
}

func TestAskEmptyQuestion(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Ask(context.Background(), "doc1", "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Equal(t, 0, f.embedder.Calls())
}

func TestAskLimitsToTopChunks(t *testing.T) {
	f := newServiceFixture(t)

	texts := make([]string, 8)
	for i := range texts {
		texts[i] = strings.Repeat("chunk ", i+1)
	}
	f.indexChunks(t, "doc1", texts...)

	ans, err := f.service.Ask(context.Background(), "doc1", "what?")
	require.NoError(t, err)
	assert.Len(t, ans.Chunks, 5)
}

func TestAskDoesNotCrossDocuments(t *testing.T) {
	f := newServiceFixture(t)

	f.indexChunks(t, "doc1", "alpha content")
	f.indexChunks(t, "doc2", "beta content")

	ans, err := f.service.Ask(context.Background(), "doc1", "what content?")
	require.NoError(t, err)
	require.Len(t, ans.Chunks, 1)
	assert.Equal(t, "alpha content", ans.Chunks[0])
}

func seedDocument(t *testing.T, f *serviceFixture, doc *models.Document) {
	t.Helper()
	require.NoError(t, f.docs.Create(context.Background(), doc))
}

func TestSearchEmptyQuery(t *testing.T) {
	f := newServiceFixture(t)
	seedDocument(t, f, &models.Document{ID: "doc1", Filename: "a.txt", Status: models.StatusCompleted})

	results, err := f.service.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchMatchesFields(t *testing.T) {
	f := newServiceFixture(t)
	seedDocument(t, f, &models.Document{
		ID:       "doc1",
		Filename: "paris-guide.pdf",
		Status:   models.StatusCompleted,
		Text:     "The Eiffel Tower dominates the skyline.",
		Entities: []models.Entity{{Text: "Seine", Label: "LOC"}},
		Tags:     []string{"travel"},
	})
	seedDocument(t, f, &models.Document{
		ID:       "doc2",
		Filename: "budget.xlsx",
		Status:   models.StatusCompleted,
		Text:     "Q3 spending by department.",
	})

	cases := []struct {
		query string
		want  string
	}{
		{"paris", "doc1"},    // filename
		{"eiffel", "doc1"},   // text
		{"travel", "doc1"},   // tag
		{"seine", "doc1"},    // entity
		{"SPENDING", "doc2"}, // case-insensitive text
	}
	for _, tc := range cases {
		results, err := f.service.Search(context.Background(), tc.query)
		require.NoError(t, err, tc.query)
		require.Len(t, results, 1, "query %q", tc.query)
		assert.Equal(t, tc.want, results[0].ID, "query %q", tc.query)
	}

	results, err := f.service.Search(context.Background(), "nonexistent-term")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSignsPreviewURL(t *testing.T) {
	f := newServiceFixture(t)
	seedDocument(t, f, &models.Document{
		ID:       "doc1",
		Filename: "report.pdf",
		Status:   models.StatusCompleted,
		BlobURI:  "blob://uploads/doc1/report.pdf",
		Text:     "annual report",
	})

	results, err := f.service.Search(context.Background(), "annual")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, strings.HasPrefix(results[0].PreviewURL, "/files/uploads/doc1/report.pdf?"))
	assert.Contains(t, results[0].PreviewURL, "sig=")
}

func TestSearchWithoutBlobHasNoPreview(t *testing.T) {
	f := newServiceFixture(t)
	seedDocument(t, f, &models.Document{
		ID:       "doc1",
		Filename: "pending.txt",
		Status:   models.StatusQueued,
		Text:     "pending content",
	})

	results, err := f.service.Search(context.Background(), "pending")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].PreviewURL)
}
