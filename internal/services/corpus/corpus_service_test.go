package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/index"
	"github.com/ternarybob/scrutor/internal/storage/badger"
)

// mockEmbeddingService implements interfaces.EmbeddingService for testing
type mockEmbeddingService struct {
	batchFunc func(ctx context.Context, texts []string) ([][]float32, error)
	queryFunc func(ctx context.Context, query string) ([]float32, error)
	dimension int
}

func (m *mockEmbeddingService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.batchFunc(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbeddingService) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return m.batchFunc(ctx, texts)
}

func (m *mockEmbeddingService) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, query)
	}
	vecs, err := m.batchFunc(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Dimension() int { return m.dimension }

func (m *mockEmbeddingService) IsAvailable(ctx context.Context) bool { return true }

// constantEmbedder returns a fixed-dimension unit vector per call position.
func constantEmbedder(dim int) *mockEmbeddingService {
	return &mockEmbeddingService{
		dimension: dim,
		batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i := range texts {
				vec := make([]float32, dim)
				vec[i%dim] = 1
				out[i] = vec
			}
			return out, nil
		},
	}
}

type testFixture struct {
	corpus  interfaces.CorpusService
	index   interfaces.VectorIndex
	storage interfaces.StorageManager
	config  *common.Config
}

func newFixture(t *testing.T, embedder interfaces.EmbeddingService, dim int) *testFixture {
	t.Helper()

	logger := arbor.NewLogger()
	cfg := common.NewDefaultConfig()
	cfg.Chunking = common.ChunkingConfig{ChunkSize: 500, Overlap: 50}
	cfg.Storage.Badger.Path = t.TempDir()

	storage, err := badger.NewManager(logger, &cfg.Storage.Badger)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	idx, err := index.NewMemoryIndex(dim, logger)
	require.NoError(t, err)

	corpus, err := NewService(cfg, embedder, idx, storage, logger)
	require.NoError(t, err)

	return &testFixture{corpus: corpus, index: idx, storage: storage, config: cfg}
}

func TestIngest_RegistersDocumentChunksAndEntries(t *testing.T) {
	fx := newFixture(t, constantEmbedder(8), 8)
	ctx := context.Background()

	text := strings.Repeat("All vendor contracts require annual review. ", 30)
	docID, err := fx.corpus.Ingest(ctx, "vendor-policy.pdf", text, "compliance")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(docID, "doc_"))

	doc, err := fx.corpus.GetDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "vendor-policy.pdf", doc.Name)
	assert.Equal(t, text, doc.Text)
	assert.Greater(t, doc.ChunkCount, 1)

	// Index entry set matches the chunk set exactly.
	assert.Equal(t, doc.ChunkCount, fx.index.Len())
	persisted, err := fx.storage.IndexStorage().CountEntries()
	require.NoError(t, err)
	assert.Equal(t, doc.ChunkCount, persisted)

	// Chunk offsets slice back to the document text.
	chunk, err := fx.corpus.GetChunk(ctx, models.ChunkID(docID, 0))
	require.NoError(t, err)
	assert.Equal(t, text[chunk.StartOffset:chunk.EndOffset], chunk.Text)
}

func TestIngest_EmptyTextFailsExtraction(t *testing.T) {
	fx := newFixture(t, constantEmbedder(8), 8)

	for _, text := range []string{"", "   \n\t  "} {
		_, err := fx.corpus.Ingest(context.Background(), "empty.pdf", text, "")
		assert.True(t, errors.Is(err, models.ErrExtractionFailed), "text %q", text)
	}
}

func TestIngest_EmbeddingFailureLeavesNoTrace(t *testing.T) {
	embedder := &mockEmbeddingService{
		dimension: 8,
		batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, fmt.Errorf("%w: gateway down", models.ErrEmbeddingUnavailable)
		},
	}
	fx := newFixture(t, embedder, 8)
	ctx := context.Background()

	text := strings.Repeat("Sensitive records must be encrypted at rest. ", 30)
	_, err := fx.corpus.Ingest(ctx, "enc-policy.pdf", text, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEmbeddingUnavailable))

	// No document, no chunks, no index entries.
	docs, err := fx.corpus.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, 0, fx.index.Len())

	persisted, err := fx.storage.IndexStorage().CountEntries()
	require.NoError(t, err)
	assert.Equal(t, 0, persisted)
}

func TestIngest_CancellationRollsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	embedder := &mockEmbeddingService{
		dimension: 8,
		batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			// Cancellation arrives while embeddings are in flight.
			cancel()
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = make([]float32, 8)
			}
			return out, nil
		},
	}
	fx := newFixture(t, embedder, 8)

	text := strings.Repeat("Quarterly audits are mandatory. ", 40)
	_, err := fx.corpus.Ingest(ctx, "audit.pdf", text, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	docs, listErr := fx.corpus.ListDocuments(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, docs)
	assert.Equal(t, 0, fx.index.Len())
}

func TestDelete_RemovesEverything(t *testing.T) {
	fx := newFixture(t, constantEmbedder(8), 8)
	ctx := context.Background()

	text := strings.Repeat("Access reviews happen monthly. ", 40)
	docID, err := fx.corpus.Ingest(ctx, "access.pdf", text, "")
	require.NoError(t, err)

	require.NoError(t, fx.corpus.Delete(ctx, docID))

	_, err = fx.corpus.GetDocument(ctx, docID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Equal(t, 0, fx.index.Len())

	persisted, err := fx.storage.IndexStorage().CountEntries()
	require.NoError(t, err)
	assert.Equal(t, 0, persisted)

	// Second delete reports not found.
	err = fx.corpus.Delete(ctx, docID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDelete_UnknownDocument(t *testing.T) {
	fx := newFixture(t, constantEmbedder(8), 8)
	err := fx.corpus.Delete(context.Background(), "doc_nope")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestStats_ReflectsCorpusState(t *testing.T) {
	fx := newFixture(t, constantEmbedder(8), 8)
	ctx := context.Background()

	stats, err := fx.corpus.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalDocuments)

	text := strings.Repeat("Retention period is seven years. ", 40)
	_, err = fx.corpus.Ingest(ctx, "retention.pdf", text, "")
	require.NoError(t, err)

	stats, err = fx.corpus.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Greater(t, stats.TotalChunks, 1)
	assert.Equal(t, stats.TotalChunks, stats.IndexEntries)
}

func TestRestart_RebuildsIndexFromStorage(t *testing.T) {
	logger := arbor.NewLogger()
	cfg := common.NewDefaultConfig()
	cfg.Chunking = common.ChunkingConfig{ChunkSize: 500, Overlap: 50}
	cfg.Storage.Badger.Path = t.TempDir()

	embedder := constantEmbedder(8)
	ctx := context.Background()

	storage, err := badger.NewManager(logger, &cfg.Storage.Badger)
	require.NoError(t, err)

	idx, err := index.NewMemoryIndex(8, logger)
	require.NoError(t, err)

	corpus, err := NewService(cfg, embedder, idx, storage, logger)
	require.NoError(t, err)

	text := strings.Repeat("Incident reports are filed within 24 hours. ", 30)
	docID, err := corpus.Ingest(ctx, "incidents.pdf", text, "")
	require.NoError(t, err)

	entriesBefore := idx.Len()
	require.NoError(t, storage.Close())

	// Simulated restart: fresh storage handle, fresh empty index.
	storage2, err := badger.NewManager(logger, &cfg.Storage.Badger)
	require.NoError(t, err)
	defer storage2.Close()

	idx2, err := index.NewMemoryIndex(8, logger)
	require.NoError(t, err)

	corpus2, err := NewService(cfg, embedder, idx2, storage2, logger)
	require.NoError(t, err)

	assert.Equal(t, entriesBefore, idx2.Len())

	doc, err := corpus2.GetDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "incidents.pdf", doc.Name)

	// Rebuilt entries carry their original embeddings.
	entry, err := idx2.Get(models.ChunkID(docID, 0))
	require.NoError(t, err)
	assert.Len(t, entry.Embedding, 8)
}
