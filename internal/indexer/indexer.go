package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/wali/internal/backend"
	"github.com/hyperjump/wali/internal/config"
	"github.com/hyperjump/wali/internal/embedding"
	"github.com/hyperjump/wali/internal/extract"
	"github.com/hyperjump/wali/internal/fileid"
	"github.com/hyperjump/wali/internal/models"
	"github.com/hyperjump/wali/internal/storage"
	"github.com/hyperjump/wali/internal/vector"
)

// ServiceProvider resolves the current remote clients.
type ServiceProvider interface {
	Services() (*backend.Services, error)
}

// Indexer turns documents into stored chunks and indexed vectors.
type Indexer struct {
	storage     storage.Storage
	index       vector.Index
	services    ServiceProvider
	chunker     *Chunker
	extractor   *extract.Extractor
	batchSize   int
	maxInFlight int
	logger      *zap.Logger // optional; when set, logs ingestion events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for ingestion events.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithExtractor replaces the default file extractor.
func WithExtractor(e *extract.Extractor) IndexerOption {
	return func(idx *Indexer) { idx.extractor = e }
}

// NewIndexer creates an indexer. It fails with *models.ConfigError when the chunking
// settings are unusable.
func NewIndexer(
	store storage.Storage,
	index vector.Index,
	services ServiceProvider,
	rag config.RAGConfig,
	emb config.EmbeddingConfig,
	opts ...IndexerOption,
) (*Indexer, error) {
	chunker, err := NewChunker(rag.ChunkSize, rag.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	idx := &Indexer{
		storage:     store,
		index:       index,
		services:    services,
		chunker:     chunker,
		extractor:   extract.NewExtractor(),
		batchSize:   max(emb.BatchSize, 1),
		maxInFlight: max(emb.MaxInFlight, 1),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// Ingest chunks, embeds and stores one document. Nothing is persisted unless every
// batch embeds successfully, and a failed index insert removes the stored rows again.
func (idx *Indexer) Ingest(ctx context.Context, input *models.DocumentInput) (*models.IngestResult, error) {
	svc, err := idx.services.Services()
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	content := normalizeNewlines(input.Content)
	chunks := idx.chunker.Chunk("", content)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document %q produced no passages", models.ErrInvalidInput, input.Name)
	}
	passages := make([]string, len(chunks))
	for i, ch := range chunks {
		passages[i] = ch.Content
	}

	embeddings, err := idx.embedPassages(ctx, svc.Embedder, passages)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		Name:       input.Name,
		Content:    content,
		FileType:   fileTypeOrUnknown(input.FileType),
		FileSize:   input.FileSize,
		SourcePath: input.SourcePath,
	}
	if doc.FileSize == 0 {
		doc.FileSize = int64(len(input.Content))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	if err := idx.storage.CreateDocumentWithChunks(ctx, doc, chunks); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	if err := idx.index.InsertMany(records(doc, chunks)); err != nil {
		if delErr := idx.storage.DeleteDocument(context.WithoutCancel(ctx), doc.ID); delErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback document %s: %w", doc.ID, delErr))
		}
		return nil, fmt.Errorf("failed to index vectors: %w", err)
	}

	if idx.logger != nil {
		idx.logger.Info("document ingested",
			zap.String("id", doc.ID),
			zap.String("name", doc.Name),
			zap.Int("chunks", len(chunks)))
	}
	return &models.IngestResult{DocumentID: doc.ID, ChunkCount: len(chunks)}, nil
}

// embedPassages embeds passages in batches of batchSize with at most maxInFlight
// batches outstanding. The first failure cancels the rest. The result is in passage
// order and every vector has the same dimension.
func (idx *Indexer) embedPassages(ctx context.Context, emb embedding.Embedder, passages []string) ([][]float32, error) {
	batches := partition(passages, idx.batchSize)
	results := make([][][]float32, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.maxInFlight)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			vecs, err := emb.EmbedBatch(gctx, batch)
			if err != nil {
				return fmt.Errorf("embedding batch %d/%d: %w", i+1, len(batches), err)
			}
			if len(vecs) != len(batch) {
				return fmt.Errorf("embedding batch %d/%d: %w", i+1, len(batches),
					&models.FormatError{Op: "embed", Err: fmt.Errorf("got %d vectors for %d passages", len(vecs), len(batch))})
			}
			results[i] = vecs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([][]float32, 0, len(passages))
	for _, vecs := range results {
		out = append(out, vecs...)
	}
	dim := len(out[0])
	for i, v := range out {
		if len(v) == 0 {
			return nil, &models.EmptyResultError{Index: i}
		}
		if len(v) != dim {
			return nil, &models.FormatError{Op: "embed", Err: fmt.Errorf("passage %d has dimension %d, want %d", i, len(v), dim)}
		}
	}
	return out, nil
}

func partition(items []string, size int) [][]string {
	batches := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		batches = append(batches, items[start:min(start+size, len(items))])
	}
	return batches
}

func records(doc *models.Document, chunks []*models.DocumentChunk) []vector.Record {
	recs := make([]vector.Record, len(chunks))
	for i, ch := range chunks {
		recs[i] = vector.Record{
			ID:        ch.ID,
			Content:   ch.Content,
			Embedding: ch.Embedding,
			Metadata: map[string]any{
				vector.MetaDocumentID:   doc.ID,
				vector.MetaDocumentName: doc.Name,
				vector.MetaChunkIndex:   ch.ChunkIndex,
			},
		}
	}
	return recs
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

func fileTypeOrUnknown(t string) string {
	t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
	if t == "" {
		return extract.UnknownFileType
	}
	return t
}

// IngestFile extracts the file at path and ingests it under its base name.
func (idx *Indexer) IngestFile(ctx context.Context, path string) (*models.IngestResult, error) {
	if _, err := idx.services.Services(); err != nil {
		return nil, err
	}
	input, err := idx.loadFile(path)
	if err != nil {
		return nil, err
	}
	return idx.Ingest(ctx, input)
}

// ReplaceFile re-ingests path and then removes the document previously ingested
// from the same source. The old document stays whenever the new one fails to
// load, embed or store.
func (idx *Indexer) ReplaceFile(ctx context.Context, path string) (*models.IngestResult, error) {
	if _, err := idx.services.Services(); err != nil {
		return nil, err
	}
	input, err := idx.loadFile(path)
	if err != nil {
		return nil, err
	}
	previous, err := idx.storage.GetDocumentBySourcePath(ctx, input.SourcePath)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up document: %w", err)
	}
	res, err := idx.Ingest(ctx, input)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		if err := idx.DeleteDocument(ctx, previous.ID); err != nil {
			return res, fmt.Errorf("remove previous version %s: %w", previous.ID, err)
		}
	}
	return res, nil
}

// RemoveFile deletes the document ingested from path, if any.
func (idx *Indexer) RemoveFile(ctx context.Context, path string) error {
	source, err := fileid.SourcePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	return idx.removeSource(ctx, source)
}

// FileChanged and FileRemoved let the Indexer serve as an inbox watcher handler.
// FileChanged skips files whose stored document is newer and of the same size.
func (idx *Indexer) FileChanged(ctx context.Context, path string) error {
	if idx.upToDate(ctx, path) {
		return nil
	}
	_, err := idx.ReplaceFile(ctx, path)
	return err
}

func (idx *Indexer) FileRemoved(ctx context.Context, path string) error {
	return idx.RemoveFile(ctx, path)
}

func (idx *Indexer) upToDate(ctx context.Context, path string) bool {
	source, err := fileid.SourcePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(source)
	if err != nil {
		return false
	}
	doc, err := idx.storage.GetDocumentBySourcePath(ctx, source)
	if err != nil {
		return false
	}
	return doc.FileSize == info.Size() && !info.ModTime().After(doc.UpdatedAt)
}

func (idx *Indexer) loadFile(path string) (*models.DocumentInput, error) {
	source, err := fileid.SourcePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	input, err := idx.extractor.Load(source)
	if err != nil {
		return nil, err
	}
	input.SourcePath = source
	return input, nil
}

func (idx *Indexer) removeSource(ctx context.Context, source string) error {
	doc, err := idx.storage.GetDocumentBySourcePath(ctx, source)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up document: %w", err)
	}
	return idx.DeleteDocument(ctx, doc.ID)
}

// DeleteDocument removes a document's rows (chunks cascade) and its vectors.
func (idx *Indexer) DeleteDocument(ctx context.Context, id string) error {
	if err := idx.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	removed := idx.index.RemoveByDocument(id)
	if idx.logger != nil {
		idx.logger.Info("document deleted", zap.String("id", id), zap.Int("vectors", removed))
	}
	return nil
}

// reindexPageSize is how many documents Reindex loads per storage page.
const reindexPageSize = 100

// Reindex clears the vector index and re-embeds every stored chunk. It returns the
// number of vectors indexed. On failure the index holds the documents finished so far.
func (idx *Indexer) Reindex(ctx context.Context) (int, error) {
	svc, err := idx.services.Services()
	if err != nil {
		return 0, err
	}
	idx.index.Clear()
	total := 0
	for offset := 0; ; offset += reindexPageSize {
		docs, err := idx.storage.ListDocuments(ctx, offset, reindexPageSize)
		if err != nil {
			return total, fmt.Errorf("failed to list documents: %w", err)
		}
		for _, doc := range docs {
			n, err := idx.reindexDocument(ctx, svc.Embedder, doc)
			if err != nil {
				return total, fmt.Errorf("reindex %s: %w", doc.Name, err)
			}
			total += n
		}
		if len(docs) < reindexPageSize {
			break
		}
	}
	if idx.logger != nil {
		idx.logger.Info("reindex complete", zap.Int("vectors", total))
	}
	return total, nil
}

func (idx *Indexer) reindexDocument(ctx context.Context, emb embedding.Embedder, doc *models.Document) (int, error) {
	chunks, err := idx.storage.GetChunksByDocumentID(ctx, doc.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to get chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	passages := make([]string, len(chunks))
	for i, ch := range chunks {
		passages[i] = ch.Content
	}
	embeddings, err := idx.embedPassages(ctx, emb, passages)
	if err != nil {
		return 0, err
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	if err := idx.index.InsertMany(records(doc, chunks)); err != nil {
		return 0, fmt.Errorf("failed to index vectors: %w", err)
	}
	return len(chunks), nil
}
