package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/quill-labs/kbpull/internal/core/domain"
	"github.com/quill-labs/kbpull/internal/core/ports/driven"
	"github.com/quill-labs/kbpull/internal/core/ports/driving"
	"github.com/quill-labs/kbpull/internal/logger"
	"github.com/quill-labs/kbpull/internal/normalisers/wiki"
	"github.com/quill-labs/kbpull/internal/postprocessors/chunker"
)

// Ensure IngestPipeline implements the interface.
var _ driving.Ingestor = (*IngestPipeline)(nil)

const (
	// DefaultPageBatchSize bounds peak memory in the outer loop.
	DefaultPageBatchSize = 50

	// DefaultEmbedBatchSize bounds external-API burst rate.
	DefaultEmbedBatchSize = 5

	// DefaultMinContentLen skips pages too sparse to be useful.
	DefaultMinContentLen = 50

	// Inter-batch pacing intervals.
	embedBatchInterval = 50 * time.Millisecond
	pageBatchInterval  = 200 * time.Millisecond
)

// IngestConfig configures the embedding/storage pipeline.
type IngestConfig struct {
	// PageBatchSize overrides the outer batch size (default 50).
	PageBatchSize int

	// EmbedBatchSize overrides the inner batch size (default 5).
	EmbedBatchSize int

	// MinContentLen overrides the sparse-page threshold (default 50).
	MinContentLen int
}

// IngestPipeline chunks, embeds and stores pages in the vector store.
// Ingestion is best-effort: per-page failures are logged and skipped,
// partial storage is the norm rather than the exception.
type IngestPipeline struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	chunks   *chunker.Processor
	cfg      IngestConfig

	// Pacing between batches keeps the embedding API and the vector
	// store from seeing request bursts.
	embedLimiter *rate.Limiter
	pageLimiter  *rate.Limiter
}

// NewIngestPipeline creates a pipeline over the given services.
func NewIngestPipeline(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	chunks *chunker.Processor,
	cfg IngestConfig,
) *IngestPipeline {
	if cfg.PageBatchSize <= 0 {
		cfg.PageBatchSize = DefaultPageBatchSize
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if cfg.MinContentLen <= 0 {
		cfg.MinContentLen = DefaultMinContentLen
	}
	if chunks == nil {
		chunks = chunker.New()
	}
	return &IngestPipeline{
		embedder:     embedder,
		store:        store,
		chunks:       chunks,
		cfg:          cfg,
		embedLimiter: rate.NewLimiter(rate.Every(embedBatchInterval), 1),
		pageLimiter:  rate.NewLimiter(rate.Every(pageBatchInterval), 1),
	}
}

// Ingest processes pages in outer batches, and within each page embeds
// chunks in inner batches, upserting each inner batch as one call.
func (p *IngestPipeline) Ingest(ctx context.Context, pages []domain.Page) (*driving.IngestStats, error) {
	if p.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if p.store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}

	stats := &driving.IngestStats{}

	for offset := 0; offset < len(pages); offset += p.cfg.PageBatchSize {
		end := offset + p.cfg.PageBatchSize
		if end > len(pages) {
			end = len(pages)
		}

		for i := offset; i < end; i++ {
			if err := p.ingestPage(ctx, &pages[i], stats); err != nil {
				stats.PagesFailed++
				logger.Warn("Failed to ingest page %s: %v", pages[i].ID, err)
			}
		}

		if end < len(pages) {
			if err := p.pageLimiter.Wait(ctx); err != nil {
				return stats, err
			}
		}
	}

	logger.Info("Ingested %d pages (%d skipped, %d failed, %d chunks, %d mocked embeddings)",
		stats.PagesStored, stats.PagesSkipped, stats.PagesFailed, stats.Chunks, stats.MockedEmbeddings)
	return stats, nil
}

// ingestPage normalises, chunks, embeds and stores one page.
func (p *IngestPipeline) ingestPage(ctx context.Context, page *domain.Page, stats *driving.IngestStats) error {
	content := wiki.Normalise(page.BodyText())
	if len(content) < p.cfg.MinContentLen {
		logger.Debug("Skipping sparse page %s (%d chars)", page.ID, len(content))
		stats.PagesSkipped++
		return nil
	}

	meta := map[string]any{
		domain.MetaSource: "confluence",
		domain.MetaTitle:  page.Title,
		domain.MetaPageID: page.ID,
	}
	if page.WebURL != "" {
		meta[domain.MetaURL] = page.WebURL
	}

	chunks := p.chunks.Process(content, meta)

	for offset := 0; offset < len(chunks); offset += p.cfg.EmbedBatchSize {
		end := offset + p.cfg.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[offset:end]

		points, mocked, err := p.embedBatch(ctx, batch)
		if err != nil {
			return err
		}
		if err := p.store.Upsert(ctx, points); err != nil {
			return fmt.Errorf("upsert points: %w", err)
		}
		stats.Chunks += len(points)
		stats.MockedEmbeddings += mocked

		if end < len(chunks) {
			if err := p.embedLimiter.Wait(ctx); err != nil {
				return err
			}
		}
	}

	stats.PagesStored++
	return nil
}

// embedBatch turns one inner batch of chunks into vector points. When
// the embedding call fails, placeholder vectors of the configured
// dimensionality are substituted so downstream code never sees missing
// vectors - and the payload is marked so degraded points remain
// distinguishable from real ones in the store.
func (p *IngestPipeline) embedBatch(ctx context.Context, batch []domain.Chunk) ([]domain.VectorPoint, int, error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Content
	}

	mocked := 0
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil || len(vectors) != len(batch) {
		if err != nil {
			logger.Warn("Embedding batch failed, storing placeholder vectors: %v", err)
		} else {
			logger.Warn("Embedding batch returned %d vectors for %d chunks, storing placeholders", len(vectors), len(batch))
		}
		vectors = make([][]float32, len(batch))
		for i := range vectors {
			vectors[i] = mockVector(p.embedder.Dimensions())
		}
		mocked = len(batch)
	}

	points := make([]domain.VectorPoint, len(batch))
	for i, c := range batch {
		payload := make(map[string]any, len(c.Metadata)+2)
		for k, v := range c.Metadata {
			payload[k] = v
		}
		payload["content"] = c.Content
		if mocked > 0 {
			payload[domain.MetaEmbeddingMocked] = true
		}
		points[i] = domain.VectorPoint{
			ID:      c.ID,
			Vector:  vectors[i],
			Payload: payload,
		}
	}

	return points, mocked, nil
}

// mockVector returns a placeholder of the right shape with random
// values. Stored only alongside the embedding_mocked payload flag.
func mockVector(dimensions int) []float32 {
	if dimensions <= 0 {
		dimensions = 1536
	}
	v := make([]float32, dimensions)
	for i := range v {
		v[i] = rand.Float32()*2 - 1
	}
	return v
}
