package driving

import (
	"context"
	"time"

	"github.com/quill-labs/kbpull/internal/core/domain"
)

// RetrievalPipeline runs the two-phase wiki retrieval: a minimal
// listing of the whole space, optional keyword filtering, and a
// full-content fetch restricted to the surviving IDs.
type RetrievalPipeline interface {
	Run(ctx context.Context) (*RetrievalResult, error)
}

// RetrievalResult is the outcome of one pipeline run.
type RetrievalResult struct {
	// Pages holds the full-content pages that survived filtering and
	// were fetched successfully.
	Pages []domain.Page

	// Stats describes the run for the digest footer and logs.
	Stats RetrievalStats
}

// RetrievalStats captures fetch and filter counters for one run.
type RetrievalStats struct {
	// Listed is the number of pages found by the phase-1 listing.
	Listed int

	// Matched is the number of pages surviving keyword filtering.
	// Equal to Listed when filtering is disabled.
	Matched int

	// Fetched is the number of pages with full content retrieved.
	Fetched int

	// Failed is the number of per-ID fetch failures in phase 2.
	Failed int

	// Keywords lists the keywords used by the last filter attempt.
	Keywords []string

	// Escalated reports whether the adaptive extractor widened the
	// keyword set after a low-recall first pass.
	Escalated bool

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Ingestor stores pages into the vector backend as embedded chunks.
type Ingestor interface {
	Ingest(ctx context.Context, pages []domain.Page) (*IngestStats, error)
}

// IngestStats captures counters for one ingestion run.
type IngestStats struct {
	// PagesStored is the number of pages successfully chunked,
	// embedded and upserted.
	PagesStored int

	// PagesSkipped counts pages whose normalised content was too
	// short to be useful.
	PagesSkipped int

	// PagesFailed counts pages abandoned after an error.
	PagesFailed int

	// Chunks is the total number of chunks upserted.
	Chunks int

	// MockedEmbeddings counts chunks stored with a placeholder vector
	// after an embedding failure.
	MockedEmbeddings int
}
