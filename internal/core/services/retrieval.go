package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quill-labs/kbpull/internal/core/domain"
	"github.com/quill-labs/kbpull/internal/core/ports/driven"
	"github.com/quill-labs/kbpull/internal/core/ports/driving"
	"github.com/quill-labs/kbpull/internal/logger"
)

// Ensure RetrievalOrchestrator implements the interface.
var _ driving.RetrievalPipeline = (*RetrievalOrchestrator)(nil)

const (
	// DefaultListLimit is the page size for phase-1 listing requests.
	DefaultListLimit = 100

	// DefaultFetchBatchSize bounds concurrent phase-2 content fetches.
	DefaultFetchBatchSize = 10
)

// RetrievalConfig configures a pipeline run.
type RetrievalConfig struct {
	// SpaceKey is the wiki space to retrieve.
	SpaceKey string

	// FilterByKeywords enables the adaptive keyword filter between the
	// two phases. When false the whole listing is fetched in full.
	FilterByKeywords bool

	// ReferencePath is the markdown document keywords are derived
	// from. Required when FilterByKeywords is set.
	ReferencePath string

	// ListLimit overrides the phase-1 page size (default 100).
	ListLimit int

	// FetchBatchSize overrides the phase-2 concurrency (default 10).
	FetchBatchSize int
}

// RetrievalOrchestrator runs the two-phase page retrieval: a minimal
// listing of the whole space, optional adaptive keyword filtering, and
// a full-content fetch restricted to the surviving IDs. The two phases
// never loop back into each other.
type RetrievalOrchestrator struct {
	wikiService driven.WikiService
	extractor   *KeywordExtractor
	cache       *FileCache
	cfg         RetrievalConfig
}

// NewRetrievalOrchestrator creates a pipeline. The extractor may be
// nil when FilterByKeywords is disabled.
func NewRetrievalOrchestrator(
	wikiService driven.WikiService,
	extractor *KeywordExtractor,
	cfg RetrievalConfig,
) *RetrievalOrchestrator {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = DefaultListLimit
	}
	if cfg.FetchBatchSize <= 0 {
		cfg.FetchBatchSize = DefaultFetchBatchSize
	}
	return &RetrievalOrchestrator{
		wikiService: wikiService,
		extractor:   extractor,
		cache:       NewFileCache(),
		cfg:         cfg,
	}
}

// Run executes both phases and returns the full-content pages. The
// result may be smaller than the filtered set because per-ID fetch
// failures are excluded rather than fatal; an entirely empty phase is
// fatal (ErrEmptySpace, ErrEmptyRetrieval).
func (o *RetrievalOrchestrator) Run(ctx context.Context) (*driving.RetrievalResult, error) {
	started := time.Now()
	stats := driving.RetrievalStats{}

	logger.Section("Phase 1: listing")
	listing := o.listAllPages(ctx)
	if len(listing) == 0 {
		return nil, fmt.Errorf("space %s: %w", o.cfg.SpaceKey, domain.ErrEmptySpace)
	}
	stats.Listed = len(listing)
	logger.Info("Listed %d pages in space %s", len(listing), o.cfg.SpaceKey)

	selected := listing
	if o.cfg.FilterByKeywords {
		logger.Section("Keyword filtering")
		result, err := o.filterListing(ctx, listing)
		if err != nil {
			return nil, err
		}
		selected = result.Pages
		stats.Keywords = result.Keywords
		stats.Escalated = result.Escalated
	}
	stats.Matched = len(selected)

	logger.Section("Phase 2: full fetch")
	pages, failed := o.fetchFullPages(ctx, selected)
	if len(pages) == 0 {
		return nil, fmt.Errorf("space %s: %w", o.cfg.SpaceKey, domain.ErrEmptyRetrieval)
	}
	stats.Fetched = len(pages)
	stats.Failed = failed
	stats.Duration = time.Since(started)

	logger.Info("Retrieved %d of %d pages (%d failed) in %s",
		len(pages), len(selected), failed, stats.Duration.Round(time.Millisecond))

	return &driving.RetrievalResult{Pages: pages, Stats: stats}, nil
}

// listAllPages paginates the space listing. A full window is treated
// as a "maybe more" signal; a short window stops the loop. Errors stop
// pagination early with the pages accumulated so far - a deliberate
// best-effort degradation, surfaced via logs rather than failing the
// whole run.
func (o *RetrievalOrchestrator) listAllPages(ctx context.Context) []domain.Page {
	var all []domain.Page

	start := 0
	for {
		batch, err := o.wikiService.ListPages(ctx, o.cfg.SpaceKey, start, o.cfg.ListLimit)
		if err != nil {
			logger.Warn("Listing stopped early at offset %d: %v", start, err)
			return all
		}

		all = append(all, batch...)
		logger.Debug("Listed %d pages at offset %d", len(batch), start)

		if len(batch) < o.cfg.ListLimit {
			return all
		}
		start += o.cfg.ListLimit
	}
}

// filterListing reads the reference document through the run-scoped
// cache and applies the adaptive keyword pipeline.
func (o *RetrievalOrchestrator) filterListing(ctx context.Context, listing []domain.Page) (*AdaptiveResult, error) {
	if o.extractor == nil {
		return nil, fmt.Errorf("keyword filtering enabled but no extractor configured: %w", domain.ErrInvalidInput)
	}

	referenceDoc, err := o.cache.Read(o.cfg.ReferencePath)
	if err != nil {
		return nil, fmt.Errorf("reference document: %w", err)
	}

	return o.extractor.ExtractAdaptive(ctx, referenceDoc, listing)
}

// fetchFullPages retrieves full content for the selected pages in
// sequential batches; within a batch all requests run concurrently.
// A single ID's failure is logged and excluded, never fatal for the
// batch. Returns the fetched pages and the failure count.
func (o *RetrievalOrchestrator) fetchFullPages(ctx context.Context, selected []domain.Page) ([]domain.Page, int) {
	pages := make([]domain.Page, 0, len(selected))
	failed := 0

	for offset := 0; offset < len(selected); offset += o.cfg.FetchBatchSize {
		end := offset + o.cfg.FetchBatchSize
		if end > len(selected) {
			end = len(selected)
		}
		batch := selected[offset:end]

		// Launch the batch, await all of it, then proceed. Completion
		// order within the batch is not guaranteed; result slots keep
		// the output ordered.
		results := make([]*domain.Page, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(slot int, id string) {
				defer wg.Done()
				page, err := o.wikiService.GetPage(ctx, id)
				if err != nil {
					logger.Warn("Failed to fetch page %s: %v", id, err)
					return
				}
				results[slot] = page
			}(i, batch[i].ID)
		}
		wg.Wait()

		for _, page := range results {
			if page == nil {
				failed++
				continue
			}
			pages = append(pages, *page)
		}
	}

	return pages, failed
}
