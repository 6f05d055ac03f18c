package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/quill-labs/kbpull/internal/adapters/driven/config/file"
	"github.com/quill-labs/kbpull/internal/core/domain"
	"github.com/quill-labs/kbpull/internal/core/ports/driven"
	"github.com/quill-labs/kbpull/internal/core/ports/driving"
)

type fakeTickets struct {
	issue *domain.Issue
	err   error
}

func (f *fakeTickets) GetIssue(context.Context, string) (*domain.Issue, error) {
	return f.issue, f.err
}

type fakeRetrieval struct {
	result *driving.RetrievalResult
	err    error

	// filterRequested records what the factory was asked for.
	filterRequested *bool
}

func (f *fakeRetrieval) Run(context.Context) (*driving.RetrievalResult, error) {
	return f.result, f.err
}

type fakeIngestor struct {
	stats *driving.IngestStats
	err   error
	pages int
}

func (f *fakeIngestor) Ingest(_ context.Context, pages []domain.Page) (*driving.IngestStats, error) {
	f.pages = len(pages)
	return f.stats, f.err
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return f.vector, f.err
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = f.vector
	}
	return out, f.err
}

func (f *fakeEmbedder) Dimensions() int            { return len(f.vector) }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }
func (f *fakeEmbedder) Close() error               { return nil }

type fakeStore struct {
	hits    []driven.VectorHit
	pingErr error

	lastLimit  int
	lastFilter map[string]string
}

func (f *fakeStore) Ping(context.Context) error                         { return f.pingErr }
func (f *fakeStore) EnsureCollection(context.Context) error             { return nil }
func (f *fakeStore) Upsert(context.Context, []domain.VectorPoint) error { return nil }
func (f *fakeStore) Clear(context.Context) error                        { return nil }

func (f *fakeStore) Search(_ context.Context, _ []float32, limit int, filter map[string]string) ([]driven.VectorHit, error) {
	f.lastLimit = limit
	f.lastFilter = filter
	return f.hits, nil
}

func (f *fakeStore) Stats(context.Context) (*driven.CollectionStats, error) {
	return &driven.CollectionStats{Status: "green", Points: 1}, nil
}

// setupTestServices wires fakes into the package-level services and
// returns the fakes for assertions. State is restored via t.Cleanup.
func setupTestServices(t *testing.T) (*fakeTickets, *fakeRetrieval, *fakeIngestor, *fakeStore) {
	t.Helper()

	tickets := &fakeTickets{issue: &domain.Issue{Key: "ABC-1", Summary: "Test issue"}}
	retrieval := &fakeRetrieval{
		result: &driving.RetrievalResult{
			Pages: []domain.Page{{ID: "p1", Title: "Page 1"}},
			Stats: driving.RetrievalStats{Listed: 1, Matched: 1, Fetched: 1},
		},
	}
	ing := &fakeIngestor{stats: &driving.IngestStats{PagesStored: 1, Chunks: 3}}
	store := &fakeStore{}

	cfg, err := file.Load("/nonexistent/config.toml")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	cfg.Output.Dir = t.TempDir()
	cfg.Confluence.SpaceKey = "ENG"

	Setup(Services{
		Tickets:     tickets,
		Embedder:    &fakeEmbedder{vector: []float32{0.1, 0.2}},
		VectorStore: store,
		Ingestor:    ing,
		NewRetrieval: func(filter bool) driving.RetrievalPipeline {
			retrieval.filterRequested = &filter
			return retrieval
		},
		Config: cfg,
	})

	t.Cleanup(func() {
		Setup(Services{})
		rootCmd.SetArgs(nil)
	})

	return tickets, retrieval, ing, store
}

var errBoom = errors.New("boom")
