package driven

import (
	"context"

	"github.com/quill-labs/kbpull/internal/core/domain"
)

// VectorStore provides collection lifecycle and point operations
// against the similarity-search backend.
type VectorStore interface {
	// Ping is a pre-flight reachability probe. Callers use it before
	// EnsureCollection so that an unreachable store fails cleanly and
	// file-based output can continue without vector storage.
	Ping(ctx context.Context) error

	// EnsureCollection creates the configured collection when absent.
	EnsureCollection(ctx context.Context) error

	// Upsert writes points, waiting for the operation to be applied.
	Upsert(ctx context.Context, points []domain.VectorPoint) error

	// Search returns the best matches for the query vector, optionally
	// restricted to points whose payload matches every filter entry.
	Search(ctx context.Context, vector []float32, limit int, filter map[string]string) ([]VectorHit, error)

	// Clear removes every point from the collection.
	Clear(ctx context.Context) error

	// Stats reports collection status and point count.
	Stats(ctx context.Context) (*CollectionStats, error)
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// ID is the matched point identifier.
	ID string

	// Score is the similarity score reported by the backend.
	Score float64

	// Payload is the stored point payload.
	Payload map[string]any
}

// CollectionStats summarises the state of the collection.
type CollectionStats struct {
	// Status is the backend-reported collection status ("green", ...).
	Status string

	// Points is the number of stored points.
	Points int64
}
