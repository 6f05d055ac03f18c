package driven

import (
	"context"

	"github.com/quill-labs/kbpull/internal/core/domain"
)

// WikiService provides paginated listing and per-ID content fetch
// against the wiki system.
type WikiService interface {
	// ListPages returns one window of the space's page listing,
	// starting at the given offset with at most limit entries.
	// Listed pages are minimal: no body is populated. There is no
	// definitive has-next flag; callers treat a full window as a
	// "maybe more" signal.
	ListPages(ctx context.Context, spaceKey string, start, limit int) ([]domain.Page, error)

	// GetPage fetches one page with full body content (storage and
	// view representations expanded).
	GetPage(ctx context.Context, id string) (*domain.Page, error)
}
