package driven

import (
	"context"

	"github.com/quill-labs/kbpull/internal/core/domain"
)

// TicketService fetches issues from the ticketing system.
//
// Implementations map upstream 4xx responses to the domain sentinel
// errors (ErrNotFound, ErrAuthInvalid, ErrAccessDenied) and do not
// retry automatically.
type TicketService interface {
	// GetIssue fetches a single issue by key, e.g. "ABC-123".
	GetIssue(ctx context.Context, key string) (*domain.Issue, error)
}
