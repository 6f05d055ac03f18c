package services

import (
	"strings"

	"github.com/quill-labs/kbpull/internal/core/domain"
)

// MatchPage reports whether any keyword appears (case-insensitively)
// in the page's title or body, along with the keywords that matched.
// The result is transient and recomputed on every filter pass.
func MatchPage(page *domain.Page, keywords []string) domain.FilterResult {
	haystack := strings.ToLower(page.Title + " " + page.BodyText())

	var matched []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, kw) {
			matched = append(matched, kw)
		}
	}

	return domain.FilterResult{
		Matched:  len(matched) > 0,
		Keywords: matched,
	}
}

// FilterPages returns the pages matching at least one keyword.
//
// An empty keyword list means keywords are deliberately absent, so
// every page passes through unfiltered. Callers that want the opposite
// policy use FilterPagesStrict.
func FilterPages(pages []domain.Page, keywords []string) []domain.Page {
	if len(keywords) == 0 {
		return pages
	}

	matched := make([]domain.Page, 0, len(pages))
	for i := range pages {
		if MatchPage(&pages[i], keywords).Matched {
			matched = append(matched, pages[i])
		}
	}
	return matched
}

// FilterPagesStrict behaves like FilterPages except that an empty
// keyword list matches nothing.
func FilterPagesStrict(pages []domain.Page, keywords []string) []domain.Page {
	if len(keywords) == 0 {
		return nil
	}
	return FilterPages(pages, keywords)
}
