package services

import (
	"testing"

	"github.com/quill-labs/kbpull/internal/core/domain"
)

func makePage(id, title, body string) domain.Page {
	return domain.Page{
		ID:    id,
		Title: title,
		Body: &domain.PageBody{
			Storage: &domain.PageContent{Value: body, Representation: "storage"},
		},
	}
}

func TestMatchPage(t *testing.T) {
	page := makePage("1", "Deployment Guide", "How to deploy the API gateway")

	t.Run("matches title case-insensitively", func(t *testing.T) {
		result := MatchPage(&page, []string{"DEPLOYMENT"})
		if !result.Matched {
			t.Error("expected match on title")
		}
		if len(result.Keywords) != 1 || result.Keywords[0] != "deployment" {
			t.Errorf("unexpected matched keywords: %v", result.Keywords)
		}
	})

	t.Run("matches body", func(t *testing.T) {
		if !MatchPage(&page, []string{"gateway"}).Matched {
			t.Error("expected match on body")
		}
	})

	t.Run("no match", func(t *testing.T) {
		if MatchPage(&page, []string{"kubernetes", "redis"}).Matched {
			t.Error("expected no match")
		}
	})

	t.Run("minimal page matches on title only", func(t *testing.T) {
		minimal := domain.Page{ID: "2", Title: "Redis Cache Setup"}
		if !MatchPage(&minimal, []string{"redis"}).Matched {
			t.Error("expected bodyless page to match on title")
		}
	})
}

func TestFilterPages(t *testing.T) {
	pages := []domain.Page{
		makePage("1", "API Design", "rest endpoints"),
		makePage("2", "Team Lunch", "pizza friday"),
		makePage("3", "Auth Flow", "oauth token exchange"),
	}

	t.Run("keeps matching pages only", func(t *testing.T) {
		got := FilterPages(pages, []string{"api", "oauth"})
		if len(got) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(got))
		}
		if got[0].ID != "1" || got[1].ID != "3" {
			t.Errorf("unexpected pages: %v, %v", got[0].ID, got[1].ID)
		}
	})

	t.Run("empty keywords pass everything through", func(t *testing.T) {
		got := FilterPages(pages, nil)
		if len(got) != len(pages) {
			t.Errorf("expected pass-through of %d pages, got %d", len(pages), len(got))
		}
	})
}

func TestFilterPagesStrict(t *testing.T) {
	pages := []domain.Page{makePage("1", "API Design", "rest endpoints")}

	t.Run("empty keywords match nothing", func(t *testing.T) {
		if got := FilterPagesStrict(pages, nil); len(got) != 0 {
			t.Errorf("expected no pages, got %d", len(got))
		}
	})

	t.Run("non-empty keywords behave like FilterPages", func(t *testing.T) {
		if got := FilterPagesStrict(pages, []string{"api"}); len(got) != 1 {
			t.Errorf("expected 1 page, got %d", len(got))
		}
	})
}
