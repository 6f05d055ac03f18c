package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/quill-labs/kbpull/internal/core/domain"
	"github.com/quill-labs/kbpull/internal/core/ports/driving"
	"github.com/quill-labs/kbpull/internal/normalisers/wiki"
)

// timestampLayout is used in generated digest headers.
const timestampLayout = "2006-01-02 15:04:05 MST"

// RenderIssueDigest renders a fetched issue as a markdown document
// with a generated-timestamp header.
func RenderIssueDigest(issue *domain.Issue, now time.Time) string {
	blocks := []string{
		fmt.Sprintf("# JIRA Issue: %s", issue.Key),
		fmt.Sprintf("_Generated: %s_", now.Format(timestampLayout)),
		"## Summary",
		issue.Summary,
		"## Description",
		issue.Description,
		"## Details",
		detailsTable(issue),
	}
	return wiki.JoinBlocks(blocks) + "\n"
}

func detailsTable(issue *domain.Issue) string {
	var sb strings.Builder
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	fmt.Fprintf(&sb, "| Type | %s |\n", orDash(issue.Type))
	fmt.Fprintf(&sb, "| Priority | %s |\n", orDash(issue.Priority))
	fmt.Fprintf(&sb, "| Status | %s |", orDash(issue.Status))
	return sb.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// RenderWikiDigest renders the retrieved pages as one markdown
// document: a generated-timestamp header, a section per page with the
// normalised content, and a fetch/filter statistics footer.
func RenderWikiDigest(spaceKey string, pages []domain.Page, stats driving.RetrievalStats, now time.Time) string {
	blocks := make([]string, 0, 2*len(pages)+4)

	blocks = append(blocks,
		fmt.Sprintf("# Wiki Digest: %s", spaceKey),
		fmt.Sprintf("_Generated: %s_", now.Format(timestampLayout)),
	)

	for i := range pages {
		page := &pages[i]
		blocks = append(blocks, fmt.Sprintf("## %s", page.Title))
		content := wiki.Normalise(page.BodyText())
		if content == "" {
			content = "_(no content)_"
		}
		blocks = append(blocks, content)
	}

	blocks = append(blocks, statsFooter(stats))
	return wiki.JoinBlocks(blocks) + "\n"
}

func statsFooter(stats driving.RetrievalStats) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "Pages listed: %d | matched: %d | fetched: %d | failed: %d\n",
		stats.Listed, stats.Matched, stats.Fetched, stats.Failed)
	if len(stats.Keywords) > 0 {
		fmt.Fprintf(&sb, "Filter keywords: %s", strings.Join(stats.Keywords, ", "))
		if stats.Escalated {
			sb.WriteString(" (escalated)")
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Duration: %s", stats.Duration.Round(time.Millisecond))
	return sb.String()
}
