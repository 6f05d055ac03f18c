package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/quill-labs/kbpull/internal/core/domain"
	"github.com/quill-labs/kbpull/internal/core/ports/driven"
	"github.com/quill-labs/kbpull/internal/logger"
)

// Adaptive escalation parameters. A first pass with a narrow keyword
// set keeps output focused; when it matches fewer than MinMatchedPages
// pages the extraction is recomputed with the wider count.
const (
	// InitialKeywordCount is the keyword count for the first attempt.
	InitialKeywordCount = 5

	// EscalatedKeywordCount is the keyword count after escalation.
	EscalatedKeywordCount = 10

	// MinMatchedPages is the recall threshold that triggers escalation.
	MinMatchedPages = 10
)

// priorityMultiplier boosts domain/technical vocabulary.
const priorityMultiplier = 3.0

// lengthBonus boosts tokens longer than longTokenLen characters.
const (
	lengthBonus  = 1.5
	longTokenLen = 7
)

// stopWords are common tokens excluded from local extraction.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "has": {}, "have": {},
	"was": {}, "were": {}, "will": {}, "with": {}, "this": {}, "that": {},
	"from": {}, "they": {}, "been": {}, "their": {}, "there": {},
	"which": {}, "would": {}, "could": {}, "should": {}, "about": {},
	"into": {}, "when": {}, "where": {}, "what": {}, "then": {},
	"than": {}, "them": {}, "these": {}, "those": {}, "some": {},
	"such": {}, "also": {}, "more": {}, "most": {}, "other": {},
	"each": {}, "between": {}, "after": {}, "before": {}, "during": {},
	"over": {}, "under": {}, "only": {}, "very": {}, "must": {},
	"may": {}, "might": {}, "any": {}, "its": {}, "our": {}, "your": {},
	"page": {}, "section": {}, "note": {}, "example": {}, "using": {},
	"used": {}, "use": {}, "new": {}, "one": {}, "two": {},
}

// priorityTerms is the fixed technical vocabulary whose weight is
// multiplied during local extraction.
var priorityTerms = map[string]struct{}{
	"api": {}, "authentication": {}, "authorization": {}, "backend": {},
	"cache": {}, "cluster": {}, "config": {}, "configuration": {},
	"database": {}, "deployment": {}, "endpoint": {}, "frontend": {},
	"integration": {}, "kafka": {}, "kubernetes": {}, "login": {},
	"microservice": {}, "migration": {}, "monitoring": {}, "network": {},
	"oauth": {}, "pipeline": {}, "protocol": {}, "queue": {},
	"redis": {}, "schema": {}, "security": {}, "server": {},
	"service": {}, "storage": {}, "token": {}, "webhook": {},
}

// nonAlnum matches every character dropped before tokenising.
var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// KeywordExtractor derives ranked keyword lists from a reference
// document, either locally (frequency/weight scoring) or remotely via
// the LLM service, and applies the adaptive escalation policy when
// filtering recall is too low.
type KeywordExtractor struct {
	llm           driven.LLMService
	useAI         bool
	stopOnAIError bool
	survivorsPath string
}

// KeywordExtractorConfig configures a KeywordExtractor.
type KeywordExtractorConfig struct {
	// UseAI selects the remote extraction strategy. Requires an LLM
	// service; ignored when none is supplied.
	UseAI bool

	// StopOnAIError makes remote extraction failures fatal instead of
	// degrading to an empty keyword list.
	StopOnAIError bool

	// SurvivorsPath, when set, receives the IDs of pages surviving the
	// adaptive filter, one per line.
	SurvivorsPath string
}

// NewKeywordExtractor creates a keyword extractor. llm may be nil when
// only local strategies are used.
func NewKeywordExtractor(llm driven.LLMService, cfg KeywordExtractorConfig) *KeywordExtractor {
	return &KeywordExtractor{
		llm:           llm,
		useAI:         cfg.UseAI,
		stopOnAIError: cfg.StopOnAIError,
		survivorsPath: cfg.SurvivorsPath,
	}
}

// ExtractLocal derives the top-n keywords from doc by frequency
// scoring: lowercased alphanumeric tokens, stop-words and tokens of
// length <= 2 dropped, frequency multiplied for priority terms and
// long tokens.
func ExtractLocal(doc string, n int) []domain.Keyword {
	counts := make(map[string]int)
	for _, token := range tokenise(doc) {
		counts[token]++
	}

	keywords := make([]domain.Keyword, 0, len(counts))
	for word, count := range counts {
		weight := float64(count)
		if _, ok := priorityTerms[word]; ok {
			weight *= priorityMultiplier
		}
		if len(word) > longTokenLen {
			weight *= lengthBonus
		}
		keywords = append(keywords, domain.Keyword{Word: word, Weight: weight})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Weight == keywords[j].Weight {
			return keywords[i].Word < keywords[j].Word
		}
		return keywords[i].Weight > keywords[j].Weight
	})

	if len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}

// ExtractSectionWeighted biases local extraction toward the most
// semantically dense sections of the reference document: the Summary
// section is repeated three times, Description twice and Details once
// before the full document is appended and tokenised.
func ExtractSectionWeighted(doc string, n int) []domain.Keyword {
	var weighted strings.Builder

	for _, sw := range []struct {
		name   string
		repeat int
	}{
		{"Summary", 3},
		{"Description", 2},
		{"Details", 1},
	} {
		section := extractSection(doc, sw.name)
		for i := 0; i < sw.repeat; i++ {
			weighted.WriteString(section)
			weighted.WriteString("\n")
		}
	}
	weighted.WriteString(doc)

	return ExtractLocal(weighted.String(), n)
}

// keywordPrompt instructs the model; lines that violate it (preamble,
// labels) are discarded by parseRemoteKeywords.
const keywordPrompt = `Extract the %d most important technical keywords from the following document.
Return one keyword per line, lowercase, no numbering, no explanations.

%s`

const keywordSystemPrompt = "You extract concise technical keywords from engineering documents."

// ExtractRemote asks the LLM service for the n most important
// keywords in doc. The caller decides whether a failure is fatal.
func (e *KeywordExtractor) ExtractRemote(ctx context.Context, doc string, n int) ([]string, error) {
	if e.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	response, err := e.llm.Complete(ctx, keywordSystemPrompt, fmt.Sprintf(keywordPrompt, n, doc), driven.CompleteOptions{
		MaxTokens:   200,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}

	return parseRemoteKeywords(response, n), nil
}

// parseRemoteKeywords splits a completion into keywords, discarding
// preamble-looking lines (anything containing a colon or the literal
// word "keyword") and truncating to n.
func parseRemoteKeywords(response string, n int) []string {
	var keywords []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		if strings.Contains(line, ":") || strings.Contains(line, "keyword") {
			continue
		}
		keywords = append(keywords, line)
		if len(keywords) == n {
			break
		}
	}
	return keywords
}

// AdaptiveResult is the outcome of adaptive keyword extraction.
type AdaptiveResult struct {
	// Keywords are the keywords of the last extraction attempt.
	Keywords []string

	// Pages are the pages surviving the last filter pass.
	Pages []domain.Page

	// Escalated reports whether the wider keyword count was used.
	Escalated bool
}

// ExtractAdaptive runs the adaptive escalation policy: extract
// InitialKeywordCount keywords from the reference document and filter
// the page set; when fewer than MinMatchedPages pages match, recompute
// the extraction with EscalatedKeywordCount and re-filter. Keywords
// are recomputed from scratch on escalation, not extended: the wider
// top-N may select different words. Surviving page IDs are persisted
// to the configured side file.
func (e *KeywordExtractor) ExtractAdaptive(ctx context.Context, referenceDoc string, pages []domain.Page) (*AdaptiveResult, error) {
	keywords, err := e.extract(ctx, referenceDoc, InitialKeywordCount)
	if err != nil {
		return nil, err
	}

	logger.Info("Extracted %d keywords: %s", len(keywords), strings.Join(keywords, ", "))
	matched := FilterPages(pages, keywords)

	escalated := false
	if len(matched) < MinMatchedPages {
		logger.Info("Only %d pages matched (minimum %d), re-extracting with %d keywords",
			len(matched), MinMatchedPages, EscalatedKeywordCount)

		wider, err := e.extract(ctx, referenceDoc, EscalatedKeywordCount)
		if err != nil {
			return nil, err
		}

		keywords = wider
		matched = FilterPages(pages, keywords)
		escalated = true
		logger.Info("Escalated filter matched %d pages", len(matched))
	}

	if e.survivorsPath != "" {
		if err := saveSurvivors(e.survivorsPath, matched); err != nil {
			logger.Warn("Failed to persist matched page IDs: %v", err)
		}
	}

	return &AdaptiveResult{
		Keywords:  keywords,
		Pages:     matched,
		Escalated: escalated,
	}, nil
}

// extract applies the configured strategy. Remote failures degrade to
// an empty keyword list (filter pass-through) unless StopOnAIError.
func (e *KeywordExtractor) extract(ctx context.Context, doc string, n int) ([]string, error) {
	if e.useAI && e.llm != nil {
		keywords, err := e.ExtractRemote(ctx, doc, n)
		if err != nil {
			if e.stopOnAIError {
				return nil, err
			}
			logger.Warn("AI keyword extraction failed, continuing without filter keywords: %v", err)
			return nil, nil
		}
		return keywords, nil
	}

	local := ExtractSectionWeighted(doc, n)
	words := make([]string, len(local))
	for i, kw := range local {
		words[i] = kw.Word
	}
	return words, nil
}

// saveSurvivors writes one page ID per line for later reuse.
func saveSurvivors(path string, pages []domain.Page) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(p.ID)
		sb.WriteString("\n")
	}
	return os.WriteFile(path, []byte(sb.String()), 0o600)
}

// tokenise lowercases doc, strips non-alphanumerics and drops short
// tokens and stop-words.
func tokenise(doc string) []string {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(doc), " ")

	var tokens []string
	for _, token := range strings.Fields(cleaned) {
		if len(token) <= 2 {
			continue
		}
		if _, ok := stopWords[token]; ok {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// sectionPattern matches a markdown heading for the named section and
// captures its body up to the next heading.
func sectionPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^#{1,6}[ \t]*` + name + `\b[^\n]*\n(?s:(.*?))(?:\n#{1,6}[ \t]|\z)`)
}

var sectionPatterns = map[string]*regexp.Regexp{
	"Summary":     sectionPattern("Summary"),
	"Description": sectionPattern("Description"),
	"Details":     sectionPattern("Details"),
}

// extractSection returns the body of the named section, or "" when the
// document has no such heading.
func extractSection(doc, name string) string {
	re, ok := sectionPatterns[name]
	if !ok {
		re = sectionPattern(name)
	}
	m := re.FindStringSubmatch(doc)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
