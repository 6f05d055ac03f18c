// Package wiki normalises wiki page bodies (Confluence storage or
// rendered view format) into plain text suitable for markdown digests
// and chunking.
package wiki

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for markup stripping performance.
var (
	macroTag      = regexp.MustCompile(`(?is)<ac:structured-macro[^>]*>.*?</ac:structured-macro>`)
	cdataBlock    = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	xmlComments   = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClose    = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|td|th)>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	bareURLs      = regexp.MustCompile(`https?://\S+`)
	bareEmails    = regexp.MustCompile(`\S+@\S+\.\S+`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Literal artifacts removed after tag stripping. Macro bodies leave
// stray braces behind, and exported pages embed notification-address
// suffixes that carry no content.
var literalArtifacts = []string{"{", "}"}

// Normalise strips markup, tracked URLs and emails, and literal
// artifacts from raw page content, collapsing repeated blank lines.
//
// It is a pure function with no failure modes: malformed input passes
// through with best-effort cleanup.
func Normalise(raw string) string {
	if raw == "" {
		return ""
	}

	content := raw

	// Drop macro bodies entirely, keep CDATA text.
	content = macroTag.ReplaceAllString(content, "")
	content = cdataBlock.ReplaceAllString(content, "$1")
	content = xmlComments.ReplaceAllString(content, "")

	// Turn block boundaries into newlines before stripping the rest.
	content = brTags.ReplaceAllString(content, "\n")
	content = blockClose.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")

	content = html.UnescapeString(content)

	content = bareURLs.ReplaceAllString(content, "")
	content = bareEmails.ReplaceAllString(content, "")

	for _, artifact := range literalArtifacts {
		content = strings.ReplaceAll(content, artifact, "")
	}

	content = multiSpaces.ReplaceAllString(content, " ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	// Trim each line, keeping single blank lines between blocks.
	lines := strings.Split(content, "\n")
	trimmed := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(trimmed) > 0 {
				trimmed = append(trimmed, "")
			}
			blank = true
			continue
		}
		blank = false
		trimmed = append(trimmed, line)
	}

	return strings.TrimSpace(strings.Join(trimmed, "\n"))
}

// JoinBlocks concatenates content blocks with blank-line separators in
// linear time. Large page sets make repeated string concatenation
// quadratic, so digests are assembled through this instead.
func JoinBlocks(blocks []string) string {
	nonEmpty := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			nonEmpty = append(nonEmpty, b)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
