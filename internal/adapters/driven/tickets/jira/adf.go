package jira

import "strings"

// adfNode is a node in an Atlassian Document Format tree. Only the
// fields needed to recover plain text are decoded.
type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

// renderADF flattens an ADF tree to plain text. Block-level nodes end
// with a newline, list items are bulleted, everything else is passed
// through. Unknown node types still have their children walked so new
// ADF constructs degrade to their inner text.
func renderADF(node *adfNode) string {
	var b strings.Builder
	walkADF(node, &b, 0)
	return b.String()
}

func walkADF(node *adfNode, b *strings.Builder, depth int) {
	switch node.Type {
	case "text":
		b.WriteString(node.Text)

	case "hardBreak":
		b.WriteByte('\n')

	case "paragraph", "heading":
		walkChildren(node, b, depth)
		b.WriteByte('\n')

	case "codeBlock", "blockquote":
		walkChildren(node, b, depth)
		b.WriteByte('\n')

	case "bulletList", "orderedList":
		walkChildren(node, b, depth+1)

	case "listItem":
		// Malformed ADF can place a listItem at the top level; clamp
		// so the indent never goes negative.
		if depth > 1 {
			b.WriteString(strings.Repeat("  ", depth-1))
		}
		b.WriteString("- ")
		walkChildren(node, b, depth)

	default:
		walkChildren(node, b, depth)
	}
}

func walkChildren(node *adfNode, b *strings.Builder, depth int) {
	for i := range node.Content {
		walkADF(&node.Content[i], b, depth)
	}
}
