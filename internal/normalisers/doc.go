// Package normalisers provides text extraction from source-system
// markup. The wiki subpackage converts Confluence storage-format XHTML
// into plain text suitable for digests and embedding.
package normalisers
