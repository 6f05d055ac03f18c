// Package chunker splits document text into overlapping fixed-size
// windows, preferring sentence and word boundaries, and wraps the
// fragments into chunks with positional metadata.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/quill-labs/kbpull/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits text into overlapping chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// An overlap >= size would stop the window from ever advancing.
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured window overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Split divides text into overlapping windows of at most chunkSize
// characters. Texts no longer than one window are returned unchanged
// as a single element.
//
// When a window does not reach the end of the text, its right edge is
// backed off to the last sentence terminator if one exists, else to
// the last whitespace, so chunks end on natural boundaries where
// possible. Every returned chunk is a contiguous substring of the
// input; empty fragments are dropped.
func (p *Processor) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= p.chunkSize {
		return []string{text}
	}

	estimated := len(text)/(p.chunkSize-p.overlap) + 1
	chunks := make([]string, 0, estimated)

	start := 0
	for start < len(text) {
		end := start + p.chunkSize
		if end > len(text) {
			end = len(text)
		} else {
			end = backOffToBoundary(text, start, end)
		}

		chunk := text[start:end]
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(text) {
			break
		}

		// Boundary back-off can shrink a chunk below the overlap;
		// advance by the whole chunk then so the window always moves.
		advance := len(chunk) - p.overlap
		if advance < 1 {
			advance = len(chunk)
		}
		start += advance
	}

	return chunks
}

// backOffToBoundary moves the window's right edge to the last sentence
// terminator within the window, else the last whitespace, else leaves
// it unchanged. The edge never backs off past the window start.
func backOffToBoundary(text string, start, end int) int {
	window := text[start:end]

	if dot := strings.LastIndexByte(window, '.'); dot > 0 {
		return start + dot + 1
	}
	if ws := strings.LastIndexAny(window, " \t\n"); ws > 0 {
		return start + ws + 1
	}
	return end
}

// Process splits text and wraps each fragment into a domain.Chunk with
// a generated ID, a dense zero-based index, the total chunk count, and
// the caller-supplied base metadata merged in.
func (p *Processor) Process(text string, baseMetadata map[string]any) []domain.Chunk {
	fragments := p.Split(text)
	if len(fragments) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, len(fragments))
	for i, fragment := range fragments {
		metadata := make(map[string]any, len(baseMetadata)+2)
		for k, v := range baseMetadata {
			metadata[k] = v
		}
		metadata[domain.MetaChunkIndex] = i
		metadata[domain.MetaTotalChunks] = len(fragments)

		chunks[i] = domain.Chunk{
			ID:       uuid.New().String(),
			Content:  fragment,
			Index:    i,
			Total:    len(fragments),
			Metadata: metadata,
		}
	}

	return chunks
}
