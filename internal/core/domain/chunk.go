package domain

// Metadata keys attached to every chunk.
const (
	// MetaSource tags the originating system ("confluence" or "jira").
	MetaSource = "source"

	// MetaTitle is the parent document title.
	MetaTitle = "title"

	// MetaURL is the parent document URL, when known.
	MetaURL = "url"

	// MetaPageID is the wiki page identifier for wiki-sourced chunks.
	MetaPageID = "page_id"

	// MetaIssueKey is the ticket key for ticket-sourced chunks.
	MetaIssueKey = "issue_key"

	// MetaType is an optional free-form document type label.
	MetaType = "type"

	// MetaChunkIndex is the zero-based position within the parent.
	MetaChunkIndex = "chunk_index"

	// MetaTotalChunks is the number of chunks the parent produced.
	MetaTotalChunks = "total_chunks"

	// MetaEmbeddingMocked marks points whose embedding call failed and
	// was replaced by a placeholder vector. Stored so that degraded
	// points are distinguishable from real ones.
	MetaEmbeddingMocked = "embedding_mocked"
)

// Chunk is a bounded-size fragment of a source document, the unit of
// embedding and vector storage.
//
// Within one parent document, Index is dense and zero-based and every
// chunk carries the same Total, so Index < Total always holds.
type Chunk struct {
	// ID is the unique chunk identifier.
	ID string

	// Content is the chunk text.
	Content string

	// Index is the ordinal position within the parent document.
	Index int

	// Total is the number of chunks produced from the parent.
	Total int

	// Metadata carries source tagging (see the Meta* keys).
	Metadata map[string]any
}

// VectorPoint is a stored (id, embedding, payload) triple in the
// similarity-search backend. Points are write-only from this system's
// point of view: upserted and searched, never read back for mutation.
type VectorPoint struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}
