package domain

// Keyword is a normalised (lowercased) token with a relevance weight.
// Locally derived keywords carry a computed weight; remotely derived
// keywords arrive as an ordered list and carry zero weight.
//
// Keywords are ephemeral: recomputed per invocation and never
// persisted, except as the side-channel list of matched page IDs.
type Keyword struct {
	Word   string
	Weight float64
}

// FilterResult is the outcome of matching one page against a keyword
// list. It is transient and recomputed on every filter pass.
type FilterResult struct {
	// Matched reports whether any keyword was found in the page.
	Matched bool

	// Keywords lists the keywords that were found.
	Keywords []string
}
