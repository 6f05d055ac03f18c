package domain

// PageContent is a single body representation of a wiki page.
type PageContent struct {
	// Value is the raw content in this representation.
	Value string

	// Representation names the format ("storage" or "view").
	Representation string
}

// PageBody holds the available body representations of a page.
// Either pointer may be nil when the wiki did not return that
// representation.
type PageBody struct {
	Storage *PageContent
	View    *PageContent
}

// Page represents a wiki document.
//
// Pages returned by a phase-1 listing carry no body (Body == nil);
// only a phase-2 full fetch guarantees body presence. Pages are
// read-only: they are produced by the wiki system and only ever
// filtered or copied into derived structures here.
type Page struct {
	// ID is the wiki's content identifier.
	ID string

	// Title is the page title.
	Title string

	// SpaceKey identifies the wiki space the page belongs to.
	SpaceKey string

	// Body holds the fetched content representations, if any.
	Body *PageBody

	// WebURL is the human-facing page URL, when known.
	WebURL string
}

// BodyText returns the best available body text of the page.
// The storage representation is preferred over the rendered view.
// Returns the empty string for minimal (phase-1) pages.
func (p *Page) BodyText() string {
	if p.Body == nil {
		return ""
	}
	if p.Body.Storage != nil && p.Body.Storage.Value != "" {
		return p.Body.Storage.Value
	}
	if p.Body.View != nil {
		return p.Body.View.Value
	}
	return ""
}

// HasBody reports whether any body representation was fetched.
func (p *Page) HasBody() bool {
	return p.BodyText() != ""
}
