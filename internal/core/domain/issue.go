package domain

// Issue represents a ticket fetched from the ticketing system.
// Issues are read-only and fetched once per key.
type Issue struct {
	// Key is the issue identifier, e.g. "ABC-123".
	Key string

	// Summary is the one-line issue summary.
	Summary string

	// Description is the issue description flattened to plain text.
	// Structured (ADF) descriptions are walked and flattened by the
	// ticketing adapter before they reach the core.
	Description string

	// Type is the issue type label ("Bug", "Story", ...).
	Type string

	// Priority is the priority label.
	Priority string

	// Status is the workflow status label.
	Status string
}
