package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist upstream.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthInvalid indicates the configured credentials were rejected.
	ErrAuthInvalid = errors.New("authentication failed")

	// ErrAccessDenied indicates the credentials lack permission for the
	// requested resource.
	ErrAccessDenied = errors.New("access denied")

	// ErrEmptySpace indicates the phase-1 listing returned zero pages.
	// Fatal for the pipeline caller; not retried.
	ErrEmptySpace = errors.New("wiki space returned no pages")

	// ErrEmptyRetrieval indicates the phase-2 full fetch yielded zero
	// pages. Fatal for the pipeline caller; not retried.
	ErrEmptyRetrieval = errors.New("full-content fetch returned no pages")

	// ErrLLMUnavailable indicates no LLM service is configured.
	// AI keyword extraction is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates no embedding service is
	// configured. Vector ingestion is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store failed its
	// reachability probe. Callers may continue with file output only.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")
)
