// Package services contains the core application logic: keyword
// extraction with adaptive escalation, page filtering, the two-phase
// retrieval orchestrator, the embedding/storage pipeline, markdown
// digest rendering and the per-run file cache.
package services
