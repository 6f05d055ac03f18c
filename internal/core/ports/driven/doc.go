// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the ticketing system, the wiki system,
// the AI completion and embedding services, and the vector store.
package driven
