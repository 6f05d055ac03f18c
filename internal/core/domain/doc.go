// Package domain contains the core business entities for kbpull:
// wiki pages, ticket issues, document chunks, keywords and the
// errors shared across services and adapters.
package domain
