// Package driving provides interfaces for entry-point adapters
// (primary/inbound ports). The CLI depends on these rather than on
// concrete services so commands can be tested with fakes.
package driving
