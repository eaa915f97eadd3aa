// Package observability defines the span and structured-logging abstraction
// carried through context by the rest of the library. Providers enrich any
// span/observer found in the request context and never require one.
package observability
