// Package ai defines the provider-agnostic data model for chat requests,
// streamed chunks, tool calls, and the shared error taxonomy. Concrete
// provider adapters live in subpackages (see anthropic).
package ai
