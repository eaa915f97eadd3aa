// Package tool provides typed, callable tools for LLM tool use. A [Tool]
// binds a name and description to a strongly-typed Go function and derives
// its JSON schema via reflection; a [Catalog] groups tools and implements
// the registry interface the streaming tool driver executes against.
package tool
