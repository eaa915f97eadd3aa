// Package anthropic implements the [ai.StreamProvider] interface for
// Anthropic's Messages API, including SSE streaming with interleaved text,
// thinking, citation, and tool-use events, and the bounded multi-hop tool
// execution loop that splices follow-up responses into a single downstream
// chunk stream.
package anthropic
