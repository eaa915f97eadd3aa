package ai

// ChunkType identifies the kind of payload carried by a Chunk.
type ChunkType string

const (
	// ChunkTypeMessage carries assistant text deltas, finalized tool calls,
	// or tool results.
	ChunkTypeMessage ChunkType = "message"
	// ChunkTypeThinking carries a reasoning/thinking delta.
	ChunkTypeThinking ChunkType = "thinking"
	// ChunkTypeMeta carries response metadata: emitted once at the start of
	// each hop and once as the terminal chunk of the conversation.
	ChunkTypeMeta ChunkType = "meta"
)

// Chunk is a single unit of the downstream stream yielded to the consumer.
// Fields other than Type are populated depending on what the underlying
// provider event carried; absent fields keep their zero value.
type Chunk struct {
	Type ChunkType `json:"type"`

	// Text is an assistant text delta on message chunks, or the full
	// accumulated assistant text on the terminal meta chunk. Concatenating
	// the Text of all message chunks across every hop reproduces the final
	// assistant text exactly.
	Text string `json:"text,omitempty"`

	// FinishReason is set on the terminal chunk of a hop.
	FinishReason FinishReason `json:"finish_reason,omitempty"`

	// ToolCalls is set exactly once per hop that ends in tool use.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolResults is set exactly once per hop, after the tools of that hop
	// have executed and strictly after the ToolCalls chunk.
	ToolResults []ToolResult `json:"tool_results,omitempty"`

	// Meta carries response identity and the rate-limit snapshot.
	Meta *Meta `json:"meta,omitempty"`

	// AdditionalContent carries thinking text, the thinking signature, and
	// citation parts attached to this chunk.
	AdditionalContent *AdditionalContent `json:"additional_content,omitempty"`
}

// Meta is the metadata bag attached to meta chunks.
type Meta struct {
	ID         string      `json:"id,omitempty"`    // Provider message/request ID
	Model      string      `json:"model,omitempty"` // Model that produced the response
	RateLimits []RateLimit `json:"rate_limits,omitempty"`
	RetryAfter *int        `json:"retry_after,omitempty"` // Seconds, from the retry-after header
	Usage      *Usage      `json:"usage,omitempty"`       // Only on the terminal chunk
}

// AdditionalContent carries model output that travels alongside the visible
// assistant text: thinking deltas, the thinking signature, and citations.
type AdditionalContent struct {
	// Thinking is a reasoning delta on thinking chunks, or the full
	// accumulated reasoning text on terminal and tool-call chunks.
	Thinking string `json:"thinking,omitempty"`
	// ThinkingSignature is the provider signature over the thinking block,
	// needed to round-trip thinking content on subsequent requests.
	ThinkingSignature string `json:"thinking_signature,omitempty"`
	// Citations are the citation parts accumulated so far this hop.
	Citations []CitationPart `json:"citations,omitempty"`
	// CitationIndex, when set on a message chunk, is the index into the
	// hop's citation list of the citation bound to this chunk's text delta.
	CitationIndex *int `json:"citation_index,omitempty"`
}

// Citation is a positional reference to a source document. Type records
// which positional signature the provider sent; the remaining fields
// preserve the raw location data, with nil meaning absent.
type Citation struct {
	Type CitationType `json:"type"`

	CitedText     string `json:"cited_text,omitempty"`
	DocumentIndex *int   `json:"document_index,omitempty"`
	DocumentTitle string `json:"document_title,omitempty"`

	StartPageNumber *int `json:"start_page_number,omitempty"` // page_location
	EndPageNumber   *int `json:"end_page_number,omitempty"`

	StartCharIndex *int `json:"start_char_index,omitempty"` // char_location
	EndCharIndex   *int `json:"end_char_index,omitempty"`

	StartBlockIndex *int `json:"start_block_index,omitempty"` // content_block_location
	EndBlockIndex   *int `json:"end_block_index,omitempty"`
}

// CitationType tags which positional signature a citation carries.
type CitationType string

const (
	CitationTypePageLocation         CitationType = "page_location"
	CitationTypeCharLocation         CitationType = "char_location"
	CitationTypeContentBlockLocation CitationType = "content_block_location"
)

// CitationPart pairs a citation with the text delta it annotates.
type CitationPart struct {
	Text     string   `json:"text"`
	Citation Citation `json:"citation"`
}
