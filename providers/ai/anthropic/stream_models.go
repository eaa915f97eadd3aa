package anthropic

import (
	"encoding/json"

	"github.com/clarolabs/claro/internal/utils"
	"github.com/clarolabs/claro/providers/ai"
)

/*
	ANTHROPIC MESSAGES API - STREAMING EVENT TYPES

	Each SSE frame carries one JSON event. The Type field discriminates:
	message_start, content_block_start, content_block_delta,
	content_block_stop, message_delta, message_stop, ping, error.
*/

// anthropicStreamEvent is the envelope decoded from a single SSE data payload.
type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Index int    `json:"index,omitempty"` // Content block index for content_block_* events

	// Message is set on message_start.
	Message *anthropicStreamMessage `json:"message,omitempty"`

	// ContentBlock is set on content_block_start.
	ContentBlock *anthropicStreamContentBlock `json:"content_block,omitempty"`

	// Delta is set on content_block_delta and message_delta.
	Delta *anthropicStreamDelta `json:"delta,omitempty"`

	// Usage is set on message_delta (cumulative output tokens).
	Usage *anthropicUsage `json:"usage,omitempty"`

	// StopReason is carried at the top level by some message_stop variants.
	StopReason string `json:"stop_reason,omitempty"`

	// Text is a tolerated top-level fallback for text deltas.
	Text string `json:"text,omitempty"`

	// Error is set on error events.
	Error *anthropicStreamError `json:"error,omitempty"`
}

// anthropicStreamMessage is the message header delivered by message_start.
type anthropicStreamMessage struct {
	ID    string          `json:"id"`
	Model string          `json:"model"`
	Role  string          `json:"role"`
	Usage *anthropicUsage `json:"usage,omitempty"`
}

// anthropicStreamContentBlock describes the block opened by content_block_start.
type anthropicStreamContentBlock struct {
	Type string `json:"type"`           // "text", "thinking", "tool_use"
	ID   string `json:"id,omitempty"`   // For tool_use
	Name string `json:"name,omitempty"` // For tool_use
}

// anthropicStreamDelta is the union of every delta payload shape. Its own
// Type field discriminates for content_block_delta events: text_delta,
// input_json_delta, thinking_delta, signature_delta, citations_delta. For
// message_delta events only StopReason/StopSequence are populated.
type anthropicStreamDelta struct {
	Type string `json:"type,omitempty"`

	Text      string              `json:"text,omitempty"`       // text_delta
	TextDelta *anthropicTextDelta `json:"text_delta,omitempty"` // Tolerated nested variant

	PartialJSON string `json:"partial_json,omitempty"` // input_json_delta

	Thinking  string `json:"thinking,omitempty"`  // thinking_delta
	Signature string `json:"signature,omitempty"` // signature_delta

	Citation json.RawMessage `json:"citation,omitempty"` // citations_delta

	StopReason   string `json:"stop_reason,omitempty"` // message_delta
	StopSequence string `json:"stop_sequence,omitempty"`
}

// anthropicTextDelta is the nested shape some gateway proxies emit for text.
type anthropicTextDelta struct {
	Text string `json:"text,omitempty"`
}

// anthropicStreamError is the payload of an in-stream error event.
type anthropicStreamError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// decodeStreamEvent parses one SSE frame into a stream event. Frames with an
// empty data payload (e.g. a lone "event:" line) decode to a bare event
// carrying only the frame name. A malformed JSON payload is a fatal
// [ai.ChunkDecodeError].
func decodeStreamEvent(frame utils.SSEEvent) (*anthropicStreamEvent, error) {
	if frame.Data == "" {
		return &anthropicStreamEvent{Type: frame.Name}, nil
	}

	var event anthropicStreamEvent
	if err := json.Unmarshal([]byte(frame.Data), &event); err != nil {
		return nil, &ai.ChunkDecodeError{Provider: "Anthropic", Err: err}
	}

	// The event name on the frame wins over an absent/blank type field.
	if event.Type == "" {
		event.Type = frame.Name
	}
	return &event, nil
}

// extractTextDelta returns the text carried by a text_delta event, checking
// the canonical field first and then the tolerated fallback shapes.
func extractTextDelta(event *anthropicStreamEvent) string {
	if event.Delta != nil {
		if event.Delta.Text != "" {
			return event.Delta.Text
		}
		if event.Delta.TextDelta != nil && event.Delta.TextDelta.Text != "" {
			return event.Delta.TextDelta.Text
		}
	}
	return event.Text
}

// anthropicCitation is the wire shape of a citation record inside a
// citations_delta event.
type anthropicCitation struct {
	Type          string `json:"type,omitempty"`
	CitedText     string `json:"cited_text,omitempty"`
	DocumentIndex *int   `json:"document_index,omitempty"`
	DocumentTitle string `json:"document_title,omitempty"`

	StartPageNumber *int `json:"start_page_number,omitempty"`
	EndPageNumber   *int `json:"end_page_number,omitempty"`

	StartCharIndex *int `json:"start_char_index,omitempty"`
	EndCharIndex   *int `json:"end_char_index,omitempty"`

	StartBlockIndex *int `json:"start_block_index,omitempty"`
	EndBlockIndex   *int `json:"end_block_index,omitempty"`
}

// decodeCitation parses and classifies a citation record. Classification is
// positional: the first location signature present wins, checked in the order
// page, char, content block. A record with none of the three is a fatal
// [ai.InvalidCitationError].
func decodeCitation(raw json.RawMessage) (*ai.Citation, error) {
	var wire anthropicCitation
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ai.InvalidCitationError{Raw: string(raw)}
	}

	citation := &ai.Citation{
		CitedText:       wire.CitedText,
		DocumentIndex:   wire.DocumentIndex,
		DocumentTitle:   wire.DocumentTitle,
		StartPageNumber: wire.StartPageNumber,
		EndPageNumber:   wire.EndPageNumber,
		StartCharIndex:  wire.StartCharIndex,
		EndCharIndex:    wire.EndCharIndex,
		StartBlockIndex: wire.StartBlockIndex,
		EndBlockIndex:   wire.EndBlockIndex,
	}

	switch {
	case wire.StartPageNumber != nil:
		citation.Type = ai.CitationTypePageLocation
	case wire.StartCharIndex != nil:
		citation.Type = ai.CitationTypeCharLocation
	case wire.StartBlockIndex != nil:
		citation.Type = ai.CitationTypeContentBlockLocation
	default:
		return nil, &ai.InvalidCitationError{Raw: string(raw)}
	}
	return citation, nil
}
