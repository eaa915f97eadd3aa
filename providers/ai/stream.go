package ai

import (
	"iter"
	"strings"
)

// ChatStream wraps the lazy chunk sequence produced by a streaming provider.
// It is single-consumer and pull-driven: each advance of the iterator may
// block on network reads, execute local tools, or open a follow-up HTTP
// request, all on the consumer's goroutine.
//
// Important: callers must consume the stream, either by iterating with
// Iter() (breaking out early is safe) or by calling Collect(). The provider
// holds the HTTP response body open until the iterator completes or is
// abandoned via a loop break; constructing a ChatStream and never iterating
// it leaks the connection.
type ChatStream struct {
	iterator iter.Seq2[Chunk, error]
}

// NewChatStream creates a ChatStream from a raw chunk iterator.
// The iterator yields Chunk values with a nil error for normal progress and
// a non-nil error exactly once to signal a fatal mid-stream failure.
func NewChatStream(iterator iter.Seq2[Chunk, error]) *ChatStream {
	return &ChatStream{iterator: iterator}
}

// Iter returns the underlying iterator for use with range-over-func loops.
//
// Example:
//
//	for chunk, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    fmt.Print(chunk.Text)
//	}
func (stream *ChatStream) Iter() iter.Seq2[Chunk, error] {
	return stream.iterator
}

// Collect consumes the entire stream and returns the accumulated
// ChatResponse: concatenated text and reasoning, the tool calls and results
// of every hop, and the metadata of the terminal chunk. A mid-stream error
// terminates collection and is returned alongside the partial response.
func (stream *ChatStream) Collect() (*ChatResponse, error) {
	accumulated := &ChatResponse{}
	var text strings.Builder
	var reasoning strings.Builder

	for chunk, err := range stream.iterator {
		if err != nil {
			accumulated.Content = text.String()
			accumulated.Reasoning = reasoning.String()
			return accumulated, err
		}

		switch chunk.Type {
		case ChunkTypeMessage:
			text.WriteString(chunk.Text)
			accumulated.ToolCalls = append(accumulated.ToolCalls, chunk.ToolCalls...)
			accumulated.ToolResults = append(accumulated.ToolResults, chunk.ToolResults...)

		case ChunkTypeThinking:
			if chunk.AdditionalContent != nil {
				reasoning.WriteString(chunk.AdditionalContent.Thinking)
			}

		case ChunkTypeMeta:
			if chunk.Meta != nil {
				if chunk.Meta.ID != "" {
					accumulated.Id = chunk.Meta.ID
				}
				if chunk.Meta.Model != "" {
					accumulated.Model = chunk.Meta.Model
				}
				if len(chunk.Meta.RateLimits) > 0 {
					accumulated.RateLimits = chunk.Meta.RateLimits
				}
				if chunk.Meta.Usage != nil {
					accumulated.Usage = chunk.Meta.Usage
				}
			}
		}

		if chunk.FinishReason != "" {
			accumulated.FinishReason = chunk.FinishReason
		}
	}

	accumulated.Content = text.String()
	accumulated.Reasoning = reasoning.String()
	return accumulated, nil
}
