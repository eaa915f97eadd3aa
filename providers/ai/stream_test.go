package ai

import (
	"errors"
	"testing"
)

func chunkStream(chunks []Chunk, finalErr error) *ChatStream {
	return NewChatStream(func(yield func(Chunk, error) bool) {
		for _, chunk := range chunks {
			if !yield(chunk, nil) {
				return
			}
		}
		if finalErr != nil {
			yield(Chunk{}, finalErr)
		}
	})
}

func TestChatStream_Collect(t *testing.T) {
	usage := &Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	chunks := []Chunk{
		{Type: ChunkTypeMeta, Meta: &Meta{ID: "msg_1", Model: "m"}},
		{Type: ChunkTypeMessage, Text: "Hello"},
		{Type: ChunkTypeThinking, AdditionalContent: &AdditionalContent{Thinking: "hmm "}},
		{Type: ChunkTypeThinking, AdditionalContent: &AdditionalContent{Thinking: "ok"}},
		{Type: ChunkTypeMessage, Text: " world"},
		{
			Type:         ChunkTypeMessage,
			FinishReason: FinishReasonToolCalls,
			ToolCalls:    []ToolCall{{ID: "c1", Name: "lookup", Arguments: map[string]any{}}},
		},
		{Type: ChunkTypeMessage, ToolResults: []ToolResult{{ToolCallID: "c1", Name: "lookup", Result: "found"}}},
		{
			Type:         ChunkTypeMeta,
			Text:         "Hello world",
			FinishReason: FinishReasonStop,
			Meta:         &Meta{ID: "msg_2", Model: "m", Usage: usage},
		},
	}

	response, err := chunkStream(chunks, nil).Collect()
	if err != nil {
		t.Fatalf("Collect returned unexpected error: %v", err)
	}

	if response.Content != "Hello world" {
		t.Errorf("content: got %q", response.Content)
	}
	if response.Reasoning != "hmm ok" {
		t.Errorf("reasoning: got %q", response.Reasoning)
	}
	if len(response.ToolCalls) != 1 || len(response.ToolResults) != 1 {
		t.Errorf("tool data: %d calls, %d results", len(response.ToolCalls), len(response.ToolResults))
	}
	if response.Id != "msg_2" {
		t.Errorf("id should come from the last meta chunk: got %q", response.Id)
	}
	if response.FinishReason != FinishReasonStop {
		t.Errorf("finish reason: got %q", response.FinishReason)
	}
	if response.Usage != usage {
		t.Error("usage not taken from terminal chunk")
	}
}

func TestChatStream_CollectPartialOnError(t *testing.T) {
	streamErr := &OverloadedError{Message: "busy"}
	chunks := []Chunk{
		{Type: ChunkTypeMessage, Text: "partial"},
	}

	response, err := chunkStream(chunks, streamErr).Collect()
	if err == nil {
		t.Fatal("expected the mid-stream error to propagate")
	}
	var overloaded *OverloadedError
	if !errors.As(err, &overloaded) {
		t.Fatalf("expected *OverloadedError, got %T", err)
	}
	if response.Content != "partial" {
		t.Errorf("partial content must survive: got %q", response.Content)
	}
}

func TestChatStream_IterEarlyBreak(t *testing.T) {
	yielded := 0
	stream := NewChatStream(func(yield func(Chunk, error) bool) {
		for i := 0; i < 10; i++ {
			yielded++
			if !yield(Chunk{Type: ChunkTypeMessage, Text: "x"}, nil) {
				return
			}
		}
	})

	seen := 0
	for range stream.Iter() {
		seen++
		if seen == 3 {
			break
		}
	}

	if yielded != 3 {
		t.Errorf("iterator must stop producing after break: yielded %d", yielded)
	}
}
