package anthropic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/clarolabs/claro/internal/utils"
	"github.com/clarolabs/claro/providers/ai"
	"github.com/clarolabs/claro/providers/observability"
)

// toolCallSlot accumulates one in-flight tool_use block. Argument JSON
// arrives as fragments across input_json_delta events and is only decoded
// once the hop's terminal event finalizes the call.
type toolCallSlot struct {
	id           string
	name         string
	partialInput strings.Builder
}

// streamState is the per-hop accumulation state. A fresh value is created for
// every hop so content from one response never bleeds into the next.
type streamState struct {
	requestID string
	model     string

	text              strings.Builder
	thinking          strings.Builder
	thinkingSignature strings.Builder

	// Tool calls are keyed by content-block index and finalized in insertion
	// order, which on this API equals ascending index order.
	toolCalls map[int]*toolCallSlot
	toolOrder []int

	// citations collects the citation parts of the hop; pendingCitation holds
	// a citations_delta record until the next text_delta binds it.
	citations       []ai.CitationPart
	pendingCitation *ai.Citation

	stopReason string

	inputTokens         int
	outputTokens        int
	cacheCreationTokens int
	cacheReadTokens     int

	rateLimits []ai.RateLimit
	retryAfter *int
}

func newStreamState(header http.Header) *streamState {
	state := &streamState{toolCalls: make(map[int]*toolCallSlot)}
	state.rateLimits, state.retryAfter = parseRateLimitHeaders(header)
	return state
}

// finalizeToolCalls decodes the accumulated argument JSON of every tool call
// in insertion order. Empty or undecodable argument payloads produce an empty
// argument map rather than failing the hop; jsonrepair already had its chance
// inside ParseStringAs.
func (state *streamState) finalizeToolCalls() []ai.ToolCall {
	calls := make([]ai.ToolCall, 0, len(state.toolOrder))
	for _, index := range state.toolOrder {
		slot := state.toolCalls[index]
		arguments := map[string]any{}
		if raw := slot.partialInput.String(); strings.TrimSpace(raw) != "" {
			if parsed, err := utils.ParseStringAs[map[string]any](raw); err == nil {
				arguments = parsed
			}
		}
		calls = append(calls, ai.ToolCall{ID: slot.id, Name: slot.name, Arguments: arguments})
	}
	return calls
}

// additionalContent packages the hop's thinking text, signature, and
// citations. Returns nil when the hop produced none of the three.
func (state *streamState) additionalContent() *ai.AdditionalContent {
	if state.thinking.Len() == 0 && state.thinkingSignature.Len() == 0 && len(state.citations) == 0 {
		return nil
	}
	return &ai.AdditionalContent{
		Thinking:          state.thinking.String(),
		ThinkingSignature: state.thinkingSignature.String(),
		Citations:         state.citations,
	}
}

// StreamMessage implements [ai.StreamProvider] for Anthropic's Messages API.
// It sends a streaming request (stream=true) and returns a [ai.ChatStream]
// that yields incremental chunks as SSE events arrive.
//
// When a hop terminates in tool_use, the driver finalizes the accumulated
// tool calls, executes them through request.ToolRegistry, appends the
// assistant and tool-result turns to request.Messages, and opens a follow-up
// stream spliced into the same chunk sequence. request.MaxSteps (default 1)
// bounds the number of hops.
//
// Pre-stream errors (missing API key, non-2xx HTTP response, network failure)
// are returned immediately as a non-nil error. Mid-stream errors are yielded
// through the iterator.
//
// Anthropic SSE lifecycle per hop:
//
//	message_start → content_block_start → content_block_delta(s) →
//	content_block_stop → message_delta → message_stop
func (provider *AnthropicProvider) StreamMessage(ctx context.Context, request *ai.ChatRequest) (*ai.ChatStream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if request == nil {
		return nil, fmt.Errorf("request is nil")
	}

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "anthropic"),
			observability.String(observability.AttrLLMEndpoint, provider.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Bool("llm.streaming", true),
		)
	}

	if observer != nil {
		observer.Trace(ctx, "Anthropic provider preparing streaming request",
			observability.String(observability.AttrLLMProvider, "anthropic"),
			observability.String(observability.AttrLLMEndpoint, provider.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
		)
	}

	// Guard against missing credentials before making a network call.
	if provider.apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	response, err := provider.openStream(ctx, request)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "Streaming HTTP request failed", observability.Error(err))
		}
		return nil, err
	}

	maxSteps := request.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 1
	}

	iteratorFunc := func(yield func(ai.Chunk, error) bool) {
		provider.processStream(ctx, request, maxSteps, 0, response, yield)
	}
	return ai.NewChatStream(iteratorFunc), nil
}

// openStream builds the wire request for the current state of
// request.Messages and opens a streaming HTTP response. Failures are mapped
// through the shared error taxonomy.
func (provider *AnthropicProvider) openStream(ctx context.Context, request *ai.ChatRequest) (*http.Response, error) {
	anthropicReq, err := requestToAnthropic(request, provider.capabilities, true)
	if err != nil {
		return nil, fmt.Errorf("failed to build Anthropic request: %w", err)
	}

	// Pass empty apiKey so DoPostStream does not inject a Bearer token;
	// Anthropic authenticates via x-api-key (set inside buildHeaders).
	response, err := utils.DoPostStream(ctx, provider.client, provider.baseURL+messagesEndpoint, "", anthropicReq, provider.buildHeaders()...)
	if err != nil {
		return nil, classifyHTTPError(request.Model, err)
	}
	return response, nil
}

// processStream consumes the SSE events of one hop and yields chunks
// downstream. When the hop ends in tool use it hands off to runToolHandoff,
// which recurses into processStream for the follow-up response, so a
// multi-hop conversation surfaces as one uninterrupted chunk sequence.
//
// The boolean return mirrors the yield contract: false means the consumer
// stopped (or a fatal error was yielded) and no further chunks may be
// produced.
func (provider *AnthropicProvider) processStream(ctx context.Context, request *ai.ChatRequest, maxSteps int, depth int, response *http.Response, yield func(ai.Chunk, error) bool) bool {
	defer utils.CloseWithLog(response.Body)

	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent("llm.stream.hop", observability.Int(observability.AttrLLMStreamDepth, depth))
	}

	state := newStreamState(response.Header)
	scanner := utils.NewSSEScanner(response.Body)

	for {
		// Respect context cancellation between SSE reads.
		if ctx.Err() != nil {
			yield(ai.Chunk{}, ctx.Err())
			return false
		}

		frame, sseErr := scanner.Next()
		if sseErr == io.EOF {
			// Truncated stream: the connection ended without message_stop. If
			// tool calls were fully accumulated, run the handoff anyway so a
			// dropped terminal event does not strand the conversation.
			if len(state.toolOrder) > 0 {
				return provider.runToolHandoff(ctx, request, maxSteps, depth, state, yield)
			}
			return true
		}
		if sseErr != nil {
			yield(ai.Chunk{}, fmt.Errorf("SSE read error: %w", sseErr))
			return false
		}

		event, decodeErr := decodeStreamEvent(frame)
		if decodeErr != nil {
			yield(ai.Chunk{}, decodeErr)
			return false
		}

		switch event.Type {

		case "message_start":
			if event.Message != nil {
				state.requestID = event.Message.ID
				state.model = event.Message.Model
				if event.Message.Usage != nil {
					state.inputTokens = event.Message.Usage.InputTokens
					state.cacheCreationTokens = event.Message.Usage.CacheCreationInputTokens
					state.cacheReadTokens = event.Message.Usage.CacheReadInputTokens
				}
			}
			// The hop-opening meta chunk precedes all content chunks and
			// carries the rate-limit snapshot of this hop's response headers.
			if !yield(ai.Chunk{
				Type: ai.ChunkTypeMeta,
				Meta: &ai.Meta{
					ID:         responseIDOrFallback(state.requestID),
					Model:      state.model,
					RateLimits: state.rateLimits,
					RetryAfter: state.retryAfter,
				},
			}, nil) {
				return false
			}

		case "content_block_start":
			if event.ContentBlock == nil {
				continue
			}
			switch event.ContentBlock.Type {
			case "tool_use":
				if _, exists := state.toolCalls[event.Index]; !exists {
					state.toolOrder = append(state.toolOrder, event.Index)
				}
				slot := &toolCallSlot{id: event.ContentBlock.ID, name: event.ContentBlock.Name}
				state.toolCalls[event.Index] = slot
			case "thinking":
				state.thinking.Reset()
				state.thinkingSignature.Reset()
			}

		case "content_block_delta":
			if event.Delta == nil {
				continue
			}
			switch event.Delta.Type {

			case "text_delta":
				text := extractTextDelta(event)
				if text == "" {
					continue
				}
				state.text.WriteString(text)

				var additional *ai.AdditionalContent
				if state.pendingCitation != nil {
					state.citations = append(state.citations, ai.CitationPart{
						Text:     text,
						Citation: *state.pendingCitation,
					})
					additional = &ai.AdditionalContent{CitationIndex: utils.Ptr(len(state.citations) - 1)}
					state.pendingCitation = nil
				}
				if !yield(ai.Chunk{Type: ai.ChunkTypeMessage, Text: text, AdditionalContent: additional}, nil) {
					return false
				}

			case "thinking_delta":
				if event.Delta.Thinking == "" {
					continue
				}
				state.thinking.WriteString(event.Delta.Thinking)
				if !yield(ai.Chunk{
					Type:              ai.ChunkTypeThinking,
					AdditionalContent: &ai.AdditionalContent{Thinking: event.Delta.Thinking},
				}, nil) {
					return false
				}

			case "signature_delta":
				state.thinkingSignature.WriteString(event.Delta.Signature)

			case "input_json_delta":
				if slot := state.toolCalls[event.Index]; slot != nil {
					slot.partialInput.WriteString(event.Delta.PartialJSON)
				}

			case "citations_delta":
				citation, citErr := decodeCitation(event.Delta.Citation)
				if citErr != nil {
					yield(ai.Chunk{}, citErr)
					return false
				}
				// Held until the next text_delta of this block binds it.
				state.pendingCitation = citation
			}

		case "content_block_stop":
			// An unbound citation dies with its block.
			state.pendingCitation = nil

		case "message_delta":
			if event.Usage != nil {
				state.outputTokens = event.Usage.OutputTokens
			}
			if event.Delta != nil && event.Delta.StopReason != "" {
				state.stopReason = event.Delta.StopReason
			}
			if state.stopReason == "tool_use" && len(state.toolOrder) > 0 {
				return provider.runToolHandoff(ctx, request, maxSteps, depth, state, yield)
			}

		case "message_stop":
			// Some gateway variants carry the stop reason on message_stop
			// instead of message_delta.
			if event.StopReason != "" {
				state.stopReason = event.StopReason
			} else if event.Delta != nil && event.Delta.StopReason != "" {
				state.stopReason = event.Delta.StopReason
			}
			if state.stopReason == "tool_use" && len(state.toolOrder) > 0 {
				return provider.runToolHandoff(ctx, request, maxSteps, depth, state, yield)
			}
			return provider.yieldTerminalChunk(ctx, state, yield)

		case "error":
			yield(ai.Chunk{}, classifyStreamError(event.Error))
			return false

		case "ping":
			// Keep-alive; nothing to yield.

		default:
			// Unknown event types are silently skipped for forward-compatibility.
		}
	}
}

// yieldTerminalChunk emits the conversation-final meta chunk carrying the
// full accumulated text, the mapped finish reason, usage, and the metadata of
// the last hop.
func (provider *AnthropicProvider) yieldTerminalChunk(ctx context.Context, state *streamState, yield func(ai.Chunk, error) bool) bool {
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, state.requestID),
			observability.String(observability.AttrLLMFinishReason, string(mapFinishReason(state.stopReason))),
		)
		span.AddEvent(observability.EventTokensReceived,
			observability.Int(observability.AttrLLMTokensTotal, state.inputTokens+state.outputTokens),
		)
		span.AddEvent(observability.EventLLMRequestEnd)
	}

	return yield(ai.Chunk{
		Type:         ai.ChunkTypeMeta,
		Text:         state.text.String(),
		FinishReason: mapFinishReason(state.stopReason),
		Meta: &ai.Meta{
			ID:         responseIDOrFallback(state.requestID),
			Model:      state.model,
			RateLimits: state.rateLimits,
			RetryAfter: state.retryAfter,
			Usage: &ai.Usage{
				PromptTokens:     state.inputTokens,
				CompletionTokens: state.outputTokens,
				TotalTokens:      state.inputTokens + state.outputTokens,
				CachedTokens:     state.cacheCreationTokens + state.cacheReadTokens,
			},
		},
		AdditionalContent: state.additionalContent(),
	}, nil)
}

// runToolHandoff drives one tool-execution round:
//
//  1. finalize the hop's tool calls and yield them in a single chunk
//  2. execute each call sequentially through the registry
//  3. append the assistant turn and the tool-result turns to request.Messages
//  4. yield the results in a single chunk
//  5. open the follow-up stream and recurse, unless the depth budget is spent
//
// Any registry failure (unknown tool, tool error) is fatal for the stream.
func (provider *AnthropicProvider) runToolHandoff(ctx context.Context, request *ai.ChatRequest, maxSteps int, depth int, state *streamState, yield func(ai.Chunk, error) bool) bool {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	calls := state.finalizeToolCalls()
	additional := state.additionalContent()

	if !yield(ai.Chunk{
		Type:              ai.ChunkTypeMessage,
		FinishReason:      ai.FinishReasonToolCalls,
		ToolCalls:         calls,
		AdditionalContent: additional,
	}, nil) {
		return false
	}

	if request.ToolRegistry == nil {
		yield(ai.Chunk{}, fmt.Errorf("model requested %d tool call(s) but no tool registry is configured", len(calls)))
		return false
	}

	results := make([]ai.ToolResult, 0, len(calls))
	for _, call := range calls {
		if span != nil {
			span.AddEvent(observability.EventToolExecutionStart,
				observability.String(observability.AttrToolName, call.Name),
			)
		}
		result, err := request.ToolRegistry.Invoke(ctx, call.Name, call.Arguments)
		if err != nil {
			if span != nil {
				span.AddEvent(observability.EventToolExecutionEnd,
					observability.String(observability.AttrToolName, call.Name),
					observability.String(observability.AttrToolError, err.Error()),
				)
			}
			yield(ai.Chunk{}, fmt.Errorf("tool %q failed: %w", call.Name, err))
			return false
		}
		if span != nil {
			span.AddEvent(observability.EventToolExecutionEnd,
				observability.String(observability.AttrToolName, call.Name),
			)
		}
		if observer != nil {
			observer.Debug(ctx, "Tool executed",
				observability.String(observability.AttrToolName, call.Name),
				observability.Int(observability.AttrLLMStreamDepth, depth),
			)
		}
		results = append(results, ai.ToolResult{ToolCallID: call.ID, Name: call.Name, Result: result})
	}

	// Extend the conversation with the assistant turn and one tool-result
	// turn per call; the request builder collapses consecutive tool results
	// into a single user message.
	assistantTurn := ai.Message{
		Role:      ai.RoleAssistant,
		Content:   state.text.String(),
		ToolCalls: calls,
	}
	if additional != nil {
		assistantTurn.Reasoning = additional.Thinking
		assistantTurn.ReasoningSignature = additional.ThinkingSignature
		assistantTurn.Citations = additional.Citations
	}
	request.Messages = append(request.Messages, assistantTurn)
	for _, result := range results {
		request.Messages = append(request.Messages, ai.Message{
			Role:       ai.RoleTool,
			Content:    result.Result,
			ToolCallID: result.ToolCallID,
			Name:       result.Name,
		})
	}

	if !yield(ai.Chunk{Type: ai.ChunkTypeMessage, ToolResults: results}, nil) {
		return false
	}

	// The depth budget is checked before opening the follow-up stream so an
	// out-of-budget conversation never issues the extra request.
	if depth+1 >= maxSteps {
		yield(ai.Chunk{}, &ai.MaxDepthError{MaxSteps: maxSteps})
		return false
	}

	response, err := provider.openStream(ctx, request)
	if err != nil {
		yield(ai.Chunk{}, err)
		return false
	}
	return provider.processStream(ctx, request, maxSteps, depth+1, response, yield)
}
