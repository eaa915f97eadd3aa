package ai

import (
	"context"
	"time"

	"github.com/clarolabs/claro/internal/jsonschema"
)

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a single conversation request to a provider.
// The Messages slice is append-only: the streaming tool driver extends it
// with assistant and tool-result turns between hops, and the provider must
// see the enlarged slice on every re-send.
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`
	Messages         []Message         `json:"messages"` // All conversation turns except the system prompt
	SystemPrompt     string            `json:"system_prompt,omitempty"`
	Tools            []ToolDescription `json:"tools,omitempty"`
	ToolChoice       *ToolChoice       `json:"tool_choice,omitempty"`
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"`

	// ToolRegistry resolves tool names declared in Tools to executable code.
	// Required when streaming with MaxSteps > 1; a stream that ends in
	// tool_use without a registry is a fatal error.
	ToolRegistry ToolRegistry `json:"-"`

	// MaxSteps bounds the tool-call chain depth. Each streaming hop consumes
	// one step; the default of 1 (applied when zero) allows a single response
	// with no tool execution.
	MaxSteps int `json:"max_steps,omitempty"`
}

// ToolRegistry maps a tool name to executable code. Implementations must be
// safe for read-only concurrent use for the duration of a request.
// [github.com/clarolabs/claro/providers/tool.Catalog] is the standard
// implementation.
type ToolRegistry interface {
	// Invoke executes the named tool with the decoded argument map and
	// returns its string result. An unknown name or a failing tool is a
	// fatal error for the stream that requested it.
	Invoke(ctx context.Context, name string, arguments map[string]any) (string, error)
}

// ToolDescription advertises a callable tool to the model.
type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// ToolChoice constrains which tool the model may call.
type ToolChoice struct {
	// ForcedTool names a specific tool the model must call. The literals
	// "auto" and "any" select the corresponding provider modes instead.
	ForcedTool string `json:"forced_tool,omitempty"`
	// AtLeastOneRequired forces the model to call some tool this turn.
	AtLeastOneRequired bool `json:"at_least_one_required,omitempty"`
}

// Message represents a single turn in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// Tool calling fields
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For role=assistant requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // For role=tool, links to the call being answered
	Name       string     `json:"name,omitempty"`         // For role=tool, name of the tool that produced this result

	// Extended assistant content carried alongside the visible text.
	Reasoning          string         `json:"reasoning,omitempty"`           // Thinking text
	ReasoningSignature string         `json:"reasoning_signature,omitempty"` // Provider signature over the thinking block
	Citations          []CitationPart `json:"citations,omitempty"`
}

// GenerationConfig carries optional sampling and budget parameters.
// Zero values mean "let the provider default apply" and are omitted from the
// wire request.
type GenerationConfig struct {
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float32         `json:"temperature,omitempty"` // Sampling temperature [0..1]
	TopP        float32         `json:"top_p,omitempty"`       // Nucleus sampling [0..1]
	Thinking    *ThinkingConfig `json:"thinking,omitempty"`
}

// ThinkingConfig opts a request in to extended thinking.
type ThinkingConfig struct {
	Enabled bool `json:"enabled"`
	// BudgetTokens overrides the provider default thinking budget. Must be a
	// positive integer when set.
	BudgetTokens *int `json:"budget_tokens,omitempty"`
}

/*
	##### PROVIDER OUTPUT #####
*/

// ToolCall is a completed request by the model to invoke a named local tool.
// Arguments is the decoded JSON argument object; it is empty (never nil)
// when the streamed argument JSON could not be decoded.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the local outcome of one tool invocation, correlated to its
// originating call by ToolCallID.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Result     string `json:"result"`
}

// RateLimit is one provider rate-limit bucket parsed from response headers.
// Nil fields were absent from the response.
type RateLimit struct {
	Name      string     `json:"name"` // e.g. "requests", "tokens", "input-tokens"
	Limit     *int       `json:"limit,omitempty"`
	Remaining *int       `json:"remaining,omitempty"`
	ResetsAt  *time.Time `json:"resets_at,omitempty"`
}

// Usage reports token consumption for a single hop.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
	CachedTokens     int `json:"cached_tokens,omitempty"` // Prompt-cache creation + read tokens
}

// ChatResponse represents a completed (non-streaming or collected) response.
type ChatResponse struct {
	Id           string       `json:"id"`
	Model        string       `json:"model"`
	Content      string       `json:"content"`
	Reasoning    string       `json:"reasoning,omitempty"`
	ToolCalls    []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults  []ToolResult `json:"tool_results,omitempty"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Usage        *Usage       `json:"usage,omitempty"`
	RateLimits   []RateLimit  `json:"rate_limits,omitempty"`
}

/*
	##### ENUMS #####
*/

// MessageRole represents the role of a message; compatible with string.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
	RoleTool      MessageRole = "tool"      // Tool/function output
)

// FinishReason is the normalized terminal status of a turn.
type FinishReason string

const (
	// FinishReasonStop indicates the model completed its turn normally.
	FinishReasonStop FinishReason = "stop"
	// FinishReasonLength indicates the token budget was exhausted.
	FinishReasonLength FinishReason = "length"
	// FinishReasonToolCalls indicates the turn ended to request tool execution.
	FinishReasonToolCalls FinishReason = "tool_calls"
	// FinishReasonOther covers provider stop reasons with no canonical mapping.
	FinishReasonOther FinishReason = "other"
)
