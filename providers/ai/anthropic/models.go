package anthropic

import "encoding/json"

/*
	ANTHROPIC MESSAGES API - REQUEST TYPES
*/

// anthropicRequest represents the request body for Anthropic's Messages API.
type anthropicRequest struct {
	Model       string                   `json:"model"`
	Messages    []anthropicMessage       `json:"messages"`
	System      json.RawMessage          `json:"system,omitempty"` // String or []anthropicContentBlock
	MaxTokens   int                      `json:"max_tokens"`       // Required by Anthropic on every request
	Temperature *float64                 `json:"temperature,omitempty"`
	TopP        *float64                 `json:"top_p,omitempty"`
	Tools       []anthropicTool          `json:"tools,omitempty"`
	ToolChoice  *anthropicToolChoice     `json:"tool_choice,omitempty"`
	Stream      bool                     `json:"stream,omitempty"`
	Thinking    *anthropicThinkingConfig `json:"thinking,omitempty"`
}

// anthropicThinkingConfig enables extended thinking with a fixed token budget.
type anthropicThinkingConfig struct {
	Type         string `json:"type"` // "enabled"
	BudgetTokens int    `json:"budget_tokens,omitempty"`
}

// anthropicMessage represents a single message in the conversation.
type anthropicMessage struct {
	Role    string                  `json:"role"`    // "user" or "assistant"
	Content []anthropicContentBlock `json:"content"` // Array of content blocks
}

// anthropicContentBlock is a discriminated union via the Type field.
// Depending on Type, different fields are populated:
//   - "text": Text + optional CacheControl
//   - "tool_use": ID, Name, Input
//   - "tool_result": ToolUseID, Content
//   - "thinking": Thinking, Signature
type anthropicContentBlock struct {
	Type         string                 `json:"type"`
	Text         string                 `json:"text,omitempty"`
	ID           string                 `json:"id,omitempty"`            // For tool_use
	Name         string                 `json:"name,omitempty"`          // For tool_use
	Input        json.RawMessage        `json:"input,omitempty"`         // For tool_use (arbitrary JSON)
	ToolUseID    string                 `json:"tool_use_id,omitempty"`   // For tool_result
	Content      json.RawMessage        `json:"content,omitempty"`       // For tool_result (string or content blocks)
	Thinking     string                 `json:"thinking,omitempty"`      // For thinking blocks
	Signature    string                 `json:"signature,omitempty"`     // For thinking blocks (round-trip signature)
	CacheControl *anthropicCacheControl `json:"cache_control,omitempty"` // For prompt caching
}

// anthropicCacheControl controls prompt caching on content blocks and tool definitions.
type anthropicCacheControl struct {
	Type string `json:"type"` // "ephemeral"
}

// anthropicTool describes a tool/function available to the model.
type anthropicTool struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	InputSchema  json.RawMessage        `json:"input_schema"` // JSON Schema for tool input
	CacheControl *anthropicCacheControl `json:"cache_control,omitempty"`
}

// anthropicToolChoice controls which tool the model should use.
type anthropicToolChoice struct {
	Type string `json:"type"`           // "auto", "any", "tool"
	Name string `json:"name,omitempty"` // Only for type="tool"
}

/*
	ANTHROPIC MESSAGES API - RESPONSE TYPES
*/

// anthropicResponse represents the response from Anthropic's Messages API.
type anthropicResponse struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`    // "message"
	Role         string                 `json:"role"`    // "assistant"
	Content      []responseContentBlock `json:"content"` // Response content blocks
	Model        string                 `json:"model"`
	StopReason   string                 `json:"stop_reason"`
	StopSequence string                 `json:"stop_sequence,omitempty"`
	Usage        anthropicUsage         `json:"usage"`
}

// responseContentBlock represents a content block in the response.
// The Type field discriminates between text, thinking, and tool_use blocks.
// Unknown type values are silently ignored during conversion for
// forward-compatibility.
type responseContentBlock struct {
	Type      string          `json:"type"`                // "text", "thinking", "tool_use"
	Text      string          `json:"text,omitempty"`      // For type="text"
	Thinking  string          `json:"thinking,omitempty"`  // For type="thinking"
	Signature string          `json:"signature,omitempty"` // For type="thinking" (round-trip)
	ID        string          `json:"id,omitempty"`        // For type="tool_use"
	Name      string          `json:"name,omitempty"`      // For type="tool_use"
	Input     json.RawMessage `json:"input,omitempty"`     // For type="tool_use" (arbitrary JSON)
}

// anthropicUsage reports token consumption for a single request.
type anthropicUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
}
