package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/clarolabs/claro/internal/utils"
	"github.com/clarolabs/claro/providers/ai"
)

const (
	// defaultMaxTokens is applied when the request does not set a budget.
	// Anthropic requires max_tokens on every request.
	defaultMaxTokens = 4096

	// defaultThinkingBudget is the extended-thinking token budget applied when
	// thinking is enabled without an explicit budget.
	defaultThinkingBudget = 1024
)

// emptyObjectSchema is the fallback input schema for tools declared without
// parameters. Anthropic rejects tools whose input_schema is absent.
var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// requestToAnthropic converts a generic chat request into the Anthropic wire
// format. Conversion is deterministic: the same request always produces the
// same payload.
func requestToAnthropic(request *ai.ChatRequest, capabilities Capabilities, stream bool) (*anthropicRequest, error) {
	if request == nil {
		return nil, fmt.Errorf("request is nil")
	}

	messages, err := buildMessages(request.Messages)
	if err != nil {
		return nil, err
	}

	anthropicReq := &anthropicRequest{
		Model:     request.Model,
		Messages:  messages,
		MaxTokens: defaultMaxTokens,
		Stream:    stream,
	}

	if request.SystemPrompt != "" {
		system, err := buildSystemPrompt(request.SystemPrompt, capabilities)
		if err != nil {
			return nil, err
		}
		anthropicReq.System = system
	}

	if config := request.GenerationConfig; config != nil {
		if config.MaxTokens > 0 {
			anthropicReq.MaxTokens = config.MaxTokens
		}
		if config.Temperature > 0 {
			anthropicReq.Temperature = utils.Ptr(float64(config.Temperature))
		}
		if config.TopP > 0 {
			anthropicReq.TopP = utils.Ptr(float64(config.TopP))
		}
		thinking, err := buildThinkingConfig(config.Thinking)
		if err != nil {
			return nil, err
		}
		anthropicReq.Thinking = thinking
	}

	tools, err := buildAnthropicTools(request.Tools, capabilities)
	if err != nil {
		return nil, err
	}
	anthropicReq.Tools = tools
	anthropicReq.ToolChoice = buildAnthropicToolChoice(request.ToolChoice)

	return anthropicReq, nil
}

// buildSystemPrompt encodes the system prompt. With prompt caching enabled it
// becomes a content-block array carrying a cache_control marker; otherwise a
// plain JSON string.
func buildSystemPrompt(prompt string, capabilities Capabilities) (json.RawMessage, error) {
	if capabilities.PromptCaching {
		blocks := []anthropicContentBlock{{
			Type:         "text",
			Text:         prompt,
			CacheControl: &anthropicCacheControl{Type: "ephemeral"},
		}}
		return json.Marshal(blocks)
	}
	return json.Marshal(prompt)
}

// buildThinkingConfig validates and converts the thinking options. A set
// budget must be positive; when unset the default budget applies.
func buildThinkingConfig(config *ai.ThinkingConfig) (*anthropicThinkingConfig, error) {
	if config == nil || !config.Enabled {
		return nil, nil
	}
	budget := defaultThinkingBudget
	if config.BudgetTokens != nil {
		if *config.BudgetTokens <= 0 {
			return nil, fmt.Errorf("thinking budget must be positive, got %d", *config.BudgetTokens)
		}
		budget = *config.BudgetTokens
	}
	return &anthropicThinkingConfig{Type: "enabled", BudgetTokens: budget}, nil
}

// buildMessages converts generic messages into Anthropic's alternating
// user/assistant structure:
//   - consecutive tool-result messages collapse into a single user message of
//     tool_result blocks, preserving order
//   - assistant messages order their blocks thinking, tool_use, text, with the
//     thinking signature carried for round-tripping
//   - system-role messages appearing mid-conversation degrade to user text
func buildMessages(messages []ai.Message) ([]anthropicMessage, error) {
	result := make([]anthropicMessage, 0, len(messages))

	for i := 0; i < len(messages); i++ {
		message := messages[i]

		switch message.Role {
		case ai.RoleTool:
			// Collapse this and all immediately following tool results.
			var blocks []anthropicContentBlock
			for ; i < len(messages) && messages[i].Role == ai.RoleTool; i++ {
				content, err := json.Marshal(messages[i].Content)
				if err != nil {
					return nil, fmt.Errorf("error marshaling tool result for %q: %w", messages[i].Name, err)
				}
				blocks = append(blocks, anthropicContentBlock{
					Type:      "tool_result",
					ToolUseID: messages[i].ToolCallID,
					Content:   content,
				})
			}
			i-- // The outer loop advances past the last tool message.
			result = append(result, anthropicMessage{Role: "user", Content: blocks})

		case ai.RoleAssistant:
			var blocks []anthropicContentBlock
			if message.Reasoning != "" {
				blocks = append(blocks, anthropicContentBlock{
					Type:      "thinking",
					Thinking:  message.Reasoning,
					Signature: message.ReasoningSignature,
				})
			}
			for _, call := range message.ToolCalls {
				input, err := marshalToolInput(call.Arguments)
				if err != nil {
					return nil, fmt.Errorf("error marshaling arguments of tool call %q: %w", call.Name, err)
				}
				blocks = append(blocks, anthropicContentBlock{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Name,
					Input: input,
				})
			}
			if message.Content != "" || len(blocks) == 0 {
				blocks = append(blocks, anthropicContentBlock{Type: "text", Text: message.Content})
			}
			result = append(result, anthropicMessage{Role: "assistant", Content: blocks})

		default:
			// User messages, and system messages that slipped into the turn
			// list, both travel as user text.
			result = append(result, anthropicMessage{
				Role:    "user",
				Content: []anthropicContentBlock{{Type: "text", Text: message.Content}},
			})
		}
	}

	return result, nil
}

func marshalToolInput(arguments map[string]any) (json.RawMessage, error) {
	if len(arguments) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return json.Marshal(arguments)
}

// buildAnthropicTools converts tool descriptions to the wire format. With
// prompt caching enabled the last tool carries a cache_control marker, which
// caches the whole tool definition prefix.
func buildAnthropicTools(tools []ai.ToolDescription, capabilities Capabilities) ([]anthropicTool, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	result := make([]anthropicTool, 0, len(tools))
	for _, tool := range tools {
		schema := emptyObjectSchema
		if tool.Parameters != nil {
			marshaled, err := json.Marshal(tool.Parameters)
			if err != nil {
				return nil, fmt.Errorf("error marshaling schema of tool %q: %w", tool.Name, err)
			}
			schema = marshaled
		}
		result = append(result, anthropicTool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		})
	}

	if capabilities.PromptCaching {
		result[len(result)-1].CacheControl = &anthropicCacheControl{Type: "ephemeral"}
	}
	return result, nil
}

// buildAnthropicToolChoice maps the generic tool choice. A ForcedTool of
// "auto" or "any" selects the corresponding mode; any other non-empty value
// forces that named tool.
func buildAnthropicToolChoice(choice *ai.ToolChoice) *anthropicToolChoice {
	if choice == nil {
		return nil
	}
	switch choice.ForcedTool {
	case "":
		if choice.AtLeastOneRequired {
			return &anthropicToolChoice{Type: "any"}
		}
		return nil
	case "auto":
		return &anthropicToolChoice{Type: "auto"}
	case "any":
		return &anthropicToolChoice{Type: "any"}
	default:
		return &anthropicToolChoice{Type: "tool", Name: choice.ForcedTool}
	}
}

// anthropicToGeneric converts a synchronous API response to the generic form.
func anthropicToGeneric(response *anthropicResponse, rateLimits []ai.RateLimit) (*ai.ChatResponse, error) {
	if response == nil {
		return nil, fmt.Errorf("response is nil")
	}

	result := &ai.ChatResponse{
		Id:           responseIDOrFallback(response.ID),
		Model:        response.Model,
		FinishReason: mapFinishReason(response.StopReason),
		Usage:        usageToGeneric(response.Usage),
		RateLimits:   rateLimits,
	}

	for _, block := range response.Content {
		switch block.Type {
		case "text":
			result.Content += block.Text
		case "thinking":
			result.Reasoning += block.Thinking
		case "tool_use":
			arguments := map[string]any{}
			if len(block.Input) > 0 {
				if parsed, err := utils.ParseStringAs[map[string]any](string(block.Input)); err == nil {
					arguments = parsed
				}
			}
			result.ToolCalls = append(result.ToolCalls, ai.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: arguments,
			})
		}
	}

	return result, nil
}

func usageToGeneric(usage anthropicUsage) *ai.Usage {
	return &ai.Usage{
		PromptTokens:     usage.InputTokens,
		CompletionTokens: usage.OutputTokens,
		TotalTokens:      usage.InputTokens + usage.OutputTokens,
		CachedTokens:     usage.CacheCreationInputTokens + usage.CacheReadInputTokens,
	}
}

// mapFinishReason normalizes Anthropic stop reasons. Unknown and absent
// reasons map to [ai.FinishReasonOther] rather than being mistaken for a
// clean stop.
func mapFinishReason(stopReason string) ai.FinishReason {
	switch stopReason {
	case "end_turn", "stop_sequence":
		return ai.FinishReasonStop
	case "max_tokens":
		return ai.FinishReasonLength
	case "tool_use":
		return ai.FinishReasonToolCalls
	default:
		return ai.FinishReasonOther
	}
}

// responseIDOrFallback returns the provider response ID, or a generated UUID
// when the provider omitted one, so downstream correlation always has a key.
func responseIDOrFallback(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
