package ai

import (
	"context"
	"net/http"
)

// StreamProvider is implemented by providers that support SSE streaming with
// tool-use orchestration. Callers detect support via type assertion:
// provider.(StreamProvider); without it, fall back to SendMessage.
type StreamProvider interface {
	Provider

	// StreamMessage sends a chat request and returns a ChatStream that
	// yields chunks as they arrive. When the model requests tool execution,
	// the provider runs the tools from request.ToolRegistry, extends
	// request.Messages with the assistant and tool-result turns, and splices
	// the follow-up response into the same stream, up to request.MaxSteps
	// hops. Pre-stream errors (auth, bad request, network, rate limits) are
	// returned as a normal error; mid-stream errors are yielded through the
	// iterator.
	StreamMessage(ctx context.Context, request *ChatRequest) (*ChatStream, error)
}

// Provider is the core interface every LLM provider implementation must
// satisfy.
type Provider interface {
	// SendMessage sends a chat request and returns the completed response.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// IsStopMessage reports whether the response represents a terminal
	// completion (no further tool calls expected).
	IsStopMessage(message *ChatResponse) bool

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}
