package anthropic

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clarolabs/claro/internal/utils"
	"github.com/clarolabs/claro/providers/ai"
)

// anthropicErrorBody is the JSON error envelope returned on non-2xx responses.
type anthropicErrorBody struct {
	Type  string `json:"type"` // "error"
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// HTTP status codes with a dedicated error mapping.
const (
	statusOverloaded = 529
)

// classifyHTTPError maps a transport-layer failure to the shared error
// taxonomy. Statuses 429, 529, and 413 get dedicated types; everything else,
// including connection errors, wraps into [ai.ProviderRequestError].
func classifyHTTPError(model string, err error) error {
	var statusErr *utils.HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			rateLimits, retryAfter := parseRateLimitHeaders(statusErr.Header)
			return &ai.RateLimitedError{RateLimits: rateLimits, RetryAfter: retryAfter}
		case statusOverloaded:
			return &ai.OverloadedError{Message: errorMessageFromBody(statusErr.Body)}
		case http.StatusRequestEntityTooLarge:
			return &ai.RequestTooLargeError{}
		}
	}
	return &ai.ProviderRequestError{Model: model, Err: err}
}

// classifyStreamError maps an in-stream error event to the shared taxonomy.
// overloaded_error gets its dedicated type; everything else becomes an
// [ai.ProviderResponseError] preserving the wire type and message.
func classifyStreamError(streamError *anthropicStreamError) error {
	if streamError == nil {
		return &ai.ProviderResponseError{Type: "unknown_error", Message: "stream error event without payload"}
	}
	if streamError.Type == "overloaded_error" {
		return &ai.OverloadedError{Message: streamError.Message}
	}
	return &ai.ProviderResponseError{Type: streamError.Type, Message: streamError.Message}
}

func errorMessageFromBody(body []byte) string {
	var parsed anthropicErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Error.Message
}
