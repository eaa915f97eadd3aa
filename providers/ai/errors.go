package ai

import (
	"fmt"
	"strings"
)

// The error taxonomy shared by all providers. Pre-stream failures are
// returned from the request call; mid-stream failures are yielded through
// the chunk iterator. Consumers discriminate with errors.As.

// RateLimitedError reports an HTTP 429 response. It carries the parsed
// rate-limit buckets and the retry-after hint so retry layers can schedule
// a resend without re-parsing headers.
type RateLimitedError struct {
	RateLimits []RateLimit
	RetryAfter *int // Seconds; nil when the header was absent
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter != nil {
		return fmt.Sprintf("provider rate limited, retry after %d seconds", *e.RetryAfter)
	}
	return "provider rate limited"
}

// OverloadedError reports an HTTP 529 response or an in-stream
// overloaded_error event.
type OverloadedError struct {
	Message string
}

func (e *OverloadedError) Error() string {
	if e.Message != "" {
		return "provider overloaded: " + e.Message
	}
	return "provider overloaded"
}

// RequestTooLargeError reports an HTTP 413 response.
type RequestTooLargeError struct{}

func (e *RequestTooLargeError) Error() string {
	return "request payload too large"
}

// ChunkDecodeError reports a malformed JSON payload on an SSE data line.
type ChunkDecodeError struct {
	Provider string
	Err      error
}

func (e *ChunkDecodeError) Error() string {
	return fmt.Sprintf("%s: failed to decode stream chunk: %v", e.Provider, e.Err)
}

func (e *ChunkDecodeError) Unwrap() error { return e.Err }

// ProviderRequestError reports a transport-level failure sending a request:
// connection errors and HTTP statuses with no dedicated mapping.
type ProviderRequestError struct {
	Model string
	Err   error
}

func (e *ProviderRequestError) Error() string {
	return fmt.Sprintf("request to model %q failed: %v", e.Model, e.Err)
}

func (e *ProviderRequestError) Unwrap() error { return e.Err }

// ProviderResponseError reports an in-stream error event of a type with no
// dedicated mapping.
type ProviderResponseError struct {
	Type    string
	Message string
}

func (e *ProviderResponseError) Error() string {
	return strings.TrimSpace(e.Type + " " + e.Message)
}

// MaxDepthError reports that a conversation required more tool-call hops
// than ChatRequest.MaxSteps allows. It is raised before the out-of-budget
// request is sent.
type MaxDepthError struct {
	MaxSteps int
}

func (e *MaxDepthError) Error() string {
	return "maximum tool call chain depth exceeded"
}

// InvalidCitationError reports a citation record carrying none of the
// recognized positional signatures.
type InvalidCitationError struct {
	Raw string // Compact JSON of the offending citation object
}

func (e *InvalidCitationError) Error() string {
	return "citation record has no recognized location signature: " + e.Raw
}
