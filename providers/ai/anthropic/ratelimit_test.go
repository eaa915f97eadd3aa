package anthropic

import (
	"net/http"
	"testing"
	"time"
)

func TestParseRateLimitHeaders(t *testing.T) {
	header := http.Header{}
	header.Set("anthropic-ratelimit-requests-limit", "1000")
	header.Set("anthropic-ratelimit-requests-remaining", "998")
	header.Set("anthropic-ratelimit-requests-reset", "2026-08-24T10:30:00Z")
	header.Set("anthropic-ratelimit-input-tokens-limit", "80000")
	header.Set("anthropic-ratelimit-input-tokens-remaining", "79000")
	header.Set("retry-after", "12")
	header.Set("content-type", "application/json")

	rateLimits, retryAfter := parseRateLimitHeaders(header)

	if len(rateLimits) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %+v", len(rateLimits), rateLimits)
	}

	// Buckets are sorted by resource name for deterministic output.
	tokens := rateLimits[0]
	if tokens.Name != "input-tokens" {
		t.Errorf("first bucket name: got %q, want input-tokens", tokens.Name)
	}
	if tokens.Limit == nil || *tokens.Limit != 80000 {
		t.Errorf("input-tokens limit: got %v", tokens.Limit)
	}
	if tokens.Remaining == nil || *tokens.Remaining != 79000 {
		t.Errorf("input-tokens remaining: got %v", tokens.Remaining)
	}
	if tokens.ResetsAt != nil {
		t.Error("input-tokens reset should be absent")
	}

	requests := rateLimits[1]
	if requests.Name != "requests" {
		t.Errorf("second bucket name: got %q, want requests", requests.Name)
	}
	if requests.ResetsAt == nil {
		t.Fatal("requests reset time missing")
	}
	expectedReset := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	if !requests.ResetsAt.Equal(expectedReset) {
		t.Errorf("requests reset: got %v, want %v", requests.ResetsAt, expectedReset)
	}

	if retryAfter == nil || *retryAfter != 12 {
		t.Errorf("retry after: got %v, want 12", retryAfter)
	}
}

func TestParseRateLimitHeaders_UnparseableValues(t *testing.T) {
	header := http.Header{}
	header.Set("anthropic-ratelimit-requests-limit", "not-a-number")
	header.Set("anthropic-ratelimit-requests-reset", "soon")
	header.Set("retry-after", "later")

	rateLimits, retryAfter := parseRateLimitHeaders(header)

	if len(rateLimits) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(rateLimits))
	}
	if rateLimits[0].Limit != nil || rateLimits[0].ResetsAt != nil {
		t.Errorf("unparseable values must stay nil: %+v", rateLimits[0])
	}
	if retryAfter != nil {
		t.Errorf("non-integer retry-after must be nil, got %v", retryAfter)
	}
}

func TestParseRateLimitHeaders_NoHeaders(t *testing.T) {
	header := http.Header{}
	header.Set("content-type", "application/json")

	rateLimits, retryAfter := parseRateLimitHeaders(header)
	if rateLimits != nil {
		t.Errorf("expected nil buckets, got %+v", rateLimits)
	}
	if retryAfter != nil {
		t.Errorf("expected nil retry-after, got %v", retryAfter)
	}
}
