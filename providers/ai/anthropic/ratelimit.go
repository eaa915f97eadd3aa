package anthropic

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/clarolabs/claro/providers/ai"
)

const rateLimitHeaderPrefix = "anthropic-ratelimit-"

// parseRateLimitHeaders extracts rate-limit buckets from response headers.
//
// Anthropic names its headers anthropic-ratelimit-<resource>-<field>, where
// resource is e.g. "requests", "input-tokens", "output-tokens" and field is
// one of limit, remaining, reset. The three fields of one resource are
// grouped into a single [ai.RateLimit] record; reset values are RFC 3339
// timestamps. Unparseable values leave the corresponding field nil.
//
// The second return value is the retry-after header in seconds, nil when
// absent or not an integer.
func parseRateLimitHeaders(header http.Header) ([]ai.RateLimit, *int) {
	buckets := make(map[string]*ai.RateLimit)

	for name, values := range header {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, rateLimitHeaderPrefix) || len(values) == 0 {
			continue
		}

		rest := strings.TrimPrefix(lower, rateLimitHeaderPrefix)
		sep := strings.LastIndex(rest, "-")
		if sep <= 0 {
			continue
		}
		resource, field := rest[:sep], rest[sep+1:]
		value := strings.TrimSpace(values[0])

		bucket := buckets[resource]
		if bucket == nil {
			bucket = &ai.RateLimit{Name: resource}
			buckets[resource] = bucket
		}

		switch field {
		case "limit":
			if parsed, err := strconv.Atoi(value); err == nil {
				bucket.Limit = &parsed
			}
		case "remaining":
			if parsed, err := strconv.Atoi(value); err == nil {
				bucket.Remaining = &parsed
			}
		case "reset":
			if parsed, err := time.Parse(time.RFC3339, value); err == nil {
				bucket.ResetsAt = &parsed
			}
		}
	}

	if len(buckets) == 0 {
		return nil, parseRetryAfter(header)
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	rateLimits := make([]ai.RateLimit, 0, len(buckets))
	for _, name := range names {
		rateLimits = append(rateLimits, *buckets[name])
	}
	return rateLimits, parseRetryAfter(header)
}

func parseRetryAfter(header http.Header) *int {
	value := strings.TrimSpace(header.Get("retry-after"))
	if value == "" {
		return nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &seconds
}
