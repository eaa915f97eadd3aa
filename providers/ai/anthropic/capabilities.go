package anthropic

import "strings"

// Known beta feature header values for Anthropic's anthropic-beta header.
// Users can pass these (or any future beta string) via Capabilities.BetaFeatures.
const (
	// BetaInterleavedThinking enables interleaved thinking blocks in responses.
	BetaInterleavedThinking = "interleaved-thinking-2025-05-14"

	// BetaTokenCounting enables the token counting endpoint.
	BetaTokenCounting = "token-counting-2024-11-01"
)

// Capabilities describes configurable features for the Anthropic provider.
// All fields default to false/empty; set them via
// [AnthropicProvider.WithCapabilities].
type Capabilities struct {
	PromptCaching bool     // Endpoint supports prompt caching (cache_control on content blocks)
	BetaFeatures  []string // Optional list of anthropic-beta header values to send
}

// betaHeaderValue returns the comma-joined anthropic-beta header value, or an
// empty string when no beta features are configured.
func (capabilities Capabilities) betaHeaderValue() string {
	if len(capabilities.BetaFeatures) == 0 {
		return ""
	}
	return strings.Join(capabilities.BetaFeatures, ",")
}
