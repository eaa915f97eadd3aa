//go:build integration

package anthropic

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/clarolabs/claro/providers/ai"
)

const (
	// defaultIntegrationModel is the cheapest Claude model that supports tools
	// and streaming. Override with ANTHROPIC_TEST_MODEL if needed.
	defaultIntegrationModel = "claude-sonnet-4-20250514"
)

// TestMain loads credentials from a local .env file when present so
// integration runs do not require exporting variables manually.
func TestMain(m *testing.M) {
	_ = godotenv.Load("../../../.env")
	os.Exit(m.Run())
}

func integrationModel() string {
	if model := os.Getenv("ANTHROPIC_TEST_MODEL"); model != "" {
		return model
	}
	return defaultIntegrationModel
}

// requireAPIKey fails the test immediately when ANTHROPIC_API_KEY is not set.
// Integration tests are opt-in (build tag), so a missing key is a
// configuration error that should surface loudly rather than be silently
// skipped.
func requireAPIKey(t *testing.T) {
	t.Helper()
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		t.Fatal("ANTHROPIC_API_KEY is required for integration tests")
	}
}

// TestSendMessage_Integration verifies that the provider can complete a basic
// chat request against the real Messages API.
func TestSendMessage_Integration(t *testing.T) {
	requireAPIKey(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider := New()

	response, err := provider.SendMessage(ctx, ai.ChatRequest{
		Model: integrationModel(),
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "Reply with exactly: hello world"},
		},
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if response.Content == "" {
		t.Error("expected non-empty content in response")
	}
	if response.Usage == nil || response.Usage.TotalTokens <= 0 {
		t.Errorf("expected positive token usage, got %+v", response.Usage)
	}
	if len(response.RateLimits) == 0 {
		t.Error("expected rate-limit buckets parsed from response headers")
	}
}

// TestStreamMessage_Integration verifies streaming with a single tool round
// against the real Messages API.
func TestStreamMessage_Integration(t *testing.T) {
	requireAPIKey(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	provider := New()

	registry := registryFunc(func(ctx context.Context, name string, arguments map[string]any) (string, error) {
		return "22C and sunny", nil
	})

	request := &ai.ChatRequest{
		Model: integrationModel(),
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "Use the get_weather tool to check the weather in Paris, then summarize it in one sentence."},
		},
		Tools: []ai.ToolDescription{
			{Name: "get_weather", Description: "Returns the current weather for a city."},
		},
		ToolRegistry: registry,
		MaxSteps:     2,
	}

	stream, err := provider.StreamMessage(ctx, request)
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(response.ToolCalls) == 0 {
		t.Error("expected the model to call the tool")
	}
	if !strings.Contains(strings.ToLower(response.Content), "sunny") {
		t.Logf("final content (model phrasing may vary): %q", response.Content)
	}
	if response.FinishReason != ai.FinishReasonStop {
		t.Errorf("finish reason: got %q, want %q", response.FinishReason, ai.FinishReasonStop)
	}
}
