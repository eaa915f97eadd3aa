package utils

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLineReader(t *testing.T) {
	reader := NewLineReader(strings.NewReader("first\r\nsecond\nunterminated"))

	line, err := reader.ReadLine()
	if err != nil || line != "first" {
		t.Errorf("first line: got %q, %v", line, err)
	}

	line, err = reader.ReadLine()
	if err != nil || line != "second" {
		t.Errorf("second line: got %q, %v", line, err)
	}

	// A final unterminated line is returned before EOF.
	line, err = reader.ReadLine()
	if err != nil || line != "unterminated" {
		t.Errorf("unterminated line: got %q, %v", line, err)
	}

	if _, err = reader.ReadLine(); err != io.EOF {
		t.Errorf("expected io.EOF after final line, got %v", err)
	}
}

func TestSSEScanner_EventDataPairs(t *testing.T) {
	input := strings.Join([]string{
		"event: message_start",
		`data: {"type":"message_start"}`,
		"",
		"event: ping",
		"",
		": comment line",
		"id: 7",
		"retry: 500",
		"event: content_block_delta",
		`data: {"type":"content_block_delta"}`,
		"",
		"data: [DONE]",
		"",
		`data: {"bare":"frame"}`,
		"",
	}, "\n")

	scanner := NewSSEScanner(strings.NewReader(input))

	event, err := scanner.Next()
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if event.Name != "message_start" || !strings.Contains(event.Data, "message_start") {
		t.Errorf("first frame: got %+v", event)
	}

	event, err = scanner.Next()
	if err != nil {
		t.Fatalf("ping frame: %v", err)
	}
	if event.Name != "ping" || event.Data != "" {
		t.Errorf("ping frame: got %+v", event)
	}

	event, err = scanner.Next()
	if err != nil {
		t.Fatalf("delta frame: %v", err)
	}
	if event.Name != "content_block_delta" {
		t.Errorf("delta frame: got %+v", event)
	}

	// [DONE] is skipped; the bare data frame follows, nameless.
	event, err = scanner.Next()
	if err != nil {
		t.Fatalf("bare frame: %v", err)
	}
	if event.Name != "" || !strings.Contains(event.Data, "bare") {
		t.Errorf("bare frame: got %+v", event)
	}

	if _, err = scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF at stream end, got %v", err)
	}
}

func TestSSEScanner_EventWithoutData(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader("event: message_stop\n\nevent: trailing"))

	event, err := scanner.Next()
	if err != nil {
		t.Fatalf("frame without data: %v", err)
	}
	if event.Name != "message_stop" || event.Data != "" {
		t.Errorf("frame without data: got %+v", event)
	}

	// An event name right before EOF still produces a payload-less frame.
	event, err = scanner.Next()
	if err != nil {
		t.Fatalf("trailing frame: %v", err)
	}
	if event.Name != "trailing" {
		t.Errorf("trailing frame: got %+v", event)
	}
}

func TestDoPostStream_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("retry-after", "5")
		writer.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(writer, `{"type":"error"}`)
	}))
	defer server.Close()

	_, err := DoPostStream(context.Background(), nil, server.URL, "", map[string]string{"k": "v"})
	if err == nil {
		t.Fatal("expected error for non-2xx response, got nil")
	}

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *HTTPStatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status: got %d", statusErr.StatusCode)
	}
	if statusErr.Header.Get("retry-after") != "5" {
		t.Error("headers must be preserved on the status error")
	}
	if !strings.Contains(string(statusErr.Body), "error") {
		t.Errorf("body must be preserved, got %q", statusErr.Body)
	}
}

func TestDoPostStream_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if got := request.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept: got %q", got)
		}
		if got := request.Header.Get("x-custom"); got != "custom-value" {
			t.Errorf("x-custom: got %q", got)
		}
		if got := request.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization: got %q", got)
		}
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	response, err := DoPostStream(context.Background(), nil, server.URL, "token", nil, HeaderOption{Key: "x-custom", Value: "custom-value"})
	if err != nil {
		t.Fatalf("DoPostStream returned unexpected error: %v", err)
	}
	CloseWithLog(response.Body)
}
