package utils

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clarolabs/claro/providers/observability"
)

// DoPostStream performs an HTTP POST request and returns the raw response
// with the body left open for SSE reading. The caller is responsible for
// closing the response body when done. On error paths the body is read and
// closed before returning; non-2xx responses produce an *HTTPStatusError so
// adapters can classify the failure from status and headers.
func DoPostStream(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.stream_request.prepared",
			observability.String(observability.AttrHTTPMethod, "POST"),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	requestStart := time.Now()
	response, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		if span != nil {
			span.AddEvent("http.stream_request.error",
				observability.Error(err),
				observability.Duration("http.request.duration", requestDuration),
			)
		}
		return response, fmt.Errorf("error sending stream request: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		// Cap body reads to maxResponseBodySize to prevent unbounded memory allocation.
		errorBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
		if readErr != nil {
			return response, fmt.Errorf("non-2xx status %d (failed to read body: %v)", response.StatusCode, readErr)
		}
		return response, &HTTPStatusError{StatusCode: response.StatusCode, Header: response.Header, Body: errorBody}
	}

	if span != nil {
		span.AddEvent("http.stream_response.started",
			observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
			observability.Duration("http.request.duration", requestDuration),
		)
	}

	return response, nil
}

// maxSSELineSize is the maximum size of a single SSE line (1 MB).
// Large SSE events such as tool-call arguments or long completions can
// exceed typical line-buffer defaults; lines beyond this limit produce an
// error through the scanner's Next() path.
const maxSSELineSize = 1 * 1024 * 1024

// maxResponseBodySize is the maximum response body size (10 MB). Enforced via
// io.LimitReader to prevent unbounded memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// LineReader reads one newline-terminated line at a time from a stream
// without consuming bytes past the next newline. At EOF it returns whatever
// bytes were accumulated since the previous newline, then io.EOF.
type LineReader struct {
	reader *bufio.Reader
}

// NewLineReader creates a LineReader over reader.
func NewLineReader(reader io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(reader)}
}

// ReadLine returns the next line with its trailing "\n" (and any "\r")
// stripped. A final unterminated line before EOF is returned as-is with a
// nil error; the subsequent call returns io.EOF.
func (lineReader *LineReader) ReadLine() (string, error) {
	line, err := lineReader.reader.ReadString('\n')
	if len(line) > maxSSELineSize {
		return "", fmt.Errorf("SSE line exceeds %d bytes", maxSSELineSize)
	}
	if len(line) > 0 {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err != nil {
		return "", err
	}
	return "", nil
}

// SSEEvent is one parsed Server-Sent-Events frame. Name is the value of the
// "event:" line when present; Data is the trimmed payload of the paired
// "data:" line, empty when the frame carried no payload.
type SSEEvent struct {
	Name string
	Data string
}

// SSEScanner reads Server-Sent Events from an io.Reader.
//
// It understands both framing styles used by LLM providers: Anthropic-style
// "event:" lines paired with a following "data:" line, and bare "data:"
// lines as used by OpenAI-compatible APIs. Comments, empty lines, unknown
// SSE fields (id:, retry:), and "[DONE]" sentinels are skipped.
type SSEScanner struct {
	lines *LineReader
}

// NewSSEScanner creates an SSEScanner that reads SSE frames from reader.
// Individual lines are supported up to maxSSELineSize (1 MB).
func NewSSEScanner(reader io.Reader) *SSEScanner {
	return &SSEScanner{lines: NewLineReader(reader)}
}

// Next returns the next SSE frame. It returns io.EOF when the stream ends.
//
// Frame rules:
//   - "event: ping" returns immediately with no payload; ping frames carry
//     no data line.
//   - Any other "event:" line is paired with the next line. When that line
//     is empty or is not a "data:" line, the frame has the event name and
//     no payload. A "[DONE]" payload discards the frame.
//   - A bare "data:" line yields a nameless frame unless its payload is
//     empty or "[DONE]".
func (sseScanner *SSEScanner) Next() (SSEEvent, error) {
	for {
		line, err := sseScanner.lines.ReadLine()
		if err != nil {
			return SSEEvent{}, err
		}

		switch {
		case strings.HasPrefix(line, "event:"):
			name := strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			if name == "ping" {
				return SSEEvent{Name: "ping"}, nil
			}

			dataLine, dataErr := sseScanner.lines.ReadLine()
			if dataErr != nil || dataLine == "" || !strings.HasPrefix(dataLine, "data:") {
				if dataErr != nil && dataErr != io.EOF {
					return SSEEvent{}, dataErr
				}
				// Event frame without a payload.
				return SSEEvent{Name: name}, nil
			}

			data := strings.TrimSpace(strings.TrimPrefix(dataLine, "data:"))
			if data == "" {
				return SSEEvent{Name: name}, nil
			}
			if strings.Contains(data, "[DONE]") {
				continue
			}
			return SSEEvent{Name: name, Data: data}, nil

		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" || strings.Contains(data, "[DONE]") {
				continue
			}
			return SSEEvent{Data: data}, nil

		default:
			// Empty lines, ":" comments, and other SSE fields (id:, retry:)
			// carry no payload.
			continue
		}
	}
}
