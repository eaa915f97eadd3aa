package observability

import (
	"context"
	"testing"
	"time"
)

type recordingSpan struct {
	events []string
}

func (s *recordingSpan) End()                                   {}
func (s *recordingSpan) SetAttributes(attributes ...Attribute)  {}
func (s *recordingSpan) SetStatus(code StatusCode, msg string)  {}
func (s *recordingSpan) RecordError(err error)                  {}
func (s *recordingSpan) AddEvent(name string, a ...Attribute)   { s.events = append(s.events, name) }

func TestSpanContextRoundTrip(t *testing.T) {
	span := &recordingSpan{}
	ctx := ContextWithSpan(context.Background(), span)

	got := SpanFromContext(ctx)
	if got != span {
		t.Fatal("span did not round-trip through context")
	}

	got.AddEvent("test.event")
	if len(span.events) != 1 || span.events[0] != "test.event" {
		t.Errorf("events: got %v", span.events)
	}
}

func TestSpanFromContext_Absent(t *testing.T) {
	if SpanFromContext(context.Background()) != nil {
		t.Error("expected nil span for empty context")
	}
	if SpanFromContext(nil) != nil {
		t.Error("expected nil span for nil context")
	}
}

func TestObserverFromContext_Absent(t *testing.T) {
	if ObserverFromContext(context.Background()) != nil {
		t.Error("expected nil observer for empty context")
	}
}

func TestAttributeConstructors(t *testing.T) {
	cases := []struct {
		attribute Attribute
		wantKey   string
	}{
		{String("k1", "v"), "k1"},
		{Int("k2", 3), "k2"},
		{Bool("k3", true), "k3"},
		{Duration("k4", time.Second), "k4"},
	}
	for _, testCase := range cases {
		if testCase.attribute.Key != testCase.wantKey {
			t.Errorf("key: got %q, want %q", testCase.attribute.Key, testCase.wantKey)
		}
		if testCase.attribute.Value == nil {
			t.Errorf("%s: nil value", testCase.wantKey)
		}
	}

	errAttr := Error(nil)
	if errAttr.Key == "" {
		t.Error("Error attribute must have a key even for nil error")
	}
}
