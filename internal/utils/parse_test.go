package utils

import "testing"

func TestParseStringAs_Primitives(t *testing.T) {
	if got, err := ParseStringAs[string]("hello"); err != nil || got != "hello" {
		t.Errorf("string: got %q, %v", got, err)
	}
	if got, err := ParseStringAs[bool]("true"); err != nil || !got {
		t.Errorf("bool: got %v, %v", got, err)
	}
	if got, err := ParseStringAs[int]("42"); err != nil || got != 42 {
		t.Errorf("int: got %d, %v", got, err)
	}
	if got, err := ParseStringAs[float64]("2.5"); err != nil || got != 2.5 {
		t.Errorf("float: got %v, %v", got, err)
	}
	if _, err := ParseStringAs[int]("not a number"); err == nil {
		t.Error("expected error parsing non-numeric int")
	}
}

func TestParseStringAs_Struct(t *testing.T) {
	type input struct {
		City  string `json:"city"`
		Count int    `json:"count"`
	}

	got, err := ParseStringAs[input](`{"city":"NYC","count":3}`)
	if err != nil {
		t.Fatalf("valid JSON: %v", err)
	}
	if got.City != "NYC" || got.Count != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestParseStringAs_RepairsMalformedJSON(t *testing.T) {
	// Single quotes and a trailing comma: typical LLM output defects that
	// jsonrepair recovers.
	got, err := ParseStringAs[map[string]any](`{'city': 'NYC',}`)
	if err != nil {
		t.Fatalf("repairable JSON should parse: %v", err)
	}
	if got["city"] != "NYC" {
		t.Errorf("got %v", got)
	}
}

func TestParseStringAs_MapFromValidJSON(t *testing.T) {
	got, err := ParseStringAs[map[string]any](`{"a":1,"b":"x"}`)
	if err != nil {
		t.Fatalf("valid JSON map: %v", err)
	}
	if got["b"] != "x" {
		t.Errorf("got %v", got)
	}
}
