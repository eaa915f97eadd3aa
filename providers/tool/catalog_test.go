package tool

import (
	"context"
	"strings"
	"testing"
)

func TestCatalog_AddAndGet(t *testing.T) {
	catalog := NewCatalogWithTools(newWeatherTool())

	if catalog.Size() != 1 {
		t.Fatalf("size: got %d", catalog.Size())
	}

	// Lookup is case-insensitive.
	if _, exists := catalog.Get("GET_WEATHER"); !exists {
		t.Error("case-insensitive lookup failed")
	}
	if !catalog.Has("get_weather") {
		t.Error("Has failed for registered tool")
	}
	if catalog.Has("missing") {
		t.Error("Has reported an unregistered tool")
	}
}

func TestCatalog_Invoke(t *testing.T) {
	catalog := NewCatalogWithTools(newWeatherTool())

	result, err := catalog.Invoke(context.Background(), "get_weather", map[string]any{"city": "Oslo"})
	if err != nil {
		t.Fatalf("Invoke returned unexpected error: %v", err)
	}
	if !strings.Contains(result, "sunny in Oslo") {
		t.Errorf("result: got %q", result)
	}
}

func TestCatalog_InvokeUnknownTool(t *testing.T) {
	catalog := NewCatalog()

	_, err := catalog.Invoke(context.Background(), "nope", nil)
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("error should name the tool: %v", err)
	}
}

func TestCatalog_Descriptions(t *testing.T) {
	catalog := NewCatalogWithTools(newWeatherTool())

	descriptions := catalog.Descriptions()
	if len(descriptions) != 1 || descriptions[0].Name != "get_weather" {
		t.Errorf("descriptions: got %+v", descriptions)
	}
}

func TestCatalog_RemoveAndClear(t *testing.T) {
	catalog := NewCatalogWithTools(newWeatherTool())

	if !catalog.Remove("get_weather") {
		t.Error("Remove returned false for registered tool")
	}
	if catalog.Remove("get_weather") {
		t.Error("Remove returned true for absent tool")
	}

	catalog.AddTools(newWeatherTool())
	catalog.Clear()
	if catalog.Size() != 0 {
		t.Errorf("size after Clear: got %d", catalog.Size())
	}
}

func TestCatalog_MergeAndClone(t *testing.T) {
	first := NewCatalogWithTools(newWeatherTool())
	second := NewCatalog()
	second.Merge(first)

	if second.Size() != 1 {
		t.Errorf("merged size: got %d", second.Size())
	}

	clone := first.Clone()
	clone.Clear()
	if first.Size() != 1 {
		t.Error("clearing the clone must not affect the original")
	}
}
