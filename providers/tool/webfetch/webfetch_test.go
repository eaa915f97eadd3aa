package webfetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch_ConvertsHTMLToMarkdown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/html")
		fmt.Fprint(writer, `<html><body><h1>Title</h1><p>Some <strong>bold</strong> text.</p></body></html>`)
	}))
	defer server.Close()

	output, err := Fetch(context.Background(), Input{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch returned unexpected error: %v", err)
	}

	if !strings.Contains(output.Markdown, "# Title") {
		t.Errorf("markdown missing heading: %q", output.Markdown)
	}
	if !strings.Contains(output.Markdown, "**bold**") {
		t.Errorf("markdown missing bold text: %q", output.Markdown)
	}
	if output.HTML != "" {
		t.Error("HTML must be empty unless requested")
	}
}

func TestFetch_IncludeHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, `<p>hi</p>`)
	}))
	defer server.Close()

	output, err := Fetch(context.Background(), Input{URL: server.URL, IncludeHTML: true})
	if err != nil {
		t.Fatalf("Fetch returned unexpected error: %v", err)
	}
	if !strings.Contains(output.HTML, "<p>hi</p>") {
		t.Errorf("raw HTML missing: %q", output.HTML)
	}
}

func TestFetch_EmptyURL(t *testing.T) {
	if _, err := Fetch(context.Background(), Input{URL: "   "}); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestFetch_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), Input{URL: server.URL})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should mention the status code: %v", err)
	}
}

func TestNewWebFetchTool_Metadata(t *testing.T) {
	fetchTool := NewWebFetchTool()

	info := fetchTool.ToolInfo()
	if info.Name != "WebFetch" {
		t.Errorf("name: got %q", info.Name)
	}
	if info.Parameters == nil {
		t.Fatal("parameters schema missing")
	}
	if _, ok := info.Parameters.Properties["url"]; !ok {
		t.Errorf("schema missing url property: %+v", info.Parameters.Properties)
	}
}
