package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testArticleHTML = `<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
<article>
<h1>Test Article</h1>
<p>First readable paragraph with enough words that extraction heuristics
treat it as real content rather than boilerplate navigation text.</p>
<p>Second paragraph keeps the content flowing so the extractor picks this
block as the main body of the page regardless of which parser wins.</p>
</article>
</body>
</html>`

func TestFetchURLContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, testArticleHTML)
	}))
	defer srv.Close()

	Init(Config{MaxContentChars: 6000, FetchTimeout: 5 * time.Second})

	title, content, err := FetchURLContent(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchURLContent: %v", err)
	}
	if title != "Test Article" {
		t.Errorf("title = %q, want %q", title, "Test Article")
	}
	if !strings.Contains(content, "First readable paragraph") {
		t.Errorf("content missing article text: %q", content)
	}
}

func TestFetchURLContentTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, testArticleHTML)
	}))
	defer srv.Close()

	Init(Config{MaxContentChars: 50, FetchTimeout: 5 * time.Second})

	_, content, err := FetchURLContent(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchURLContent: %v", err)
	}
	if len(content) > 50+len("...") {
		t.Errorf("content not truncated: %d bytes", len(content))
	}
	if !strings.HasSuffix(content, "...") {
		t.Errorf("expected truncation suffix, got %q", content)
	}
}

func TestFetchURLContentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	Init(Config{MaxContentChars: 6000, FetchTimeout: 2 * time.Second})

	if _, _, err := FetchURLContent(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
