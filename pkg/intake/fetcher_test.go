package intake

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFetchNarrativeFromFile(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "narrative.txt")
	testContent := "Build a dashboard that tracks warehouse inventory."

	err := os.WriteFile(testFile, []byte(testContent+"\n"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	content, err := FetchNarrative(context.Background(), testFile)
	if err != nil {
		t.Fatalf("Failed to fetch from file: %v", err)
	}

	if content != testContent {
		t.Errorf("Expected content '%s', got '%s'", testContent, content)
	}
}

func TestFetchNarrativeFileErrors(t *testing.T) {
	emptyFile := filepath.Join(t.TempDir(), "empty.txt")
	err := os.WriteFile(emptyFile, []byte("  \n"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	for _, path := range []string{"/nonexistent/file.txt", emptyFile} {
		_, err = FetchNarrative(context.Background(), path)
		if err == nil {
			t.Errorf("Expected error fetching %s, got nil", path)
		}
	}
}

func TestFetchNarrativeFromURL(t *testing.T) {
	page := `<!DOCTYPE html>
<html><head><title>Ignored</title><style>body { color: red; }</style></head>
<body>
<h1>Inventory Dashboard</h1>
<script>var tracking = true;</script>
<p>Build a dashboard that tracks warehouse inventory &amp; shipments.</p>
<ul><li>Weekly demos</li><li>Final report</li></ul>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "learning-designer/") {
			t.Errorf("Expected learning-designer user agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	content, err := FetchNarrative(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch from URL: %v", err)
	}

	expected := "Inventory Dashboard\nBuild a dashboard that tracks warehouse inventory & shipments.\nWeekly demos\nFinal report"
	if content != expected {
		t.Errorf("Expected %q, got %q", expected, content)
	}
}

func TestFetchNarrativeFromURLPlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Use <angle> brackets literally."))
	}))
	defer server.Close()

	content, err := FetchNarrative(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch from URL: %v", err)
	}
	if content != "Use <angle> brackets literally." {
		t.Errorf("Expected plain text to pass through, got %q", content)
	}
}

func TestFetchNarrativeFromURLError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := FetchNarrative(context.Background(), server.URL)
	if err == nil {
		t.Error("Expected error for 404 response, got nil")
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "<p>Hello</p>", "Hello"},
		{"line breaks", "one<br>two<br/>three", "one\ntwo\nthree"},
		{"nested skip", "<div><script>if (a < b) {}</script>kept</div>", "kept"},
		{"whitespace", "<p>  lots   of\n   space </p>", "lots of space"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripHTML(tt.input)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
