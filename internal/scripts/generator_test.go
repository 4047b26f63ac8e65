package scripts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newscast/internal/articles"
	"newscast/internal/logging"
)

func TestGenerateBuildsScriptFromArticles(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := parseBody(r, &req); err != nil {
			t.Errorf("parse request: %v", err)
		}
		if len(req.Messages) == 2 {
			prompt = req.Messages[1].Content
		}
		fmt.Fprint(w, completionBody(`[{"speaker":"A","text":"導入"},{"speaker":"B","text":"解説"}]`))
	}))
	defer server.Close()

	gen := NewGenerator(NewClient(testLLMConfig(server.URL)), logging.NewNop())
	script, err := gen.Generate(context.Background(), []articles.Article{
		{Title: "新製品発表", Source: "Example News", Summary: "概要", Link: "https://example.com/a"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(script) != 2 || script[1].Speaker != SpeakerGuest {
		t.Fatalf("unexpected script %+v", script)
	}
	for _, want := range []string{"新製品発表", "Example News", "https://example.com/a"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestGenerateRejectsEmptyBatch(t *testing.T) {
	gen := NewGenerator(NewClient(testLLMConfig("http://localhost")), logging.NewNop())
	if _, err := gen.Generate(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestFallbackCoversEveryArticle(t *testing.T) {
	gen := NewGenerator(nil, logging.NewNop())
	items := []articles.Article{
		{Title: "記事その1", Source: "NHK", Summary: "要約1"},
		{Title: "記事その2", Source: "Example"},
	}

	script := gen.Fallback(items)
	if len(script) != 2+2*len(items) {
		t.Fatalf("unexpected line count %d", len(script))
	}
	text := script.Text()
	for _, want := range []string{"記事その1", "要約1", "記事その2", "NHK"} {
		if !strings.Contains(text, want) {
			t.Fatalf("fallback missing %q", want)
		}
	}
	for _, line := range script {
		if line.Speaker != SpeakerHost {
			t.Fatalf("fallback must be single-host, got %q", line.Speaker)
		}
	}
}

func parseBody(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
