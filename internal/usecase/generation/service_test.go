package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/hybridqa/internal/domain"
)

func TestSelect_FirstConfiguredWins(t *testing.T) {
	groq := &mockProvider{name: "groq", results: []mockResult{{answer: "from groq"}}}
	gemini := &mockProvider{name: "gemini", results: []mockResult{{answer: "from gemini"}}}

	g := Select(nil, groq, gemini)
	if g.ProviderName() != "groq" {
		t.Fatalf("expected groq, got %q", g.ProviderName())
	}

	answer, err := g.Generate(context.Background(), "q", "ctx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "from groq" {
		t.Errorf("unexpected answer %q", answer)
	}
	if gemini.calls != 0 {
		t.Error("lower-priority provider must not be called")
	}
}

func TestGenerate_NoFailoverOnError(t *testing.T) {
	groq := &mockProvider{name: "groq", results: []mockResult{{err: domain.NewProviderError("groq", 500, "down")}}}
	gemini := &mockProvider{name: "gemini", results: []mockResult{{answer: "unused"}}}

	_, err := Select(groq, gemini).Generate(context.Background(), "q", "ctx")
	if !errors.Is(err, domain.ErrProviderError) {
		t.Fatalf("expected ErrProviderError, got %v", err)
	}
	if groq.calls != 1 {
		t.Errorf("expected exactly one call, got %d", groq.calls)
	}
	if gemini.calls != 0 {
		t.Error("failure must not fall through to the next provider")
	}
}

func TestGenerate_Placeholder(t *testing.T) {
	g := Select()
	if g.ProviderName() != PlaceholderName {
		t.Fatalf("expected placeholder, got %q", g.ProviderName())
	}

	answer, err := g.Generate(context.Background(), "what?", "chunk one\n\nchunk two")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(answer, "Retrieved context:\nchunk one\n\nchunk two") {
		t.Errorf("placeholder must echo the context, got %q", answer)
	}
}

func TestGenerate_TrimsAnswerAndBuildsPrompt(t *testing.T) {
	p := &mockProvider{name: "openai", results: []mockResult{{answer: "  42  \n"}}}

	answer, err := Select(p).Generate(context.Background(), "meaning?", "the answer is 42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "42" {
		t.Errorf("expected trimmed answer, got %q", answer)
	}
	if p.prompts[0] != BuildPrompt("meaning?", "the answer is 42") {
		t.Errorf("unexpected prompt %q", p.prompts[0])
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Who?", "Alice wrote it.")
	want := "You are a helpful assistant. Answer ONLY using the context below. Be concise and specific.\n\n" +
		"Context:\nAlice wrote it.\n\nQuestion:\nWho?\n\n" +
		"If the answer is not found in the context, say 'Not found in documents.'"
	if got != want {
		t.Errorf("unexpected prompt:\n%s", got)
	}
}
