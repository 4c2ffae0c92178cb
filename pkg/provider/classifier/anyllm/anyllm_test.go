package anyllm

import (
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
)

// ── Constructor ───────────────────────────────────────────────────────────────

func TestNew_EmptyProviderName(t *testing.T) {
	_, err := New("", "gpt-4o")
	if err == nil {
		t.Fatal("expected error for empty providerName")
	}
}

func TestNew_EmptyModel(t *testing.T) {
	_, err := New("openai", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New("fakecloud", "some-model", anyllmlib.WithAPIKey("dummy"))
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestNew_OpenAI_WithAPIKey(t *testing.T) {
	p, err := New("openai", "gpt-4o", anyllmlib.WithAPIKey("sk-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
	if p.model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", p.model)
	}
}

func TestNew_Anthropic_WithAPIKey(t *testing.T) {
	p, err := NewAnthropic("claude-3-5-haiku-latest", anyllmlib.WithAPIKey("sk-ant-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}

func TestNew_Ollama_NoAPIKey(t *testing.T) {
	p, err := NewOllama("llama3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}

// ── extractJSONObject / clamp01 ───────────────────────────────────────────────

func TestExtractJSONObject_Clean(t *testing.T) {
	in := `{"result":"Yes","confidence":0.9,"reason":"ok"}`
	if got := extractJSONObject(in); got != in {
		t.Errorf("expected unchanged input, got %q", got)
	}
}

func TestExtractJSONObject_Fenced(t *testing.T) {
	in := "```json\n{\"result\":\"No\",\"confidence\":0.2,\"reason\":\"no objection\"}\n```"
	want := `{"result":"No","confidence":0.2,"reason":"no objection"}`
	if got := extractJSONObject(in); got != want {
		t.Errorf("extractJSONObject(%q) = %q, want %q", in, got, want)
	}
}

func TestExtractJSONObject_NoBraces(t *testing.T) {
	in := "no json here"
	if got := extractJSONObject(in); got != in {
		t.Errorf("expected input returned unchanged, got %q", got)
	}
}

func TestClamp01(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0: 0, 0.5: 0.5, 1: 1, 2: 1}
	for in, want := range cases {
		if got := clamp01(in); got != want {
			t.Errorf("clamp01(%v) = %v, want %v", in, got, want)
		}
	}
}
