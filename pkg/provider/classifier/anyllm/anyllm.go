// Package anyllm provides a classifier.Provider backed by
// github.com/mozilla-ai/any-llm-go, a unified multi-provider interface that
// supports OpenAI, Anthropic, Gemini, Ollama, DeepSeek, Mistral, Groq, and
// more. It serves as the optional Tier-3 rebuttal fallback when a caller
// wants a backend other than OpenAI directly.
//
// Usage:
//
//	p, err := anyllm.New("anthropic", "claude-3-5-haiku-latest", anyllmlib.WithAPIKey("sk-ant-..."))
//	res, err := p.ClassifyRebuttal(ctx, transcript)
package anyllm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/MrWong99/callaudit/pkg/provider/classifier"
)

const systemPrompt = `You are reviewing a sales call transcript to decide whether the agent delivered a rebuttal: a direct response that handles a prospect's objection or pushback (e.g., "I'm not interested", "I already have a provider", "call me back later") rather than ignoring it or ending the call.

Respond with a single JSON object and nothing else, in the form:
{"result": "Yes" or "No", "confidence": a number between 0 and 1, "reason": a short explanation}`

// Provider implements classifier.Provider by wrapping
// github.com/mozilla-ai/any-llm-go.
type Provider struct {
	backend anyllmlib.Provider
	model   string
}

// New creates a new Provider backed by the given LLM provider name.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama", "deepseek",
// "mistral", "groq", "llamacpp", "llamafile".
//
// opts are any-llm-go configuration options (e.g., anyllmlib.WithAPIKey, anyllmlib.WithBaseURL).
// If no API key option is provided, the provider falls back to the relevant
// environment variable (e.g., OPENAI_API_KEY, ANTHROPIC_API_KEY, etc.).
func New(providerName string, model string, opts ...anyllmlib.Option) (*Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("classifier/anyllm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("classifier/anyllm: model must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("classifier/anyllm: create %q backend: %w", providerName, err)
	}

	return &Provider{backend: backend, model: model}, nil
}

// NewAnthropic creates a Provider backed by Anthropic.
func NewAnthropic(model string, opts ...anyllmlib.Option) (*Provider, error) {
	return New("anthropic", model, opts...)
}

// NewOllama creates a Provider backed by Ollama (local inference).
func NewOllama(model string, opts ...anyllmlib.Option) (*Provider, error) {
	return New("ollama", model, opts...)
}

// createBackend creates the underlying any-llm-go provider for the given provider name.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	case "llamafile":
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, deepseek, mistral, groq, llamacpp, llamafile", providerName)
	}
}

// classifyResponse is the JSON shape the model is instructed to emit.
type classifyResponse struct {
	Result     string  `json:"result"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ClassifyRebuttal implements classifier.Provider.
func (p *Provider) ClassifyRebuttal(ctx context.Context, transcript string) (classifier.Result, error) {
	params := anyllmlib.CompletionParams{
		Model: p.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: systemPrompt},
			{Role: anyllmlib.RoleUser, Content: transcript},
		},
	}

	resp, err := p.backend.Completion(ctx, params)
	if err != nil {
		return classifier.Result{}, fmt.Errorf("%w: %v", classifier.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return classifier.Result{}, fmt.Errorf("%w: empty choices in response", classifier.ErrUnavailable)
	}

	content := resp.Choices[0].Message.ContentString()
	var parsed classifyResponse
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &parsed); err != nil {
		return classifier.Result{}, fmt.Errorf("%w: parse JSON response: %v", classifier.ErrUnavailable, err)
	}

	return classifier.Result{
		IsRebuttal: strings.EqualFold(strings.TrimSpace(parsed.Result), "yes"),
		Confidence: clamp01(parsed.Confidence),
		Reasoning:  parsed.Reason,
	}, nil
}

// extractJSONObject trims any leading/trailing text some backends add around
// the JSON object despite instructions (e.g., markdown code fences).
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Ensure Provider implements classifier.Provider at compile time.
var _ classifier.Provider = (*Provider)(nil)
