// Package openai provides a classifier.Provider backed by the OpenAI chat
// completions API, used as the Tier-3 rebuttal fallback.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/MrWong99/callaudit/pkg/provider/classifier"
)

const systemPrompt = `You are reviewing a sales call transcript to decide whether the agent delivered a rebuttal: a direct response that handles a prospect's objection or pushback (e.g., "I'm not interested", "I already have a provider", "call me back later") rather than ignoring it or ending the call.

Respond with a single JSON object and nothing else, in the form:
{"result": "Yes" or "No", "confidence": a number between 0 and 1, "reason": a short explanation}`

// Provider implements classifier.Provider using the OpenAI API.
type Provider struct {
	client oai.Client
	model  string
}

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new OpenAI-backed Classifier Provider.
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("classifier/openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("classifier/openai: model must not be empty")
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	client := oai.NewClient(reqOpts...)
	return &Provider{client: client, model: model}, nil
}

// classifyResponse is the JSON shape the model is instructed to emit.
type classifyResponse struct {
	Result     string  `json:"result"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ClassifyRebuttal implements classifier.Provider.
func (p *Provider) ClassifyRebuttal(ctx context.Context, transcript string) (classifier.Result, error) {
	jsonFormat := shared.NewResponseFormatJSONObjectParam()
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(transcript),
		},
		ResponseFormat: oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &jsonFormat,
		},
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return classifier.Result{}, fmt.Errorf("%w: %v", classifier.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return classifier.Result{}, fmt.Errorf("%w: empty choices in response", classifier.ErrUnavailable)
	}

	var parsed classifyResponse
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return classifier.Result{}, fmt.Errorf("%w: parse JSON response: %v", classifier.ErrUnavailable, err)
	}

	return classifier.Result{
		IsRebuttal: strings.EqualFold(strings.TrimSpace(parsed.Result), "yes"),
		Confidence: clamp01(parsed.Confidence),
		Reasoning:  parsed.Reason,
	}, nil
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
