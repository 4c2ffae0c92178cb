// Package deepgram provides a Deepgram-backed Transcriber using Deepgram's
// prerecorded /v1/listen REST endpoint. It implements the
// transcriber.Provider interface for file-based batch transcription.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/pkg/provider/transcriber"
)

const (
	listenEndpoint  = "https://api.deepgram.com/v1/listen"
	defaultModel    = "nova-3"
	defaultLanguage = "en"
)

// listenEndpointOverride lets tests redirect requests to an httptest server.
// Left empty in production; the real listenEndpoint is used.
var listenEndpointOverride string

var contentTypeByExt = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".flac": "audio/flac",
}

// Option is a functional option for configuring the Deepgram Provider.
type Option func(*Provider)

// WithModel sets the Deepgram model to use (e.g., "nova-3", "base").
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// Provider implements transcriber.Provider backed by Deepgram's prerecorded
// transcription API.
type Provider struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// New creates a new Deepgram Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		model:      defaultModel,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Ensure Provider implements transcriber.Provider at compile time.
var _ transcriber.Provider = (*Provider)(nil)

type dgResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
				Words      []struct {
					Word       string  `json:"word"`
					Start      float64 `json:"start"`
					End        float64 `json:"end"`
					Speaker    *int    `json:"speaker"`
					Confidence float64 `json:"confidence"`
				} `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
}

// TranscribeFile uploads the audio file at path to Deepgram's prerecorded
// endpoint and maps the response onto transcriber.Result.
func (p *Provider) TranscribeFile(ctx context.Context, path string, opts transcriber.Options) (transcriber.Result, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: open %s: %v", transcriber.ErrGeneric, path, err)
	}
	defer f.Close()

	endpoint := listenEndpoint
	if listenEndpointOverride != "" {
		endpoint = listenEndpointOverride
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: %v", transcriber.ErrGeneric, err)
	}
	lang := opts.LanguageCode
	if lang == "" {
		lang = defaultLanguage
	}
	q := u.Query()
	q.Set("model", p.model)
	q.Set("language", lang)
	q.Set("punctuate", "true")
	if opts.SpeakerLabels {
		q.Set("diarize", "true")
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), f)
	if err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: %v", transcriber.ErrGeneric, err)
	}
	req.Header.Set("Authorization", "Token "+p.apiKey)
	req.Header.Set("Content-Type", contentType(path))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return transcriber.Result{}, fmt.Errorf("%w: %v", transcriber.ErrNetworkTimeout, err)
		}
		return transcriber.Result{}, fmt.Errorf("%w: %v", transcriber.ErrNetworkTimeout, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return transcriber.Result{}, fmt.Errorf("%w: status %d", transcriber.ErrAuth, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return transcriber.Result{}, fmt.Errorf("%w: status %d: %s", transcriber.ErrGeneric, resp.StatusCode, string(body))
	}

	var dg dgResponse
	if err := json.Unmarshal(body, &dg); err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: decode response: %v", transcriber.ErrGeneric, err)
	}
	if len(dg.Results.Channels) == 0 || len(dg.Results.Channels[0].Alternatives) == 0 {
		return transcriber.Result{}, fmt.Errorf("%w: empty transcription result", transcriber.ErrGeneric)
	}

	alt := dg.Results.Channels[0].Alternatives[0]
	words := make([]domain.Word, 0, len(alt.Words))
	for _, w := range alt.Words {
		speaker := ""
		if w.Speaker != nil {
			speaker = fmt.Sprintf("speaker_%d", *w.Speaker)
		}
		words = append(words, domain.Word{
			Text:    w.Word,
			StartMs: int64(w.Start * 1000),
			EndMs:   int64(w.End * 1000),
			Speaker: speaker,
		})
	}

	conf := alt.Confidence
	return transcriber.Result{
		Text:             strings.ToLower(alt.Transcript),
		Words:            words,
		Confidence:       &conf,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func contentType(path string) string {
	if ct, ok := contentTypeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "application/octet-stream"
}
