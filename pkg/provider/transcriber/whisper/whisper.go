// Package whisper provides local whisper.cpp-backed Transcriber
// implementations for file-based batch transcription.
//
// Provider talks to a running whisper-server binary (REST API at
// POST /inference) and uploads the whole decoded agent-channel WAV file in
// one request. NativeProvider (native.go) instead links whisper.cpp directly
// via CGO bindings, avoiding the HTTP hop entirely.
//
// Usage:
//
//	p, err := whisper.New("http://localhost:8080", whisper.WithLanguage("en"))
//	res, err := p.TranscribeFile(ctx, "/tmp/call123-agent.wav", transcriber.Options{})
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MrWong99/callaudit/pkg/provider/transcriber"
)

const defaultLanguage = "en"

// Ensure Provider implements transcriber.Provider.
var _ transcriber.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel sets the model identifier forwarded to the whisper.cpp server
// (e.g., "base.en", "small"). When empty the server uses whichever model it
// was started with — this is the default.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the BCP-47 language code sent to the whisper.cpp server.
// Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithTimeout sets a per-request HTTP timeout. Whisper.cpp inference over a
// multi-minute call can take a while; the zero value disables the default.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// Provider implements transcriber.Provider backed by a local whisper.cpp HTTP
// server.
type Provider struct {
	serverURL  string
	model      string
	language   string
	httpClient *http.Client
}

// New creates a new Provider that connects to the whisper.cpp HTTP server at
// serverURL (e.g., "http://localhost:8080"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  serverURL,
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// TranscribeFile uploads the WAV file at path to the whisper.cpp server's
// /inference endpoint in a single multipart request.
func (p *Provider) TranscribeFile(ctx context.Context, path string, opts transcriber.Options) (transcriber.Result, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: open %s: %v", transcriber.ErrGeneric, path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: create form file: %v", transcriber.ErrGeneric, err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: copy audio: %v", transcriber.ErrGeneric, err)
	}

	lang := opts.LanguageCode
	if lang == "" {
		lang = p.language
	}
	if lang != "" {
		_ = mw.WriteField("language", lang)
	}
	if p.model != "" {
		_ = mw.WriteField("model", p.model)
	}
	if err := mw.Close(); err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: close multipart writer: %v", transcriber.ErrGeneric, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+"/inference", &body)
	if err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: build request: %v", transcriber.ErrGeneric, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: %v", transcriber.ErrNetworkTimeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return transcriber.Result{}, fmt.Errorf("%w: server returned HTTP %d", transcriber.ErrGeneric, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: read response body: %v", transcriber.ErrGeneric, err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: parse JSON response: %v", transcriber.ErrGeneric, err)
	}

	return transcriber.Result{
		Text:             strings.ToLower(strings.TrimSpace(result.Text)),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}
