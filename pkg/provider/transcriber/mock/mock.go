// Package mock provides a test double for the transcriber.Provider
// interface.
//
// Example:
//
//	p := &mock.Provider{
//	    Result: transcriber.Result{Text: "hi there, this is jane with acme"},
//	}
//	res, _ := p.TranscribeFile(ctx, "/tmp/agent.wav", transcriber.Options{})
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/callaudit/pkg/provider/transcriber"
)

// TranscribeFileCall records a single invocation of TranscribeFile.
type TranscribeFileCall struct {
	Ctx  context.Context
	Path string
	Opts transcriber.Options
}

// Provider is a mock implementation of transcriber.Provider.
type Provider struct {
	mu sync.Mutex

	// Result is returned by every call to TranscribeFile.
	Result transcriber.Result

	// Err, if non-nil, is returned as the error from TranscribeFile.
	Err error

	// Calls records every call to TranscribeFile in order.
	Calls []TranscribeFileCall
}

// Ensure Provider implements transcriber.Provider at compile time.
var _ transcriber.Provider = (*Provider)(nil)

// TranscribeFile records the call and returns Result, Err.
func (p *Provider) TranscribeFile(ctx context.Context, path string, opts transcriber.Options) (transcriber.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, TranscribeFileCall{Ctx: ctx, Path: path, Opts: opts})
	if p.Err != nil {
		return transcriber.Result{}, p.Err
	}
	return p.Result, nil
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
}
