package resilience

import (
	"context"

	"github.com/MrWong99/callaudit/pkg/provider/transcriber"
)

// TranscriberFallback implements [transcriber.Provider] with automatic
// failover across multiple transcription backends. Each backend has its own
// circuit breaker.
type TranscriberFallback struct {
	group *FallbackGroup[transcriber.Provider]
}

// Compile-time interface assertion.
var _ transcriber.Provider = (*TranscriberFallback)(nil)

// NewTranscriberFallback creates a [TranscriberFallback] with primary as the
// preferred backend.
func NewTranscriberFallback(primary transcriber.Provider, primaryName string, cfg FallbackConfig) *TranscriberFallback {
	return &TranscriberFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional transcriber provider as a fallback.
func (f *TranscriberFallback) AddFallback(name string, provider transcriber.Provider) {
	f.group.AddFallback(name, provider)
}

// TranscribeFile transcribes path against the first healthy provider. If the
// primary fails, subsequent fallbacks are tried.
func (f *TranscriberFallback) TranscribeFile(ctx context.Context, path string, opts transcriber.Options) (transcriber.Result, error) {
	return ExecuteWithResult(f.group, func(p transcriber.Provider) (transcriber.Result, error) {
		return p.TranscribeFile(ctx, path, opts)
	})
}
