// Package transcriber defines the Provider interface for speech-to-text
// backends used by the rebuttal matcher.
//
// A Transcriber is an opaque external collaborator: the core depends only on
// TranscribeFile. It wraps a file-based transcription service — a cloud
// vendor such as Deepgram, or a local whisper.cpp binding — and maps one
// decoded agent-channel audio file on disk to a single authoritative
// Transcript. There is no streaming/partial path; batch audit processing
// transcribes whole files, not live audio.
//
// Implementations must be safe for concurrent use.
package transcriber

import (
	"context"
	"errors"

	"github.com/MrWong99/callaudit/internal/domain"
)

// Options configures a single TranscribeFile call.
type Options struct {
	// SpeakerLabels requests per-word speaker diarization when the provider
	// supports it. Ignored by providers that cannot diarize.
	SpeakerLabels bool

	// LanguageCode is the BCP-47 language tag for recognition. Empty means
	// the provider default, which per spec is "en".
	LanguageCode string
}

// Result is the outcome of one TranscribeFile call.
type Result struct {
	Text             string
	Words            []domain.Word
	Confidence       *float64
	ProcessingTimeMs int64
}

// Error classes a TranscribeFile failure must be mapped to, per §7. Callers
// use errors.Is against these sentinels rather than string matching.
var (
	ErrNetworkTimeout = errors.New("transcriber: network timeout")
	ErrAuth           = errors.New("transcriber: authentication error")
	ErrGeneric        = errors.New("transcriber: generic provider error")
)

// Provider is the abstraction over any file-based STT backend.
//
// Implementations must be safe for concurrent use — the BatchEngine invokes
// TranscribeFile from many goroutines simultaneously, one per in-flight
// file.
type Provider interface {
	// TranscribeFile transcribes the agent-channel audio at path. path must
	// point to a readable, already-decoded PCM or container file on local
	// disk; the provider is responsible for any upload/format conversion it
	// requires internally.
	//
	// Returns an error wrapping one of ErrNetworkTimeout, ErrAuth, or
	// ErrGeneric so the caller can apply the timeout-vs-failure distinction
	// from §7 (a network timeout degrades rebuttal to No rather than
	// failing the whole file).
	TranscribeFile(ctx context.Context, path string, opts Options) (Result, error)
}
