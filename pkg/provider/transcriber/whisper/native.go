// This file contains the NativeProvider implementation backed by the
// whisper.cpp CGO bindings. The whisper.cpp static library (libwhisper.a)
// and headers (whisper.h) must be available at link time via LIBRARY_PATH
// and C_INCLUDE_PATH environment variables.

package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrWong99/callaudit/pkg/provider/transcriber"
	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// Ensure NativeProvider implements transcriber.Provider.
var _ transcriber.Provider = (*NativeProvider)(nil)

// NativeProvider implements transcriber.Provider using whisper.cpp Go
// bindings (CGO), eliminating HTTP overhead entirely. The model is loaded
// once at startup and shared across all TranscribeFile calls; each call
// opens its own whisper.cpp context so concurrent transcriptions don't
// interfere with each other.
type NativeProvider struct {
	model    whisperlib.Model
	language string
}

// NativeOption is a functional option for configuring a NativeProvider.
type NativeOption func(*NativeProvider)

// WithNativeLanguage sets the BCP-47 language code for transcription
// (e.g., "en", "de", "fr"). Defaults to "en".
func WithNativeLanguage(lang string) NativeOption {
	return func(p *NativeProvider) { p.language = lang }
}

// NewNative creates a NativeProvider that loads the whisper.cpp model from
// the given file path. The model is loaded once and shared across all
// concurrent TranscribeFile calls. The caller must call Close when the
// provider is no longer needed.
func NewNative(modelPath string, opts ...NativeOption) (*NativeProvider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &NativeProvider{
		model:    model,
		language: defaultLanguage,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model. Must be called when the provider is no
// longer needed.
func (p *NativeProvider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// TranscribeFile reads the WAV file at path, converts it to mono float32
// samples, and runs a single whisper.cpp inference pass over the whole
// clip.
func (p *NativeProvider) TranscribeFile(ctx context.Context, path string, opts transcriber.Options) (transcriber.Result, error) {
	start := time.Now()

	wav, err := readWAV(path)
	if err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: %v", transcriber.ErrGeneric, err)
	}
	samples := pcmToFloat32Mono(wav.Data, wav.Channels)

	lang := opts.LanguageCode
	if lang == "" {
		lang = p.language
	}

	wctx, err := p.model.NewContext()
	if err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: create context: %v", transcriber.ErrGeneric, err)
	}
	if lang != "" {
		if err := wctx.SetLanguage(lang); err != nil {
			return transcriber.Result{}, fmt.Errorf("%w: set language %q: %v", transcriber.ErrGeneric, lang, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: %v", transcriber.ErrGeneric, err)
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return transcriber.Result{}, fmt.Errorf("%w: process audio: %v", transcriber.ErrGeneric, err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return transcriber.Result{}, fmt.Errorf("%w: read segment: %v", transcriber.ErrGeneric, err)
		}
		text := strings.TrimSpace(segment.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}

	return transcriber.Result{
		Text:             strings.ToLower(strings.Join(parts, " ")),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}
