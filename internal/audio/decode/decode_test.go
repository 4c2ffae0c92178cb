package decode

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/MrWong99/callaudit/internal/domain"
)

func writeSineWAV(t *testing.T, durationSec int, sampleRate int, freqHz, amplitude float64) string {
	t.Helper()

	n := durationSec * sampleRate
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(amplitude * math.Sin(2*math.Pi*freqHz*float64(i)/float64(sampleRate)))
	}

	path := filepath.Join(t.TempDir(), "sine.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:   make([]int, n),
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close fixture encoder: %v", err)
	}
	return path
}

func TestDecode_FullChainAcceptsAWellFormedClip(t *testing.T) {
	t.Parallel()

	path := writeSineWAV(t, 4, 16000, 440, 10000)
	clip, err := Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if clip.SampleRate != targetSampleRate {
		t.Errorf("SampleRate = %d, want %d", clip.SampleRate, targetSampleRate)
	}
	if clip.DurationMs < 3900 || clip.DurationMs > 4100 {
		t.Errorf("DurationMs = %d, want roughly 4000", clip.DurationMs)
	}
}

func TestDecode_ResamplesANonNativeSampleRate(t *testing.T) {
	t.Parallel()

	path := writeSineWAV(t, 4, 8000, 440, 10000)
	clip, err := Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if clip.SampleRate != targetSampleRate {
		t.Fatalf("SampleRate = %d, want %d after resampling", clip.SampleRate, targetSampleRate)
	}
}

func TestDecode_TooShortClipIsRejected(t *testing.T) {
	t.Parallel()

	path := writeSineWAV(t, 1, 16000, 440, 10000)
	_, err := Decode(context.Background(), path)
	if !errors.Is(err, domain.ErrAudioTooShort) {
		t.Fatalf("want ErrAudioTooShort, got %v", err)
	}
}

func TestDecode_SilentClipIsRejectedAsTooQuiet(t *testing.T) {
	t.Parallel()

	path := writeSineWAV(t, 4, 16000, 440, 0)
	_, err := Decode(context.Background(), path)
	if !errors.Is(err, domain.ErrAudioTooQuiet) {
		t.Fatalf("want ErrAudioTooQuiet, got %v", err)
	}
}

func TestDecode_UnsupportedExtensionReportsInputValidation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "call.ogg")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Decode(context.Background(), path)
	if !errors.Is(err, domain.ErrInputValidation) {
		t.Fatalf("want ErrInputValidation for an unsupported extension, got %v", err)
	}
}

func TestDecode_MissingFileReportsAudioLoadFailure(t *testing.T) {
	t.Parallel()

	_, err := Decode(context.Background(), "/nonexistent/call.wav")
	if !errors.Is(err, domain.ErrAudioLoad) {
		t.Fatalf("want ErrAudioLoad for a missing file, got %v", err)
	}
}

func TestDecode_CancelledContextIsRejectedUpFront(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Decode(ctx, "/nonexistent/call.wav")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled surfaced before any decode work, got %v", err)
	}
}
