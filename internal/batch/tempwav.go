package batch

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTempWAV writes mono 16-bit PCM samples at sampleRate to a temp .wav
// file and returns its path. The caller must remove the file when done; the
// BatchEngine does so in a defer immediately after transcription, matching
// §5's "temporary audio files ... removed in a finally/defer block
// regardless of outcome".
func writeTempWAV(samples []int16, sampleRate int) (path string, err error) {
	f, err := os.CreateTemp("", "callaudit-agent-*.wav")
	if err != nil {
		return "", fmt.Errorf("batch: create temp wav: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:   make([]int, len(samples)),
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	if err := enc.Write(buf); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("batch: encode temp wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("batch: close temp wav encoder: %w", err)
	}

	return f.Name(), nil
}
