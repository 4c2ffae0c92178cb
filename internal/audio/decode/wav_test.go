package decode

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeMonoWAVFixture(t *testing.T, samples []int16, sampleRate int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
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
		t.Fatalf("write fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close fixture encoder: %v", err)
	}
	return path
}

func TestWavDecoder_DecodesMonoPCMAtItsNativeRate(t *testing.T) {
	t.Parallel()

	samples := []int16{100, -100, 200, -200, 32000, -32000}
	path := writeMonoWAVFixture(t, samples, 8000)

	got, sampleRate, channels, err := wavDecoder{}.decodeFile(path)
	if err != nil {
		t.Fatalf("decodeFile: %v", err)
	}
	if sampleRate != 8000 {
		t.Errorf("sampleRate = %d, want 8000", sampleRate)
	}
	if channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}
	if len(got) != len(samples) {
		t.Fatalf("want %d samples, got %d", len(samples), len(got))
	}
	for i, want := range samples {
		if got[i] != want {
			t.Errorf("sample %d = %d, want %d", i, got[i], want)
		}
	}
}

func TestWavDecoder_RejectsANonWAVFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "not-a-wav.wav")
	if err := os.WriteFile(path, []byte("definitely not RIFF"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, _, _, err := (wavDecoder{}).decodeFile(path); err == nil {
		t.Fatal("want an error for a non-WAVE file")
	}
}
