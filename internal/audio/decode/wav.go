package decode

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavDecoder reads RIFF/WAVE PCM files via go-audio/wav, the library the
// wider example pack (tphakala/birdnet-go) uses for the same purpose.
type wavDecoder struct{}

func (wavDecoder) decodeFile(path string) ([]int16, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("wav: open: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("wav: not a valid WAVE file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("wav: decode PCM buffer: %w", err)
	}
	return asInt16Samples(buf), int(dec.SampleRate), int(dec.NumChans), nil
}

// asInt16Samples converts a go-audio IntBuffer (arbitrary bit depth, int
// samples) to interleaved int16, scaling by bit depth.
func asInt16Samples(buf *goaudio.IntBuffer) []int16 {
	bits := buf.SourceBitDepth
	if bits == 0 {
		bits = 16
	}

	out := make([]int16, len(buf.Data))
	switch {
	case bits > 16:
		shift := uint(bits - 16)
		for i, v := range buf.Data {
			out[i] = int16(v >> shift)
		}
	case bits < 16:
		shift := uint(16 - bits)
		for i, v := range buf.Data {
			out[i] = int16(v << shift)
		}
	default:
		for i, v := range buf.Data {
			out[i] = int16(v)
		}
	}
	return out
}
