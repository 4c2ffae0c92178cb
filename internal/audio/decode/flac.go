package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/tphakala/flac"
)

// flacDecoder decodes FLAC files via tphakala/flac, the decoder already
// vendored by the wider example pack's birdnet-go project for the same
// telephony/field-recording use case.
type flacDecoder struct{}

func (flacDecoder) decodeFile(path string) ([]int16, int, int, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("flac: open: %w", err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	bits := int(stream.Info.BitsPerSample)
	shift := uint(0)
	if bits > 16 {
		shift = uint(bits - 16)
	}

	var out []int16
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, 0, fmt.Errorf("flac: parse frame: %w", err)
		}

		nSamples := len(frame.Subframes[0].Samples)
		base := len(out)
		out = append(out, make([]int16, nSamples*channels)...)
		for ch := 0; ch < channels; ch++ {
			sub := frame.Subframes[ch].Samples
			for i, s := range sub {
				v := s
				if shift > 0 {
					v >>= shift
				}
				out[base+i*channels+ch] = int16(v)
			}
		}
	}

	return out, int(stream.Info.SampleRate), channels, nil
}
