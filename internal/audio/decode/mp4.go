package decode

import (
	"fmt"
	"os"

	"github.com/abema/go-mp4"
	"github.com/MrWong99/callaudit/internal/domain"
)

// mp4Decoder handles both .m4a and .mp4 containers. Telephony recording
// exports commonly wrap linear PCM ('sowt'/'twos'/'lpcm') in an MP4/M4A
// container rather than compressed AAC; this decoder demuxes the audio
// track's sample description via abema/go-mp4 and reads the PCM payload
// directly. A genuinely AAC-encoded ('mp4a') track is reported as
// domain.ErrNotSupported — this pack carries no pure-Go AAC decoder, so
// those files need a transcode step upstream of this engine.
type mp4Decoder struct{}

// pcmFourCCs are the sample-entry codes this decoder can read as raw PCM.
var pcmFourCCs = map[string]bool{
	"sowt": true, // signed, little-endian (QuickTime PCM)
	"twos": true, // signed, big-endian
	"lpcm": true,
	"NONE": true,
}

func (mp4Decoder) decodeFile(path string) ([]int16, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("mp4: open: %w", err)
	}
	defer f.Close()

	var (
		codec      string
		channels   int
		sampleRate int
		sampleSize int
		mdat       []byte
	)

	_, err = mp4.ReadBoxStructure(f, func(h *mp4.BoxInfo) (interface{}, error) {
		switch h.Type.String() {
		case "mdat":
			buf := make([]byte, h.Size-h.HeaderSize)
			if _, err := h.ReadData(buf); err != nil {
				return nil, fmt.Errorf("mp4: read mdat: %w", err)
			}
			mdat = buf
			return nil, nil
		case "stsd", "mp4a", "alac", "sowt", "twos", "lpcm", "NONE":
			box, _, err := h.Expand()
			if err != nil {
				return nil, err
			}
			for _, child := range box {
				entry, ok := child.(*mp4.AudioSampleEntry)
				if !ok {
					continue
				}
				codec = h.Type.String()
				channels = int(entry.ChannelCount)
				sampleRate = int(entry.SampleRate >> 16)
				sampleSize = int(entry.SampleSize)
			}
			return h.Expand()
		default:
			return h.Expand()
		}
	})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("mp4: parse boxes: %w", err)
	}

	if channels == 0 || sampleRate == 0 {
		return nil, 0, 0, fmt.Errorf("mp4: %w: no audio sample entry found", domain.ErrAudioLoad)
	}
	if !pcmFourCCs[codec] {
		return nil, 0, 0, fmt.Errorf("mp4: codec %q: %w", codec, domain.ErrNotSupported)
	}
	if sampleSize == 0 {
		sampleSize = 16
	}
	if len(mdat) == 0 {
		return nil, 0, 0, fmt.Errorf("mp4: %w: empty media data", domain.ErrAudioLoad)
	}

	samples := bytesToInt16(mdat)
	return samples, sampleRate, channels, nil
}
