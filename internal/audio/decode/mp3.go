package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// mp3Decoder decodes MPEG-1/2 Layer III audio via go-mp3, a pure-Go decoder
// with no cgo dependency. go-mp3 always produces 16-bit stereo PCM
// internally; mono source files are upmixed by the encoder's own decode
// path, which is harmless here since SplitChannels collapses stereo back
// down for the agent channel when the source was genuinely mono.
type mp3Decoder struct{}

func (mp3Decoder) decodeFile(path string) ([]int16, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("mp3: open: %w", err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("mp3: new decoder: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("mp3: read frames: %w", err)
	}
	return bytesToInt16(raw), dec.SampleRate(), 2, nil
}
