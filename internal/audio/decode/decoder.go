// Package decode turns a call recording on disk into a normalized
// domain.AudioClip: one decoder per container format, dispatched by file
// extension, followed by a shared resample/normalize/validate chain.
package decode

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/pkg/audio"
)

const (
	targetSampleRate = 16000
	minDurationMs    = 3000
	maxDurationMs    = 300000
	minFileBytes     = 1024

	minPeakAmplitude = 500
	minStdev         = 100
)

// decoder is implemented once per supported container format. It returns raw
// PCM at whatever sample rate and channel count the container stores; the
// shared Decode entry point resamples to 16kHz afterwards.
type decoder interface {
	decodeFile(path string) (samples []int16, sampleRate, channels int, err error)
}

// Decode reads the audio file at path, decodes it with the codec selected by
// its extension, resamples to 16kHz, applies the §4.1 normalization chain,
// and validates the result. path must be one of .mp3, .wav, .m4a, .mp4, .flac.
func Decode(ctx context.Context, path string) (domain.AudioClip, error) {
	select {
	case <-ctx.Done():
		return domain.AudioClip{}, ctx.Err()
	default:
	}

	d, err := forExt(filepath.Ext(path))
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("decode: %w: %w", domain.ErrInputValidation, err)
	}

	samples, sampleRate, channels, err := d.decodeFile(path)
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("decode: %w: %w", domain.ErrAudioLoad, err)
	}
	if channels != 1 && channels != 2 {
		return domain.AudioClip{}, fmt.Errorf("decode: %w: unsupported channel count %d", domain.ErrAudioLoad, channels)
	}

	samples = resampleAndNormalize(samples, sampleRate, channels)

	durationMs := int64(len(samples)) * 1000 / int64(targetSampleRate*channels)
	clip := domain.AudioClip{
		SampleRate:       targetSampleRate,
		ChannelCount:     channels,
		SampleWidthBytes: 2,
		Samples:          samples,
		DurationMs:       durationMs,
	}

	if err := validate(clip); err != nil {
		return domain.AudioClip{}, err
	}
	return clip, nil
}

// forExt dispatches on the lowercased file extension (including the leading dot).
func forExt(ext string) (decoder, error) {
	switch strings.ToLower(ext) {
	case ".wav":
		return wavDecoder{}, nil
	case ".mp3":
		return mp3Decoder{}, nil
	case ".flac":
		return flacDecoder{}, nil
	case ".m4a", ".mp4":
		return mp4Decoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}
}

// resampleAndNormalize resamples PCM to targetSampleRate (keeping the
// original channel layout, since channel splitting happens downstream) by
// round-tripping through pkg/audio's byte-oriented resamplers, then applies
// the §4.1 normalization chain (peak normalize, DRC, high-pass).
func resampleAndNormalize(samples []int16, sampleRate, channels int) []int16 {
	pcm := int16ToBytes(samples)
	if sampleRate != targetSampleRate {
		if channels == 1 {
			pcm = audio.ResampleMono16(pcm, sampleRate, targetSampleRate)
		} else {
			pcm = audio.ResampleStereo16(pcm, sampleRate, targetSampleRate)
		}
	}
	out := bytesToInt16(pcm)
	out = peakNormalize(out)
	out = compress(out, channels)
	out = highPass(out, targetSampleRate, channels, 80)
	return out
}

func int16ToBytes(s []int16) []byte {
	b := make([]byte, len(s)*2)
	for i, v := range s {
		b[2*i] = byte(v)
		b[2*i+1] = byte(uint16(v) >> 8)
	}
	return b
}

func bytesToInt16(b []byte) []int16 {
	n := len(b) / 2
	s := make([]int16, n)
	for i := 0; i < n; i++ {
		s[i] = int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
	}
	return s
}

// peakNormalize scales samples so the maximum absolute amplitude reaches
// int16 full scale, leaving silence untouched.
func peakNormalize(samples []int16) []int16 {
	var peak int32
	for _, s := range samples {
		a := int32(s)
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	if peak == 0 || peak == math.MaxInt16 {
		return samples
	}
	gain := float64(math.MaxInt16) / float64(peak)
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = clampInt16(float64(s) * gain)
	}
	return out
}

func clampInt16(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
