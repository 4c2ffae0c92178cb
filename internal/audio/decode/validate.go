package decode

import (
	"fmt"
	"math"

	"github.com/MrWong99/callaudit/internal/domain"
)

// validate applies the §4.1 quality gates: duration bounds and the
// too-quiet/too-uniform amplitude checks. Duration is checked before
// amplitude since a clip too short to analyze shouldn't also report "too
// quiet".
func validate(clip domain.AudioClip) error {
	if clip.DurationMs < minDurationMs {
		return fmt.Errorf("decode: %w: %dms < %dms minimum", domain.ErrAudioTooShort, clip.DurationMs, minDurationMs)
	}
	if clip.DurationMs > maxDurationMs {
		return fmt.Errorf("decode: %w: %dms > %dms maximum", domain.ErrInputValidation, clip.DurationMs, maxDurationMs)
	}

	peak := peakAmplitude(clip.Samples)
	if peak < minPeakAmplitude {
		return fmt.Errorf("decode: %w: peak amplitude %d < %d minimum", domain.ErrAudioTooQuiet, peak, minPeakAmplitude)
	}

	sd := stdev(clip.Samples)
	if sd < minStdev {
		return fmt.Errorf("decode: %w: stdev %.1f < %.1f minimum", domain.ErrAudioUniform, sd, float64(minStdev))
	}
	return nil
}

func peakAmplitude(samples []int16) int16 {
	var peak int16
	for _, s := range samples {
		a := s
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	return peak
}

func stdev(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := sum / float64(len(samples))

	var sumSq float64
	for _, s := range samples {
		d := float64(s) - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}
