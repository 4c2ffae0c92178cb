package vad

import (
	"math"

	"github.com/MrWong99/callaudit/internal/domain"
)

// detectEnergyFallback is the simple energy-thresholded VAD used when the
// spectral path fails or finds nothing: a sample is "silence" below
// fallbackThresholdDBFS, and runs of silence shorter than
// fallbackMinSilenceMs are bridged over rather than splitting a segment.
func detectEnergyFallback(samples []int16, sampleRate int, minSpeechDurationMs int) []domain.SpeechSegment {
	threshold := dbfsToAmplitude(fallbackThresholdDBFS)
	minSilenceSamples := sampleRate * fallbackMinSilenceMs / 1000

	var segments []domain.SpeechSegment
	inSpeech := false
	var segStartSample, silenceRun int

	msOf := func(sampleIdx int) int64 {
		return int64(sampleIdx) * 1000 / int64(sampleRate)
	}

	for i, s := range samples {
		loud := math.Abs(float64(s)) > threshold
		switch {
		case loud && !inSpeech:
			inSpeech = true
			segStartSample = i
			silenceRun = 0
		case loud && inSpeech:
			silenceRun = 0
		case !loud && inSpeech:
			silenceRun++
			if silenceRun >= minSilenceSamples {
				endSample := i - silenceRun + 1
				appendIfLongEnough(&segments, msOf(segStartSample), msOf(endSample), minSpeechDurationMs)
				inSpeech = false
				silenceRun = 0
			}
		}
	}
	if inSpeech {
		appendIfLongEnough(&segments, msOf(segStartSample), msOf(len(samples)), minSpeechDurationMs)
	}
	return segments
}

func appendIfLongEnough(segments *[]domain.SpeechSegment, startMs, endMs int64, minDurationMs int) {
	if endMs-startMs >= int64(minDurationMs) {
		*segments = append(*segments, domain.SpeechSegment{StartMs: startMs, EndMs: endMs})
	}
}

// dbfsToAmplitude converts a dBFS level to an int16-scale amplitude threshold.
func dbfsToAmplitude(dbfs float64) float64 {
	return math.MaxInt16 * math.Pow(10, dbfs/20)
}
