// Package vad implements the frame-wise voice-activity detector used to
// locate agent speech segments for the Releasing and Late-Hello detectors.
package vad

import (
	"fmt"
	"math"
	"sort"

	"github.com/MrWong99/callaudit/internal/config"
	"github.com/MrWong99/callaudit/internal/domain"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	frameMs = 50
	hopMs   = 25

	fallbackThresholdDBFS   = -40.0
	fallbackMinSilenceMs    = 200
	defaultMinSpeechDurMs   = 300
)

// frame holds the per-frame feature set computed by analyze.
type frame struct {
	startMs int64
	endMs   int64
	rms     float64
	zcr     float64
	centroid, bandwidth, rolloff float64
}

// Detect runs the spectral+energy VAD over mono PCM sampled at sampleRate.
// minSpeechDurationMs overrides cfg.MinSpeechDurationMs when non-zero (the
// Late-Hello caller passes a much shorter floor than the Releasing caller).
// On an internal failure it falls back to simple energy-thresholded
// detection, wrapping domain.ErrVADInternal without returning it to the
// caller — VAD failure is never fatal.
func Detect(samples []int16, sampleRate int, cfg config.VADConfig, minSpeechDurationMs int) ([]domain.SpeechSegment, error) {
	if minSpeechDurationMs <= 0 {
		minSpeechDurationMs = cfg.MinSpeechDurationMs
	}
	if minSpeechDurationMs <= 0 {
		minSpeechDurationMs = defaultMinSpeechDurMs
	}

	segments, err := detectAdvanced(samples, sampleRate, cfg, minSpeechDurationMs)
	if err != nil || len(segments) == 0 {
		return detectEnergyFallback(samples, sampleRate, minSpeechDurationMs), nil
	}
	return segments, nil
}

func detectAdvanced(samples []int16, sampleRate int, cfg config.VADConfig, minSpeechDurationMs int) (_ []domain.SpeechSegment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("vad: %w: %v", domain.ErrVADInternal, r)
		}
	}()

	frameLen := sampleRate * frameMs / 1000
	hopLen := sampleRate * hopMs / 1000
	if frameLen <= 0 || hopLen <= 0 || len(samples) < frameLen {
		return nil, fmt.Errorf("vad: %w: clip shorter than one analysis frame", domain.ErrVADInternal)
	}

	frames := analyzeFrames(samples, sampleRate, frameLen, hopLen)
	if len(frames) == 0 {
		return nil, nil
	}

	noiseFloor := percentile10(frames)
	effectiveThreshold := math.Max(noiseFloor+0.3*cfg.EnergyThreshold, 0.7*cfg.EnergyThreshold)

	speechFlags := make([]bool, len(frames))
	for i, f := range frames {
		speechFlags[i] = isSpeechFrame(f, effectiveThreshold)
	}

	return collapseSegments(frames, speechFlags, minSpeechDurationMs), nil
}

// analyzeFrames computes RMS, ZCR, and spectral features for each
// frameLen-sample window, hopping by hopLen samples.
func analyzeFrames(samples []int16, sampleRate, frameLen, hopLen int) []frame {
	fft := fourier.NewFFT(frameLen)
	var frames []frame

	for start := 0; start+frameLen <= len(samples); start += hopLen {
		window := samples[start : start+frameLen]

		rms := computeRMS(window)
		zcr := computeZCR(window)
		centroid, bandwidth, rolloff := computeSpectral(fft, window, sampleRate)

		frames = append(frames, frame{
			startMs:   int64(start) * 1000 / int64(sampleRate),
			endMs:     int64(start+frameLen) * 1000 / int64(sampleRate),
			rms:       rms,
			zcr:       zcr,
			centroid:  centroid,
			bandwidth: bandwidth,
			rolloff:   rolloff,
		})
	}
	return frames
}

func computeRMS(window []int16) float64 {
	var sumSq float64
	for _, s := range window {
		v := float64(s)
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(window)))
}

func computeZCR(window []int16) float64 {
	if len(window) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(window); i++ {
		if (window[i-1] >= 0) != (window[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(window)-1)
}

// computeSpectral returns the spectral centroid, bandwidth, and 85%-energy
// roll-off frequency (Hz) of window via an FFT magnitude spectrum.
func computeSpectral(fft *fourier.FFT, window []int16, sampleRate int) (centroid, bandwidth, rolloff float64) {
	seq := make([]float64, len(window))
	for i, s := range window {
		seq[i] = float64(s)
	}

	coeffs := fft.Coefficients(nil, seq)
	n := len(coeffs)
	mags := make([]float64, n)
	freqs := make([]float64, n)
	var totalEnergy float64
	for i, c := range coeffs {
		mag := math.Hypot(real(c), imag(c))
		mags[i] = mag
		freqs[i] = float64(i) * float64(sampleRate) / float64(len(window))
		totalEnergy += mag
	}
	if totalEnergy == 0 {
		return 0, 0, 0
	}

	var weightedFreq float64
	for i := range mags {
		weightedFreq += freqs[i] * mags[i]
	}
	centroid = weightedFreq / totalEnergy

	var variance float64
	for i := range mags {
		d := freqs[i] - centroid
		variance += mags[i] * d * d
	}
	bandwidth = math.Sqrt(variance / totalEnergy)

	cutoff := 0.85 * totalEnergy
	var running float64
	for i := range mags {
		running += mags[i]
		if running >= cutoff {
			rolloff = freqs[i]
			break
		}
	}
	return centroid, bandwidth, rolloff
}

// isSpeechFrame applies the §4.2 energy/ZCR/spectral criteria.
func isSpeechFrame(f frame, effectiveThreshold float64) bool {
	if f.rms <= effectiveThreshold {
		return false
	}
	if !(f.zcr > 0.01 && f.zcr < 0.3) {
		return false
	}

	spectralChecks := 0
	if f.centroid > 300 && f.centroid < 3500 {
		spectralChecks++
	}
	if f.bandwidth > 200 {
		spectralChecks++
	}
	if f.rolloff < 4000 {
		spectralChecks++
	}
	return spectralChecks >= 2
}

// percentile10 returns the 10th percentile of frame RMS values, used as the
// adaptive noise-floor estimate.
func percentile10(frames []frame) float64 {
	vals := make([]float64, len(frames))
	for i, f := range frames {
		vals[i] = f.rms
	}
	sort.Float64s(vals)
	idx := int(float64(len(vals)-1) * 0.10)
	return vals[idx]
}

// collapseSegments merges consecutive speech frames into segments, dropping
// any shorter than minSpeechDurationMs.
func collapseSegments(frames []frame, speech []bool, minSpeechDurationMs int) []domain.SpeechSegment {
	var segments []domain.SpeechSegment
	inSegment := false
	var segStart int64

	flush := func(end int64) {
		if inSegment && end-segStart >= int64(minSpeechDurationMs) {
			segments = append(segments, domain.SpeechSegment{StartMs: segStart, EndMs: end})
		}
		inSegment = false
	}

	for i, isSpeech := range speech {
		if isSpeech && !inSegment {
			inSegment = true
			segStart = frames[i].startMs
		} else if !isSpeech && inSegment {
			flush(frames[i].startMs)
		}
	}
	if inSegment {
		flush(frames[len(frames)-1].endMs)
	}
	return segments
}
