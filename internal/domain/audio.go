// Package domain holds the core value types shared across the audit
// pipeline: audio clips, speech segments, transcripts, phrase records, and
// the per-file and per-batch result shapes. Nothing in this package talks to
// the network or disk; it is pure data plus the small invariants the rest of
// the pipeline relies on.
package domain

import "fmt"

// AudioClip is immutable after decode: sampleRate is always 16000 once the
// decoder has normalized the source file, channelCount is 1 or 2, and
// samples holds signed 16-bit PCM, interleaved when stereo.
type AudioClip struct {
	SampleRate       int
	ChannelCount     int
	SampleWidthBytes int
	Samples          []int16
	DurationMs       int64
}

// Validate checks the AudioClip's length invariant:
// len(samples) == durationMs * sampleRate * channels / 1000.
func (c AudioClip) Validate() error {
	want := c.DurationMs * int64(c.SampleRate) * int64(c.ChannelCount) / 1000
	if int64(len(c.Samples)) != want {
		return fmt.Errorf("domain: audio clip invariant violated: len(samples)=%d, want %d", len(c.Samples), want)
	}
	return nil
}

// DurationSec returns the clip duration in seconds as a float64.
func (c AudioClip) DurationSec() float64 {
	return float64(c.DurationMs) / 1000.0
}

// SpeechSegment is a half-open time interval [StartMs, EndMs) produced by the
// VAD engine. A sequence of segments returned for one clip is monotonic and
// non-overlapping.
type SpeechSegment struct {
	StartMs int64
	EndMs   int64
}

// Validate reports whether the segment satisfies EndMs > StartMs and
// EndMs <= durationMs.
func (s SpeechSegment) Validate(durationMs int64) error {
	if s.EndMs <= s.StartMs {
		return fmt.Errorf("domain: segment endMs (%d) must exceed startMs (%d)", s.EndMs, s.StartMs)
	}
	if s.EndMs > durationMs {
		return fmt.Errorf("domain: segment endMs (%d) exceeds clip duration (%d)", s.EndMs, durationMs)
	}
	return nil
}
