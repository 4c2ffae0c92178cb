package decode

import (
	"errors"
	"testing"

	"github.com/MrWong99/callaudit/internal/domain"
)

func loudClip(durationMs int64) domain.AudioClip {
	samples := make([]int16, durationMs*targetSampleRate/1000)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 20000
		} else {
			samples[i] = -20000
		}
	}
	return domain.AudioClip{DurationMs: durationMs, Samples: samples}
}

func TestValidate_AcceptsAClipWithinAllBounds(t *testing.T) {
	t.Parallel()

	if err := validate(loudClip(5000)); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate_TooShortIsRejected(t *testing.T) {
	t.Parallel()

	err := validate(loudClip(1000))
	if !errors.Is(err, domain.ErrAudioTooShort) {
		t.Fatalf("want ErrAudioTooShort, got %v", err)
	}
}

func TestValidate_TooLongIsRejected(t *testing.T) {
	t.Parallel()

	err := validate(loudClip(400000))
	if !errors.Is(err, domain.ErrInputValidation) {
		t.Fatalf("want ErrInputValidation, got %v", err)
	}
}

func TestValidate_TooQuietIsRejected(t *testing.T) {
	t.Parallel()

	clip := domain.AudioClip{DurationMs: 5000, Samples: make([]int16, 5*targetSampleRate)}
	err := validate(clip)
	if !errors.Is(err, domain.ErrAudioTooQuiet) {
		t.Fatalf("want ErrAudioTooQuiet, got %v", err)
	}
}

func TestValidate_UniformLoudSignalIsRejectedForLowStdev(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 5*targetSampleRate)
	for i := range samples {
		samples[i] = 20000 // loud but perfectly constant: stdev 0
	}
	err := validate(domain.AudioClip{DurationMs: 5000, Samples: samples})
	if !errors.Is(err, domain.ErrAudioUniform) {
		t.Fatalf("want ErrAudioUniform, got %v", err)
	}
}

func TestPeakAmplitude_FindsTheLargestMagnitude(t *testing.T) {
	t.Parallel()

	if got := peakAmplitude([]int16{10, -9000, 500}); got != 9000 {
		t.Errorf("peakAmplitude() = %d, want 9000", got)
	}
}

func TestStdev_ConstantSignalIsZero(t *testing.T) {
	t.Parallel()

	s := make([]int16, 100)
	for i := range s {
		s[i] = 1234
	}
	if got := stdev(s); got != 0 {
		t.Errorf("stdev(constant) = %v, want 0", got)
	}
}

func TestStdev_EmptyInputIsZero(t *testing.T) {
	t.Parallel()

	if got := stdev(nil); got != 0 {
		t.Errorf("stdev(nil) = %v, want 0", got)
	}
}
