// Package detect implements the Releasing and Late-Hello detectors: simple
// rules evaluated over the VAD's agent-channel speech segments.
package detect

import "github.com/MrWong99/callaudit/internal/domain"

// lateHelloMinSpeechMs is the tighter segment-length floor the Late-Hello
// detector uses so a brief early utterance still counts as "not late".
const lateHelloMinSpeechMs = 50

// LateHelloMinSpeechDurationMs is exported so callers building the VAD
// segment list for the Late-Hello pass know which floor to request.
const LateHelloMinSpeechDurationMs = lateHelloMinSpeechMs

// Releasing reports domain.VerdictYes iff the agent channel has zero speech
// segments over the whole clip and the clip is at least thresholdSec long;
// a clip shorter than the threshold can never be "releasing" since there
// wasn't enough call for the agent to plausibly speak.
func Releasing(segments []domain.SpeechSegment, durationMs int64, thresholdSec float64) domain.Verdict {
	durationSec := float64(durationMs) / 1000
	if len(segments) == 0 && durationSec >= thresholdSec {
		return domain.VerdictYes
	}
	return domain.VerdictNo
}

// LateHello reports domain.VerdictYes iff the agent's earliest speech
// segment starts strictly after thresholdSec. A clip with no speech at all
// returns No — that case belongs to Releasing, not Late-Hello.
func LateHello(segments []domain.SpeechSegment, thresholdSec float64) domain.Verdict {
	if len(segments) == 0 {
		return domain.VerdictNo
	}
	earliest := segments[0].StartMs
	for _, s := range segments[1:] {
		if s.StartMs < earliest {
			earliest = s.StartMs
		}
	}
	thresholdMs := int64(thresholdSec * 1000)
	if earliest > thresholdMs {
		return domain.VerdictYes
	}
	return domain.VerdictNo
}
