package domain

import "errors"

// Sentinel errors per §7 ERROR HANDLING DESIGN. Detectors and the decoder
// wrap these with errors.New/fmt.Errorf %w so callers can errors.Is against
// them without string matching.
var (
	ErrInputValidation = errors.New("domain: input validation error")
	ErrAudioTooShort    = errors.New("domain: audio shorter than minimum duration")
	ErrAudioTooQuiet    = errors.New("domain: audio peak amplitude below minimum")
	ErrAudioUniform     = errors.New("domain: audio sample stdev below minimum")
	ErrAudioLoad        = errors.New("domain: audio decode failed")
	ErrVADInternal      = errors.New("domain: VAD internal error, fell back to energy VAD")

	ErrTranscriptionTimeout = errors.New("domain: transcription timed out")
	ErrTranscriptionNetwork = errors.New("domain: transcription network error")
	ErrTranscriptionAuth    = errors.New("domain: transcription auth error")

	ErrClassifierUnavailable = errors.New("domain: classifier unavailable")

	ErrNotSupported = errors.New("domain: operation not supported by this provider")
)
