package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MrWong99/callaudit/internal/audio/decode"
	"github.com/MrWong99/callaudit/internal/audio/detect"
	"github.com/MrWong99/callaudit/internal/audio/vad"
	"github.com/MrWong99/callaudit/internal/config"
	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/internal/intro"
	"github.com/MrWong99/callaudit/internal/rebuttal"
	"github.com/MrWong99/callaudit/internal/transcript"
	"github.com/MrWong99/callaudit/pkg/provider/transcriber"
)

// fileDeps bundles everything processFile needs that is shared across every
// file in a run, so the worker pool (engine.go) can pass one value per task
// without threading a dozen parameters through.
type fileDeps struct {
	vadConfig        config.VADConfig
	lateHelloSec     float64
	accentCorrection bool

	matcher *rebuttal.Matcher
	trans   transcriber.Provider

	liteMode bool
}

// processFile runs the full §4.9 per-file pipeline for one audio file:
// decode/validate, then the VAD passes and the Releasing/Late-Hello
// detectors, then transcription plus rebuttal matching on a separate
// goroutine, then intro scoring. The goroutine is started only after the
// detectors have finished, so transcription does not overlap the VAD work.
// When Releasing is Yes the rebuttal run is cancelled and its result is
// discarded (Rebuttal No, empty transcript). It never returns an error — a
// failing file becomes an Error FileResult so one bad file never fails its
// batch.
func processFile(ctx context.Context, path string, deps fileDeps) domain.FileResult {
	start := time.Now()
	meta := ParseFilename(path)

	result := domain.FileResult{CallMetadata: meta}

	clip, err := decode.Decode(ctx, path)
	if err != nil {
		return errorResult(meta, start, err)
	}

	agentSamples, _ := decode.SplitChannels(clip)

	segments, _ := vad.Detect(agentSamples, clip.SampleRate, deps.vadConfig, 0)
	lateHelloSegments, _ := vad.Detect(agentSamples, clip.SampleRate, deps.vadConfig, detect.LateHelloMinSpeechDurationMs)
	releasing := detect.Releasing(segments, clip.DurationMs, deps.lateHelloSec)
	lateHello := detect.LateHello(lateHelloSegments, deps.lateHelloSec)

	result.Releasing = releasing
	result.LateHello = lateHello

	if deps.liteMode {
		result.Rebuttal = domain.VerdictNA
		result.IntroScores = intro.Score("", meta.AgentName, releasing, lateHello, domain.VerdictNA)
		result.IntroScorePct = result.IntroScores.Percent()
		result.Status = domain.StatusForScore(result.IntroScorePct)
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		return result
	}

	rebuttalCtx, cancelRebuttal := context.WithCancel(ctx)
	defer cancelRebuttal()

	type rebuttalOutcome struct {
		verdict    domain.Verdict
		confidence *float64
		transcript string
		err        error
	}

	rebuttalCh := make(chan rebuttalOutcome, 1)
	go func() {
		v, conf, text, err := runRebuttal(rebuttalCtx, agentSamples, clip.SampleRate, deps)
		rebuttalCh <- rebuttalOutcome{verdict: v, confidence: conf, transcript: text, err: err}
	}()

	if releasing == domain.VerdictYes {
		cancelRebuttal()
	}

	outcome := <-rebuttalCh
	switch {
	case releasing == domain.VerdictYes:
		result.Rebuttal = domain.VerdictNo
	case outcome.err != nil && errors.Is(outcome.err, transcriber.ErrNetworkTimeout):
		result.Rebuttal = domain.VerdictNo
		result.Error = "timeout"
	case outcome.err != nil:
		result.Rebuttal = domain.VerdictNo
	default:
		result.Rebuttal = outcome.verdict
		result.RebuttalConfidence = outcome.confidence
		result.Transcript = outcome.transcript
	}

	result.IntroScores = intro.Score(result.Transcript, meta.AgentName, releasing, lateHello, result.Rebuttal)
	result.IntroScorePct = result.IntroScores.Percent()
	result.Status = domain.StatusForScore(result.IntroScorePct)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result
}

// runRebuttal transcribes the agent channel and runs the three-tier
// rebuttal matcher over the result. processFile runs it on its own goroutine
// after the local detectors have finished, cancels it when Releasing is
// Yes, and in that case discards whatever it returns.
func runRebuttal(ctx context.Context, agentSamples []int16, sampleRate int, deps fileDeps) (domain.Verdict, *float64, string, error) {
	path, err := writeTempWAV(agentSamples, sampleRate)
	if err != nil {
		return domain.VerdictNo, nil, "", err
	}
	defer os.Remove(path)

	res, err := deps.trans.TranscribeFile(ctx, path, transcriber.Options{LanguageCode: "en"})
	if err != nil {
		return domain.VerdictNo, nil, "", err
	}

	text := res.Text
	if deps.accentCorrection {
		text = transcript.NormalizeStatic(text)
	}

	verdict, confidence, _ := deps.matcher.Match(ctx, text)
	return verdict, confidence, text, nil
}

func errorResult(meta domain.CallMetadata, start time.Time, err error) domain.FileResult {
	return domain.FileResult{
		CallMetadata:     meta,
		Releasing:        domain.VerdictError,
		LateHello:        domain.VerdictError,
		Rebuttal:         domain.VerdictError,
		Status:           domain.StatusError,
		Error:            err.Error(),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
}

// withTimeout wraps processFile with a per-file wall-clock deadline,
// translating an exceeded deadline into an Error FileResult rather than
// letting the caller block forever.
func withTimeout(ctx context.Context, path string, deps fileDeps, timeout time.Duration) domain.FileResult {
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan domain.FileResult, 1)
	start := time.Now()
	go func() {
		done <- processFile(fctx, path, deps)
	}()

	select {
	case r := <-done:
		return r
	case <-fctx.Done():
		meta := ParseFilename(path)
		return domain.FileResult{
			CallMetadata:     meta,
			Releasing:        domain.VerdictError,
			LateHello:        domain.VerdictError,
			Rebuttal:         domain.VerdictError,
			Status:           domain.StatusError,
			Error:            fmt.Sprintf("processing timeout after %ds", int(timeout.Seconds())),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}
	}
}
