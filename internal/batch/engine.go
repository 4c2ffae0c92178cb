// Package batch implements the BatchEngine (§4.9): the per-user, per-folder
// orchestrator that ties filename parsing, audio decode, the VAD-based
// detectors, the rebuttal matcher, and intro scoring into one FileResult per
// input file, with an adaptive, bounded-concurrency worker pool.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/MrWong99/callaudit/internal/config"
	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/internal/rebuttal"
	"github.com/MrWong99/callaudit/internal/result"
	"github.com/MrWong99/callaudit/internal/sizer"
	"github.com/MrWong99/callaudit/pkg/provider/transcriber"
	"github.com/MrWong99/callaudit/pkg/store"
)

// AccountTier selects the default worker-pool cap when no explicit override
// is given.
type AccountTier string

const (
	TierFree AccountTier = "free"
	TierPaid AccountTier = "paid"
)

const (
	freeTierWorkers = 5
	paidTierWorkers = 20
	liteModeWorkers = 16

	defaultPerFileTimeoutSec = 600
	liteModeTimeoutSec       = 30
)

var supportedExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".mp4": true, ".flac": true,
}

// Preloader is the subset of preload.Preloader the engine needs.
type Preloader interface {
	Warm(ctx context.Context) error
}

// Options configures one ProcessFolder run.
type Options struct {
	// AccountTier selects the default worker cap (free=5, paid=20) when
	// MaxWorkersOverride is zero.
	AccountTier AccountTier

	// MaxWorkersOverride, when positive, takes precedence over AccountTier.
	MaxWorkersOverride int

	// LiteMode runs only Releasing + Late-Hello (no transcription, no
	// rebuttal matching), with a tighter per-file timeout and a higher
	// worker cap.
	LiteMode bool

	// ShowAllResults includes AllResults in addition to FlaggedOnly in the
	// returned TabularResult; both are always computed; this only affects
	// what a caller is expected to surface.
	ShowAllResults bool

	// ProgressCallback is invoked after every batch with
	// (completedGlobal, total).
	ProgressCallback func(completed, total int)

	// Stop, when non-nil, is polled between batches; setting it mid-run
	// halts further submissions once in-flight files complete.
	Stop *atomic.Bool
}

// Engine runs ProcessFolder for one user at a time; it holds no per-run
// mutable state itself (BatchState is constructed fresh per call), so one
// Engine may serve concurrent users.
type Engine struct {
	cfg       config.Config
	matcher   *rebuttal.Matcher
	trans     transcriber.Provider
	preloader Preloader
	st        store.Store
	logger    *slog.Logger
}

// New constructs an Engine. trans must be non-nil unless every call uses
// LiteMode.
func New(cfg config.Config, matcher *rebuttal.Matcher, trans transcriber.Provider, preloader Preloader, st store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, matcher: matcher, trans: trans, preloader: preloader, st: st, logger: logger}
}

// ProcessFolder processes every supported audio file directly under
// folderPath for userID and returns the aggregated TabularResult. This is
// the engine's sole public entry point, matching the §6 conceptual
// signature ProcessFolder(folderPath, userId, opts) -> TabularResult.
func (e *Engine) ProcessFolder(ctx context.Context, folderPath, userID string, opts Options) (result.TabularResult, error) {
	if e.preloader != nil {
		if err := e.preloader.Warm(ctx); err != nil {
			e.logger.Warn("batch: preload warm-up failed, continuing without it", "error", err)
		}
	}

	files, err := listAudioFiles(folderPath)
	if err != nil {
		return result.TabularResult{}, fmt.Errorf("batch: list audio files: %w", err)
	}

	liteMode := opts.LiteMode || e.cfg.Batch.LiteMode
	maxWorkers := resolveMaxWorkers(opts, e.cfg.Batch.MaxWorkers, liteMode)
	timeout := resolveTimeout(e.cfg.Batch.PerFileTimeoutSec, liteMode)

	settings, err := e.loadSettings(ctx, userID, maxWorkers, timeout, liteMode)
	if err != nil {
		e.logger.Warn("batch: load user settings failed, using defaults", "error", err)
	}

	state := &domain.BatchState{UserID: userID, Settings: settings, Total: len(files)}

	deps := fileDeps{
		vadConfig:        e.cfg.VAD,
		lateHelloSec:     e.cfg.LateHello.ThresholdSec,
		accentCorrection: e.cfg.AccentCorrection.Enabled,
		matcher:          e.matcher,
		trans:            e.trans,
		liteMode:         liteMode,
	}

	sz := sizer.New()
	sem := semaphore.NewWeighted(int64(settings.MaxWorkers))

	var all []domain.FileResult
	var mu sync.Mutex

	batchIndex := 0
	for state.Completed < state.Total {
		if opts.Stop != nil && opts.Stop.Load() {
			e.logger.Info("batch: stop requested, halting further submissions", "completed", state.Completed, "total", state.Total)
			break
		}

		remaining := files[state.Completed:]
		sampleSizes := sampleFileSizes(remaining)
		batchSize := sz.Next(sizer.Inputs{
			RemainingFileSizes:     sampleSizes,
			RemainingCount:         len(remaining),
			CurrentBatchIndex:      batchIndex,
			CompletedFiles:         state.Completed,
			TotalFiles:             state.Total,
			RollingProcessingTimes: state.ProcessingTimes,
		})
		if batchSize > len(remaining) {
			batchSize = len(remaining)
		}
		batch := remaining[:batchSize]

		var wg sync.WaitGroup
		for _, path := range batch {
			path := path
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
			wg.Add(1)
			go func() {
				defer sem.Release(1)
				defer wg.Done()

				fileStart := time.Now()
				r := withTimeout(ctx, path, deps, timeout)
				state.RecordProcessingTime(time.Since(fileStart))

				mu.Lock()
				all = append(all, r)
				mu.Unlock()
			}()
		}
		wg.Wait()

		state.Completed += len(batch)
		batchIndex++

		runtime.GC()
		clearAcceleratorCaches()

		if opts.ProgressCallback != nil {
			opts.ProgressCallback(state.Completed, state.Total)
		}
	}

	return result.NewTabularResult(all), nil
}

// clearAcceleratorCaches releases GPU-resident caches after a batch. None of
// this engine's wired providers hold GPU state directly (the Transcriber,
// Embedder, and Classifier are opaque HTTP/gRPC clients), so this is
// presently a documented no-op kept as the extension point §4.9 names.
func clearAcceleratorCaches() {}

func (e *Engine) loadSettings(ctx context.Context, userID string, maxWorkers int, timeoutSec int, liteMode bool) (domain.BatchSettings, error) {
	if e.st == nil {
		return domain.BatchSettings{MaxWorkers: maxWorkers, PerFileTimeoutSec: timeoutSec, LiteMode: liteMode}, nil
	}
	saved, err := e.st.LoadSettings(ctx, userID)
	if err != nil {
		return domain.BatchSettings{MaxWorkers: maxWorkers, PerFileTimeoutSec: timeoutSec, LiteMode: liteMode}, err
	}
	if saved.MaxWorkers == 0 {
		saved.MaxWorkers = maxWorkers
	}
	if saved.PerFileTimeoutSec == 0 {
		saved.PerFileTimeoutSec = timeoutSec
	}
	saved.LiteMode = liteMode
	return saved, nil
}

func resolveMaxWorkers(opts Options, configOverride int, liteMode bool) int {
	cores := runtime.NumCPU()

	if liteMode {
		return capInt(liteModeWorkers, cores)
	}
	if opts.MaxWorkersOverride > 0 {
		return capInt(opts.MaxWorkersOverride, cores)
	}
	if configOverride > 0 {
		return capInt(configOverride, cores)
	}
	if opts.AccountTier == TierPaid {
		return capInt(paidTierWorkers, cores)
	}
	return capInt(freeTierWorkers, cores)
}

func capInt(n, max int) int {
	if n > max {
		return max
	}
	return n
}

func resolveTimeout(perFileTimeoutSec int, liteMode bool) time.Duration {
	if liteMode {
		return liteModeTimeoutSec * time.Second
	}
	if perFileTimeoutSec <= 0 {
		perFileTimeoutSec = defaultPerFileTimeoutSec
	}
	return time.Duration(perFileTimeoutSec) * time.Second
}

func listAudioFiles(folderPath string) ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(folderPath, "*"))
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if supportedExtensions[strings.ToLower(filepath.Ext(e))] {
			files = append(files, e)
		}
	}
	return files, nil
}

func sampleFileSizes(paths []string) []int64 {
	const sampleCap = 100
	n := len(paths)
	if n > sampleCap {
		n = sampleCap
	}
	sizes := make([]int64, 0, n)
	for _, p := range paths[:n] {
		if info, err := os.Stat(p); err == nil {
			sizes = append(sizes, info.Size())
		}
	}
	return sizes
}
