// Command callaudit is the CLI entry point for the sales-call-recording
// audit engine. It wires the configured transcriber/embedder/classifier
// providers, the phrase repository and its learning store, and the
// BatchEngine, then runs ProcessFolder over one folder of call recordings.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/viper"

	"github.com/MrWong99/callaudit/internal/batch"
	"github.com/MrWong99/callaudit/internal/config"
	"github.com/MrWong99/callaudit/internal/preload"
	"github.com/MrWong99/callaudit/internal/progress"
	"github.com/MrWong99/callaudit/internal/rebuttal"
	"github.com/MrWong99/callaudit/internal/rebuttal/learning"
	"github.com/MrWong99/callaudit/internal/resilience"
	"github.com/MrWong99/callaudit/internal/result"
	"github.com/MrWong99/callaudit/internal/transcoderpc"
	"github.com/MrWong99/callaudit/pkg/provider/classifier"
	classifiermock "github.com/MrWong99/callaudit/pkg/provider/classifier/mock"
	"github.com/MrWong99/callaudit/pkg/provider/embedder"
	embeddermock "github.com/MrWong99/callaudit/pkg/provider/embedder/mock"
	"github.com/MrWong99/callaudit/pkg/provider/transcriber"
	transcribermock "github.com/MrWong99/callaudit/pkg/provider/transcriber/mock"
	"github.com/MrWong99/callaudit/pkg/store"
	storemock "github.com/MrWong99/callaudit/pkg/store/mock"
	"github.com/MrWong99/callaudit/pkg/store/postgres"

	"github.com/MrWong99/callaudit/pkg/provider/classifier/anyllm"
	classifieropenai "github.com/MrWong99/callaudit/pkg/provider/classifier/openai"
	embedderollama "github.com/MrWong99/callaudit/pkg/provider/embedder/ollama"
	embedderopenai "github.com/MrWong99/callaudit/pkg/provider/embedder/openai"
	"github.com/MrWong99/callaudit/pkg/provider/transcriber/deepgram"
	"github.com/MrWong99/callaudit/pkg/provider/transcriber/whisper"
)

func main() {
	os.Exit(run())
}

// runtimeSettings holds the invocation-level flags — which folder to
// process, for which user, and under what worker/timeout overrides — kept
// separate from the strict VAD/learning/semantic tunables in config.Config.
// viper layers flag defaults under CALLAUDIT_-prefixed environment
// variables, the way a scheduled batch job would override them without
// editing the YAML file.
type runtimeSettings struct {
	configPath string
	folder     string
	userID     string
	tier       string
	lite       bool
	mock       bool
	showAll    bool
	workers    int

	// progressAddr, when non-empty, serves a websocket progress feed
	// (internal/progress) alongside the batch run.
	progressAddr string

	// grpcAddr, when non-empty, serves ProcessFolder over gRPC
	// (internal/transcoderpc) instead of running it once directly; the
	// process then blocks until a shutdown signal.
	grpcAddr string
}

func loadRuntimeSettings() runtimeSettings {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	folder := flag.String("folder", "", "path to the folder of call recordings to process")
	userID := flag.String("user", "", "account identifier the batch run is billed/scoped to")
	tier := flag.String("tier", "free", "account tier: free or paid")
	lite := flag.Bool("lite", false, "lite mode: Releasing + Late-Hello only, no transcription")
	mock := flag.Bool("mock", false, "use in-memory mock providers instead of the configured ones")
	showAll := flag.Bool("show-all", false, "print every result row, not just flagged ones")
	workers := flag.Int("workers", 0, "override the per-user worker pool size (0 = use tier default)")
	progressAddr := flag.String("serve-progress-addr", "", "if set, serve a websocket progress feed on this address (e.g. :8081)")
	grpcAddr := flag.String("serve-grpc-addr", "", "if set, serve ProcessFolder over gRPC on this address instead of running once directly")
	flag.Parse()

	v := viper.New()
	v.SetEnvPrefix("callaudit")
	v.AutomaticEnv()
	v.SetDefault("config", *configPath)
	v.SetDefault("folder", *folder)
	v.SetDefault("user", *userID)
	v.SetDefault("tier", *tier)
	v.SetDefault("lite", *lite)
	v.SetDefault("mock", *mock)
	v.SetDefault("show_all", *showAll)
	v.SetDefault("workers", *workers)
	v.SetDefault("serve_progress_addr", *progressAddr)
	v.SetDefault("serve_grpc_addr", *grpcAddr)

	return runtimeSettings{
		configPath:   v.GetString("config"),
		folder:       v.GetString("folder"),
		userID:       v.GetString("user"),
		tier:         v.GetString("tier"),
		lite:         v.GetBool("lite"),
		mock:         v.GetBool("mock"),
		showAll:      v.GetBool("show_all"),
		workers:      v.GetInt("workers"),
		progressAddr: v.GetString("serve_progress_addr"),
		grpcAddr:     v.GetString("serve_grpc_addr"),
	}
}

func run() int {
	rt := loadRuntimeSettings()

	if rt.folder == "" {
		fmt.Fprintln(os.Stderr, "callaudit: -folder is required")
		return 1
	}

	cfg, err := config.Load(rt.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "callaudit: config file %q not found — pass -config with the path to a YAML config file\n", rt.configPath)
		} else {
			fmt.Fprintf(os.Stderr, "callaudit: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("callaudit starting",
		"config", rt.configPath,
		"folder", rt.folder,
		"user", rt.userID,
		"mock", rt.mock,
		"lite", rt.lite,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(ctx, cfg, reg, rt.mock)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}
	defer providers.Close()

	st, err := buildStore(ctx, cfg, rt.mock)
	if err != nil {
		slog.Error("failed to build phrase store", "err", err)
		return 1
	}

	printStartupSummary(cfg, rt)

	repo := rebuttal.NewRepository(st, providers.Embedder, providers.Index)
	if err := repo.Refresh(ctx); err != nil {
		slog.Warn("initial phrase repository refresh failed, starting from seed phrases only", "err", err)
	}

	learningStore := learning.New(st, repo, repo,
		cfg.Learning.ConfidenceThreshold, cfg.Learning.AutoApproveThreshold, cfg.Learning.FrequencyThreshold)

	matcher := rebuttal.NewMatcher(repo, providers.Embedder, providers.Classifier, learningStore, cfg.Semantic.Threshold)

	preloader := preload.New(repo, providers.Embedder, providers.Transcriber, logger)

	engine := batch.New(*cfg, matcher, providers.Transcriber, preloader, st, logger)

	var broadcaster *progress.Broadcaster
	if rt.progressAddr != "" {
		broadcaster = progress.New()
		progressSrv := &http.Server{Addr: rt.progressAddr, Handler: broadcaster.Handler()}
		go func() {
			if err := progressSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("progress server failed", "err", err)
			}
		}()
		go func() {
			<-ctx.Done()
			_ = progressSrv.Close()
		}()
		slog.Info("progress websocket listening", "addr", rt.progressAddr)
	}

	// -serve-grpc-addr turns this invocation into a long-running ProcessFolder
	// server (internal/transcoderpc) instead of a single direct run; it is
	// additive to, and mutually exclusive with, the one-shot CLI path below.
	if rt.grpcAddr != "" {
		lis, err := net.Listen("tcp", rt.grpcAddr)
		if err != nil {
			slog.Error("gRPC listen failed", "err", err)
			return 1
		}
		grpcSrv := transcoderpc.NewGRPCServer(engine)
		go func() {
			<-ctx.Done()
			grpcSrv.GracefulStop()
		}()
		slog.Info("gRPC ProcessFolder service listening", "addr", rt.grpcAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			slog.Error("gRPC server failed", "err", err)
			return 1
		}
		return 0
	}

	var stopFlag atomic.Bool
	go func() {
		<-ctx.Done()
		stopFlag.Store(true)
	}()

	opts := batch.Options{
		AccountTier:        tierFromString(rt.tier),
		MaxWorkersOverride: rt.workers,
		LiteMode:           rt.lite,
		ShowAllResults:     rt.showAll,
		ProgressCallback: func(completed, total int) {
			slog.Info("batch progress", "completed", completed, "total", total)
			if broadcaster != nil {
				broadcaster.Callback(rt.userID)(completed, total)
			}
		},
		Stop: &stopFlag,
	}

	tab, err := engine.ProcessFolder(ctx, rt.folder, rt.userID, opts)
	if err != nil {
		slog.Error("process folder failed", "err", err)
		return 1
	}

	printResults(os.Stdout, tab, rt.showAll)
	return 0
}

func tierFromString(s string) batch.AccountTier {
	if s == string(batch.TierPaid) {
		return batch.TierPaid
	}
	return batch.TierFree
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// Providers bundles every external collaborator the engine needs.
type Providers struct {
	Transcriber transcriber.Provider
	Embedder    embedder.Provider
	Classifier  classifier.Provider
	Index       store.PhraseEmbeddingIndex

	closers []func() error
}

// Close releases any resources opened while constructing the providers:
// buildProviders registers the Close method of any transcriber that has one
// (the whisper-native adapter does).
func (p *Providers) Close() {
	for _, c := range p.closers {
		if err := c(); err != nil {
			slog.Warn("provider close failed", "err", err)
		}
	}
}

func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterTranscriber("deepgram", func(e config.ProviderEntry) (transcriber.Provider, error) {
		opts := []deepgram.Option{}
		if e.Model != "" {
			opts = append(opts, deepgram.WithModel(e.Model))
		}
		return deepgram.New(e.APIKey, opts...)
	})
	reg.RegisterTranscriber("whisper", func(e config.ProviderEntry) (transcriber.Provider, error) {
		return whisper.New(e.BaseURL)
	})
	reg.RegisterTranscriber("whisper-native", func(e config.ProviderEntry) (transcriber.Provider, error) {
		return whisper.NewNative(e.Model)
	})

	reg.RegisterEmbedder("ollama", func(e config.ProviderEntry) (embedder.Provider, error) {
		return embedderollama.New(e.BaseURL, e.Model)
	})
	reg.RegisterEmbedder("openai", func(e config.ProviderEntry) (embedder.Provider, error) {
		return embedderopenai.New(e.APIKey, e.Model)
	})

	reg.RegisterClassifier("openai", func(e config.ProviderEntry) (classifier.Provider, error) {
		return classifieropenai.New(e.APIKey, e.Model)
	})
	reg.RegisterClassifier("anyllm", func(e config.ProviderEntry) (classifier.Provider, error) {
		backend, _ := e.Options["backend"].(string)
		if backend == "" {
			backend = "ollama"
		}
		return anyllm.New(backend, e.Model)
	})
}

// buildProviders instantiates the configured transcriber/embedder/classifier,
// wrapping each primary in a resilience.FallbackGroup when a *_fallback
// provider entry is configured. In mock mode every provider is an in-memory
// test double instead, so ProcessFolder can run against a folder of sample
// audio without any live backend.
func buildProviders(ctx context.Context, cfg *config.Config, reg *config.Registry, mockMode bool) (*Providers, error) {
	if mockMode {
		return &Providers{
			Transcriber: &transcribermock.Provider{Result: transcriber.Result{Text: "this is a placeholder mock transcript"}},
			Embedder:    &embeddermock.Provider{DimensionsValue: 8, ModelIDValue: "mock-embed"},
			Classifier:  &classifiermock.Provider{Result: classifier.Result{IsRebuttal: false}},
			Index:       nil,
		}, nil
	}

	ps := &Providers{}

	if name := cfg.Providers.Transcriber.Name; name != "" {
		primary, err := reg.CreateTranscriber(cfg.Providers.Transcriber)
		if err != nil {
			return nil, fmt.Errorf("create transcriber %q: %w", name, err)
		}
		if closer, ok := primary.(interface{ Close() error }); ok {
			ps.closers = append(ps.closers, closer.Close)
		}
		ps.Transcriber = primary
		if fbName := cfg.Providers.TranscriberFallback.Name; fbName != "" {
			fallback, err := reg.CreateTranscriber(cfg.Providers.TranscriberFallback)
			if err != nil {
				return nil, fmt.Errorf("create transcriber fallback %q: %w", fbName, err)
			}
			fg := resilience.NewTranscriberFallback(primary, name, resilience.FallbackConfig{})
			fg.AddFallback(fbName, fallback)
			ps.Transcriber = fg
		}
		slog.Info("provider created", "kind", "transcriber", "name", name)
	}

	if name := cfg.Providers.Embedder.Name; name != "" {
		p, err := reg.CreateEmbedder(cfg.Providers.Embedder)
		if err != nil {
			return nil, fmt.Errorf("create embedder %q: %w", name, err)
		}
		ps.Embedder = p
		slog.Info("provider created", "kind", "embedder", "name", name)
	}

	if name := cfg.Providers.Classifier.Name; name != "" {
		primary, err := reg.CreateClassifier(cfg.Providers.Classifier)
		if err != nil {
			return nil, fmt.Errorf("create classifier %q: %w", name, err)
		}
		ps.Classifier = primary
		if fbName := cfg.Providers.ClassifierFallback.Name; fbName != "" {
			fallback, err := reg.CreateClassifier(cfg.Providers.ClassifierFallback)
			if err != nil {
				return nil, fmt.Errorf("create classifier fallback %q: %w", fbName, err)
			}
			fg := resilience.NewClassifierFallback(primary, name, resilience.FallbackConfig{})
			fg.AddFallback(fbName, fallback)
			ps.Classifier = fg
		}
		slog.Info("provider created", "kind", "classifier", "name", name)
	}

	return ps, nil
}

// buildStore constructs the phrase-catalogue/learning-pipeline store. In
// mock mode, or when no DSN is configured, an in-memory mock.Store is used
// so the rest of the pipeline can still run.
func buildStore(ctx context.Context, cfg *config.Config, mockMode bool) (store.Store, error) {
	if mockMode || cfg.Store.PostgresDSN == "" {
		return &storemock.Store{}, nil
	}
	return postgres.NewStore(ctx, cfg.Store.PostgresDSN, cfg.Store.EmbeddingDimensions)
}

// ── Output ────────────────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, rt runtimeSettings) {
	fmt.Println("callaudit — batch run starting")
	fmt.Printf("  folder        : %s\n", rt.folder)
	fmt.Printf("  user          : %s\n", rt.userID)
	fmt.Printf("  tier          : %s\n", rt.tier)
	fmt.Printf("  lite mode     : %v\n", rt.lite)
	fmt.Printf("  transcriber   : %s\n", providerLabel(cfg.Providers.Transcriber, rt.mock))
	fmt.Printf("  embedder      : %s\n", providerLabel(cfg.Providers.Embedder, rt.mock))
	fmt.Printf("  classifier    : %s\n", providerLabel(cfg.Providers.Classifier, rt.mock))
}

func providerLabel(e config.ProviderEntry, mockMode bool) string {
	if mockMode {
		return "(mock)"
	}
	if e.Name == "" {
		return "(not configured)"
	}
	if e.Model != "" {
		return e.Name + " / " + e.Model
	}
	return e.Name
}

// printResults renders the TabularResult as a tab-aligned table. showAll
// selects AllResults instead of FlaggedOnly; the library's own FlaggedOnly
// filter is always computed regardless, per §4.12.
func printResults(w *os.File, tab result.TabularResult, showAll bool) {
	rows := tab.Flagged
	label := "flagged"
	if showAll {
		rows = tab.All
		label = "all"
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Agent\tTimestamp\tPhone\tStatus\tReleasing\tLateHello\tRebuttal\tScore\tError\n")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.0f\t%s\n",
			r.AgentName, r.Timestamp, r.PhoneNumber, r.Status,
			r.Releasing, r.LateHello, r.Rebuttal, r.IntroScorePct, r.Error)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d %s rows (of %d total, %d errors)\n", len(rows), label, len(tab.All), len(tab.Errors))
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
