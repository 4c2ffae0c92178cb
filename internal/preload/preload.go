// Package preload implements the ModelPreloader (§4.10): a single-flight,
// idempotent warm-up of every external collaborator a batch run needs before
// the first file is submitted.
package preload

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/callaudit/pkg/provider/embedder"
	"github.com/MrWong99/callaudit/pkg/provider/transcriber"
)

// warmer is an optional capability a transcriber.Provider may implement to
// establish connections/auth before the first real file is submitted.
type warmer interface {
	Warm(ctx context.Context) error
}

// Repository is the subset of rebuttal.Repository the preloader needs: a
// Refresh implicitly loads the embedder (by calling Encode over the seed
// phrase set) as a side effect. The preloader additionally sends the
// embedder one small Encode call of its own.
type Repository interface {
	Refresh(ctx context.Context) error
}

// Preloader warms up the Embedder's phrase-embedding index (via the
// rebuttal repository), and the transcription client, exactly once per
// Preloader regardless of how many goroutines call Warm concurrently.
type Preloader struct {
	repo   Repository
	emb    embedder.Provider
	trans  transcriber.Provider
	logger *slog.Logger

	once sync.Once
	err  error
}

// New constructs a Preloader. emb and trans are only used for their
// presence-check warm-up calls; the heavy lifting for the embedder happens
// inside repo.Refresh.
func New(repo Repository, emb embedder.Provider, trans transcriber.Provider, logger *slog.Logger) *Preloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preloader{repo: repo, emb: emb, trans: trans, logger: logger}
}

// Warm runs the warm-up exactly once for the lifetime of this Preloader;
// subsequent calls return the first call's result immediately. Safe for
// concurrent use.
func (p *Preloader) Warm(ctx context.Context) error {
	p.once.Do(func() {
		p.err = p.warm(ctx)
	})
	return p.err
}

func (p *Preloader) warm(ctx context.Context) error {
	p.logger.Info("preload: warming up models")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if p.repo == nil {
			return nil
		}
		if err := p.repo.Refresh(ctx); err != nil {
			return fmt.Errorf("preload: repository refresh: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if p.emb == nil {
			return nil
		}
		if _, err := p.emb.Encode(ctx, []string{"warm-up"}, 1); err != nil {
			return fmt.Errorf("preload: embedder warm-up: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// transcriber.Provider exposes only TranscribeFile, which needs a real
		// file; there is no session-establishment hook to warm. A provider
		// that does maintain a connection pool or auth token cache can opt in
		// by additionally implementing warmer.
		if w, ok := p.trans.(warmer); ok {
			if err := w.Warm(ctx); err != nil {
				return fmt.Errorf("preload: transcriber warm-up: %w", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		p.logger.Error("preload: warm-up failed", "error", err)
		return err
	}

	p.logger.Info("preload: warm-up complete")
	return nil
}
