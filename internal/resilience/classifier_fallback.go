package resilience

import (
	"context"

	"github.com/MrWong99/callaudit/pkg/provider/classifier"
)

// ClassifierFallback implements [classifier.Provider] with automatic failover
// across multiple LLM classifier backends. Each backend has its own circuit
// breaker; when the primary fails or its breaker is open, the next healthy
// fallback is tried.
type ClassifierFallback struct {
	group *FallbackGroup[classifier.Provider]
}

// Compile-time interface assertion.
var _ classifier.Provider = (*ClassifierFallback)(nil)

// NewClassifierFallback creates a [ClassifierFallback] with primary as the
// preferred backend.
func NewClassifierFallback(primary classifier.Provider, primaryName string, cfg FallbackConfig) *ClassifierFallback {
	return &ClassifierFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional classifier provider as a fallback.
func (f *ClassifierFallback) AddFallback(name string, provider classifier.Provider) {
	f.group.AddFallback(name, provider)
}

// ClassifyRebuttal sends the transcript to the first healthy provider and
// returns its verdict. If the primary fails, subsequent fallbacks are tried.
func (f *ClassifierFallback) ClassifyRebuttal(ctx context.Context, transcript string) (classifier.Result, error) {
	return ExecuteWithResult(f.group, func(p classifier.Provider) (classifier.Result, error) {
		return p.ClassifyRebuttal(ctx, transcript)
	})
}
