// Package mock provides a test double for the classifier.Provider interface.
//
// Use Provider in unit tests to verify that the rebuttal matcher invokes
// Tier 3 only when expected and to feed controlled verdicts without a live
// LLM backend.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/callaudit/pkg/provider/classifier"
)

// Call records a single invocation of ClassifyRebuttal.
type Call struct {
	Ctx        context.Context
	Transcript string
}

// Provider is a mock implementation of classifier.Provider.
type Provider struct {
	mu sync.Mutex

	// Result is returned by every ClassifyRebuttal call.
	Result classifier.Result

	// Err, if non-nil, is returned as the error from ClassifyRebuttal.
	Err error

	// Calls records every invocation in order.
	Calls []Call
}

// ClassifyRebuttal records the call and returns Result, Err.
func (p *Provider) ClassifyRebuttal(ctx context.Context, transcript string) (classifier.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, Call{Ctx: ctx, Transcript: transcript})
	if p.Err != nil {
		return classifier.Result{}, p.Err
	}
	return p.Result, nil
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
}

// Ensure Provider implements classifier.Provider at compile time.
var _ classifier.Provider = (*Provider)(nil)
