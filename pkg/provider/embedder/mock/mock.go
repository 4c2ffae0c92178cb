// Package mock provides a test double for the embedder.Provider interface.
//
// Use Provider to return pre-canned embedding vectors without a live model
// and to verify that the correct texts are submitted for embedding.
//
// Example:
//
//	p := &mock.Provider{
//	    EncodeResult:    [][]float32{{0.1, 0.2, 0.3}},
//	    DimensionsValue: 3,
//	    ModelIDValue:    "test-embed-v1",
//	}
//	vecs, _ := p.Encode(ctx, []string{"hello world"}, 8)
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/callaudit/pkg/provider/embedder"
)

// EncodeCall records a single invocation of Encode.
type EncodeCall struct {
	// Ctx is the context passed to Encode.
	Ctx context.Context
	// Texts is a copy of the string slice passed to Encode.
	Texts []string
	// BatchSize is the batchSize passed to Encode.
	BatchSize int
}

// Provider is a mock implementation of embedder.Provider.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// EncodeResult is returned by Encode. If nil and texts is non-empty, a
	// slice of nil vectors matching len(texts) is returned instead.
	EncodeResult [][]float32

	// EncodeErr, if non-nil, is returned as the error from Encode.
	EncodeErr error

	// DimensionsValue is returned by Dimensions.
	DimensionsValue int

	// ModelIDValue is returned by ModelID.
	ModelIDValue string

	// --- Call records ---

	// EncodeCalls records every call to Encode in order.
	EncodeCalls []EncodeCall

	// DimensionsCallCount is the number of times Dimensions was called.
	DimensionsCallCount int

	// ModelIDCallCount is the number of times ModelID was called.
	ModelIDCallCount int
}

// Ensure Provider implements embedder.Provider at compile time.
var _ embedder.Provider = (*Provider)(nil)

// Encode records the call and returns EncodeResult, EncodeErr. If
// EncodeResult is nil and texts is non-empty, a slice of nil vectors matching
// len(texts) is returned.
func (p *Provider) Encode(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]string, len(texts))
	copy(cp, texts)
	p.EncodeCalls = append(p.EncodeCalls, EncodeCall{Ctx: ctx, Texts: cp, BatchSize: batchSize})
	if p.EncodeErr != nil {
		return nil, p.EncodeErr
	}
	if len(texts) == 0 {
		return nil, nil
	}
	if p.EncodeResult != nil {
		return p.EncodeResult, nil
	}
	return make([][]float32, len(texts)), nil
}

// Dimensions records the call and returns DimensionsValue.
func (p *Provider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DimensionsCallCount++
	return p.DimensionsValue
}

// ModelID records the call and returns ModelIDValue.
func (p *Provider) ModelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ModelIDCallCount++
	return p.ModelIDValue
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EncodeCalls = nil
	p.DimensionsCallCount = 0
	p.ModelIDCallCount = 0
}
