// Package mock provides in-memory test doubles for the pkg/store interfaces.
//
// Each mock records every method call for assertion in tests and exposes
// exported fields that control what the mock returns. All mocks are safe for
// concurrent use via an internal [sync.Mutex].
//
// Typical usage:
//
//	st := &mock.Store{LoadPhrasesResult: []domain.PhraseEntry{{Category: "price", Phrase: "too expensive"}}}
//
//	// inject st into the system under test …
//
//	if got := st.CallCount("LoadPhrases"); got != 1 {
//	    t.Errorf("expected 1 LoadPhrases call, got %d", got)
//	}
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/pkg/store"
)

// Call records the name and arguments of a single method invocation.
type Call struct {
	// Method is the name of the interface method that was called.
	Method string

	// Args holds the non-context arguments passed to the method, in order.
	Args []any
}

// ─────────────────────────────────────────────────────────────────────────────
// Store mock
// ─────────────────────────────────────────────────────────────────────────────

// Store is a configurable test double for [store.Store]. All exported *Err
// fields default to nil (success); all exported *Result fields default to
// the interface's documented zero-value behaviour.
type Store struct {
	mu sync.Mutex

	calls []Call

	// LoadPhrasesResult is returned by [Store.LoadPhrases]. When nil,
	// LoadPhrases returns an empty non-nil slice.
	LoadPhrasesResult []domain.PhraseEntry
	LoadPhrasesErr    error

	// UpsertPendingPhraseResult is returned by [Store.UpsertPendingPhrase].
	UpsertPendingPhraseResult domain.PendingPhrase
	UpsertPendingPhraseErr    error

	// ListPendingPhrasesResult is returned by [Store.ListPendingPhrases].
	// When nil, ListPendingPhrases returns an empty non-nil slice.
	ListPendingPhrasesResult []domain.PendingPhrase
	ListPendingPhrasesErr    error

	// ApprovePhraseResult is returned by [Store.ApprovePhrase].
	ApprovePhraseResult domain.PhraseEntry
	ApprovePhraseErr    error

	// RejectPhraseErr is returned by [Store.RejectPhrase] when non-nil.
	RejectPhraseErr error

	// AddBlacklistErr is returned by [Store.AddBlacklist] when non-nil.
	AddBlacklistErr error

	// IsBlacklistedResult is returned by [Store.IsBlacklisted].
	IsBlacklistedResult bool
	IsBlacklistedErr    error

	// CategoryPerformanceResult is returned by [Store.CategoryPerformance].
	CategoryPerformanceResult domain.CategoryPerformance
	CategoryPerformanceErr    error

	// LoadSettingsResult is returned by [Store.LoadSettings].
	LoadSettingsResult domain.BatchSettings
	LoadSettingsErr    error

	// SaveSettingsErr is returned by [Store.SaveSettings] when non-nil.
	SaveSettingsErr error
}

// Calls returns a copy of all recorded method invocations.
func (m *Store) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times the named method was invoked.
func (m *Store) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears all recorded calls without altering response configuration.
func (m *Store) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// LoadPhrases implements [store.Store].
func (m *Store) LoadPhrases(_ context.Context) ([]domain.PhraseEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "LoadPhrases"})
	if m.LoadPhrasesResult == nil {
		return []domain.PhraseEntry{}, m.LoadPhrasesErr
	}
	out := make([]domain.PhraseEntry, len(m.LoadPhrasesResult))
	copy(out, m.LoadPhrasesResult)
	return out, m.LoadPhrasesErr
}

// UpsertPendingPhrase implements [store.Store].
func (m *Store) UpsertPendingPhrase(_ context.Context, phrase domain.PendingPhrase) (domain.PendingPhrase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "UpsertPendingPhrase", Args: []any{phrase}})
	return m.UpsertPendingPhraseResult, m.UpsertPendingPhraseErr
}

// ListPendingPhrases implements [store.Store].
func (m *Store) ListPendingPhrases(_ context.Context, filter store.PendingPhraseFilter) ([]domain.PendingPhrase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "ListPendingPhrases", Args: []any{filter}})
	if m.ListPendingPhrasesResult == nil {
		return []domain.PendingPhrase{}, m.ListPendingPhrasesErr
	}
	out := make([]domain.PendingPhrase, len(m.ListPendingPhrasesResult))
	copy(out, m.ListPendingPhrasesResult)
	return out, m.ListPendingPhrasesErr
}

// ApprovePhrase implements [store.Store].
func (m *Store) ApprovePhrase(_ context.Context, pendingID string) (domain.PhraseEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "ApprovePhrase", Args: []any{pendingID}})
	return m.ApprovePhraseResult, m.ApprovePhraseErr
}

// RejectPhrase implements [store.Store].
func (m *Store) RejectPhrase(_ context.Context, pendingID string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "RejectPhrase", Args: []any{pendingID, reason}})
	return m.RejectPhraseErr
}

// AddBlacklist implements [store.Store].
func (m *Store) AddBlacklist(_ context.Context, entry domain.PhraseBlacklist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "AddBlacklist", Args: []any{entry}})
	return m.AddBlacklistErr
}

// IsBlacklisted implements [store.Store].
func (m *Store) IsBlacklisted(_ context.Context, phrase, category string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "IsBlacklisted", Args: []any{phrase, category}})
	return m.IsBlacklistedResult, m.IsBlacklistedErr
}

// CategoryPerformance implements [store.Store].
func (m *Store) CategoryPerformance(_ context.Context, category string) (domain.CategoryPerformance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "CategoryPerformance", Args: []any{category}})
	return m.CategoryPerformanceResult, m.CategoryPerformanceErr
}

// LoadSettings implements [store.Store].
func (m *Store) LoadSettings(_ context.Context, userID string) (domain.BatchSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "LoadSettings", Args: []any{userID}})
	return m.LoadSettingsResult, m.LoadSettingsErr
}

// SaveSettings implements [store.Store].
func (m *Store) SaveSettings(_ context.Context, userID string, settings domain.BatchSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "SaveSettings", Args: []any{userID, settings}})
	return m.SaveSettingsErr
}

// Ensure Store satisfies the interface at compile time.
var _ store.Store = (*Store)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// PhraseEmbeddingIndex mock
// ─────────────────────────────────────────────────────────────────────────────

// PhraseEmbeddingIndex is a configurable test double for
// [store.PhraseEmbeddingIndex].
type PhraseEmbeddingIndex struct {
	mu sync.Mutex

	calls []Call

	// IndexPhraseErr is returned by [PhraseEmbeddingIndex.IndexPhrase] when
	// non-nil.
	IndexPhraseErr error

	// SearchResult is returned by [PhraseEmbeddingIndex.Search]. When nil,
	// Search returns an empty non-nil slice.
	SearchResult []store.PhraseMatch
	SearchErr    error
}

// Calls returns a copy of all recorded method invocations.
func (m *PhraseEmbeddingIndex) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times the named method was invoked.
func (m *PhraseEmbeddingIndex) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears all recorded calls without altering response configuration.
func (m *PhraseEmbeddingIndex) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// IndexPhrase implements [store.PhraseEmbeddingIndex].
func (m *PhraseEmbeddingIndex) IndexPhrase(_ context.Context, category, phrase string, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "IndexPhrase", Args: []any{category, phrase, embedding}})
	return m.IndexPhraseErr
}

// Search implements [store.PhraseEmbeddingIndex].
func (m *PhraseEmbeddingIndex) Search(_ context.Context, embedding []float32, topK int) ([]store.PhraseMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: "Search", Args: []any{embedding, topK}})
	if m.SearchResult == nil {
		return []store.PhraseMatch{}, m.SearchErr
	}
	out := make([]store.PhraseMatch, len(m.SearchResult))
	copy(out, m.SearchResult)
	return out, m.SearchErr
}

// Ensure PhraseEmbeddingIndex satisfies the interface at compile time.
var _ store.PhraseEmbeddingIndex = (*PhraseEmbeddingIndex)(nil)
