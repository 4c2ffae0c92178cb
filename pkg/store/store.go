// Package store defines the persistence interfaces for the phrase catalogue,
// the learning pipeline's pending queue, and per-user batch settings.
//
// A Store is an opaque external collaborator: the core depends only on the
// interfaces below, not on any particular backend. The reference
// implementation ([pkg/store/postgres]) is PostgreSQL + pgvector, but a
// document store or an in-memory map satisfies the same contract equally
// well.
//
// Every implementation must be safe for concurrent use — PhraseLearningStore
// serialises logical writes through SQL-level uniqueness constraints rather
// than an in-process lock, so many goroutines may call UpsertPendingPhrase
// concurrently.
package store

import (
	"context"

	"github.com/MrWong99/callaudit/internal/domain"
)

// PendingPhraseFilter narrows a ListPendingPhrases query. All non-zero fields
// are applied as AND conditions; the zero value lists everything.
type PendingPhraseFilter struct {
	// Status restricts results to pending rows in this status. Empty matches
	// every status.
	Status domain.PendingStatus

	// Category restricts results to a single category. Empty matches all
	// categories.
	Category string

	// Limit caps the number of rows returned. Zero means no cap.
	Limit int
}

// PhraseMatch is one hit from a PhraseEmbeddingIndex similarity search.
type PhraseMatch struct {
	// Category is the matched phrase's category.
	Category string

	// Phrase is the matched phrase's canonical text.
	Phrase string

	// Distance is the cosine distance to the query embedding; lower is more
	// similar.
	Distance float64
}

// Store is the persistence contract for the phrase catalogue, its learning
// pipeline, and per-user batch settings.
type Store interface {
	// LoadPhrases returns every approved PhraseEntry, spanning both the
	// manually seeded catalogue and previously auto-approved learned
	// phrases. Used by PhraseRepository.Refresh.
	LoadPhrases(ctx context.Context) ([]domain.PhraseEntry, error)

	// UpsertPendingPhrase inserts phrase as a new pending row, or — when a
	// pending row with the same lower(trim(phrase)) already exists —
	// merges into it: max confidence, detectionCount+1, refreshed
	// lastSeenAt, contexts concatenated and truncated. Returns the
	// resulting row.
	UpsertPendingPhrase(ctx context.Context, phrase domain.PendingPhrase) (domain.PendingPhrase, error)

	// ListPendingPhrases returns pending rows matching filter. It runs no
	// cleanup pass of its own; the postgres implementation keeps rows unique
	// on lower(trim(phrase)), regardless of category, through the phrase_key
	// constraint that UpsertPendingPhrase merges on.
	ListPendingPhrases(ctx context.Context, filter PendingPhraseFilter) ([]domain.PendingPhrase, error)

	// ApprovePhrase marks the pending row identified by pendingID as
	// approved, upserts it into the approved PhraseEntry catalogue, and
	// returns the resulting entry. The caller is responsible for triggering
	// PhraseRepository.Refresh afterwards.
	ApprovePhrase(ctx context.Context, pendingID string) (domain.PhraseEntry, error)

	// RejectPhrase marks the pending row as rejected and adds it to the
	// blacklist with reason.
	RejectPhrase(ctx context.Context, pendingID string, reason string) error

	// AddBlacklist inserts entry, or is a no-op if (phrase, category)
	// already exists.
	AddBlacklist(ctx context.Context, entry domain.PhraseBlacklist) error

	// IsBlacklisted reports whether (phrase, category) is present in the
	// blacklist.
	IsBlacklisted(ctx context.Context, phrase, category string) (bool, error)

	// CategoryPerformance returns the cached approval-rate statistics for
	// category, used to compute the adaptive per-category auto-approval
	// threshold.
	CategoryPerformance(ctx context.Context, category string) (domain.CategoryPerformance, error)

	// LoadSettings returns the persisted BatchSettings for userID, or the
	// zero value if none have been saved yet.
	LoadSettings(ctx context.Context, userID string) (domain.BatchSettings, error)

	// SaveSettings persists settings for userID, replacing any previous
	// value.
	SaveSettings(ctx context.Context, userID string, settings domain.BatchSettings) error
}

// PhraseEmbeddingIndex is the vector-search side of the phrase catalogue: it
// holds one embedding per approved phrase and answers nearest-neighbour
// queries for RebuttalMatcher's Tier 2 (semantic) pass.
//
// Implementations must be safe for concurrent use. A full rebuild (as done
// by PhraseRepository.Refresh) is expected to call IndexPhrase once per
// phrase; callers must not observe a partially rebuilt index.
type PhraseEmbeddingIndex interface {
	// IndexPhrase upserts the embedding for (category, phrase).
	IndexPhrase(ctx context.Context, category, phrase string, embedding []float32) error

	// Search returns the topK phrases whose embeddings are closest (cosine
	// distance) to embedding, ordered by ascending distance.
	Search(ctx context.Context, embedding []float32, topK int) ([]PhraseMatch, error)
}
