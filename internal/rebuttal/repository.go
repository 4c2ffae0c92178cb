// Package rebuttal implements the three-tier RebuttalMatcher (§4.5), the
// read-mostly PhraseRepository (§4.6), and the glue between them.
package rebuttal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/pkg/provider/embedder"
	"github.com/MrWong99/callaudit/pkg/store"
)

// snapshot is the immutable (phrases, embeddings, metadata) triple readers
// observe. Refresh publishes a new snapshot under a single atomic store so
// concurrent matchers never see a torn state.
type snapshot struct {
	// byCategory holds every phrase (seed + approved-learned), deduplicated
	// case-insensitively within a category, preserving built-ins.
	byCategory map[string][]string

	// flat is byCategory flattened into one ordered list; embeddings[i]
	// corresponds to flat[i].
	flat       []phraseRef
	embeddings [][]float32
}

type phraseRef struct {
	Category string
	Phrase   string
}

// Repository is the shared, read-mostly phrase catalogue. It is safe for
// concurrent use: All/ByCategory/embeddings access take an atomic snapshot
// pointer, and Refresh publishes a new snapshot without blocking readers.
type Repository struct {
	st    store.Store
	emb   embedder.Provider
	index store.PhraseEmbeddingIndex

	snap atomic.Pointer[snapshot]
}

// NewRepository constructs a Repository over st (the approved-phrase
// catalogue), emb (used to embed phrases for Tier 2), and index (the
// persisted pgvector-backed search side, kept in sync by Refresh). The
// returned Repository holds only the static seed set until Refresh is
// called.
func NewRepository(st store.Store, emb embedder.Provider, index store.PhraseEmbeddingIndex) *Repository {
	r := &Repository{st: st, emb: emb, index: index}
	r.snap.Store(snapshotFromSeed())
	return r
}

func snapshotFromSeed() *snapshot {
	byCategory := make(map[string][]string, len(seedPhrases))
	for cat, phrases := range seedPhrases {
		byCategory[cat] = append([]string(nil), phrases...)
	}
	return &snapshot{byCategory: byCategory}
}

// All returns the merged, case-insensitive-deduplicated phrase catalogue
// grouped by category, preserving built-in seed phrases.
func (r *Repository) All() map[string][]string {
	snap := r.snap.Load()
	out := make(map[string][]string, len(snap.byCategory))
	for cat, phrases := range snap.byCategory {
		cp := make([]string, len(phrases))
		copy(cp, phrases)
		out[cat] = cp
	}
	return out
}

// ByCategory returns the deduplicated phrase list for category, or nil if
// the category is unknown.
func (r *Repository) ByCategory(category string) []string {
	snap := r.snap.Load()
	phrases := snap.byCategory[category]
	if phrases == nil {
		return nil
	}
	cp := make([]string, len(phrases))
	copy(cp, phrases)
	return cp
}

// Refresh reloads approved phrases from the store, merges them with the
// static seed set, re-embeds the full phrase list via Embedder.Encode, and
// atomically publishes the new snapshot. It also re-indexes every phrase
// into the persisted PhraseEmbeddingIndex so out-of-process readers (e.g. an
// admin tool querying Postgres directly) stay in sync.
//
// Readers never observe a torn state: the old snapshot remains live until
// this call completes successfully.
func (r *Repository) Refresh(ctx context.Context) error {
	entries, err := r.st.LoadPhrases(ctx)
	if err != nil {
		return fmt.Errorf("rebuttal: repository refresh: load phrases: %w", err)
	}

	merged := mergeCaseInsensitive(seedPhrases, entries)

	flat := make([]phraseRef, 0, totalPhrases(merged))
	texts := make([]string, 0, cap(flat))
	for cat, phrases := range merged {
		for _, p := range phrases {
			flat = append(flat, phraseRef{Category: cat, Phrase: p})
			texts = append(texts, p)
		}
	}

	var embeddings [][]float32
	if len(texts) > 0 && r.emb != nil {
		embeddings, err = r.emb.Encode(ctx, texts, 8)
		if err != nil {
			return fmt.Errorf("rebuttal: repository refresh: encode phrases: %w", err)
		}
	}

	if r.index != nil {
		for i, ref := range flat {
			var vec []float32
			if i < len(embeddings) {
				vec = embeddings[i]
			}
			if err := r.index.IndexPhrase(ctx, ref.Category, ref.Phrase, vec); err != nil {
				return fmt.Errorf("rebuttal: repository refresh: index phrase %q: %w", ref.Phrase, err)
			}
		}
	}

	r.snap.Store(&snapshot{byCategory: merged, flat: flat, embeddings: embeddings})
	return nil
}

// mergeCaseInsensitive combines the static seed set with store-loaded
// approved entries, deduplicating case-insensitively per category while
// preserving the seed phrases' original casing.
func mergeCaseInsensitive(seed map[string][]string, entries []domain.PhraseEntry) map[string][]string {
	seen := make(map[string]map[string]bool, len(seed))
	merged := make(map[string][]string, len(seed))

	for cat, phrases := range seed {
		merged[cat] = append([]string(nil), phrases...)
		seen[cat] = make(map[string]bool, len(phrases))
		for _, p := range phrases {
			seen[cat][strings.ToLower(p)] = true
		}
	}

	for _, e := range entries {
		key := strings.ToLower(e.Phrase)
		if seen[e.Category] == nil {
			seen[e.Category] = make(map[string]bool)
		}
		if seen[e.Category][key] {
			continue
		}
		seen[e.Category][key] = true
		merged[e.Category] = append(merged[e.Category], e.Phrase)
	}

	for cat := range merged {
		sort.Strings(merged[cat])
	}
	return merged
}

func totalPhrases(m map[string][]string) int {
	n := 0
	for _, v := range m {
		n += len(v)
	}
	return n
}
