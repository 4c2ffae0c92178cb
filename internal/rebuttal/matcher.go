package rebuttal

import (
	"context"
	"sort"
	"strings"

	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/pkg/provider/classifier"
	"github.com/MrWong99/callaudit/pkg/provider/embedder"
)

// LearningStore is the write side of the self-learning phrase pipeline
// (§4.7). The Matcher depends only on Observe so that the learning store can
// in turn depend on Repository.Refresh without creating an import cycle: the
// Matcher sits between the two and neither Repository nor the learning store
// references the other.
type LearningStore interface {
	// Observe records one Tier-2 semantic hit as a learning candidate.
	// sampleContext is the transcript chunk that produced the match.
	Observe(ctx context.Context, category, phrase string, confidence float64, sampleContext string) error
}

// Matcher runs the three-tier rebuttal detector (§4.5) over a transcript: an
// exact substring tier, a semantic embedding tier, and an optional LLM
// fallback tier.
type Matcher struct {
	repo              *Repository
	emb               embedder.Provider
	cls               classifier.Provider
	learning          LearningStore
	semanticThreshold float64
}

// NewMatcher constructs a Matcher. cls and learning may be nil: a nil
// classifier simply skips Tier 3, and a nil learning store skips reporting
// Tier-2 hits to the learning pipeline. semanticThreshold is clamped to
// [0.5, 0.9] per §4.5.
func NewMatcher(repo *Repository, emb embedder.Provider, cls classifier.Provider, learning LearningStore, semanticThreshold float64) *Matcher {
	if semanticThreshold < 0.5 {
		semanticThreshold = 0.5
	}
	if semanticThreshold > 0.9 {
		semanticThreshold = 0.9
	}
	return &Matcher{repo: repo, emb: emb, cls: cls, learning: learning, semanticThreshold: semanticThreshold}
}

// Match runs all three tiers against transcript and returns the final
// Yes/No verdict, the winning candidate's confidence (nil if verdict is No),
// and every candidate produced across tiers, sorted by descending
// confidence.
func (m *Matcher) Match(ctx context.Context, transcript string) (domain.Verdict, *float64, []Candidate) {
	snap := m.repo.snap.Load()

	exact := matchExact(transcript, snap.byCategory)

	exactPhrases := make(map[string]bool, len(exact))
	for _, c := range exact {
		exactPhrases[strings.ToLower(c.Phrase)] = true
	}

	var candidates []Candidate
	candidates = append(candidates, exact...)

	semanticHits, err := matchSemantic(ctx, transcript, snap, m.emb, m.semanticThreshold, exactPhrases)
	if err == nil {
		for _, hit := range semanticHits {
			candidates = append(candidates, hit.Candidate)
			if m.learning != nil {
				_ = m.learning.Observe(ctx, hit.Candidate.Category, hit.Candidate.Phrase, hit.Candidate.Confidence, hit.Chunk)
			}
		}
	}

	if llmCandidate, err := matchLLM(ctx, transcript, m.cls, candidates); err == nil && llmCandidate != nil {
		candidates = append(candidates, *llmCandidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	if len(candidates) == 0 {
		return domain.VerdictNo, nil, candidates
	}
	best := candidates[0].Confidence
	return domain.VerdictYes, &best, candidates
}
