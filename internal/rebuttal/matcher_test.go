package rebuttal

import (
	"context"
	"testing"

	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/pkg/provider/classifier"
	classifiermock "github.com/MrWong99/callaudit/pkg/provider/classifier/mock"
	"github.com/MrWong99/callaudit/pkg/provider/embedder/mock"
	storemock "github.com/MrWong99/callaudit/pkg/store/mock"
)

func TestMatcher_Match_ExactHitWinsWithoutClassifier(t *testing.T) {
	t.Parallel()

	repo := NewRepository(&storemock.Store{}, &mock.Provider{}, nil)
	m := NewMatcher(repo, &mock.Provider{}, nil, nil, 0.8)

	verdict, confidence, candidates := m.Match(context.Background(), "sure, can i follow up with you next week")
	if verdict != domain.VerdictYes {
		t.Fatalf("want Yes, got %v", verdict)
	}
	if confidence == nil || *confidence != 1 {
		t.Fatalf("want full confidence for an exact hit, got %v", confidence)
	}
	if len(candidates) == 0 || candidates[0].Tier != TierExact {
		t.Fatalf("want the winning candidate from Tier 1, got %+v", candidates)
	}
}

func TestMatcher_Match_NoCandidatesIsNo(t *testing.T) {
	t.Parallel()

	repo := NewRepository(&storemock.Store{}, &mock.Provider{}, nil)
	m := NewMatcher(repo, &mock.Provider{}, nil, nil, 0.9)

	verdict, confidence, candidates := m.Match(context.Background(), "hello there how are you")
	if verdict != domain.VerdictNo {
		t.Fatalf("want No, got %v", verdict)
	}
	if confidence != nil {
		t.Fatalf("want nil confidence for a No verdict, got %v", *confidence)
	}
	if len(candidates) != 0 {
		t.Fatalf("want no candidates, got %+v", candidates)
	}
}

func TestMatcher_Match_ReportsSemanticHitsToLearningStore(t *testing.T) {
	t.Parallel()

	// Force a semantic hit by embedding every catalogue phrase and the
	// transcript chunk to the same direction, above the matcher's threshold.
	emb := &mock.Provider{EncodeResult: [][]float32{{1, 0}}}
	repo := NewRepository(&storemock.Store{}, emb, nil)
	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	learning := &fakeLearningStore{}
	m := NewMatcher(repo, emb, nil, learning, 0.5)

	_, _, candidates := m.Match(context.Background(), "something unrelated with no exact phrase at all")
	foundSemantic := false
	for _, c := range candidates {
		if c.Tier == TierSemantic {
			foundSemantic = true
		}
	}
	if !foundSemantic {
		t.Fatalf("want at least one semantic candidate, got %+v", candidates)
	}
	if learning.calls == 0 {
		t.Fatalf("want the semantic hit reported to the learning store")
	}
}

func TestMatcher_Match_Tier3FillsInWhenNoOtherCandidate(t *testing.T) {
	t.Parallel()

	repo := NewRepository(&storemock.Store{}, &mock.Provider{}, nil)
	cls := &classifiermock.Provider{Result: classifier.Result{IsRebuttal: true, Confidence: 0.6, Reasoning: "complex objection handling"}}
	m := NewMatcher(repo, &mock.Provider{}, cls, nil, 0.9)

	verdict, confidence, candidates := m.Match(context.Background(), "a transcript with nothing in the seed catalogue")
	if verdict != domain.VerdictYes {
		t.Fatalf("want Yes from the Tier 3 fallback, got %v", verdict)
	}
	if confidence == nil || *confidence != 0.6 {
		t.Fatalf("want confidence 0.6, got %v", confidence)
	}
	if len(candidates) != 1 || candidates[0].Tier != TierLLM {
		t.Fatalf("want a single Tier 3 candidate, got %+v", candidates)
	}
}

func TestNewMatcher_ClampsSemanticThreshold(t *testing.T) {
	t.Parallel()

	repo := NewRepository(&storemock.Store{}, &mock.Provider{}, nil)
	low := NewMatcher(repo, nil, nil, nil, 0.1)
	high := NewMatcher(repo, nil, nil, nil, 0.99)

	if low.semanticThreshold != 0.5 {
		t.Errorf("want low threshold clamped to 0.5, got %v", low.semanticThreshold)
	}
	if high.semanticThreshold != 0.9 {
		t.Errorf("want high threshold clamped to 0.9, got %v", high.semanticThreshold)
	}
}

type fakeLearningStore struct {
	calls int
}

func (f *fakeLearningStore) Observe(ctx context.Context, category, phrase string, confidence float64, sampleContext string) error {
	f.calls++
	return nil
}
