package rebuttal

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrWong99/callaudit/pkg/provider/classifier"
)

// categoryLLMComplexCase is the category assigned to any Tier-3 LLM hit;
// it has no phrase-catalogue counterpart since the LLM evaluates the whole
// transcript rather than matching a known phrase.
const categoryLLMComplexCase = "LLAMA_COMPLEX_CASE"

// tier3Confidence is the best-confidence-so-far floor below which Tier 3 is
// still worth invoking even when Tiers 1-2 produced a candidate.
const tier3Confidence = 0.70

// matchLLM runs Tier 3 iff bestSoFar is empty (no candidates yet) or its
// confidence is below tier3Confidence. A failed or unavailable classifier
// degrades the matcher rather than failing it: the error is swallowed and no
// candidate is returned.
func matchLLM(ctx context.Context, transcript string, cls classifier.Provider, bestSoFar []Candidate) (*Candidate, error) {
	if cls == nil {
		return nil, nil
	}
	if !shouldInvokeTier3(bestSoFar) {
		return nil, nil
	}

	result, err := cls.ClassifyRebuttal(ctx, transcript)
	if err != nil {
		if errors.Is(err, classifier.ErrUnavailable) {
			return nil, nil
		}
		return nil, fmt.Errorf("rebuttal: tier3: classify: %w", err)
	}
	if !result.IsRebuttal {
		return nil, nil
	}

	return &Candidate{
		Tier:        TierLLM,
		Category:    categoryLLMComplexCase,
		Confidence:  clip01(result.Confidence),
		MatchedText: result.Reasoning,
	}, nil
}

func shouldInvokeTier3(candidates []Candidate) bool {
	if len(candidates) == 0 {
		return true
	}
	best := candidates[0].Confidence
	for _, c := range candidates[1:] {
		if c.Confidence > best {
			best = c.Confidence
		}
	}
	return best < tier3Confidence
}
