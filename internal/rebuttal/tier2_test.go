package rebuttal

import (
	"context"
	"testing"

	"github.com/MrWong99/callaudit/pkg/provider/embedder/mock"
)

func TestMatchSemantic_AboveThresholdProducesHit(t *testing.T) {
	t.Parallel()

	snap := &snapshot{
		flat:       []phraseRef{{Category: "callback-schedule", Phrase: "can i follow up next week"}},
		embeddings: [][]float32{{1, 0}},
	}
	emb := &mock.Provider{EncodeResult: [][]float32{{1, 0}}}

	hits, err := matchSemantic(context.Background(), "sure call me back next week sometime", snap, emb, 0.8, nil)
	if err != nil {
		t.Fatalf("matchSemantic: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("want 1 hit, got %d: %+v", len(hits), hits)
	}
	if hits[0].Candidate.Category != "callback-schedule" || hits[0].Candidate.Tier != TierSemantic {
		t.Errorf("unexpected candidate: %+v", hits[0].Candidate)
	}
}

func TestMatchSemantic_BelowThresholdIsDropped(t *testing.T) {
	t.Parallel()

	snap := &snapshot{
		flat:       []phraseRef{{Category: "callback-schedule", Phrase: "can i follow up next week"}},
		embeddings: [][]float32{{1, 0}},
	}
	emb := &mock.Provider{EncodeResult: [][]float32{{0, 1}}}

	hits, err := matchSemantic(context.Background(), "completely unrelated content here", snap, emb, 0.8, nil)
	if err != nil {
		t.Fatalf("matchSemantic: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("want no hits below threshold, got %+v", hits)
	}
}

func TestMatchSemantic_SkipsPhraseAlreadyMatchedExactly(t *testing.T) {
	t.Parallel()

	snap := &snapshot{
		flat:       []phraseRef{{Category: "callback-schedule", Phrase: "can i follow up next week"}},
		embeddings: [][]float32{{1, 0}},
	}
	emb := &mock.Provider{EncodeResult: [][]float32{{1, 0}}}
	exact := map[string]bool{"can i follow up next week": true}

	hits, err := matchSemantic(context.Background(), "sure call me back next week sometime", snap, emb, 0.8, exact)
	if err != nil {
		t.Fatalf("matchSemantic: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("want the exact-tier phrase excluded from semantic hits, got %+v", hits)
	}
}

func TestMatchSemantic_NilEmbedderIsNoop(t *testing.T) {
	t.Parallel()

	snap := &snapshot{flat: []phraseRef{{Category: "x", Phrase: "y"}}, embeddings: [][]float32{{1}}}
	hits, err := matchSemantic(context.Background(), "anything", snap, nil, 0.8, nil)
	if err != nil || hits != nil {
		t.Fatalf("want (nil, nil) with no embedder, got (%v, %v)", hits, err)
	}
}

func TestMatchSemantic_EmptyCatalogueIsNoop(t *testing.T) {
	t.Parallel()

	snap := &snapshot{}
	emb := &mock.Provider{}
	hits, err := matchSemantic(context.Background(), "anything at all", snap, emb, 0.8, nil)
	if err != nil || hits != nil {
		t.Fatalf("want (nil, nil) with an empty catalogue, got (%v, %v)", hits, err)
	}
}
