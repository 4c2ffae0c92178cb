package rebuttal

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrWong99/callaudit/pkg/provider/embedder"
)

// semanticHit is a Tier-2 match paired with the chunk of transcript that
// produced it, so the caller can report it to the learning pipeline (§4.7)
// without recomputing the match.
type semanticHit struct {
	Candidate Candidate
	Chunk     string
}

// matchSemantic runs Tier 2: chunk the transcript, embed the surviving
// chunks, and compare each against every phrase embedding in snap by cosine
// similarity. A candidate is emitted whenever cosine >= threshold. Semantic
// candidates whose phrase exactly equals an exact-tier candidate's phrase
// are dropped by the caller via exactPhrases.
func matchSemantic(ctx context.Context, transcript string, snap *snapshot, emb embedder.Provider, threshold float64, exactPhrases map[string]bool) ([]semanticHit, error) {
	if emb == nil || len(snap.flat) == 0 {
		return nil, nil
	}

	chunks := chunkTranscript(transcript)
	if len(chunks) == 0 {
		return nil, nil
	}

	chunkVecs, err := emb.Encode(ctx, chunks, 8)
	if err != nil {
		return nil, fmt.Errorf("rebuttal: tier2: encode chunks: %w", err)
	}

	var hits []semanticHit
	for i, chunk := range chunks {
		if i >= len(chunkVecs) {
			break
		}
		chunkVec := chunkVecs[i]

		bestIdx := -1
		bestScore := 0.0
		for j, phraseVec := range snap.embeddings {
			score := cosineSimilarity(chunkVec, phraseVec)
			if score > bestScore {
				bestScore = score
				bestIdx = j
			}
		}
		if bestIdx < 0 || bestScore < threshold {
			continue
		}

		ref := snap.flat[bestIdx]
		if exactPhrases[strings.ToLower(ref.Phrase)] {
			continue
		}

		hits = append(hits, semanticHit{
			Candidate: Candidate{
				Tier:        TierSemantic,
				Category:    ref.Category,
				Phrase:      ref.Phrase,
				Confidence:  clip01(bestScore),
				MatchedText: chunk,
			},
			Chunk: chunk,
		})
	}
	return hits, nil
}
