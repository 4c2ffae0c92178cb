package rebuttal

import "strings"

// matchExact runs Tier 1: for every (category, phrase) in the repository,
// normalize both sides and test substring containment. Confidence is
// wordOverlap(phrase, transcript) / wordCount(phrase), clipped to [0, 1].
func matchExact(transcript string, byCategory map[string][]string) []Candidate {
	normTranscript := normalize(transcript)

	var candidates []Candidate
	for category, phrases := range byCategory {
		for _, phrase := range phrases {
			normPhrase := normalize(phrase)
			if normPhrase == "" || !strings.Contains(normTranscript, normPhrase) {
				continue
			}

			wordCount := len(strings.Fields(normPhrase))
			if wordCount == 0 {
				continue
			}
			confidence := clip01(float64(wordOverlap(normPhrase, normTranscript)) / float64(wordCount))

			candidates = append(candidates, Candidate{
				Tier:       TierExact,
				Category:   category,
				Phrase:     phrase,
				Confidence: confidence,
			})
		}
	}
	return candidates
}
