// Package learning implements the PhraseLearningStore (§4.7): the write-path
// pipeline that turns Tier-2 semantic-matcher hits into approved phrases.
package learning

import (
	"regexp"
	"strings"
	"time"
)

// fillerWords are stripped when computing a phrase's canonical form, along
// with the two-word fillers below.
var fillerWords = map[string]bool{
	"okay": true, "ok": true, "well": true, "so": true, "um": true, "uh": true,
	"like": true, "actually": true, "basically": true, "literally": true,
	"really": true, "very": true, "just": true,
}

var fillerPhrases = []string{"you know", "i mean"}

var whitespaceRe = regexp.MustCompile(`\s+`)

// canonicalForm lowercases phrase, strips filler words/phrases, and
// collapses whitespace.
func canonicalForm(phrase string) string {
	s := strings.ToLower(phrase)
	for _, fp := range fillerPhrases {
		s = strings.ReplaceAll(s, fp, " ")
	}

	words := strings.Fields(s)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if fillerWords[w] {
			continue
		}
		kept = append(kept, w)
	}
	return whitespaceRe.ReplaceAllString(strings.Join(kept, " "), " ")
}

// qualityScore computes the weighted, non-ML quality score for a pending
// phrase row.
func qualityScore(confidence float64, detectionCount int, lastSeenAt time.Time, sampleContextsLen int, now time.Time) float64 {
	daysSinceLastSeen := now.Sub(lastSeenAt).Hours() / 24

	detectionTerm := float64(detectionCount) / 10
	if detectionTerm > 1 {
		detectionTerm = 1
	}

	recencyTerm := 1 - daysSinceLastSeen/30
	if recencyTerm < 0 {
		recencyTerm = 0
	}

	contextTerm := float64(sampleContextsLen) / 500
	if contextTerm > 1 {
		contextTerm = 1
	}

	return 0.50*confidence + 0.25*detectionTerm + 0.15*recencyTerm + 0.10*contextTerm
}
