package learning

import "strings"

const (
	minPhraseChars  = 3
	maxPhraseWords  = 20
	maxPhraseChars  = 200
)

var politeClosings = []string{
	"thank you", "thanks for your time", "have a good one", "have a great day",
	"have a nice day", "enjoy your day", "bye", "goodbye", "talk to you later",
	"take care",
}

var contentTokens = []string{
	"sell", "selling", "buyer", "buying", "offer", "price", "property", "house",
	"home", "future",
}

// normalizePhrase truncates phrase to maxPhraseWords words / maxPhraseChars
// characters, per the §4.7 pre-filter truncation rule.
func normalizePhrase(phrase string) string {
	words := strings.Fields(phrase)
	if len(words) > maxPhraseWords {
		words = words[:maxPhraseWords]
	}
	truncated := strings.Join(words, " ")
	if len(truncated) > maxPhraseChars {
		truncated = truncated[:maxPhraseChars]
	}
	return truncated
}

// rejectSilently reports whether phrase should be dropped before ever
// reaching the pending queue: too short, or a pure polite closing with no
// content tokens.
func rejectSilently(phrase string) bool {
	trimmed := strings.TrimSpace(phrase)
	if len(trimmed) < minPhraseChars {
		return true
	}
	return isPoliteClosingOnly(trimmed)
}

func isPoliteClosingOnly(phrase string) bool {
	lower := strings.ToLower(phrase)

	hasClosing := false
	for _, c := range politeClosings {
		if strings.Contains(lower, c) {
			hasClosing = true
			break
		}
	}
	if !hasClosing {
		return false
	}

	for _, t := range contentTokens {
		if strings.Contains(lower, t) {
			return false
		}
	}
	return true
}
