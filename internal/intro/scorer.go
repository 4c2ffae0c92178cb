// Package intro implements the six-check IntroScorer (§4.8): a set of
// boolean heuristics evaluated over the agent-channel transcript plus the
// Releasing/Late-Hello/Rebuttal detector verdicts for the same call.
package intro

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"

	"github.com/MrWong99/callaudit/internal/domain"
)

// introWindowChars is how much of the (lowercased) transcript the
// intro-specific checks (agent intro, owner name, property reference)
// examine — the opening of the call, per §4.8.
const introWindowChars = 450

// nameLevenshteinRatio is the minimum Levenshtein similarity ratio (in
// percent) between a candidate introduction token and the agent's known
// name for the agent-intro check to count as a name match.
const nameLevenshteinRatio = 75

var introPatternRe = regexp.MustCompile(`\b(?:this is|my name is|i'm|i am|it's|it is)\s+([a-z]+)\b`)

var respectfulAddresses = []string{"ma'am", "sir", "madam", "miss", "mister"}

var greetingRe = regexp.MustCompile(`\b(?:hi|hello|hey|good morning|good afternoon|good evening)\s+([a-z]+)\b`)

var propertyKeywords = []string{
	"property", "house", "home", "apartment", "condo", "land", "address",
	"street", "avenue", "road", "drive", "lane", "way", "place", "court",
	"circle", "boulevard", "parkway", "highway", "route",
}

var numericStreetRe = regexp.MustCompile(`\b\d{1,6}\s+[a-z]+`)

// Score evaluates all six checks and returns the populated domain.IntroScores.
// transcript is the full agent-channel transcript; agentName is the call
// metadata's parsed agent name (may be empty, in which case the agent-intro
// check falls back to "any plausible non-filler noun").
func Score(transcript, agentName string, releasing, lateHello, rebuttal domain.Verdict) domain.IntroScores {
	lower := strings.ToLower(transcript)
	window := lower
	if len(window) > introWindowChars {
		window = window[:introWindowChars]
	}

	return domain.IntroScores{
		AgentIntro:        checkAgentIntro(window, agentName),
		OwnerName:         checkOwnerName(window),
		PropertyMentioned: checkPropertyReference(window),
		RebuttalUsed:      verdictCheck(rebuttal == domain.VerdictYes),
		LateHelloAbsent:   verdictCheck(lateHello == domain.VerdictNo),
		ReleasingAbsent:   verdictCheck(releasing == domain.VerdictNo),
	}
}

func verdictCheck(yes bool) domain.IntroCheck {
	if yes {
		return domain.IntroCheck{Display: domain.VerdictYes, Score: 100}
	}
	return domain.IntroCheck{Display: domain.VerdictNo, Score: 0}
}

// checkAgentIntro looks for an introduction pattern ("this is X", "my name
// is X", ...) where X is within nameLevenshteinRatio of agentName, or,
// failing a name match, any plausible non-filler noun at least 3 characters
// long.
func checkAgentIntro(window, agentName string) domain.IntroCheck {
	matches := introPatternRe.FindAllStringSubmatch(window, -1)
	if len(matches) == 0 {
		return domain.IntroCheck{Display: domain.VerdictNo, Score: 0}
	}

	lowerAgent := strings.ToLower(agentName)
	for _, m := range matches {
		candidate := m[1]
		if lowerAgent != "" {
			if levenshteinRatio(candidate, lowerAgent) >= nameLevenshteinRatio {
				return domain.IntroCheck{Display: domain.VerdictYes, Score: 100}
			}
			continue
		}
		if len(candidate) >= 3 && !isFillerWord(candidate) {
			return domain.IntroCheck{Display: domain.VerdictYes, Score: 100}
		}
	}
	return domain.IntroCheck{Display: domain.VerdictNo, Score: 0}
}

// levenshteinRatio converts matchr's raw edit distance into a 0-100
// similarity percentage relative to the longer of the two strings.
func levenshteinRatio(a, b string) int {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	dist := matchr.Levenshtein(a, b)
	ratio := 100 - (dist*100)/maxLen
	if ratio < 0 {
		return 0
	}
	return ratio
}

var fillerWords = map[string]bool{
	"the": true, "and": true, "you": true, "are": true, "was": true,
	"calling": true, "from": true, "with": true, "today": true, "just": true,
}

func isFillerWord(w string) bool {
	return fillerWords[w]
}

// checkOwnerName reports a respectful address or a greeting followed by a
// plausible (non-stop-listed) name token.
func checkOwnerName(window string) domain.IntroCheck {
	for _, addr := range respectfulAddresses {
		if strings.Contains(window, addr) {
			return domain.IntroCheck{Display: domain.VerdictYes, Score: 100}
		}
	}

	matches := greetingRe.FindAllStringSubmatch(window, -1)
	for _, m := range matches {
		candidate := m[1]
		if len(candidate) >= 2 && !greetingStopWords[candidate] {
			return domain.IntroCheck{Display: domain.VerdictYes, Score: 100}
		}
	}
	return domain.IntroCheck{Display: domain.VerdictNo, Score: 0}
}

// checkPropertyReference reports any property-related keyword appearing as
// a whole word, or a numeric street address pattern ("123 main").
func checkPropertyReference(window string) domain.IntroCheck {
	words := strings.FieldsFunc(window, func(r rune) bool { return !unicode.IsLetter(r) })
	for _, w := range words {
		if slices.Contains(propertyKeywords, w) {
			return domain.IntroCheck{Display: domain.VerdictYes, Score: 100}
		}
	}
	if numericStreetRe.MatchString(window) {
		return domain.IntroCheck{Display: domain.VerdictYes, Score: 100}
	}
	return domain.IntroCheck{Display: domain.VerdictNo, Score: 0}
}
