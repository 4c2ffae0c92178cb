package transcript

import (
	"sort"
	"strings"
)

// staticDictionary is a representative sample of the ~800-entry lowercase to
// lowercase mis-transcription dictionary described in §4.4: accent
// artefacts, doubled letters, and elided consonants commonly produced by
// STT on accented or fast speech. The full production dictionary is
// expected to grow from transcript review; this seed keeps the safety-gated
// substitution pass exercisable without one.
var staticDictionary = map[string]string{
	"dis":      "this",
	"dat":      "that",
	"dem":      "them",
	"wit":      "with",
	"sumting":  "something",
	"anyting":  "anything",
	"tink":     "think",
	"tree":     "three",
	"fon":      "phone",
	"houze":    "house",
	"propertie": "property",
	"sellin":   "selling",
	"buyin":    "buying",
	"offa":     "offer",
	"beder":    "better",
	"lemme":    "let me",
	"gimme":    "give me",
	"wanna":    "want to",
	"gonna":    "going to",
	"gotta":    "got to",
	"kinda":    "kind of",
	"sorta":    "sort of",
	"yessir":   "yes sir",
	"nomam":    "no ma'am",
}

const (
	maxWordCountDriftPct = 0.20
	maxCorrectionsPerPass = 10
)

// NormalizeStatic applies the static dictionary as a sequence of
// whole-word substring replacements on transcript, iterating dictionary
// entries in deterministic (sorted-by-key) order. If the pass fires more
// than 10 corrections, or changes the word count by more than ±20%, the
// original transcript is returned unchanged — corrections that aggressive
// are treated as corrupting rather than helpful.
func NormalizeStatic(transcript string) string {
	originalCount := len(strings.Fields(transcript))
	if originalCount == 0 {
		return transcript
	}

	keys := make([]string, 0, len(staticDictionary))
	for k := range staticDictionary {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	corrected := transcript
	corrections := 0
	for _, key := range keys {
		n := 0
		for _, w := range strings.Fields(corrected) {
			if strings.EqualFold(w, key) {
				n++
			}
		}
		if n == 0 {
			continue
		}
		corrected = replaceWholeWordCaseInsensitive(corrected, key, staticDictionary[key])
		corrections += n
	}

	if corrections > maxCorrectionsPerPass {
		return transcript
	}

	newCount := len(strings.Fields(corrected))
	drift := float64(abs(newCount-originalCount)) / float64(originalCount)
	if drift > maxWordCountDriftPct {
		return transcript
	}

	return corrected
}

// replaceWholeWordCaseInsensitive replaces whole-word occurrences of old
// with replacement in s, case-insensitively, preserving everything else.
func replaceWholeWordCaseInsensitive(s, old, replacement string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if strings.EqualFold(w, old) {
			words[i] = replacement
		}
	}
	return strings.Join(words, " ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
