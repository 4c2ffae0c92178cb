package transcript

import (
	"context"
	"strings"

	"github.com/MrWong99/callaudit/internal/domain"
)

// CorrectionPipeline is the phonetic-only implementation of [Pipeline]: it
// runs a [PhoneticMatcher] over n-gram windows of the transcript text,
// preferring the longest vocabulary match at each position.
//
// CorrectionPipeline is safe for concurrent use.
type CorrectionPipeline struct {
	matcher PhoneticMatcher
}

// Ensure CorrectionPipeline satisfies the Pipeline interface at compile time.
var _ Pipeline = (*CorrectionPipeline)(nil)

// NewPipeline constructs a [CorrectionPipeline] backed by matcher. A nil
// matcher makes every call to Correct a no-op that returns the transcript
// text unchanged.
func NewPipeline(matcher PhoneticMatcher) *CorrectionPipeline {
	return &CorrectionPipeline{matcher: matcher}
}

// Correct applies phonetic vocabulary correction to transcript and returns a
// [CorrectedTranscript].
//
// The algorithm tokenises the transcript text, determines the maximum word
// count across vocabulary entries, and at each token position tries n-gram
// windows from that maximum down to 1, accepting the longest match so that
// multi-word vocabulary entries take precedence over partial single-word
// matches.
func (p *CorrectionPipeline) Correct(
	ctx context.Context,
	t domain.Transcript,
	vocabulary []string,
) (*CorrectedTranscript, error) {
	result := &CorrectedTranscript{
		Original:    t,
		Corrected:   t.Text,
		Corrections: []Correction{},
	}

	if p.matcher == nil || len(vocabulary) == 0 {
		return result, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	correctedText, corrections := p.applyPhonetic(t.Text, vocabulary)
	result.Corrected = correctedText
	result.Corrections = append(result.Corrections, corrections...)

	return result, nil
}

// applyPhonetic runs the phonetic matching stage over text and returns the
// corrected text alongside the list of corrections applied.
func (p *CorrectionPipeline) applyPhonetic(text string, vocabulary []string) (string, []Correction) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return text, nil
	}

	maxWords := maxWordCount(vocabulary)
	if maxWords == 0 {
		return text, nil
	}

	var output []string
	var corrections []Correction

	i := 0
	for i < len(tokens) {
		maxN := maxWords
		if i+maxN > len(tokens) {
			maxN = len(tokens) - i
		}

		matched := false
		for n := maxN; n >= 1; n-- {
			window := strings.Join(tokens[i:i+n], " ")
			entry, conf, ok := p.matcher.Match(window, vocabulary)
			if !ok {
				continue
			}

			output = append(output, strings.Fields(entry)...)
			corrections = append(corrections, Correction{
				Original:   window,
				Corrected:  entry,
				Confidence: conf,
			})
			i += n
			matched = true
			break
		}

		if !matched {
			output = append(output, tokens[i])
			i++
		}
	}

	return strings.Join(output, " "), corrections
}

// maxWordCount returns the maximum number of whitespace-separated words in
// any vocabulary entry. Returns 1 when vocabulary is empty.
func maxWordCount(vocabulary []string) int {
	max := 1
	for _, v := range vocabulary {
		n := len(strings.Fields(v))
		if n > max {
			max = n
		}
	}
	return max
}
