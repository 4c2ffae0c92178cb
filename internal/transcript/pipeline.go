// Package transcript implements the phonetic accent-correction pass applied
// to agent transcripts before rebuttal matching.
//
// Call-center transcription is frequently thrown off by product names,
// company names, and other proper nouns that a generic STT model has never
// seen. The [Pipeline] resolves these misheard spans by phonetic alignment
// against a known vocabulary list ([PhoneticMatcher]) — fast, dictionary-free,
// in-process, with no network calls.
//
// Each [Correction] records the substitution made, so callers can audit or
// selectively roll back changes. This pass only runs when accent correction
// is enabled in configuration; rebuttal matching itself operates on raw
// transcript text otherwise.
//
// Implementations of both interfaces must be safe for concurrent use.
package transcript

import (
	"context"

	"github.com/MrWong99/callaudit/internal/domain"
)

// Correction captures a single word-level substitution made by the pipeline.
type Correction struct {
	// Original is the word or phrase as produced by the transcriber.
	Original string

	// Corrected is the replacement selected by the pipeline.
	Corrected string

	// Confidence is the pipeline's confidence in this substitution (0.0–1.0).
	Confidence float64
}

// CorrectedTranscript is the output of a [Pipeline.Correct] call. It pairs the
// original [domain.Transcript] with the fully corrected text and an itemised
// record of every substitution that was applied.
type CorrectedTranscript struct {
	// Original is the raw transcript as received from the transcriber.
	Original domain.Transcript

	// Corrected is the full corrected transcript text with all substitutions
	// applied.
	Corrected string

	// Corrections is the ordered list of word-level substitutions applied to
	// produce Corrected. An empty (non-nil) slice means no corrections were
	// necessary.
	Corrections []Correction
}

// Pipeline applies phonetic accent correction to a raw [domain.Transcript]
// against a known vocabulary.
//
// Implementations must be safe for concurrent use.
type Pipeline interface {
	// Correct processes transcript using the provided vocabulary and returns
	// a [CorrectedTranscript] containing the corrected text and an itemised
	// record of every substitution made.
	//
	// vocabulary is the list of known product, company, and person names the
	// pipeline should recognise within the transcript text.
	//
	// Returns a non-nil *CorrectedTranscript on success. When no corrections
	// are needed, Corrected equals transcript.Text and Corrections is an
	// empty (non-nil) slice.
	Correct(ctx context.Context, transcript domain.Transcript, vocabulary []string) (*CorrectedTranscript, error)
}

// PhoneticMatcher resolves a single word or phrase to a known vocabulary
// entry based on pronunciation similarity. No network calls, no LLM
// round-trips.
//
// Implementations must be safe for concurrent use.
type PhoneticMatcher interface {
	// Match attempts to find the vocabulary entry that is most phonetically
	// similar to word.
	//
	// Return values:
	//   corrected  — the best-matching vocabulary entry.
	//   confidence — similarity score in [0.0, 1.0] where 1.0 is a perfect match.
	//   matched    — true when a sufficiently similar entry was found.
	//
	// When matched is false, corrected must equal word unchanged and
	// confidence must be 0.
	Match(word string, vocabulary []string) (corrected string, confidence float64, matched bool)
}
