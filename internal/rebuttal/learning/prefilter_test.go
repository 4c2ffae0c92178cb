package learning

import (
	"strings"
	"testing"
)

func TestNormalizePhrase_TruncatesWordsAndChars(t *testing.T) {
	t.Parallel()

	words := make([]string, 25)
	for i := range words {
		words[i] = "word"
	}
	got := normalizePhrase(strings.Join(words, " "))
	if n := len(strings.Fields(got)); n != maxPhraseWords {
		t.Fatalf("want truncated to %d words, got %d", maxPhraseWords, n)
	}

	long := strings.Repeat("a", maxPhraseChars+50)
	if got := normalizePhrase(long); len(got) != maxPhraseChars {
		t.Fatalf("want truncated to %d chars, got %d", maxPhraseChars, len(got))
	}
}

func TestRejectSilently_TooShort(t *testing.T) {
	t.Parallel()

	if !rejectSilently("hi") {
		t.Error("want a phrase shorter than minPhraseChars rejected")
	}
	if rejectSilently("hello there") {
		t.Error("want a phrase clearing minPhraseChars kept")
	}
}

func TestRejectSilently_PoliteClosingOnly(t *testing.T) {
	t.Parallel()

	if !rejectSilently("thanks for your time, take care") {
		t.Error("want a pure polite closing rejected")
	}
	if rejectSilently("thanks for your time, but what about the price") {
		t.Error("want a closing with a content token kept")
	}
}

func TestIsPoliteClosingOnly(t *testing.T) {
	t.Parallel()

	if !isPoliteClosingOnly("have a great day") {
		t.Error("want a bare closing phrase detected")
	}
	if isPoliteClosingOnly("let's talk about the offer") {
		t.Error("want a non-closing phrase not flagged")
	}
}
