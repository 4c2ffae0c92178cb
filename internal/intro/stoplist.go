package intro

// greetingStopWords excludes common non-name tokens that would otherwise
// false-positive the owner-name greeting pattern ("hi there", "hello
// everyone", ...). Not exhaustive, but covers the filler/pronoun/connective
// words that actually show up after a greeting in call transcripts.
var greetingStopWords = map[string]bool{
	"there": true, "everyone": true, "again": true, "folks": true,
	"guys": true, "all": true, "team": true, "friend": true,
	"sir": true, "maam": true, "miss": true, "sorry": true, "thanks": true,
	"thank": true, "yes": true, "no": true, "okay": true, "ok": true,
	"well": true, "so": true, "um": true, "uh": true, "like": true,
	"this": true, "that": true, "these": true, "those": true,
	"i": true, "im": true, "my": true, "me": true, "you": true, "your": true,
	"yours": true, "we": true, "our": true, "us": true, "it": true, "its": true,
	"he": true, "she": true, "they": true, "them": true, "their": true,
	"is": true, "am": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"if": true, "then": true, "than": true, "as": true, "at": true,
	"by": true, "for": true, "from": true, "in": true, "into": true,
	"of": true, "on": true, "to": true, "with": true, "about": true,
	"today": true, "tonight": true, "morning": true, "afternoon": true,
	"evening": true, "calling": true, "call": true, "speaking": true,
	"good": true, "great": true, "how": true, "doing": true,
	"there's": true, "what's": true, "name": true, "property": true,
	"house": true, "home": true, "just": true, "really": true,
	"very": true, "actually": true, "basically": true, "literally": true,
	"mister": true, "mrs": true, "mr": true, "ms": true, "dr": true,
}
