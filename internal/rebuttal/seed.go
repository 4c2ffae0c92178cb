package rebuttal

// seedPhrases is the static, built-in starter catalogue loaded by every
// Repository regardless of what the store has learned. Categories match the
// built-ins named in §4.6; the full production dictionary numbers in the
// hundreds and is expected to live in the store, but these seed a fresh
// deployment and keep the matcher's round-trip invariant testable without a
// database.
var seedPhrases = map[string][]string{
	"other-property": {
		"do you have any other property you might want to sell",
		"any other properties in your portfolio",
		"what about your other real estate holdings",
	},
	"future-consideration": {
		"would you consider selling in the future",
		"maybe down the road you'd think about it",
		"if not now, when would be a better time",
	},
	"callback-schedule": {
		"can i follow up with you next week",
		"when would be a good time to call back",
		"let's schedule a time to talk again",
	},
	"would-consider": {
		"would you consider an offer",
		"is there a price that would change your mind",
		"what would it take for you to consider selling",
	},
	"we-buy-offer": {
		"we can make a cash offer today",
		"we buy houses as-is no repairs needed",
		"we can close in as little as two weeks",
	},
	"flexible-convenient": {
		"we can work around your schedule",
		"whatever is most convenient for you",
		"we're flexible on the closing date",
	},
	"mixed-future-other": {
		"maybe another property down the line",
		"if your situation changes give us a call",
	},
}
