package cluster

import "strings"

// significanceKeywords is the tunable list of domain-significant terms the
// keyword-overlap (Moderate) match rule counts against. It is deliberately
// a package-level var, not a const, so an operator can extend it for a
// deployment without touching the matching logic itself.
var significanceKeywords = map[string]struct{}{
	"earthquake": {}, "quake": {}, "tsunami": {}, "flood": {}, "wildfire": {},
	"hurricane": {}, "typhoon": {}, "cyclone": {}, "drought": {}, "eruption": {},
	"war": {}, "invasion": {}, "ceasefire": {}, "coup": {}, "election": {},
	"referendum": {}, "sanctions": {}, "treaty": {}, "summit": {}, "strike": {},
	"protest": {}, "riot": {}, "assassination": {}, "indictment": {}, "verdict": {},
	"bankruptcy": {}, "merger": {}, "acquisition": {}, "ipo": {}, "recession": {},
	"inflation": {}, "tariff": {}, "layoffs": {}, "default": {}, "bailout": {},
	"outbreak": {}, "pandemic": {}, "vaccine": {}, "recall": {}, "explosion": {},
	"crash": {}, "collision": {}, "derailment": {}, "shooting": {}, "attack": {},
	"hostage": {}, "hijack": {}, "championship": {}, "final": {}, "record": {},
	"launch": {}, "breakthrough": {}, "discovery": {}, "resignation": {}, "impeachment": {},
}

// ExtractKeywords returns the subset of title that appears in the
// significance keyword list, lowercased and deduplicated. It is the
// keyword-overlap rule's input and also feeds EventCluster.KeywordSet.
func ExtractKeywords(title string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(title)) {
		word = strings.Trim(word, ".,;:!?\"'()[]{}")
		if _, ok := significanceKeywords[word]; ok {
			set[word] = struct{}{}
		}
	}
	return set
}

// RegisterSignificanceKeyword adds a term to the tunable keyword list at
// start-up, e.g. from an operator-supplied configuration file.
func RegisterSignificanceKeyword(word string) {
	significanceKeywords[strings.ToLower(word)] = struct{}{}
}
