package cluster

import (
	"strings"
	"unicode"
)

// stopWords are common capitalised sentence-leading words that are not
// named entities; excluding them keeps ExtractEntities from treating every
// title's first word as an entity candidate.
var stopWords = map[string]struct{}{
	"The": {}, "A": {}, "An": {}, "In": {}, "On": {}, "At": {}, "For": {},
	"Is": {}, "Are": {}, "Was": {}, "Were": {}, "How": {}, "Why": {}, "What": {},
}

// ExtractEntities pulls capitalised-word runs out of title as a lightweight
// stand-in for named-entity recognition: no NER model is part of this
// stack, so consecutive capitalised tokens (runs of "Gaziantep", "New
// York") are treated as entity candidates. This trades recall for a
// dependency-free, deterministic signal the Entity match rule can compare
// across clusters without calling out to any external service.
func ExtractEntities(title string) map[string]struct{} {
	set := make(map[string]struct{})
	fields := strings.Fields(title)

	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		phrase := strings.Join(run, " ")
		if _, stop := stopWords[phrase]; !stop {
			set[phrase] = struct{}{}
		}
		run = nil
	}

	for _, word := range fields {
		trimmed := strings.Trim(word, ".,;:!?\"'()[]{}")
		if trimmed == "" {
			flush()
			continue
		}
		r := []rune(trimmed)
		if unicode.IsUpper(r[0]) {
			if _, stop := stopWords[trimmed]; stop && len(run) == 0 {
				continue
			}
			run = append(run, trimmed)
		} else {
			flush()
		}
	}
	flush()

	return set
}
