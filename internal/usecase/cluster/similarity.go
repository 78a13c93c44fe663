// Package cluster implements the Clusterer stage: it decides whether a
// newly scored entry belongs to an existing EventCluster or seeds a new
// one, using an ordered chain of title-similarity, keyword-overlap, and
// entity-overlap rules.
package cluster

import (
	"strings"
)

// TitleSimilarity measures how alike two titles are as a character-trigram
// Jaccard index over their lowercased, whitespace-normalised forms. Titles
// shorter than three characters (after normalisation) compare as an exact
// match (1.0) or total mismatch (0.0).
//
// Trigrams were chosen over whole-word token Jaccard because headline
// titles are short — often 6-10 words — where token overlap swings in
// large, discontinuous steps near the 0.35/0.75 decision boundaries a
// single differing word can flip a match. Character trigrams degrade
// gracefully for paraphrased titles ("Quake hits Gaziantep" vs "Earthquake
// strikes Gaziantep") since most of the substring structure still overlaps.
func TitleSimilarity(a, b string) float64 {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == nb {
		return 1.0
	}
	setA, setB := trigramSet(na), trigramSet(nb)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	return jaccard(setA, setB)
}

func normalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func trigramSet(s string) map[string]struct{} {
	runes := []rune(s)
	set := make(map[string]struct{})
	if len(runes) < 3 {
		if len(runes) > 0 {
			set[string(runes)] = struct{}{}
		}
		return set
	}
	for i := 0; i+3 <= len(runes); i++ {
		set[string(runes[i:i+3])] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// SetOverlapCount returns the number of elements shared between two sets,
// used for both keyword-overlap and entity-overlap counting.
func SetOverlapCount(a, b map[string]struct{}) int {
	count := 0
	for k := range a {
		if _, ok := b[k]; ok {
			count++
		}
	}
	return count
}
