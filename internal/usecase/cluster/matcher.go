package cluster

import (
	"log/slog"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/metrics"
)

// Thresholds for the ordered match-rule chain. Strong match requires at or
// above StrongThreshold title similarity; below RejectFloor the candidate
// is never considered a match regardless of keyword/entity overlap.
const (
	StrongThreshold  = 0.75
	RejectFloor      = 0.35
	MinKeywordShared = 5
	MinEntityShared  = 2
)

// MatchRule names which rule in the ordered chain decided a comparison.
type MatchRule string

const (
	RuleStrong      MatchRule = "strong"
	RuleRejectFloor MatchRule = "reject_floor"
	RuleModerate    MatchRule = "moderate"
	RuleEntity      MatchRule = "entity"
	RuleNoMatch     MatchRule = "no_match"
)

// Decision records the outcome of comparing one scored entry against one
// existing cluster, including the diagnostic values behind the outcome.
type Decision struct {
	Rule           MatchRule
	Matched        bool
	Similarity     float64
	KeywordOverlap int
	EntityOverlap  int
}

// Evaluate runs the ordered match-rule chain for candidate against
// existing, in this fixed order:
//
//  1. Strong: title similarity >= StrongThreshold always matches.
//  2. Reject floor: title similarity < RejectFloor never matches, no
//     matter how much keyword/entity overlap follows.
//  3. Moderate: title similarity >= RejectFloor AND keyword overlap >=
//     MinKeywordShared matches.
//  4. Entity: title similarity >= RejectFloor AND entity overlap >=
//     MinEntityShared matches.
//
// Anything else is a no-match; the caller should seed a new cluster.
func Evaluate(candidateTitle string, candidateKeywords, candidateEntities map[string]struct{}, existing *entity.EventCluster) Decision {
	sim := TitleSimilarity(candidateTitle, existing.CanonicalTitle)
	kwOverlap := SetOverlapCount(candidateKeywords, existing.KeywordSet)
	entOverlap := SetOverlapCount(candidateEntities, existing.EntitySet)

	d := Decision{Similarity: sim, KeywordOverlap: kwOverlap, EntityOverlap: entOverlap}

	switch {
	case sim >= StrongThreshold:
		d.Rule, d.Matched = RuleStrong, true
	case sim < RejectFloor:
		d.Rule, d.Matched = RuleRejectFloor, false
	case kwOverlap >= MinKeywordShared:
		d.Rule, d.Matched = RuleModerate, true
	case entOverlap >= MinEntityShared:
		d.Rule, d.Matched = RuleEntity, true
	default:
		d.Rule, d.Matched = RuleNoMatch, false
	}

	slog.Debug("cluster match evaluated",
		slog.String("rule", string(d.Rule)),
		slog.Bool("matched", d.Matched),
		slog.Float64("similarity", d.Similarity),
		slog.Int("keyword_overlap", d.KeywordOverlap),
		slog.Int("entity_overlap", d.EntityOverlap),
		slog.String("cluster_id", existing.ID))

	if d.Matched {
		metrics.RecordClusterMatch(string(d.Rule))
	}

	return d
}

// BestMatch evaluates candidate against every cluster in actives and
// returns the one with the highest title similarity among those that
// match, regardless of which rule in the chain matched it; ties are
// broken by most recently seen.
func BestMatch(candidateTitle string, candidateKeywords, candidateEntities map[string]struct{}, actives []*entity.EventCluster) (*entity.EventCluster, Decision) {
	var best *entity.EventCluster
	var bestDecision Decision

	for _, c := range actives {
		d := Evaluate(candidateTitle, candidateKeywords, candidateEntities, c)
		if !d.Matched {
			continue
		}
		if best == nil || d.Similarity > bestDecision.Similarity ||
			(d.Similarity == bestDecision.Similarity && c.LastSeen.After(best.LastSeen)) {
			best, bestDecision = c, d
		}
	}

	if best == nil {
		metrics.RecordClusterMatch("new_cluster")
	}
	return best, bestDecision
}
