// Package scorer implements the Scorer stage: it asks the scoring LLM to
// rate a feed entry's newsworthiness and classify it, producing a
// ScoredEntry from a FeedEntry.
package scorer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/llmclient"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/usecase/llm"
)

const systemPrompt = `You are a news editor's assistant. Given a headline and its publishing source, rate the story's newsworthiness and classify it. Respond with a single JSON object only, no commentary, matching exactly this shape:
{"importance": <integer 0-1000>, "category": "<one of world, politics, business, markets, technology, science, health, climate, sports, entertainment, other>", "emoji": "<single emoji character>", "reasoning": "<one sentence>"}`

type scoreResponse struct {
	Importance int    `json:"importance"`
	Category   string `json:"category"`
	Emoji      string `json:"emoji"`
	Reasoning  string `json:"reasoning"`
}

// Scorer turns FeedEntry values into ScoredEntry values by calling out to
// an LLM provider.
type Scorer struct {
	provider llmclient.Provider
}

// New builds a Scorer against provider.
func New(provider llmclient.Provider) *Scorer {
	return &Scorer{provider: provider}
}

// Score rates entry and returns the resulting ScoredEntry. On an
// unrecoverable LLM or parse failure it returns an error; callers should
// treat the entry as not-yet-scorable for this cycle rather than drop it,
// per the spec's error taxonomy for scoring failures.
func (s *Scorer) Score(ctx context.Context, entry entity.FeedEntry, sourceTier entity.CredibilityTier) (entity.ScoredEntry, error) {
	start := time.Now()

	userPrompt := fmt.Sprintf("Title: %s\nSource: %s\n", entry.Title, entry.SourceName)

	raw, err := s.provider.Generate(ctx, systemPrompt, userPrompt)
	metrics.RecordScoringDuration(time.Since(start))
	if err != nil {
		metrics.RecordScoring(false)
		return entity.ScoredEntry{}, fmt.Errorf("scorer: generate: %w", err)
	}

	var resp scoreResponse
	if err := llm.ParseJSONObject(raw, &resp); err != nil {
		metrics.RecordScoring(false)
		return entity.ScoredEntry{}, fmt.Errorf("scorer: parse response: %w", err)
	}

	importance := resp.Importance
	if importance < 0 {
		importance = 0
	}
	if importance > 1000 {
		importance = 1000
	}

	metrics.RecordScoring(true)
	return entity.ScoredEntry{
		FeedEntry:      entry,
		Importance:     importance,
		Category:       entity.ParseCategory(resp.Category),
		Emoji:          strings.TrimSpace(resp.Emoji),
		ScoreReasoning: resp.Reasoning,
		SourceScore:    importance + sourceTier.ReputationScore(),
	}, nil
}
