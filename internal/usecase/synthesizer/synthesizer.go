// Package synthesizer implements the Synthesizer stage: it asks the
// writing LLM to produce the dual-language (advanced/simple) article body
// for a cluster from its members' fetched bodies.
package synthesizer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/llmclient"
	"newsdigest/internal/usecase/llm"
)

// maxSourceBodies bounds how many cluster members' bodies are sent to the
// writing LLM, highest per-source importance first.
const maxSourceBodies = 10

// maxSourceBodyChars truncates each included body before it reaches the
// prompt, keeping token cost bounded on large clusters.
const maxSourceBodyChars = 1500

const systemPrompt = `You are a news writer producing a dual-register article from multiple wire sources describing the same event. Produce two versions of the title, three bullet points, and a 300-400 word body: an "advanced" register for general adult readers and a "simple" register using short sentences and common vocabulary. In both body versions, wrap the handful of most load-bearing facts (names, numbers, dates) in ⟦ ⟧ highlight markers. Respond with a single JSON object only, no commentary, matching exactly this shape:
{"title_advanced": "...", "title_simple": "...", "bullets_advanced": ["...","...","..."], "bullets_simple": ["...","...","..."], "body_advanced": "...", "body_simple": "..."}`

type writeResponse struct {
	TitleAdvanced   string   `json:"title_advanced"`
	TitleSimple     string   `json:"title_simple"`
	BulletsAdvanced []string `json:"bullets_advanced"`
	BulletsSimple   []string `json:"bullets_simple"`
	BodyAdvanced    string   `json:"body_advanced"`
	BodySimple      string   `json:"body_simple"`
}

// Article is the Synthesizer's output: the dual-language content destined
// for PublishedEvent, prior to component selection/generation.
type Article struct {
	TitleAdvanced   string
	TitleSimple     string
	BulletsAdvanced []string
	BulletsSimple   []string
	BodyAdvanced    string
	BodySimple      string
}

// Synthesizer drafts an Article from an EventCluster's members.
type Synthesizer struct {
	provider llmclient.Provider
}

// New builds a Synthesizer against provider.
func New(provider llmclient.Provider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// Synthesize drafts a dual-language Article for cluster.
func (s *Synthesizer) Synthesize(ctx context.Context, cluster *entity.EventCluster) (Article, error) {
	userPrompt := buildUserPrompt(cluster)

	raw, err := s.provider.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return Article{}, fmt.Errorf("synthesizer: generate: %w", err)
	}

	var resp writeResponse
	if err := llm.ParseJSONObject(raw, &resp); err != nil {
		return Article{}, fmt.Errorf("synthesizer: parse response: %w", err)
	}
	if err := validate(resp); err != nil {
		return Article{}, fmt.Errorf("synthesizer: %w", err)
	}

	return Article{
		TitleAdvanced:   resp.TitleAdvanced,
		TitleSimple:     resp.TitleSimple,
		BulletsAdvanced: resp.BulletsAdvanced,
		BulletsSimple:   resp.BulletsSimple,
		BodyAdvanced:    resp.BodyAdvanced,
		BodySimple:      resp.BodySimple,
	}, nil
}

func buildUserPrompt(cluster *entity.EventCluster) string {
	members := topMembersByImportance(cluster.Members, maxSourceBodies)

	var b strings.Builder
	fmt.Fprintf(&b, "Event working title: %s\nNumber of sources: %d\n\n", cluster.CanonicalTitle, len(cluster.Members))
	for i, m := range members {
		fmt.Fprintf(&b, "Source %d (%s):\nHeadline: %s\n", i+1, m.Entry.SourceName, m.Entry.Title)
		if m.Body != "" {
			fmt.Fprintf(&b, "Body: %s\n", truncate(m.Body, maxSourceBodyChars))
		} else {
			fmt.Fprintf(&b, "Summary: %s\n", m.Entry.Summary)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// topMembersByImportance returns up to max members of members, sorted by
// per-source importance descending, leaving the input slice untouched.
func topMembersByImportance(members []entity.ClusterMember, max int) []entity.ClusterMember {
	sorted := make([]entity.ClusterMember, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Entry.Importance > sorted[j].Entry.Importance
	})
	if len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// validate checks resp against the Synthesizer's field-shape contract:
// bounded title length, bullet count and length, and body length within
// +-10% of the 300-400 word target.
func validate(resp writeResponse) error {
	if resp.TitleAdvanced == "" || resp.TitleSimple == "" || resp.BodyAdvanced == "" || resp.BodySimple == "" {
		return fmt.Errorf("response missing required fields")
	}
	if n := wordCount(resp.TitleAdvanced); n > 12 {
		return fmt.Errorf("title_advanced has %d words, want at most 12", n)
	}
	if n := wordCount(resp.TitleSimple); n > 12 {
		return fmt.Errorf("title_simple has %d words, want at most 12", n)
	}
	if err := validateBullets("bullets_advanced", resp.BulletsAdvanced); err != nil {
		return err
	}
	if err := validateBullets("bullets_simple", resp.BulletsSimple); err != nil {
		return err
	}
	if err := validateBody("body_advanced", resp.BodyAdvanced); err != nil {
		return err
	}
	if err := validateBody("body_simple", resp.BodySimple); err != nil {
		return err
	}
	return nil
}

func validateBullets(field string, bullets []string) error {
	if len(bullets) < 3 || len(bullets) > 5 {
		return fmt.Errorf("%s has %d items, want 3-5", field, len(bullets))
	}
	for _, bullet := range bullets {
		if n := wordCount(bullet); n < 10 || n > 15 {
			return fmt.Errorf("%s item has %d words, want 10-15", field, n)
		}
	}
	return nil
}

// validateBody checks body against the 300-400 word target, +-10%.
func validateBody(field, body string) error {
	if n := wordCount(body); n < 270 || n > 440 {
		return fmt.Errorf("%s has %d words, want 300-400 (+-10%%)", field, n)
	}
	return nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
