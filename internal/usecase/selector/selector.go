// Package selector implements the Component Selector stage: it asks the
// selection LLM which of the optional presentation components (timeline,
// details, graph, map) suit an event, and in what order.
package selector

import (
	"context"
	"fmt"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/llmclient"
	"newsdigest/internal/usecase/llm"
)

const systemPrompt = `You choose which optional presentation widgets suit a news event, and their display order. The available widgets are: "timeline" (a chronology of related prior events), "details" (a label/value fact sheet), "graph" (a simple chart of a numeric trend), and "map" (a location marker). Select only the widgets this event's content actually supports — do not invent one with no grounding in the article. Respond with a single JSON object only, no commentary, matching exactly this shape:
{"components": ["<ordered subset of timeline, details, graph, map>"]}`

type selectResponse struct {
	Components []string `json:"components"`
}

var validKeys = map[string]entity.ComponentKey{
	"timeline": entity.ComponentTimeline,
	"details":  entity.ComponentDetails,
	"graph":    entity.ComponentGraph,
	"map":      entity.ComponentMap,
}

// Selector picks an EventCluster's component order.
type Selector struct {
	provider llmclient.Provider
}

// New builds a Selector against provider.
func New(provider llmclient.Provider) *Selector {
	return &Selector{provider: provider}
}

// Select returns the ordered, deduplicated component list for the article's
// synthesized advanced title. Only the title is sent to the selection LLM,
// never the body: a shorter prompt, and no risk of the body's narrative
// framing biasing which widgets get picked.
func (s *Selector) Select(ctx context.Context, title string) ([]entity.ComponentKey, error) {
	userPrompt := fmt.Sprintf("Title: %s\n", title)

	raw, err := s.provider.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("selector: generate: %w", err)
	}

	var resp selectResponse
	if err := llm.ParseJSONObject(raw, &resp); err != nil {
		return nil, fmt.Errorf("selector: parse response: %w", err)
	}

	seen := make(map[entity.ComponentKey]bool)
	var ordered []entity.ComponentKey
	for _, name := range resp.Components {
		key, ok := validKeys[name]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		ordered = append(ordered, key)
	}
	return ordered, nil
}
