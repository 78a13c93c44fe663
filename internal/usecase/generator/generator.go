// Package generator implements the Component Generator stage: for each
// component key the Component Selector chose, it asks the research LLM to
// produce that component's structured content.
package generator

import (
	"context"
	"fmt"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/llmclient"
	"newsdigest/internal/usecase/llm"
)

const systemPrompt = `You produce structured data for one presentation widget attached to a news article, grounded only in the article text given — never invent facts, dates, or figures not supported by it. Respond with a single JSON object only, no commentary, matching exactly this shape for the requested widget kind:
timeline: {"timeline": [{"date": "...", "event": "..."}]}
details: {"details": [{"label": "...", "value": "...", "subtitle": "..."}]}
graph: {"graph": {"chart_type": "line|bar|area|column", "data_points": [{"label": "...", "value": 0.0}]}}
map: {"map": {"center": {"lat": 0.0, "lon": 0.0, "name": "..."}, "markers": [{"lat": 0.0, "lon": 0.0, "name": "..."}]}}`

type componentResponse struct {
	Timeline []entity.TimelineEntry `json:"timeline"`
	Details  []entity.DetailEntry   `json:"details"`
	Graph    *graphPayload          `json:"graph"`
	Map      *mapPayload            `json:"map"`
}

type graphPayload struct {
	ChartType  string             `json:"chart_type"`
	DataPoints []entity.DataPoint `json:"data_points"`
}

type mapPayload struct {
	Center  entity.MapMarker   `json:"center"`
	Markers []entity.MapMarker `json:"markers"`
}

// Generator produces component content for a selected key.
type Generator struct {
	provider llmclient.Provider
}

// New builds a Generator against provider.
func New(provider llmclient.Provider) *Generator {
	return &Generator{provider: provider}
}

// Result holds whichever one of the four component fields was requested;
// the caller attaches the populated field to the PublishedEvent.
type Result struct {
	Timeline []entity.TimelineEntry
	Details  []entity.DetailEntry
	Graph    *entity.Graph
	Map      *entity.Map
}

// Generate produces component content of kind (one of the entity.ComponentKey
// values) for the given article title/body.
func (g *Generator) Generate(ctx context.Context, kind entity.ComponentKey, title, body string) (Result, error) {
	userPrompt := fmt.Sprintf("Widget kind: %s\nTitle: %s\n\nBody:\n%s", kind, title, body)

	raw, err := g.provider.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return Result{}, fmt.Errorf("generator: generate %s: %w", kind, err)
	}

	var resp componentResponse
	if err := llm.ParseJSONObject(raw, &resp); err != nil {
		return Result{}, fmt.Errorf("generator: parse %s response: %w", kind, err)
	}

	switch kind {
	case entity.ComponentTimeline:
		if len(resp.Timeline) < 2 || len(resp.Timeline) > 4 {
			return Result{}, fmt.Errorf("generator: timeline has %d entries, want 2-4", len(resp.Timeline))
		}
		return Result{Timeline: resp.Timeline}, nil
	case entity.ComponentDetails:
		if len(resp.Details) != 3 {
			return Result{}, fmt.Errorf("generator: details has %d entries, want exactly 3", len(resp.Details))
		}
		return Result{Details: resp.Details}, nil
	case entity.ComponentGraph:
		if resp.Graph == nil || len(resp.Graph.DataPoints) < 4 {
			return Result{}, fmt.Errorf("generator: graph has too few data points, want at least 4")
		}
		return Result{Graph: &entity.Graph{ChartType: chartType(resp.Graph.ChartType), DataPoints: resp.Graph.DataPoints}}, nil
	case entity.ComponentMap:
		if resp.Map == nil || len(resp.Map.Markers) < 1 || len(resp.Map.Markers) > 5 {
			return Result{}, fmt.Errorf("generator: map has invalid marker count, want 1-5")
		}
		return Result{Map: &entity.Map{Center: resp.Map.Center, Markers: resp.Map.Markers}}, nil
	default:
		return Result{}, fmt.Errorf("generator: unknown component kind %q", kind)
	}
}

func chartType(raw string) entity.ChartType {
	switch entity.ChartType(raw) {
	case entity.ChartLine, entity.ChartBar, entity.ChartArea, entity.ChartColumn:
		return entity.ChartType(raw)
	default:
		return entity.ChartLine
	}
}
