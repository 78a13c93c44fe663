// Package publisher implements the Publisher stage: given a cluster's
// synthesized article, image, and generated components, it inserts a new
// PublishedEvent or updates the stored one if the content materially
// changed, marks every member URL processed, and fires the notification
// side-effect on publish.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
)

// Notifier is the narrow slice of notify.Service the Publisher depends on,
// kept local so tests can stub it without pulling in the full channel/
// circuit-breaker machinery.
type Notifier interface {
	NotifyPublishedEvent(ctx context.Context, event *entity.PublishedEvent) error
}

// Draft is everything the earlier stages produced for one cluster, ready
// to become a PublishedEvent.
type Draft struct {
	TitleAdvanced   string
	TitleSimple     string
	BulletsAdvanced []string
	BulletsSimple   []string
	BodyAdvanced    string
	BodySimple      string
	Category        entity.Category
	Emoji           string
	ImageURL        string
	ImageSourceName string
	ComponentsOrder []entity.ComponentKey
	Timeline        []entity.TimelineEntry
	Details         []entity.DetailEntry
	Graph           *entity.Graph
	Map             *entity.Map
}

// Outcome reports what Publish did, for the cycle summary log line
// (spec.md §6 "clusters published-new, clusters updated, clusters
// deferred").
type Outcome string

const (
	OutcomeInserted  Outcome = "inserted"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// Publisher persists PublishedEvent records for clusters and fires
// notifications on publish.
type Publisher struct {
	events    repository.PublishedEventStore
	clusters  repository.ClusterStore
	processed repository.ProcessedURLStore
	notifier  Notifier
	now       func() time.Time
}

// New builds a Publisher against its stores and the notification service.
// now defaults to time.Now; tests may override it for deterministic
// created-at/last-updated-at assertions.
func New(events repository.PublishedEventStore, clusters repository.ClusterStore, processed repository.ProcessedURLStore, notifier Notifier) *Publisher {
	return &Publisher{
		events:    events,
		clusters:  clusters,
		processed: processed,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Publish inserts or updates the PublishedEvent for cluster from draft, per
// spec.md §4.9. On success every member URL is marked processed and, for
// an insert or a materially-changed update, the notifier fires.
func (p *Publisher) Publish(ctx context.Context, cluster *entity.EventCluster, draft Draft) (Outcome, error) {
	existing, err := p.events.GetByClusterID(ctx, cluster.ID)
	if err != nil {
		return "", fmt.Errorf("publisher: lookup existing event: %w", err)
	}

	now := p.now()
	sourceURLs := cluster.SourceURLs()

	if existing == nil {
		event := buildEvent(cluster, draft, sourceURLs, now)
		if err := p.events.Insert(ctx, event); err != nil {
			return "", fmt.Errorf("publisher: insert: %w", err)
		}
		cluster.State = entity.ClusterLive
		cluster.PublishedEventID = event.EventID
		if err := p.clusters.Upsert(ctx, cluster); err != nil {
			return "", fmt.Errorf("publisher: persist cluster state: %w", err)
		}
		p.markProcessed(ctx, sourceURLs, now)
		p.notify(ctx, event)
		slog.Info("published new event",
			slog.String("cluster_id", cluster.ID), slog.String("event_id", event.EventID),
			slog.Int("number_of_sources", event.NumberOfSources))
		return OutcomeInserted, nil
	}

	candidate := buildEvent(cluster, draft, sourceURLs, now)
	candidate.EventID = existing.EventID

	if !materiallyChanged(existing, candidate) {
		slog.Info("published event unchanged", slog.String("cluster_id", cluster.ID), slog.String("event_id", existing.EventID))
		return OutcomeUnchanged, nil
	}

	candidate.Version = existing.Version + 1
	candidate.CreatedAt = existing.CreatedAt
	candidate.LastUpdatedAt = now

	if err := p.events.Update(ctx, candidate); err != nil {
		return "", fmt.Errorf("publisher: update: %w", err)
	}
	p.markProcessed(ctx, sourceURLs, now)
	p.notify(ctx, candidate)
	slog.Info("updated published event",
		slog.String("cluster_id", cluster.ID), slog.String("event_id", candidate.EventID),
		slog.Int("version", candidate.Version))
	return OutcomeUpdated, nil
}

func (p *Publisher) markProcessed(ctx context.Context, urls []string, now time.Time) {
	for _, url := range urls {
		if _, err := p.processed.CheckAndMark(ctx, url, now); err != nil {
			slog.Warn("failed to mark url processed", slog.String("url", url), slog.Any("error", err))
		}
	}
}

func (p *Publisher) notify(ctx context.Context, event *entity.PublishedEvent) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.NotifyPublishedEvent(ctx, event); err != nil {
		slog.Warn("notification dispatch failed", slog.String("event_id", event.EventID), slog.Any("error", err))
	}
}

func buildEvent(cluster *entity.EventCluster, draft Draft, sourceURLs []string, now time.Time) *entity.PublishedEvent {
	return &entity.PublishedEvent{
		EventID:         uuid.NewString(),
		ClusterID:       cluster.ID,
		TitleAdvanced:   draft.TitleAdvanced,
		TitleSimple:     draft.TitleSimple,
		BulletsAdvanced: draft.BulletsAdvanced,
		BulletsSimple:   draft.BulletsSimple,
		BodyAdvanced:    draft.BodyAdvanced,
		BodySimple:      draft.BodySimple,
		Category:        draft.Category,
		Emoji:           draft.Emoji,
		ImageURL:        draft.ImageURL,
		ImageSourceName: draft.ImageSourceName,
		NumberOfSources: len(sourceURLs),
		ComponentsOrder: draft.ComponentsOrder,
		Timeline:        draft.Timeline,
		Details:         draft.Details,
		Graph:           draft.Graph,
		Map:             draft.Map,
		Version:         1,
		CreatedAt:       now,
		LastUpdatedAt:   now,
	}
}

// materiallyChanged implements spec.md §4.9's material-change definition:
// any change in title-advanced OR any new source URL in the cluster OR any
// component value change. Whitespace-only differences do not trigger an
// update, hence the normalised comparison on text fields.
func materiallyChanged(existing, candidate *entity.PublishedEvent) bool {
	if normalizeText(existing.TitleAdvanced) != normalizeText(candidate.TitleAdvanced) {
		return true
	}
	if existing.NumberOfSources != candidate.NumberOfSources {
		return true
	}
	if componentsChanged(existing, candidate) {
		return true
	}
	return false
}

func componentsChanged(existing, candidate *entity.PublishedEvent) bool {
	if len(existing.ComponentsOrder) != len(candidate.ComponentsOrder) {
		return true
	}
	for i := range existing.ComponentsOrder {
		if existing.ComponentsOrder[i] != candidate.ComponentsOrder[i] {
			return true
		}
	}
	if !timelineEqual(existing.Timeline, candidate.Timeline) {
		return true
	}
	if !detailsEqual(existing.Details, candidate.Details) {
		return true
	}
	if !graphEqual(existing.Graph, candidate.Graph) {
		return true
	}
	if !mapEqual(existing.Map, candidate.Map) {
		return true
	}
	return false
}

func timelineEqual(a, b []entity.TimelineEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func detailsEqual(a, b []entity.DetailEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func graphEqual(a, b *entity.Graph) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ChartType != b.ChartType || len(a.DataPoints) != len(b.DataPoints) {
		return false
	}
	for i := range a.DataPoints {
		if a.DataPoints[i] != b.DataPoints[i] {
			return false
		}
	}
	return true
}

// normalizeText collapses whitespace runs so a whitespace-only edit does
// not register as a material change.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func mapEqual(a, b *entity.Map) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Center != b.Center || len(a.Markers) != len(b.Markers) {
		return false
	}
	for i := range a.Markers {
		if a.Markers[i] != b.Markers[i] {
			return false
		}
	}
	return true
}
