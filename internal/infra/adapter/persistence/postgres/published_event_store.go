package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
)

// PublishedEventStore persists PublishedEvent records. Dual-language text
// fields and the number-of-sources/category columns are queryable directly;
// the four optional component fields are stored as one JSONB blob per the
// spec's "component fields are stored as opaque structured blobs" contract.
type PublishedEventStore struct{ db *sql.DB }

func NewPublishedEventStore(db *sql.DB) repository.PublishedEventStore {
	return &PublishedEventStore{db: db}
}

type componentPayload struct {
	ComponentsOrder []entity.ComponentKey   `json:"components_order"`
	Timeline        []entity.TimelineEntry  `json:"timeline,omitempty"`
	Details         []entity.DetailEntry    `json:"details,omitempty"`
	Graph           *entity.Graph           `json:"graph,omitempty"`
	Map             *entity.Map             `json:"map,omitempty"`
}

func (e *PublishedEventStore) scan(row *sql.Row) (*entity.PublishedEvent, error) {
	var p entity.PublishedEvent
	var bulletsAdvanced, bulletsSimple []byte
	var payload []byte
	err := row.Scan(
		&p.EventID, &p.ClusterID,
		&p.TitleAdvanced, &p.TitleSimple,
		&bulletsAdvanced, &bulletsSimple,
		&p.BodyAdvanced, &p.BodySimple,
		&p.Category, &p.Emoji,
		&p.ImageURL, &p.ImageSourceName,
		&p.NumberOfSources, &payload,
		&p.Version, &p.CreatedAt, &p.LastUpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	if err := json.Unmarshal(bulletsAdvanced, &p.BulletsAdvanced); err != nil {
		return nil, fmt.Errorf("scan: decode bullets_advanced: %w", err)
	}
	if err := json.Unmarshal(bulletsSimple, &p.BulletsSimple); err != nil {
		return nil, fmt.Errorf("scan: decode bullets_simple: %w", err)
	}

	var cp componentPayload
	if err := json.Unmarshal(payload, &cp); err != nil {
		return nil, fmt.Errorf("scan: decode components: %w", err)
	}
	p.ComponentsOrder = cp.ComponentsOrder
	p.Timeline = cp.Timeline
	p.Details = cp.Details
	p.Graph = cp.Graph
	p.Map = cp.Map

	return &p, nil
}

func (e *PublishedEventStore) GetByClusterID(ctx context.Context, clusterID string) (*entity.PublishedEvent, error) {
	const query = `
SELECT event_id, cluster_id, title_advanced, title_simple, bullets_advanced, bullets_simple,
       body_advanced, body_simple, category, emoji, image_url, image_source_name,
       number_of_sources, components, version, created_at, last_updated_at
FROM published_events
WHERE cluster_id = $1`
	row := e.db.QueryRowContext(ctx, query, clusterID)
	return e.scan(row)
}

func (e *PublishedEventStore) Insert(ctx context.Context, p *entity.PublishedEvent) error {
	bulletsAdvanced, err := json.Marshal(p.BulletsAdvanced)
	if err != nil {
		return fmt.Errorf("Insert: encode bullets_advanced: %w", err)
	}
	bulletsSimple, err := json.Marshal(p.BulletsSimple)
	if err != nil {
		return fmt.Errorf("Insert: encode bullets_simple: %w", err)
	}
	payload, err := json.Marshal(componentPayload{
		ComponentsOrder: p.ComponentsOrder,
		Timeline:        p.Timeline,
		Details:         p.Details,
		Graph:           p.Graph,
		Map:             p.Map,
	})
	if err != nil {
		return fmt.Errorf("Insert: encode components: %w", err)
	}

	const query = `
INSERT INTO published_events (
  event_id, cluster_id, title_advanced, title_simple, bullets_advanced, bullets_simple,
  body_advanced, body_simple, category, emoji, image_url, image_source_name,
  number_of_sources, components, version, created_at, last_updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = e.db.ExecContext(ctx, query,
		p.EventID, p.ClusterID, p.TitleAdvanced, p.TitleSimple, bulletsAdvanced, bulletsSimple,
		p.BodyAdvanced, p.BodySimple, p.Category, p.Emoji, p.ImageURL, p.ImageSourceName,
		p.NumberOfSources, payload, p.Version, p.CreatedAt, p.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

func (e *PublishedEventStore) Update(ctx context.Context, p *entity.PublishedEvent) error {
	bulletsAdvanced, err := json.Marshal(p.BulletsAdvanced)
	if err != nil {
		return fmt.Errorf("Update: encode bullets_advanced: %w", err)
	}
	bulletsSimple, err := json.Marshal(p.BulletsSimple)
	if err != nil {
		return fmt.Errorf("Update: encode bullets_simple: %w", err)
	}
	payload, err := json.Marshal(componentPayload{
		ComponentsOrder: p.ComponentsOrder,
		Timeline:        p.Timeline,
		Details:         p.Details,
		Graph:           p.Graph,
		Map:             p.Map,
	})
	if err != nil {
		return fmt.Errorf("Update: encode components: %w", err)
	}

	const query = `
UPDATE published_events SET
  title_advanced = $1, title_simple = $2, bullets_advanced = $3, bullets_simple = $4,
  body_advanced = $5, body_simple = $6, category = $7, emoji = $8, image_url = $9,
  image_source_name = $10, number_of_sources = $11, components = $12, version = $13,
  last_updated_at = $14
WHERE event_id = $15`
	res, err := e.db.ExecContext(ctx, query,
		p.TitleAdvanced, p.TitleSimple, bulletsAdvanced, bulletsSimple,
		p.BodyAdvanced, p.BodySimple, p.Category, p.Emoji, p.ImageURL,
		p.ImageSourceName, p.NumberOfSources, payload, p.Version,
		p.LastUpdatedAt, p.EventID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}
