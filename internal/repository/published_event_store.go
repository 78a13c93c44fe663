package repository

import (
	"context"

	"newsdigest/internal/domain/entity"
)

// PublishedEventStore is the system's output store. Nothing but the
// Publisher writes to it (spec §3, Ownership and lifecycle).
type PublishedEventStore interface {
	GetByClusterID(ctx context.Context, clusterID string) (*entity.PublishedEvent, error)
	Insert(ctx context.Context, event *entity.PublishedEvent) error
	Update(ctx context.Context, event *entity.PublishedEvent) error
}
