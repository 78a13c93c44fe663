package repository

import (
	"context"
	"time"

	"newsdigest/internal/domain/entity"
)

// ClusterStore is the durable representation of EventCluster records.
// Clusters live at least the clustering window and are captured once per
// cycle as a read-mostly snapshot (spec §5, Shared-resource policy); writes
// go through the store, which is assumed transactional — the core does not
// implement its own locking on top.
type ClusterStore interface {
	// ActiveSince returns every cluster whose LastSeen is at or after
	// since, i.e. the candidate set the Clusterer may match a new entry
	// against this cycle.
	ActiveSince(ctx context.Context, since time.Time) ([]*entity.EventCluster, error)

	Get(ctx context.Context, id string) (*entity.EventCluster, error)

	// Upsert persists a cluster, whether newly created or updated with an
	// additional member.
	Upsert(ctx context.Context, cluster *entity.EventCluster) error

	// CloseExpired transitions every cluster whose window has lapsed to
	// ClusterClosed, returning the number of clusters affected.
	CloseExpired(ctx context.Context, now time.Time, window time.Duration) (int, error)
}
