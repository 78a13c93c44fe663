package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
)

// ActiveWindow bounds how far back a cluster is still eligible to receive
// new members; clusters last touched longer ago than this are expired by
// the scheduler's CloseExpired sweep rather than matched against.
const ActiveWindow = 72 * time.Hour

// Service assigns scored entries to clusters, creating a new cluster when
// none of the ordered match rules fire.
type Service struct {
	store repository.ClusterStore
	clock func() time.Time
}

// New builds a clustering Service against store.
func New(store repository.ClusterStore) *Service {
	return &Service{store: store, clock: time.Now}
}

// Assign finds or creates the cluster scored should belong to, appends it
// as a member, and persists the updated cluster. It returns the cluster in
// its post-assignment state.
func (s *Service) Assign(ctx context.Context, scored entity.ScoredEntry) (*entity.EventCluster, error) {
	now := s.clock()

	actives, err := s.store.ActiveSince(ctx, now.Add(-ActiveWindow))
	if err != nil {
		return nil, fmt.Errorf("load active clusters: %w", err)
	}

	keywords := ExtractKeywords(scored.Title)
	entities := ExtractEntities(scored.Title)

	target, _ := BestMatch(scored.Title, keywords, entities, actives)
	if target == nil {
		target = &entity.EventCluster{
			ID:             uuid.NewString(),
			State:          entity.ClusterNew,
			CanonicalTitle: scored.Title,
			KeywordSet:     keywords,
			EntitySet:      entities,
			FirstSeen:      now,
			LastSeen:       now,
		}
	} else {
		mergeSets(target.KeywordSet, keywords)
		mergeSets(target.EntitySet, entities)
		target.LastSeen = now
		target.State = nextState(target.State, len(target.Members)+1)
	}

	target.Members = append(target.Members, entity.ClusterMember{Entry: scored})

	if err := s.store.Upsert(ctx, target); err != nil {
		return nil, fmt.Errorf("upsert cluster: %w", err)
	}
	return target, nil
}

// nextState advances a cluster's lifecycle state as membership grows: a
// freshly seeded cluster starts New, becomes Pending once a second source
// corroborates it, and Live once a third does. Closed is only reached via
// the scheduler's expiry sweep, never by Assign.
func nextState(current entity.ClusterState, memberCountAfter int) entity.ClusterState {
	if current == entity.ClusterClosed {
		return entity.ClusterClosed
	}
	switch {
	case memberCountAfter >= 3:
		return entity.ClusterLive
	case memberCountAfter >= 2:
		return entity.ClusterPending
	default:
		return current
	}
}

func mergeSets(dst, src map[string]struct{}) {
	for k := range src {
		dst[k] = struct{}{}
	}
}

// CloseExpired closes every cluster whose last member arrived before
// ActiveWindow ago, returning the number closed.
func (s *Service) CloseExpired(ctx context.Context) (int, error) {
	return s.store.CloseExpired(ctx, s.clock(), ActiveWindow)
}
