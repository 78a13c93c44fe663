package cluster_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/usecase/cluster"
)

type fakeClusterStore struct {
	byID map[string]*entity.EventCluster
}

func newFakeClusterStore() *fakeClusterStore {
	return &fakeClusterStore{byID: make(map[string]*entity.EventCluster)}
}

func (f *fakeClusterStore) ActiveSince(ctx context.Context, since time.Time) ([]*entity.EventCluster, error) {
	var out []*entity.EventCluster
	for _, c := range f.byID {
		if c.State != entity.ClusterClosed && !c.LastSeen.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClusterStore) Get(ctx context.Context, id string) (*entity.EventCluster, error) {
	return f.byID[id], nil
}

func (f *fakeClusterStore) Upsert(ctx context.Context, c *entity.EventCluster) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeClusterStore) CloseExpired(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	n := 0
	for _, c := range f.byID {
		if c.State != entity.ClusterClosed && now.Sub(c.LastSeen) > window {
			c.State = entity.ClusterClosed
			n++
		}
	}
	return n, nil
}

func TestService_Assign_SeedsNewCluster(t *testing.T) {
	store := newFakeClusterStore()
	svc := cluster.New(store)

	c, err := svc.Assign(context.Background(), entity.ScoredEntry{
		FeedEntry: entity.FeedEntry{Title: "Quake hits Gaziantep", URL: "https://a.example/1", PublishedAt: time.Now()},
	})
	require.NoError(t, err)
	require.Len(t, c.Members, 1)
	require.Equal(t, entity.ClusterNew, c.State)
}

func TestService_Assign_JoinsMatchingCluster(t *testing.T) {
	store := newFakeClusterStore()
	svc := cluster.New(store)
	ctx := context.Background()

	first, err := svc.Assign(ctx, entity.ScoredEntry{
		FeedEntry: entity.FeedEntry{Title: "Quake hits Gaziantep", URL: "https://a.example/1", PublishedAt: time.Now()},
	})
	require.NoError(t, err)

	second, err := svc.Assign(ctx, entity.ScoredEntry{
		FeedEntry: entity.FeedEntry{Title: "Quake hits Gaziantep", URL: "https://b.example/2", PublishedAt: time.Now()},
	})
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Len(t, second.Members, 2)
	require.Equal(t, entity.ClusterPending, second.State)
}

func TestService_CloseExpired(t *testing.T) {
	store := newFakeClusterStore()
	store.byID["old"] = &entity.EventCluster{
		ID:       "old",
		State:    entity.ClusterPending,
		LastSeen: time.Now().Add(-100 * time.Hour),
	}
	svc := cluster.New(store)

	n, err := svc.CloseExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, entity.ClusterClosed, store.byID["old"].State)
}
