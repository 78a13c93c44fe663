package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/adapter/persistence/postgres"
)

func TestPublishedEventStore_GetByClusterID_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT event_id, cluster_id`)).
		WithArgs("c1").
		WillReturnError(sqlmock.ErrCancelled)

	store := postgres.NewPublishedEventStore(db)
	_, err = store.GetByClusterID(context.Background(), "c1")
	require.Error(t, err)
}

func TestPublishedEventStore_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO published_events`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	now := time.Now()
	store := postgres.NewPublishedEventStore(db)
	err = store.Insert(context.Background(), &entity.PublishedEvent{
		EventID:         "e1",
		ClusterID:       "c1",
		TitleAdvanced:   "Quake strikes near Gaziantep",
		TitleSimple:     "Big earthquake hits Gaziantep",
		BulletsAdvanced: []string{"a", "b", "c"},
		BulletsSimple:   []string{"a", "b", "c"},
		BodyAdvanced:    "body",
		BodySimple:      "body",
		Category:        entity.CategoryWorld,
		NumberOfSources: 3,
		ComponentsOrder: []entity.ComponentKey{entity.ComponentMap, entity.ComponentDetails},
		Details:         []entity.DetailEntry{{Label: "Magnitude", Value: "7.8"}},
		Map:             &entity.Map{Center: entity.MapMarker{Lat: 37.05, Lon: 37.38, Name: "Gaziantep"}},
		Version:         1,
		CreatedAt:       now,
		LastUpdatedAt:   now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishedEventStore_Update_NoRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE published_events SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := postgres.NewPublishedEventStore(db)
	err = store.Update(context.Background(), &entity.PublishedEvent{EventID: "missing"})
	require.Error(t, err)
}
