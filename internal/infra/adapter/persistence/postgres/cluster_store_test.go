package postgres_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/infra/adapter/persistence/postgres"
)

func TestClusterStore_Get_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	payload, err := json.Marshal(map[string]any{
		"keyword_set": []string{"earthquake"},
		"entity_set":  []string{"Gaziantep"},
		"members":     []any{},
	})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "state", "canonical_title", "first_seen", "last_seen", "published_event_id", "payload"}).
		AddRow("c1", "pending", "Earthquake near Gaziantep", now, now, nil, payload)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, state, canonical_title, first_seen, last_seen, published_event_id, payload`)).
		WithArgs("c1").
		WillReturnRows(rows)

	store := postgres.NewClusterStore(db)
	got, err := store.Get(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Earthquake near Gaziantep", got.CanonicalTitle)
	_, ok := got.KeywordSet["earthquake"]
	require.True(t, ok)
}

func TestClusterStore_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"id", "state", "canonical_title", "first_seen", "last_seen", "published_event_id", "payload"})
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, state, canonical_title, first_seen, last_seen, published_event_id, payload`)).
		WithArgs("missing").
		WillReturnRows(rows)

	store := postgres.NewClusterStore(db)
	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestClusterStore_CloseExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE clusters SET state = 'closed'`)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	store := postgres.NewClusterStore(db)
	n, err := store.CloseExpired(context.Background(), time.Now(), 24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}
