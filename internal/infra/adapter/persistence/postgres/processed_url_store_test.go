package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/infra/adapter/persistence/postgres"
)

func TestProcessedURLStore_CheckAndMark_NewURL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO processed_urls`)).
		WithArgs("https://example.com/a", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := postgres.NewProcessedURLStore(db)
	marked, err := store.CheckAndMark(context.Background(), "https://example.com/a", now)
	require.NoError(t, err)
	require.True(t, marked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessedURLStore_CheckAndMark_AlreadyMarked(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO processed_urls`)).
		WithArgs("https://example.com/a", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := postgres.NewProcessedURLStore(db)
	marked, err := store.CheckAndMark(context.Background(), "https://example.com/a", now)
	require.NoError(t, err)
	require.False(t, marked)
}

func TestProcessedURLStore_ExistsBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"url"}).AddRow("https://example.com/a")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT url FROM processed_urls`)).
		WillReturnRows(rows)

	store := postgres.NewProcessedURLStore(db)
	got, err := store.ExistsBatch(context.Background(), []string{"https://example.com/a", "https://example.com/b"})
	require.NoError(t, err)
	require.True(t, got["https://example.com/a"])
	require.False(t, got["https://example.com/b"])
}

func TestProcessedURLStore_ExistsBatch_Empty(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := postgres.NewProcessedURLStore(db)
	got, err := store.ExistsBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, got)
}
