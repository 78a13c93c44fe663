package db

import "database/sql"

// MigrateUp creates the three tables backing the core stores: the
// processed-URL idempotence index, the durable cluster store, and the
// published-event output store. The spec treats the schema itself as
// external (it names only the logical fields each store holds); this is
// one faithful materialisation of that contract for local development and
// the test suite's integration fixtures.
func MigrateUp(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS processed_urls (
    url        TEXT PRIMARY KEY,
    first_seen TIMESTAMPTZ NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS clusters (
    id                 TEXT PRIMARY KEY,
    state              VARCHAR(16) NOT NULL DEFAULT 'new',
    canonical_title    TEXT NOT NULL,
    first_seen         TIMESTAMPTZ NOT NULL,
    last_seen          TIMESTAMPTZ NOT NULL,
    published_event_id TEXT,
    payload            JSONB NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_clusters_last_seen ON clusters(last_seen)`,
		`CREATE INDEX IF NOT EXISTS idx_clusters_state ON clusters(state)`,
		`CREATE TABLE IF NOT EXISTS published_events (
    event_id          TEXT PRIMARY KEY,
    cluster_id        TEXT NOT NULL UNIQUE REFERENCES clusters(id),
    title_advanced    TEXT NOT NULL,
    title_simple      TEXT NOT NULL,
    bullets_advanced  JSONB NOT NULL,
    bullets_simple    JSONB NOT NULL,
    body_advanced     TEXT NOT NULL,
    body_simple       TEXT NOT NULL,
    category          VARCHAR(32) NOT NULL,
    emoji             TEXT NOT NULL,
    image_url         TEXT NOT NULL,
    image_source_name TEXT NOT NULL,
    number_of_sources INT NOT NULL,
    components        JSONB NOT NULL,
    version           INT NOT NULL DEFAULT 1,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE INDEX IF NOT EXISTS idx_published_events_category ON published_events(category)`,
		`CREATE INDEX IF NOT EXISTS idx_published_events_last_updated_at ON published_events(last_updated_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown drops every table MigrateUp creates, in dependency order.
// Intended for test fixtures and local teardown, not production use.
func MigrateDown(db *sql.DB) error {
	statements := []string{
		`DROP TABLE IF EXISTS published_events CASCADE`,
		`DROP TABLE IF EXISTS clusters CASCADE`,
		`DROP TABLE IF EXISTS processed_urls CASCADE`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
