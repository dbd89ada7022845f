package database

import (
	"fmt"
	"log/slog"
)

// RunMigrations creates the main service schema.
func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createCategoriesTable,
		createLocationsTable,
		createEventsTable,
		createRequestsTable,
		createCompilationsTable,
		createCompilationEventsTable,
		createCommentsTable,
		createSubscriptionsTable,
		createEventsInitiatorIndex,
		createRequestsEventStatusIndex,
	}

	return db.run(migrations)
}

// RunStatsMigrations creates the stats service schema.
func (db *DB) RunStatsMigrations() error {
	slog.Info("Running stats database migrations...")

	migrations := []string{
		createEndpointHitsTable,
		createEndpointHitsUriIndex,
	}

	return db.run(migrations)
}

func (db *DB) run(migrations []string) error {
	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    email VARCHAR(254) UNIQUE NOT NULL,
    name VARCHAR(250) NOT NULL
);`

const createCategoriesTable = `
CREATE TABLE IF NOT EXISTS categories (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(50) UNIQUE NOT NULL
);`

const createLocationsTable = `
CREATE TABLE IF NOT EXISTS locations (
    id BIGSERIAL PRIMARY KEY,
    lat DOUBLE PRECISION NOT NULL,
    lon DOUBLE PRECISION NOT NULL,

    UNIQUE(lat, lon)
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    annotation VARCHAR(2000) NOT NULL,
    description VARCHAR(7000),
    title VARCHAR(120) NOT NULL,
    category_id BIGINT NOT NULL REFERENCES categories(id),
    initiator_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    location_id BIGINT NOT NULL REFERENCES locations(id),
    event_date TIMESTAMP NOT NULL,
    created_on TIMESTAMP NOT NULL DEFAULT NOW(),
    published_on TIMESTAMP,
    paid BOOLEAN NOT NULL DEFAULT FALSE,
    participant_limit INTEGER NOT NULL DEFAULT 0,
    request_moderation BOOLEAN NOT NULL DEFAULT TRUE,
    state VARCHAR(20) NOT NULL DEFAULT 'PENDING',

    CHECK (state IN ('PENDING', 'PUBLISHED', 'CANCELED'))
);`

const createRequestsTable = `
CREATE TABLE IF NOT EXISTS requests (
    id BIGSERIAL PRIMARY KEY,
    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    requester_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created TIMESTAMP NOT NULL DEFAULT NOW(),
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',

    UNIQUE(event_id, requester_id),
    CHECK (status IN ('PENDING', 'CONFIRMED', 'REJECTED', 'CANCELED'))
);`

const createCompilationsTable = `
CREATE TABLE IF NOT EXISTS compilations (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(50) NOT NULL,
    pinned BOOLEAN NOT NULL DEFAULT FALSE
);`

const createCompilationEventsTable = `
CREATE TABLE IF NOT EXISTS compilation_events (
    compilation_id BIGINT NOT NULL REFERENCES compilations(id) ON DELETE CASCADE,
    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,

    PRIMARY KEY(compilation_id, event_id)
);`

const createCommentsTable = `
CREATE TABLE IF NOT EXISTS comments (
    id BIGSERIAL PRIMARY KEY,
    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    text VARCHAR(2000) NOT NULL,
    created TIMESTAMP NOT NULL DEFAULT NOW(),
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',

    CHECK (status IN ('PENDING', 'PUBLISHED', 'REJECTED'))
);`

const createSubscriptionsTable = `
CREATE TABLE IF NOT EXISTS subscriptions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    target_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,

    UNIQUE(user_id, target_id)
);`

const createEventsInitiatorIndex = `
CREATE INDEX IF NOT EXISTS events_initiator_id_idx
ON events (initiator_id);`

const createRequestsEventStatusIndex = `
CREATE INDEX IF NOT EXISTS requests_event_id_status_idx
ON requests (event_id, status);`

const createEndpointHitsTable = `
CREATE TABLE IF NOT EXISTS endpoint_hits (
    id BIGSERIAL PRIMARY KEY,
    app VARCHAR(255) NOT NULL,
    uri VARCHAR(512) NOT NULL,
    ip VARCHAR(45) NOT NULL,
    created TIMESTAMP NOT NULL
);`

const createEndpointHitsUriIndex = `
CREATE INDEX IF NOT EXISTS endpoint_hits_uri_created_idx
ON endpoint_hits (uri, created);`
