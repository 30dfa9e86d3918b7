package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trips (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id),
    name        TEXT NOT NULL,
    destination TEXT NOT NULL DEFAULT '',
    start_date  TEXT NOT NULL DEFAULT '',
    end_date    TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at  DATETIME
);

CREATE TABLE IF NOT EXISTS bags (
    id         TEXT PRIMARY KEY,
    trip_id    TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    type       TEXT NOT NULL DEFAULT 'custom' CHECK (type IN ('carry_on', 'checked', 'personal', 'custom')),
    color      TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS categories (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id),
    name       TEXT NOT NULL,
    icon       TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_user_name
    ON categories(user_id, name);

CREATE TABLE IF NOT EXISTS master_items (
    id               TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL REFERENCES users(id),
    name             TEXT NOT NULL,
    notes            TEXT NOT NULL DEFAULT '',
    category_id      TEXT REFERENCES categories(id) ON DELETE SET NULL,
    default_quantity INTEGER NOT NULL DEFAULT 1 CHECK (default_quantity > 0),
    is_container     INTEGER NOT NULL DEFAULT 0,
    image            BLOB,
    image_mime       TEXT,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS trip_items (
    id                TEXT PRIMARY KEY,
    trip_id           TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
    master_item_id    TEXT REFERENCES master_items(id) ON DELETE SET NULL,
    name              TEXT NOT NULL,
    notes             TEXT NOT NULL DEFAULT '',
    quantity          INTEGER NOT NULL DEFAULT 1 CHECK (quantity > 0),
    packed            INTEGER NOT NULL DEFAULT 0,
    skipped           INTEGER NOT NULL DEFAULT 0,
    is_container      INTEGER NOT NULL DEFAULT 0,
    container_item_id TEXT REFERENCES trip_items(id),
    bag_id            TEXT REFERENCES bags(id) ON DELETE SET NULL,
    category_id       TEXT REFERENCES categories(id) ON DELETE SET NULL,
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (container_item_id IS NULL OR container_item_id <> id)
);

CREATE INDEX IF NOT EXISTS idx_trip_items_trip ON trip_items(trip_id);
CREATE INDEX IF NOT EXISTS idx_trip_items_container ON trip_items(container_item_id);

CREATE TABLE IF NOT EXISTS moves (
    id                TEXT PRIMARY KEY,
    trip_id           TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
    item_id           TEXT NOT NULL,
    from_bag_id       TEXT,
    from_container_id TEXT,
    to_bag_id         TEXT,
    to_container_id   TEXT,
    moved_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    moved_by          TEXT REFERENCES users(id),
    undone_at         DATETIME
);

CREATE INDEX IF NOT EXISTS idx_moves_trip ON moves(trip_id, moved_at);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: drop expired token revocations left behind by older builds
	// that never cleaned them up.
	`DELETE FROM revoked_tokens WHERE expires_at < CURRENT_TIMESTAMP`,
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Migrate creates the schema and applies the idempotent migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
