package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		next_seq   INTEGER NOT NULL DEFAULT 1 CHECK(next_seq > 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS nodes (
		campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		id          TEXT NOT NULL,
		kind        TEXT NOT NULL
		            CHECK(kind IN ('trigger','delay','email','condition')),
		pos_x       REAL NOT NULL DEFAULT 0,
		pos_y       REAL NOT NULL DEFAULT 0,
		attrs       TEXT NOT NULL DEFAULT '{}',
		state       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (campaign_id, id)
	)`,

	`CREATE TABLE IF NOT EXISTS edges (
		campaign_id TEXT NOT NULL,
		id          TEXT NOT NULL,
		source      TEXT NOT NULL,
		target      TEXT NOT NULL,
		source_port TEXT NOT NULL DEFAULT ''
		            CHECK(source_port IN ('','yes','no')),
		state       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		PRIMARY KEY (campaign_id, id),
		FOREIGN KEY (campaign_id, source) REFERENCES nodes(campaign_id, id) ON DELETE CASCADE,
		FOREIGN KEY (campaign_id, target) REFERENCES nodes(campaign_id, id) ON DELETE CASCADE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(campaign_id, source)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(campaign_id, target)`,

	`CREATE TABLE IF NOT EXISTS publications (
		id          TEXT PRIMARY KEY,
		campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		email_count INTEGER NOT NULL,
		plan_json   TEXT NOT NULL,
		channel     TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_publications_campaign ON publications(campaign_id, created_at)`,
}
