// Package sqlstore keeps decks and quota in an embedded SQLite file or a
// MySQL database. The CLI uses it so it can run without the server stack.
package sqlstore

import (
	"context"
	"fmt"

	"github.com/Rrens/slidecraft/internal/config"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var schemas = map[string][]string{
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS decks (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			owner_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			topic TEXT NOT NULL DEFAULT '',
			tone TEXT NOT NULL DEFAULT '',
			slide_count INTEGER NOT NULL,
			slides TEXT NOT NULL,
			overall_suggestions TEXT NOT NULL DEFAULT '',
			folder_id TEXT,
			saved_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS decks_owner_idx ON decks (owner_id, seq)`,
		`CREATE TABLE IF NOT EXISTS quotas (
			owner_id TEXT PRIMARY KEY,
			generations_count INTEGER NOT NULL DEFAULT 0,
			credits TEXT NOT NULL DEFAULT '0'
		)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS decks (
			seq BIGINT AUTO_INCREMENT PRIMARY KEY,
			id VARCHAR(36) NOT NULL UNIQUE,
			owner_id VARCHAR(191) NOT NULL,
			type VARCHAR(16) NOT NULL,
			title TEXT NOT NULL,
			topic TEXT NOT NULL,
			tone VARCHAR(32) NOT NULL DEFAULT '',
			slide_count INT NOT NULL,
			slides LONGTEXT NOT NULL,
			overall_suggestions TEXT NOT NULL,
			folder_id VARCHAR(36) NULL,
			saved_at BIGINT NOT NULL,
			INDEX decks_owner_idx (owner_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS quotas (
			owner_id VARCHAR(191) PRIMARY KEY,
			generations_count INT NOT NULL DEFAULT 0,
			credits VARCHAR(32) NOT NULL DEFAULT '0'
		)`,
	},
}

// Open connects to the configured database and creates missing tables
func Open(ctx context.Context, cfg config.SQLConfig) (*sqlx.DB, error) {
	stmts, ok := schemas[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver: %s", cfg.Driver)
	}

	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// A single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return db, nil
}
