package database

import (
	"context"
	"database/sql"
	"fmt"
)

var schemas = map[Dialect]string{
	DialectPostgres: `CREATE TABLE IF NOT EXISTS report_records (
    report_date  TEXT PRIMARY KEY,
    status       TEXT NOT NULL,
    fingerprint  TEXT NOT NULL DEFAULT '',
    item_count   INTEGER NOT NULL DEFAULT 0,
    last_error   TEXT NOT NULL DEFAULT '',
    started_at   TIMESTAMPTZ NOT NULL,
    built_at     TIMESTAMPTZ NULL,
    updated_at   TIMESTAMPTZ NOT NULL
)`,
	DialectSQLite: `CREATE TABLE IF NOT EXISTS report_records (
    report_date  TEXT PRIMARY KEY,
    status       TEXT NOT NULL,
    fingerprint  TEXT NOT NULL DEFAULT '',
    item_count   INTEGER NOT NULL DEFAULT 0,
    last_error   TEXT NOT NULL DEFAULT '',
    started_at   DATETIME NOT NULL,
    built_at     DATETIME NULL,
    updated_at   DATETIME NOT NULL
)`,
}

// Migrate creates the report_records table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	ddl, ok := schemas[dialect]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", dialect)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("error creating report_records table: %w", err)
	}
	return nil
}
