// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	// The sqlite driver only runs the first statement of a query.
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to create schema")
		}
	}

	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS participant (
    token TEXT PRIMARY KEY,
    label TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_participant_created_at ON participant(created_at);

CREATE TABLE IF NOT EXISTS response (
    id TEXT PRIMARY KEY,
    participant_token TEXT NOT NULL UNIQUE REFERENCES participant(token) ON DELETE CASCADE,
    answers TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_response_submitted_at ON response(submitted_at);
`
