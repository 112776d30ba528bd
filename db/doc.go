// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Open picks the driver from Config.DatabaseType:

  - sqlite: modernc.org/sqlite, the default (DATABASE_URL=file:survey.db)
  - postgres: github.com/lib/pq (DATABASE_URL=postgres://...)

SQLite connection strings are normalized by SQLiteDSN, which enables
foreign keys and a busy timeout on every connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL sticks to types both drivers understand.

# Tables

  - participant: token (primary key), label, created_at
  - response: one row per participant, answers stored as JSON text

# Relationships

	participant 1──0..1 response

response.participant_token is UNIQUE, which is what guarantees a single
response per participant even when two submissions race. The foreign key
uses ON DELETE CASCADE.
*/
package db
