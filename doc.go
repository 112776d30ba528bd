// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Simple Survey server.

Simple Survey distributes one static survey to a fixed set of
participants. Each participant gets a unique link (/s/{token}) and can
submit one response, which may be updated later if the server allows it.
An admin token protects participant management and the response export.

# Starting the Server

ADMIN_TOKEN is the only required setting:

	ADMIN_TOKEN=secret go run .

Or with flags:

	go run . -p 5000 -d "postgres://..." -admin-token secret

Settings may also come from a .env file (-env-file, default ".env").

# Configuration

  - ADMIN_TOKEN (-admin-token): bearer secret for /api/admin/*
  - HASH_SALT (-hash-salt): key for token and IP fingerprints in logs
  - DATABASE_URL (-d): SQLite file (default file:survey.db) or PostgreSQL URL
  - DATABASE_TYPE (-t): sqlite or postgres, derived from the URL when unset
  - PORT (-p): server port (default: 5000)
  - SURVEY_JSON_PATH (-survey): survey definition (default ./survey.json)
  - PARTICIPANTS_SEED_PATH (-seed): participant seed (default ./participants.json)
  - ALLOW_RESPONSE_UPDATES (-allow-updates): default true
  - BASE_URL (-base-url): prefix for survey links returned to admins
  - LOG_LEVEL, LOG_FORMAT (-log-level, -log-format)

A survey file or seed file that cannot be loaded stops the server at
start-up.

# Architecture

  - handlers: participant pages and API, admin participants, export
  - router: route table and API documentation under /docs/
  - apidoc: OpenAPI document built from the route table
  - middleware: CORS, logging, admin bearer check, JSON helpers
  - store: participant registry and response store
  - survey: survey definition loader
  - models: request/response types
  - auth: ID generation and secret comparison
  - db: connection and schema creation
  - logging: slog setup with secret redaction
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
