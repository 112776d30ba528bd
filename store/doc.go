// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store holds the participant registry and the response store.

# Participants

Participants are keyed by token. Create generates a UUID token; Seed and
SeedFromFile merge a list of known tokens into the table without touching
rows that already exist:

	inserted, err := store.NewParticipants(db).SeedFromFile(ctx, "participants.json")

# Responses

Each participant has at most one response, enforced by the UNIQUE
constraint on response.participant_token. Submit inserts with
ON CONFLICT DO NOTHING and decides from the affected row count:

  - row inserted: created
  - no row, updates allowed: answers overwritten, updated_at refreshed
  - no row, updates not allowed: ErrConflict

Answers are stored as JSON text and are otherwise opaque.

# Errors

Errors are wrapped with goerr and carry the token or path involved. Match
them with errors.Is against ErrNotFound, ErrConflict and ErrValidation.
*/
package store
