// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/danielhkuo/simple-survey/models"
)

// SeedFromFile merges the participants listed in a seed file into the
// registry. See ParseSeed for the accepted formats.
func (s *Participants) SeedFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to read participants seed file", goerr.V("path", path))
	}

	entries, err := ParseSeed(data)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid participants seed file", goerr.V("path", path))
	}

	return s.Seed(ctx, entries)
}

// Seed inserts every entry whose token is not registered yet and returns how
// many were inserted. Existing participants are left untouched, so links
// already handed out stay valid no matter how often the seed runs.
func (s *Participants) Seed(ctx context.Context, entries []models.SeedParticipant) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	inserted := 0
	now := s.now()
	for _, e := range entries {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO participant (token, label, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (token) DO NOTHING
		`, e.Token, strings.TrimSpace(e.Label), now)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to seed participant", goerr.V("token", e.Token))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, goerr.Wrap(err, "failed to seed participant", goerr.V("token", e.Token))
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, goerr.Wrap(err, "failed to commit participant seed")
	}
	return inserted, nil
}

// ParseSeed decodes a seed document. Both a bare array
//
//	[{"token": "abc123", "label": "Alice"}]
//
// and an object wrapping it
//
//	{"participants": [{"token": "abc123", "label": "Alice"}]}
//
// are accepted. Every entry needs a token and tokens must be unique.
func ParseSeed(data []byte) ([]models.SeedParticipant, error) {
	data = bytes.TrimSpace(data)

	var entries []models.SeedParticipant
	switch {
	case len(data) == 0:
		return nil, goerr.Wrap(ErrValidation, "seed document is empty")
	case data[0] == '[':
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, goerr.Wrap(err, "failed to decode seed array")
		}
	case data[0] == '{':
		var doc struct {
			Participants *[]models.SeedParticipant `json:"participants"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode seed object")
		}
		if doc.Participants == nil {
			return nil, goerr.Wrap(ErrValidation, `seed object has no "participants" array`)
		}
		entries = *doc.Participants
	default:
		return nil, goerr.Wrap(ErrValidation, "seed document must be a JSON array or object")
	}

	seen := make(map[string]bool, len(entries))
	for i := range entries {
		entries[i].Token = strings.TrimSpace(entries[i].Token)
		token := entries[i].Token
		if token == "" {
			return nil, goerr.Wrap(ErrValidation, "seed entry has no token", goerr.V("index", i))
		}
		if seen[token] {
			return nil, goerr.Wrap(ErrValidation, "duplicate token in seed", goerr.V("token", token))
		}
		seen[token] = true
	}
	return entries, nil
}
