// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/danielhkuo/simple-survey/models"
)

// Participants is the participant registry. It owns the participant table.
type Participants struct {
	db  *sql.DB
	now func() time.Time
}

func NewParticipants(db *sql.DB) *Participants {
	return &Participants{db: db, now: utcNow}
}

// Get looks up a participant by token.
func (s *Participants) Get(ctx context.Context, token string) (*models.Participant, error) {
	var p models.Participant
	err := s.db.QueryRowContext(ctx, `
		SELECT token, label, created_at FROM participant WHERE token = $1
	`, token).Scan(&p.Token, &p.Label, &p.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "participant not found", goerr.V("token", token))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get participant", goerr.V("token", token))
	}
	return &p, nil
}

// Create registers a participant under a freshly generated token.
func (s *Participants) Create(ctx context.Context, label string) (*models.Participant, error) {
	p := models.Participant{
		Token:     uuid.NewString(),
		Label:     strings.TrimSpace(label),
		CreatedAt: s.now(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participant (token, label, created_at)
		VALUES ($1, $2, $3)
	`, p.Token, p.Label, p.CreatedAt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create participant", goerr.V("label", p.Label))
	}
	return &p, nil
}

// List returns all participants, oldest first.
func (s *Participants) List(ctx context.Context) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, label, created_at
		FROM participant
		ORDER BY created_at, token
	`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list participants")
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.Token, &p.Label, &p.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan participant")
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate participants")
	}
	return participants, nil
}

// UpdateLabel changes the admin-facing label. The token never changes.
func (s *Participants) UpdateLabel(ctx context.Context, token, label string) (*models.Participant, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE participant SET label = $1 WHERE token = $2
	`, strings.TrimSpace(label), token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update participant", goerr.V("token", token))
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, goerr.Wrap(err, "failed to update participant", goerr.V("token", token))
	} else if n == 0 {
		return nil, goerr.Wrap(ErrNotFound, "participant not found", goerr.V("token", token))
	}
	return s.Get(ctx, token)
}

// Delete removes a participant together with its response.
func (s *Participants) Delete(ctx context.Context, token string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	// The foreign key cascades too, but only when the driver enforces it
	if _, err := tx.ExecContext(ctx, `DELETE FROM response WHERE participant_token = $1`, token); err != nil {
		return goerr.Wrap(err, "failed to delete response", goerr.V("token", token))
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM participant WHERE token = $1`, token)
	if err != nil {
		return goerr.Wrap(err, "failed to delete participant", goerr.V("token", token))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to delete participant", goerr.V("token", token))
	}
	if n == 0 {
		return goerr.Wrap(ErrNotFound, "participant not found", goerr.V("token", token))
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit participant deletion", goerr.V("token", token))
	}
	return nil
}

func utcNow() time.Time {
	// Microsecond precision survives a round trip through both drivers
	return time.Now().UTC().Truncate(time.Microsecond)
}
