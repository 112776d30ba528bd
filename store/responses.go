// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/danielhkuo/simple-survey/auth"
	"github.com/danielhkuo/simple-survey/models"
)

// Responses is the response store. It owns the response table; the UNIQUE
// constraint on participant_token keeps it at one row per participant.
type Responses struct {
	db  *sql.DB
	now func() time.Time
}

func NewResponses(db *sql.DB) *Responses {
	return &Responses{db: db, now: utcNow}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResponse(row rowScanner) (*models.Response, error) {
	var r models.Response
	var answers string
	if err := row.Scan(&r.ID, &r.ParticipantToken, &answers, &r.SubmittedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	decoded, err := decodeAnswers([]byte(answers))
	if err != nil {
		return nil, goerr.Wrap(err, "stored answers are corrupt", goerr.V("token", r.ParticipantToken))
	}
	r.Answers = decoded
	return &r, nil
}

// GetByToken returns the response submitted under token.
func (s *Responses) GetByToken(ctx context.Context, token string) (*models.Response, error) {
	return s.getByToken(ctx, s.db, token)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Responses) getByToken(ctx context.Context, q queryRower, token string) (*models.Response, error) {
	r, err := scanResponse(q.QueryRowContext(ctx, `
		SELECT id, participant_token, answers, submitted_at, updated_at
		FROM response
		WHERE participant_token = $1
	`, token))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "response not found", goerr.V("token", token))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get response", goerr.V("token", token))
	}
	return r, nil
}

// Submit stores the first response for token. When a response already
// exists it is overwritten if allowUpdate is set and ErrConflict is returned
// otherwise. created reports whether a new row was inserted.
func (s *Responses) Submit(ctx context.Context, token string, answers models.Answers, allowUpdate bool) (resp *models.Response, created bool, err error) {
	payload, err := encodeAnswers(answers)
	if err != nil {
		return nil, false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM participant WHERE token = $1)
	`, token).Scan(&exists)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to check participant", goerr.V("token", token))
	}
	if !exists {
		return nil, false, goerr.Wrap(ErrNotFound, "participant not found", goerr.V("token", token))
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to generate response ID")
	}

	// Loser of a concurrent insert lands here with zero rows affected
	now := s.now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO response (id, participant_token, answers, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (participant_token) DO NOTHING
	`, id, token, payload, now, now)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to insert response", goerr.V("token", token))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to insert response", goerr.V("token", token))
	}
	created = n == 1

	if !created {
		if !allowUpdate {
			return nil, false, goerr.Wrap(ErrConflict, "response already submitted", goerr.V("token", token))
		}
		if err := updateAnswers(ctx, tx, token, payload, now); err != nil {
			return nil, false, err
		}
	}

	resp, err = s.getByToken(ctx, tx, token)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, goerr.Wrap(err, "failed to commit response", goerr.V("token", token))
	}
	return resp, created, nil
}

// Update overwrites the answers of an existing response and refreshes
// updated_at. submitted_at keeps the time of the first submission.
func (s *Responses) Update(ctx context.Context, token string, answers models.Answers) (*models.Response, error) {
	payload, err := encodeAnswers(answers)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := updateAnswers(ctx, tx, token, payload, s.now()); err != nil {
		return nil, err
	}

	resp, err := s.getByToken(ctx, tx, token)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit response update", goerr.V("token", token))
	}
	return resp, nil
}

func updateAnswers(ctx context.Context, tx *sql.Tx, token, payload string, now time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE response SET answers = $1, updated_at = $2
		WHERE participant_token = $3
	`, payload, now, token)
	if err != nil {
		return goerr.Wrap(err, "failed to update response", goerr.V("token", token))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to update response", goerr.V("token", token))
	}
	if n == 0 {
		return goerr.Wrap(ErrNotFound, "response not found", goerr.V("token", token))
	}
	return nil
}

// ListAll returns every response with its participant label, in
// submission order. Used for the admin export.
func (s *Responses) ListAll(ctx context.Context) ([]models.ExportRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.participant_token, p.label, r.submitted_at, r.updated_at, r.answers
		FROM response r
		JOIN participant p ON p.token = r.participant_token
		ORDER BY r.submitted_at, r.participant_token
	`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list responses")
	}
	defer rows.Close()

	export := []models.ExportRow{}
	for rows.Next() {
		var row models.ExportRow
		var answers string
		if err := rows.Scan(&row.Token, &row.Label, &row.SubmittedAt, &row.UpdatedAt, &answers); err != nil {
			return nil, goerr.Wrap(err, "failed to scan response")
		}
		if row.Answers, err = decodeAnswers([]byte(answers)); err != nil {
			return nil, goerr.Wrap(err, "stored answers are corrupt", goerr.V("token", row.Token))
		}
		export = append(export, row)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate responses")
	}
	return export, nil
}

// ParseAnswers validates a submitted answer document. Only the shape is
// checked: it must be a single, non-empty JSON object.
func ParseAnswers(data []byte) (models.Answers, error) {
	answers, err := decodeAnswers(data)
	if err != nil {
		return nil, goerr.Wrap(ErrValidation, "answers must be a JSON object", goerr.V("cause", err.Error()))
	}
	if len(answers) == 0 {
		return nil, goerr.Wrap(ErrValidation, "no answers provided")
	}
	return answers, nil
}

func decodeAnswers(data []byte) (models.Answers, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var answers models.Answers
	if err := dec.Decode(&answers); err != nil {
		return nil, err
	}
	if answers == nil {
		return nil, errors.New("answers document is null")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after answers document")
	}
	return answers, nil
}

func encodeAnswers(answers models.Answers) (string, error) {
	if len(answers) == 0 {
		return "", goerr.Wrap(ErrValidation, "no answers provided")
	}
	b, err := json.Marshal(answers)
	if err != nil {
		return "", goerr.Wrap(ErrValidation, "answers cannot be encoded", goerr.V("cause", err.Error()))
	}
	return string(b), nil
}
