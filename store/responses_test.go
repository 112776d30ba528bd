// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/simple-survey/models"
	"github.com/danielhkuo/simple-survey/testutil"
)

func TestResponses_SubmitAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	responses := NewResponses(db)
	testutil.CreateTestParticipant(t, db, "abc123", "Alice")

	if _, err := responses.GetByToken(ctx, "abc123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before submission, got %v", err)
	}

	resp, created, err := responses.Submit(ctx, "abc123", models.Answers{"q1": "yes"}, false)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !created {
		t.Error("first Submit() should create")
	}
	if resp.ParticipantToken != "abc123" || resp.Answers["q1"] != "yes" {
		t.Errorf("Submit() = %+v", resp)
	}
	if !resp.SubmittedAt.Equal(resp.UpdatedAt) {
		t.Error("fresh response should have submitted_at == updated_at")
	}

	got, err := responses.GetByToken(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetByToken() error = %v", err)
	}
	if got.ID != resp.ID || got.Answers["q1"] != "yes" {
		t.Errorf("GetByToken() = %+v, want %+v", got, resp)
	}
}

func TestResponses_SubmitTwiceWithoutUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	responses := NewResponses(db)
	testutil.CreateTestParticipant(t, db, "abc123", "")

	if _, _, err := responses.Submit(ctx, "abc123", models.Answers{"q1": "yes"}, false); err != nil {
		t.Fatal(err)
	}

	_, _, err := responses.Submit(ctx, "abc123", models.Answers{"q1": "no"}, false)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Original answers untouched
	got, err := responses.GetByToken(ctx, "abc123")
	if err != nil {
		t.Fatal(err)
	}
	if got.Answers["q1"] != "yes" {
		t.Errorf("conflicting submission overwrote answers: %v", got.Answers)
	}
}

func TestResponses_SubmitTwiceWithUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	responses := NewResponses(db)
	testutil.CreateTestParticipant(t, db, "abc123", "")

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	responses.now = func() time.Time { return clock }

	first, _, err := responses.Submit(ctx, "abc123", models.Answers{"q1": "yes"}, true)
	if err != nil {
		t.Fatal(err)
	}

	clock = clock.Add(time.Hour)
	second, created, err := responses.Submit(ctx, "abc123", models.Answers{"q1": "no"}, true)
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
	if created {
		t.Error("second Submit() should update, not create")
	}
	if second.ID != first.ID {
		t.Error("update must keep the same row")
	}
	if second.Answers["q1"] != "no" {
		t.Errorf("expected updated answers, got %v", second.Answers)
	}
	if !second.SubmittedAt.Equal(first.SubmittedAt) {
		t.Errorf("submitted_at changed: %v -> %v", first.SubmittedAt, second.SubmittedAt)
	}
	if !second.UpdatedAt.Equal(clock) {
		t.Errorf("updated_at = %v, want %v", second.UpdatedAt, clock)
	}
	if n := testutil.CountRows(t, db, "response"); n != 1 {
		t.Errorf("expected exactly one response row, got %d", n)
	}
}

func TestResponses_SubmitUnknownParticipant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	responses := NewResponses(db)

	_, _, err := responses.Submit(context.Background(), "doesnotexist", models.Answers{"q1": "yes"}, true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResponses_SubmitEmptyAnswers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	responses := NewResponses(db)
	testutil.CreateTestParticipant(t, db, "abc123", "")

	_, _, err := responses.Submit(context.Background(), "abc123", models.Answers{}, true)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestResponses_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	responses := NewResponses(db)
	testutil.CreateTestParticipant(t, db, "abc123", "")

	if _, err := responses.Update(ctx, "abc123", models.Answers{"q1": "no"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update() without prior response: expected ErrNotFound, got %v", err)
	}

	testutil.CreateTestResponse(t, db, "abc123", map[string]any{"q1": "yes", "q2": []any{"a", "b"}})

	updated, err := responses.Update(ctx, "abc123", models.Answers{"q1": "no"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Answers["q1"] != "no" {
		t.Errorf("Update() answers = %v", updated.Answers)
	}
	if _, ok := updated.Answers["q2"]; ok {
		t.Error("Update() must replace the whole document, not merge")
	}

	got, err := responses.GetByToken(ctx, "abc123")
	if err != nil {
		t.Fatal(err)
	}
	if got.Answers["q1"] != "no" {
		t.Errorf("read back %v, want latest answers", got.Answers)
	}
}

// SQLite runs on a single connection, so these submissions queue up and
// the losers reach ON CONFLICT DO NOTHING one after another. The Postgres
// variant below exercises truly overlapping transactions.
func TestResponses_ConcurrentSubmissions(t *testing.T) {
	assertSingleWinner(t, testutil.SetupTestDB(t))
}

// Runs only when TEST_DATABASE_URL points at a disposable PostgreSQL database.
func TestResponses_ConcurrentSubmissions_Postgres(t *testing.T) {
	assertSingleWinner(t, testutil.SetupPostgresDB(t))
}

func assertSingleWinner(t *testing.T, db *sql.DB) {
	t.Helper()
	responses := NewResponses(db)
	testutil.CreateTestParticipant(t, db, "abc123", "")

	const n = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	created, conflicts := 0, 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok, err := responses.Submit(context.Background(), "abc123", models.Answers{"q1": i}, false)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && ok:
				created++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected result: created=%v err=%v", ok, err)
			}
		}(i)
	}
	wg.Wait()

	if created != 1 || conflicts != n-1 {
		t.Errorf("expected 1 created and %d conflicts, got %d and %d", n-1, created, conflicts)
	}
	if c := testutil.CountRows(t, db, "response"); c != 1 {
		t.Errorf("expected exactly one response row, got %d", c)
	}
}

func TestResponses_ListAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	responses := NewResponses(db)

	rows, err := responses.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("expected empty non-nil export, got %#v", rows)
	}

	testutil.CreateTestParticipant(t, db, "a", "Alice")
	testutil.CreateTestParticipant(t, db, "b", "Bob")
	testutil.CreateTestParticipant(t, db, "c", "Carol")

	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	responses.now = func() time.Time { return clock }
	for _, token := range []string{"b", "a"} {
		if _, _, err := responses.Submit(ctx, token, models.Answers{"who": token}, false); err != nil {
			t.Fatal(err)
		}
		clock = clock.Add(time.Minute)
	}

	rows, err = responses.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (Carol has not answered), got %d", len(rows))
	}
	if rows[0].Token != "b" || rows[0].Label != "Bob" || rows[1].Token != "a" || rows[1].Label != "Alice" {
		t.Errorf("unexpected export order/labels: %+v", rows)
	}
	if rows[0].Answers["who"] != "b" {
		t.Errorf("unexpected answers %v", rows[0].Answers)
	}
}

func TestParseAnswers(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"object", `{"q1":"yes"}`, false},
		{"nested", `{"q1":{"row1":"a"},"q2":[1,2,3]}`, false},
		{"empty object", `{}`, true},
		{"null", `null`, true},
		{"array", `["yes"]`, true},
		{"string", `"yes"`, true},
		{"empty body", ``, true},
		{"truncated", `{"q1":`, true},
		{"trailing data", `{"q1":"yes"}{"q2":"no"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAnswers([]byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("ParseAnswers(%q) expected ErrValidation, got %v", tt.data, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseAnswers(%q) error = %v", tt.data, err)
			}
		})
	}
}

func TestParseAnswers_PreservesNumbers(t *testing.T) {
	answers, err := ParseAnswers([]byte(`{"big": 12345678901234567890}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := answers["big"]; got == nil || got.(interface{ String() string }).String() != "12345678901234567890" {
		t.Errorf("number lost precision: %v", got)
	}
}
