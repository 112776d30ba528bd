// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/simple-survey/auth"
	"github.com/danielhkuo/simple-survey/cliparse"
	"github.com/danielhkuo/simple-survey/db"
)

// TestAdminToken is the admin secret used by GetTestConfig
const TestAdminToken = "test-admin-token"

// TestHashSalt keys the hashes written to logs in tests
const TestHashSalt = "test-hash-salt"

// TestSurveyJSON is a small survey definition for tests
const TestSurveyJSON = `{"title":"Test Survey","pages":[{"name":"page1","elements":[{"type":"text","name":"q1"}]}]}`

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The database is closed and removed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := cliparse.Config{
		DatabaseType: cliparse.DatabaseSQLite,
		DatabaseURL:  filepath.Join(t.TempDir(), "test.db"),
	}

	conn, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupPostgresDB connects to the PostgreSQL database named by
// TEST_DATABASE_URL and recreates the schema. The test is skipped when the
// variable is unset. The database is wiped, so never point it at real data.
func SetupPostgresDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := cliparse.Config{
		DatabaseType: cliparse.DatabasePostgres,
		DatabaseURL:  url,
	}

	conn, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Clean up tables before each test
	if _, err := conn.Exec(`DROP TABLE IF EXISTS response CASCADE; DROP TABLE IF EXISTS participant CASCADE;`); err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}
	if err := db.CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                 5000,
		DatabaseType:         cliparse.DatabaseSQLite,
		DatabaseURL:          "file:test.db",
		AdminToken:           TestAdminToken,
		HashSalt:             TestHashSalt,
		SurveyJSONPath:       "./survey.json",
		ParticipantsSeedPath: "./participants.json",
		AllowResponseUpdates: true,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// AdminHeaders returns the Authorization header for admin requests
func AdminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + TestAdminToken}
}

// CreateTestParticipant inserts a participant with the given token and label
func CreateTestParticipant(t *testing.T, conn *sql.DB, token, label string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO participant (token, label, created_at)
		VALUES ($1, $2, $3)
	`, token, label, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}
}

// CreateTestResponse stores a response for token and returns its ID
func CreateTestResponse(t *testing.T, conn *sql.DB, token string, answers map[string]any) string {
	t.Helper()

	payload, err := json.Marshal(answers)
	if err != nil {
		t.Fatalf("Failed to encode answers: %v", err)
	}

	id, _ := auth.GenerateID(16)
	now := time.Now().UTC()
	_, err = conn.Exec(`
		INSERT INTO response (id, participant_token, answers, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, token, string(payload), now, now)
	if err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}

	return id
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s rows: %v", table, err)
	}
	return n
}

// WriteTestFile writes content to name inside a temp dir and returns the path
func WriteTestFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		var reader *bytes.Reader
		if raw, ok := body.(string); ok {
			reader = bytes.NewReader([]byte(raw))
		} else {
			jsonBody, _ := json.Marshal(body)
			reader = bytes.NewReader(jsonBody)
		}
		req = httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
