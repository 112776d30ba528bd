// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/simple-survey/survey"
	"github.com/danielhkuo/simple-survey/testutil"
)

// testSurvey parses the shared test survey definition.
func testSurvey(t *testing.T) *survey.Definition {
	t.Helper()
	def, err := survey.Parse([]byte(testutil.TestSurveyJSON))
	if err != nil {
		t.Fatalf("Failed to parse test survey: %v", err)
	}
	return def
}

// serve runs handler against req with the given path values set.
func serve(handler http.HandlerFunc, req *http.Request, pathValues map[string]string) *httptest.ResponseRecorder {
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func tokenPath(token string) map[string]string {
	return map[string]string{"token": token}
}

func setupSurveyHandler(t *testing.T, allowUpdates bool) (*SurveyHandler, *sql.DB) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.AllowResponseUpdates = allowUpdates
	return NewSurveyHandler(conn, cfg, testSurvey(t)), conn
}
