// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/danielhkuo/simple-survey/models"
)

func TestWithLogging(t *testing.T) {
	// Create a simple handler that returns OK
	handlerCalled := false
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}

	// Wrap with logging middleware
	wrappedHandler := WithLogging(testHandler)

	// Create test request and recorder
	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	// Execute
	wrappedHandler(w, req)

	// Verify handler was called
	if !handlerCalled {
		t.Error("Expected handler to be called")
	}

	// Verify response was written correctly
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("Expected body 'success', got '%s'", w.Body.String())
	}
}

func TestWithLogging_PreservesResponse(t *testing.T) {
	// Test that logging doesn't interfere with various response codes
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"id":"123"}`},
		{"BadRequest", http.StatusBadRequest, `{"error":"bad request"}`},
		{"NotFound", http.StatusNotFound, "not found"},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/api/test", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "simple struct",
			statusCode: http.StatusOK,
			data:       map[string]string{"message": "hello"},
			expected:   `{"message":"hello"}`,
		},
		{
			name:       "created response",
			statusCode: http.StatusCreated,
			data:       models.SubmitResponseResponse{Status: models.StatusCreated, Response: models.Response{ParticipantToken: "abc123", Answers: models.Answers{"q1": "yes"}, SubmittedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}},
			expected:   `{"status":"created","response":{"token":"abc123","answers":{"q1":"yes"},"submitted_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z"}}`,
		},
		{
			name:       "error response",
			statusCode: http.StatusBadRequest,
			data:       models.ErrorResponse{Error: "Bad Request", Message: "missing field"},
			expected:   `{"error":"Bad Request","message":"missing field"}`,
		},
		{
			name:       "array data",
			statusCode: http.StatusOK,
			data:       []string{"a", "b", "c"},
			expected:   `["a","b","c"]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			// Check status code
			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			// Check Content-Type header
			contentType := w.Header().Get("Content-Type")
			if contentType != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
			}

			// Check body (trim newline added by Encode)
			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		name          string
		statusCode    int
		message       string
		expectedError string
	}{
		{
			name:          "bad request",
			statusCode:    http.StatusBadRequest,
			message:       "label is required",
			expectedError: "Bad Request",
		},
		{
			name:          "unauthorized",
			statusCode:    http.StatusUnauthorized,
			message:       "Valid admin bearer token required",
			expectedError: "Unauthorized",
		},
		{
			name:          "not found",
			statusCode:    http.StatusNotFound,
			message:       "participant not found",
			expectedError: "Not Found",
		},
		{
			name:          "conflict",
			statusCode:    http.StatusConflict,
			message:       "response already submitted",
			expectedError: "Conflict",
		},
		{
			name:          "internal error",
			statusCode:    http.StatusInternalServerError,
			message:       "database error",
			expectedError: "Internal Server Error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			// Check status code
			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			// Check Content-Type
			if w.Header().Get("Content-Type") != "application/json" {
				t.Error("Expected Content-Type 'application/json'")
			}

			// Decode and verify error response
			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}

			if resp.Error != tc.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedError, resp.Error)
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		body := `{"label":"Alice"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.CreateParticipantRequest
		err := ParseJSONBody(httptest.NewRecorder(), req, &parsed)

		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.Label != "Alice" {
			t.Errorf("Expected label 'Alice', got '%s'", parsed.Label)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		body := `{invalid json}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.CreateParticipantRequest
		err := ParseJSONBody(httptest.NewRecorder(), req, &parsed)

		if err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))

		var parsed models.CreateParticipantRequest
		err := ParseJSONBody(httptest.NewRecorder(), req, &parsed)

		if err == nil {
			t.Error("Expected error for empty body")
		}
	})

	t.Run("extra fields ignored", func(t *testing.T) {
		body := `{"label":"Bob","unknown_field":"ignored"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.CreateParticipantRequest
		err := ParseJSONBody(httptest.NewRecorder(), req, &parsed)

		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.Label != "Bob" {
			t.Errorf("Expected label 'Bob', got '%s'", parsed.Label)
		}
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		body := `{"label":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.CreateParticipantRequest
		err := ParseJSONBody(httptest.NewRecorder(), req, &parsed)

		if err == nil {
			t.Error("Expected error for body over the limit")
		}
	})

	t.Run("body is closed after parsing", func(t *testing.T) {
		body := `{"label":"Alice"}`
		bodyReader := io.NopCloser(bytes.NewReader([]byte(body)))
		req := httptest.NewRequest("POST", "/", bodyReader)

		var parsed models.CreateParticipantRequest
		_ = ParseJSONBody(httptest.NewRecorder(), req, &parsed)

		// Try to read from body again - should return empty since it's consumed
		remaining, _ := io.ReadAll(req.Body)
		if len(remaining) > 0 {
			t.Error("Expected body to be consumed/closed")
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	const secret = "admin-secret"

	testCases := []struct {
		name           string
		authorization  string
		expectedStatus int
		expectCalled   bool
	}{
		{"valid token", "Bearer " + secret, http.StatusOK, true},
		{"missing header", "", http.StatusUnauthorized, false},
		{"wrong token", "Bearer wrong", http.StatusUnauthorized, false},
		{"basic auth", "Basic YWRtaW46YWRtaW4=", http.StatusUnauthorized, false},
		{"token without scheme", secret, http.StatusUnauthorized, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := RequireAdmin(secret, func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("POST", "/api/admin/participants", strings.NewReader(`{"label":"x"}`))
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, w.Code)
			}
			if called != tc.expectCalled {
				t.Errorf("handler called = %v, want %v", called, tc.expectCalled)
			}
			if !tc.expectCalled && !strings.HasPrefix(w.Header().Get("WWW-Authenticate"), "Bearer") {
				t.Error("Expected WWW-Authenticate: Bearer challenge")
			}
		})
	}

	t.Run("empty secret rejects everything", func(t *testing.T) {
		handler := RequireAdmin("", func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not be called")
		})
		req := httptest.NewRequest("GET", "/api/admin/responses", nil)
		req.Header.Set("Authorization", "Bearer ")
		w := httptest.NewRecorder()

		handler(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}

func TestWithLogging_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	handler(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/responses/abc", nil))

	if !strings.Contains(buf.String(), "status=409") {
		t.Errorf("Expected status in log line, got %q", buf.String())
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	err := goerr.Wrap(errors.New("disk full"), "failed to save", goerr.V("token", "abc123"))
	LogError("submit failed", err, "route", "POST /api/responses/{token}")

	out := buf.String()
	for _, want := range []string{"submit failed", "disk full", `route="POST /api/responses/{token}"`, "[REDACTED]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in log output %q", want, out)
		}
	}
	if strings.Contains(out, "abc123") {
		t.Errorf("participant token leaked into log output %q", out)
	}
}

func TestCORS(t *testing.T) {
	// Create a simple handler that returns OK
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("handled"))
	})

	testCases := []struct {
		name          string
		allowedOrigin string
		origin        string
		expectedAllow string
	}{
		{"any origin when unrestricted", "", "https://example.com", "*"},
		{"no origin when unrestricted", "", "", "*"},
		{"matching origin", "https://survey.example.com", "https://survey.example.com", "https://survey.example.com"},
		{"foreign origin", "https://survey.example.com", "https://evil.example.net", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/survey/abc123", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			w := httptest.NewRecorder()

			CORS(tc.allowedOrigin, nextHandler).ServeHTTP(w, req)

			if w.Body.String() != "handled" {
				t.Error("Expected next handler to be called")
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.expectedAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tc.expectedAllow)
			}
			if w.Header().Get("Access-Control-Allow-Credentials") != "" {
				t.Error("Credentials must not be allowed")
			}
		})
	}

	t.Run("allows required methods and headers", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/responses/abc123", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		CORS("", nextHandler).ServeHTTP(w, req)

		allowedMethods := w.Header().Get("Access-Control-Allow-Methods")
		for _, method := range []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"} {
			if !strings.Contains(allowedMethods, method) {
				t.Errorf("Expected %s in allowed methods", method)
			}
		}

		// Admin calls send the bearer token
		allowedHeaders := w.Header().Get("Access-Control-Allow-Headers")
		for _, header := range []string{"Authorization", "Content-Type"} {
			if !strings.Contains(allowedHeaders, header) {
				t.Errorf("Expected %s in allowed headers", header)
			}
		}
	})
}

// A browser preflight for an admin route carries no Authorization header,
// so CORS must answer it before RequireAdmin runs.
func TestCORS_AdminPreflight(t *testing.T) {
	const secret = "admin-secret"
	const origin = "https://survey.example.com"

	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/participants", RequireAdmin(secret, func(w http.ResponseWriter, r *http.Request) {
		called = true
		JSONResponse(w, http.StatusCreated, map[string]string{"token": "new"})
	}))
	handler := CORS(origin, mux)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/admin/participants", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w.Body.String() != "" {
			t.Errorf("Expected empty body for preflight, got '%s'", w.Body.String())
		}
		if called {
			t.Error("preflight must not reach the admin handler")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != origin {
			t.Error("Expected the configured origin to be allowed")
		}
	})

	t.Run("actual request still needs the bearer token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/admin/participants", strings.NewReader(`{"label":"x"}`))
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
		if w.Header().Get("Access-Control-Allow-Origin") != origin {
			t.Error("Expected CORS headers on the rejection so the browser can read it")
		}
	})

	t.Run("authorized request", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/admin/participants", strings.NewReader(`{"label":"x"}`))
		req.Header.Set("Origin", origin)
		req.Header.Set("Authorization", "Bearer "+secret)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusCreated || !called {
			t.Errorf("Expected admin handler to run, got %d", w.Code)
		}
	})
}

func TestOriginOf(t *testing.T) {
	testCases := []struct {
		baseURL string
		want    string
	}{
		{"", ""},
		{"https://survey.example.com", "https://survey.example.com"},
		{"https://survey.example.com/app/", "https://survey.example.com"},
		{"http://localhost:5000", "http://localhost:5000"},
		{"/relative", ""},
	}

	for _, tc := range testCases {
		if got := OriginOf(tc.baseURL); got != tc.want {
			t.Errorf("OriginOf(%q) = %q, want %q", tc.baseURL, got, tc.want)
		}
	}
}

func TestRoute(t *testing.T) {
	var seen string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /s/{token}", func(w http.ResponseWriter, r *http.Request) {
		seen = Route(r)
	})
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/s/abc123", nil))

	if seen != "GET /s/{token}" {
		t.Errorf("Route() = %q, want the mux pattern", seen)
	}
	if got := Route(httptest.NewRequest("PUT", "/s/abc123", nil)); got != "PUT" {
		t.Errorf("Route() without a pattern = %q, want the method", got)
	}
}

func TestWithLogging_OmitsToken(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(prev)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/responses/{token}", WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/responses/abc123", nil))

	out := buf.String()
	if strings.Contains(out, "abc123") {
		t.Errorf("participant token leaked into log output %q", out)
	}
	if !strings.Contains(out, "{token}") {
		t.Errorf("Expected route pattern in log output %q", out)
	}
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{
			name:       "X-Forwarded-For single IP",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "X-Forwarded-For chained IPs (comma separated)",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100, 10.0.0.1, 172.16.0.1"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "X-Forwarded-For chained IPs (space after comma)",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18, 150.172.238.178"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "203.0.113.195",
		},
		{
			name:       "X-Real-IP takes precedence over RemoteAddr",
			headers:    map[string]string{"X-Real-IP": "203.0.113.50"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "203.0.113.50",
		},
		{
			name:       "X-Forwarded-For takes precedence over X-Real-IP",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100", "X-Real-IP": "203.0.113.50"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "RemoteAddr with port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.50:54321",
			expectedIP: "192.168.1.50",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.50",
			expectedIP: "192.168.1.50",
		},
		{
			name:       "IPv6 RemoteAddr with port",
			headers:    map[string]string{},
			remoteAddr: "[::1]:12345",
			expectedIP: "[::1]", // Implementation strips port after last colon
		},
		{
			name:       "IPv6 in X-Forwarded-For",
			headers:    map[string]string{"X-Forwarded-For": "2001:db8::1"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "2001:db8::1",
		},
		{
			name:       "empty X-Forwarded-For falls through to RemoteAddr",
			headers:    map[string]string{"X-Forwarded-For": ""},
			remoteAddr: "10.0.0.5:8080",
			expectedIP: "10.0.0.5",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/responses/abc123", nil)
			req.RemoteAddr = tc.remoteAddr

			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			result := GetClientIP(req)

			if result != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, result)
			}
		})
	}
}
