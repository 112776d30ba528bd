// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) at debug level and completion
(status, duration_ms) at info level.

# Admin Authentication

RequireAdmin checks the Authorization: Bearer header against the
configured admin token in constant time:

	mux.HandleFunc("GET /api/admin/participants",
		middleware.WithLogging(middleware.RequireAdmin(cfg.AdminToken, handler)))

A missing or wrong token answers 401 with a WWW-Authenticate header
before the handler sees the body.

# CORS Middleware

Enable cross-origin requests from the deployment's own origin:

	server := http.Server{
		Handler: middleware.CORS(middleware.OriginOf(cfg.BaseURL), mux),
	}

Only the configured origin is echoed back. With no origin configured the
wildcard is sent. Credentials are never allowed. Preflight OPTIONS
requests answer 200 before auth runs.

# Log Hygiene

Request logs carry the matched route pattern (Route), never the raw path,
so participant tokens stay out of the logs. LogError redacts any "token"
value attached to a goerr error.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies (limited to MaxBodyBytes):

	var req models.CreateParticipantRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

LogError logs an error together with the values attached by goerr.

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used for the hashed IP recorded with each submission.
*/
package middleware
