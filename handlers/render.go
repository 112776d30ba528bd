// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/simple-survey/middleware"
	"github.com/danielhkuo/simple-survey/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// renderHTML executes a page template into a buffer first so a template
// error still produces a clean 500 instead of a half-written page.
func renderHTML(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write page", "template", name, "error", err)
	}
}

type errorPage struct {
	PageTitle string
	Heading   string
	Message   string
}

func renderErrorPage(w http.ResponseWriter, status int, heading, message string) {
	renderHTML(w, status, "error.html", errorPage{
		PageTitle: heading,
		Heading:   heading,
		Message:   message,
	})
}

// renderInvalidLink is what a participant sees for an unknown token. It is
// deliberately not a 404 so it cannot be mistaken for a missing page.
func renderInvalidLink(w http.ResponseWriter) {
	renderErrorPage(w, http.StatusUnauthorized, "Invalid survey link",
		"This survey link is not valid. Please check the link you received.")
}

// writeStoreError maps store errors onto JSON API responses. Anything that
// is not a known domain error is logged and answered with a 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, store.ErrValidation):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConflict):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	default:
		middleware.LogError("failed to "+action, err, "route", middleware.Route(r))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
