// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/simple-survey/auth"
	"github.com/danielhkuo/simple-survey/cliparse"
	"github.com/danielhkuo/simple-survey/middleware"
	"github.com/danielhkuo/simple-survey/models"
	"github.com/danielhkuo/simple-survey/store"
)

// ParticipantHandler serves the admin participant endpoints. Routes are
// expected to be wrapped in middleware.RequireAdmin.
type ParticipantHandler struct {
	participants *store.Participants
	cfg          cliparse.Config
}

func NewParticipantHandler(db *sql.DB, cfg cliparse.Config) *ParticipantHandler {
	return &ParticipantHandler{
		participants: store.NewParticipants(db),
		cfg:          cfg,
	}
}

// ListParticipants handles GET /api/admin/participants
func (h *ParticipantHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	list, err := h.participants.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list participants")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, list)
}

// CreateParticipant handles POST /api/admin/participants
// An empty body is allowed and creates a participant without a label.
func (h *ParticipantHandler) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	var req models.CreateParticipantRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.participants.Create(r.Context(), req.Label)
	if err != nil {
		writeStoreError(w, r, err, "create participant")
		return
	}

	slog.Info("participant created", "participant", h.fingerprint(p.Token), "label", p.Label)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateParticipantResponse{
		Participant: *p,
		SurveyURL:   h.surveyURL(p.Token),
	})
}

// GetParticipant handles GET /api/admin/participants/{token}
func (h *ParticipantHandler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	p, err := h.participants.Get(r.Context(), r.PathValue("token"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Participant not found")
			return
		}
		writeStoreError(w, r, err, "load participant")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, p)
}

// UpdateParticipant handles PUT /api/admin/participants/{token}
func (h *ParticipantHandler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateParticipantRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.participants.UpdateLabel(r.Context(), r.PathValue("token"), req.Label)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Participant not found")
			return
		}
		writeStoreError(w, r, err, "update participant")
		return
	}

	slog.Info("participant updated", "participant", h.fingerprint(p.Token))
	middleware.JSONResponse(w, http.StatusOK, p)
}

// DeleteParticipant handles DELETE /api/admin/participants/{token}
// The participant's response goes with it.
func (h *ParticipantHandler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if err := h.participants.Delete(r.Context(), token); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Participant not found")
			return
		}
		writeStoreError(w, r, err, "delete participant")
		return
	}

	slog.Info("participant deleted", "participant", h.fingerprint(token))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ParticipantHandler) fingerprint(token string) string {
	return auth.Fingerprint(token, h.cfg.HashSalt)
}

func (h *ParticipantHandler) surveyURL(token string) string {
	return strings.TrimRight(h.cfg.BaseURL, "/") + "/s/" + token
}
