// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/simple-survey/auth"
	"github.com/danielhkuo/simple-survey/cliparse"
	"github.com/danielhkuo/simple-survey/middleware"
	"github.com/danielhkuo/simple-survey/models"
	"github.com/danielhkuo/simple-survey/store"
	"github.com/danielhkuo/simple-survey/survey"
)

// SurveyHandler serves the participant-facing pages and API. Every route is
// gated by the token in the path.
type SurveyHandler struct {
	participants *store.Participants
	responses    *store.Responses
	survey       *survey.Definition
	cfg          cliparse.Config
}

func NewSurveyHandler(db *sql.DB, cfg cliparse.Config, def *survey.Definition) *SurveyHandler {
	return &SurveyHandler{
		participants: store.NewParticipants(db),
		responses:    store.NewResponses(db),
		survey:       def,
		cfg:          cfg,
	}
}

type surveyPage struct {
	PageTitle        string
	Token            string
	Survey           json.RawMessage
	PreviousAnswers  models.Answers
	AlreadyCompleted bool
	AllowUpdates     bool
	SubmittedAgo     string
}

type simplePage struct {
	PageTitle string
}

// Home handles GET /
func (h *SurveyHandler) Home(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, "home.html", simplePage{PageTitle: h.pageTitle()})
}

// ThankYou handles GET /thank-you
func (h *SurveyHandler) ThankYou(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, "thank_you.html", simplePage{PageTitle: h.pageTitle()})
}

// SurveyPage handles GET /s/{token}
func (h *SurveyHandler) SurveyPage(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	if _, err := h.participants.Get(r.Context(), token); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			renderInvalidLink(w)
			return
		}
		middleware.LogError("failed to look up participant", err)
		renderErrorPage(w, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	page := surveyPage{
		PageTitle:    h.pageTitle(),
		Token:        token,
		Survey:       h.survey.JSON(),
		AllowUpdates: h.cfg.AllowResponseUpdates,
	}

	resp, err := h.responses.GetByToken(r.Context(), token)
	switch {
	case err == nil:
		page.AlreadyCompleted = true
		page.PreviousAnswers = resp.Answers
		page.SubmittedAgo = humanize.Time(resp.SubmittedAt)
	case errors.Is(err, store.ErrNotFound):
		// not answered yet
	default:
		middleware.LogError("failed to load response", err)
		renderErrorPage(w, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	renderHTML(w, http.StatusOK, "survey.html", page)
}

// GetSurvey handles GET /api/survey/{token}
// JSON counterpart of SurveyPage for custom front ends.
func (h *SurveyHandler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if !h.checkToken(w, r, token) {
		return
	}

	out := models.SurveyResponse{
		Survey:       h.survey.JSON(),
		AllowUpdates: h.cfg.AllowResponseUpdates,
	}

	resp, err := h.responses.GetByToken(r.Context(), token)
	switch {
	case err == nil:
		out.Response = resp
	case errors.Is(err, store.ErrNotFound):
	default:
		writeStoreError(w, r, err, "load response")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, out)
}

// GetResponse handles GET /api/responses/{token}
func (h *SurveyHandler) GetResponse(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if !h.checkToken(w, r, token) {
		return
	}

	resp, err := h.responses.GetByToken(r.Context(), token)
	if err != nil {
		writeStoreError(w, r, err, "load response")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// SubmitResponse handles POST /api/responses/{token}
// 201 for the first submission, 200 when an existing response was
// replaced, 409 when it exists and updates are disabled.
func (h *SurveyHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if !h.checkToken(w, r, token) {
		return
	}

	answers, ok := readAnswers(w, r)
	if !ok {
		return
	}

	resp, created, err := h.responses.Submit(r.Context(), token, answers, h.cfg.AllowResponseUpdates)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// participant deleted between the check and the insert
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid survey link")
			return
		}
		if errors.Is(err, store.ErrConflict) {
			middleware.ErrorResponse(w, http.StatusConflict, "A response has already been submitted for this link")
			return
		}
		writeStoreError(w, r, err, "save response")
		return
	}

	status, code := models.StatusUpdated, http.StatusOK
	if created {
		status, code = models.StatusCreated, http.StatusCreated
	}

	slog.Info("response submitted",
		"participant", auth.Fingerprint(token, h.cfg.HashSalt),
		"status", status,
		"ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.HashSalt),
	)

	middleware.JSONResponse(w, code, models.SubmitResponseResponse{
		Status:   status,
		Response: *resp,
	})
}

// UpdateResponse handles PUT /api/responses/{token}
func (h *SurveyHandler) UpdateResponse(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if !h.checkToken(w, r, token) {
		return
	}

	if !h.cfg.AllowResponseUpdates {
		middleware.ErrorResponse(w, http.StatusConflict, "Response updates are disabled")
		return
	}

	answers, ok := readAnswers(w, r)
	if !ok {
		return
	}

	resp, err := h.responses.Update(r.Context(), token, answers)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "No response has been submitted for this link yet")
			return
		}
		writeStoreError(w, r, err, "update response")
		return
	}

	slog.Info("response updated", "participant", auth.Fingerprint(token, h.cfg.HashSalt))

	middleware.JSONResponse(w, http.StatusOK, models.SubmitResponseResponse{
		Status:   models.StatusUpdated,
		Response: *resp,
	})
}

// checkToken answers 401 unless token belongs to a registered participant.
func (h *SurveyHandler) checkToken(w http.ResponseWriter, r *http.Request, token string) bool {
	_, err := h.participants.Get(r.Context(), token)
	if err == nil {
		return true
	}
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid survey link")
		return false
	}
	writeStoreError(w, r, err, "look up participant")
	return false
}

func (h *SurveyHandler) pageTitle() string {
	if t := h.survey.Title(); t != "" {
		return t
	}
	return "Simple Survey"
}

// readAnswers reads and validates the answer document from the body.
func readAnswers(w http.ResponseWriter, r *http.Request) (models.Answers, bool) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, middleware.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}

	answers, err := store.ParseAnswers(body)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return answers, true
}
