// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/simple-survey/apidoc"
	"github.com/danielhkuo/simple-survey/cliparse"
	"github.com/danielhkuo/simple-survey/handlers"
	"github.com/danielhkuo/simple-survey/middleware"
	"github.com/danielhkuo/simple-survey/survey"
)

const (
	docsPath = "/docs/"
	specPath = "/docs/openapi.json"
)

// Routes returns the route table for the survey API.
func Routes(db *sql.DB, cfg cliparse.Config, def *survey.Definition) []apidoc.Route {
	surveyHandler := handlers.NewSurveyHandler(db, cfg, def)
	participantHandler := handlers.NewParticipantHandler(db, cfg)
	exportHandler := handlers.NewExportHandler(db)

	return []apidoc.Route{
		// Participant pages
		{Method: "GET", Path: "/{$}", Summary: "Landing page", HTML: true, Handler: surveyHandler.Home},
		{Method: "GET", Path: "/s/{token}", Summary: "Survey page", HTML: true, Handler: surveyHandler.SurveyPage},
		{Method: "GET", Path: "/thank-you", Summary: "Thank-you page", HTML: true, Handler: surveyHandler.ThankYou},

		// Participant API (token in path)
		{
			Method: "GET", Path: "/api/survey/{token}", Tag: "survey",
			Summary:   "Survey definition and the participant's response",
			Responses: map[int]string{200: "Survey", 401: "Invalid survey link"},
			Handler:   surveyHandler.GetSurvey,
		},
		{
			Method: "POST", Path: "/api/responses/{token}", Tag: "responses", Body: true,
			Summary: "Submit a response",
			Responses: map[int]string{
				200: "Existing response updated",
				201: "Response created",
				400: "Invalid answers",
				401: "Invalid survey link",
				409: "Response already submitted",
			},
			Handler: surveyHandler.SubmitResponse,
		},
		{
			Method: "PUT", Path: "/api/responses/{token}", Tag: "responses", Body: true,
			Summary: "Update a submitted response",
			Responses: map[int]string{
				200: "Response updated",
				400: "Invalid answers",
				401: "Invalid survey link",
				404: "No response submitted yet",
				409: "Updates disabled",
			},
			Handler: surveyHandler.UpdateResponse,
		},
		{
			Method: "GET", Path: "/api/responses/{token}", Tag: "responses",
			Summary:   "Get the participant's response",
			Responses: map[int]string{200: "Response", 401: "Invalid survey link", 404: "No response submitted yet"},
			Handler:   surveyHandler.GetResponse,
		},

		// Admin API (bearer token)
		{
			Method: "GET", Path: "/api/admin/participants", Tag: "admin", Admin: true,
			Summary:   "List participants",
			Responses: map[int]string{200: "Participants"},
			Handler:   participantHandler.ListParticipants,
		},
		{
			Method: "POST", Path: "/api/admin/participants", Tag: "admin", Admin: true, Body: true,
			Summary:   "Create a participant",
			Responses: map[int]string{201: "Participant and survey URL", 400: "Invalid JSON"},
			Handler:   participantHandler.CreateParticipant,
		},
		{
			Method: "GET", Path: "/api/admin/participants/{token}", Tag: "admin", Admin: true,
			Summary:   "Get a participant",
			Responses: map[int]string{200: "Participant", 404: "Participant not found"},
			Handler:   participantHandler.GetParticipant,
		},
		{
			Method: "PUT", Path: "/api/admin/participants/{token}", Tag: "admin", Admin: true, Body: true,
			Summary:   "Update a participant's label",
			Responses: map[int]string{200: "Participant", 400: "Invalid JSON", 404: "Participant not found"},
			Handler:   participantHandler.UpdateParticipant,
		},
		{
			Method: "DELETE", Path: "/api/admin/participants/{token}", Tag: "admin", Admin: true,
			Summary:   "Delete a participant and their response",
			Responses: map[int]string{204: "Deleted", 404: "Participant not found"},
			Handler:   participantHandler.DeleteParticipant,
		},
		{
			Method: "GET", Path: "/api/admin/responses", Tag: "admin", Admin: true,
			Summary:   "Export all responses (?format=json|csv)",
			Responses: map[int]string{200: "Responses", 400: "Unknown format"},
			Handler:   exportHandler.ExportResponses,
		},

		// Operational
		{
			Method: "GET", Path: "/health", Summary: "Health check",
			Responses: map[int]string{200: "OK"},
			Handler:   health,
		},
	}
}

func NewRouter(db *sql.DB, cfg cliparse.Config, def *survey.Definition) *http.ServeMux {
	mux := http.NewServeMux()

	routes := Routes(db, cfg, def)
	for _, rt := range routes {
		h := rt.Handler
		if rt.Admin {
			h = middleware.RequireAdmin(cfg.AdminToken, h)
		}
		mux.HandleFunc(rt.Pattern(), middleware.WithLogging(h))
	}

	// API documentation
	doc := apidoc.Build(routes)
	mux.HandleFunc("GET "+docsPath+"{$}", apidoc.UIHandler(specPath))
	mux.HandleFunc("GET "+specPath, apidoc.SpecHandler(doc))

	return mux
}

func health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
