// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Simple Survey server.

# Handler Types

Each handler is a struct built from the database and config:

  - SurveyHandler: participant pages and the token-gated response API
  - ParticipantHandler: admin participant management
  - ExportHandler: admin bulk export of responses

Handlers are created with constructor functions:

	surveyHandler := handlers.NewSurveyHandler(db, cfg, def)

# Participant Flow

Every participant route starts by looking up the token. An unknown token
answers 401 "Invalid survey link", never a 404, so a bad link can be told
apart from a missing page.

	GET  /s/{token}              → SurveyPage (HTML, survey rendered client-side)
	GET  /api/survey/{token}     → GetSurvey
	POST /api/responses/{token}  → SubmitResponse (201 created, 200 updated, 409 conflict)
	PUT  /api/responses/{token}  → UpdateResponse (404 without a prior response)
	GET  /api/responses/{token}  → GetResponse

Whether a second submission replaces the first is controlled by
Config.AllowResponseUpdates.

# Admin

Admin handlers trust that the router has wrapped them in
middleware.RequireAdmin.

	POST   /api/admin/participants         → CreateParticipant (returns survey_url)
	DELETE /api/admin/participants/{token} → DeleteParticipant (response removed too)
	GET    /api/admin/responses?format=csv → ExportResponses

# Pages

HTML pages are rendered from templates embedded in the binary. The survey
definition and any previous answers are written into the page as JSON for
the client-side survey library.
*/
package handlers
