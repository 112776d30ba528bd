// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateParticipantRequest: label
  - UpdateParticipantRequest: label

Survey answers are not a fixed type: they arrive as an arbitrary JSON
object and are held as Answers (map[string]any).

# Response Types

Types for JSON responses:

  - CreateParticipantResponse: participant fields plus survey_url
  - SubmitResponseResponse: status ("created" or "updated"), response
  - SurveyResponse: survey definition, prior response, allow_updates
  - ErrorResponse: error, message

# Domain Types

  - Participant: token, label, created_at
  - Response: answers with submitted_at and updated_at
  - ExportRow: response joined with its participant label
  - SeedParticipant: one entry of the seed file
*/
package models
