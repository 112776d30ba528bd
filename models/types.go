package models

import "time"

// Answers is the participant's answer document. Its shape belongs to the
// survey renderer; the server only checks that it is a JSON object.
type Answers map[string]any

// Request types

type CreateParticipantRequest struct {
	Label string `json:"label"`
}

type UpdateParticipantRequest struct {
	Label string `json:"label"`
}

// Response types

type CreateParticipantResponse struct {
	Participant
	SurveyURL string `json:"survey_url"`
}

type SubmitResponseResponse struct {
	Status   string   `json:"status"`
	Response Response `json:"response"`
}

type SurveyResponse struct {
	Survey       any       `json:"survey"`
	Response     *Response `json:"response"`
	AllowUpdates bool      `json:"allow_updates"`
}

// Domain types

type Participant struct {
	Token     string    `json:"token"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

type Response struct {
	ID               string    `json:"-"`
	ParticipantToken string    `json:"token"`
	Answers          Answers   `json:"answers"`
	SubmittedAt      time.Time `json:"submitted_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ExportRow is one line of the admin export: a response with the label of
// the participant it belongs to.
type ExportRow struct {
	Token       string    `json:"token"`
	Label       string    `json:"label"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Answers     Answers   `json:"answers"`
}

// SeedParticipant is one entry of the participants seed file.
type SeedParticipant struct {
	Token string `json:"token"`
	Label string `json:"label"`
}

// Response statuses
const (
	StatusCreated = "created"
	StatusUpdated = "updated"
)

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
