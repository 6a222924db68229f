package models

import (
	"time"

	"github.com/google/uuid"
)

type TeamSubmission struct {
	ID            uuid.UUID `json:"id"`
	TeamID        uuid.UUID `json:"team_id"`
	HackathonID   uuid.UUID `json:"hackathon_id"`
	SubmissionURL string    `json:"submission_url"`
	SubmittedBy   uuid.UUID `json:"submitted_by"`
	SubmittedAt   time.Time `json:"submitted_at"`
}
