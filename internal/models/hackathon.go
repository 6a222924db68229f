package models

import (
	"time"

	"github.com/google/uuid"
)

// Team creation modes.
const (
	CreationModeParticipant = "participant"
	CreationModeAdmin       = "admin"
	CreationModeBoth        = "both"
)

type Hackathon struct {
	ID                         uuid.UUID          `json:"id"`
	Name                       string             `json:"name"`
	StartDate                  time.Time          `json:"start_date"`
	EndDate                    time.Time          `json:"end_date"`
	MinTeamSize                int                `json:"min_team_size"`
	MaxTeamSize                int                `json:"max_team_size"`
	MinTeamSizeForFinalization int                `json:"min_team_size_for_finalization"`
	AllowParticipantTeams      bool               `json:"allow_participant_teams"`
	TeamCreationMode           string             `json:"team_creation_mode"`
	SubmissionStart            time.Time          `json:"submission_start"`
	SubmissionEnd              time.Time          `json:"submission_end"`
	ProblemStatements          []ProblemStatement `json:"problem_statements"`
}

type ProblemStatement struct {
	ID          uuid.UUID `json:"id"`
	HackathonID uuid.UUID `json:"hackathon_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

func (h *Hackathon) HasProblem(problemID uuid.UUID) bool {
	for _, p := range h.ProblemStatements {
		if p.ID == problemID {
			return true
		}
	}
	return false
}

func (h *Hackathon) HasStarted(now time.Time) bool {
	return !now.Before(h.StartDate)
}
