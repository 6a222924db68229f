package dto

import "time"

type ProblemStatementInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

type CreateHackathonRequest struct {
	Name                       string                  `json:"name" validate:"required,max=200"`
	StartDate                  time.Time               `json:"start_date" validate:"required"`
	EndDate                    time.Time               `json:"end_date" validate:"required,gtfield=StartDate"`
	MinTeamSize                int                     `json:"min_team_size" validate:"min=1"`
	MaxTeamSize                int                     `json:"max_team_size" validate:"gtefield=MinTeamSize"`
	MinTeamSizeForFinalization int                     `json:"min_team_size_for_finalization" validate:"min=0"`
	AllowParticipantTeams      bool                    `json:"allow_participant_teams"`
	TeamCreationMode           string                  `json:"team_creation_mode" validate:"omitempty,oneof=participant admin both"`
	SubmissionStart            time.Time               `json:"submission_start" validate:"required"`
	SubmissionEnd              time.Time               `json:"submission_end" validate:"required"`
	ProblemStatements          []ProblemStatementInput `json:"problem_statements" validate:"dive"`
}
