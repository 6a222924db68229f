package dto

import "github.com/google/uuid"

type StartPollRequest struct {
	DurationMinutes int `json:"duration_minutes" validate:"required,min=1,max=1440"`
}

type VoteRequest struct {
	ProblemID uuid.UUID `json:"problem_id" validate:"required"`
}

type SelectProblemRequest struct {
	ProblemID uuid.UUID `json:"problem_id" validate:"required"`
}
