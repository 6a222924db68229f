package dto

import "github.com/google/uuid"

type JoinRequestRequest struct {
	Message string `json:"message" validate:"max=500"`
}

type InvitationRequest struct {
	ParticipantID uuid.UUID `json:"participant_id" validate:"required"`
	Message       string    `json:"message" validate:"max=500"`
}

type RespondRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted rejected"`
	Message  string `json:"message" validate:"max=500"`
}
