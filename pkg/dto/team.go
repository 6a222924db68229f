package dto

import (
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
)

type CreateTeamRequest struct {
	Name        string `json:"team_name" validate:"required,max=32"`
	Description string `json:"description" validate:"max=500"`
}

// AdminCreateTeamRequest creates a team on behalf of a registered participant.
type AdminCreateTeamRequest struct {
	OwnerID     uuid.UUID `json:"owner_id" validate:"required"`
	Name        string    `json:"team_name" validate:"required,max=32"`
	Description string    `json:"description" validate:"max=500"`
}

type TransferOwnershipRequest struct {
	NewOwnerID uuid.UUID `json:"new_owner_id" validate:"required"`
}

// TeamSummary is a team as listed for a hackathon.
type TeamSummary struct {
	*models.Team
	OpenSlots int `json:"open_slots"`
}
