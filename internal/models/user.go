package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant roles. A leader is whoever currently owns a team.
const (
	RoleAdmin  = "admin"
	RoleLeader = "leader"
	RoleMember = "member"
)

type User struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Role               string     `json:"role"`
	CurrentTeamID      *uuid.UUID `json:"current_team_id,omitempty"`
	CanSendRequests    bool       `json:"can_send_requests"`
	CanReceiveRequests bool       `json:"can_receive_requests"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (u *User) HasTeam() bool {
	return u.CurrentTeamID != nil && *u.CurrentTeamID != uuid.Nil
}

func (u *User) InTeam(teamID uuid.UUID) bool {
	return u.HasTeam() && *u.CurrentTeamID == teamID
}
