package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RequestTypeJoin   = "join"
	RequestTypeInvite = "invite"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
	RequestStatusExpired  = "expired"
)

const (
	ExpiryReasonTime           = "time"
	ExpiryReasonHackathonStart = "hackathon_start"
)

// TeamRequest is either a join request (FromUserID asks to enter TeamID,
// ToUserID is the owner at send time) or an invitation (FromUserID is the
// owner, ToUserID the invitee).
type TeamRequest struct {
	ID              uuid.UUID  `json:"id"`
	FromUserID      uuid.UUID  `json:"from_user_id"`
	ToUserID        uuid.UUID  `json:"to_user_id"`
	TeamID          uuid.UUID  `json:"team_id"`
	HackathonID     uuid.UUID  `json:"hackathon_id"`
	Type            string     `json:"request_type"`
	Status          string     `json:"status"`
	Message         string     `json:"message"`
	ResponseMessage string     `json:"response_message,omitempty"`
	ExpiryReason    *string    `json:"expiry_reason,omitempty"`
	ExpiresAt       time.Time  `json:"expires_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (r *TeamRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

func IsTerminalRequestStatus(status string) bool {
	switch status {
	case RequestStatusAccepted, RequestStatusRejected, RequestStatusExpired:
		return true
	}
	return false
}
