package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification kinds.
const (
	NotifyJoinRequest        = "join_request"
	NotifyInvitation         = "team_invitation"
	NotifyRequestAccepted    = "request_accepted"
	NotifyRequestRejected    = "request_rejected"
	NotifyOwnershipReceived  = "ownership_received"
	NotifyProblemLocked      = "problem_locked"
	NotifySubmissionReceived = "submission_received"
)

type Notification struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
