package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	TeamStatusForming   = "forming"
	TeamStatusFinalized = "finalized"
)

// Team is the single document of truth for its roster and ownership.
type Team struct {
	ID                 uuid.UUID   `json:"id"`
	Name               string      `json:"team_name"`
	Description        string      `json:"description"`
	HackathonID        uuid.UUID   `json:"hackathon_id"`
	CreatedBy          uuid.UUID   `json:"created_by"`
	Members            []uuid.UUID `json:"team_members"`
	MemberLimit        int         `json:"member_limit"`
	Status             string      `json:"team_status"`
	IsFinalized        bool        `json:"is_finalized"`
	CanReceiveRequests bool        `json:"can_receive_requests"`
	PendingRequests    []uuid.UUID `json:"pending_requests"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

func (t *Team) HasMember(userID uuid.UUID) bool {
	return slices.Contains(t.Members, userID)
}

func (t *Team) IsOwner(userID uuid.UUID) bool {
	return t.CreatedBy == userID
}

func (t *Team) IsFull() bool {
	return len(t.Members) >= t.MemberLimit
}

func (t *Team) OpenSlots() int {
	if n := t.MemberLimit - len(t.Members); n > 0 {
		return n
	}
	return 0
}

// Clone returns a deep copy so callers can't alias roster slices.
func (t *Team) Clone() *Team {
	c := *t
	c.Members = slices.Clone(t.Members)
	c.PendingRequests = slices.Clone(t.PendingRequests)
	return &c
}
