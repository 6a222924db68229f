package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

const (
	PollStatusActive    = "active"
	PollStatusCompleted = "completed"
	PollStatusExpired   = "expired"
)

// Selection provenance.
const (
	SelectionIndividual = "individual"
	SelectionPoll       = "poll"
	SelectionRandom     = "random"
	SelectionAdmin      = "admin"
)

type ProblemSelectionPoll struct {
	ID               uuid.UUID               `json:"id"`
	TeamID           uuid.UUID               `json:"team_id"`
	HackathonID      uuid.UUID               `json:"hackathon_id"`
	CreatedBy        uuid.UUID               `json:"created_by"`
	Status           string                  `json:"status"`
	Votes            map[uuid.UUID]uuid.UUID `json:"votes"`
	ExpiresAt        time.Time               `json:"expires_at"`
	WinningProblemID *uuid.UUID              `json:"winning_problem_id,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	CompletedAt      *time.Time              `json:"completed_at,omitempty"`
}

// VoteTally maps a problem id to the number of members currently voting for it.
type VoteTally map[uuid.UUID]int

// Tally recomputes vote counts from the vote map. A voter's latest choice is
// the only one that counts.
func (p *ProblemSelectionPoll) Tally() VoteTally {
	tally := make(VoteTally, len(p.Votes))
	for _, problemID := range p.Votes {
		tally[problemID]++
	}
	return tally
}

// Winner returns the problem with the most votes. Ties go to the lowest
// problem id in byte order. ok is false when nobody voted.
func (t VoteTally) Winner() (winner uuid.UUID, ok bool) {
	best := 0
	for problemID, count := range t {
		switch {
		case count > best:
			best, winner, ok = count, problemID, true
		case count == best && ok && bytes.Compare(problemID[:], winner[:]) < 0:
			winner = problemID
		}
	}
	return winner, ok
}

func (p *ProblemSelectionPoll) Clone() *ProblemSelectionPoll {
	c := *p
	c.Votes = make(map[uuid.UUID]uuid.UUID, len(p.Votes))
	for k, v := range p.Votes {
		c.Votes[k] = v
	}
	return &c
}

type TeamProblemSelection struct {
	ID                uuid.UUID `json:"id"`
	TeamID            uuid.UUID `json:"team_id"`
	HackathonID       uuid.UUID `json:"hackathon_id"`
	SelectedProblemID uuid.UUID `json:"selected_problem_id"`
	SelectedBy        uuid.UUID `json:"selected_by"`
	IsLocked          bool      `json:"is_locked"`
	SelectionMethod   string    `json:"selection_method"`
	SelectedAt        time.Time `json:"selected_at"`
}
