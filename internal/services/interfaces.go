package services

import (
	"context"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
)

// Store contracts. internal/repository implements them over Postgres and
// internal/repository/memory over guarded maps. Every mutating method is a
// single conditional write: it either applies in full or reports
// repository.ErrPreconditionFailed.

type UserStore interface {
	Create(ctx context.Context, email, name, role string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	AssignTeam(ctx context.Context, userID, teamID uuid.UUID) error
	ReleaseTeam(ctx context.Context, userID, teamID uuid.UUID) error
	SetRole(ctx context.Context, userID uuid.UUID, role string) error
	PromoteAdmin(ctx context.Context, email string) error
	ListAssigned(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
}

type TeamStore interface {
	Create(ctx context.Context, t *models.Team) (*models.Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	AddMember(ctx context.Context, teamID, userID uuid.UUID) (*models.Team, error)
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) (*models.Team, error)
	DeleteIfEmpty(ctx context.Context, teamID uuid.UUID) error
	Finalize(ctx context.Context, teamID, ownerID uuid.UUID, minSize int) (*models.Team, error)
	SetOwner(ctx context.Context, teamID, currentOwner, newOwner uuid.UUID) (*models.Team, error)
	AddPendingRequest(ctx context.Context, teamID, requestID uuid.UUID) error
	RemovePendingRequest(ctx context.Context, teamID, requestID uuid.UUID) error
}

type RequestStore interface {
	Create(ctx context.Context, req *models.TeamRequest) (*models.TeamRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.TeamRequest, error)
	Resolve(ctx context.Context, id uuid.UUID, status string, reason *string, responseMessage string, at time.Time) (*models.TeamRequest, error)
	Reopen(ctx context.Context, id uuid.UUID, claimedAt time.Time) error
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]models.TeamRequest, error)
	ListPendingByTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamRequest, error)
	ListPendingInvolving(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error)
	ListIncomingInvites(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error)
	ListOutgoing(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error)
}

type HackathonStore interface {
	Create(ctx context.Context, h *models.Hackathon) (*models.Hackathon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Hackathon, error)
	ListRunning(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	AddParticipant(ctx context.Context, hackathonID, userID uuid.UUID) error
	IsParticipant(ctx context.Context, hackathonID, userID uuid.UUID) (bool, error)
}

type PollStore interface {
	Create(ctx context.Context, p *models.ProblemSelectionPoll) (*models.ProblemSelectionPoll, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProblemSelectionPoll, error)
	GetActiveByTeam(ctx context.Context, teamID uuid.UUID) (*models.ProblemSelectionPoll, error)
	SetVote(ctx context.Context, pollID, voterID, problemID uuid.UUID, now time.Time) (*models.ProblemSelectionPoll, error)
	Complete(ctx context.Context, pollID uuid.UUID, status string, winner *uuid.UUID, at time.Time) (*models.ProblemSelectionPoll, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]models.ProblemSelectionPoll, error)
}

type SelectionStore interface {
	GetByTeam(ctx context.Context, teamID, hackathonID uuid.UUID) (*models.TeamProblemSelection, error)
	Lock(ctx context.Context, s *models.TeamProblemSelection) (*models.TeamProblemSelection, error)
	ListByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]models.TeamProblemSelection, error)
}

type SubmissionStore interface {
	Create(ctx context.Context, s *models.TeamSubmission) (*models.TeamSubmission, error)
	GetByTeam(ctx context.Context, teamID, hackathonID uuid.UUID) (*models.TeamSubmission, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

// Notifier delivers a notification without making the caller wait.
type Notifier interface {
	Notify(userID uuid.UUID, kind string, payload any)
}

// Broadcaster pushes an advisory real-time event to the given users.
type Broadcaster interface {
	Broadcast(userIDs []uuid.UUID, eventType string, data any)
}

// URLChecker verifies that a submission URL answers.
type URLChecker interface {
	Check(ctx context.Context, rawURL string) error
}

// Clock returns the current time. Tests substitute a controllable one.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type nopNotifier struct{}

func (nopNotifier) Notify(uuid.UUID, string, any) {}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast([]uuid.UUID, string, any) {}
