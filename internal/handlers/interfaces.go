package handlers

import (
	"context"

	"github.com/dimitrije/teamforge-api/internal/hub"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/services"
	"github.com/google/uuid"
)

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	Create(ctx context.Context, in services.CreateTeamInput) (*models.Team, error)
	CreateForParticipant(ctx context.Context, in services.CreateTeamInput) (*models.Team, error)
	Get(ctx context.Context, teamID uuid.UUID) (*services.TeamView, error)
	ListByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]models.Team, error)
	Leave(ctx context.Context, teamID, userID uuid.UUID) error
	Finalize(ctx context.Context, teamID, callerID uuid.UUID) (*models.Team, error)
	TransferOwnership(ctx context.Context, teamID, currentOwnerID, newOwnerID uuid.UUID) (*models.Team, error)
}

// RequestServiceInterface defines the methods used by handlers from RequestService
type RequestServiceInterface interface {
	SendJoinRequest(ctx context.Context, fromUserID, teamID uuid.UUID, message string) (*models.TeamRequest, error)
	SendInvitation(ctx context.Context, ownerID, teamID, participantID uuid.UUID, message string) (*models.TeamRequest, error)
	Respond(ctx context.Context, requestID, responderID uuid.UUID, decision, message string) (*models.TeamRequest, error)
	Cancel(ctx context.Context, requestID, callerID uuid.UUID) error
	IncomingInvitations(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error)
	Outgoing(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error)
	PendingJoinRequests(ctx context.Context, teamID, callerID uuid.UUID) ([]models.TeamRequest, error)
}

// PollServiceInterface defines the methods used by handlers from PollService
type PollServiceInterface interface {
	Start(ctx context.Context, teamID, callerID uuid.UUID, durationMinutes int) (*services.PollView, error)
	Vote(ctx context.Context, pollID, voterID, problemID uuid.UUID) (*services.PollView, error)
	Active(ctx context.Context, teamID, callerID uuid.UUID) (*services.PollView, error)
	Conclude(ctx context.Context, teamID, callerID uuid.UUID) (*models.TeamProblemSelection, error)
	SelectProblem(ctx context.Context, teamID, callerID, problemID uuid.UUID) (*models.TeamProblemSelection, error)
	Assign(ctx context.Context, teamID, adminID, problemID uuid.UUID) (*models.TeamProblemSelection, error)
	Selection(ctx context.Context, teamID uuid.UUID) (*models.TeamProblemSelection, error)
}

// SubmissionServiceInterface defines the methods used by handlers from SubmissionService
type SubmissionServiceInterface interface {
	Submit(ctx context.Context, teamID, callerID uuid.UUID, rawURL string) (*models.TeamSubmission, error)
	Get(ctx context.Context, teamID uuid.UUID) (*models.TeamSubmission, error)
}

// HackathonServiceInterface defines the methods used by handlers from HackathonService
type HackathonServiceInterface interface {
	Create(ctx context.Context, h *models.Hackathon) (*models.Hackathon, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Hackathon, error)
	Register(ctx context.Context, hackathonID, userID uuid.UUID) error
}

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Create(ctx context.Context, email, name string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// NotificationServiceInterface defines the methods used by handlers from NotificationService
type NotificationServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

// EventHubInterface defines the methods used by handlers from hub.Hub
type EventHubInterface interface {
	Register(client *hub.Client)
	Unregister(client *hub.Client)
}
