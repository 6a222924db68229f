package testutil

import (
	"context"

	"github.com/dimitrije/teamforge-api/internal/hub"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTeamService mocks the TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) Create(ctx context.Context, in services.CreateTeamInput) (*models.Team, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) CreateForParticipant(ctx context.Context, in services.CreateTeamInput) (*models.Team, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) Get(ctx context.Context, teamID uuid.UUID) (*services.TeamView, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TeamView), args.Error(1)
}

func (m *MockTeamService) ListByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]models.Team, error) {
	args := m.Called(ctx, hackathonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *MockTeamService) Leave(ctx context.Context, teamID, userID uuid.UUID) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *MockTeamService) Finalize(ctx context.Context, teamID, callerID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, teamID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) TransferOwnership(ctx context.Context, teamID, currentOwnerID, newOwnerID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, teamID, currentOwnerID, newOwnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

// MockRequestService mocks the RequestService
type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) SendJoinRequest(ctx context.Context, fromUserID, teamID uuid.UUID, message string) (*models.TeamRequest, error) {
	args := m.Called(ctx, fromUserID, teamID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamRequest), args.Error(1)
}

func (m *MockRequestService) SendInvitation(ctx context.Context, ownerID, teamID, participantID uuid.UUID, message string) (*models.TeamRequest, error) {
	args := m.Called(ctx, ownerID, teamID, participantID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamRequest), args.Error(1)
}

func (m *MockRequestService) Respond(ctx context.Context, requestID, responderID uuid.UUID, decision, message string) (*models.TeamRequest, error) {
	args := m.Called(ctx, requestID, responderID, decision, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamRequest), args.Error(1)
}

func (m *MockRequestService) Cancel(ctx context.Context, requestID, callerID uuid.UUID) error {
	args := m.Called(ctx, requestID, callerID)
	return args.Error(0)
}

func (m *MockRequestService) IncomingInvitations(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamRequest), args.Error(1)
}

func (m *MockRequestService) Outgoing(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamRequest), args.Error(1)
}

func (m *MockRequestService) PendingJoinRequests(ctx context.Context, teamID, callerID uuid.UUID) ([]models.TeamRequest, error) {
	args := m.Called(ctx, teamID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamRequest), args.Error(1)
}

// MockPollService mocks the PollService
type MockPollService struct {
	mock.Mock
}

func (m *MockPollService) Start(ctx context.Context, teamID, callerID uuid.UUID, durationMinutes int) (*services.PollView, error) {
	args := m.Called(ctx, teamID, callerID, durationMinutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PollView), args.Error(1)
}

func (m *MockPollService) Vote(ctx context.Context, pollID, voterID, problemID uuid.UUID) (*services.PollView, error) {
	args := m.Called(ctx, pollID, voterID, problemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PollView), args.Error(1)
}

func (m *MockPollService) Active(ctx context.Context, teamID, callerID uuid.UUID) (*services.PollView, error) {
	args := m.Called(ctx, teamID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PollView), args.Error(1)
}

func (m *MockPollService) Conclude(ctx context.Context, teamID, callerID uuid.UUID) (*models.TeamProblemSelection, error) {
	args := m.Called(ctx, teamID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamProblemSelection), args.Error(1)
}

func (m *MockPollService) SelectProblem(ctx context.Context, teamID, callerID, problemID uuid.UUID) (*models.TeamProblemSelection, error) {
	args := m.Called(ctx, teamID, callerID, problemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamProblemSelection), args.Error(1)
}

func (m *MockPollService) Assign(ctx context.Context, teamID, adminID, problemID uuid.UUID) (*models.TeamProblemSelection, error) {
	args := m.Called(ctx, teamID, adminID, problemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamProblemSelection), args.Error(1)
}

func (m *MockPollService) Selection(ctx context.Context, teamID uuid.UUID) (*models.TeamProblemSelection, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamProblemSelection), args.Error(1)
}

// MockSubmissionService mocks the SubmissionService
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, teamID, callerID uuid.UUID, rawURL string) (*models.TeamSubmission, error) {
	args := m.Called(ctx, teamID, callerID, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamSubmission), args.Error(1)
}

func (m *MockSubmissionService) Get(ctx context.Context, teamID uuid.UUID) (*models.TeamSubmission, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamSubmission), args.Error(1)
}

// MockHackathonService mocks the HackathonService
type MockHackathonService struct {
	mock.Mock
}

func (m *MockHackathonService) Create(ctx context.Context, h *models.Hackathon) (*models.Hackathon, error) {
	args := m.Called(ctx, h)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hackathon), args.Error(1)
}

func (m *MockHackathonService) Get(ctx context.Context, id uuid.UUID) (*models.Hackathon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hackathon), args.Error(1)
}

func (m *MockHackathonService) Register(ctx context.Context, hackathonID, userID uuid.UUID) error {
	args := m.Called(ctx, hackathonID, userID)
	return args.Error(0)
}

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, email, name string) (*models.User, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockNotificationService mocks the NotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

// MockEventHub records registered clients and replays queued messages into
// each one before closing its channel.
type MockEventHub struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockEventHub) Register(client *hub.Client) {
	m.Called(client)
	for _, msg := range m.Messages {
		client.Send <- msg
	}
	close(client.Send)
}

func (m *MockEventHub) Unregister(client *hub.Client) {
	m.Called(client)
}
