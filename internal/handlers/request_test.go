package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/services"
	"github.com/dimitrije/teamforge-api/internal/testutil"
	"github.com/dimitrije/teamforge-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupRequestTest(t *testing.T) (*testutil.MockRequestService, *RequestHandler, *services.JWTService) {
	t.Helper()
	mockRequestService := new(testutil.MockRequestService)
	return mockRequestService, NewRequestHandler(mockRequestService, nil), newTestJWTService()
}

func TestRequestHandler_SendJoinRequest(t *testing.T) {
	mockRequestService, handler, jwtSvc := setupRequestTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	request := &models.TeamRequest{
		ID:         uuid.New(),
		FromUserID: userID,
		TeamID:     teamID,
		Type:       models.RequestTypeJoin,
		Status:     models.RequestStatusPending,
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
	mockRequestService.On("SendJoinRequest", mock.Anything, userID, teamID, "let me in").Return(request, nil)

	app := serve(jwtSvc, http.MethodPost, "/teams/:teamId/join-requests", handler.SendJoinRequest)
	rec := doRequest(t, app, http.MethodPost, "/teams/"+teamID.String()+"/join-requests", memberToken(t, jwtSvc, userID),
		dto.JoinRequestRequest{Message: "let me in"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decode[models.TeamRequest](t, rec)
	assert.Equal(t, request.ID, env.Data.ID)
	assert.Equal(t, models.RequestStatusPending, env.Data.Status)

	mockRequestService.AssertExpectations(t)
}

func TestRequestHandler_SendJoinRequest_TeamFull(t *testing.T) {
	mockRequestService, handler, jwtSvc := setupRequestTest(t)

	mockRequestService.On("SendJoinRequest", mock.Anything, mock.Anything, mock.Anything, "").Return(nil, services.ErrTeamFull)

	app := serve(jwtSvc, http.MethodPost, "/teams/:teamId/join-requests", handler.SendJoinRequest)
	rec := doRequest(t, app, http.MethodPost, "/teams/"+uuid.New().String()+"/join-requests", memberToken(t, jwtSvc, uuid.New()),
		dto.JoinRequestRequest{})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "TEAM_FULL", decode[any](t, rec).Code)
}

func TestRequestHandler_SendInvitation(t *testing.T) {
	mockRequestService, handler, jwtSvc := setupRequestTest(t)

	ownerID := uuid.New()
	teamID := uuid.New()
	participantID := uuid.New()
	mockRequestService.On("SendInvitation", mock.Anything, ownerID, teamID, participantID, "join us").
		Return(&models.TeamRequest{ID: uuid.New(), ToUserID: participantID, Type: models.RequestTypeInvite}, nil)

	app := serve(jwtSvc, http.MethodPost, "/teams/:teamId/invitations", handler.SendInvitation)
	path := "/teams/" + teamID.String() + "/invitations"

	rec := doRequest(t, app, http.MethodPost, path, memberToken(t, jwtSvc, ownerID), dto.InvitationRequest{Message: "join us"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[any](t, rec).Message, "participant_id")

	rec = doRequest(t, app, http.MethodPost, path, memberToken(t, jwtSvc, ownerID),
		dto.InvitationRequest{ParticipantID: participantID, Message: "join us"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, participantID, decode[models.TeamRequest](t, rec).Data.ToUserID)

	mockRequestService.AssertExpectations(t)
}

func TestRequestHandler_Respond(t *testing.T) {
	mockRequestService, handler, jwtSvc := setupRequestTest(t)

	requestID := uuid.New()
	ownerID := uuid.New()
	mockRequestService.On("Respond", mock.Anything, requestID, ownerID, models.RequestStatusAccepted, "welcome").
		Return(&models.TeamRequest{ID: requestID, Status: models.RequestStatusAccepted}, nil)

	app := serve(jwtSvc, http.MethodPost, "/requests/:requestId/respond", handler.Respond)
	rec := doRequest(t, app, http.MethodPost, "/requests/"+requestID.String()+"/respond", memberToken(t, jwtSvc, ownerID),
		dto.RespondRequest{Decision: models.RequestStatusAccepted, Message: "welcome"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RequestStatusAccepted, decode[models.TeamRequest](t, rec).Data.Status)
	mockRequestService.AssertExpectations(t)
}

func TestRequestHandler_Respond_InvalidDecision(t *testing.T) {
	mockRequestService, handler, jwtSvc := setupRequestTest(t)

	app := serve(jwtSvc, http.MethodPost, "/requests/:requestId/respond", handler.Respond)
	rec := doRequest(t, app, http.MethodPost, "/requests/"+uuid.New().String()+"/respond", memberToken(t, jwtSvc, uuid.New()),
		dto.RespondRequest{Decision: "maybe"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[any](t, rec).Message, "decision")
	mockRequestService.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestHandler_Respond_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"expired", services.ErrRequestExpired, http.StatusGone},
		{"hackathon started", services.ErrHackathonStarted, http.StatusGone},
		{"already processed", services.ErrAlreadyProcessed, http.StatusConflict},
		{"not owner", services.ErrNotTeamOwner, http.StatusForbidden},
		{"missing", services.ErrRequestNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRequestService, handler, jwtSvc := setupRequestTest(t)
			mockRequestService.On("Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			app := serve(jwtSvc, http.MethodPost, "/requests/:requestId/respond", handler.Respond)
			rec := doRequest(t, app, http.MethodPost, "/requests/"+uuid.New().String()+"/respond", memberToken(t, jwtSvc, uuid.New()),
				dto.RespondRequest{Decision: models.RequestStatusRejected})

			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, decode[any](t, rec).Success)
		})
	}
}

func TestRequestHandler_Cancel(t *testing.T) {
	mockRequestService, handler, jwtSvc := setupRequestTest(t)

	requestID := uuid.New()
	senderID := uuid.New()
	mockRequestService.On("Cancel", mock.Anything, requestID, senderID).Return(nil)

	app := serve(jwtSvc, http.MethodPost, "/requests/:requestId/cancel", handler.Cancel)
	rec := doRequest(t, app, http.MethodPost, "/requests/"+requestID.String()+"/cancel", memberToken(t, jwtSvc, senderID), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "request cancelled", decode[any](t, rec).Message)
}

func TestRequestHandler_Listings(t *testing.T) {
	mockRequestService, handler, jwtSvc := setupRequestTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	mockRequestService.On("IncomingInvitations", mock.Anything, userID).Return([]models.TeamRequest{{ID: uuid.New()}}, nil)
	mockRequestService.On("Outgoing", mock.Anything, userID).Return([]models.TeamRequest{}, nil)
	mockRequestService.On("PendingJoinRequests", mock.Anything, teamID, userID).Return(nil, services.ErrNotTeamOwner)

	token := memberToken(t, jwtSvc, userID)

	rec := doRequest(t, serve(jwtSvc, http.MethodGet, "/requests/incoming", handler.Incoming), http.MethodGet, "/requests/incoming", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.TeamRequest](t, rec).Data, 1)

	rec = doRequest(t, serve(jwtSvc, http.MethodGet, "/requests/outgoing", handler.Outgoing), http.MethodGet, "/requests/outgoing", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.TeamRequest](t, rec).Data)

	rec = doRequest(t, serve(jwtSvc, http.MethodGet, "/teams/:teamId/join-requests", handler.PendingJoinRequests),
		http.MethodGet, "/teams/"+teamID.String()+"/join-requests", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	mockRequestService.AssertExpectations(t)
}
