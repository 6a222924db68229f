package repository

import (
	"testing"
	"time"

	"github.com/dimitrije/teamforge-api/internal/database"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) (*database.DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return &database.DB{Pool: mock}, mock
}

var teamColumnNames = []string{"id", "team_name", "description", "hackathon_id", "created_by", "team_members", "member_limit",
	"team_status", "is_finalized", "can_receive_requests", "pending_requests", "created_at", "updated_at"}

func teamRow(t *models.Team) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(teamColumnNames).AddRow(
		t.ID, t.Name, t.Description, t.HackathonID, t.CreatedBy, t.Members, t.MemberLimit,
		t.Status, t.IsFinalized, t.CanReceiveRequests, t.PendingRequests, now, now,
	)
}

var requestColumnNames = []string{"id", "from_user_id", "to_user_id", "team_id", "hackathon_id", "request_type", "status",
	"message", "response_message", "expiry_reason", "expires_at", "responded_at", "created_at"}

func requestRow(r *models.TeamRequest) *pgxmock.Rows {
	return pgxmock.NewRows(requestColumnNames).AddRow(
		r.ID, r.FromUserID, r.ToUserID, r.TeamID, r.HackathonID, r.Type, r.Status,
		r.Message, r.ResponseMessage, r.ExpiryReason, r.ExpiresAt, r.RespondedAt, time.Now(),
	)
}

func sampleTeam() *models.Team {
	owner := uuid.New()
	return &models.Team{
		ID:                 uuid.New(),
		Name:               "rockets",
		HackathonID:        uuid.New(),
		CreatedBy:          owner,
		Members:            []uuid.UUID{owner},
		MemberLimit:        3,
		Status:             models.TeamStatusForming,
		CanReceiveRequests: true,
		PendingRequests:    []uuid.UUID{},
	}
}
