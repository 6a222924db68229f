package repository

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumnNames = []string{"id", "email", "name", "role", "current_team_id", "can_send_requests",
	"can_receive_requests", "created_at", "updated_at"}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewUserRepository(db)
	userID, teamID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(userColumnNames).
			AddRow(userID, "ada@example.com", "Ada", models.RoleLeader, &teamID, false, false, now, now))

	u, err := repo.GetByID(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.True(t, u.InTeam(teamID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewUserRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), userID)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AssignTeam(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewUserRepository(db)
	userID, teamID := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE users SET current_team_id = \$2.+WHERE id = \$1 AND current_team_id IS NULL`).
		WithArgs(userID, teamID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.AssignTeam(context.Background(), userID, teamID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AssignTeam_AlreadyAssigned(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewUserRepository(db)
	userID, teamID := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE users SET current_team_id`).
		WithArgs(userID, teamID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.AssignTeam(context.Background(), userID, teamID)

	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ReleaseTeam(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewUserRepository(db)
	userID, teamID := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE users SET current_team_id = NULL.+WHERE id = \$1 AND current_team_id = \$2`).
		WithArgs(userID, teamID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.ReleaseTeam(context.Background(), userID, teamID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetRole_NotFound(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewUserRepository(db)
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET role`).
		WithArgs(userID, models.RoleLeader).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SetRole(context.Background(), userID, models.RoleLeader)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_PromoteAdmin(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`UPDATE users SET role = \$1`).
		WithArgs(models.RoleAdmin, "ops@example.com").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.PromoteAdmin(context.Background(), "ops@example.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListAssigned(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewUserRepository(db)
	teamID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE current_team_id IS NOT NULL`).
		WillReturnRows(pgxmock.NewRows(userColumnNames).
			AddRow(uuid.New(), "a@example.com", "A", models.RoleLeader, &teamID, false, false, now, now).
			AddRow(uuid.New(), "b@example.com", "B", models.RoleMember, &teamID, false, false, now, now))

	users, err := repo.ListAssigned(context.Background())

	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
