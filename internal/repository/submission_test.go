package repository

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionRepository_Create(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewSubmissionRepository(db)
	s := &models.TeamSubmission{
		TeamID:        uuid.New(),
		HackathonID:   uuid.New(),
		SubmissionURL: "https://github.com/rockets/app",
		SubmittedBy:   uuid.New(),
		SubmittedAt:   time.Now(),
	}
	id := uuid.New()

	mock.ExpectQuery(`INSERT INTO team_submissions`).
		WithArgs(s.TeamID, s.HackathonID, s.SubmissionURL, s.SubmittedBy, s.SubmittedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id", "team_id", "hackathon_id", "submission_url", "submitted_by", "submitted_at"}).
			AddRow(id, s.TeamID, s.HackathonID, s.SubmissionURL, s.SubmittedBy, s.SubmittedAt))

	created, err := repo.Create(context.Background(), s)

	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, s.SubmissionURL, created.SubmissionURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepository_Create_Duplicate(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewSubmissionRepository(db)
	s := &models.TeamSubmission{TeamID: uuid.New(), HackathonID: uuid.New(), SubmissionURL: "https://x.dev", SubmittedBy: uuid.New()}

	mock.ExpectQuery(`INSERT INTO team_submissions`).
		WithArgs(s.TeamID, s.HackathonID, s.SubmissionURL, s.SubmittedBy, s.SubmittedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), s)

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
