package repository

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hackathonColumnNames = []string{"id", "name", "start_date", "end_date", "min_team_size", "max_team_size",
	"min_team_size_for_finalization", "allow_participant_teams", "team_creation_mode", "submission_start", "submission_end"}

func TestHackathonRepository_Create(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewHackathonRepository(db)
	start := time.Now().Add(48 * time.Hour)
	h := &models.Hackathon{
		Name:                       "Spring Jam",
		StartDate:                  start,
		EndDate:                    start.Add(48 * time.Hour),
		MinTeamSize:                1,
		MaxTeamSize:                4,
		MinTeamSizeForFinalization: 2,
		AllowParticipantTeams:      true,
		TeamCreationMode:           models.CreationModeBoth,
		SubmissionStart:            start,
		SubmissionEnd:              start.Add(48 * time.Hour),
		ProblemStatements:          []models.ProblemStatement{{Title: "Routing", Description: "Find paths"}},
	}
	hackathonID, problemID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO hackathons`).
		WithArgs(h.Name, h.StartDate, h.EndDate, h.MinTeamSize, h.MaxTeamSize, h.MinTeamSizeForFinalization,
			h.AllowParticipantTeams, h.TeamCreationMode, h.SubmissionStart, h.SubmissionEnd).
		WillReturnRows(pgxmock.NewRows(hackathonColumnNames).
			AddRow(hackathonID, h.Name, h.StartDate, h.EndDate, h.MinTeamSize, h.MaxTeamSize, h.MinTeamSizeForFinalization,
				h.AllowParticipantTeams, h.TeamCreationMode, h.SubmissionStart, h.SubmissionEnd))
	mock.ExpectQuery(`INSERT INTO problem_statements`).
		WithArgs(hackathonID, "Routing", "Find paths").
		WillReturnRows(pgxmock.NewRows([]string{"id", "hackathon_id", "title", "description"}).
			AddRow(problemID, hackathonID, "Routing", "Find paths"))
	mock.ExpectCommit()

	created, err := repo.Create(context.Background(), h)

	require.NoError(t, err)
	assert.Equal(t, hackathonID, created.ID)
	require.Len(t, created.ProblemStatements, 1)
	assert.Equal(t, problemID, created.ProblemStatements[0].ID)
}

func TestHackathonRepository_ListRunning(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewHackathonRepository(db)
	now := time.Now()
	id := uuid.New()

	mock.ExpectQuery(`SELECT id FROM hackathons WHERE start_date <= \$1 AND end_date > \$1`).
		WithArgs(now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

	ids, err := repo.ListRunning(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHackathonRepository_IsParticipant(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewHackathonRepository(db)
	hackathonID, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(hackathonID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsParticipant(context.Background(), hackathonID, userID)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
