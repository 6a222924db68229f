package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/teamforge-api/internal/database"
	"github.com/dimitrije/teamforge-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a team-less member
func (f *Fixtures) CreateUser(t *testing.T) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email: fmt.Sprintf("user%d@example.com", f.counter),
		Name:  fmt.Sprintf("Test User %d", f.counter),
		Role:  models.RoleMember,
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO users (email, name, role)
		VALUES ($1, $2, $3)
		RETURNING id, can_send_requests, can_receive_requests, created_at, updated_at
	`, user.Email, user.Name, user.Role).Scan(
		&user.ID, &user.CanSendRequests, &user.CanReceiveRequests, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// CreateHackathon creates a hackathon starting in a week with two problems
func (f *Fixtures) CreateHackathon(t *testing.T, maxTeamSize int) *models.Hackathon {
	t.Helper()
	f.counter++
	ctx := context.Background()

	start := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Microsecond)
	h := &models.Hackathon{
		Name:                       fmt.Sprintf("Hackathon %d", f.counter),
		StartDate:                  start,
		EndDate:                    start.Add(48 * time.Hour),
		MinTeamSize:                1,
		MaxTeamSize:                maxTeamSize,
		MinTeamSizeForFinalization: 1,
		AllowParticipantTeams:      true,
		TeamCreationMode:           models.CreationModeBoth,
		SubmissionStart:            start,
		SubmissionEnd:              start.Add(48 * time.Hour),
	}

	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO hackathons (name, start_date, end_date, min_team_size, max_team_size, min_team_size_for_finalization,
			allow_participant_teams, team_creation_mode, submission_start, submission_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, h.Name, h.StartDate, h.EndDate, h.MinTeamSize, h.MaxTeamSize, h.MinTeamSizeForFinalization,
		h.AllowParticipantTeams, h.TeamCreationMode, h.SubmissionStart, h.SubmissionEnd).Scan(&h.ID)
	if err != nil {
		t.Fatalf("failed to create hackathon: %v", err)
	}

	for i := 1; i <= 2; i++ {
		p := models.ProblemStatement{HackathonID: h.ID, Title: fmt.Sprintf("Problem %d", i)}
		err := f.db.Pool.QueryRow(ctx, `
			INSERT INTO problem_statements (hackathon_id, title, description) VALUES ($1, $2, '') RETURNING id
		`, h.ID, p.Title).Scan(&p.ID)
		if err != nil {
			t.Fatalf("failed to create problem statement: %v", err)
		}
		h.ProblemStatements = append(h.ProblemStatements, p)
	}

	return h
}
