package repository

import (
	"context"

	"github.com/dimitrije/teamforge-api/internal/database"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
)

type SubmissionRepository struct {
	db *database.DB
}

func NewSubmissionRepository(db *database.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts the team's only submission; a second one is ErrDuplicate.
func (r *SubmissionRepository) Create(ctx context.Context, s *models.TeamSubmission) (*models.TeamSubmission, error) {
	var created models.TeamSubmission
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO team_submissions (team_id, hackathon_id, submission_url, submitted_by, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, team_id, hackathon_id, submission_url, submitted_by, submitted_at
	`, s.TeamID, s.HackathonID, s.SubmissionURL, s.SubmittedBy, s.SubmittedAt).Scan(
		&created.ID, &created.TeamID, &created.HackathonID, &created.SubmissionURL, &created.SubmittedBy, &created.SubmittedAt,
	)
	if err != nil {
		return nil, classify(err)
	}
	return &created, nil
}

func (r *SubmissionRepository) GetByTeam(ctx context.Context, teamID, hackathonID uuid.UUID) (*models.TeamSubmission, error) {
	var s models.TeamSubmission
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, team_id, hackathon_id, submission_url, submitted_by, submitted_at
		FROM team_submissions WHERE team_id = $1 AND hackathon_id = $2
	`, teamID, hackathonID).Scan(&s.ID, &s.TeamID, &s.HackathonID, &s.SubmissionURL, &s.SubmittedBy, &s.SubmittedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &s, nil
}
