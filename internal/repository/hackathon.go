package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dimitrije/teamforge-api/internal/database"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const hackathonColumns = `id, name, start_date, end_date, min_team_size, max_team_size, min_team_size_for_finalization,
	allow_participant_teams, team_creation_mode, submission_start, submission_end`

type HackathonRepository struct {
	db *database.DB
}

func NewHackathonRepository(db *database.DB) *HackathonRepository {
	return &HackathonRepository{db: db}
}

func scanHackathon(row pgx.Row) (*models.Hackathon, error) {
	var h models.Hackathon
	err := row.Scan(&h.ID, &h.Name, &h.StartDate, &h.EndDate, &h.MinTeamSize, &h.MaxTeamSize, &h.MinTeamSizeForFinalization,
		&h.AllowParticipantTeams, &h.TeamCreationMode, &h.SubmissionStart, &h.SubmissionEnd)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Create stores a hackathon and its problem statements in one transaction;
// both are admin-owned configuration, not participant state.
func (r *HackathonRepository) Create(ctx context.Context, h *models.Hackathon) (*models.Hackathon, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanHackathon(tx.QueryRow(ctx, `
		INSERT INTO hackathons (name, start_date, end_date, min_team_size, max_team_size, min_team_size_for_finalization,
			allow_participant_teams, team_creation_mode, submission_start, submission_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+hackathonColumns,
		h.Name, h.StartDate, h.EndDate, h.MinTeamSize, h.MaxTeamSize, h.MinTeamSizeForFinalization,
		h.AllowParticipantTeams, h.TeamCreationMode, h.SubmissionStart, h.SubmissionEnd))
	if err != nil {
		return nil, fmt.Errorf("failed to create hackathon: %w", err)
	}

	for _, p := range h.ProblemStatements {
		var ps models.ProblemStatement
		err := tx.QueryRow(ctx, `
			INSERT INTO problem_statements (hackathon_id, title, description)
			VALUES ($1, $2, $3)
			RETURNING id, hackathon_id, title, description
		`, created.ID, p.Title, p.Description).Scan(&ps.ID, &ps.HackathonID, &ps.Title, &ps.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to create problem statement: %w", err)
		}
		created.ProblemStatements = append(created.ProblemStatements, ps)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

func (r *HackathonRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Hackathon, error) {
	h, err := scanHackathon(r.db.Pool.QueryRow(ctx, `SELECT `+hackathonColumns+` FROM hackathons WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, hackathon_id, title, description
		FROM problem_statements WHERE hackathon_id = $1
		ORDER BY created_at, id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.ProblemStatement
		if err := rows.Scan(&p.ID, &p.HackathonID, &p.Title, &p.Description); err != nil {
			return nil, err
		}
		h.ProblemStatements = append(h.ProblemStatements, p)
	}
	return h, rows.Err()
}

// ListRunning returns ids of hackathons that have started and not yet ended.
func (r *HackathonRepository) ListRunning(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id FROM hackathons WHERE start_date <= $1 AND end_date > $1 ORDER BY start_date
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *HackathonRepository) AddParticipant(ctx context.Context, hackathonID, userID uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO hackathon_participants (hackathon_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (hackathon_id, user_id) DO NOTHING
	`, hackathonID, userID)
	return err
}

func (r *HackathonRepository) IsParticipant(ctx context.Context, hackathonID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM hackathon_participants WHERE hackathon_id = $1 AND user_id = $2)
	`, hackathonID, userID).Scan(&exists)
	return exists, err
}
