package repository

import (
	"context"

	"github.com/dimitrije/teamforge-api/internal/database"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const selectionColumns = `id, team_id, hackathon_id, selected_problem_id, selected_by, is_locked, selection_method, selected_at`

type SelectionRepository struct {
	db *database.DB
}

func NewSelectionRepository(db *database.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

func scanSelection(row pgx.Row) (*models.TeamProblemSelection, error) {
	var s models.TeamProblemSelection
	err := row.Scan(&s.ID, &s.TeamID, &s.HackathonID, &s.SelectedProblemID, &s.SelectedBy, &s.IsLocked,
		&s.SelectionMethod, &s.SelectedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SelectionRepository) GetByTeam(ctx context.Context, teamID, hackathonID uuid.UUID) (*models.TeamProblemSelection, error) {
	s, err := scanSelection(r.db.Pool.QueryRow(ctx, `
		SELECT `+selectionColumns+` FROM team_problem_selections WHERE team_id = $1 AND hackathon_id = $2
	`, teamID, hackathonID))
	return s, classify(err)
}

// Lock upserts a locked selection. An already locked row is left untouched and
// ErrPreconditionFailed is returned.
func (r *SelectionRepository) Lock(ctx context.Context, s *models.TeamProblemSelection) (*models.TeamProblemSelection, error) {
	locked, err := scanSelection(r.db.Pool.QueryRow(ctx, `
		INSERT INTO team_problem_selections (team_id, hackathon_id, selected_problem_id, selected_by, is_locked, selection_method, selected_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6)
		ON CONFLICT (team_id, hackathon_id) DO UPDATE SET
			selected_problem_id = EXCLUDED.selected_problem_id,
			selected_by = EXCLUDED.selected_by,
			is_locked = TRUE,
			selection_method = EXCLUDED.selection_method,
			selected_at = EXCLUDED.selected_at
		WHERE team_problem_selections.is_locked = FALSE
		RETURNING `+selectionColumns,
		s.TeamID, s.HackathonID, s.SelectedProblemID, s.SelectedBy, s.SelectionMethod, s.SelectedAt))
	return locked, classifyGuarded(err)
}

func (r *SelectionRepository) ListByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]models.TeamProblemSelection, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+selectionColumns+` FROM team_problem_selections WHERE hackathon_id = $1
	`, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var selections []models.TeamProblemSelection
	for rows.Next() {
		s, err := scanSelection(rows)
		if err != nil {
			return nil, err
		}
		selections = append(selections, *s)
	}
	return selections, rows.Err()
}
