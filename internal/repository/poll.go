package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dimitrije/teamforge-api/internal/database"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const pollColumns = `id, team_id, hackathon_id, created_by, status, votes, expires_at, winning_problem_id, created_at, completed_at`

type PollRepository struct {
	db *database.DB
}

func NewPollRepository(db *database.DB) *PollRepository {
	return &PollRepository{db: db}
}

func scanPoll(row pgx.Row) (*models.ProblemSelectionPoll, error) {
	var p models.ProblemSelectionPoll
	var votes []byte
	err := row.Scan(&p.ID, &p.TeamID, &p.HackathonID, &p.CreatedBy, &p.Status, &votes, &p.ExpiresAt,
		&p.WinningProblemID, &p.CreatedAt, &p.CompletedAt)
	if err != nil {
		return nil, err
	}
	p.Votes = make(map[uuid.UUID]uuid.UUID)
	if len(votes) > 0 {
		if err := json.Unmarshal(votes, &p.Votes); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// Create starts a poll. A second active poll for the team hits the partial
// unique index and returns ErrDuplicate.
func (r *PollRepository) Create(ctx context.Context, p *models.ProblemSelectionPoll) (*models.ProblemSelectionPoll, error) {
	created, err := scanPoll(r.db.Pool.QueryRow(ctx, `
		INSERT INTO problem_selection_polls (team_id, hackathon_id, created_by, status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+pollColumns, p.TeamID, p.HackathonID, p.CreatedBy, models.PollStatusActive, p.ExpiresAt))
	return created, classify(err)
}

func (r *PollRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ProblemSelectionPoll, error) {
	p, err := scanPoll(r.db.Pool.QueryRow(ctx, `SELECT `+pollColumns+` FROM problem_selection_polls WHERE id = $1`, id))
	return p, classify(err)
}

func (r *PollRepository) GetActiveByTeam(ctx context.Context, teamID uuid.UUID) (*models.ProblemSelectionPoll, error) {
	p, err := scanPoll(r.db.Pool.QueryRow(ctx, `
		SELECT `+pollColumns+` FROM problem_selection_polls WHERE team_id = $1 AND status = 'active'
	`, teamID))
	return p, classify(err)
}

// SetVote overwrites voterID's choice while the poll is still open at now.
func (r *PollRepository) SetVote(ctx context.Context, pollID, voterID, problemID uuid.UUID, now time.Time) (*models.ProblemSelectionPoll, error) {
	p, err := scanPoll(r.db.Pool.QueryRow(ctx, `
		UPDATE problem_selection_polls SET votes = votes || jsonb_build_object($2::text, $3::text)
		WHERE id = $1 AND status = 'active' AND expires_at > $4
		RETURNING `+pollColumns, pollID, voterID.String(), problemID.String(), now))
	return p, classifyGuarded(err)
}

// Complete closes an active poll exactly once.
func (r *PollRepository) Complete(ctx context.Context, pollID uuid.UUID, status string, winner *uuid.UUID, at time.Time) (*models.ProblemSelectionPoll, error) {
	p, err := scanPoll(r.db.Pool.QueryRow(ctx, `
		UPDATE problem_selection_polls SET status = $2, winning_problem_id = $3, completed_at = $4
		WHERE id = $1 AND status = 'active'
		RETURNING `+pollColumns, pollID, status, winner, at))
	return p, classifyGuarded(err)
}

func (r *PollRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]models.ProblemSelectionPoll, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+pollColumns+` FROM problem_selection_polls
		WHERE status = 'active' AND expires_at <= $1
		ORDER BY expires_at
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var polls []models.ProblemSelectionPoll
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, err
		}
		polls = append(polls, *p)
	}
	return polls, rows.Err()
}
