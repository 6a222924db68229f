package repository

import (
	"context"

	"github.com/dimitrije/teamforge-api/internal/database"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const teamColumns = `id, team_name, description, hackathon_id, created_by, team_members, member_limit,
	team_status, is_finalized, can_receive_requests, pending_requests, created_at, updated_at`

type TeamRepository struct {
	db *database.DB
}

func NewTeamRepository(db *database.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.HackathonID, &t.CreatedBy, &t.Members, &t.MemberLimit,
		&t.Status, &t.IsFinalized, &t.CanReceiveRequests, &t.PendingRequests, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts the team with its owner as the only member. A name clash in
// the same hackathon yields ErrDuplicate.
func (r *TeamRepository) Create(ctx context.Context, t *models.Team) (*models.Team, error) {
	created, err := scanTeam(r.db.Pool.QueryRow(ctx, `
		INSERT INTO teams (team_name, description, hackathon_id, created_by, team_members, member_limit, can_receive_requests)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+teamColumns,
		t.Name, t.Description, t.HackathonID, t.CreatedBy, t.Members, t.MemberLimit, t.CanReceiveRequests))
	return created, classify(err)
}

func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	t, err := scanTeam(r.db.Pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
	return t, classify(err)
}

func (r *TeamRepository) ListByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]models.Team, error) {
	return r.list(ctx, `SELECT `+teamColumns+` FROM teams WHERE hackathon_id = $1 ORDER BY created_at`, hackathonID)
}

func (r *TeamRepository) List(ctx context.Context) ([]models.Team, error) {
	return r.list(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY created_at`)
}

// AddMember appends userID while the team is open and below its limit, and
// closes the team to requests when the new member fills it.
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID uuid.UUID) (*models.Team, error) {
	t, err := scanTeam(r.db.Pool.QueryRow(ctx, `
		UPDATE teams SET
			team_members = array_append(team_members, $2),
			can_receive_requests = can_receive_requests AND cardinality(team_members) + 1 < member_limit,
			updated_at = NOW()
		WHERE id = $1 AND NOT is_finalized
			AND cardinality(team_members) < member_limit
			AND NOT ($2 = ANY(team_members))
		RETURNING `+teamColumns, teamID, userID))
	return t, classifyGuarded(err)
}

// RemoveMember drops userID from an unfinalized roster. The owner is only
// removable while alone.
func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) (*models.Team, error) {
	t, err := scanTeam(r.db.Pool.QueryRow(ctx, `
		UPDATE teams SET
			team_members = array_remove(team_members, $2),
			can_receive_requests = TRUE,
			updated_at = NOW()
		WHERE id = $1 AND NOT is_finalized
			AND $2 = ANY(team_members)
			AND (created_by <> $2 OR cardinality(team_members) = 1)
		RETURNING `+teamColumns, teamID, userID))
	return t, classifyGuarded(err)
}

// DeleteIfEmpty removes a team whose roster is empty.
func (r *TeamRepository) DeleteIfEmpty(ctx context.Context, teamID uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM teams WHERE id = $1 AND cardinality(team_members) = 0`, teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

func (r *TeamRepository) Finalize(ctx context.Context, teamID, ownerID uuid.UUID, minSize int) (*models.Team, error) {
	t, err := scanTeam(r.db.Pool.QueryRow(ctx, `
		UPDATE teams SET team_status = $4, is_finalized = TRUE, can_receive_requests = FALSE, updated_at = NOW()
		WHERE id = $1 AND created_by = $2 AND NOT is_finalized AND cardinality(team_members) >= $3
		RETURNING `+teamColumns, teamID, ownerID, minSize, models.TeamStatusFinalized))
	return t, classifyGuarded(err)
}

// SetOwner swaps created_by only if it still equals currentOwner and the new
// owner is on the roster.
func (r *TeamRepository) SetOwner(ctx context.Context, teamID, currentOwner, newOwner uuid.UUID) (*models.Team, error) {
	t, err := scanTeam(r.db.Pool.QueryRow(ctx, `
		UPDATE teams SET created_by = $3, updated_at = NOW()
		WHERE id = $1 AND created_by = $2 AND $3 = ANY(team_members)
		RETURNING `+teamColumns, teamID, currentOwner, newOwner))
	return t, classifyGuarded(err)
}

func (r *TeamRepository) AddPendingRequest(ctx context.Context, teamID, requestID uuid.UUID) error {
	return r.execOne(ctx, `
		UPDATE teams SET pending_requests = array_append(array_remove(pending_requests, $2), $2), updated_at = NOW()
		WHERE id = $1
	`, teamID, requestID)
}

func (r *TeamRepository) RemovePendingRequest(ctx context.Context, teamID, requestID uuid.UUID) error {
	return r.execOne(ctx, `
		UPDATE teams SET pending_requests = array_remove(pending_requests, $2), updated_at = NOW()
		WHERE id = $1
	`, teamID, requestID)
}

func (r *TeamRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TeamRepository) list(ctx context.Context, query string, args ...any) ([]models.Team, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}
