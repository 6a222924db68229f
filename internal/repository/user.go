package repository

import (
	"context"

	"github.com/dimitrije/teamforge-api/internal/database"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, name, role, current_team_id, can_send_requests, can_receive_requests, created_at, updated_at`

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CurrentTeamID,
		&u.CanSendRequests, &u.CanReceiveRequests, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, email, name, role string) (*models.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns, email, name, role))
	return u, classify(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, classify(err)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	return u, classify(err)
}

// AssignTeam points a team-less user at teamID and closes their request flags.
func (r *UserRepository) AssignTeam(ctx context.Context, userID, teamID uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET current_team_id = $2, can_send_requests = FALSE, can_receive_requests = FALSE, updated_at = NOW()
		WHERE id = $1 AND current_team_id IS NULL
	`, userID, teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

// ReleaseTeam clears the pointer only if it still names teamID, reopens the
// request flags and drops a leader back to member.
func (r *UserRepository) ReleaseTeam(ctx context.Context, userID, teamID uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET current_team_id = NULL, can_send_requests = TRUE, can_receive_requests = TRUE,
			role = CASE WHEN role = 'admin' THEN role ELSE 'member' END, updated_at = NOW()
		WHERE id = $1 AND current_team_id = $2
	`, userID, teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

// SetRole never demotes an admin.
func (r *UserRepository) SetRole(ctx context.Context, userID uuid.UUID, role string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET role = CASE WHEN role = 'admin' THEN role ELSE $2 END, updated_at = NOW()
		WHERE id = $1
	`, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) PromoteAdmin(ctx context.Context, email string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET role = $1, updated_at = NOW() WHERE email = $2
	`, models.RoleAdmin, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) ListAssigned(ctx context.Context) ([]models.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE current_team_id IS NOT NULL ORDER BY id`)
}

func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY id`, role)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
