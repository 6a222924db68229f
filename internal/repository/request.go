package repository

import (
	"context"
	"time"

	"github.com/dimitrije/teamforge-api/internal/database"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `id, from_user_id, to_user_id, team_id, hackathon_id, request_type, status, message,
	response_message, expiry_reason, expires_at, responded_at, created_at`

type RequestRepository struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func scanRequest(row pgx.Row) (*models.TeamRequest, error) {
	var r models.TeamRequest
	err := row.Scan(&r.ID, &r.FromUserID, &r.ToUserID, &r.TeamID, &r.HackathonID, &r.Type, &r.Status, &r.Message,
		&r.ResponseMessage, &r.ExpiryReason, &r.ExpiresAt, &r.RespondedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a pending request. The partial unique indexes reject a second
// pending join for (from, team) or invite for (team, to) with ErrDuplicate.
func (r *RequestRepository) Create(ctx context.Context, req *models.TeamRequest) (*models.TeamRequest, error) {
	created, err := scanRequest(r.db.Pool.QueryRow(ctx, `
		INSERT INTO team_requests (from_user_id, to_user_id, team_id, hackathon_id, request_type, status, message, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+requestColumns,
		req.FromUserID, req.ToUserID, req.TeamID, req.HackathonID, req.Type, models.RequestStatusPending, req.Message, req.ExpiresAt))
	return created, classify(err)
}

func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TeamRequest, error) {
	req, err := scanRequest(r.db.Pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM team_requests WHERE id = $1`, id))
	return req, classify(err)
}

// Resolve moves a pending request to a terminal status. It is the
// compare-and-set every accept, reject and expiry goes through.
func (r *RequestRepository) Resolve(ctx context.Context, id uuid.UUID, status string, reason *string, responseMessage string, at time.Time) (*models.TeamRequest, error) {
	req, err := scanRequest(r.db.Pool.QueryRow(ctx, `
		UPDATE team_requests SET status = $2, expiry_reason = $3, response_message = $4, responded_at = $5
		WHERE id = $1 AND status = 'pending'
		RETURNING `+requestColumns, id, status, reason, responseMessage, at))
	return req, classifyGuarded(err)
}

// Reopen undoes an acceptance claim whose membership write never landed.
func (r *RequestRepository) Reopen(ctx context.Context, id uuid.UUID, claimedAt time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE team_requests SET status = 'pending', responded_at = NULL, response_message = ''
		WHERE id = $1 AND status = 'accepted' AND responded_at = $2
	`, id, claimedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

func (r *RequestRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]models.TeamRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+` FROM team_requests
		WHERE status = 'pending' AND expires_at <= $1
		ORDER BY expires_at LIMIT $2`, now, limit)
}

func (r *RequestRepository) ListPendingByTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+` FROM team_requests
		WHERE team_id = $1 AND status = 'pending'
		ORDER BY created_at`, teamID)
}

// ListPendingInvolving returns pending joins sent by userID and pending
// invitations addressed to userID.
func (r *RequestRepository) ListPendingInvolving(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+` FROM team_requests
		WHERE status = 'pending'
			AND ((request_type = 'join' AND from_user_id = $1) OR (request_type = 'invite' AND to_user_id = $1))
		ORDER BY created_at`, userID)
}

func (r *RequestRepository) ListIncomingInvites(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+` FROM team_requests
		WHERE to_user_id = $1 AND request_type = 'invite' AND status = 'pending'
		ORDER BY created_at DESC`, userID)
}

func (r *RequestRepository) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+` FROM team_requests
		WHERE from_user_id = $1
		ORDER BY created_at DESC`, userID)
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...any) ([]models.TeamRequest, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.TeamRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}
