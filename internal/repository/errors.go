// Package repository persists teams, users and requests in Postgres. Every
// mutating method is a single conditional statement so each row behaves like
// an atomically updated document; callers never rely on multi-row transactions
// for cross-entity consistency.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrPreconditionFailed means the row exists but the guarded update's
	// condition no longer held.
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrDuplicate          = errors.New("duplicate record")
)

const uniqueViolation = "23505"

func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// classifyGuarded maps "no rows" from a conditional UPDATE to ErrPreconditionFailed.
func classifyGuarded(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPreconditionFailed
	}
	return classify(err)
}
