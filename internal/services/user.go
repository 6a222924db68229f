package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dimitrije/teamforge-api/internal/apperror"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrEmailTaken   = apperror.New(apperror.KindConflict, "EMAIL_TAKEN", "a user with this email already exists")
	ErrInvalidEmail = apperror.New(apperror.KindValidation, "INVALID_EMAIL", "invalid email address")
)

type UserService struct {
	lookup
}

func NewUserService(stores Stores) *UserService {
	return &UserService{lookup: lookup{stores: stores}}
}

// Create registers a participant. Identity itself is verified upstream; this
// only records the directory entry.
func (s *UserService) Create(ctx context.Context, email, name string) (*models.User, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, ErrInvalidEmail
	}
	u, err := s.stores.Users.Create(ctx, strings.ToLower(addr.Address), strings.TrimSpace(name), models.RoleMember)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.user(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.stores.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (s *UserService) PromoteAdmin(ctx context.Context, email string) error {
	err := s.stores.Users.PromoteAdmin(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
