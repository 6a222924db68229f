package memory

import (
	"context"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
)

type UserStore struct {
	c collection[models.User]
}

func NewUserStore() *UserStore {
	return &UserStore{c: newCollection[models.User]()}
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.CurrentTeamID != nil {
		id := *u.CurrentTeamID
		c.CurrentTeamID = &id
	}
	return &c
}

func (s *UserStore) Create(_ context.Context, email, name, role string) (*models.User, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	for _, u := range s.c.items {
		if u.Email == email {
			return nil, repository.ErrDuplicate
		}
	}
	now := time.Now()
	u := &models.User{
		ID:                 uuid.New(),
		Email:              email,
		Name:               name,
		Role:               role,
		CanSendRequests:    true,
		CanReceiveRequests: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.c.put(u.ID, u)
	return copyUser(u), nil
}

// Put stores u as-is, overwriting any user with the same id.
func (s *UserStore) Put(u *models.User) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.put(u.ID, copyUser(u))
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	u, ok := s.c.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	for _, u := range s.c.items {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) AssignTeam(_ context.Context, userID, teamID uuid.UUID) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	u, ok := s.c.items[userID]
	if !ok || u.CurrentTeamID != nil {
		return repository.ErrPreconditionFailed
	}
	u.CurrentTeamID = &teamID
	u.CanSendRequests = false
	u.CanReceiveRequests = false
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) ReleaseTeam(_ context.Context, userID, teamID uuid.UUID) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	u, ok := s.c.items[userID]
	if !ok || !u.InTeam(teamID) {
		return repository.ErrPreconditionFailed
	}
	u.CurrentTeamID = nil
	u.CanSendRequests = true
	u.CanReceiveRequests = true
	if u.Role != models.RoleAdmin {
		u.Role = models.RoleMember
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) SetRole(_ context.Context, userID uuid.UUID, role string) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	u, ok := s.c.items[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Role != models.RoleAdmin {
		u.Role = role
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) PromoteAdmin(_ context.Context, email string) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	for _, u := range s.c.items {
		if u.Email == email {
			u.Role = models.RoleAdmin
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *UserStore) ListAssigned(_ context.Context) ([]models.User, error) {
	return s.filter(func(u *models.User) bool { return u.HasTeam() }), nil
}

func (s *UserStore) ListByRole(_ context.Context, role string) ([]models.User, error) {
	return s.filter(func(u *models.User) bool { return u.Role == role }), nil
}

func (s *UserStore) filter(keep func(*models.User) bool) []models.User {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	var users []models.User
	s.c.each(func(u *models.User) bool {
		if keep(u) {
			users = append(users, *copyUser(u))
		}
		return true
	})
	return users
}
