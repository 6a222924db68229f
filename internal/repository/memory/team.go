package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
)

type TeamStore struct {
	c collection[models.Team]
}

func NewTeamStore() *TeamStore {
	return &TeamStore{c: newCollection[models.Team]()}
}

func (s *TeamStore) Create(_ context.Context, t *models.Team) (*models.Team, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	for _, existing := range s.c.items {
		if existing.HackathonID == t.HackathonID && existing.Name == t.Name {
			return nil, repository.ErrDuplicate
		}
	}
	now := time.Now()
	created := t.Clone()
	created.ID = uuid.New()
	created.Status = models.TeamStatusForming
	created.IsFinalized = false
	if created.PendingRequests == nil {
		created.PendingRequests = []uuid.UUID{}
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	s.c.put(created.ID, created)
	return created.Clone(), nil
}

// Put stores t as-is, overwriting any team with the same id.
func (s *TeamStore) Put(t *models.Team) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.put(t.ID, t.Clone())
}

func (s *TeamStore) GetByID(_ context.Context, id uuid.UUID) (*models.Team, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	t, ok := s.c.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *TeamStore) ListByHackathon(_ context.Context, hackathonID uuid.UUID) ([]models.Team, error) {
	return s.filter(func(t *models.Team) bool { return t.HackathonID == hackathonID }), nil
}

func (s *TeamStore) List(_ context.Context) ([]models.Team, error) {
	return s.filter(func(*models.Team) bool { return true }), nil
}

func (s *TeamStore) AddMember(_ context.Context, teamID, userID uuid.UUID) (*models.Team, error) {
	return s.update(teamID, func(t *models.Team) bool {
		if t.IsFinalized || t.IsFull() || t.HasMember(userID) {
			return false
		}
		t.CanReceiveRequests = t.CanReceiveRequests && len(t.Members)+1 < t.MemberLimit
		t.Members = append(t.Members, userID)
		return true
	})
}

func (s *TeamStore) RemoveMember(_ context.Context, teamID, userID uuid.UUID) (*models.Team, error) {
	return s.update(teamID, func(t *models.Team) bool {
		if t.IsFinalized || !t.HasMember(userID) {
			return false
		}
		if t.IsOwner(userID) && len(t.Members) != 1 {
			return false
		}
		t.Members = slices.DeleteFunc(t.Members, func(id uuid.UUID) bool { return id == userID })
		t.CanReceiveRequests = true
		return true
	})
}

func (s *TeamStore) DeleteIfEmpty(_ context.Context, teamID uuid.UUID) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	t, ok := s.c.items[teamID]
	if !ok || len(t.Members) != 0 {
		return repository.ErrPreconditionFailed
	}
	s.c.remove(teamID)
	return nil
}

func (s *TeamStore) Finalize(_ context.Context, teamID, ownerID uuid.UUID, minSize int) (*models.Team, error) {
	return s.update(teamID, func(t *models.Team) bool {
		if !t.IsOwner(ownerID) || t.IsFinalized || len(t.Members) < minSize {
			return false
		}
		t.Status = models.TeamStatusFinalized
		t.IsFinalized = true
		t.CanReceiveRequests = false
		return true
	})
}

func (s *TeamStore) SetOwner(_ context.Context, teamID, currentOwner, newOwner uuid.UUID) (*models.Team, error) {
	return s.update(teamID, func(t *models.Team) bool {
		if !t.IsOwner(currentOwner) || !t.HasMember(newOwner) {
			return false
		}
		t.CreatedBy = newOwner
		return true
	})
}

func (s *TeamStore) AddPendingRequest(_ context.Context, teamID, requestID uuid.UUID) error {
	_, err := s.update(teamID, func(t *models.Team) bool {
		if !slices.Contains(t.PendingRequests, requestID) {
			t.PendingRequests = append(t.PendingRequests, requestID)
		}
		return true
	})
	return notFoundOnly(err)
}

func (s *TeamStore) RemovePendingRequest(_ context.Context, teamID, requestID uuid.UUID) error {
	_, err := s.update(teamID, func(t *models.Team) bool {
		t.PendingRequests = slices.DeleteFunc(t.PendingRequests, func(id uuid.UUID) bool { return id == requestID })
		return true
	})
	return notFoundOnly(err)
}

// update applies fn to the stored team under the write lock. fn returning
// false leaves the team untouched and yields ErrPreconditionFailed.
func (s *TeamStore) update(teamID uuid.UUID, fn func(*models.Team) bool) (*models.Team, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	t, ok := s.c.items[teamID]
	if !ok {
		return nil, repository.ErrPreconditionFailed
	}
	next := t.Clone()
	if !fn(next) {
		return nil, repository.ErrPreconditionFailed
	}
	next.UpdatedAt = time.Now()
	s.c.items[teamID] = next
	return next.Clone(), nil
}

func (s *TeamStore) filter(keep func(*models.Team) bool) []models.Team {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	var teams []models.Team
	s.c.each(func(t *models.Team) bool {
		if keep(t) {
			teams = append(teams, *t.Clone())
		}
		return true
	})
	return teams
}

func notFoundOnly(err error) error {
	if err != nil {
		return repository.ErrNotFound
	}
	return nil
}
