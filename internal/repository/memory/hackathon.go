package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
)

type HackathonStore struct {
	c            collection[models.Hackathon]
	participants map[uuid.UUID]map[uuid.UUID]bool
}

func NewHackathonStore() *HackathonStore {
	return &HackathonStore{
		c:            newCollection[models.Hackathon](),
		participants: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func copyHackathon(h *models.Hackathon) *models.Hackathon {
	c := *h
	c.ProblemStatements = slices.Clone(h.ProblemStatements)
	return &c
}

func (s *HackathonStore) Create(_ context.Context, h *models.Hackathon) (*models.Hackathon, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	created := copyHackathon(h)
	created.ID = uuid.New()
	for i := range created.ProblemStatements {
		created.ProblemStatements[i].ID = uuid.New()
		created.ProblemStatements[i].HackathonID = created.ID
	}
	s.c.put(created.ID, created)
	return copyHackathon(created), nil
}

// Put stores h as-is, overwriting any hackathon with the same id.
func (s *HackathonStore) Put(h *models.Hackathon) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.put(h.ID, copyHackathon(h))
}

func (s *HackathonStore) GetByID(_ context.Context, id uuid.UUID) (*models.Hackathon, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	h, ok := s.c.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyHackathon(h), nil
}

func (s *HackathonStore) ListRunning(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	var ids []uuid.UUID
	s.c.each(func(h *models.Hackathon) bool {
		if !h.StartDate.After(now) && h.EndDate.After(now) {
			ids = append(ids, h.ID)
		}
		return true
	})
	return ids, nil
}

func (s *HackathonStore) AddParticipant(_ context.Context, hackathonID, userID uuid.UUID) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	if _, ok := s.c.items[hackathonID]; !ok {
		return repository.ErrNotFound
	}
	if s.participants[hackathonID] == nil {
		s.participants[hackathonID] = make(map[uuid.UUID]bool)
	}
	s.participants[hackathonID][userID] = true
	return nil
}

func (s *HackathonStore) IsParticipant(_ context.Context, hackathonID, userID uuid.UUID) (bool, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	return s.participants[hackathonID][userID], nil
}
