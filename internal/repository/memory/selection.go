package memory

import (
	"context"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
)

type SelectionStore struct {
	c collection[models.TeamProblemSelection]
}

func NewSelectionStore() *SelectionStore {
	return &SelectionStore{c: newCollection[models.TeamProblemSelection]()}
}

func (s *SelectionStore) find(teamID, hackathonID uuid.UUID) *models.TeamProblemSelection {
	for _, sel := range s.c.items {
		if sel.TeamID == teamID && sel.HackathonID == hackathonID {
			return sel
		}
	}
	return nil
}

func (s *SelectionStore) GetByTeam(_ context.Context, teamID, hackathonID uuid.UUID) (*models.TeamProblemSelection, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	sel := s.find(teamID, hackathonID)
	if sel == nil {
		return nil, repository.ErrNotFound
	}
	c := *sel
	return &c, nil
}

func (s *SelectionStore) Lock(_ context.Context, sel *models.TeamProblemSelection) (*models.TeamProblemSelection, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	locked := *sel
	locked.IsLocked = true
	if existing := s.find(sel.TeamID, sel.HackathonID); existing != nil {
		if existing.IsLocked {
			return nil, repository.ErrPreconditionFailed
		}
		locked.ID = existing.ID
	} else {
		locked.ID = uuid.New()
	}
	s.c.put(locked.ID, &locked)
	c := locked
	return &c, nil
}

func (s *SelectionStore) ListByHackathon(_ context.Context, hackathonID uuid.UUID) ([]models.TeamProblemSelection, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	var selections []models.TeamProblemSelection
	s.c.each(func(sel *models.TeamProblemSelection) bool {
		if sel.HackathonID == hackathonID {
			selections = append(selections, *sel)
		}
		return true
	})
	return selections, nil
}
