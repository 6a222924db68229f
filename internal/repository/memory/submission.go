package memory

import (
	"context"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
)

type SubmissionStore struct {
	c collection[models.TeamSubmission]
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{c: newCollection[models.TeamSubmission]()}
}

func (s *SubmissionStore) Create(_ context.Context, sub *models.TeamSubmission) (*models.TeamSubmission, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	for _, existing := range s.c.items {
		if existing.TeamID == sub.TeamID && existing.HackathonID == sub.HackathonID {
			return nil, repository.ErrDuplicate
		}
	}
	created := *sub
	created.ID = uuid.New()
	s.c.put(created.ID, &created)
	c := created
	return &c, nil
}

func (s *SubmissionStore) GetByTeam(_ context.Context, teamID, hackathonID uuid.UUID) (*models.TeamSubmission, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	for _, sub := range s.c.items {
		if sub.TeamID == teamID && sub.HackathonID == hackathonID {
			c := *sub
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}
