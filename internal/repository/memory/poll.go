package memory

import (
	"context"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
)

type PollStore struct {
	c collection[models.ProblemSelectionPoll]
}

func NewPollStore() *PollStore {
	return &PollStore{c: newCollection[models.ProblemSelectionPoll]()}
}

func (s *PollStore) Create(_ context.Context, p *models.ProblemSelectionPoll) (*models.ProblemSelectionPoll, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	for _, existing := range s.c.items {
		if existing.TeamID == p.TeamID && existing.Status == models.PollStatusActive {
			return nil, repository.ErrDuplicate
		}
	}
	created := p.Clone()
	created.ID = uuid.New()
	created.Status = models.PollStatusActive
	created.WinningProblemID = nil
	created.CompletedAt = nil
	created.CreatedAt = time.Now()
	s.c.put(created.ID, created)
	return created.Clone(), nil
}

// Put stores p as-is, overwriting any poll with the same id.
func (s *PollStore) Put(p *models.ProblemSelectionPoll) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.put(p.ID, p.Clone())
}

func (s *PollStore) GetByID(_ context.Context, id uuid.UUID) (*models.ProblemSelectionPoll, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	p, ok := s.c.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *PollStore) GetActiveByTeam(_ context.Context, teamID uuid.UUID) (*models.ProblemSelectionPoll, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	for _, p := range s.c.items {
		if p.TeamID == teamID && p.Status == models.PollStatusActive {
			return p.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *PollStore) SetVote(_ context.Context, pollID, voterID, problemID uuid.UUID, now time.Time) (*models.ProblemSelectionPoll, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	p, ok := s.c.items[pollID]
	if !ok || p.Status != models.PollStatusActive || !p.ExpiresAt.After(now) {
		return nil, repository.ErrPreconditionFailed
	}
	next := p.Clone()
	next.Votes[voterID] = problemID
	s.c.items[pollID] = next
	return next.Clone(), nil
}

func (s *PollStore) Complete(_ context.Context, pollID uuid.UUID, status string, winner *uuid.UUID, at time.Time) (*models.ProblemSelectionPoll, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	p, ok := s.c.items[pollID]
	if !ok || p.Status != models.PollStatusActive {
		return nil, repository.ErrPreconditionFailed
	}
	next := p.Clone()
	next.Status = status
	if winner != nil {
		w := *winner
		next.WinningProblemID = &w
	}
	next.CompletedAt = &at
	s.c.items[pollID] = next
	return next.Clone(), nil
}

func (s *PollStore) ListExpiredActive(_ context.Context, now time.Time) ([]models.ProblemSelectionPoll, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	var polls []models.ProblemSelectionPoll
	s.c.each(func(p *models.ProblemSelectionPoll) bool {
		if p.Status == models.PollStatusActive && !p.ExpiresAt.After(now) {
			polls = append(polls, *p.Clone())
		}
		return true
	})
	return polls, nil
}
