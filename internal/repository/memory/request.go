package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
)

type RequestStore struct {
	c collection[models.TeamRequest]
}

func NewRequestStore() *RequestStore {
	return &RequestStore{c: newCollection[models.TeamRequest]()}
}

func copyRequest(r *models.TeamRequest) *models.TeamRequest {
	c := *r
	if r.ExpiryReason != nil {
		reason := *r.ExpiryReason
		c.ExpiryReason = &reason
	}
	if r.RespondedAt != nil {
		at := *r.RespondedAt
		c.RespondedAt = &at
	}
	return &c
}

// Create enforces one pending join per (from, team) and one pending invite per
// (team, to).
func (s *RequestStore) Create(_ context.Context, req *models.TeamRequest) (*models.TeamRequest, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	for _, existing := range s.c.items {
		if !existing.IsPending() || existing.Type != req.Type || existing.TeamID != req.TeamID {
			continue
		}
		if req.Type == models.RequestTypeJoin && existing.FromUserID == req.FromUserID {
			return nil, repository.ErrDuplicate
		}
		if req.Type == models.RequestTypeInvite && existing.ToUserID == req.ToUserID {
			return nil, repository.ErrDuplicate
		}
	}

	created := copyRequest(req)
	created.ID = uuid.New()
	created.Status = models.RequestStatusPending
	created.ResponseMessage = ""
	created.ExpiryReason = nil
	created.RespondedAt = nil
	created.CreatedAt = time.Now()
	s.c.put(created.ID, created)
	return copyRequest(created), nil
}

// Put stores r as-is, overwriting any request with the same id.
func (s *RequestStore) Put(r *models.TeamRequest) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.put(r.ID, copyRequest(r))
}

func (s *RequestStore) GetByID(_ context.Context, id uuid.UUID) (*models.TeamRequest, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	r, ok := s.c.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRequest(r), nil
}

func (s *RequestStore) Resolve(_ context.Context, id uuid.UUID, status string, reason *string, responseMessage string, at time.Time) (*models.TeamRequest, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	r, ok := s.c.items[id]
	if !ok || !r.IsPending() {
		return nil, repository.ErrPreconditionFailed
	}
	next := copyRequest(r)
	next.Status = status
	next.ExpiryReason = reason
	next.ResponseMessage = responseMessage
	next.RespondedAt = &at
	s.c.items[id] = copyRequest(next)
	return next, nil
}

func (s *RequestStore) Reopen(_ context.Context, id uuid.UUID, claimedAt time.Time) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	r, ok := s.c.items[id]
	if !ok || r.Status != models.RequestStatusAccepted || r.RespondedAt == nil || !r.RespondedAt.Equal(claimedAt) {
		return repository.ErrPreconditionFailed
	}
	r.Status = models.RequestStatusPending
	r.RespondedAt = nil
	r.ResponseMessage = ""
	return nil
}

func (s *RequestStore) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]models.TeamRequest, error) {
	requests := s.filter(func(r *models.TeamRequest) bool {
		return r.IsPending() && !r.ExpiresAt.After(now)
	})
	slices.SortStableFunc(requests, func(a, b models.TeamRequest) int { return a.ExpiresAt.Compare(b.ExpiresAt) })
	if limit > 0 && len(requests) > limit {
		requests = requests[:limit]
	}
	return requests, nil
}

func (s *RequestStore) ListPendingByTeam(_ context.Context, teamID uuid.UUID) ([]models.TeamRequest, error) {
	return s.filter(func(r *models.TeamRequest) bool { return r.TeamID == teamID && r.IsPending() }), nil
}

func (s *RequestStore) ListPendingInvolving(_ context.Context, userID uuid.UUID) ([]models.TeamRequest, error) {
	return s.filter(func(r *models.TeamRequest) bool {
		if !r.IsPending() {
			return false
		}
		return (r.Type == models.RequestTypeJoin && r.FromUserID == userID) ||
			(r.Type == models.RequestTypeInvite && r.ToUserID == userID)
	}), nil
}

func (s *RequestStore) ListIncomingInvites(_ context.Context, userID uuid.UUID) ([]models.TeamRequest, error) {
	requests := s.filter(func(r *models.TeamRequest) bool {
		return r.ToUserID == userID && r.Type == models.RequestTypeInvite && r.IsPending()
	})
	slices.Reverse(requests)
	return requests, nil
}

func (s *RequestStore) ListOutgoing(_ context.Context, userID uuid.UUID) ([]models.TeamRequest, error) {
	requests := s.filter(func(r *models.TeamRequest) bool { return r.FromUserID == userID })
	slices.Reverse(requests)
	return requests, nil
}

func (s *RequestStore) filter(keep func(*models.TeamRequest) bool) []models.TeamRequest {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	var requests []models.TeamRequest
	s.c.each(func(r *models.TeamRequest) bool {
		if keep(r) {
			requests = append(requests, *copyRequest(r))
		}
		return true
	})
	return requests
}
