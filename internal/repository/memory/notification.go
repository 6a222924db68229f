package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
)

type NotificationStore struct {
	c collection[models.Notification]
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{c: newCollection[models.Notification]()}
}

func (s *NotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	stored := *n
	stored.Payload = slices.Clone(n.Payload)
	s.c.put(stored.ID, &stored)
	return nil
}

func (s *NotificationStore) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	var notifications []models.Notification
	for i := len(s.c.order) - 1; i >= 0; i-- {
		n := s.c.items[s.c.order[i]]
		if n.UserID != userID {
			continue
		}
		notifications = append(notifications, *n)
		if limit > 0 && len(notifications) == limit {
			break
		}
	}
	return notifications, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	n, ok := s.c.items[id]
	if !ok || n.UserID != userID || n.ReadAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	n.ReadAt = &now
	return nil
}
