// Package memory implements the repository contracts over guarded maps. It
// backs STORE=memory development mode and the service test suites, and keeps
// the same conditional-update and uniqueness semantics as the Postgres
// repositories.
package memory

import (
	"sync"

	"github.com/google/uuid"
)

// Store bundles one in-memory collection per entity.
type Store struct {
	Users         *UserStore
	Teams         *TeamStore
	Requests      *RequestStore
	Hackathons    *HackathonStore
	Polls         *PollStore
	Selections    *SelectionStore
	Submissions   *SubmissionStore
	Notifications *NotificationStore
}

func New() *Store {
	return &Store{
		Users:         NewUserStore(),
		Teams:         NewTeamStore(),
		Requests:      NewRequestStore(),
		Hackathons:    NewHackathonStore(),
		Polls:         NewPollStore(),
		Selections:    NewSelectionStore(),
		Submissions:   NewSubmissionStore(),
		Notifications: NewNotificationStore(),
	}
}

// collection keeps insertion order so listings are deterministic.
type collection[T any] struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*T
	order []uuid.UUID
}

func newCollection[T any]() collection[T] {
	return collection[T]{items: make(map[uuid.UUID]*T)}
}

func (c *collection[T]) put(id uuid.UUID, item *T) {
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = item
}

func (c *collection[T]) remove(id uuid.UUID) {
	delete(c.items, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *collection[T]) each(fn func(*T) bool) {
	for _, id := range c.order {
		if !fn(c.items[id]) {
			return
		}
	}
}
