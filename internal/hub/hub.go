package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Event types pushed to connected clients.
const (
	EventMemberJoined         = "team_member_joined"
	EventMemberLeft           = "team_member_left"
	EventOwnershipTransferred = "ownership_transferred"
	EventTeamFinalized        = "team_finalized"
	EventPollStarted          = "poll_started"
	EventPollVote             = "poll_vote"
	EventPollCompleted        = "poll_completed"
	EventNotification         = "notification"
)

type Event struct {
	Type   string      `json:"type"`
	TeamID *uuid.UUID  `json:"team_id,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

type MemberJoinedData struct {
	TeamID   uuid.UUID `json:"team_id"`
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
}

type MemberLeftData struct {
	TeamID uuid.UUID `json:"team_id"`
	UserID uuid.UUID `json:"user_id"`
}

type OwnershipTransferredData struct {
	TeamID        uuid.UUID `json:"team_id"`
	PreviousOwner uuid.UUID `json:"previous_owner"`
	NewOwner      uuid.UUID `json:"new_owner"`
}

type TeamFinalizedData struct {
	TeamID uuid.UUID `json:"team_id"`
}

type PollData struct {
	TeamID uuid.UUID         `json:"team_id"`
	PollID uuid.UUID         `json:"poll_id"`
	Status string            `json:"status"`
	Tally  map[uuid.UUID]int `json:"tally"`
	Winner *uuid.UUID        `json:"winning_problem_id,omitempty"`
}

type Client struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *UserMessage
	done       chan struct{}
	mu         sync.RWMutex
}

// UserMessage addresses an event to a set of users; every connection those
// users hold receives it.
type UserMessage struct {
	UserIDs []uuid.UUID
	Event   Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *UserMessage, 256),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Event)
			if err != nil {
				continue
			}
			targets := make(map[uuid.UUID]bool, len(msg.UserIDs))
			for _, id := range msg.UserIDs {
				targets[id] = true
			}
			h.mu.RLock()
			for _, client := range h.clients {
				if targets[client.UserID] {
					select {
					case client.Send <- data:
					default:
						// Client buffer full, skip
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client. After Run has stopped the client's channel is
// closed immediately.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues an event for userIDs. It never blocks: when the queue is
// full the event is dropped, since broadcasts are advisory.
func (h *Hub) Broadcast(userIDs []uuid.UUID, eventType string, data any) {
	if len(userIDs) == 0 {
		return
	}
	event := Event{Type: eventType, Data: data}
	if teamID, ok := teamOf(data); ok {
		event.TeamID = &teamID
	}
	select {
	case h.broadcast <- &UserMessage{UserIDs: append([]uuid.UUID(nil), userIDs...), Event: event}:
	default:
	}
}

// Online reports whether userID has at least one open connection.
func (h *Hub) Online(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.UserID == userID {
			return true
		}
	}
	return false
}

func teamOf(data any) (uuid.UUID, bool) {
	switch d := data.(type) {
	case MemberJoinedData:
		return d.TeamID, true
	case MemberLeftData:
		return d.TeamID, true
	case OwnershipTransferredData:
		return d.TeamID, true
	case TeamFinalizedData:
		return d.TeamID, true
	case PollData:
		return d.TeamID, true
	}
	return uuid.Nil, false
}
