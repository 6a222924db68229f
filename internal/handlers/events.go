package handlers

import (
	"github.com/dimitrije/teamforge-api/internal/hub"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const clientBufferSize = 256

// EventsHandler streams the caller's team and notification events over SSE.
type EventsHandler struct {
	hub EventHubInterface
}

func NewEventsHandler(hub EventHubInterface) *EventsHandler {
	return &EventsHandler{hub: hub}
}

func (h *EventsHandler) Connect(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &hub.Client{
		ID:     clientID,
		UserID: userID,
		Send:   make(chan []byte, clientBufferSize),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := c.Request.Context().Done()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
