package handlers

import (
	"net/http"

	"github.com/dimitrije/teamforge-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type RequestHandler struct {
	base
	requestService RequestServiceInterface
}

func NewRequestHandler(requestService RequestServiceInterface, log *zap.Logger) *RequestHandler {
	return &RequestHandler{base: newBase(log), requestService: requestService}
}

func (h *RequestHandler) SendJoinRequest(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	var req dto.JoinRequestRequest
	if !bind(c, &req) {
		return
	}

	request, err := h.requestService.SendJoinRequest(c.Request.Context(), userID, teamID, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, request)
}

func (h *RequestHandler) SendInvitation(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	var req dto.InvitationRequest
	if !bind(c, &req) {
		return
	}

	request, err := h.requestService.SendInvitation(c.Request.Context(), userID, teamID, req.ParticipantID, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, request)
}

// PendingJoinRequests lists join requests awaiting the team owner.
func (h *RequestHandler) PendingJoinRequests(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	requests, err := h.requestService.PendingJoinRequests(c.Request.Context(), teamID, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, requests)
}

func (h *RequestHandler) Incoming(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	requests, err := h.requestService.IncomingInvitations(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, requests)
}

func (h *RequestHandler) Outgoing(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	requests, err := h.requestService.Outgoing(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, requests)
}

func (h *RequestHandler) Respond(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "requestId", "request")
	if !ok {
		return
	}

	var req dto.RespondRequest
	if !bind(c, &req) {
		return
	}

	request, err := h.requestService.Respond(c.Request.Context(), requestID, userID, req.Decision, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, request)
}

func (h *RequestHandler) Cancel(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "requestId", "request")
	if !ok {
		return
	}

	if err := h.requestService.Cancel(c.Request.Context(), requestID, userID); err != nil {
		h.fail(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "request cancelled")
}
