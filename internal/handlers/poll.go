package handlers

import (
	"net/http"

	"github.com/dimitrije/teamforge-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

// PollHandler serves team polls and problem statement selection.
type PollHandler struct {
	base
	pollService PollServiceInterface
}

func NewPollHandler(pollService PollServiceInterface, log *zap.Logger) *PollHandler {
	return &PollHandler{base: newBase(log), pollService: pollService}
}

func (h *PollHandler) Start(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	var req dto.StartPollRequest
	if !bind(c, &req) {
		return
	}

	poll, err := h.pollService.Start(c.Request.Context(), teamID, userID, req.DurationMinutes)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, poll)
}

func (h *PollHandler) Active(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	poll, err := h.pollService.Active(c.Request.Context(), teamID, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, poll)
}

func (h *PollHandler) Vote(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	pollID, ok := pathID(c, "pollId", "poll")
	if !ok {
		return
	}

	var req dto.VoteRequest
	if !bind(c, &req) {
		return
	}

	poll, err := h.pollService.Vote(c.Request.Context(), pollID, userID, req.ProblemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, poll)
}

func (h *PollHandler) Conclude(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	selection, err := h.pollService.Conclude(c.Request.Context(), teamID, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, selection)
}

func (h *PollHandler) SelectProblem(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	var req dto.SelectProblemRequest
	if !bind(c, &req) {
		return
	}

	selection, err := h.pollService.SelectProblem(c.Request.Context(), teamID, userID, req.ProblemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, selection)
}

func (h *PollHandler) Assign(c *drift.Context) {
	adminID, ok := adminCaller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	var req dto.SelectProblemRequest
	if !bind(c, &req) {
		return
	}

	selection, err := h.pollService.Assign(c.Request.Context(), teamID, adminID, req.ProblemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, selection)
}

func (h *PollHandler) Selection(c *drift.Context) {
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	selection, err := h.pollService.Selection(c.Request.Context(), teamID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, selection)
}
