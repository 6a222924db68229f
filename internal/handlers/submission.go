package handlers

import (
	"net/http"

	"github.com/dimitrije/teamforge-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type SubmissionHandler struct {
	base
	submissionService SubmissionServiceInterface
}

func NewSubmissionHandler(submissionService SubmissionServiceInterface, log *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{base: newBase(log), submissionService: submissionService}
}

func (h *SubmissionHandler) Submit(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	var req dto.SubmitRequest
	if !bind(c, &req) {
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), teamID, userID, req.SubmissionURL)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, submission)
}

func (h *SubmissionHandler) Get(c *drift.Context) {
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	submission, err := h.submissionService.Get(c.Request.Context(), teamID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, submission)
}
