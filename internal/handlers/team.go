package handlers

import (
	"net/http"

	"github.com/dimitrije/teamforge-api/internal/services"
	"github.com/dimitrije/teamforge-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type TeamHandler struct {
	base
	teamService TeamServiceInterface
}

func NewTeamHandler(teamService TeamServiceInterface, log *zap.Logger) *TeamHandler {
	return &TeamHandler{base: newBase(log), teamService: teamService}
}

func (h *TeamHandler) Create(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	hackathonID, ok := pathID(c, "hackathonId", "hackathon")
	if !ok {
		return
	}

	var req dto.CreateTeamRequest
	if !bind(c, &req) {
		return
	}

	team, err := h.teamService.Create(c.Request.Context(), services.CreateTeamInput{
		HackathonID: hackathonID,
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, team)
}

// AdminCreate creates a team on behalf of a participant.
func (h *TeamHandler) AdminCreate(c *drift.Context) {
	if _, ok := adminCaller(c); !ok {
		return
	}
	hackathonID, ok := pathID(c, "hackathonId", "hackathon")
	if !ok {
		return
	}

	var req dto.AdminCreateTeamRequest
	if !bind(c, &req) {
		return
	}

	team, err := h.teamService.CreateForParticipant(c.Request.Context(), services.CreateTeamInput{
		HackathonID: hackathonID,
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, team)
}

func (h *TeamHandler) List(c *drift.Context) {
	hackathonID, ok := pathID(c, "hackathonId", "hackathon")
	if !ok {
		return
	}

	teams, err := h.teamService.ListByHackathon(c.Request.Context(), hackathonID)
	if err != nil {
		h.fail(c, err)
		return
	}

	response := make([]dto.TeamSummary, len(teams))
	for i := range teams {
		response[i] = dto.TeamSummary{Team: &teams[i], OpenSlots: teams[i].OpenSlots()}
	}
	respond(c, http.StatusOK, response)
}

func (h *TeamHandler) Get(c *drift.Context) {
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	view, err := h.teamService.Get(c.Request.Context(), teamID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

func (h *TeamHandler) Leave(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	if err := h.teamService.Leave(c.Request.Context(), teamID, userID); err != nil {
		h.fail(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "left team")
}

func (h *TeamHandler) Finalize(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	team, err := h.teamService.Finalize(c.Request.Context(), teamID, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, team)
}

func (h *TeamHandler) TransferOwnership(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	var req dto.TransferOwnershipRequest
	if !bind(c, &req) {
		return
	}

	team, err := h.teamService.TransferOwnership(c.Request.Context(), teamID, userID, req.NewOwnerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, team)
}
