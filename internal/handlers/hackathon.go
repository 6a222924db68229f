package handlers

import (
	"net/http"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type HackathonHandler struct {
	base
	hackathonService HackathonServiceInterface
}

func NewHackathonHandler(hackathonService HackathonServiceInterface, log *zap.Logger) *HackathonHandler {
	return &HackathonHandler{base: newBase(log), hackathonService: hackathonService}
}

func (h *HackathonHandler) Create(c *drift.Context) {
	if _, ok := adminCaller(c); !ok {
		return
	}

	var req dto.CreateHackathonRequest
	if !bind(c, &req) {
		return
	}

	hackathon := &models.Hackathon{
		Name:                       req.Name,
		StartDate:                  req.StartDate,
		EndDate:                    req.EndDate,
		MinTeamSize:                req.MinTeamSize,
		MaxTeamSize:                req.MaxTeamSize,
		MinTeamSizeForFinalization: req.MinTeamSizeForFinalization,
		AllowParticipantTeams:      req.AllowParticipantTeams,
		TeamCreationMode:           req.TeamCreationMode,
		SubmissionStart:            req.SubmissionStart,
		SubmissionEnd:              req.SubmissionEnd,
	}
	for _, p := range req.ProblemStatements {
		hackathon.ProblemStatements = append(hackathon.ProblemStatements, models.ProblemStatement{
			Title:       p.Title,
			Description: p.Description,
		})
	}

	created, err := h.hackathonService.Create(c.Request.Context(), hackathon)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

func (h *HackathonHandler) Get(c *drift.Context) {
	hackathonID, ok := pathID(c, "hackathonId", "hackathon")
	if !ok {
		return
	}

	hackathon, err := h.hackathonService.Get(c.Request.Context(), hackathonID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, hackathon)
}

// Register enrols the caller as a participant.
func (h *HackathonHandler) Register(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	hackathonID, ok := pathID(c, "hackathonId", "hackathon")
	if !ok {
		return
	}

	if err := h.hackathonService.Register(c.Request.Context(), hackathonID, userID); err != nil {
		h.fail(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "registered")
}
