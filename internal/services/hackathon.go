package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dimitrije/teamforge-api/internal/apperror"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidHackathon = apperror.New(apperror.KindValidation, "INVALID_HACKATHON", "invalid hackathon configuration")

type HackathonService struct {
	lookup
	log *zap.Logger
}

func NewHackathonService(stores Stores, log *zap.Logger) *HackathonService {
	return &HackathonService{lookup: lookup{stores: stores}, log: orNop(log).Named("hackathons")}
}

// Create stores an admin-defined hackathon after checking its dates and sizes.
func (s *HackathonService) Create(ctx context.Context, h *models.Hackathon) (*models.Hackathon, error) {
	if err := validateHackathon(h); err != nil {
		return nil, err
	}
	created, err := s.stores.Hackathons.Create(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create hackathon: %w", err)
	}
	s.log.Info("hackathon created", zap.String("hackathon_id", created.ID.String()), zap.String("name", created.Name))
	return created, nil
}

func validateHackathon(h *models.Hackathon) error {
	switch {
	case strings.TrimSpace(h.Name) == "":
		return apperror.Withf(ErrInvalidHackathon, "name is required")
	case !h.EndDate.After(h.StartDate):
		return apperror.Withf(ErrInvalidHackathon, "end date must be after start date")
	case h.SubmissionEnd.Before(h.SubmissionStart):
		return apperror.Withf(ErrInvalidHackathon, "submission end must not precede submission start")
	case h.MinTeamSize < 1 || h.MaxTeamSize < h.MinTeamSize:
		return apperror.Withf(ErrInvalidHackathon, "team size bounds are invalid")
	case h.MaxTeamSize > validation.MaxMemberLimit:
		return apperror.Withf(ErrInvalidHackathon, "teams are limited to %d members", validation.MaxMemberLimit)
	case h.MinTeamSizeForFinalization > h.MaxTeamSize:
		return apperror.Withf(ErrInvalidHackathon, "finalization minimum exceeds the maximum team size")
	}
	switch h.TeamCreationMode {
	case models.CreationModeParticipant, models.CreationModeAdmin, models.CreationModeBoth:
	case "":
		h.TeamCreationMode = models.CreationModeParticipant
	default:
		return apperror.Withf(ErrInvalidHackathon, "unknown team creation mode %q", h.TeamCreationMode)
	}
	for _, p := range h.ProblemStatements {
		if strings.TrimSpace(p.Title) == "" {
			return apperror.Withf(ErrInvalidHackathon, "problem statements need a title")
		}
	}
	return nil
}

func (s *HackathonService) Get(ctx context.Context, id uuid.UUID) (*models.Hackathon, error) {
	return s.hackathon(ctx, id)
}

// Register enrolls a user as a participant. Registering twice is a no-op.
func (s *HackathonService) Register(ctx context.Context, hackathonID, userID uuid.UUID) error {
	if _, err := s.hackathon(ctx, hackathonID); err != nil {
		return err
	}
	if _, err := s.user(ctx, userID); err != nil {
		return err
	}
	if err := s.stores.Hackathons.AddParticipant(ctx, hackathonID, userID); err != nil {
		return fmt.Errorf("failed to register participant: %w", err)
	}
	return nil
}
