package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/teamforge-api/internal/apperror"
	"github.com/dimitrije/teamforge-api/internal/hub"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/dimitrije/teamforge-api/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrCreationModeForbidden = apperror.New(apperror.KindForbidden, "CREATION_MODE_FORBIDDEN", "this hackathon does not allow teams to be created this way")
	ErrNotHackathonMember    = apperror.New(apperror.KindForbidden, "NOT_A_HACKATHON_MEMBER", "user is not registered for this hackathon")
	ErrAlreadyInTeam         = apperror.New(apperror.KindConflict, "ALREADY_IN_TEAM", "user already belongs to a team")
	ErrDuplicateTeamName     = apperror.New(apperror.KindConflict, "DUPLICATE_TEAM_NAME", "a team with this name already exists in the hackathon")
	ErrOwnerCannotLeave      = apperror.New(apperror.KindForbidden, "OWNER_CANNOT_LEAVE", "transfer ownership before leaving a team that still has members")
	ErrTeamFinalized         = apperror.New(apperror.KindConflict, "TEAM_FINALIZED", "team is finalized")
	ErrTeamFull              = apperror.New(apperror.KindConflict, "TEAM_FULL", "team has reached its member limit")
	ErrTeamTooSmall          = apperror.New(apperror.KindConflict, "TEAM_TOO_SMALL", "team does not have enough members to be finalized")
	ErrInvalidNewOwner       = apperror.New(apperror.KindValidation, "INVALID_NEW_OWNER", "new owner must be another member of the team")
	ErrTransferFailed        = apperror.New(apperror.KindConflict, "TRANSFER_FAILED", "ownership transfer did not complete")
)

type TeamService struct {
	lookup
	notifier    Notifier
	broadcaster Broadcaster
	log         *zap.Logger
	now         Clock
}

func NewTeamService(stores Stores, notifier Notifier, broadcaster Broadcaster, log *zap.Logger) *TeamService {
	return &TeamService{
		lookup:      lookup{stores: stores},
		notifier:    orNopNotifier(notifier),
		broadcaster: orNopBroadcaster(broadcaster),
		log:         orNop(log).Named("teams"),
		now:         systemClock,
	}
}

type CreateTeamInput struct {
	HackathonID uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
}

// TeamView is a team together with the resolved roster.
type TeamView struct {
	*models.Team
	Roster    []models.User `json:"members"`
	OpenSlots int           `json:"open_slots"`
}

// Create lets a participant found a team and become its leader.
func (s *TeamService) Create(ctx context.Context, in CreateTeamInput) (*models.Team, error) {
	return s.create(ctx, in, models.CreationModeParticipant)
}

// CreateForParticipant is the admin path: the team is created on behalf of
// in.OwnerID, who becomes its leader.
func (s *TeamService) CreateForParticipant(ctx context.Context, in CreateTeamInput) (*models.Team, error) {
	return s.create(ctx, in, models.CreationModeAdmin)
}

func (s *TeamService) create(ctx context.Context, in CreateTeamInput, mode string) (*models.Team, error) {
	name := validation.NormalizeTeamName(in.Name)
	if err := validation.ValidateTeamName(name); err != nil {
		return nil, err
	}

	h, err := s.hackathon(ctx, in.HackathonID)
	if err != nil {
		return nil, err
	}
	if !creationAllowed(h, mode) {
		return nil, ErrCreationModeForbidden
	}

	member, err := s.stores.Hackathons.IsParticipant(ctx, h.ID, in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check hackathon membership: %w", err)
	}
	if !member {
		return nil, ErrNotHackathonMember
	}

	owner, err := s.user(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner.HasTeam() {
		return nil, ErrAlreadyInTeam
	}

	limit := validation.ClampMemberLimit(h.MaxTeamSize)
	team, err := s.stores.Teams.Create(ctx, &models.Team{
		Name:               name,
		Description:        in.Description,
		HackathonID:        h.ID,
		CreatedBy:          owner.ID,
		Members:            []uuid.UUID{owner.ID},
		MemberLimit:        limit,
		CanReceiveRequests: limit > 1,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrDuplicateTeamName
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	if err := s.stores.Users.AssignTeam(ctx, owner.ID, team.ID); err != nil {
		s.disband(ctx, team.ID, owner.ID)
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, ErrAlreadyInTeam
		}
		return nil, fmt.Errorf("failed to assign team owner: %w", err)
	}

	if err := s.stores.Users.SetRole(ctx, owner.ID, models.RoleLeader); err != nil {
		s.log.Warn("failed to promote team owner", zap.String("team_id", team.ID.String()), zap.Error(err))
	}

	closeOutstandingRequests(ctx, s.stores, s.log, owner.ID, s.now(), "joined another team")

	s.log.Info("team created", zap.String("team_id", team.ID.String()), zap.String("owner_id", owner.ID.String()))
	return team, nil
}

func creationAllowed(h *models.Hackathon, mode string) bool {
	switch mode {
	case models.CreationModeParticipant:
		return h.AllowParticipantTeams && h.TeamCreationMode != models.CreationModeAdmin
	case models.CreationModeAdmin:
		return h.TeamCreationMode != models.CreationModeParticipant
	}
	return false
}

// disband undoes a team creation whose owner pointer could not be set.
func (s *TeamService) disband(ctx context.Context, teamID, ownerID uuid.UUID) {
	if _, err := s.stores.Teams.RemoveMember(ctx, teamID, ownerID); err != nil {
		s.log.Error("failed to roll back team roster", zap.String("team_id", teamID.String()), zap.Error(err))
		return
	}
	if err := s.stores.Teams.DeleteIfEmpty(ctx, teamID); err != nil {
		s.log.Error("failed to roll back team", zap.String("team_id", teamID.String()), zap.Error(err))
	}
}

func (s *TeamService) Get(ctx context.Context, teamID uuid.UUID) (*TeamView, error) {
	team, err := s.team(ctx, teamID)
	if err != nil {
		return nil, err
	}

	view := &TeamView{Team: team, OpenSlots: team.OpenSlots()}
	repair := false
	for _, id := range team.Members {
		u, err := s.user(ctx, id)
		if errors.Is(err, ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if u.Role != models.RoleAdmin && u.Role != expectedRole(team, u.ID) {
			repair = true
		}
		view.Roster = append(view.Roster, *u)
	}

	if repair {
		if _, err := s.RepairLeadership(ctx, teamID); err != nil {
			s.log.Warn("leadership read-repair failed", zap.String("team_id", teamID.String()), zap.Error(err))
		}
	}
	return view, nil
}

func (s *TeamService) ListByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]models.Team, error) {
	if _, err := s.hackathon(ctx, hackathonID); err != nil {
		return nil, err
	}
	teams, err := s.stores.Teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// Leave removes userID from the team. The owner may only leave an otherwise
// empty team, which is then deleted.
func (s *TeamService) Leave(ctx context.Context, teamID, userID uuid.UUID) error {
	team, err := s.team(ctx, teamID)
	if err != nil {
		return err
	}
	if err := leaveError(team, userID); err != nil {
		return err
	}

	updated, err := s.stores.Teams.RemoveMember(ctx, teamID, userID)
	if errors.Is(err, repository.ErrPreconditionFailed) {
		if fresh, ferr := s.team(ctx, teamID); ferr == nil {
			if lerr := leaveError(fresh, userID); lerr != nil {
				return lerr
			}
		}
		return ErrConcurrentUpdate
	}
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	if err := s.stores.Users.ReleaseTeam(ctx, userID, teamID); err != nil {
		s.log.Warn("member left roster but user pointer was not cleared",
			zap.String("team_id", teamID.String()), zap.String("user_id", userID.String()), zap.Error(err))
	}

	if len(updated.Members) == 0 {
		s.deleteEmpty(ctx, updated)
		return nil
	}

	s.broadcaster.Broadcast(updated.Members, hub.EventMemberLeft, hub.MemberLeftData{TeamID: teamID, UserID: userID})
	s.log.Info("member left team", zap.String("team_id", teamID.String()), zap.String("user_id", userID.String()))
	return nil
}

func leaveError(team *models.Team, userID uuid.UUID) error {
	switch {
	case !team.HasMember(userID):
		return ErrNotTeamMember
	case team.IsFinalized:
		return ErrTeamFinalized
	case !validation.CanLeave(team, userID):
		return ErrOwnerCannotLeave
	}
	return nil
}

// deleteEmpty removes a team whose roster emptied and closes its open requests.
func (s *TeamService) deleteEmpty(ctx context.Context, team *models.Team) {
	if err := s.stores.Teams.DeleteIfEmpty(ctx, team.ID); err != nil {
		s.log.Warn("failed to delete empty team", zap.String("team_id", team.ID.String()), zap.Error(err))
		return
	}

	pending, err := s.stores.Requests.ListPendingByTeam(ctx, team.ID)
	if err != nil {
		s.log.Warn("failed to list requests of deleted team", zap.String("team_id", team.ID.String()), zap.Error(err))
		return
	}
	now := s.now()
	for _, req := range pending {
		if _, err := s.stores.Requests.Resolve(ctx, req.ID, models.RequestStatusRejected, nil, "team disbanded", now); err != nil &&
			!errors.Is(err, repository.ErrPreconditionFailed) {
			s.log.Warn("failed to close request of deleted team", zap.String("request_id", req.ID.String()), zap.Error(err))
		}
	}
	s.log.Info("team deleted", zap.String("team_id", team.ID.String()))
}

// Finalize locks the roster for good.
func (s *TeamService) Finalize(ctx context.Context, teamID, callerID uuid.UUID) (*models.Team, error) {
	team, err := s.ownedTeam(ctx, teamID, callerID)
	if err != nil {
		return nil, err
	}
	if team.IsFinalized {
		return nil, ErrTeamFinalized
	}

	h, err := s.hackathon(ctx, team.HackathonID)
	if err != nil {
		return nil, err
	}
	minSize := max(h.MinTeamSizeForFinalization, 1)
	if len(team.Members) < minSize {
		return nil, apperror.Withf(ErrTeamTooSmall, "team needs at least %d members to be finalized", minSize)
	}

	finalized, err := s.stores.Teams.Finalize(ctx, teamID, callerID, minSize)
	if errors.Is(err, repository.ErrPreconditionFailed) {
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to finalize team: %w", err)
	}

	pending, err := s.stores.Requests.ListPendingByTeam(ctx, teamID)
	if err != nil {
		s.log.Warn("failed to list requests of finalized team", zap.String("team_id", teamID.String()), zap.Error(err))
	}
	now := s.now()
	for _, req := range pending {
		_, err := s.stores.Requests.Resolve(ctx, req.ID, models.RequestStatusRejected, nil, "team finalized", now)
		if errors.Is(err, repository.ErrPreconditionFailed) {
			continue
		}
		if err != nil {
			s.log.Warn("failed to close request of finalized team", zap.String("request_id", req.ID.String()), zap.Error(err))
			continue
		}
		detachRequest(ctx, s.stores, s.log, &req)
	}

	s.broadcaster.Broadcast(finalized.Members, hub.EventTeamFinalized, hub.TeamFinalizedData{TeamID: teamID})
	return finalized, nil
}

// TransferOwnership hands the team to another member. Team.CreatedBy is the
// source of truth; user roles follow it and are repaired if the role writes
// fail.
func (s *TeamService) TransferOwnership(ctx context.Context, teamID, currentOwnerID, newOwnerID uuid.UUID) (*models.Team, error) {
	team, err := s.ownedTeam(ctx, teamID, currentOwnerID)
	if err != nil {
		return nil, err
	}
	if newOwnerID == currentOwnerID || !team.HasMember(newOwnerID) {
		return nil, ErrInvalidNewOwner
	}

	updated, err := s.stores.Teams.SetOwner(ctx, teamID, currentOwnerID, newOwnerID)
	if errors.Is(err, repository.ErrPreconditionFailed) {
		return nil, apperror.Withf(ErrTransferFailed, "team ownership changed concurrently")
	}
	if err != nil {
		return nil, apperror.Wrap(ErrTransferFailed, err)
	}

	roleErr := errors.Join(
		s.stores.Users.SetRole(ctx, newOwnerID, models.RoleLeader),
		s.stores.Users.SetRole(ctx, currentOwnerID, models.RoleMember),
	)
	if roleErr != nil {
		s.log.Warn("ownership moved but role update failed, repairing",
			zap.String("team_id", teamID.String()),
			zap.String("previous_owner", currentOwnerID.String()),
			zap.String("new_owner", newOwnerID.String()),
			zap.Error(roleErr))
		if _, err := s.RepairLeadership(ctx, teamID); err != nil {
			s.log.Error("leadership repair failed", zap.String("team_id", teamID.String()), zap.Error(err))
		}
		return nil, apperror.Wrap(ErrTransferFailed, roleErr)
	}

	s.broadcaster.Broadcast(updated.Members, hub.EventOwnershipTransferred, hub.OwnershipTransferredData{
		TeamID:        teamID,
		PreviousOwner: currentOwnerID,
		NewOwner:      newOwnerID,
	})
	s.notifier.Notify(newOwnerID, models.NotifyOwnershipReceived, map[string]any{
		"team_id":   teamID,
		"team_name": updated.Name,
	})
	s.log.Info("ownership transferred", zap.String("team_id", teamID.String()), zap.String("new_owner", newOwnerID.String()))
	return updated, nil
}

// RepairLeadership realigns member roles with Team.CreatedBy: the owner is
// leader, everybody else on the roster is member. It returns how many roles
// were changed.
func (s *TeamService) RepairLeadership(ctx context.Context, teamID uuid.UUID) (int, error) {
	team, err := s.team(ctx, teamID)
	if err != nil {
		return 0, err
	}

	var errs []error
	repaired := 0
	for _, id := range team.Members {
		u, err := s.user(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		want := expectedRole(team, id)
		if u.Role == models.RoleAdmin || u.Role == want {
			continue
		}
		if err := s.stores.Users.SetRole(ctx, id, want); err != nil {
			errs = append(errs, err)
			continue
		}
		repaired++
		s.log.Warn("repaired member role",
			zap.String("team_id", teamID.String()),
			zap.String("user_id", id.String()),
			zap.String("from", u.Role),
			zap.String("to", want))
	}
	return repaired, errors.Join(errs...)
}

func expectedRole(team *models.Team, userID uuid.UUID) string {
	if team.IsOwner(userID) {
		return models.RoleLeader
	}
	return models.RoleMember
}

// closeOutstandingRequests rejects every pending join request sent by userID
// and every pending invitation addressed to them. It runs once the user has a
// team; failures are logged because the expiry sweep closes stragglers.
func closeOutstandingRequests(ctx context.Context, stores Stores, log *zap.Logger, userID uuid.UUID, now time.Time, reason string) {
	pending, err := stores.Requests.ListPendingInvolving(ctx, userID)
	if err != nil {
		log.Warn("failed to list outstanding requests", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	for _, req := range pending {
		_, err := stores.Requests.Resolve(ctx, req.ID, models.RequestStatusRejected, nil, reason, now)
		if errors.Is(err, repository.ErrPreconditionFailed) {
			continue
		}
		if err != nil {
			log.Warn("failed to close outstanding request", zap.String("request_id", req.ID.String()), zap.Error(err))
			continue
		}
		detachRequest(ctx, stores, log, &req)
	}
}

// detachRequest drops a resolved request from its team's pending list. A team
// that no longer exists is not an error.
func detachRequest(ctx context.Context, stores Stores, log *zap.Logger, req *models.TeamRequest) {
	if err := stores.Teams.RemovePendingRequest(ctx, req.TeamID, req.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Warn("failed to detach request from team", zap.String("request_id", req.ID.String()), zap.Error(err))
	}
}
