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
	ErrRequestNotFound  = apperror.New(apperror.KindNotFound, "REQUEST_NOT_FOUND", "request not found")
	ErrAlreadyProcessed = apperror.New(apperror.KindConflict, "ALREADY_PROCESSED", "request has already been processed")
	ErrDuplicateRequest = apperror.New(apperror.KindConflict, "DUPLICATE_REQUEST", "a pending request already exists")
	ErrAlreadyMember    = apperror.New(apperror.KindConflict, "ALREADY_MEMBER", "user is already a member of this team")
	ErrTeamClosed       = apperror.New(apperror.KindConflict, "TEAM_NOT_ACCEPTING", "team is not accepting requests")
	ErrNotEligible      = apperror.New(apperror.KindForbidden, "NOT_ELIGIBLE", "user is not allowed to take part in team requests")
	ErrNotRecipient     = apperror.New(apperror.KindForbidden, "NOT_RECIPIENT", "only the invited participant can respond to this invitation")
	ErrNotRequestSender = apperror.New(apperror.KindForbidden, "NOT_REQUEST_SENDER", "only the sender can cancel this request")
	ErrRequestExpired   = apperror.New(apperror.KindExpired, "REQUEST_EXPIRED", "request has expired")
	ErrHackathonStarted = apperror.New(apperror.KindExpired, "HACKATHON_STARTED", "the hackathon has already started")
	ErrInvalidDecision  = apperror.New(apperror.KindValidation, "INVALID_DECISION", "decision must be accepted or rejected")
	ErrCannotInviteSelf = apperror.New(apperror.KindValidation, "CANNOT_INVITE_SELF", "you cannot invite yourself")
)

// sweepBatch bounds how many requests one expiry pass resolves.
const sweepBatch = 500

const reasonJoinedAnotherTeam = "joined another team"

type RequestService struct {
	lookup
	notifier    Notifier
	broadcaster Broadcaster
	log         *zap.Logger
	now         Clock
}

func NewRequestService(stores Stores, notifier Notifier, broadcaster Broadcaster, log *zap.Logger) *RequestService {
	return &RequestService{
		lookup:      lookup{stores: stores},
		notifier:    orNopNotifier(notifier),
		broadcaster: orNopBroadcaster(broadcaster),
		log:         orNop(log).Named("requests"),
		now:         systemClock,
	}
}

// SendJoinRequest asks to join teamID on behalf of fromUserID.
func (s *RequestService) SendJoinRequest(ctx context.Context, fromUserID, teamID uuid.UUID, message string) (*models.TeamRequest, error) {
	sender, err := s.user(ctx, fromUserID)
	if err != nil {
		return nil, err
	}
	if sender.HasTeam() {
		return nil, ErrAlreadyInTeam
	}
	if !validation.CanSendRequests(sender) {
		return nil, ErrNotEligible
	}

	team, err := s.team(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := openForRequests(team, fromUserID); err != nil {
		return nil, err
	}

	h, expiresAt, err := s.window(ctx, team.HackathonID, fromUserID)
	if err != nil {
		return nil, err
	}

	req, err := s.stores.Requests.Create(ctx, &models.TeamRequest{
		FromUserID:  fromUserID,
		ToUserID:    team.CreatedBy,
		TeamID:      team.ID,
		HackathonID: h.ID,
		Type:        models.RequestTypeJoin,
		Message:     message,
		ExpiresAt:   expiresAt,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrDuplicateRequest
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}
	s.attach(ctx, req)

	s.notifier.Notify(team.CreatedBy, models.NotifyJoinRequest, map[string]any{
		"request_id": req.ID,
		"team_id":    team.ID,
		"from_user":  sender.Name,
		"message":    message,
	})
	return req, nil
}

// SendInvitation lets a team owner invite a team-less participant.
func (s *RequestService) SendInvitation(ctx context.Context, ownerID, teamID, participantID uuid.UUID, message string) (*models.TeamRequest, error) {
	if ownerID == participantID {
		return nil, ErrCannotInviteSelf
	}

	team, err := s.ownedTeam(ctx, teamID, ownerID)
	if err != nil {
		return nil, err
	}
	switch {
	case team.IsFinalized:
		return nil, ErrTeamFinalized
	case team.IsFull():
		return nil, ErrTeamFull
	case team.HasMember(participantID):
		return nil, ErrAlreadyMember
	}

	invitee, err := s.user(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if invitee.HasTeam() {
		return nil, ErrAlreadyInTeam
	}
	if !validation.CanReceiveInvites(invitee) {
		return nil, ErrNotEligible
	}

	h, expiresAt, err := s.window(ctx, team.HackathonID, participantID)
	if err != nil {
		return nil, err
	}

	req, err := s.stores.Requests.Create(ctx, &models.TeamRequest{
		FromUserID:  ownerID,
		ToUserID:    participantID,
		TeamID:      team.ID,
		HackathonID: h.ID,
		Type:        models.RequestTypeInvite,
		Message:     message,
		ExpiresAt:   expiresAt,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrDuplicateRequest
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	s.attach(ctx, req)

	s.notifier.Notify(participantID, models.NotifyInvitation, map[string]any{
		"request_id": req.ID,
		"team_id":    team.ID,
		"team_name":  team.Name,
		"message":    message,
	})
	return req, nil
}

func openForRequests(team *models.Team, userID uuid.UUID) error {
	switch {
	case team.HasMember(userID):
		return ErrAlreadyMember
	case team.IsFinalized:
		return ErrTeamFinalized
	case team.IsFull():
		return ErrTeamFull
	case !validation.CanReceiveRequests(team):
		return ErrTeamClosed
	}
	return nil
}

// window checks that participantID is registered and the hackathon has not
// started, and returns the expiry for a request created now.
func (s *RequestService) window(ctx context.Context, hackathonID, participantID uuid.UUID) (*models.Hackathon, time.Time, error) {
	h, err := s.hackathon(ctx, hackathonID)
	if err != nil {
		return nil, time.Time{}, err
	}
	ok, err := s.stores.Hackathons.IsParticipant(ctx, h.ID, participantID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to check hackathon membership: %w", err)
	}
	if !ok {
		return nil, time.Time{}, ErrNotHackathonMember
	}
	now := s.now()
	if h.HasStarted(now) {
		return nil, time.Time{}, ErrHackathonStarted
	}
	return h, validation.RequestExpiry(now, h.StartDate), nil
}

func (s *RequestService) attach(ctx context.Context, req *models.TeamRequest) {
	if err := s.stores.Teams.AddPendingRequest(ctx, req.TeamID, req.ID); err != nil {
		s.log.Warn("failed to attach request to team", zap.String("request_id", req.ID.String()), zap.Error(err))
	}
}

func (s *RequestService) detach(ctx context.Context, req *models.TeamRequest) {
	detachRequest(ctx, s.stores, s.log, req)
}

// Respond accepts or rejects a pending request. The pending to terminal
// transition is a compare-and-set: of two concurrent responses, or a response
// racing the expiry sweep, exactly one wins and the other gets
// ErrAlreadyProcessed.
func (s *RequestService) Respond(ctx context.Context, requestID, responderID uuid.UUID, decision, message string) (*models.TeamRequest, error) {
	if decision != models.RequestStatusAccepted && decision != models.RequestStatusRejected {
		return nil, ErrInvalidDecision
	}

	req, err := s.stores.Requests.GetByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if !req.IsPending() {
		return nil, ErrAlreadyProcessed
	}

	switch req.Type {
	case models.RequestTypeInvite:
		if responderID != req.ToUserID {
			return nil, ErrNotRecipient
		}
	case models.RequestTypeJoin:
		if _, err := s.ownedTeam(ctx, req.TeamID, responderID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	if validation.IsExpired(req, now) {
		return nil, s.expire(ctx, req, now)
	}

	if decision == models.RequestStatusRejected {
		return s.reject(ctx, req, message, now)
	}
	return s.accept(ctx, req, message, now)
}

// expire resolves an overdue request found on the response path.
func (s *RequestService) expire(ctx context.Context, req *models.TeamRequest, now time.Time) error {
	h, err := s.hackathon(ctx, req.HackathonID)
	if err != nil {
		return err
	}
	reason := validation.ExpiryReason(now, h.StartDate)
	if _, err := s.stores.Requests.Resolve(ctx, req.ID, models.RequestStatusExpired, &reason, "", now); err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return ErrAlreadyProcessed
		}
		return fmt.Errorf("failed to expire request: %w", err)
	}
	s.detach(ctx, req)
	return apperror.Withf(ErrRequestExpired, "request expired (%s)", reason)
}

func (s *RequestService) reject(ctx context.Context, req *models.TeamRequest, message string, now time.Time) (*models.TeamRequest, error) {
	resolved, err := s.stores.Requests.Resolve(ctx, req.ID, models.RequestStatusRejected, nil, message, now)
	if errors.Is(err, repository.ErrPreconditionFailed) {
		return nil, ErrAlreadyProcessed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}
	s.detach(ctx, req)

	s.notifier.Notify(req.FromUserID, models.NotifyRequestRejected, map[string]any{
		"request_id": req.ID,
		"team_id":    req.TeamID,
		"type":       req.Type,
	})
	return resolved, nil
}

// accept claims the request first, then writes the roster, then the user
// pointer. A failed membership write reopens the claim so the request is not
// left accepted for a join that never happened. A joiner who already has a
// team gets the request rejected instead.
func (s *RequestService) accept(ctx context.Context, req *models.TeamRequest, message string, now time.Time) (*models.TeamRequest, error) {
	joinerID := req.FromUserID
	if req.Type == models.RequestTypeInvite {
		joinerID = req.ToUserID
	}

	joiner, err := s.user(ctx, joinerID)
	if err != nil {
		return nil, err
	}
	if joiner.HasTeam() {
		s.supersede(ctx, req, now)
		return nil, ErrAlreadyInTeam
	}

	resolved, err := s.stores.Requests.Resolve(ctx, req.ID, models.RequestStatusAccepted, nil, message, now)
	if errors.Is(err, repository.ErrPreconditionFailed) {
		return nil, ErrAlreadyProcessed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to accept request: %w", err)
	}

	team, err := s.stores.Teams.AddMember(ctx, req.TeamID, joinerID)
	if err != nil {
		s.reopen(ctx, req.ID, now)
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, s.membershipError(ctx, req.TeamID, joinerID)
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	if err := s.stores.Users.AssignTeam(ctx, joinerID, req.TeamID); err != nil {
		if _, rerr := s.stores.Teams.RemoveMember(ctx, req.TeamID, joinerID); rerr != nil {
			s.log.Error("failed to roll back roster after pointer conflict",
				zap.String("team_id", req.TeamID.String()), zap.String("user_id", joinerID.String()), zap.Error(rerr))
		}
		s.reopen(ctx, req.ID, now)
		if errors.Is(err, repository.ErrPreconditionFailed) {
			s.supersede(ctx, req, now)
			return nil, ErrAlreadyInTeam
		}
		return nil, fmt.Errorf("failed to assign team: %w", err)
	}

	if err := s.stores.Users.SetRole(ctx, joinerID, models.RoleMember); err != nil {
		s.log.Warn("failed to set joiner role", zap.String("user_id", joinerID.String()), zap.Error(err))
	}
	s.detach(ctx, req)
	closeOutstandingRequests(ctx, s.stores, s.log, joinerID, now, reasonJoinedAnotherTeam)

	s.broadcaster.Broadcast(team.Members, hub.EventMemberJoined, hub.MemberJoinedData{
		TeamID:   team.ID,
		UserID:   joinerID,
		UserName: joiner.Name,
	})
	s.notifier.Notify(req.FromUserID, models.NotifyRequestAccepted, map[string]any{
		"request_id": req.ID,
		"team_id":    team.ID,
		"team_name":  team.Name,
		"type":       req.Type,
	})
	s.log.Info("request accepted",
		zap.String("request_id", req.ID.String()),
		zap.String("team_id", team.ID.String()),
		zap.String("user_id", joinerID.String()))
	return resolved, nil
}

func (s *RequestService) reopen(ctx context.Context, requestID uuid.UUID, claimedAt time.Time) {
	if err := s.stores.Requests.Reopen(ctx, requestID, claimedAt); err != nil {
		s.log.Error("failed to reopen request after membership failure",
			zap.String("request_id", requestID.String()), zap.Error(err))
	}
}

// supersede rejects a pending request whose joiner already belongs to a team,
// so it cannot block the target team's pending list.
func (s *RequestService) supersede(ctx context.Context, req *models.TeamRequest, now time.Time) {
	_, err := s.stores.Requests.Resolve(ctx, req.ID, models.RequestStatusRejected, nil, reasonJoinedAnotherTeam, now)
	if errors.Is(err, repository.ErrPreconditionFailed) {
		return
	}
	if err != nil {
		s.log.Warn("failed to reject superseded request", zap.String("request_id", req.ID.String()), zap.Error(err))
		return
	}
	s.detach(ctx, req)
}

// membershipError explains why AddMember's guard rejected userID.
func (s *RequestService) membershipError(ctx context.Context, teamID, userID uuid.UUID) error {
	team, err := s.team(ctx, teamID)
	if err != nil {
		return err
	}
	switch {
	case team.HasMember(userID):
		return ErrAlreadyMember
	case team.IsFinalized:
		return ErrTeamFinalized
	case team.IsFull():
		return ErrTeamFull
	}
	return ErrConcurrentUpdate
}

// Cancel withdraws a pending request on behalf of its sender.
func (s *RequestService) Cancel(ctx context.Context, requestID, callerID uuid.UUID) error {
	req, err := s.stores.Requests.GetByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load request: %w", err)
	}
	if req.FromUserID != callerID {
		return ErrNotRequestSender
	}

	_, err = s.stores.Requests.Resolve(ctx, req.ID, models.RequestStatusRejected, nil, "withdrawn", s.now())
	if errors.Is(err, repository.ErrPreconditionFailed) {
		return ErrAlreadyProcessed
	}
	if err != nil {
		return fmt.Errorf("failed to cancel request: %w", err)
	}
	s.detach(ctx, req)
	return nil
}

func (s *RequestService) IncomingInvitations(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error) {
	return s.stores.Requests.ListIncomingInvites(ctx, userID)
}

func (s *RequestService) Outgoing(ctx context.Context, userID uuid.UUID) ([]models.TeamRequest, error) {
	return s.stores.Requests.ListOutgoing(ctx, userID)
}

// PendingJoinRequests lists the open join requests of a team for its owner.
func (s *RequestService) PendingJoinRequests(ctx context.Context, teamID, callerID uuid.UUID) ([]models.TeamRequest, error) {
	if _, err := s.ownedTeam(ctx, teamID, callerID); err != nil {
		return nil, err
	}
	all, err := s.stores.Requests.ListPendingByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	joins := make([]models.TeamRequest, 0, len(all))
	for _, r := range all {
		if r.Type == models.RequestTypeJoin {
			joins = append(joins, r)
		}
	}
	return joins, nil
}

// ExpireDue moves every pending request whose expiry has passed at now to
// expired. A request resolved concurrently is skipped; other failures are
// logged and the sweep moves on.
func (s *RequestService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.stores.Requests.ListExpiredPending(ctx, now, sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired requests: %w", err)
	}

	starts := make(map[uuid.UUID]time.Time)
	expired := 0
	for i := range due {
		req := &due[i]
		start, ok := starts[req.HackathonID]
		if !ok {
			h, err := s.hackathon(ctx, req.HackathonID)
			if err != nil {
				s.log.Warn("skipping request with unknown hackathon", zap.String("request_id", req.ID.String()), zap.Error(err))
				continue
			}
			start = h.StartDate
			starts[req.HackathonID] = start
		}

		reason := validation.ExpiryReason(now, start)
		_, err := s.stores.Requests.Resolve(ctx, req.ID, models.RequestStatusExpired, &reason, "", now)
		if errors.Is(err, repository.ErrPreconditionFailed) {
			s.log.Debug("request resolved before sweep", zap.String("request_id", req.ID.String()))
			continue
		}
		if err != nil {
			s.log.Error("failed to expire request", zap.String("request_id", req.ID.String()), zap.Error(err))
			continue
		}
		s.detach(ctx, req)
		expired++
	}
	return expired, nil
}
