package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dimitrije/teamforge-api/internal/hub"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRequestService_SendJoinRequest(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	sender := f.participant(h)
	team := f.team(h, owner, "rockets")

	req, err := f.requests.SendJoinRequest(f.ctx, sender.ID, team.ID, "i write go")

	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, models.RequestTypeJoin, req.Type)
	assert.Equal(t, owner.ID, req.ToUserID)
	assert.Equal(t, f.clock.Now().Add(24*time.Hour), req.ExpiresAt)
	assert.Contains(t, f.reloadTeam(team.ID).PendingRequests, req.ID)
	assert.Contains(t, f.notifier.kinds(owner.ID), models.NotifyJoinRequest)

	_, err = f.requests.SendJoinRequest(f.ctx, sender.ID, team.ID, "again")
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestRequestService_SendJoinRequest_Rejections(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon(func(h *models.Hackathon) { h.MinTeamSize = 1; h.MaxTeamSize = 2 })
	owner := f.participant(h)
	team := f.team(h, owner, "rockets")

	_, err := f.requests.SendJoinRequest(f.ctx, owner.ID, team.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyInTeam)

	_, err = f.requests.SendJoinRequest(f.ctx, f.participant(h).ID, uuid.New(), "")
	assert.ErrorIs(t, err, ErrTeamNotFound)

	other := f.hackathon()
	_, err = f.requests.SendJoinRequest(f.ctx, f.participant(other).ID, team.ID, "")
	assert.ErrorIs(t, err, ErrNotHackathonMember)

	f.join(team, f.participant(h))
	_, err = f.requests.SendJoinRequest(f.ctx, f.participant(h).ID, team.ID, "")
	assert.ErrorIs(t, err, ErrTeamFull)
}

func TestRequestService_SendJoinRequest_AfterStart(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon(func(h *models.Hackathon) { h.StartDate = f.clock.Now().Add(time.Hour) })
	team := f.team(h, f.participant(h), "rockets")
	sender := f.participant(h)
	f.clock.Advance(2 * time.Hour)

	_, err := f.requests.SendJoinRequest(f.ctx, sender.ID, team.ID, "")

	assert.ErrorIs(t, err, ErrHackathonStarted)
}

func TestRequestService_Respond_AcceptJoin(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	joiner := f.participant(h)
	team := f.team(h, owner, "rockets")
	elsewhere := f.team(h, f.participant(h), "comets")

	req, err := f.requests.SendJoinRequest(f.ctx, joiner.ID, team.ID, "")
	require.NoError(t, err)
	other, err := f.requests.SendJoinRequest(f.ctx, joiner.ID, elsewhere.ID, "")
	require.NoError(t, err)

	resolved, err := f.requests.Respond(f.ctx, req.ID, owner.ID, models.RequestStatusAccepted, "welcome")

	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, resolved.Status)
	assert.Equal(t, "welcome", resolved.ResponseMessage)
	require.NotNil(t, resolved.RespondedAt)
	assert.Equal(t, f.clock.Now(), *resolved.RespondedAt)

	stored := f.reloadTeam(team.ID)
	assert.ElementsMatch(t, []uuid.UUID{owner.ID, joiner.ID}, stored.Members)
	assert.NotContains(t, stored.PendingRequests, req.ID)

	u := f.reloadUser(joiner.ID)
	assert.True(t, u.InTeam(team.ID))
	assert.Equal(t, models.RoleMember, u.Role)

	assert.Equal(t, models.RequestStatusRejected, f.reloadRequest(other.ID).Status)
	assert.NotContains(t, f.reloadTeam(elsewhere.ID).PendingRequests, other.ID)

	assert.Contains(t, f.broadcaster.types(), hub.EventMemberJoined)
	assert.Contains(t, f.notifier.kinds(joiner.ID), models.NotifyRequestAccepted)
}

func TestRequestService_Respond_Twice(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	team := f.team(h, owner, "rockets")
	req, err := f.requests.SendJoinRequest(f.ctx, f.participant(h).ID, team.ID, "")
	require.NoError(t, err)

	_, err = f.requests.Respond(f.ctx, req.ID, owner.ID, models.RequestStatusRejected, "no room")
	require.NoError(t, err)

	_, err = f.requests.Respond(f.ctx, req.ID, owner.ID, models.RequestStatusAccepted, "")

	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, models.RequestStatusRejected, f.reloadRequest(req.ID).Status)
	assert.Len(t, f.reloadTeam(team.ID).Members, 1)
}

func TestRequestService_Respond_Authorization(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	team := f.team(h, owner, "rockets")
	stranger := f.participant(h)

	join, err := f.requests.SendJoinRequest(f.ctx, f.participant(h).ID, team.ID, "")
	require.NoError(t, err)
	_, err = f.requests.Respond(f.ctx, join.ID, stranger.ID, models.RequestStatusAccepted, "")
	assert.ErrorIs(t, err, ErrNotTeamOwner)

	invite, err := f.requests.SendInvitation(f.ctx, owner.ID, team.ID, f.participant(h).ID, "")
	require.NoError(t, err)
	_, err = f.requests.Respond(f.ctx, invite.ID, owner.ID, models.RequestStatusAccepted, "")
	assert.ErrorIs(t, err, ErrNotRecipient)

	_, err = f.requests.Respond(f.ctx, join.ID, owner.ID, "maybe", "")
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = f.requests.Respond(f.ctx, uuid.New(), owner.ID, models.RequestStatusAccepted, "")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestRequestService_Invitation(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	invitee := f.participant(h)
	team := f.team(h, owner, "rockets")

	_, err := f.requests.SendInvitation(f.ctx, owner.ID, team.ID, owner.ID, "")
	assert.ErrorIs(t, err, ErrCannotInviteSelf)

	_, err = f.requests.SendInvitation(f.ctx, invitee.ID, team.ID, f.participant(h).ID, "")
	assert.ErrorIs(t, err, ErrNotTeamOwner)

	invite, err := f.requests.SendInvitation(f.ctx, owner.ID, team.ID, invitee.ID, "join us")
	require.NoError(t, err)
	assert.Equal(t, models.RequestTypeInvite, invite.Type)
	assert.Contains(t, f.notifier.kinds(invitee.ID), models.NotifyInvitation)

	incoming, err := f.requests.IncomingInvitations(f.ctx, invitee.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, invite.ID, incoming[0].ID)

	_, err = f.requests.Respond(f.ctx, invite.ID, invitee.ID, models.RequestStatusAccepted, "")
	require.NoError(t, err)

	assert.True(t, f.reloadUser(invitee.ID).InTeam(team.ID))
	assert.Contains(t, f.notifier.kinds(owner.ID), models.NotifyRequestAccepted)

	_, err = f.requests.SendInvitation(f.ctx, owner.ID, team.ID, invitee.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestRequestService_Invitation_InviteeInAnotherTeam(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	team := f.team(h, owner, "rockets")
	busy := f.participant(h)
	f.team(h, busy, "comets")

	_, err := f.requests.SendInvitation(f.ctx, owner.ID, team.ID, busy.ID, "")

	assert.ErrorIs(t, err, ErrAlreadyInTeam)
}

func TestRequestService_ConcurrentAcceptsForLastSlot(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon(func(h *models.Hackathon) { h.MaxTeamSize = 2 })
	owner := f.participant(h)
	team := f.team(h, owner, "rockets")

	const contenders = 5
	ids := make([]uuid.UUID, contenders)
	for i := range ids {
		req, err := f.requests.SendJoinRequest(f.ctx, f.participant(h).ID, team.ID, "")
		require.NoError(t, err)
		ids[i] = req.ID
	}

	results := make([]error, contenders)
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			_, results[i] = f.requests.Respond(f.ctx, id, owner.ID, models.RequestStatusAccepted, "")
			return nil
		})
	}
	require.NoError(t, g.Wait())

	won := 0
	for _, err := range results {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, ErrTeamFull)
	}
	assert.Equal(t, 1, won)

	stored := f.reloadTeam(team.ID)
	assert.Len(t, stored.Members, 2)
	assert.LessOrEqual(t, len(stored.Members), stored.MemberLimit)
	assert.False(t, stored.CanReceiveRequests)

	assigned, err := f.store.Users.ListAssigned(f.ctx)
	require.NoError(t, err)
	assert.Len(t, assigned, 2)
}

func TestRequestService_ConcurrentAcceptOfSameRequest(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	joiner := f.participant(h)
	team := f.team(h, owner, "rockets")
	req, err := f.requests.SendJoinRequest(f.ctx, joiner.ID, team.ID, "")
	require.NoError(t, err)

	results := make([]error, 4)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			_, results[i] = f.requests.Respond(f.ctx, req.ID, owner.ID, models.RequestStatusAccepted, "")
			return nil
		})
	}
	require.NoError(t, g.Wait())

	won := 0
	for _, err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadyProcessed), errors.Is(err, ErrAlreadyInTeam):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.ElementsMatch(t, []uuid.UUID{owner.ID, joiner.ID}, f.reloadTeam(team.ID).Members)
	assert.Equal(t, models.RequestStatusAccepted, f.reloadRequest(req.ID).Status)
}

// interleavedUsers runs beforeAssign once, ahead of the first pointer write.
type interleavedUsers struct {
	UserStore
	beforeAssign func()
	once         sync.Once
}

func (u *interleavedUsers) AssignTeam(ctx context.Context, userID, teamID uuid.UUID) error {
	u.once.Do(u.beforeAssign)
	return u.UserStore.AssignTeam(ctx, userID, teamID)
}

func TestRequestService_Respond_JoinerTakenMidAccept(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	alphaOwner := f.participant(h)
	betaOwner := f.participant(h)
	joiner := f.participant(h)
	alpha := f.team(h, alphaOwner, "alpha")
	beta := f.team(h, betaOwner, "beta")

	toAlpha, err := f.requests.SendJoinRequest(f.ctx, joiner.ID, alpha.ID, "")
	require.NoError(t, err)
	toBeta, err := f.requests.SendJoinRequest(f.ctx, joiner.ID, beta.ID, "")
	require.NoError(t, err)

	stores := f.stores
	stores.Users = &interleavedUsers{
		UserStore: f.stores.Users,
		beforeAssign: func() {
			_, err := f.requests.Respond(f.ctx, toAlpha.ID, alphaOwner.ID, models.RequestStatusAccepted, "")
			require.NoError(t, err)
		},
	}
	svc := NewRequestService(stores, f.notifier, f.broadcaster, nil)
	svc.now = f.clock.Now

	_, err = svc.Respond(f.ctx, toBeta.ID, betaOwner.ID, models.RequestStatusAccepted, "")

	assert.ErrorIs(t, err, ErrAlreadyInTeam)
	stored := f.reloadRequest(toBeta.ID)
	assert.Equal(t, models.RequestStatusRejected, stored.Status)
	assert.Equal(t, reasonJoinedAnotherTeam, stored.ResponseMessage)

	team := f.reloadTeam(beta.ID)
	assert.Equal(t, []uuid.UUID{betaOwner.ID}, team.Members)
	assert.NotContains(t, team.PendingRequests, toBeta.ID)
	assert.True(t, f.reloadUser(joiner.ID).InTeam(alpha.ID))

	_, err = f.requests.Respond(f.ctx, toBeta.ID, betaOwner.ID, models.RequestStatusAccepted, "")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestRequestService_Respond_StalePendingForTeamedJoiner(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	alphaOwner := f.participant(h)
	betaOwner := f.participant(h)
	joiner := f.participant(h)
	alpha := f.team(h, alphaOwner, "alpha")
	beta := f.team(h, betaOwner, "beta")
	f.join(alpha, joiner)

	stale, err := f.store.Requests.Create(f.ctx, &models.TeamRequest{
		FromUserID:  joiner.ID,
		ToUserID:    betaOwner.ID,
		TeamID:      beta.ID,
		HackathonID: h.ID,
		Type:        models.RequestTypeJoin,
		ExpiresAt:   f.clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Teams.AddPendingRequest(f.ctx, beta.ID, stale.ID))

	_, err = f.requests.Respond(f.ctx, stale.ID, betaOwner.ID, models.RequestStatusAccepted, "")

	assert.ErrorIs(t, err, ErrAlreadyInTeam)
	assert.Equal(t, models.RequestStatusRejected, f.reloadRequest(stale.ID).Status)
	assert.NotContains(t, f.reloadTeam(beta.ID).PendingRequests, stale.ID)
}

func TestRequestService_ExpiryPrecedence(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon(func(h *models.Hackathon) {
		h.StartDate = f.clock.Now().Add(10 * time.Minute)
		h.EndDate = h.StartDate.Add(24 * time.Hour)
	})
	team := f.team(h, f.participant(h), "rockets")

	req, err := f.requests.SendJoinRequest(f.ctx, f.participant(h).ID, team.ID, "")
	require.NoError(t, err)
	assert.Equal(t, h.StartDate, req.ExpiresAt)

	now := f.clock.Advance(11 * time.Minute)
	expired, err := f.requests.ExpireDue(f.ctx, now)

	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	stored := f.reloadRequest(req.ID)
	assert.Equal(t, models.RequestStatusExpired, stored.Status)
	require.NotNil(t, stored.ExpiryReason)
	assert.Equal(t, models.ExpiryReasonHackathonStart, *stored.ExpiryReason)
	assert.NotContains(t, f.reloadTeam(team.ID).PendingRequests, req.ID)
}

func TestRequestService_ExpireDue_TimeReasonAndIdempotence(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	team := f.team(h, f.participant(h), "rockets")
	req, err := f.requests.SendJoinRequest(f.ctx, f.participant(h).ID, team.ID, "")
	require.NoError(t, err)

	expired, err := f.requests.ExpireDue(f.ctx, f.clock.Advance(23*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, expired)

	now := f.clock.Advance(time.Hour)
	expired, err = f.requests.ExpireDue(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, models.ExpiryReasonTime, *f.reloadRequest(req.ID).ExpiryReason)

	expired, err = f.requests.ExpireDue(f.ctx, now)
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestRequestService_Respond_AfterExpiry(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	team := f.team(h, owner, "rockets")
	req, err := f.requests.SendJoinRequest(f.ctx, f.participant(h).ID, team.ID, "")
	require.NoError(t, err)
	f.clock.Advance(25 * time.Hour)

	_, err = f.requests.Respond(f.ctx, req.ID, owner.ID, models.RequestStatusAccepted, "")

	assert.ErrorIs(t, err, ErrRequestExpired)
	stored := f.reloadRequest(req.ID)
	assert.Equal(t, models.RequestStatusExpired, stored.Status)
	assert.Equal(t, models.ExpiryReasonTime, *stored.ExpiryReason)
	assert.Len(t, f.reloadTeam(team.ID).Members, 1)

	_, err = f.requests.Respond(f.ctx, req.ID, owner.ID, models.RequestStatusAccepted, "")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestRequestService_Cancel(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	sender := f.participant(h)
	team := f.team(h, owner, "rockets")
	req, err := f.requests.SendJoinRequest(f.ctx, sender.ID, team.ID, "")
	require.NoError(t, err)

	assert.ErrorIs(t, f.requests.Cancel(f.ctx, req.ID, owner.ID), ErrNotRequestSender)

	require.NoError(t, f.requests.Cancel(f.ctx, req.ID, sender.ID))
	assert.Equal(t, models.RequestStatusRejected, f.reloadRequest(req.ID).Status)
	assert.NotContains(t, f.reloadTeam(team.ID).PendingRequests, req.ID)

	assert.ErrorIs(t, f.requests.Cancel(f.ctx, req.ID, sender.ID), ErrAlreadyProcessed)

	// a withdrawn request does not block a new one
	_, err = f.requests.SendJoinRequest(f.ctx, sender.ID, team.ID, "")
	assert.NoError(t, err)
}

func TestRequestService_Listings(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	sender := f.participant(h)
	team := f.team(h, owner, "rockets")
	join, err := f.requests.SendJoinRequest(f.ctx, sender.ID, team.ID, "")
	require.NoError(t, err)
	_, err = f.requests.SendInvitation(f.ctx, owner.ID, team.ID, f.participant(h).ID, "")
	require.NoError(t, err)

	pending, err := f.requests.PendingJoinRequests(f.ctx, team.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, join.ID, pending[0].ID)

	_, err = f.requests.PendingJoinRequests(f.ctx, team.ID, sender.ID)
	assert.ErrorIs(t, err, ErrNotTeamOwner)

	outgoing, err := f.requests.Outgoing(f.ctx, sender.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, join.ID, outgoing[0].ID)
}
