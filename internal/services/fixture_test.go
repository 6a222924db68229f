package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type sentNotification struct {
	userID  uuid.UUID
	kind    string
	payload any
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(userID uuid.UUID, kind string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{userID: userID, kind: kind, payload: payload})
}

func (n *recordingNotifier) kinds(userID uuid.UUID) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var kinds []string
	for _, s := range n.sent {
		if s.userID == userID {
			kinds = append(kinds, s.kind)
		}
	}
	return kinds
}

type broadcastEvent struct {
	userIDs   []uuid.UUID
	eventType string
	data      any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (b *recordingBroadcaster) Broadcast(userIDs []uuid.UUID, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{userIDs: userIDs, eventType: eventType, data: data})
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, 0, len(b.events))
	for _, e := range b.events {
		types = append(types, e.eventType)
	}
	return types
}

// fixture wires every service to one in-memory store and a shared clock.
type fixture struct {
	t           *testing.T
	ctx         context.Context
	store       *memory.Store
	stores      Stores
	clock       *testClock
	notifier    *recordingNotifier
	broadcaster *recordingBroadcaster

	teams       *TeamService
	requests    *RequestService
	polls       *PollService
	submissions *SubmissionService
	hackathons  *HackathonService
	users       *UserService

	seq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	stores := Stores{
		Users:         store.Users,
		Teams:         store.Teams,
		Requests:      store.Requests,
		Hackathons:    store.Hackathons,
		Polls:         store.Polls,
		Selections:    store.Selections,
		Submissions:   store.Submissions,
		Notifications: store.Notifications,
	}
	f := &fixture{
		t:           t,
		ctx:         context.Background(),
		store:       store,
		stores:      stores,
		clock:       &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		notifier:    &recordingNotifier{},
		broadcaster: &recordingBroadcaster{},
	}

	f.teams = NewTeamService(stores, f.notifier, f.broadcaster, nil)
	f.teams.now = f.clock.Now
	f.requests = NewRequestService(stores, f.notifier, f.broadcaster, nil)
	f.requests.now = f.clock.Now
	f.polls = NewPollService(stores, f.notifier, f.broadcaster, nil)
	f.polls.now = f.clock.Now
	f.submissions = NewSubmissionService(stores, nil, f.notifier, nil)
	f.submissions.now = f.clock.Now
	f.hackathons = NewHackathonService(stores, nil)
	f.users = NewUserService(stores)
	return f
}

// hackathon creates a hackathon a week out with three problem statements and
// room for four members per team.
func (f *fixture) hackathon(opts ...func(*models.Hackathon)) *models.Hackathon {
	f.t.Helper()
	start := f.clock.Now().Add(7 * 24 * time.Hour)
	h := &models.Hackathon{
		Name:                       "spring hack",
		StartDate:                  start,
		EndDate:                    start.Add(48 * time.Hour),
		MinTeamSize:                1,
		MaxTeamSize:                4,
		MinTeamSizeForFinalization: 1,
		AllowParticipantTeams:      true,
		TeamCreationMode:           models.CreationModeParticipant,
		SubmissionStart:            start,
		SubmissionEnd:              start.Add(48 * time.Hour),
		ProblemStatements: []models.ProblemStatement{
			{Title: "accessibility"},
			{Title: "climate"},
			{Title: "fintech"},
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	created, err := f.hackathons.Create(f.ctx, h)
	require.NoError(f.t, err)
	return created
}

// participant creates a user registered for h.
func (f *fixture) participant(h *models.Hackathon) *models.User {
	f.t.Helper()
	f.seq++
	u, err := f.users.Create(f.ctx, fmt.Sprintf("user%d@example.com", f.seq), fmt.Sprintf("User %d", f.seq))
	require.NoError(f.t, err)
	require.NoError(f.t, f.hackathons.Register(f.ctx, h.ID, u.ID))
	return u
}

func (f *fixture) team(h *models.Hackathon, owner *models.User, name string) *models.Team {
	f.t.Helper()
	team, err := f.teams.Create(f.ctx, CreateTeamInput{HackathonID: h.ID, OwnerID: owner.ID, Name: name})
	require.NoError(f.t, err)
	return team
}

// join puts u on team through an accepted join request.
func (f *fixture) join(team *models.Team, u *models.User) {
	f.t.Helper()
	req, err := f.requests.SendJoinRequest(f.ctx, u.ID, team.ID, "let me in")
	require.NoError(f.t, err)
	_, err = f.requests.Respond(f.ctx, req.ID, team.CreatedBy, models.RequestStatusAccepted, "")
	require.NoError(f.t, err)
}

func (f *fixture) reloadUser(id uuid.UUID) *models.User {
	f.t.Helper()
	u, err := f.store.Users.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return u
}

func (f *fixture) reloadTeam(id uuid.UUID) *models.Team {
	f.t.Helper()
	team, err := f.store.Teams.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return team
}

func (f *fixture) reloadRequest(id uuid.UUID) *models.TeamRequest {
	f.t.Helper()
	req, err := f.store.Requests.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return req
}
