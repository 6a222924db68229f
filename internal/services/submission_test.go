package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type stubChecker struct {
	err   error
	calls int
}

func (c *stubChecker) Check(context.Context, string) error {
	c.calls++
	return c.err
}

type submissionSetup struct {
	*fixture
	h      *models.Hackathon
	owner  *models.User
	member *models.User
	team   *models.Team
}

func newSubmissionSetup(t *testing.T) *submissionSetup {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	member := f.participant(h)
	team := f.team(h, owner, "rockets")
	f.join(team, member)
	return &submissionSetup{fixture: f, h: h, owner: owner, member: member, team: team}
}

func (s *submissionSetup) openWindow() {
	s.clock.Advance(s.h.SubmissionStart.Sub(s.clock.Now()) + time.Hour)
}

func TestSubmissionService_Submit(t *testing.T) {
	s := newSubmissionSetup(t)
	s.openWindow()

	sub, err := s.submissions.Submit(s.ctx, s.team.ID, s.owner.ID, " https://github.com/rockets/app ")

	require.NoError(t, err)
	assert.Equal(t, "https://github.com/rockets/app", sub.SubmissionURL)
	assert.Equal(t, s.owner.ID, sub.SubmittedBy)
	assert.Equal(t, s.clock.Now(), sub.SubmittedAt)
	assert.Contains(t, s.notifier.kinds(s.member.ID), models.NotifySubmissionReceived)

	got, err := s.submissions.Get(s.ctx, s.team.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)

	_, err = s.submissions.Submit(s.ctx, s.team.ID, s.owner.ID, "https://github.com/rockets/other")
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmissionService_Submit_Window(t *testing.T) {
	s := newSubmissionSetup(t)

	_, err := s.submissions.Submit(s.ctx, s.team.ID, s.owner.ID, "https://example.com")
	assert.ErrorIs(t, err, ErrSubmissionNotOpen)

	s.clock.Advance(s.h.SubmissionEnd.Sub(s.clock.Now()) + time.Second)
	_, err = s.submissions.Submit(s.ctx, s.team.ID, s.owner.ID, "https://example.com")
	assert.ErrorIs(t, err, ErrSubmissionClosed)

	_, err = s.submissions.Get(s.ctx, s.team.ID)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionService_Submit_WindowBoundsAreInclusive(t *testing.T) {
	s := newSubmissionSetup(t)
	s.clock.Advance(s.h.SubmissionEnd.Sub(s.clock.Now()))

	_, err := s.submissions.Submit(s.ctx, s.team.ID, s.owner.ID, "https://example.com")

	assert.NoError(t, err)
}

func TestSubmissionService_Submit_Rejections(t *testing.T) {
	s := newSubmissionSetup(t)
	s.openWindow()

	_, err := s.submissions.Submit(s.ctx, s.team.ID, s.owner.ID, "ftp://example.com")
	assert.ErrorIs(t, err, validation.ErrInvalidURL)

	_, err = s.submissions.Submit(s.ctx, s.team.ID, s.member.ID, "https://example.com")
	assert.ErrorIs(t, err, ErrNotTeamOwner)

	_, err = s.submissions.Submit(s.ctx, s.team.ID, s.participant(s.h).ID, "https://example.com")
	assert.ErrorIs(t, err, ErrNotTeamMember)
}

func TestSubmissionService_Submit_UnreachableURL(t *testing.T) {
	s := newSubmissionSetup(t)
	s.openWindow()
	checker := &stubChecker{err: errors.New("connection refused")}
	svc := NewSubmissionService(s.stores, checker, nil, nil)
	svc.now = s.clock.Now

	_, err := svc.Submit(s.ctx, s.team.ID, s.owner.ID, "https://example.invalid")

	assert.ErrorIs(t, err, ErrURLUnreachable)
	assert.Equal(t, 1, checker.calls)
	_, err = svc.Get(s.ctx, s.team.ID)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	checker.err = nil
	_, err = svc.Submit(s.ctx, s.team.ID, s.owner.ID, "https://example.com")
	assert.NoError(t, err)
}

func TestSubmissionService_Submit_Concurrent(t *testing.T) {
	s := newSubmissionSetup(t)
	s.openWindow()

	results := make([]error, 6)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			_, results[i] = s.submissions.Submit(s.ctx, s.team.ID, s.owner.ID, "https://example.com")
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
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	}
	assert.Equal(t, 1, won)
}

func TestHTTPChecker(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	headRefused := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer headRefused.Close()

	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	checker := NewHTTPChecker(200 * time.Millisecond)
	ctx := context.Background()

	assert.NoError(t, checker.Check(ctx, ok.URL))
	assert.NoError(t, checker.Check(ctx, headRefused.URL))
	assert.Error(t, checker.Check(ctx, missing.URL))
	assert.Error(t, checker.Check(ctx, slow.URL))
}
