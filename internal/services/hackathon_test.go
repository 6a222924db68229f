package services

import (
	"testing"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHackathonService_Create(t *testing.T) {
	f := newFixture(t)

	h := f.hackathon(func(h *models.Hackathon) { h.TeamCreationMode = "" })

	assert.NotEqual(t, uuid.Nil, h.ID)
	assert.Equal(t, models.CreationModeParticipant, h.TeamCreationMode)
	require.Len(t, h.ProblemStatements, 3)
	for _, p := range h.ProblemStatements {
		assert.Equal(t, h.ID, p.HackathonID)
	}

	got, err := f.hackathons.Get(f.ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.Name, got.Name)
}

func TestHackathonService_Create_Invalid(t *testing.T) {
	f := newFixture(t)
	start := f.clock.Now().Add(24 * time.Hour)
	valid := func() *models.Hackathon {
		return &models.Hackathon{
			Name:            "spring hack",
			StartDate:       start,
			EndDate:         start.Add(24 * time.Hour),
			MinTeamSize:     1,
			MaxTeamSize:     4,
			SubmissionStart: start,
			SubmissionEnd:   start.Add(24 * time.Hour),
		}
	}

	testCases := []struct {
		name   string
		mutate func(*models.Hackathon)
	}{
		{"blank name", func(h *models.Hackathon) { h.Name = " " }},
		{"end before start", func(h *models.Hackathon) { h.EndDate = h.StartDate }},
		{"submission window inverted", func(h *models.Hackathon) { h.SubmissionEnd = h.SubmissionStart.Add(-time.Minute) }},
		{"max below min", func(h *models.Hackathon) { h.MinTeamSize = 3; h.MaxTeamSize = 2 }},
		{"max too large", func(h *models.Hackathon) { h.MaxTeamSize = 11 }},
		{"finalization above max", func(h *models.Hackathon) { h.MinTeamSizeForFinalization = 5 }},
		{"unknown mode", func(h *models.Hackathon) { h.TeamCreationMode = "anyone" }},
		{"untitled problem", func(h *models.Hackathon) { h.ProblemStatements = []models.ProblemStatement{{Title: ""}} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := valid()
			tc.mutate(h)
			_, err := f.hackathons.Create(f.ctx, h)
			assert.ErrorIs(t, err, ErrInvalidHackathon)
		})
	}
}

func TestHackathonService_Register(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	u, err := f.users.Create(f.ctx, "ada@example.com", "Ada")
	require.NoError(t, err)

	require.NoError(t, f.hackathons.Register(f.ctx, h.ID, u.ID))
	require.NoError(t, f.hackathons.Register(f.ctx, h.ID, u.ID))

	ok, err := f.store.Hackathons.IsParticipant(f.ctx, h.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, f.hackathons.Register(f.ctx, uuid.New(), u.ID), ErrHackathonNotFound)
	assert.ErrorIs(t, f.hackathons.Register(f.ctx, h.ID, uuid.New()), ErrUserNotFound)
}
