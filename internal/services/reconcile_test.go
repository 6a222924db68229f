package services

import (
	"testing"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileService_Run(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	owner := f.participant(h)
	member := f.participant(h)
	team := f.team(h, owner, "rockets")
	f.join(team, member)

	// pointer to a team that no longer exists
	ghost := f.participant(h)
	ghostTeam := uuid.New()
	ghost.CurrentTeamID = &ghostTeam
	ghost.Role = models.RoleLeader
	f.store.Users.Put(ghost)

	// roster entry whose pointer write never happened
	lost := f.participant(h)
	stored := f.reloadTeam(team.ID)
	stored.Members = append(stored.Members, lost.ID)
	f.store.Teams.Put(stored)

	// stale roles
	require.NoError(t, f.store.Users.SetRole(f.ctx, owner.ID, models.RoleMember))
	require.NoError(t, f.store.Users.SetRole(f.ctx, member.ID, models.RoleLeader))
	stray := f.participant(h)
	require.NoError(t, f.store.Users.SetRole(f.ctx, stray.ID, models.RoleLeader))

	svc := NewReconcileService(f.stores, f.teams, nil)
	report, err := svc.Run(f.ctx, time.Now().Add(time.Hour))

	require.NoError(t, err)
	assert.Equal(t, 1, report.PointersCleared)
	assert.Equal(t, 1, report.PointersRestored)
	assert.Equal(t, 3, report.RolesRepaired)

	g := f.reloadUser(ghost.ID)
	assert.False(t, g.HasTeam())
	assert.Equal(t, models.RoleMember, g.Role)
	assert.True(t, f.reloadUser(lost.ID).InTeam(team.ID))
	assert.Equal(t, models.RoleLeader, f.reloadUser(owner.ID).Role)
	assert.Equal(t, models.RoleMember, f.reloadUser(member.ID).Role)
	assert.Equal(t, models.RoleMember, f.reloadUser(stray.ID).Role)

	again, err := svc.Run(f.ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, again.Total())
}

func TestReconcileService_Run_SkipsRecentWrites(t *testing.T) {
	f := newFixture(t)
	h := f.hackathon()
	u := f.participant(h)
	teamID := uuid.New()
	u.CurrentTeamID = &teamID
	u.UpdatedAt = time.Now()
	f.store.Users.Put(u)

	svc := NewReconcileService(f.stores, f.teams, nil)
	report, err := svc.Run(f.ctx, time.Now())

	require.NoError(t, err)
	assert.Zero(t, report.PointersCleared)
	assert.True(t, f.reloadUser(u.ID).HasTeam())
}
