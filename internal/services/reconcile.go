package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reconcileGrace keeps the job away from records a live request flow may
// still be writing.
const reconcileGrace = time.Minute

type leadershipRepairer interface {
	RepairLeadership(ctx context.Context, teamID uuid.UUID) (int, error)
}

// ReconcileReport counts what one reconciliation pass changed.
type ReconcileReport struct {
	PointersCleared  int `json:"pointers_cleared"`
	PointersRestored int `json:"pointers_restored"`
	RolesRepaired    int `json:"roles_repaired"`
}

func (r ReconcileReport) Total() int {
	return r.PointersCleared + r.PointersRestored + r.RolesRepaired
}

// ReconcileService realigns user records with team rosters. The roster is
// authoritative: a pointer naming a team the user is not on is cleared, and a
// roster member without a pointer gets one.
type ReconcileService struct {
	lookup
	leadership leadershipRepairer
	log        *zap.Logger
}

func NewReconcileService(stores Stores, leadership leadershipRepairer, log *zap.Logger) *ReconcileService {
	return &ReconcileService{
		lookup:     lookup{stores: stores},
		leadership: leadership,
		log:        orNop(log).Named("reconcile"),
	}
}

func (s *ReconcileService) Run(ctx context.Context, now time.Time) (ReconcileReport, error) {
	var report ReconcileReport

	cleared, err := s.clearStalePointers(ctx, now)
	if err != nil {
		return report, err
	}
	report.PointersCleared = cleared

	restored, repaired, err := s.walkTeams(ctx, now)
	if err != nil {
		return report, err
	}
	report.PointersRestored = restored
	report.RolesRepaired = repaired

	demoted, err := s.demoteStrayLeaders(ctx)
	if err != nil {
		return report, err
	}
	report.RolesRepaired += demoted

	if report.Total() > 0 {
		s.log.Warn("reconciliation changed records",
			zap.Int("pointers_cleared", report.PointersCleared),
			zap.Int("pointers_restored", report.PointersRestored),
			zap.Int("roles_repaired", report.RolesRepaired))
	}
	return report, nil
}

func (s *ReconcileService) clearStalePointers(ctx context.Context, now time.Time) (int, error) {
	assigned, err := s.stores.Users.ListAssigned(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list assigned users: %w", err)
	}

	cleared := 0
	for i := range assigned {
		u := &assigned[i]
		if now.Sub(u.UpdatedAt) < reconcileGrace {
			continue
		}
		team, err := s.stores.Teams.GetByID(ctx, *u.CurrentTeamID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			s.log.Warn("failed to load team for user", zap.String("user_id", u.ID.String()), zap.Error(err))
			continue
		case team.HasMember(u.ID):
			continue
		}

		if err := s.stores.Users.ReleaseTeam(ctx, u.ID, *u.CurrentTeamID); err != nil {
			if !errors.Is(err, repository.ErrPreconditionFailed) {
				s.log.Warn("failed to clear stale team pointer", zap.String("user_id", u.ID.String()), zap.Error(err))
			}
			continue
		}
		s.log.Info("cleared stale team pointer",
			zap.String("user_id", u.ID.String()),
			zap.String("team_id", u.CurrentTeamID.String()))
		cleared++
	}
	return cleared, nil
}

func (s *ReconcileService) walkTeams(ctx context.Context, now time.Time) (restored, repaired int, err error) {
	teams, err := s.stores.Teams.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list teams: %w", err)
	}

	for i := range teams {
		team := &teams[i]
		if now.Sub(team.UpdatedAt) < reconcileGrace {
			continue
		}
		for _, memberID := range team.Members {
			u, err := s.stores.Users.GetByID(ctx, memberID)
			if err != nil {
				s.log.Warn("roster names unknown user",
					zap.String("team_id", team.ID.String()),
					zap.String("user_id", memberID.String()),
					zap.Error(err))
				continue
			}
			if u.InTeam(team.ID) {
				continue
			}
			if u.HasTeam() {
				s.log.Error("user is on a roster but points at another team",
					zap.String("team_id", team.ID.String()),
					zap.String("user_id", u.ID.String()),
					zap.String("pointer", u.CurrentTeamID.String()))
				continue
			}
			if err := s.stores.Users.AssignTeam(ctx, u.ID, team.ID); err != nil {
				s.log.Warn("failed to restore team pointer", zap.String("user_id", u.ID.String()), zap.Error(err))
				continue
			}
			restored++
		}

		n, err := s.leadership.RepairLeadership(ctx, team.ID)
		if err != nil && !errors.Is(err, ErrTeamNotFound) {
			s.log.Warn("leadership repair incomplete", zap.String("team_id", team.ID.String()), zap.Error(err))
		}
		repaired += n
	}
	return restored, repaired, nil
}

// demoteStrayLeaders drops the leader role from users who no longer own the
// team they point at, or have no team at all.
func (s *ReconcileService) demoteStrayLeaders(ctx context.Context) (int, error) {
	leaders, err := s.stores.Users.ListByRole(ctx, models.RoleLeader)
	if err != nil {
		return 0, fmt.Errorf("failed to list leaders: %w", err)
	}

	demoted := 0
	for i := range leaders {
		u := &leaders[i]
		if u.HasTeam() {
			team, err := s.stores.Teams.GetByID(ctx, *u.CurrentTeamID)
			if err == nil && team.IsOwner(u.ID) {
				continue
			}
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				continue
			}
		}
		if err := s.stores.Users.SetRole(ctx, u.ID, models.RoleMember); err != nil {
			s.log.Warn("failed to demote stray leader", zap.String("user_id", u.ID.String()), zap.Error(err))
			continue
		}
		demoted++
	}
	return demoted, nil
}
