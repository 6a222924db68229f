package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/teamforge-api/internal/apperror"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound      = apperror.New(apperror.KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrTeamNotFound      = apperror.New(apperror.KindNotFound, "TEAM_NOT_FOUND", "team not found")
	ErrHackathonNotFound = apperror.New(apperror.KindNotFound, "HACKATHON_NOT_FOUND", "hackathon not found")
	ErrNotTeamOwner      = apperror.New(apperror.KindForbidden, "NOT_TEAM_OWNER", "only the team owner can do this")
	ErrNotTeamMember     = apperror.New(apperror.KindForbidden, "NOT_TEAM_MEMBER", "you are not a member of this team")
	ErrConcurrentUpdate  = apperror.New(apperror.KindConflict, "CONCURRENT_UPDATE", "the team changed while processing, please retry")
)

// Stores groups the persistence contracts the services share.
type Stores struct {
	Users         UserStore
	Teams         TeamStore
	Requests      RequestStore
	Hackathons    HackathonStore
	Polls         PollStore
	Selections    SelectionStore
	Submissions   SubmissionStore
	Notifications NotificationStore
}

// lookup is embedded by services that resolve users, teams and hackathons.
type lookup struct {
	stores Stores
}

func (l lookup) user(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := l.stores.Users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (l lookup) team(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	t, err := l.stores.Teams.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return t, nil
}

func (l lookup) hackathon(ctx context.Context, id uuid.UUID) (*models.Hackathon, error) {
	h, err := l.stores.Hackathons.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrHackathonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load hackathon: %w", err)
	}
	return h, nil
}

func (l lookup) ownedTeam(ctx context.Context, teamID, callerID uuid.UUID) (*models.Team, error) {
	t, err := l.team(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !t.IsOwner(callerID) {
		return nil, ErrNotTeamOwner
	}
	return t, nil
}

func (l lookup) memberTeam(ctx context.Context, teamID, callerID uuid.UUID) (*models.Team, error) {
	t, err := l.team(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !t.HasMember(callerID) {
		return nil, ErrNotTeamMember
	}
	return t, nil
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

func orNopNotifier(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func orNopBroadcaster(b Broadcaster) Broadcaster {
	if b == nil {
		return nopBroadcaster{}
	}
	return b
}
