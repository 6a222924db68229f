package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dimitrije/teamforge-api/internal/apperror"
	"github.com/dimitrije/teamforge-api/internal/hub"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MinPollMinutes = 1
	MaxPollMinutes = 24 * 60
)

var (
	ErrPollNotFound        = apperror.New(apperror.KindNotFound, "POLL_NOT_FOUND", "poll not found")
	ErrNoActivePoll        = apperror.New(apperror.KindNotFound, "NO_ACTIVE_POLL", "team has no active poll")
	ErrPollAlreadyActive   = apperror.New(apperror.KindConflict, "POLL_ALREADY_ACTIVE", "team already has an active poll")
	ErrPollClosed          = apperror.New(apperror.KindConflict, "POLL_CLOSED", "poll is no longer active")
	ErrPollExpired         = apperror.New(apperror.KindExpired, "POLL_EXPIRED", "poll has expired")
	ErrNoVotes             = apperror.New(apperror.KindValidation, "NO_VOTES", "poll has no votes yet")
	ErrInvalidPollDuration = apperror.New(apperror.KindValidation, "INVALID_POLL_DURATION", "poll duration must be between 1 and 1440 minutes")
	ErrUnknownProblem      = apperror.New(apperror.KindValidation, "UNKNOWN_PROBLEM", "problem statement does not belong to this hackathon")
	ErrNoProblems          = apperror.New(apperror.KindValidation, "NO_PROBLEMS", "hackathon has no problem statements")
	ErrSelectionLocked     = apperror.New(apperror.KindConflict, "SELECTION_LOCKED", "team has already locked its problem statement")
	ErrSelectionNotFound   = apperror.New(apperror.KindNotFound, "SELECTION_NOT_FOUND", "team has not selected a problem statement")
)

type PollService struct {
	lookup
	notifier    Notifier
	broadcaster Broadcaster
	log         *zap.Logger
	now         Clock
	pick        func(n int) int
}

func NewPollService(stores Stores, notifier Notifier, broadcaster Broadcaster, log *zap.Logger) *PollService {
	return &PollService{
		lookup:      lookup{stores: stores},
		notifier:    orNopNotifier(notifier),
		broadcaster: orNopBroadcaster(broadcaster),
		log:         orNop(log).Named("polls"),
		now:         systemClock,
		pick:        rand.IntN,
	}
}

// PollView is a poll with its tally computed from the vote map.
type PollView struct {
	*models.ProblemSelectionPoll
	Tally models.VoteTally `json:"tally"`
}

func viewOf(p *models.ProblemSelectionPoll) *PollView {
	return &PollView{ProblemSelectionPoll: p, Tally: p.Tally()}
}

// Start opens a poll for the owner's team. An active poll that is already
// past its expiry is concluded first.
func (s *PollService) Start(ctx context.Context, teamID, callerID uuid.UUID, durationMinutes int) (*PollView, error) {
	if durationMinutes < MinPollMinutes || durationMinutes > MaxPollMinutes {
		return nil, ErrInvalidPollDuration
	}

	team, err := s.ownedTeam(ctx, teamID, callerID)
	if err != nil {
		return nil, err
	}
	h, err := s.hackathon(ctx, team.HackathonID)
	if err != nil {
		return nil, err
	}
	if len(h.ProblemStatements) == 0 {
		return nil, ErrNoProblems
	}
	if err := s.ensureUnlocked(ctx, team); err != nil {
		return nil, err
	}

	now := s.now()
	poll := &models.ProblemSelectionPoll{
		TeamID:      team.ID,
		HackathonID: team.HackathonID,
		CreatedBy:   callerID,
		Votes:       map[uuid.UUID]uuid.UUID{},
		ExpiresAt:   now.Add(time.Duration(durationMinutes) * time.Minute),
	}

	created, err := s.stores.Polls.Create(ctx, poll)
	if errors.Is(err, repository.ErrDuplicate) {
		active, aerr := s.stores.Polls.GetActiveByTeam(ctx, team.ID)
		if aerr != nil || active.ExpiresAt.After(now) {
			return nil, ErrPollAlreadyActive
		}
		if _, err := s.finish(ctx, active, team, now); err != nil && !errors.Is(err, ErrPollClosed) {
			return nil, err
		}
		if err := s.ensureUnlocked(ctx, team); err != nil {
			return nil, err
		}
		created, err = s.stores.Polls.Create(ctx, poll)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPollAlreadyActive
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}

	view := viewOf(created)
	s.broadcaster.Broadcast(team.Members, hub.EventPollStarted, pollData(view))
	return view, nil
}

func (s *PollService) ensureUnlocked(ctx context.Context, team *models.Team) error {
	sel, err := s.stores.Selections.GetByTeam(ctx, team.ID, team.HackathonID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load selection: %w", err)
	}
	if sel.IsLocked {
		return ErrSelectionLocked
	}
	return nil
}

// Vote records voterID's choice, replacing any earlier vote by the same member.
func (s *PollService) Vote(ctx context.Context, pollID, voterID, problemID uuid.UUID) (*PollView, error) {
	poll, err := s.stores.Polls.GetByID(ctx, pollID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}

	now := s.now()
	if err := pollOpen(poll, now); err != nil {
		return nil, err
	}

	team, err := s.memberTeam(ctx, poll.TeamID, voterID)
	if err != nil {
		return nil, err
	}
	h, err := s.hackathon(ctx, poll.HackathonID)
	if err != nil {
		return nil, err
	}
	if !h.HasProblem(problemID) {
		return nil, ErrUnknownProblem
	}

	updated, err := s.stores.Polls.SetVote(ctx, pollID, voterID, problemID, now)
	if errors.Is(err, repository.ErrPreconditionFailed) {
		if fresh, ferr := s.stores.Polls.GetByID(ctx, pollID); ferr == nil {
			if perr := pollOpen(fresh, now); perr != nil {
				return nil, perr
			}
		}
		return nil, ErrPollClosed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	view := viewOf(updated)
	s.broadcaster.Broadcast(team.Members, hub.EventPollVote, pollData(view))
	return view, nil
}

func pollOpen(p *models.ProblemSelectionPoll, now time.Time) error {
	if p.Status != models.PollStatusActive {
		return ErrPollClosed
	}
	if !now.Before(p.ExpiresAt) {
		return ErrPollExpired
	}
	return nil
}

// Active returns the team's running poll for any member.
func (s *PollService) Active(ctx context.Context, teamID, callerID uuid.UUID) (*PollView, error) {
	if _, err := s.memberTeam(ctx, teamID, callerID); err != nil {
		return nil, err
	}
	poll, err := s.stores.Polls.GetActiveByTeam(ctx, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoActivePoll
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}
	return viewOf(poll), nil
}

// Conclude closes the team's active poll early and locks the winning problem.
func (s *PollService) Conclude(ctx context.Context, teamID, callerID uuid.UUID) (*models.TeamProblemSelection, error) {
	team, err := s.ownedTeam(ctx, teamID, callerID)
	if err != nil {
		return nil, err
	}
	poll, err := s.stores.Polls.GetActiveByTeam(ctx, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoActivePoll
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}
	if _, ok := poll.Tally().Winner(); !ok {
		return nil, ErrNoVotes
	}
	return s.finish(ctx, poll, team, s.now())
}

// finish completes a poll. With votes the winner is locked as the team's
// selection; without votes the poll is marked expired and nil is returned.
func (s *PollService) finish(ctx context.Context, poll *models.ProblemSelectionPoll, team *models.Team, now time.Time) (*models.TeamProblemSelection, error) {
	winner, ok := poll.Tally().Winner()
	if !ok {
		if _, err := s.stores.Polls.Complete(ctx, poll.ID, models.PollStatusExpired, nil, now); err != nil {
			if errors.Is(err, repository.ErrPreconditionFailed) {
				return nil, ErrPollClosed
			}
			return nil, fmt.Errorf("failed to expire poll: %w", err)
		}
		return nil, nil
	}

	completed, err := s.stores.Polls.Complete(ctx, poll.ID, models.PollStatusCompleted, &winner, now)
	if errors.Is(err, repository.ErrPreconditionFailed) {
		return nil, ErrPollClosed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete poll: %w", err)
	}

	sel, err := s.lock(ctx, team, winner, poll.CreatedBy, models.SelectionPoll, now)
	if errors.Is(err, ErrSelectionLocked) {
		s.log.Warn("poll winner not locked, team already has a selection",
			zap.String("poll_id", poll.ID.String()),
			zap.String("team_id", team.ID.String()),
			zap.String("winning_problem_id", winner.String()))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(team.Members, hub.EventPollCompleted, pollData(viewOf(completed)))
	return sel, nil
}

// SelectProblem lets the owner pick a problem directly.
func (s *PollService) SelectProblem(ctx context.Context, teamID, callerID, problemID uuid.UUID) (*models.TeamProblemSelection, error) {
	team, err := s.ownedTeam(ctx, teamID, callerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.Polls.GetActiveByTeam(ctx, teamID); err == nil {
		return nil, ErrPollAlreadyActive
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}
	if err := s.checkProblem(ctx, team.HackathonID, problemID); err != nil {
		return nil, err
	}
	return s.lock(ctx, team, problemID, callerID, models.SelectionIndividual, s.now())
}

// Assign is the admin override for a team that has not locked a problem yet.
func (s *PollService) Assign(ctx context.Context, teamID, adminID, problemID uuid.UUID) (*models.TeamProblemSelection, error) {
	team, err := s.team(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := s.checkProblem(ctx, team.HackathonID, problemID); err != nil {
		return nil, err
	}
	return s.lock(ctx, team, problemID, adminID, models.SelectionAdmin, s.now())
}

func (s *PollService) Selection(ctx context.Context, teamID uuid.UUID) (*models.TeamProblemSelection, error) {
	team, err := s.team(ctx, teamID)
	if err != nil {
		return nil, err
	}
	sel, err := s.stores.Selections.GetByTeam(ctx, teamID, team.HackathonID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSelectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load selection: %w", err)
	}
	return sel, nil
}

func (s *PollService) checkProblem(ctx context.Context, hackathonID, problemID uuid.UUID) error {
	h, err := s.hackathon(ctx, hackathonID)
	if err != nil {
		return err
	}
	if !h.HasProblem(problemID) {
		return ErrUnknownProblem
	}
	return nil
}

func (s *PollService) lock(ctx context.Context, team *models.Team, problemID, selectedBy uuid.UUID, method string, now time.Time) (*models.TeamProblemSelection, error) {
	sel, err := s.stores.Selections.Lock(ctx, &models.TeamProblemSelection{
		TeamID:            team.ID,
		HackathonID:       team.HackathonID,
		SelectedProblemID: problemID,
		SelectedBy:        selectedBy,
		SelectionMethod:   method,
		SelectedAt:        now,
	})
	if errors.Is(err, repository.ErrPreconditionFailed) {
		return nil, ErrSelectionLocked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock selection: %w", err)
	}

	for _, member := range team.Members {
		s.notifier.Notify(member, models.NotifyProblemLocked, map[string]any{
			"team_id":    team.ID,
			"problem_id": problemID,
			"method":     method,
		})
	}
	s.log.Info("problem locked",
		zap.String("team_id", team.ID.String()),
		zap.String("problem_id", problemID.String()),
		zap.String("method", method))
	return sel, nil
}

// ExpireDue concludes every active poll whose window closed before now.
func (s *PollService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.stores.Polls.ListExpiredActive(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired polls: %w", err)
	}

	closed := 0
	for i := range due {
		poll := &due[i]
		team, err := s.team(ctx, poll.TeamID)
		if errors.Is(err, ErrTeamNotFound) {
			if _, err := s.stores.Polls.Complete(ctx, poll.ID, models.PollStatusExpired, nil, now); err != nil {
				s.log.Warn("failed to expire orphaned poll", zap.String("poll_id", poll.ID.String()), zap.Error(err))
			}
			continue
		}
		if err != nil {
			s.log.Error("failed to load poll team", zap.String("poll_id", poll.ID.String()), zap.Error(err))
			continue
		}
		if _, err := s.finish(ctx, poll, team, now); err != nil {
			if !errors.Is(err, ErrPollClosed) {
				s.log.Error("failed to conclude poll", zap.String("poll_id", poll.ID.String()), zap.Error(err))
			}
			continue
		}
		closed++
	}
	return closed, nil
}

// BackfillRandom locks a random problem for every team of a running hackathon
// that has neither a locked selection nor an active poll.
func (s *PollService) BackfillRandom(ctx context.Context, now time.Time) (int, error) {
	running, err := s.stores.Hackathons.ListRunning(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list running hackathons: %w", err)
	}

	assigned := 0
	for _, hackathonID := range running {
		n, err := s.backfillHackathon(ctx, hackathonID, now)
		if err != nil {
			s.log.Error("random backfill failed", zap.String("hackathon_id", hackathonID.String()), zap.Error(err))
		}
		assigned += n
	}
	return assigned, nil
}

func (s *PollService) backfillHackathon(ctx context.Context, hackathonID uuid.UUID, now time.Time) (int, error) {
	h, err := s.hackathon(ctx, hackathonID)
	if err != nil {
		return 0, err
	}
	if len(h.ProblemStatements) == 0 {
		return 0, nil
	}

	selections, err := s.stores.Selections.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return 0, err
	}
	locked := make(map[uuid.UUID]bool, len(selections))
	for _, sel := range selections {
		if sel.IsLocked {
			locked[sel.TeamID] = true
		}
	}

	teams, err := s.stores.Teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return 0, err
	}

	assigned := 0
	for i := range teams {
		team := &teams[i]
		if locked[team.ID] {
			continue
		}
		if _, err := s.stores.Polls.GetActiveByTeam(ctx, team.ID); err == nil {
			continue
		}
		problem := h.ProblemStatements[s.pick(len(h.ProblemStatements))]
		if _, err := s.lock(ctx, team, problem.ID, team.CreatedBy, models.SelectionRandom, now); err != nil {
			if !errors.Is(err, ErrSelectionLocked) {
				s.log.Warn("failed to backfill team", zap.String("team_id", team.ID.String()), zap.Error(err))
			}
			continue
		}
		assigned++
	}
	return assigned, nil
}

func pollData(v *PollView) hub.PollData {
	return hub.PollData{
		TeamID: v.TeamID,
		PollID: v.ID,
		Status: v.Status,
		Tally:  v.Tally,
		Winner: v.WinningProblemID,
	}
}
