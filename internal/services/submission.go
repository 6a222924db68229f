package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dimitrije/teamforge-api/internal/apperror"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/dimitrije/teamforge-api/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSubmissionNotOpen  = apperror.New(apperror.KindExpired, "SUBMISSION_NOT_OPEN", "the submission window has not opened yet")
	ErrSubmissionClosed   = apperror.New(apperror.KindExpired, "SUBMISSION_CLOSED", "the submission window has closed")
	ErrAlreadySubmitted   = apperror.New(apperror.KindConflict, "ALREADY_SUBMITTED", "team has already submitted a project")
	ErrSubmissionNotFound = apperror.New(apperror.KindNotFound, "SUBMISSION_NOT_FOUND", "team has not submitted a project")
	ErrURLUnreachable     = apperror.New(apperror.KindExternalCheck, "URL_UNREACHABLE", "submission url could not be reached")
)

type SubmissionService struct {
	lookup
	checker  URLChecker
	notifier Notifier
	log      *zap.Logger
	now      Clock
}

// NewSubmissionService builds the submission gate. A nil checker disables
// the reachability check.
func NewSubmissionService(stores Stores, checker URLChecker, notifier Notifier, log *zap.Logger) *SubmissionService {
	return &SubmissionService{
		lookup:   lookup{stores: stores},
		checker:  checker,
		notifier: orNopNotifier(notifier),
		log:      orNop(log).Named("submissions"),
		now:      systemClock,
	}
}

// Submit records the team's one and only project submission. Only the current
// owner may submit, and only inside [SubmissionStart, SubmissionEnd].
func (s *SubmissionService) Submit(ctx context.Context, teamID, callerID uuid.UUID, rawURL string) (*models.TeamSubmission, error) {
	u, err := validation.ValidateSubmissionURL(rawURL)
	if err != nil {
		return nil, err
	}

	team, err := s.memberTeam(ctx, teamID, callerID)
	if err != nil {
		return nil, err
	}
	if !team.IsOwner(callerID) {
		return nil, ErrNotTeamOwner
	}

	h, err := s.hackathon(ctx, team.HackathonID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !validation.InWindow(now, h.SubmissionStart, h.SubmissionEnd) {
		if now.Before(h.SubmissionStart) {
			return nil, ErrSubmissionNotOpen
		}
		return nil, ErrSubmissionClosed
	}

	if _, err := s.stores.Submissions.GetByTeam(ctx, teamID, team.HackathonID); err == nil {
		return nil, ErrAlreadySubmitted
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}

	if s.checker != nil {
		if err := s.checker.Check(ctx, u.String()); err != nil {
			s.log.Info("submission url check failed", zap.String("team_id", teamID.String()), zap.String("url", u.String()), zap.Error(err))
			return nil, apperror.Wrap(ErrURLUnreachable, err)
		}
	}

	sub, err := s.stores.Submissions.Create(ctx, &models.TeamSubmission{
		TeamID:        teamID,
		HackathonID:   team.HackathonID,
		SubmissionURL: u.String(),
		SubmittedBy:   callerID,
		SubmittedAt:   now,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrAlreadySubmitted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	for _, member := range team.Members {
		s.notifier.Notify(member, models.NotifySubmissionReceived, map[string]any{
			"team_id":        teamID,
			"submission_url": sub.SubmissionURL,
		})
	}
	return sub, nil
}

func (s *SubmissionService) Get(ctx context.Context, teamID uuid.UUID) (*models.TeamSubmission, error) {
	team, err := s.team(ctx, teamID)
	if err != nil {
		return nil, err
	}
	sub, err := s.stores.Submissions.GetByTeam(ctx, teamID, team.HackathonID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	return sub, nil
}

// HTTPChecker probes a URL with HEAD, falling back to GET for servers that
// refuse HEAD. Every probe is bounded by timeout.
type HTTPChecker struct {
	client  *http.Client
	timeout time.Duration
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		timeout: timeout,
	}
}

func (c *HTTPChecker) Check(ctx context.Context, rawURL string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status, err := c.probe(ctx, http.MethodHead, rawURL)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = c.probe(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("url answered with status %d", status)
	}
	return nil
}

func (c *HTTPChecker) probe(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "teamforge-url-check/1.0")
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode, nil
}
