package jobs

import (
	"context"
	"time"

	"github.com/dimitrije/teamforge-api/internal/services"
)

type requestExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

type pollExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

type reconciler interface {
	Run(ctx context.Context, now time.Time) (services.ReconcileReport, error)
}

type backfiller interface {
	BackfillRandom(ctx context.Context, now time.Time) (int, error)
}

// RequestExpiry moves overdue pending requests to expired.
type RequestExpiry struct {
	requests requestExpirer
}

func NewRequestExpiry(requests requestExpirer) *RequestExpiry {
	return &RequestExpiry{requests: requests}
}

func (j *RequestExpiry) Name() string { return "request_expiry" }

func (j *RequestExpiry) Run(ctx context.Context, now time.Time) (int, error) {
	return j.requests.ExpireDue(ctx, now)
}

// PollExpiry concludes polls whose voting window has closed.
type PollExpiry struct {
	polls pollExpirer
}

func NewPollExpiry(polls pollExpirer) *PollExpiry {
	return &PollExpiry{polls: polls}
}

func (j *PollExpiry) Name() string { return "poll_expiry" }

func (j *PollExpiry) Run(ctx context.Context, now time.Time) (int, error) {
	return j.polls.ExpireDue(ctx, now)
}

// Reconcile realigns user pointers and roles with team rosters.
type Reconcile struct {
	reconciler reconciler
}

func NewReconcile(r reconciler) *Reconcile {
	return &Reconcile{reconciler: r}
}

func (j *Reconcile) Name() string { return "reconcile" }

func (j *Reconcile) Run(ctx context.Context, now time.Time) (int, error) {
	report, err := j.reconciler.Run(ctx, now)
	return report.Total(), err
}

// RandomBackfill locks a random problem for teams of running hackathons that
// never picked one.
type RandomBackfill struct {
	polls backfiller
}

func NewRandomBackfill(polls backfiller) *RandomBackfill {
	return &RandomBackfill{polls: polls}
}

func (j *RandomBackfill) Name() string { return "random_backfill" }

func (j *RandomBackfill) Run(ctx context.Context, now time.Time) (int, error) {
	return j.polls.BackfillRandom(ctx, now)
}
