// Package jobs runs the periodic sweeps that keep teams, requests and polls
// consistent: request expiry, poll expiry, membership reconciliation and
// random problem backfill.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is one sweep. Run receives the instant the sweep should treat as now
// and returns how many records it changed.
type Job interface {
	Name() string
	Run(ctx context.Context, now time.Time) (int, error)
}

type entry struct {
	job      Job
	interval time.Duration
}

type Scheduler struct {
	mu      sync.Mutex
	entries []entry
	log     *zap.Logger
	now     func() time.Time

	runs     *prometheus.CounterVec
	items    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewScheduler(reg prometheus.Registerer, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{
		log: log.Named("jobs"),
		now: func() time.Time { return time.Now().UTC() },
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamforge",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Sweep executions by job and outcome.",
		}, []string{"job", "outcome"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamforge",
			Subsystem: "jobs",
			Name:      "items_total",
			Help:      "Records changed by each job.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "teamforge",
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Sweep duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}
	if reg != nil {
		reg.MustRegister(s.runs, s.items, s.duration)
	}
	return s
}

// Add schedules job every interval. Jobs with a non-positive interval are
// ignored.
func (s *Scheduler) Add(job Job, interval time.Duration) {
	if interval <= 0 {
		s.log.Warn("job disabled", zap.String("job", job.Name()))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{job: job, interval: interval})
}

// Run blocks until ctx is cancelled, running every job once at start and then
// on its interval.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	entries := append([]entry(nil), s.entries...)
	s.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		g.Go(func() error {
			s.loop(ctx, e)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, e entry) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	s.RunOnce(ctx, e.job)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx, e.job)
		}
	}
}

// RunOnce executes job immediately and records the outcome. Errors are
// logged; the next tick retries.
func (s *Scheduler) RunOnce(ctx context.Context, job Job) (int, error) {
	name := job.Name()
	start := time.Now()
	n, err := job.Run(ctx, s.now())
	s.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		s.runs.WithLabelValues(name, "error").Inc()
		s.log.Error("job failed", zap.String("job", name), zap.Error(err))
		return n, err
	}
	s.runs.WithLabelValues(name, "ok").Inc()
	s.items.WithLabelValues(name).Add(float64(n))
	if n > 0 {
		s.log.Info("job completed", zap.String("job", name), zap.Int("changed", n))
	}
	return n, nil
}
