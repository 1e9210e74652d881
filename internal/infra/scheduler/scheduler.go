package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"creator-subscription-service/internal/infra/metrics"
	red "creator-subscription-service/internal/infra/redis"
)

// Job is the unit of work the scheduler runs on a cron schedule.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on standard 5-field cron specs with an at-most-one
// guarantee per job: in-process overlap is prevented by the cron chain,
// cross-replica overlap by an optional distributed lock. A job can run
// identically in-process or be triggered externally by calling Run on it.
type Scheduler struct {
	cron *cron.Cron
	lock red.Locker
	log  *zerolog.Logger
}

func New(lock red.Locker, logger *zerolog.Logger) *Scheduler {
	slog := logger.With().Str("component", "Scheduler").Logger()
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	return &Scheduler{cron: c, lock: lock, log: &slog}
}

// Schedule registers job to run per spec with a per-run timeout.
func (s *Scheduler) Schedule(spec string, job Job, timeout time.Duration) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.runOnce(ctx, job, timeout)
	})
	if err == nil {
		s.log.Info().Str("job", job.Name()).Str("spec", spec).Msg("job scheduled")
	}
	return err
}

func (s *Scheduler) runOnce(ctx context.Context, job Job, ttl time.Duration) {
	if s.lock != nil {
		token, err := s.lock.TryLock(ctx, "sched:"+job.Name(), ttl)
		if err != nil {
			if errors.Is(err, red.ErrLockHeld) {
				metrics.IncSweepSkipped()
				s.log.Warn().Str("job", job.Name()).Msg("previous run still holds the lock; skipping")
			} else {
				s.log.Error().Err(err).Str("job", job.Name()).Msg("lock acquisition failed; skipping run")
			}
			return
		}
		defer func() {
			if err := s.lock.Unlock(ctx, "sched:"+job.Name(), token); err != nil {
				s.log.Error().Err(err).Str("job", job.Name()).Msg("lock release failed")
			}
		}()
	}

	if err := job.Run(ctx); err != nil {
		s.log.Error().Err(err).Str("job", job.Name()).Msg("job run failed")
	}
}

// Start begins the cron loop in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}
