package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"creator-subscription-service/internal/domain/model"
	"creator-subscription-service/internal/domain/ports/repository"
	"creator-subscription-service/internal/infra/metrics"
)

// RenewalWorker is the daily sweep over the full subscription set.
// Active subscriptions past their end date are auto-renewed when the flag
// is set and expired otherwise. One record failing to persist does not
// stop the sweep; the failure is logged and counted.
type RenewalWorker struct {
	subs  repository.SubscriptionRepository
	plans repository.PlanRepository
	log   *zerolog.Logger
}

func NewRenewalWorker(subs repository.SubscriptionRepository, plans repository.PlanRepository, logger *zerolog.Logger) *RenewalWorker {
	wlog := logger.With().Str("component", "RenewalWorker").Logger()
	return &RenewalWorker{subs: subs, plans: plans, log: &wlog}
}

// Name identifies the worker to the scheduler and its lock key.
func (w *RenewalWorker) Name() string { return "renewal-sweep" }

// Run executes one sweep and records metrics. Used as the scheduler job.
func (w *RenewalWorker) Run(ctx context.Context) error {
	start := time.Now()
	renewed, expired, err := w.Sweep(ctx)
	metrics.ObserveSweepDuration(time.Since(start))
	if err != nil {
		return err
	}
	if renewed > 0 {
		metrics.IncSubscriptionsRenewed(renewed)
	}
	if expired > 0 {
		metrics.IncSubscriptionsExpired(expired)
	}
	w.log.Info().Int("renewed", renewed).Int("expired", expired).Msg("renewal sweep finished")
	return nil
}

// Sweep walks every subscription once and transitions those that crossed
// their end date. It returns how many records were renewed and expired.
// Only a failure to load the record set aborts the sweep.
func (w *RenewalWorker) Sweep(ctx context.Context) (renewed, expired int, err error) {
	subs, err := w.subs.FindAll(ctx, repository.NoTX)
	if err != nil {
		return 0, 0, err
	}

	today := model.DateOnly(time.Now())
	for _, s := range subs {
		if !s.Due(today) {
			continue
		}

		if s.AutoRenewal {
			plan, err := w.plans.FindByID(ctx, repository.NoTX, s.PlanID)
			if err != nil {
				w.log.Error().Err(err).Str("subscription_id", s.ID).Str("plan_id", s.PlanID).Msg("sweep: plan lookup failed")
				metrics.IncSweepRecordFailures()
				continue
			}
			s.Renew(plan, today)
			if err := w.subs.Save(ctx, repository.NoTX, s); err != nil {
				w.log.Error().Err(err).Str("subscription_id", s.ID).Msg("sweep: renew save failed")
				metrics.IncSweepRecordFailures()
				continue
			}
			renewed++
		} else {
			s.Expire()
			if err := w.subs.Save(ctx, repository.NoTX, s); err != nil {
				w.log.Error().Err(err).Str("subscription_id", s.ID).Msg("sweep: expire save failed")
				metrics.IncSweepRecordFailures()
				continue
			}
			expired++
		}
	}
	return renewed, expired, nil
}
