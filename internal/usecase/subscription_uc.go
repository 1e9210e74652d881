package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"creator-subscription-service/internal/domain"
	"creator-subscription-service/internal/domain/model"
	"creator-subscription-service/internal/domain/ports/repository"
	"creator-subscription-service/internal/infra/logging"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase owns the subscription lifecycle: creation, the
// one-active-subscription-per-creator rule and cancellation.
type SubscriptionUseCase interface {
	Subscribe(ctx context.Context, userID, planID, firstName, lastName string, autoRenewal bool) (*model.Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Subscription, error)
	Cancel(ctx context.Context, id string) error
}

type subscriptionUC struct {
	plans repository.PlanRepository
	subs  repository.SubscriptionRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, plans repository.PlanRepository, tm repository.TransactionManager, logger *zerolog.Logger) *subscriptionUC {
	return &subscriptionUC{plans: plans, subs: subs, tm: tm, log: logger}
}

// Subscribe creates an active subscription to the given plan.
// Rules:
//   - The plan must exist (ErrNotFound otherwise).
//   - A user may hold at most one active subscription per creator;
//     violating that returns ErrConflict.
//
// The existence check and the insert run inside one transaction with a
// per-user advisory lock, so two concurrent Subscribe calls for the same
// user cannot both pass the check.
func (uc *subscriptionUC) Subscribe(ctx context.Context, userID, planID, firstName, lastName string, autoRenewal bool) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Subscribe")()

	plan, err := uc.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, err
	}

	var created *model.Subscription
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err = uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.subs.LockUser(ctx, tx, userID); err != nil {
			return err
		}

		existing, err := uc.subs.ListByUser(ctx, tx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		for _, s := range existing {
			if !s.IsActive() {
				continue
			}
			p, err := uc.plans.FindByID(ctx, tx, s.PlanID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return err
			}
			if p.CreatorID == plan.CreatorID {
				return domain.ErrConflict
			}
		}

		sub, err := model.NewSubscription(uuid.NewString(), userID, plan, firstName, lastName, autoRenewal, time.Now())
		if err != nil {
			return err
		}
		if err := uc.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		created = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("user_id", userID).Str("plan_id", planID).Str("subscription_id", created.ID).Msg("subscription created")
	return created, nil
}

// ListByUser returns all of a user's subscriptions. A user with zero
// records gets ErrNotFound rather than an empty list, matching the
// behaviour callers already depend on.
func (uc *subscriptionUC) ListByUser(ctx context.Context, userID string) ([]*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.ListByUser")()

	subs, err := uc.subs.ListByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, domain.ErrNotFound
	}
	return subs, nil
}

// Cancel marks the subscription cancelled. The transition is terminal;
// cancelling an already cancelled subscription is a harmless no-op.
func (uc *subscriptionUC) Cancel(ctx context.Context, id string) error {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Cancel")()

	sub, err := uc.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	sub.Cancel()
	if err := uc.subs.Save(ctx, repository.NoTX, sub); err != nil {
		return err
	}
	uc.log.Info().Str("subscription_id", id).Msg("subscription cancelled")
	return nil
}
