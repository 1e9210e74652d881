package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"creator-subscription-service/internal/domain/model"
)

// SubscriptionRepository persists subscription records and answers the
// dashboard's pre-filtered bucket and aggregate queries. All date
// parameters are UTC midnights; range bounds are inclusive unless noted.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)

	// LockUser serializes concurrent writers for one user within the
	// surrounding transaction. It must be called with a real Tx.
	LockUser(ctx context.Context, tx Tx, userID string) error

	// Dashboard buckets. FindAll returns every record unfiltered.
	FindAll(ctx context.Context, tx Tx) ([]*model.Subscription, error)
	FindAllActive(ctx context.Context, tx Tx, today time.Time) ([]*model.Subscription, error)
	FindAllSoonExpired(ctx context.Context, tx Tx, today, until time.Time) ([]*model.Subscription, error)
	FindAllCancelled(ctx context.Context, tx Tx) ([]*model.Subscription, error)
	FindAllExpired(ctx context.Context, tx Tx) ([]*model.Subscription, error)

	// Scalar stats.
	CountActive(ctx context.Context, tx Tx) (int, error)
	SumMonthlyRevenue(ctx context.Context, tx Tx, monthStart, nextMonth time.Time) (decimal.Decimal, error)
	CountExpiringSoon(ctx context.Context, tx Tx, today, until time.Time) (int, error)
	CountNewToday(ctx context.Context, tx Tx, today time.Time) (int, error)
}
