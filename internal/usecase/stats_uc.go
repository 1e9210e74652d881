package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"creator-subscription-service/internal/domain/model"
	"creator-subscription-service/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase answers the dashboard's scalar queries. Every value is
// computed against the store at call time.
type StatsUseCase interface {
	TotalActive(ctx context.Context) (int, error)
	MonthlyRevenue(ctx context.Context) (decimal.Decimal, error)
	ExpiringSoon(ctx context.Context) (int, error)
	NewToday(ctx context.Context) (int, error)
}

type statsUC struct {
	subs repository.SubscriptionRepository
	log  *zerolog.Logger
}

func NewStatsUseCase(subs repository.SubscriptionRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{subs: subs, log: logger}
}

func (s *statsUC) TotalActive(ctx context.Context) (int, error) {
	return s.subs.CountActive(ctx, repository.NoTX)
}

// MonthlyRevenue sums plan prices over active subscriptions whose start
// date falls within the current calendar month.
func (s *statsUC) MonthlyRevenue(ctx context.Context) (decimal.Decimal, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)
	return s.subs.SumMonthlyRevenue(ctx, repository.NoTX, monthStart, nextMonth)
}

func (s *statsUC) ExpiringSoon(ctx context.Context) (int, error) {
	today := model.DateOnly(time.Now())
	until := today.AddDate(0, 0, model.SoonExpiredWindowDays)
	return s.subs.CountExpiringSoon(ctx, repository.NoTX, today, until)
}

func (s *statsUC) NewToday(ctx context.Context) (int, error) {
	return s.subs.CountNewToday(ctx, repository.NoTX, model.DateOnly(time.Now()))
}
