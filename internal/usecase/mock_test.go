//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"creator-subscription-service/internal/domain"
	"creator-subscription-service/internal/domain/model"
	"creator-subscription-service/internal/domain/ports/repository"
)

// ---- Mock PlanRepository ----

type MockPlanRepo struct {
	mu   sync.Mutex
	data map[string]*model.Plan

	SaveFunc          func(ctx context.Context, tx repository.Tx, p *model.Plan) error
	FindByIDFunc      func(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error)
	ListAllFunc       func(ctx context.Context, tx repository.Tx) ([]*model.Plan, error)
	ListByCreatorFunc func(ctx context.Context, tx repository.Tx, creatorID string) ([]*model.Plan, error)
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{data: map[string]*model.Plan{}}
}

func (r *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	if r.ListAllFunc != nil {
		return r.ListAllFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Plan, 0, len(r.data))
	for _, p := range r.data {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockPlanRepo) ListByCreator(ctx context.Context, tx repository.Tx, creatorID string) ([]*model.Plan, error) {
	if r.ListByCreatorFunc != nil {
		return r.ListByCreatorFunc(ctx, tx, creatorID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Plan
	for _, p := range r.data {
		if p.CreatorID == creatorID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu   sync.Mutex
	data map[string]*model.Subscription // by id

	SaveFunc               func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	FindByIDFunc           func(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error)
	ListByUserFunc         func(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error)
	LockUserFunc           func(ctx context.Context, tx repository.Tx, userID string) error
	FindAllFunc            func(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error)
	FindAllActiveFunc      func(ctx context.Context, tx repository.Tx, today time.Time) ([]*model.Subscription, error)
	FindAllSoonExpiredFunc func(ctx context.Context, tx repository.Tx, today, until time.Time) ([]*model.Subscription, error)
	FindAllCancelledFunc   func(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error)
	FindAllExpiredFunc     func(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error)
	CountActiveFunc        func(ctx context.Context, tx repository.Tx) (int, error)
	SumMonthlyRevenueFunc  func(ctx context.Context, tx repository.Tx, monthStart, nextMonth time.Time) (decimal.Decimal, error)
	CountExpiringSoonFunc  func(ctx context.Context, tx repository.Tx, today, until time.Time) (int, error)
	CountNewTodayFunc      func(ctx context.Context, tx repository.Tx, today time.Time) (int, error)
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{data: map[string]*model.Subscription{}}
}

func (r *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	cp := *s
	r.data[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.data[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	if r.ListByUserFunc != nil {
		return r.ListByUserFunc(ctx, tx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Subscription
	for _, s := range r.data {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockSubscriptionRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	if r.LockUserFunc != nil {
		return r.LockUserFunc(ctx, tx, userID)
	}
	return nil
}

func (r *MockSubscriptionRepo) FindAll(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	if r.FindAllFunc != nil {
		return r.FindAllFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Subscription, 0, len(r.data))
	for _, s := range r.data {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockSubscriptionRepo) FindAllActive(ctx context.Context, tx repository.Tx, today time.Time) ([]*model.Subscription, error) {
	if r.FindAllActiveFunc != nil {
		return r.FindAllActiveFunc(ctx, tx, today)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Subscription
	for _, s := range r.data {
		if s.Status == model.SubscriptionStatusActive && !s.EndDate.Before(today) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockSubscriptionRepo) FindAllSoonExpired(ctx context.Context, tx repository.Tx, today, until time.Time) ([]*model.Subscription, error) {
	if r.FindAllSoonExpiredFunc != nil {
		return r.FindAllSoonExpiredFunc(ctx, tx, today, until)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Subscription
	for _, s := range r.data {
		if s.Status == model.SubscriptionStatusActive && !s.EndDate.Before(today) && !s.EndDate.After(until) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockSubscriptionRepo) FindAllCancelled(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	if r.FindAllCancelledFunc != nil {
		return r.FindAllCancelledFunc(ctx, tx)
	}
	return r.findByStatus(model.SubscriptionStatusCancelled), nil
}

func (r *MockSubscriptionRepo) FindAllExpired(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	if r.FindAllExpiredFunc != nil {
		return r.FindAllExpiredFunc(ctx, tx)
	}
	return r.findByStatus(model.SubscriptionStatusExpired), nil
}

func (r *MockSubscriptionRepo) findByStatus(st model.SubscriptionStatus) []*model.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Subscription
	for _, s := range r.data {
		if s.Status == st {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out
}

func (r *MockSubscriptionRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	if r.CountActiveFunc != nil {
		return r.CountActiveFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.data {
		if s.Status == model.SubscriptionStatusActive {
			n++
		}
	}
	return n, nil
}

func (r *MockSubscriptionRepo) SumMonthlyRevenue(ctx context.Context, tx repository.Tx, monthStart, nextMonth time.Time) (decimal.Decimal, error) {
	if r.SumMonthlyRevenueFunc != nil {
		return r.SumMonthlyRevenueFunc(ctx, tx, monthStart, nextMonth)
	}
	return decimal.Zero, nil
}

func (r *MockSubscriptionRepo) CountExpiringSoon(ctx context.Context, tx repository.Tx, today, until time.Time) (int, error) {
	if r.CountExpiringSoonFunc != nil {
		return r.CountExpiringSoonFunc(ctx, tx, today, until)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.data {
		if s.Status == model.SubscriptionStatusActive && !s.EndDate.Before(today) && !s.EndDate.After(until) {
			n++
		}
	}
	return n, nil
}

func (r *MockSubscriptionRepo) CountNewToday(ctx context.Context, tx repository.Tx, today time.Time) (int, error) {
	if r.CountNewTodayFunc != nil {
		return r.CountNewTodayFunc(ctx, tx, today)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.data {
		if s.StartDate.Equal(today) {
			n++
		}
	}
	return n, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

// WithTx runs the function immediately with NoTX unless a test overrides
// WithTxFunc to verify transactional behaviour.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
