//go:build !integration

package web

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"creator-subscription-service/internal/domain"
	"creator-subscription-service/internal/domain/model"
	"creator-subscription-service/internal/domain/ports/repository"
	"creator-subscription-service/internal/usecase"
)

const testSecret = "test-secret"

// --- Mock Repositories (Ports) ---

type mockPlanRepo struct {
	mu    sync.Mutex
	plans map[string]*model.Plan

	SaveError error
	ListError error
}

var _ repository.PlanRepository = (*mockPlanRepo)(nil)

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: map[string]*model.Plan{}}
}

func (m *mockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

func (m *mockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.plans[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockPlanRepo) ListByCreator(ctx context.Context, tx repository.Tx, creatorID string) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Plan
	for _, p := range m.plans {
		if p.CreatorID == creatorID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type mockSubRepo struct {
	mu   sync.Mutex
	subs map[string]*model.Subscription

	SaveError error
}

var _ repository.SubscriptionRepository = (*mockSubRepo)(nil)

func newMockSubRepo() *mockSubRepo {
	return &mockSubRepo{subs: map[string]*model.Subscription{}}
}

func (m *mockSubRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.subs[s.ID] = &cp
	return nil
}

func (m *mockSubRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockSubRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSubRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	return nil
}

func (m *mockSubRepo) FindAll(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Subscription, 0, len(m.subs))
	for _, s := range m.subs {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockSubRepo) FindAllActive(ctx context.Context, tx repository.Tx, today time.Time) ([]*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.Status == model.SubscriptionStatusActive && !s.EndDate.Before(today) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSubRepo) FindAllSoonExpired(ctx context.Context, tx repository.Tx, today, until time.Time) ([]*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.Status == model.SubscriptionStatusActive && !s.EndDate.Before(today) && !s.EndDate.After(until) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSubRepo) FindAllCancelled(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	return m.findByStatus(model.SubscriptionStatusCancelled), nil
}

func (m *mockSubRepo) FindAllExpired(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	return m.findByStatus(model.SubscriptionStatusExpired), nil
}

func (m *mockSubRepo) findByStatus(st model.SubscriptionStatus) []*model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.Status == st {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out
}

func (m *mockSubRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subs {
		if s.Status == model.SubscriptionStatusActive {
			n++
		}
	}
	return n, nil
}

func (m *mockSubRepo) SumMonthlyRevenue(ctx context.Context, tx repository.Tx, monthStart, nextMonth time.Time) (decimal.Decimal, error) {
	return decimal.RequireFromString("19.98"), nil
}

func (m *mockSubRepo) CountExpiringSoon(ctx context.Context, tx repository.Tx, today, until time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subs {
		if s.Status == model.SubscriptionStatusActive && !s.EndDate.Before(today) && !s.EndDate.After(until) {
			n++
		}
	}
	return n, nil
}

func (m *mockSubRepo) CountNewToday(ctx context.Context, tx repository.Tx, today time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subs {
		if s.StartDate.Equal(today) {
			n++
		}
	}
	return n, nil
}

type mockTxManager struct{}

var _ repository.TransactionManager = (*mockTxManager)(nil)

func (m *mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// newTestServer wires real use cases over the in-memory repositories so
// handler tests exercise the full request path below the transport.
func newTestServer(planRepo *mockPlanRepo, subRepo *mockSubRepo) *Server {
	logger := newTestLogger()
	planUC := usecase.NewPlanUseCase(planRepo, logger)
	subUC := usecase.NewSubscriptionUseCase(subRepo, planRepo, &mockTxManager{}, logger)
	dashboardUC := usecase.NewDashboardUseCase(subRepo, planRepo, logger)
	statsUC := usecase.NewStatsUseCase(subRepo, logger)
	exportUC := usecase.NewExportUseCase(dashboardUC, logger)
	auth := NewAuthenticator(testSecret, logger)
	return NewServer(planUC, subUC, dashboardUC, statsUC, exportUC, auth, logger)
}

// signToken mints an HS256 bearer token the way the identity provider does.
func signToken(t *testing.T, userID, firstName, lastName string) string {
	t.Helper()
	claims := identityClaims{
		FirstName: firstName,
		LastName:  lastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}
