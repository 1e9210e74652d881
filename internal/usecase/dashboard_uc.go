package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"creator-subscription-service/internal/domain"
	"creator-subscription-service/internal/domain/model"
	"creator-subscription-service/internal/domain/ports/repository"
	"creator-subscription-service/internal/infra/logging"
)

// Filter values accepted by List and the CSV export.
const (
	FilterActive      = "active"
	FilterCancelled   = "cancelled"
	FilterExpired     = "expired"
	FilterSoonExpired = "soon-expired"
	FilterAll         = "all"
)

// ListItem is a dashboard presentation row: a subscription joined with its
// plan plus the date-relative derived fields. Rows are recomputed on every
// query and never persisted.
type ListItem struct {
	SubscriptionID string
	FanName        string
	CreatorID      string
	CreatorName    string
	PlanName       string
	Price          decimal.Decimal
	DurationDays   int
	StartDate      time.Time
	EndDate        time.Time
	DurationText   string
	Status         string
	AutoRenewal    bool
	RemainingDays  int
}

// Compile-time check
var _ DashboardUseCase = (*dashboardUC)(nil)

// DashboardUseCase is the read side for the operator dashboard: bucketed
// listing, single-row lookup, the one mutable dashboard field
// (auto-renewal) and the dashboard cancel path.
type DashboardUseCase interface {
	List(ctx context.Context, filter string) ([]*ListItem, error)
	GetByID(ctx context.Context, id string) (*ListItem, error)
	Update(ctx context.Context, id string, autoRenewal *bool) (*ListItem, error)
	Cancel(ctx context.Context, id string) (*ListItem, error)
}

type dashboardUC struct {
	subs  repository.SubscriptionRepository
	plans repository.PlanRepository
	log   *zerolog.Logger
}

func NewDashboardUseCase(subs repository.SubscriptionRepository, plans repository.PlanRepository, logger *zerolog.Logger) *dashboardUC {
	return &dashboardUC{subs: subs, plans: plans, log: logger}
}

// List returns presentation rows for one filter bucket. The storage layer
// pre-filters every bucket except "all" so irrelevant rows are never
// loaded. An unknown filter returns ErrInvalidArgument.
func (uc *dashboardUC) List(ctx context.Context, filter string) ([]*ListItem, error) {
	defer logging.TraceDuration(uc.log, "DashboardUC.List")()

	now := time.Now()
	today := model.DateOnly(now)

	var (
		subs []*model.Subscription
		err  error
	)
	switch filter {
	case FilterActive:
		subs, err = uc.subs.FindAllActive(ctx, repository.NoTX, today)
	case FilterCancelled:
		subs, err = uc.subs.FindAllCancelled(ctx, repository.NoTX)
	case FilterExpired:
		subs, err = uc.subs.FindAllExpired(ctx, repository.NoTX)
	case FilterSoonExpired:
		until := today.AddDate(0, 0, model.SoonExpiredWindowDays)
		subs, err = uc.subs.FindAllSoonExpired(ctx, repository.NoTX, today, until)
	case FilterAll:
		subs, err = uc.subs.FindAll(ctx, repository.NoTX)
	default:
		return nil, domain.ErrInvalidArgument
	}
	if err != nil {
		return nil, err
	}

	return uc.toItems(ctx, subs, now)
}

func (uc *dashboardUC) GetByID(ctx context.Context, id string) (*ListItem, error) {
	defer logging.TraceDuration(uc.log, "DashboardUC.GetByID")()

	sub, err := uc.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	return uc.toItem(ctx, sub, time.Now())
}

// Update changes the auto-renewal flag, the only subscription field the
// dashboard may edit. A nil value leaves the flag unchanged.
func (uc *dashboardUC) Update(ctx context.Context, id string, autoRenewal *bool) (*ListItem, error) {
	defer logging.TraceDuration(uc.log, "DashboardUC.Update")()

	sub, err := uc.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if autoRenewal != nil {
		sub.AutoRenewal = *autoRenewal
		if err := uc.subs.Save(ctx, repository.NoTX, sub); err != nil {
			return nil, err
		}
	}
	return uc.toItem(ctx, sub, time.Now())
}

// Cancel terminates the subscription through the dashboard path and
// returns the refreshed row.
func (uc *dashboardUC) Cancel(ctx context.Context, id string) (*ListItem, error) {
	defer logging.TraceDuration(uc.log, "DashboardUC.Cancel")()

	sub, err := uc.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	sub.Cancel()
	if err := uc.subs.Save(ctx, repository.NoTX, sub); err != nil {
		return nil, err
	}
	return uc.toItem(ctx, sub, time.Now())
}

func (uc *dashboardUC) toItems(ctx context.Context, subs []*model.Subscription, now time.Time) ([]*ListItem, error) {
	items := make([]*ListItem, 0, len(subs))
	// Plans are resolved lazily through the catalog; memoize per call since
	// many subscriptions share a plan.
	cache := make(map[string]*model.Plan)
	for _, s := range subs {
		plan, ok := cache[s.PlanID]
		if !ok {
			p, err := uc.plans.FindByID(ctx, repository.NoTX, s.PlanID)
			if err != nil {
				return nil, err
			}
			cache[s.PlanID] = p
			plan = p
		}
		items = append(items, newListItem(s, plan, now))
	}
	return items, nil
}

func (uc *dashboardUC) toItem(ctx context.Context, s *model.Subscription, now time.Time) (*ListItem, error) {
	plan, err := uc.plans.FindByID(ctx, repository.NoTX, s.PlanID)
	if err != nil {
		return nil, err
	}
	return newListItem(s, plan, now), nil
}

// newListItem derives all presentation fields relative to now.
func newListItem(s *model.Subscription, p *model.Plan, now time.Time) *ListItem {
	return &ListItem{
		SubscriptionID: s.ID,
		FanName:        s.FanName(),
		CreatorID:      p.CreatorID,
		CreatorName:    p.CreatorName(),
		PlanName:       p.Name,
		Price:          p.Price,
		DurationDays:   p.DurationDays,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		DurationText:   s.DurationText(),
		Status:         s.StatusLabel(now),
		AutoRenewal:    s.AutoRenewal,
		RemainingDays:  s.RemainingDays(now),
	}
}
