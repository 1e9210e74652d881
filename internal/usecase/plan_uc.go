package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"creator-subscription-service/internal/domain/model"
	"creator-subscription-service/internal/domain/ports/repository"
	"creator-subscription-service/internal/infra/logging"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

// PlanUseCase manages the plan catalog.
type PlanUseCase interface {
	Create(ctx context.Context, name, description string, price decimal.Decimal, durationDays int, creatorID, firstName, lastName string) (*model.Plan, error)
	Get(ctx context.Context, id string) (*model.Plan, error)
	List(ctx context.Context) ([]*model.Plan, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*model.Plan, error)
}

type planUC struct {
	plans repository.PlanRepository
	log   *zerolog.Logger
}

func NewPlanUseCase(plans repository.PlanRepository, logger *zerolog.Logger) *planUC {
	return &planUC{plans: plans, log: logger}
}

// Create validates, constructs and persists a new plan.
func (uc *planUC) Create(ctx context.Context, name, description string, price decimal.Decimal, durationDays int, creatorID, firstName, lastName string) (*model.Plan, error) {
	defer logging.TraceDuration(uc.log, "PlanUC.Create")()

	plan, err := model.NewPlan(uuid.NewString(), name, description, price, durationDays, creatorID, firstName, lastName)
	if err != nil {
		return nil, err
	}
	if err := uc.plans.Save(ctx, repository.NoTX, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (uc *planUC) Get(ctx context.Context, id string) (*model.Plan, error) {
	return uc.plans.FindByID(ctx, repository.NoTX, id)
}

func (uc *planUC) List(ctx context.Context) ([]*model.Plan, error) {
	return uc.plans.ListAll(ctx, repository.NoTX)
}

func (uc *planUC) ListByCreator(ctx context.Context, creatorID string) ([]*model.Plan, error) {
	return uc.plans.ListByCreator(ctx, repository.NoTX, creatorID)
}
