package repository

import (
	"context"

	"creator-subscription-service/internal/domain/model"
)

// PlanRepository persists the plan catalog. Plans are created once and
// looked up; there is no update or delete path.
type PlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Plan, error)
	ListByCreator(ctx context.Context, tx Tx, creatorID string) ([]*model.Plan, error)
}
