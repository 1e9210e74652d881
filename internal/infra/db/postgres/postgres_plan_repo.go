package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"creator-subscription-service/internal/domain"
	"creator-subscription-service/internal/domain/model"
	"creator-subscription-service/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.PlanRepository = (*PostgresPlanRepo)(nil)

type PostgresPlanRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPlanRepo(pool *pgxpool.Pool) *PostgresPlanRepo {
	return &PostgresPlanRepo{pool: pool}
}

// Price travels as text: pgx v4 has no native shopspring codec.
const planColumns = `id, name, description, price::text, duration_days, creator_id, first_name, last_name, created_at`

func (r *PostgresPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	const sql = `
INSERT INTO plans (id, name, description, price, duration_days, creator_id, first_name, last_name, created_at)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, sql,
		plan.ID, plan.Name, plan.Description, plan.Price.String(), plan.DurationDays,
		plan.CreatorID, plan.FirstName, plan.LastName, plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func (r *PostgresPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	const sql = `SELECT ` + planColumns + ` FROM plans WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, sql, id)
	if err != nil {
		return nil, err
	}
	p, err := scanPlan(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find plan by id: %w", err)
	}
	return p, nil
}

func (r *PostgresPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	const sql = `SELECT ` + planColumns + ` FROM plans ORDER BY created_at;`
	return r.list(ctx, tx, sql)
}

func (r *PostgresPlanRepo) ListByCreator(ctx context.Context, tx repository.Tx, creatorID string) ([]*model.Plan, error) {
	const sql = `SELECT ` + planColumns + ` FROM plans WHERE creator_id = $1 ORDER BY created_at;`
	return r.list(ctx, tx, sql, creatorID)
}

func (r *PostgresPlanRepo) list(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) ([]*model.Plan, error) {
	rows, err := queryRows(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	var out []*model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanPlan(row pgx.Row) (*model.Plan, error) {
	var (
		p        model.Plan
		priceStr string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &priceStr, &p.DurationDays,
		&p.CreatorID, &p.FirstName, &p.LastName, &p.CreatedAt); err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("parse plan price %q: %w", priceStr, err)
	}
	p.Price = price
	return &p, nil
}
