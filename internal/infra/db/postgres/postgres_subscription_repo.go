package postgres

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"creator-subscription-service/internal/domain"
	"creator-subscription-service/internal/domain/model"
	"creator-subscription-service/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subColumns = `id, user_id, plan_id, first_name, last_name, start_date, end_date, status, auto_renewal, created_at`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, user_id, plan_id, first_name, last_name, start_date, end_date, status, auto_renewal, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  start_date=$6, end_date=$7, status=$8, auto_renewal=$9;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.PlanID, s.FirstName, s.LastName,
		s.StartDate, s.EndDate, string(s.Status), s.AutoRenewal, s.CreatedAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	const q = `SELECT ` + subColumns + ` FROM subscriptions WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *subscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	const q = `SELECT ` + subColumns + ` FROM subscriptions WHERE user_id=$1 ORDER BY created_at;`
	return r.queryMany(ctx, tx, q, userID)
}

// LockUser takes a per-user advisory lock bound to the surrounding
// transaction, serializing concurrent Subscribe calls for one user.
func (r *subscriptionRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	if tx == nil {
		return domain.ErrInvalidExecContext
	}
	_, err := execSQL(ctx, r.pool, tx, `SELECT pg_advisory_xact_lock($1);`, hashToInt64(userID))
	return err
}

func hashToInt64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() & ((1 << 63) - 1))
}

func (r *subscriptionRepo) FindAll(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	const q = `SELECT ` + subColumns + ` FROM subscriptions ORDER BY created_at;`
	return r.queryMany(ctx, tx, q)
}

func (r *subscriptionRepo) FindAllActive(ctx context.Context, tx repository.Tx, today time.Time) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subColumns + `
  FROM subscriptions
 WHERE status='active' AND end_date >= $1
 ORDER BY end_date;`
	return r.queryMany(ctx, tx, q, today)
}

func (r *subscriptionRepo) FindAllSoonExpired(ctx context.Context, tx repository.Tx, today, until time.Time) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subColumns + `
  FROM subscriptions
 WHERE status='active' AND end_date BETWEEN $1 AND $2
 ORDER BY end_date;`
	return r.queryMany(ctx, tx, q, today, until)
}

func (r *subscriptionRepo) FindAllCancelled(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	const q = `SELECT ` + subColumns + ` FROM subscriptions WHERE status='cancelled' ORDER BY created_at;`
	return r.queryMany(ctx, tx, q)
}

func (r *subscriptionRepo) FindAllExpired(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	const q = `SELECT ` + subColumns + ` FROM subscriptions WHERE status='expired' ORDER BY created_at;`
	return r.queryMany(ctx, tx, q)
}

func (r *subscriptionRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM subscriptions WHERE status='active';`
	return r.count(ctx, tx, q)
}

func (r *subscriptionRepo) SumMonthlyRevenue(ctx context.Context, tx repository.Tx, monthStart, nextMonth time.Time) (decimal.Decimal, error) {
	const q = `
SELECT COALESCE(SUM(p.price), 0)::text
  FROM subscriptions s
  JOIN plans p ON s.plan_id = p.id
 WHERE s.status='active'
   AND s.start_date >= $1
   AND s.start_date < $2;`
	row, err := pickRow(ctx, r.pool, tx, q, monthStart, nextMonth)
	if err != nil {
		return decimal.Zero, err
	}
	var sumStr string
	if err := row.Scan(&sumStr); err != nil {
		return decimal.Zero, domain.ErrReadDatabaseRow
	}
	sum, err := decimal.NewFromString(sumStr)
	if err != nil {
		return decimal.Zero, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *subscriptionRepo) CountExpiringSoon(ctx context.Context, tx repository.Tx, today, until time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM subscriptions WHERE status='active' AND end_date BETWEEN $1 AND $2;`
	return r.count(ctx, tx, q, today, until)
}

func (r *subscriptionRepo) CountNewToday(ctx context.Context, tx repository.Tx, today time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM subscriptions WHERE start_date = $1;`
	return r.count(ctx, tx, q, today)
}

func (r *subscriptionRepo) count(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *subscriptionRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) (*model.Subscription, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	s, err := scanSub(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *subscriptionRepo) queryMany(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) ([]*model.Subscription, error) {
	rows, err := queryRows(ctx, r.pool, tx, sql, args...)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSub(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanSub(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	var status string
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &s.FirstName, &s.LastName,
		&s.StartDate, &s.EndDate, &status, &s.AutoRenewal, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Status = model.SubscriptionStatus(status)
	return s, nil
}
