// internal/repository/postgres/plan_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"leadscout-service/internal/domain/subscription"
	xerrors "leadscout-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlanRepository struct {
	db *pgxpool.Pool
}

func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, code, name, description, price, currency, period,
	max_scrapes, active, created_at, updated_at`

func scanPlan(row pgx.Row) (*subscription.Plan, error) {
	var p subscription.Plan
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.Price, &p.Currency,
		&p.Period, &p.MaxScrapes, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan plan: %w", err)
	}
	return &p, nil
}

// Create inserts a new plan.
func (r *PlanRepository) Create(ctx context.Context, plan *subscription.Plan) error {
	query := `
		INSERT INTO subscription_plans (code, name, description, price, currency, period, max_scrapes, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		plan.Code, plan.Name, plan.Description, plan.Price, plan.Currency,
		plan.Period, plan.MaxScrapes, plan.Active,
	).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

// FindByID retrieves a plan by ID.
func (r *PlanRepository) FindByID(ctx context.Context, id int64) (*subscription.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`
	return scanPlan(r.db.QueryRow(ctx, query, id))
}

// FindByCode retrieves a plan by its unique code.
func (r *PlanRepository) FindByCode(ctx context.Context, code string) (*subscription.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE code = $1`
	return scanPlan(r.db.QueryRow(ctx, query, code))
}

// List returns plans, optionally only those open for purchase.
func (r *PlanRepository) List(ctx context.Context, activeOnly bool) ([]*subscription.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY price ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*subscription.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	return plans, rows.Err()
}

// Update overwrites the mutable fields of a plan.
func (r *PlanRepository) Update(ctx context.Context, plan *subscription.Plan) error {
	query := `
		UPDATE subscription_plans
		SET name = $2, description = $3, price = $4, currency = $5,
		    period = $6, max_scrapes = $7, active = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		plan.ID, plan.Name, plan.Description, plan.Price, plan.Currency,
		plan.Period, plan.MaxScrapes, plan.Active,
	).Scan(&plan.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	return nil
}
