// internal/repository/postgres/subscription_repo.go
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

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// joined query so callers always see the plan alongside the subscription
const subscriptionSelect = `
	SELECT s.id, s.user_id, s.plan_id, s.active, s.start_date, s.end_date,
	       s.created_at, s.updated_at,
	       p.id, p.code, p.name, p.description, p.price, p.currency, p.period,
	       p.max_scrapes, p.active, p.created_at, p.updated_at
	FROM subscriptions s
	JOIN subscription_plans p ON p.id = s.plan_id
`

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var s subscription.Subscription
	var p subscription.Plan
	err := row.Scan(
		&s.ID, &s.UserID, &s.PlanID, &s.Active, &s.StartDate, &s.EndDate,
		&s.CreatedAt, &s.UpdatedAt,
		&p.ID, &p.Code, &p.Name, &p.Description, &p.Price, &p.Currency,
		&p.Period, &p.MaxScrapes, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}
	s.Plan = &p
	return &s, nil
}

// Create inserts a subscription record. New subscriptions start inactive
// and are switched on when the payment settles.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, plan_id, active, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		sub.UserID, sub.PlanID, sub.Active, sub.StartDate, sub.EndDate,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// FindByID retrieves a subscription with its plan.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	return scanSubscription(r.db.QueryRow(ctx, subscriptionSelect+` WHERE s.id = $1`, id))
}

// FindByUser returns all of a user's subscriptions, newest first.
func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID int64) ([]*subscription.Subscription, error) {
	rows, err := r.db.Query(ctx, subscriptionSelect+` WHERE s.user_id = $1 ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// SetActive flips the active flag and updates the validity window.
func (r *SubscriptionRepository) SetActive(ctx context.Context, id int64, active bool, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET active = $2, start_date = $3, end_date = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, id, active, sub.StartDate, sub.EndDate).
		Scan(&sub.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	return nil
}

// Deactivate switches a subscription off without touching its dates.
func (r *SubscriptionRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET active = false, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// CountActive returns how many subscriptions are currently switched on.
func (r *SubscriptionRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE active = true AND (end_date IS NULL OR end_date >= now())`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return count, nil
}
