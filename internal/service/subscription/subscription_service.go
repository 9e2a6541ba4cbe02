// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"leadscout-service/internal/domain/subscription"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/events"

	"go.uber.org/zap"
)

// PlanRepository is the plan persistence surface.
type PlanRepository interface {
	Create(ctx context.Context, plan *subscription.Plan) error
	FindByID(ctx context.Context, id int64) (*subscription.Plan, error)
	List(ctx context.Context, activeOnly bool) ([]*subscription.Plan, error)
	Update(ctx context.Context, plan *subscription.Plan) error
}

// SubscriptionRepository is the subscription persistence surface.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *subscription.Subscription) error
	FindByID(ctx context.Context, id int64) (*subscription.Subscription, error)
	FindByUser(ctx context.Context, userID int64) ([]*subscription.Subscription, error)
	SetActive(ctx context.Context, id int64, active bool, sub *subscription.Subscription) error
	Deactivate(ctx context.Context, id int64) error
}

type Service struct {
	plans  PlanRepository
	subs   SubscriptionRepository
	bus    *events.Bus
	logger *zap.Logger
	now    func() time.Time
}

func NewService(plans PlanRepository, subs SubscriptionRepository, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{
		plans:  plans,
		subs:   subs,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// IsEntitled reports whether the user currently holds a valid subscription.
// The check is evaluated fresh on every call; any lookup failure denies.
func (s *Service) IsEntitled(ctx context.Context, userID int64) (bool, error) {
	subs, err := s.subs.FindByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	return subscription.AnyValidAt(subs, s.now()), nil
}

// MonthlyScrapeQuota returns the scrape allowance of the user's best valid
// subscription. Zero means unlimited; no valid subscription means no quota
// and is reported as forbidden by the caller's gate before this is reached.
func (s *Service) MonthlyScrapeQuota(ctx context.Context, userID int64) (int, error) {
	subs, err := s.subs.FindByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	now := s.now()
	quota := -1
	for _, sub := range subs {
		if !sub.ValidAt(now) || sub.Plan == nil {
			continue
		}
		if !sub.Plan.MaxScrapes.Valid {
			return 0, nil // unlimited plan wins
		}
		if int(sub.Plan.MaxScrapes.Int32) > quota {
			quota = int(sub.Plan.MaxScrapes.Int32)
		}
	}
	if quota < 0 {
		return 0, xerrors.ErrNotEntitled
	}
	return quota, nil
}

// ListForUser returns a user's subscriptions with their plans.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*subscription.Subscription, error) {
	return s.subs.FindByUser(ctx, userID)
}

// Subscribe creates a subscription in the inactive state. It becomes active,
// and starts counting its validity window, when its payment settles.
func (s *Service) Subscribe(ctx context.Context, userID int64, req *subscription.CreateSubscriptionRequest) (*subscription.Subscription, error) {
	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, xerrors.ErrInvalidInput
	}

	sub := &subscription.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		Active:    false,
		StartDate: s.now(),
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, err
	}
	sub.Plan = plan

	s.logger.Info("subscription created",
		zap.Int64("user_id", userID),
		zap.Int64("subscription_id", sub.ID),
		zap.String("plan", plan.Code))

	return sub, nil
}

// Activate switches a subscription on, setting the validity window from the
// plan's billing period, and notifies observers.
func (s *Service) Activate(ctx context.Context, subscriptionID int64) (*subscription.Subscription, error) {
	sub, err := s.subs.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	start := s.now()
	sub.Active = true
	sub.StartDate = start
	if d, bounded := sub.Plan.Duration(); bounded {
		end := start.Add(d)
		sub.EndDate = &end
	} else {
		sub.EndDate = nil
	}

	if err := s.subs.SetActive(ctx, sub.ID, true, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription activated",
		zap.Int64("user_id", sub.UserID),
		zap.Int64("subscription_id", sub.ID))

	s.bus.PublishSubscriptionChanged(sub.UserID)
	return sub, nil
}

// Cancel deactivates a subscription and notifies observers.
func (s *Service) Cancel(ctx context.Context, userID, subscriptionID int64, isAdmin bool) error {
	sub, err := s.subs.FindByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub.UserID != userID && !isAdmin {
		return xerrors.ErrForbidden
	}

	if err := s.subs.Deactivate(ctx, sub.ID); err != nil {
		return err
	}

	s.logger.Info("subscription cancelled",
		zap.Int64("user_id", sub.UserID),
		zap.Int64("subscription_id", sub.ID))

	s.bus.PublishSubscriptionChanged(sub.UserID)
	return nil
}

// ListPlans returns purchasable plans; admins may include retired ones.
func (s *Service) ListPlans(ctx context.Context, includeInactive bool) ([]*subscription.Plan, error) {
	return s.plans.List(ctx, !includeInactive)
}

// GetPlan returns one plan.
func (s *Service) GetPlan(ctx context.Context, id int64) (*subscription.Plan, error) {
	return s.plans.FindByID(ctx, id)
}

// CreatePlan adds a new plan (admin only).
func (s *Service) CreatePlan(ctx context.Context, req *subscription.CreatePlanRequest) (*subscription.Plan, error) {
	plan := &subscription.Plan{
		Code:        req.Code,
		Name:        req.Name,
		Description: nullString(req.Description),
		Price:       req.Price,
		Currency:    defaultCurrency(req.Currency),
		Period:      subscription.BillingPeriod(req.Period),
		MaxScrapes:  nullInt32(req.MaxScrapes),
		Active:      true,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("plan created", zap.String("code", plan.Code))
	return plan, nil
}

// UpdatePlan modifies an existing plan (admin only). Zero values leave the
// corresponding field unchanged.
func (s *Service) UpdatePlan(ctx context.Context, id int64, req *subscription.UpdatePlanRequest) (*subscription.Plan, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		plan.Name = req.Name
	}
	if req.Description != "" {
		plan.Description = nullString(req.Description)
	}
	if req.Price > 0 {
		plan.Price = req.Price
	}
	if req.MaxScrapes > 0 {
		plan.MaxScrapes = nullInt32(req.MaxScrapes)
	}

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// RetirePlan closes a plan for new purchases (admin only).
func (s *Service) RetirePlan(ctx context.Context, id int64) error {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		return err
	}
	plan.Active = false
	return s.plans.Update(ctx, plan)
}

func nullString(s string) (ns sql.NullString) {
	if s != "" {
		ns.String = s
		ns.Valid = true
	}
	return ns
}

func nullInt32(n int32) (ni sql.NullInt32) {
	if n > 0 {
		ni.Int32 = n
		ni.Valid = true
	}
	return ni
}

func defaultCurrency(c string) string {
	if c == "" {
		return "EUR"
	}
	return c
}
