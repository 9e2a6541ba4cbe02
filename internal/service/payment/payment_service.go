// internal/service/payment/payment_service.go
package payment

import (
	"context"
	"fmt"

	"leadscout-service/internal/domain/payment"
	"leadscout-service/internal/domain/subscription"
	xerrors "leadscout-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// PaymentRepository is the payment persistence surface.
type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	FindByID(ctx context.Context, id int64) (*payment.Payment, error)
	FindByReference(ctx context.Context, reference string) (*payment.Payment, error)
	FindByUser(ctx context.Context, userID int64) ([]*payment.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status payment.Status) (*payment.Payment, error)
}

// SubscriptionActivator is the slice of the subscription service payments
// drive: settling a payment activates its subscription, refunding or
// failing never does.
type SubscriptionActivator interface {
	Activate(ctx context.Context, subscriptionID int64) (*subscription.Subscription, error)
	Cancel(ctx context.Context, userID, subscriptionID int64, isAdmin bool) error
}

type Service struct {
	payments PaymentRepository
	subs     SubscriptionActivator
	logger   *zap.Logger
}

func NewService(payments PaymentRepository, subs SubscriptionActivator, logger *zap.Logger) *Service {
	return &Service{payments: payments, subs: subs, logger: logger}
}

// Create records a pending payment for a subscription.
func (s *Service) Create(ctx context.Context, userID int64, req *payment.CreatePaymentRequest) (*payment.Payment, error) {
	p := &payment.Payment{
		Reference:      "PAY-" + ulid.Make().String(),
		UserID:         userID,
		SubscriptionID: req.SubscriptionID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Method:         payment.Method(req.Method),
		Status:         payment.StatusPending,
	}
	if p.Currency == "" {
		p.Currency = "EUR"
	}

	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("payment created",
		zap.String("reference", p.Reference),
		zap.Int64("user_id", userID),
		zap.Float64("amount", p.Amount))

	return p, nil
}

// Get returns a payment, restricted to its owner unless the caller is admin.
func (s *Service) Get(ctx context.Context, callerID int64, isAdmin bool, id int64) (*payment.Payment, error) {
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != callerID && !isAdmin {
		return nil, xerrors.ErrForbidden
	}
	return p, nil
}

// ListForUser returns a user's payments, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*payment.Payment, error) {
	return s.payments.FindByUser(ctx, userID)
}

// Transition moves a payment to a new status. A settle activates the paid
// subscription, which in turn publishes the subscription-changed event; a
// refund deactivates it. Illegal transitions are rejected.
func (s *Service) Transition(ctx context.Context, id int64, to payment.Status) (*payment.Payment, error) {
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !payment.ValidTransition(p.Status, to) {
		return nil, fmt.Errorf("%w: cannot move payment from %s to %s",
			xerrors.ErrInvalidInput, p.Status, to)
	}

	updated, err := s.payments.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}

	switch to {
	case payment.StatusCompleted:
		if _, err := s.subs.Activate(ctx, p.SubscriptionID); err != nil {
			return nil, fmt.Errorf("payment settled but activation failed: %w", err)
		}
	case payment.StatusRefunded:
		if err := s.subs.Cancel(ctx, p.UserID, p.SubscriptionID, true); err != nil {
			s.logger.Error("failed to deactivate refunded subscription",
				zap.Int64("subscription_id", p.SubscriptionID), zap.Error(err))
		}
	}

	s.logger.Info("payment transitioned",
		zap.String("reference", p.Reference),
		zap.String("from", string(p.Status)),
		zap.String("to", string(to)))

	return updated, nil
}
