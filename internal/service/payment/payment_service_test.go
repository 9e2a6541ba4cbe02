// internal/service/payment/payment_service_test.go
package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadscout-service/internal/domain/payment"
	"leadscout-service/internal/domain/subscription"
	xerrors "leadscout-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePaymentRepo struct {
	mu       sync.Mutex
	nextID   int64
	payments map[int64]*payment.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[int64]*payment.Payment)}
}

func (f *fakePaymentRepo) Create(_ context.Context, p *payment.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakePaymentRepo) FindByID(_ context.Context, id int64) (*payment.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentRepo) FindByReference(_ context.Context, ref string) (*payment.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.Reference == ref {
			cp := *p
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakePaymentRepo) FindByUser(_ context.Context, userID int64) ([]*payment.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*payment.Payment
	for _, p := range f.payments {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) UpdateStatus(_ context.Context, id int64, status payment.Status) (*payment.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	p.Status = status
	if status == payment.StatusCompleted {
		now := time.Now()
		p.PaidAt = &now
	}
	cp := *p
	return &cp, nil
}

type fakeActivator struct {
	activated []int64
	cancelled []int64
}

func (f *fakeActivator) Activate(_ context.Context, id int64) (*subscription.Subscription, error) {
	f.activated = append(f.activated, id)
	return &subscription.Subscription{ID: id, Active: true}, nil
}

func (f *fakeActivator) Cancel(_ context.Context, _, id int64, _ bool) error {
	f.cancelled = append(f.cancelled, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakePaymentRepo, *fakeActivator) {
	t.Helper()
	repo := newFakePaymentRepo()
	act := &fakeActivator{}
	return NewService(repo, act, zap.NewNop()), repo, act
}

func createPayment(t *testing.T, svc *Service) *payment.Payment {
	t.Helper()
	p, err := svc.Create(context.Background(), 7, &payment.CreatePaymentRequest{
		SubscriptionID: 42,
		Amount:         49,
		Method:         "CARD",
	})
	require.NoError(t, err)
	return p
}

func TestCreatePaymentStartsPending(t *testing.T) {
	t.Parallel()
	svc, _, act := newTestService(t)

	p := createPayment(t, svc)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.NotEmpty(t, p.Reference)
	assert.Equal(t, "EUR", p.Currency)
	assert.Empty(t, act.activated, "creating a payment must not activate anything")
}

func TestSettlingPaymentActivatesSubscription(t *testing.T) {
	t.Parallel()
	svc, _, act := newTestService(t)
	ctx := context.Background()

	p := createPayment(t, svc)

	updated, err := svc.Transition(ctx, p.ID, payment.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, updated.Status)
	require.NotNil(t, updated.PaidAt)
	assert.Equal(t, []int64{42}, act.activated)
}

func TestFailedPaymentDoesNotActivate(t *testing.T) {
	t.Parallel()
	svc, _, act := newTestService(t)

	p := createPayment(t, svc)
	_, err := svc.Transition(context.Background(), p.ID, payment.StatusFailed)
	require.NoError(t, err)
	assert.Empty(t, act.activated)
}

func TestRefundDeactivatesSubscription(t *testing.T) {
	t.Parallel()
	svc, _, act := newTestService(t)
	ctx := context.Background()

	p := createPayment(t, svc)
	_, err := svc.Transition(ctx, p.ID, payment.StatusCompleted)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, p.ID, payment.StatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, act.cancelled)
}

func TestIllegalTransitionsRejected(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p := createPayment(t, svc)

	// cannot refund a pending payment
	_, err := svc.Transition(ctx, p.ID, payment.StatusRefunded)
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)

	// cannot settle twice
	_, err = svc.Transition(ctx, p.ID, payment.StatusCompleted)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, p.ID, payment.StatusCompleted)
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestGetRestrictedToOwner(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p := createPayment(t, svc)

	_, err := svc.Get(ctx, 999, false, p.ID)
	require.ErrorIs(t, err, xerrors.ErrForbidden)

	got, err := svc.Get(ctx, 999, true, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}
