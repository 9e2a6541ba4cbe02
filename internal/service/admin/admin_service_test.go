// internal/service/admin/admin_service_test.go
package admin

import (
	"context"
	"testing"

	"leadscout-service/internal/domain/auth"
	"leadscout-service/internal/domain/payment"
	"leadscout-service/internal/domain/scrape"
	xerrors "leadscout-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserAdminRepo struct {
	users map[int64]*auth.User
}

func (f *fakeUserAdminRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserAdminRepo) List(ctx context.Context, limit, offset int) ([]*auth.User, error) {
	var out []*auth.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserAdminRepo) UpdateStatus(ctx context.Context, userID int64, status string) error {
	u, ok := f.users[userID]
	if !ok {
		return xerrors.ErrNotFound
	}
	u.Status = status
	return nil
}

func (f *fakeUserAdminRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeRevoker struct {
	revoked []int64
}

func (f *fakeRevoker) RevokeAllForUser(ctx context.Context, userID int64) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

type fakeStats struct{}

func (fakeStats) CountActiveSubscriptions(ctx context.Context) (int64, error) { return 3, nil }
func (fakeStats) CountScrapeJobs(ctx context.Context) (int64, error)          { return 12, nil }
func (fakeStats) CountCandidates(ctx context.Context) (int64, error)          { return 240, nil }
func (fakeStats) TotalRevenue(ctx context.Context) (float64, error)           { return 499.90, nil }

type fakeLister struct{}

func (fakeLister) List(ctx context.Context, limit, offset int) ([]*payment.Payment, error) {
	return []*payment.Payment{{ID: 1}}, nil
}

type fakeScrapeLister struct{}

func (fakeScrapeLister) List(ctx context.Context, limit, offset int) ([]*scrape.Job, error) {
	return []*scrape.Job{{ID: 1}}, nil
}

type fakeDisconnector struct {
	disconnected []int64
}

func (f *fakeDisconnector) DisconnectUser(userID int64, reason string) {
	f.disconnected = append(f.disconnected, userID)
}

func newTestService() (*Service, *fakeUserAdminRepo, *fakeRevoker, *fakeDisconnector) {
	users := &fakeUserAdminRepo{users: map[int64]*auth.User{
		1: {ID: 1, Email: "admin@example.com", Status: auth.StatusActive},
		2: {ID: 2, Email: "user@example.com", Status: auth.StatusActive},
	}}
	revoker := &fakeRevoker{}
	disconnector := &fakeDisconnector{}
	svc := NewService(users, revoker, fakeStats{}, fakeLister{}, fakeScrapeLister{}, disconnector, zap.NewNop())
	return svc, users, revoker, disconnector
}

func TestDisableUserCutsSessions(t *testing.T) {
	svc, users, revoker, disconnector := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.DisableUser(ctx, 1, 2))
	assert.Equal(t, auth.StatusDisabled, users.users[2].Status)
	assert.Equal(t, []int64{2}, revoker.revoked)
	assert.Equal(t, []int64{2}, disconnector.disconnected)
}

func TestDisableOwnAccountRejected(t *testing.T) {
	svc, users, _, _ := newTestService()

	err := svc.DisableUser(context.Background(), 1, 1)
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
	assert.Equal(t, auth.StatusActive, users.users[1].Status)
}

func TestEnableUser(t *testing.T) {
	svc, users, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.DisableUser(ctx, 1, 2))
	require.NoError(t, svc.EnableUser(ctx, 2))
	assert.Equal(t, auth.StatusActive, users.users[2].Status)
}

func TestStats(t *testing.T) {
	svc, _, _, _ := newTestService()

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(3), stats.ActiveSubscriptions)
	assert.Equal(t, int64(12), stats.ScrapeJobs)
	assert.Equal(t, int64(240), stats.Candidates)
	assert.InDelta(t, 499.90, stats.Revenue, 0.001)
}
