// internal/service/auth/auth_service_test.go
package auth

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"leadscout-service/internal/domain/auth"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*auth.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*auth.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	if xerrors.Is(err, xerrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, userID int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return xerrors.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	nextID int64
	byJTI  map[string]*auth.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{byJTI: make(map[string]*auth.RefreshToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *auth.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	token.ID = f.nextID
	cp := *token
	f.byJTI[token.JTI] = &cp
	return nil
}

func (f *fakeTokenRepo) FindByJTI(_ context.Context, jti string) (*auth.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byJTI[jti]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokenRepo) Revoke(_ context.Context, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.byJTI[jti]; ok {
		t.RevokedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.byJTI {
		if t.UserID == userID && !t.RevokedAt.Valid {
			t.RevokedAt = sql.NullTime{Time: time.Now(), Valid: true}
		}
	}
	return nil
}

type fakeSessions struct {
	mu          sync.Mutex
	blacklisted map[string]bool
	resets      map[string]int64
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{blacklisted: make(map[string]bool), resets: make(map[string]int64)}
}

func (f *fakeSessions) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklisted[jti] = true
	return nil
}

func (f *fakeSessions) StorePasswordResetToken(_ context.Context, token string, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets[token] = userID
	return nil
}

func (f *fakeSessions) ConsumePasswordResetToken(_ context.Context, token string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.resets[token]
	if !ok {
		return 0, xerrors.ErrNotFound
	}
	delete(f.resets, token)
	return id, nil
}

type fakeLimiter struct {
	denyLogin bool
	denyReset bool
}

func (f *fakeLimiter) CheckLoginAttempt(context.Context, string, string) (bool, int64, error) {
	return !f.denyLogin, 5, nil
}
func (f *fakeLimiter) ResetLoginAttempts(context.Context, string, string) error { return nil }
func (f *fakeLimiter) CheckPasswordResetAttempt(context.Context, string) (bool, error) {
	return !f.denyReset, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeTokenRepo, *fakeSessions, *fakeLimiter) {
	t.Helper()
	manager, err := jwt.NewManager(jwt.Config{
		Secret:     "test-secret",
		Issuer:     "leadscout",
		Audience:   "leadscout-api",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	sessions := newFakeSessions()
	limiter := &fakeLimiter{}
	svc := NewService(users, tokens, sessions, limiter, manager, zap.NewNop())
	return svc, users, tokens, sessions, limiter
}

func registerUser(t *testing.T, svc *Service) *auth.LoginResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &auth.RegisterRequest{
		Email:    "jane@example.com",
		Password: "s3cret-password",
		FullName: "Jane Doe",
		Company:  "Acme",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	resp := registerUser(t, svc)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Contains(t, resp.User.Roles, "ROLE_USER")

	// duplicate registration rejected
	_, err := svc.Register(ctx, &auth.RegisterRequest{
		Email: "JANE@example.com", Password: "whatever-else", FullName: "Jane",
	})
	require.ErrorIs(t, err, xerrors.ErrDuplicateEntry)

	// login with right and wrong password
	got, err := svc.Login(ctx, &auth.LoginRequest{Email: "jane@example.com", Password: "s3cret-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, got.Token)

	_, err = svc.Login(ctx, &auth.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	require.ErrorIs(t, err, xerrors.ErrUnauthorized)

	// unknown email yields the same error as a bad password
	_, err = svc.Login(ctx, &auth.LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	require.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestLoginRateLimited(t *testing.T) {
	t.Parallel()
	svc, _, _, _, limiter := newTestService(t)
	registerUser(t, svc)

	limiter.denyLogin = true
	_, err := svc.Login(context.Background(), &auth.LoginRequest{
		Email: "jane@example.com", Password: "s3cret-password",
	})
	require.ErrorIs(t, err, xerrors.ErrRateLimited)
}

func TestLoginDisabledAccount(t *testing.T) {
	t.Parallel()
	svc, users, _, _, _ := newTestService(t)
	resp := registerUser(t, svc)

	users.mu.Lock()
	users.users[resp.User.ID].Status = auth.StatusDisabled
	users.mu.Unlock()

	_, err := svc.Login(context.Background(), &auth.LoginRequest{
		Email: "jane@example.com", Password: "s3cret-password",
	})
	require.ErrorIs(t, err, xerrors.ErrAccountDisabled)
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	first := registerUser(t, svc)

	// first use succeeds and rotates
	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// replaying the consumed token is rejected, not retried
	_, err = svc.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, xerrors.ErrTokenRevoked)

	// reuse detection revoked the whole family, including the new token
	_, err = svc.Refresh(ctx, second.RefreshToken)
	require.ErrorIs(t, err, xerrors.ErrTokenRevoked)
}

func TestRefreshGarbageToken(t *testing.T) {
	t.Parallel()
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, xerrors.ErrSessionExpired)
}

func TestLogoutBlacklistsAccessToken(t *testing.T) {
	t.Parallel()
	svc, _, tokens, sessions, _ := newTestService(t)
	ctx := context.Background()

	resp := registerUser(t, svc)

	claims, err := svc.jwt.Verifier.VerifyAccessToken(resp.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	assert.True(t, sessions.blacklisted[claims.ID])

	// refresh tokens were revoked too
	_, err = svc.Refresh(ctx, resp.RefreshToken)
	require.ErrorIs(t, err, xerrors.ErrTokenRevoked)
	_ = tokens
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()
	svc, users, _, _, _ := newTestService(t)
	ctx := context.Background()

	resp := registerUser(t, svc)

	token, err := svc.ForgotPassword(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(ctx, token, "brand-new-password"))

	// token is single use
	err = svc.ResetPassword(ctx, token, "another-password")
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)

	// new password took effect
	u, err := users.FindByID(ctx, resp.User.ID)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("brand-new-password")))

	// old refresh tokens revoked
	_, err = svc.Refresh(ctx, resp.RefreshToken)
	require.ErrorIs(t, err, xerrors.ErrTokenRevoked)
}

func TestForgotPasswordUnknownEmailSilent(t *testing.T) {
	t.Parallel()
	svc, _, _, _, _ := newTestService(t)

	token, err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}
