// internal/service/auth/auth_service.go
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"leadscout-service/internal/domain/auth"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/jwt"
	"leadscout-service/internal/pkg/roles"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the persistence surface the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, user *auth.User) error
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	FindByID(ctx context.Context, id int64) (*auth.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// RefreshTokenRepository persists rotating refresh token JTIs.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *auth.RefreshToken) error
	FindByJTI(ctx context.Context, jti string) (*auth.RefreshToken, error)
	Revoke(ctx context.Context, jti string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// SessionManager revokes access tokens and stores reset credentials.
type SessionManager interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	StorePasswordResetToken(ctx context.Context, token string, userID int64) error
	ConsumePasswordResetToken(ctx context.Context, token string) (int64, error)
}

// RateLimiter throttles credential-guessing endpoints.
type RateLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
	CheckPasswordResetAttempt(ctx context.Context, email string) (bool, error)
}

type Service struct {
	users    UserRepository
	tokens   RefreshTokenRepository
	sessions SessionManager
	limiter  RateLimiter
	jwt      *jwt.Manager
	logger   *zap.Logger
}

func NewService(
	users UserRepository,
	tokens RefreshTokenRepository,
	sessions SessionManager,
	limiter RateLimiter,
	jwtManager *jwt.Manager,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		limiter:  limiter,
		jwt:      jwtManager,
		logger:   logger,
	}
}

// Register creates an account and signs the new user in.
func (s *Service) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if exists {
		return nil, xerrors.ErrDuplicateEntry
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &auth.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     nullString(req.FullName),
		Company:      nullString(req.Company),
		Status:       auth.StatusActive,
		Roles:        []string{roles.Prefix + roles.User},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", email))

	return s.issueTokenPair(ctx, user)
}

// Login authenticates credentials and issues a token pair. Failures are
// deliberately indistinguishable between unknown email and wrong password.
func (s *Service) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	allowed, remaining, err := s.limiter.CheckLoginAttempt(ctx, req.IPAddress, email)
	if err != nil {
		s.logger.Warn("rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		s.logger.Warn("login rate limited",
			zap.String("ip", req.IPAddress), zap.String("email", email))
		return nil, xerrors.ErrRateLimited
	}
	_ = remaining

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	if user.Status != auth.StatusActive {
		return nil, xerrors.ErrAccountDisabled
	}

	if err := s.limiter.ResetLoginAttempts(ctx, req.IPAddress, email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))

	return s.issueTokenPair(ctx, user)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked in the same operation: each refresh token is good exactly once,
// and presenting a revoked one fails hard rather than retrying.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*auth.LoginResponse, error) {
	claims, err := s.jwt.Verifier.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, xerrors.ErrSessionExpired
	}

	record, err := s.tokens.FindByJTI(ctx, claims.ID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if record.RevokedAt.Valid {
		// Reuse of a rotated token: someone replayed an old credential.
		// Revoke the whole family for this user.
		s.logger.Warn("refresh token reuse detected", zap.Int64("user_id", record.UserID))
		if err := s.tokens.RevokeAllForUser(ctx, record.UserID); err != nil {
			s.logger.Error("failed to revoke token family", zap.Error(err))
		}
		return nil, xerrors.ErrTokenRevoked
	}

	if time.Now().After(record.ExpiresAt) {
		return nil, xerrors.ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Status != auth.StatusActive {
		return nil, xerrors.ErrAccountDisabled
	}

	if err := s.tokens.Revoke(ctx, claims.ID); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issueTokenPair(ctx, user)
}

// Logout revokes the presented access token and the user's refresh tokens.
func (s *Service) Logout(ctx context.Context, accessClaims *jwt.Claims) error {
	if accessClaims.ExpiresAt != nil {
		ttl := time.Until(accessClaims.ExpiresAt.Time)
		if err := s.sessions.BlacklistToken(ctx, accessClaims.ID, ttl); err != nil {
			return fmt.Errorf("failed to blacklist access token: %w", err)
		}
	}

	if err := s.tokens.RevokeAllForUser(ctx, accessClaims.UserID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	s.logger.Info("user logged out", zap.Int64("user_id", accessClaims.UserID))
	return nil
}

// ForgotPassword issues a single-use reset token. The token is returned to
// the caller for delivery; unknown emails succeed silently so the endpoint
// does not leak which accounts exist.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	allowed, err := s.limiter.CheckPasswordResetAttempt(ctx, email)
	if err != nil {
		s.logger.Warn("rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		return "", xerrors.ErrRateLimited
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return "", err
	}

	if err := s.sessions.StorePasswordResetToken(ctx, token, user.ID); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	s.logger.Info("password reset requested", zap.Int64("user_id", user.ID))
	return token, nil
}

// ResetPassword redeems a reset token and replaces the password. All live
// sessions for the user are revoked.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.sessions.ConsumePasswordResetToken(ctx, token)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return xerrors.ErrInvalidInput
		}
		return fmt.Errorf("failed to redeem reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.Error("failed to revoke sessions after reset", zap.Error(err))
	}

	s.logger.Info("password reset completed", zap.Int64("user_id", userID))
	return nil
}

// Me returns the principal for an authenticated user.
func (s *Service) Me(ctx context.Context, userID int64) (*auth.UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := userInfo(user)
	return &info, nil
}

func (s *Service) issueTokenPair(ctx context.Context, user *auth.User) (*auth.LoginResponse, error) {
	accessToken, _, err := s.jwt.Generator.GenerateAccessToken(user.ID, user.Email, user.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, refreshJTI, err := s.jwt.Generator.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	record := &auth.RefreshToken{
		UserID:    user.ID,
		JTI:       refreshJTI,
		ExpiresAt: time.Now().Add(s.jwt.Generator.RefreshTTL),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &auth.LoginResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().Add(s.jwt.Generator.AccessTTL),
		User:         userInfo(user),
	}, nil
}

func userInfo(user *auth.User) auth.UserInfo {
	return auth.UserInfo{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName.String,
		Company:   user.Company.String,
		Roles:     roles.FromStrings(user.Roles).Strings(),
		CreatedAt: user.CreatedAt,
	}
}

func nullString(s string) (ns sql.NullString) {
	s = strings.TrimSpace(s)
	if s != "" {
		ns.String = s
		ns.Valid = true
	}
	return ns
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
