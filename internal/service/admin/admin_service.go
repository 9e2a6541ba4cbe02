// internal/service/admin/admin_service.go
package admin

import (
	"context"
	"fmt"

	"leadscout-service/internal/domain/auth"
	"leadscout-service/internal/domain/payment"
	"leadscout-service/internal/domain/scrape"
	xerrors "leadscout-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// UserAdminRepository is the account administration surface.
type UserAdminRepository interface {
	FindByID(ctx context.Context, id int64) (*auth.User, error)
	List(ctx context.Context, limit, offset int) ([]*auth.User, error)
	UpdateStatus(ctx context.Context, userID int64, status string) error
	Count(ctx context.Context) (int64, error)
}

// TokenRevoker cuts all sessions of a user.
type TokenRevoker interface {
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// Counters aggregate platform numbers for the dashboard.
type Counters struct {
	Users               int64   `json:"users"`
	ActiveSubscriptions int64   `json:"activeSubscriptions"`
	ScrapeJobs          int64   `json:"scrapeJobs"`
	Candidates          int64   `json:"candidates"`
	Revenue             float64 `json:"revenue"`
}

// StatsSource provides the aggregate queries behind the dashboard.
type StatsSource interface {
	CountActiveSubscriptions(ctx context.Context) (int64, error)
	CountScrapeJobs(ctx context.Context) (int64, error)
	CountCandidates(ctx context.Context) (int64, error)
	TotalRevenue(ctx context.Context) (float64, error)
}

// Disconnector force-closes live connections of a user.
type Disconnector interface {
	DisconnectUser(userID int64, reason string)
}

// PaymentLister pages through all payments across users.
type PaymentLister interface {
	List(ctx context.Context, limit, offset int) ([]*payment.Payment, error)
}

// ScrapeLister pages through all scrape jobs across users.
type ScrapeLister interface {
	List(ctx context.Context, limit, offset int) ([]*scrape.Job, error)
}

type Service struct {
	users        UserAdminRepository
	tokens       TokenRevoker
	stats        StatsSource
	payments     PaymentLister
	scrapes      ScrapeLister
	disconnector Disconnector
	logger       *zap.Logger
}

func NewService(
	users UserAdminRepository,
	tokens TokenRevoker,
	stats StatsSource,
	payments PaymentLister,
	scrapes ScrapeLister,
	disconnector Disconnector,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:        users,
		tokens:       tokens,
		stats:        stats,
		payments:     payments,
		scrapes:      scrapes,
		disconnector: disconnector,
		logger:       logger,
	}
}

// ListUsers pages through all accounts.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*auth.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.users.List(ctx, limit, offset)
}

// GetUser returns one account.
func (s *Service) GetUser(ctx context.Context, id int64) (*auth.User, error) {
	return s.users.FindByID(ctx, id)
}

// DisableUser locks an account, revokes its refresh tokens and force-closes
// its live connections. Admins cannot disable themselves.
func (s *Service) DisableUser(ctx context.Context, adminID, userID int64) error {
	if adminID == userID {
		return fmt.Errorf("%w: cannot disable own account", xerrors.ErrInvalidInput)
	}

	if err := s.users.UpdateStatus(ctx, userID, auth.StatusDisabled); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.Error("failed to revoke sessions of disabled user",
			zap.Int64("user_id", userID), zap.Error(err))
	}
	if s.disconnector != nil {
		s.disconnector.DisconnectUser(userID, "account disabled")
	}

	s.logger.Info("user disabled",
		zap.Int64("admin_id", adminID), zap.Int64("user_id", userID))
	return nil
}

// EnableUser unlocks an account.
func (s *Service) EnableUser(ctx context.Context, userID int64) error {
	return s.users.UpdateStatus(ctx, userID, auth.StatusActive)
}

// ListPayments pages through all payments across users.
func (s *Service) ListPayments(ctx context.Context, limit, offset int) ([]*payment.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.payments.List(ctx, limit, offset)
}

// ListScrapes pages through all scrape jobs across users.
func (s *Service) ListScrapes(ctx context.Context, limit, offset int) ([]*scrape.Job, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.scrapes.List(ctx, limit, offset)
}

// Stats gathers the dashboard counters.
func (s *Service) Stats(ctx context.Context) (*Counters, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.stats.CountActiveSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.stats.CountScrapeJobs(ctx)
	if err != nil {
		return nil, err
	}
	candidates, err := s.stats.CountCandidates(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.stats.TotalRevenue(ctx)
	if err != nil {
		return nil, err
	}

	return &Counters{
		Users:               users,
		ActiveSubscriptions: subs,
		ScrapeJobs:          jobs,
		Candidates:          candidates,
		Revenue:             revenue,
	}, nil
}
