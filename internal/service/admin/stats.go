// internal/service/admin/stats.go
package admin

import (
	"context"

	"leadscout-service/internal/repository/postgres"
)

// RepoStats adapts the postgres repositories to the StatsSource interface.
type RepoStats struct {
	Subscriptions *postgres.SubscriptionRepository
	Scrapes       *postgres.ScrapeRepository
	Candidates    *postgres.CandidateRepository
	Payments      *postgres.PaymentRepository
}

func (r *RepoStats) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	return r.Subscriptions.CountActive(ctx)
}

func (r *RepoStats) CountScrapeJobs(ctx context.Context) (int64, error) {
	return r.Scrapes.Count(ctx)
}

func (r *RepoStats) CountCandidates(ctx context.Context) (int64, error) {
	return r.Candidates.Count(ctx)
}

func (r *RepoStats) TotalRevenue(ctx context.Context) (float64, error) {
	return r.Payments.TotalCompleted(ctx)
}
