// internal/service/scrape/scrape_service.go
package scrape

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"leadscout-service/internal/domain/candidate"
	"leadscout-service/internal/domain/scrape"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/events"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ScrapeRepository is the job persistence surface.
type ScrapeRepository interface {
	Create(ctx context.Context, job *scrape.Job) error
	FindByID(ctx context.Context, id int64) (*scrape.Job, error)
	FindByReference(ctx context.Context, reference string) (*scrape.Job, error)
	FindByUser(ctx context.Context, userID int64, limit, offset int) ([]*scrape.Job, error)
	UpdateStatus(ctx context.Context, id int64, status scrape.Status, profileCount int, jobError string) (*scrape.Job, error)
	CountByUserSince(ctx context.Context, userID int64, since time.Time) (int, error)
}

// CandidateRepository stores profiles the engine reports back.
type CandidateRepository interface {
	CreateBatch(ctx context.Context, candidates []*candidate.Candidate) error
	FindByID(ctx context.Context, id int64) (*candidate.Candidate, error)
	List(ctx context.Context, filter candidate.Filter) ([]*candidate.Candidate, error)
}

// QuotaSource exposes the scrape allowance of a user's current plan.
// A zero max means unlimited.
type QuotaSource interface {
	MonthlyScrapeQuota(ctx context.Context, userID int64) (int, error)
}

type Service struct {
	jobs       ScrapeRepository
	candidates CandidateRepository
	quota      QuotaSource
	bus        *events.Bus
	engineURL  string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewService(
	jobs ScrapeRepository,
	candidates CandidateRepository,
	quota QuotaSource,
	bus *events.Bus,
	engineURL string,
	logger *zap.Logger,
) *Service {
	return &Service{
		jobs:       jobs,
		candidates: candidates,
		quota:      quota,
		bus:        bus,
		engineURL:  engineURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Launch records a job and relays it to the scraping engine. The engine is
// an opaque collaborator; it reports progress back through ReportStatus.
func (s *Service) Launch(ctx context.Context, userID int64, req *scrape.CreateJobRequest) (*scrape.Job, error) {
	quota, err := s.quota.MonthlyScrapeQuota(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scrape quota: %w", err)
	}
	if quota > 0 {
		used, err := s.jobs.CountByUserSince(ctx, userID, time.Now().AddDate(0, -1, 0))
		if err != nil {
			return nil, fmt.Errorf("failed to count recent jobs: %w", err)
		}
		if used >= quota {
			return nil, fmt.Errorf("%w: monthly scrape quota of %d reached", xerrors.ErrForbidden, quota)
		}
	}

	job := &scrape.Job{
		Reference: "SCR-" + ulid.Make().String(),
		UserID:    userID,
		Source:    req.Source,
		Title:     req.Title,
		Sector:    nullString(req.Sector),
		Location:  nullString(req.Location),
		Company:   nullString(req.Company),
		Status:    scrape.StatusPending,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	if err := s.relayToEngine(ctx, job); err != nil {
		// The job stays PENDING; the engine may be retried by an operator.
		s.logger.Error("failed to relay job to engine",
			zap.String("reference", job.Reference), zap.Error(err))
	}

	s.logger.Info("scrape job launched",
		zap.Int64("user_id", userID),
		zap.String("reference", job.Reference),
		zap.String("source", job.Source))

	return job, nil
}

func (s *Service) relayToEngine(ctx context.Context, job *scrape.Job) error {
	if s.engineURL == "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"reference": job.Reference,
		"source":    job.Source,
		"title":     job.Title,
		"sector":    job.Sector.String,
		"location":  job.Location.String,
		"company":   job.Company.String,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.engineURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("engine returned status %d", resp.StatusCode)
	}
	return nil
}

// Get returns a job, restricted to its owner unless the caller is admin.
func (s *Service) Get(ctx context.Context, callerID int64, isAdmin bool, id int64) (*scrape.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.UserID != callerID && !isAdmin {
		return nil, xerrors.ErrForbidden
	}
	return job, nil
}

// ListForUser returns a user's jobs, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*scrape.Job, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.jobs.FindByUser(ctx, userID, limit, offset)
}

// ReportStatus is called by the engine to update a job. Progress is fanned
// out to the owner over the scrape-progress event.
func (s *Service) ReportStatus(ctx context.Context, reference string, req *scrape.UpdateStatusRequest) (*scrape.Job, error) {
	job, err := s.jobs.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	updated, err := s.jobs.UpdateStatus(ctx, job.ID, scrape.Status(req.Status), req.ProfileCount, req.Error)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.Event{
		Type:   events.TypeScrapeProgress,
		UserID: updated.UserID,
		Data: map[string]interface{}{
			"job_id":        updated.ID,
			"reference":     updated.Reference,
			"status":        string(updated.Status),
			"profile_count": updated.ProfileCount,
		},
	})

	return updated, nil
}

// IngestCandidates stores profiles the engine found for a job.
func (s *Service) IngestCandidates(ctx context.Context, reference string, candidates []*candidate.Candidate) (*scrape.Job, error) {
	job, err := s.jobs.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		c.ScrapeID = job.ID
	}
	if err := s.candidates.CreateBatch(ctx, candidates); err != nil {
		return nil, err
	}

	s.logger.Info("candidates ingested",
		zap.String("reference", reference),
		zap.Int("count", len(candidates)))

	return job, nil
}

// GetCandidate returns one candidate profile.
func (s *Service) GetCandidate(ctx context.Context, id int64) (*candidate.Candidate, error) {
	return s.candidates.FindByID(ctx, id)
}

// ListCandidates returns profiles matching the filter.
func (s *Service) ListCandidates(ctx context.Context, filter candidate.Filter) ([]*candidate.Candidate, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.candidates.List(ctx, filter)
}

func nullString(s string) (ns sql.NullString) {
	if s != "" {
		ns.String = s
		ns.Valid = true
	}
	return ns
}
