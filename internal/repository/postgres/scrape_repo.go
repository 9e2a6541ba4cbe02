// internal/repository/postgres/scrape_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadscout-service/internal/domain/scrape"
	xerrors "leadscout-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScrapeRepository struct {
	db *pgxpool.Pool
}

func NewScrapeRepository(db *pgxpool.Pool) *ScrapeRepository {
	return &ScrapeRepository{db: db}
}

const scrapeColumns = `id, reference, user_id, source, title, sector, location,
	company, status, profile_count, error, created_at, updated_at`

func scanJob(row pgx.Row) (*scrape.Job, error) {
	var j scrape.Job
	err := row.Scan(
		&j.ID, &j.Reference, &j.UserID, &j.Source, &j.Title, &j.Sector,
		&j.Location, &j.Company, &j.Status, &j.ProfileCount, &j.Error,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan scrape job: %w", err)
	}
	return &j, nil
}

// Create inserts a new job in PENDING state.
func (r *ScrapeRepository) Create(ctx context.Context, job *scrape.Job) error {
	query := `
		INSERT INTO scrape_jobs (reference, user_id, source, title, sector, location, company, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		job.Reference, job.UserID, job.Source, job.Title, job.Sector,
		job.Location, job.Company, job.Status,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create scrape job: %w", err)
	}

	return nil
}

// FindByID retrieves a job by ID.
func (r *ScrapeRepository) FindByID(ctx context.Context, id int64) (*scrape.Job, error) {
	query := `SELECT ` + scrapeColumns + ` FROM scrape_jobs WHERE id = $1`
	return scanJob(r.db.QueryRow(ctx, query, id))
}

// FindByReference retrieves a job by the reference handed to the engine.
func (r *ScrapeRepository) FindByReference(ctx context.Context, reference string) (*scrape.Job, error) {
	query := `SELECT ` + scrapeColumns + ` FROM scrape_jobs WHERE reference = $1`
	return scanJob(r.db.QueryRow(ctx, query, reference))
}

// FindByUser lists a user's jobs, newest first.
func (r *ScrapeRepository) FindByUser(ctx context.Context, userID int64, limit, offset int) ([]*scrape.Job, error) {
	query := `SELECT ` + scrapeColumns + `
		FROM scrape_jobs WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list scrape jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*scrape.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// List pages through all jobs, newest first. Admin surface.
func (r *ScrapeRepository) List(ctx context.Context, limit, offset int) ([]*scrape.Job, error) {
	query := `SELECT ` + scrapeColumns + `
		FROM scrape_jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list scrape jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*scrape.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// UpdateStatus records engine progress on a job.
func (r *ScrapeRepository) UpdateStatus(ctx context.Context, id int64, status scrape.Status, profileCount int, jobError string) (*scrape.Job, error) {
	query := `
		UPDATE scrape_jobs
		SET status = $2, profile_count = $3,
		    error = NULLIF($4, ''), updated_at = now()
		WHERE id = $1
		RETURNING ` + scrapeColumns

	return scanJob(r.db.QueryRow(ctx, query, id, status, profileCount, jobError))
}

// CountByUserSince counts jobs a user launched since a cutoff. Backs the
// per-plan scrape quota.
func (r *ScrapeRepository) CountByUserSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM scrape_jobs WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scrape jobs: %w", err)
	}
	return count, nil
}

// Count returns the total number of jobs.
func (r *ScrapeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM scrape_jobs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scrape jobs: %w", err)
	}
	return count, nil
}
