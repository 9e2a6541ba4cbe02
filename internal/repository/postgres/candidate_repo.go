// internal/repository/postgres/candidate_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"leadscout-service/internal/domain/candidate"
	xerrors "leadscout-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type CandidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{db: db}
}

const candidateColumns = `id, scrape_id, full_name, headline, company, location,
	email, phone, skills, source_url, created_at`

func scanCandidate(row pgx.Row) (*candidate.Candidate, error) {
	var c candidate.Candidate
	err := row.Scan(
		&c.ID, &c.ScrapeID, &c.FullName, &c.Headline, &c.Company, &c.Location,
		&c.Email, &c.Phone, pq.Array(&c.Skills), &c.SourceURL, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidate: %w", err)
	}
	return &c, nil
}

// CreateBatch inserts candidates reported by the scraping engine for one job.
func (r *CandidateRepository) CreateBatch(ctx context.Context, candidates []*candidate.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO candidates (scrape_id, full_name, headline, company, location, email, phone, skills, source_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	for _, c := range candidates {
		err := tx.QueryRow(
			ctx, query,
			c.ScrapeID, c.FullName, c.Headline, c.Company, c.Location,
			c.Email, c.Phone, pq.Array(c.Skills), c.SourceURL,
		).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert candidate: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit candidates: %w", err)
	}

	return nil
}

// FindByID retrieves a candidate by ID.
func (r *CandidateRepository) FindByID(ctx context.Context, id int64) (*candidate.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	return scanCandidate(r.db.QueryRow(ctx, query, id))
}

// List returns candidates matching the filter, newest first. Keyword matches
// name, headline and skills.
func (r *CandidateRepository) List(ctx context.Context, filter candidate.Filter) ([]*candidate.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE 1=1`
	args := []interface{}{}
	argN := 0

	if filter.ScrapeID > 0 {
		argN++
		query += fmt.Sprintf(` AND scrape_id = $%d`, argN)
		args = append(args, filter.ScrapeID)
	}
	if filter.Keyword != "" {
		argN++
		query += fmt.Sprintf(
			` AND (full_name ILIKE $%d OR headline ILIKE $%d OR $%d = ANY(skills))`,
			argN, argN, argN+1,
		)
		args = append(args, "%"+filter.Keyword+"%")
		argN++
		args = append(args, filter.Keyword)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, argN+1, argN+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*candidate.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

// Count returns the total number of candidates.
func (r *CandidateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return count, nil
}
