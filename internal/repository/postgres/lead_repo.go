// internal/repository/postgres/lead_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"leadscout-service/internal/domain/candidate"
	"leadscout-service/internal/domain/lead"
	xerrors "leadscout-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type LeadRepository struct {
	db *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadSelect = `
	SELECT l.id, l.user_id, l.candidate_id, l.status, l.notes, l.created_at, l.updated_at,
	       c.id, c.scrape_id, c.full_name, c.headline, c.company, c.location,
	       c.email, c.phone, c.skills, c.source_url, c.created_at
	FROM leads l
	JOIN candidates c ON c.id = l.candidate_id
`

func scanLead(row pgx.Row) (*lead.Lead, error) {
	var l lead.Lead
	var c candidate.Candidate
	err := row.Scan(
		&l.ID, &l.UserID, &l.CandidateID, &l.Status, &l.Notes, &l.CreatedAt, &l.UpdatedAt,
		&c.ID, &c.ScrapeID, &c.FullName, &c.Headline, &c.Company, &c.Location,
		&c.Email, &c.Phone, pq.Array(&c.Skills), &c.SourceURL, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}
	l.Candidate = &c
	return &l, nil
}

// Create converts a candidate into a tracked lead for a user.
func (r *LeadRepository) Create(ctx context.Context, l *lead.Lead) error {
	query := `
		INSERT INTO leads (user_id, candidate_id, status, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, candidate_id) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, l.UserID, l.CandidateID, l.Status, l.Notes).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return nil
}

// FindByID retrieves a lead with its candidate.
func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*lead.Lead, error) {
	return scanLead(r.db.QueryRow(ctx, leadSelect+` WHERE l.id = $1`, id))
}

// FindByUser lists a user's leads, newest first.
func (r *LeadRepository) FindByUser(ctx context.Context, userID int64) ([]*lead.Lead, error) {
	rows, err := r.db.Query(ctx, leadSelect+` WHERE l.user_id = $1 ORDER BY l.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*lead.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}

	return leads, rows.Err()
}

// Update changes pipeline status and/or notes. Empty values leave the
// existing column untouched.
func (r *LeadRepository) Update(ctx context.Context, id int64, status lead.Status, notes string) (*lead.Lead, error) {
	query := `
		UPDATE leads
		SET status = COALESCE(NULLIF($2, ''), status),
		    notes = CASE WHEN $3 = '' THEN notes ELSE $3 END,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, string(status), notes)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, xerrors.ErrNotFound
	}

	return r.FindByID(ctx, id)
}

// Delete removes a lead from the pipeline.
func (r *LeadRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
