// internal/service/lead/lead_service.go
package lead

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"leadscout-service/internal/domain/candidate"
	"leadscout-service/internal/domain/lead"
	xerrors "leadscout-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// LeadRepository is the lead persistence surface.
type LeadRepository interface {
	Create(ctx context.Context, l *lead.Lead) error
	FindByID(ctx context.Context, id int64) (*lead.Lead, error)
	FindByUser(ctx context.Context, userID int64) ([]*lead.Lead, error)
	Update(ctx context.Context, id int64, status lead.Status, notes string) (*lead.Lead, error)
	Delete(ctx context.Context, id int64) error
}

// CandidateFinder resolves candidates being converted to leads.
type CandidateFinder interface {
	FindByID(ctx context.Context, id int64) (*candidate.Candidate, error)
}

type Service struct {
	leads      LeadRepository
	candidates CandidateFinder
	logger     *zap.Logger
}

func NewService(leads LeadRepository, candidates CandidateFinder, logger *zap.Logger) *Service {
	return &Service{leads: leads, candidates: candidates, logger: logger}
}

// Create converts a candidate into a tracked lead.
func (s *Service) Create(ctx context.Context, userID int64, req *lead.CreateLeadRequest) (*lead.Lead, error) {
	cand, err := s.candidates.FindByID(ctx, req.CandidateID)
	if err != nil {
		return nil, err
	}

	l := &lead.Lead{
		UserID:      userID,
		CandidateID: cand.ID,
		Status:      lead.StatusNew,
		Notes:       nullString(req.Notes),
	}
	if err := s.leads.Create(ctx, l); err != nil {
		return nil, err
	}
	l.Candidate = cand

	s.logger.Info("lead created",
		zap.Int64("user_id", userID), zap.Int64("candidate_id", cand.ID))

	return l, nil
}

// Get returns a lead, restricted to its owner.
func (s *Service) Get(ctx context.Context, userID, id int64) (*lead.Lead, error) {
	l, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, xerrors.ErrForbidden
	}
	return l, nil
}

// ListForUser returns a user's pipeline, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*lead.Lead, error) {
	return s.leads.FindByUser(ctx, userID)
}

// Update changes pipeline status and/or notes.
func (s *Service) Update(ctx context.Context, userID, id int64, req *lead.UpdateLeadRequest) (*lead.Lead, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	status := lead.Status(req.Status)
	if req.Status != "" && !status.Known() {
		return nil, xerrors.ErrInvalidInput
	}

	return s.leads.Update(ctx, id, status, req.Notes)
}

// Delete removes a lead from the pipeline.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.leads.Delete(ctx, id)
}

// ExportCSV streams the user's pipeline as CSV.
func (s *Service) ExportCSV(ctx context.Context, userID int64, w io.Writer) error {
	leads, err := s.leads.FindByUser(ctx, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "full_name", "headline", "company", "location", "email", "phone", "skills", "status", "notes", "created_at"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, l := range leads {
		c := l.Candidate
		if c == nil {
			c = &candidate.Candidate{}
		}
		row := []string{
			strconv.FormatInt(l.ID, 10),
			c.FullName,
			c.Headline.String,
			c.Company.String,
			c.Location.String,
			c.Email.String,
			c.Phone.String,
			strings.Join(c.Skills, ";"),
			string(l.Status),
			l.Notes.String,
			l.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func nullString(s string) (ns sql.NullString) {
	if s != "" {
		ns.String = s
		ns.Valid = true
	}
	return ns
}
