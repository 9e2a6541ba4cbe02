// internal/service/lead/lead_service_test.go
package lead

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"sync"
	"testing"
	"time"

	"leadscout-service/internal/domain/candidate"
	"leadscout-service/internal/domain/lead"
	xerrors "leadscout-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLeadRepo struct {
	mu     sync.Mutex
	nextID int64
	leads  map[int64]*lead.Lead
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[int64]*lead.Lead)}
}

func (f *fakeLeadRepo) Create(_ context.Context, l *lead.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.leads {
		if existing.UserID == l.UserID && existing.CandidateID == l.CandidateID {
			return xerrors.ErrDuplicateEntry
		}
	}
	f.nextID++
	l.ID = f.nextID
	l.CreatedAt = time.Now()
	cp := *l
	f.leads[l.ID] = &cp
	return nil
}

func (f *fakeLeadRepo) FindByID(_ context.Context, id int64) (*lead.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLeadRepo) FindByUser(_ context.Context, userID int64) ([]*lead.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*lead.Lead
	for _, l := range f.leads {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLeadRepo) Update(_ context.Context, id int64, status lead.Status, notes string) (*lead.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	if status != "" {
		l.Status = status
	}
	if notes != "" {
		l.Notes = sql.NullString{String: notes, Valid: true}
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLeadRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leads[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(f.leads, id)
	return nil
}

type fakeCandidateFinder struct {
	candidates map[int64]*candidate.Candidate
}

func (f *fakeCandidateFinder) FindByID(_ context.Context, id int64) (*candidate.Candidate, error) {
	c, ok := f.candidates[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func newTestService(t *testing.T) (*Service, *fakeLeadRepo) {
	t.Helper()
	repo := newFakeLeadRepo()
	finder := &fakeCandidateFinder{candidates: map[int64]*candidate.Candidate{
		1: {
			ID:       1,
			FullName: "Ada Lovelace",
			Headline: sql.NullString{String: "Staff Engineer", Valid: true},
			Company:  sql.NullString{String: "Analytical Engines", Valid: true},
			Email:    sql.NullString{String: "ada@example.com", Valid: true},
			Skills:   []string{"go", "postgres"},
		},
		2: {ID: 2, FullName: "Grace Hopper"},
	}}
	return NewService(repo, finder, zap.NewNop()), repo
}

func TestCreateLeadFromCandidate(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, 7, &lead.CreateLeadRequest{CandidateID: 1, Notes: "looks strong"})
	require.NoError(t, err)
	assert.Equal(t, lead.StatusNew, l.Status)
	require.NotNil(t, l.Candidate)
	assert.Equal(t, "Ada Lovelace", l.Candidate.FullName)

	// same candidate twice is a duplicate
	_, err = svc.Create(ctx, 7, &lead.CreateLeadRequest{CandidateID: 1})
	require.ErrorIs(t, err, xerrors.ErrDuplicateEntry)

	// unknown candidate
	_, err = svc.Create(ctx, 7, &lead.CreateLeadRequest{CandidateID: 999})
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestUpdateLeadOwnership(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, 7, &lead.CreateLeadRequest{CandidateID: 1})
	require.NoError(t, err)

	// someone else's lead
	_, err = svc.Update(ctx, 8, l.ID, &lead.UpdateLeadRequest{Status: "CONTACTED"})
	require.ErrorIs(t, err, xerrors.ErrForbidden)

	updated, err := svc.Update(ctx, 7, l.ID, &lead.UpdateLeadRequest{Status: "CONTACTED", Notes: "reached out"})
	require.NoError(t, err)
	assert.Equal(t, lead.StatusContacted, updated.Status)

	// bogus status
	_, err = svc.Update(ctx, 7, l.ID, &lead.UpdateLeadRequest{Status: "LOST"})
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestDeleteLead(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, 7, &lead.CreateLeadRequest{CandidateID: 1})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, 8, l.ID), xerrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, 7, l.ID))
	require.ErrorIs(t, svc.Delete(ctx, 7, l.ID), xerrors.ErrNotFound)
}

func TestExportCSV(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 7, &lead.CreateLeadRequest{CandidateID: 1, Notes: "priority"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 7, &lead.CreateLeadRequest{CandidateID: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, 7, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 leads
	assert.Equal(t, "full_name", records[0][1])

	names := []string{records[1][1], records[2][1]}
	assert.ElementsMatch(t, []string{"Ada Lovelace", "Grace Hopper"}, names)

	// skills joined with semicolons so the column stays a single cell
	for _, rec := range records[1:] {
		if rec[1] == "Ada Lovelace" {
			assert.Equal(t, "go;postgres", rec[7])
			assert.Equal(t, "priority", rec[9])
		}
	}
}

func TestExportCSVEmptyPipeline(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), 42, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}
