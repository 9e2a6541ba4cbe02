// internal/service/scrape/scrape_service_test.go
package scrape

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"leadscout-service/internal/domain/candidate"
	"leadscout-service/internal/domain/scrape"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeScrapeRepo struct {
	mu     sync.Mutex
	nextID int64
	jobs   map[int64]*scrape.Job
}

func newFakeScrapeRepo() *fakeScrapeRepo {
	return &fakeScrapeRepo{jobs: make(map[int64]*scrape.Job)}
}

func (f *fakeScrapeRepo) Create(_ context.Context, job *scrape.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	job.ID = f.nextID
	job.CreatedAt = time.Now()
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeScrapeRepo) FindByID(_ context.Context, id int64) (*scrape.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeScrapeRepo) FindByReference(_ context.Context, ref string) (*scrape.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.Reference == ref {
			cp := *j
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeScrapeRepo) FindByUser(_ context.Context, userID int64, _, _ int) ([]*scrape.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*scrape.Job
	for _, j := range f.jobs {
		if j.UserID == userID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeScrapeRepo) UpdateStatus(_ context.Context, id int64, status scrape.Status, count int, jobErr string) (*scrape.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	j.Status = status
	j.ProfileCount = count
	cp := *j
	return &cp, nil
}

func (f *fakeScrapeRepo) CountByUserSince(_ context.Context, userID int64, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, j := range f.jobs {
		if j.UserID == userID && !j.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type fakeCandidateRepo struct {
	mu         sync.Mutex
	nextID     int64
	candidates []*candidate.Candidate
}

func (f *fakeCandidateRepo) CreateBatch(_ context.Context, batch []*candidate.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range batch {
		f.nextID++
		c.ID = f.nextID
		f.candidates = append(f.candidates, c)
	}
	return nil
}

func (f *fakeCandidateRepo) FindByID(_ context.Context, id int64) (*candidate.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeCandidateRepo) List(_ context.Context, filter candidate.Filter) ([]*candidate.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*candidate.Candidate
	for _, c := range f.candidates {
		if filter.ScrapeID > 0 && c.ScrapeID != filter.ScrapeID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fakeQuota struct {
	quota int
	err   error
}

func (f *fakeQuota) MonthlyScrapeQuota(context.Context, int64) (int, error) {
	return f.quota, f.err
}

func newTestService(t *testing.T, engineURL string, quota *fakeQuota) (*Service, *fakeScrapeRepo, *fakeCandidateRepo, *events.Bus) {
	t.Helper()
	jobs := newFakeScrapeRepo()
	candidates := &fakeCandidateRepo{}
	bus := events.NewBus()
	svc := NewService(jobs, candidates, quota, bus, engineURL, zap.NewNop())
	return svc, jobs, candidates, bus
}

func TestLaunchRelaysToEngine(t *testing.T) {
	t.Parallel()

	var relayed struct {
		mu   sync.Mutex
		body map[string]string
	}
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs", r.URL.Path)
		relayed.mu.Lock()
		defer relayed.mu.Unlock()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&relayed.body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer engine.Close()

	svc, _, _, _ := newTestService(t, engine.URL, &fakeQuota{quota: 0})

	job, err := svc.Launch(context.Background(), 7, &scrape.CreateJobRequest{
		Source: "linkedin",
		Title:  "Go Developer",
		Sector: "fintech",
	})
	require.NoError(t, err)
	assert.Equal(t, scrape.StatusPending, job.Status)
	assert.NotEmpty(t, job.Reference)

	relayed.mu.Lock()
	defer relayed.mu.Unlock()
	assert.Equal(t, job.Reference, relayed.body["reference"])
	assert.Equal(t, "linkedin", relayed.body["source"])
}

func TestLaunchQuotaExhausted(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newTestService(t, "", &fakeQuota{quota: 1})
	ctx := context.Background()

	_, err := svc.Launch(ctx, 7, &scrape.CreateJobRequest{Source: "linkedin", Title: "Dev"})
	require.NoError(t, err)

	_, err = svc.Launch(ctx, 7, &scrape.CreateJobRequest{Source: "linkedin", Title: "Dev"})
	require.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestLaunchWithoutEntitlement(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newTestService(t, "", &fakeQuota{err: xerrors.ErrNotEntitled})

	_, err := svc.Launch(context.Background(), 7, &scrape.CreateJobRequest{Source: "linkedin", Title: "Dev"})
	require.ErrorIs(t, err, xerrors.ErrNotEntitled)
}

func TestReportStatusPublishesProgress(t *testing.T) {
	t.Parallel()
	svc, _, _, bus := newTestService(t, "", &fakeQuota{quota: 0})
	ctx := context.Background()

	job, err := svc.Launch(ctx, 7, &scrape.CreateJobRequest{Source: "linkedin", Title: "Dev"})
	require.NoError(t, err)

	var got []events.Event
	bus.Subscribe(func(evt events.Event) { got = append(got, evt) })

	updated, err := svc.ReportStatus(ctx, job.Reference, &scrape.UpdateStatusRequest{
		Status:       "COMPLETED",
		ProfileCount: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, scrape.StatusCompleted, updated.Status)

	require.Len(t, got, 1)
	assert.Equal(t, events.TypeScrapeProgress, got[0].Type)
	assert.Equal(t, int64(7), got[0].UserID)
	assert.Equal(t, 12, got[0].Data["profile_count"])

	// unknown reference
	_, err = svc.ReportStatus(ctx, "SCR-UNKNOWN", &scrape.UpdateStatusRequest{Status: "RUNNING"})
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestIngestCandidates(t *testing.T) {
	t.Parallel()
	svc, _, candidates, _ := newTestService(t, "", &fakeQuota{quota: 0})
	ctx := context.Background()

	job, err := svc.Launch(ctx, 7, &scrape.CreateJobRequest{Source: "linkedin", Title: "Dev"})
	require.NoError(t, err)

	batch := []*candidate.Candidate{
		{FullName: "Ada Lovelace", Skills: []string{"go"}},
		{FullName: "Grace Hopper"},
	}
	_, err = svc.IngestCandidates(ctx, job.Reference, batch)
	require.NoError(t, err)

	listed, err := svc.ListCandidates(ctx, candidate.Filter{ScrapeID: job.ID})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, job.ID, listed[0].ScrapeID)
	_ = candidates
}
