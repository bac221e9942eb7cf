package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/raphaelgruber/circlemap/internal/db"
	"github.com/raphaelgruber/circlemap/internal/models"
)

const bangkokChat = `1/15/24, 10:00 AM - Mike Chen: Anyone in Bangkok watching UFC this weekend?
1/15/24, 10:02 AM - Mike Chen: <Media omitted>
1/15/24, 10:05 AM - Sarah Kim: Yes! I live in Bangkok, UFC is my thing
1/15/24, 10:07 AM - Tom: Count me in next time`

// fakeEnricher returns a fixed overlay per profile, or the error in errs.
type fakeEnricher struct {
	mu      sync.Mutex
	errs    map[string]error
	samples map[string][]string
}

func (f *fakeEnricher) Enrich(_ context.Context, p models.Profile, sample []string) (models.Overlay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.samples == nil {
		f.samples = map[string][]string{}
	}
	f.samples[p.ID] = sample
	if err := f.errs[p.ID]; err != nil {
		return models.Overlay{}, err
	}
	return models.Overlay{
		Name:      p.DisplayName,
		Role:      "Founder",
		Expertise: []string{"fundraising"},
		Sources:   []string{models.OverlaySourceLLM},
	}, nil
}

// memStore is an in-memory Store.
type memStore struct {
	mu       sync.Mutex
	overlays map[string]models.StoredOverlay
	contexts map[string]models.UserContext
	jobs     map[string]*models.EnrichJob
	stale    []models.EnrichJob
	closed   bool
}

func newMemStore() *memStore {
	return &memStore{
		overlays: map[string]models.StoredOverlay{},
		contexts: map[string]models.UserContext{},
		jobs:     map[string]*models.EnrichJob{},
	}
}

func (m *memStore) UpsertOverlay(_ context.Context, id, source string, o models.Overlay) (*models.StoredOverlay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	so := models.StoredOverlay{ProfileID: id, Source: source, Overlay: o, UpdatedAt: time.Now()}
	m.overlays[id] = so
	return &so, nil
}

func (m *memStore) GetOverlay(_ context.Context, id string) (*models.StoredOverlay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	so, ok := m.overlays[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &so, nil
}

func (m *memStore) ListOverlays(context.Context) ([]models.StoredOverlay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.StoredOverlay, 0, len(m.overlays))
	for _, so := range m.overlays {
		out = append(out, so)
	}
	return out, nil
}

func (m *memStore) DeleteOverlay(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.overlays[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.overlays, id)
	return nil
}

func (m *memStore) UpsertUserContext(_ context.Context, name string, uc models.UserContext) (*models.StoredUserContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts[name] = uc
	return &models.StoredUserContext{Context: uc}, nil
}

func (m *memStore) GetUserContext(_ context.Context, name string) (*models.StoredUserContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uc, ok := m.contexts[name]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &models.StoredUserContext{Context: uc}, nil
}

func (m *memStore) Close(context.Context) error {
	m.closed = true
	return nil
}

func (m *memStore) CreateEnrichJob(_ context.Context, id, name string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; ok {
		return db.ErrAlreadyExists
	}
	m.jobs[id] = &models.EnrichJob{
		ID:         surrealmodels.RecordID{Table: "enrich_job", ID: id},
		Status:     "pending",
		Name:       &name,
		ProfileIDs: ids,
		Total:      len(ids),
	}
	return nil
}

func (m *memStore) job(id string) (*models.EnrichJob, error) {
	j, ok := m.jobs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return j, nil
}

func (m *memStore) UpdateJobProgress(_ context.Context, id string, progress int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, err := m.job(id)
	if err != nil {
		return err
	}
	j.Progress = progress
	return nil
}

func (m *memStore) UpdateJobStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, err := m.job(id)
	if err != nil {
		return err
	}
	j.Status = status
	return nil
}

func (m *memStore) CompleteJob(_ context.Context, id string, result map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, err := m.job(id)
	if err != nil {
		return err
	}
	j.Status = "completed"
	j.Result = result
	return nil
}

func (m *memStore) FailJob(_ context.Context, id, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.stale {
		if m.stale[i].ID.ID == id {
			m.stale[i].Status = "failed"
			m.stale[i].Error = &message
			return nil
		}
	}
	j, err := m.job(id)
	if err != nil {
		return err
	}
	j.Status = "failed"
	j.Error = &message
	return nil
}

func (m *memStore) GetIncompleteJobs(context.Context) ([]models.EnrichJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EnrichJob
	for _, j := range m.stale {
		if j.Status == "pending" || j.Status == "running" {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *memStore) status(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		return j.Status
	}
	return ""
}

// waitDone follows a job until it finishes.
func waitDone(t *testing.T, jm *JobManager, id string) Job {
	t.Helper()
	ch, cancel, err := jm.Subscribe(id)
	require.NoError(t, err)
	defer cancel()

	timeout := time.After(5 * time.Second)
	var last Job
	for {
		select {
		case j, ok := <-ch:
			if !ok {
				require.True(t, last.Status.Done(), "stream closed before the job finished")
				return last
			}
			last = j
		case <-timeout:
			t.Fatalf("job %s did not finish", id)
		}
	}
}

var errBoom = errors.New("boom")
