package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/circlemap/internal/llm"
	"github.com/raphaelgruber/circlemap/internal/models"
)

func enrichFixture(t *testing.T, enricher ProfileEnricher) (*EnrichService, *Registry, *memStore, *JobManager) {
	t.Helper()
	reg := loadedRegistry(t)
	store := newMemStore()
	jobs := NewJobManager(2, store, nil)
	return NewEnrichService(enricher, reg, store, jobs, nil), reg, store, jobs
}

func TestEnrich_AllProfiles(t *testing.T) {
	fe := &fakeEnricher{}
	svc, reg, store, jobs := enrichFixture(t, fe)

	job, err := svc.Start(context.Background(), "all", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, job.Total)

	done := waitDone(t, jobs, job.ID)
	assert.Equal(t, JobStatusCompleted, done.Status)
	require.NotNil(t, done.Result)
	assert.Equal(t, 3, done.Result.Enriched)
	assert.Zero(t, done.Result.Failed)
	assert.Equal(t, "completed", store.status(job.ID))

	o, ok := reg.Overlay("sarah-kim")
	require.True(t, ok)
	assert.Equal(t, "Founder", o.Role)

	stored, err := store.GetOverlay(context.Background(), "sarah-kim")
	require.NoError(t, err)
	assert.Equal(t, models.OverlaySourceLLM, stored.Source)

	d, ok := reg.Deep("sarah-kim")
	require.True(t, ok)
	assert.Equal(t, []string{"fundraising"}, d.Expertise)

	assert.Equal(t, []string{"Anyone in Bangkok watching UFC this weekend?"}, fe.samples["mike-chen"])
}

func TestEnrich_CollectsPerProfileFailures(t *testing.T) {
	fe := &fakeEnricher{errs: map[string]error{"tom": errBoom}}
	svc, reg, _, jobs := enrichFixture(t, fe)

	job, err := svc.Start(context.Background(), "", []string{"tom", "Mike Chen"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tom", "mike-chen"}, job.ProfileIDs)

	done := waitDone(t, jobs, job.ID)
	assert.Equal(t, JobStatusCompleted, done.Status)
	assert.Equal(t, 1, done.Result.Enriched)
	assert.Equal(t, 1, done.Result.Failed)
	assert.Equal(t, []string{"tom: boom"}, done.Result.Errors)

	_, ok := reg.Overlay("tom")
	assert.False(t, ok)
}

func TestEnrich_FatalErrorFailsJob(t *testing.T) {
	fatal := fmt.Errorf("%w: invalid api key", llm.ErrFatalAPI)
	fe := &fakeEnricher{errs: map[string]error{"mike-chen": fatal, "sarah-kim": fatal, "tom": fatal}}
	svc, _, store, jobs := enrichFixture(t, fe)

	job, err := svc.Start(context.Background(), "", nil)
	require.NoError(t, err)

	done := waitDone(t, jobs, job.ID)
	assert.Equal(t, JobStatusFailed, done.Status)
	assert.Contains(t, done.Error, "invalid api key")
	assert.Equal(t, "failed", store.status(job.ID))
}

func TestEnrich_UnknownProfile(t *testing.T) {
	svc, _, _, jobs := enrichFixture(t, &fakeEnricher{})

	_, err := svc.Start(context.Background(), "", []string{"tom", "ghost"})
	assert.ErrorIs(t, err, ErrUnknownProfile)
	assert.ErrorContains(t, err, "ghost")
	assert.Empty(t, jobs.List())
}

func TestEnrich_NoProfiles(t *testing.T) {
	svc := NewEnrichService(&fakeEnricher{}, NewRegistry(), nil, NewJobManager(1, nil, nil), nil)
	_, err := svc.Start(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNoProfiles)
}

func TestEnrich_KeepsExistingOverlayValues(t *testing.T) {
	svc, reg, _, jobs := enrichFixture(t, &fakeEnricher{})
	reg.SetOverlay("tom", models.Overlay{Role: "Chef", Expertise: []string{"Fundraising", "cooking"}})

	job, err := svc.Start(context.Background(), "", []string{"tom"})
	require.NoError(t, err)
	waitDone(t, jobs, job.ID)

	o, ok := reg.Overlay("tom")
	require.True(t, ok)
	assert.Equal(t, "Chef", o.Role)
	assert.Equal(t, "Tom", o.Name)
	assert.Equal(t, []string{"Fundraising", "cooking"}, o.Expertise)
	assert.Equal(t, []string{models.OverlaySourceLLM}, o.Sources)
}

func TestMergeOverlay(t *testing.T) {
	existing := models.Overlay{
		Role:     "CEO",
		Offering: []string{"intros"},
		Current:  &models.Current{Mode: "building"},
	}
	fresh := models.Overlay{
		Role:             "Founder",
		Company:          "Kickstart",
		Offering:         []string{"Intros", "mentoring"},
		LinkedInVerified: true,
		Current:          &models.Current{Mode: "exploring"},
		Scenes:           &models.Scenes{Venues: []string{"Muay Thai gym"}},
	}

	got := mergeOverlay(existing, fresh)

	assert.Equal(t, "CEO", got.Role)
	assert.Equal(t, "Kickstart", got.Company)
	assert.Equal(t, []string{"intros", "mentoring"}, got.Offering)
	assert.True(t, got.LinkedInVerified)
	assert.Equal(t, "building", got.Current.Mode)
	require.NotNil(t, got.Scenes)
	assert.Equal(t, []string{"Muay Thai gym"}, got.Scenes.Venues)
	assert.Equal(t, []string{"intros"}, existing.Offering, "inputs are not modified")
}
