package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/circlemap/internal/api"
	"github.com/raphaelgruber/circlemap/internal/client"
	"github.com/raphaelgruber/circlemap/internal/config"
	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/service"
)

const chat = `1/15/24, 10:00 AM - Mike Chen: Anyone in Bangkok watching UFC this weekend?
1/15/24, 10:05 AM - Sarah Kim: Yes! I live in Bangkok, UFC is my thing`

type stubEnricher struct{}

func (stubEnricher) Enrich(_ context.Context, p models.Profile, _ []string) (models.Overlay, error) {
	return models.Overlay{Name: p.DisplayName, Company: "Stripe"}, nil
}

func newClient(t *testing.T, enricher service.ProfileEnricher) (*client.Client, *service.Services) {
	t.Helper()
	svc := service.New(config.Config{MaxResults: 10, EnrichConcurrency: 2}, nil, enricher, nil, nil, nil)
	srv := httptest.NewServer(api.New(svc, nil).Handler())
	t.Cleanup(srv.Close)
	return client.New(srv.URL + "/"), svc
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("CIRCLEMAP_SERVER_URL", "")
	assert.Equal(t, "http://localhost:8484", client.New("").BaseURL())

	t.Setenv("CIRCLEMAP_SERVER_URL", "http://example.test:9000/")
	assert.Equal(t, "http://example.test:9000", client.New("").BaseURL())
}

func TestAnalyzeAndMatch(t *testing.T) {
	c, _ := newClient(t, nil)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	a, err := c.Analyze(ctx, chat)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Stats.TotalMessages)
	require.Len(t, a.Profiles, 2)

	profiles, err := c.Profiles(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	results, err := c.Serendipity(ctx, api.SerendipityRequest{A: "mike-chen", B: "sarah-kim"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mike-chen", results[0].ProfileA)

	d, err := c.Normalize(ctx, api.NormalizeRequest{ID: "sarah-kim"})
	require.NoError(t, err)
	assert.Equal(t, "Sarah Kim", d.Name)

	_, err = c.CrossConnections(ctx)
	require.NoError(t, err)

	snap, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.NotNil(t, snap.Op("parse"))
}

func TestAPIError(t *testing.T) {
	c, _ := newClient(t, nil)
	ctx := context.Background()

	_, err := c.Analyze(ctx, "  ")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "text is required", apiErr.Message)
	assert.False(t, errors.Is(err, client.ErrNotFound))

	_, err = c.GetJob(ctx, "nope")
	assert.ErrorIs(t, err, client.ErrNotFound)

	_, err = c.Enrich(ctx, "", nil)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestOverlays(t *testing.T) {
	c, svc := newClient(t, nil)
	ctx := context.Background()

	o, err := c.PutOverlay(ctx, "ana", "note", []byte("name: Ana\ncompany: Grab\n"))
	require.NoError(t, err)
	assert.Equal(t, "Grab", o.Company)

	_, err = c.PutOverlay(ctx, "lee", "", []byte(`{"name":"Lee","role":"Engineer"}`))
	require.NoError(t, err)

	ids, err := c.ListOverlays(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "lee"}, ids)

	got, err := c.GetOverlay(ctx, "lee")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", got.Role)

	require.NoError(t, c.DeleteOverlay(ctx, "ana"))
	_, ok := svc.Registry.Overlay("ana")
	assert.False(t, ok)

	_, err = c.GetOverlay(ctx, "ana")
	assert.ErrorIs(t, err, client.ErrNotFound)

	_, err = c.PutOverlay(ctx, "ana", "gossip", []byte("name: Ana"))
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	c, _ := newClient(t, nil)
	ctx := context.Background()

	_, err := c.GetContext(ctx, "default")
	assert.ErrorIs(t, err, client.ErrNotFound)

	require.NoError(t, c.PutContext(ctx, "default", models.UserContext{
		Name:      "Raphael",
		Location:  "Bangkok",
		Offerings: []string{"AI mentorship"},
	}))

	uc, err := c.GetContext(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "Bangkok", uc.Location)

	_, err = c.Analyze(ctx, chat)
	require.NoError(t, err)
	_, err = c.PutOverlay(ctx, "mike-chen", "", []byte("lookingFor:\n  - AI mentorship\n"))
	require.NoError(t, err)

	opps, err := c.Opportunities(ctx, api.OpportunitiesRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, opps)
	assert.Equal(t, "mike-chen", opps[0].ProfileID)
	assert.Equal(t, models.OpportunityHiring, opps[0].Primary.Type)
}

func TestEnrich_StreamAndWait(t *testing.T) {
	c, svc := newClient(t, stubEnricher{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.Analyze(ctx, chat)
	require.NoError(t, err)

	job, err := c.Enrich(ctx, "everyone", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, job.Total)

	var updates int
	final, err := c.StreamJob(ctx, job.ID, func(client.Job) error {
		updates++
		return nil
	})
	require.NoError(t, err)
	assert.Positive(t, updates)
	assert.Equal(t, service.JobStatusCompleted, final.Status)
	require.NotNil(t, final.Result)
	assert.Equal(t, 2, final.Result.Enriched)

	waited, err := c.WaitJob(ctx, job.ID, 10*time.Millisecond, nil)
	require.NoError(t, err)
	assert.True(t, waited.Done())

	jobs, err := c.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)

	o, ok := svc.Registry.Overlay("mike-chen")
	require.True(t, ok)
	assert.Equal(t, "Stripe", o.Company)
}

func TestStreamJob_NotFound(t *testing.T) {
	c, _ := newClient(t, stubEnricher{})

	_, err := c.StreamJob(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, client.ErrNotFound)
}
