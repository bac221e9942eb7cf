package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/circlemap/internal/deep"
	"github.com/raphaelgruber/circlemap/internal/metrics"
	"github.com/raphaelgruber/circlemap/internal/models"
)

func deepPerson(id, name string, roles ...models.Role) models.DeepProfile {
	d := deep.Empty()
	d.ID, d.Name = id, name
	d.Timeline.Roles = roles
	return d
}

func stripeRoster() []models.DeepProfile {
	return []models.DeepProfile{
		deepPerson("sarah-kim", "Sarah Kim", models.Role{Title: "Engineer", Company: "Stripe", StartYear: 2018, EndYear: 2022}),
		deepPerson("tom", "Tom"),
		deepPerson("mike-chen", "Mike Chen", models.Role{Title: "PM", Company: "stripe", StartYear: 2020, EndYear: 2023}),
		deepPerson("ana", "Ana", models.Role{Title: "Designer", Company: "Grab", StartYear: 2019, EndYear: 2021}),
		deepPerson("lee", "Lee", models.Role{Title: "Ops", Company: "Grab", StartYear: 2020, EndYear: 2021}),
	}
}

func TestPages(t *testing.T) {
	pp := pages(5, 3)
	total := 0
	for _, p := range pp {
		assert.LessOrEqual(t, len(p), 3)
		total += len(p)
	}
	assert.Equal(t, 10, total)
	assert.Len(t, pp, 4)
	assert.Equal(t, pair{0, 1}, pp[0][0])
	assert.Equal(t, pair{3, 4}, pp[3][0])

	assert.Empty(t, pages(1, 3))
	assert.Len(t, pages(20, 0)[0], defaultPageSize)
}

func TestScoreAll(t *testing.T) {
	mc := metrics.NewCollector()
	s := NewMatchService(nil, nil, mc, 2)

	got, err := s.ScoreAll(context.Background(), stripeRoster(), MatchOptions{PageSize: 2})
	require.NoError(t, err)

	require.Len(t, got, 2, "pairs with nothing in common are dropped")
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].SerendipityScore, got[i].SerendipityScore)
	}
	pairs := map[string]bool{}
	for _, r := range got {
		pairs[r.ProfileA+"/"+r.ProfileB] = true
	}
	assert.True(t, pairs["sarah-kim/mike-chen"])
	assert.True(t, pairs["ana/lee"])

	require.NotNil(t, mc.Snapshot().Op(metrics.OpSerendipity))
}

func TestScoreAll_MinScoreAndLimit(t *testing.T) {
	s := NewMatchService(nil, nil, nil, 0)

	got, err := s.ScoreAll(context.Background(), stripeRoster(), MatchOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	best := got[0].SerendipityScore

	got, err = s.ScoreAll(context.Background(), stripeRoster(), MatchOptions{MinScore: best + 1})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScoreAll_MatchesSequentialScoring(t *testing.T) {
	roster := stripeRoster()
	s := NewMatchService(nil, nil, nil, 3)

	got, err := s.ScoreAll(context.Background(), roster, MatchOptions{PageSize: 1})
	require.NoError(t, err)

	var want []models.MatchResult
	for i := range roster {
		for j := i + 1; j < len(roster); j++ {
			if r := s.Pair(roster[i], roster[j]); len(r.Connections) > 0 {
				want = append(want, r)
			}
		}
	}
	assert.ElementsMatch(t, want, got)
}

func TestScoreAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMatchService(nil, nil, nil, 2).ScoreAll(ctx, stripeRoster(), MatchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpportunities(t *testing.T) {
	roster := []models.DeepProfile{deepPerson("mike-chen", "Mike Chen")}
	roster[0].LookingFor = []string{"AI mentorship"}
	user := models.UserContext{Name: "Raphael", Offerings: []string{"AI mentorship"}}

	got, err := NewMatchService(nil, nil, nil, 0).Opportunities(context.Background(), user, roster, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.OpportunityHiring, got[0].Primary.Type)
	assert.GreaterOrEqual(t, got[0].Primary.Confidence, 0.85)
}

func TestCrossConnections(t *testing.T) {
	contacts := []models.Contact{
		{ID: "a", Name: "A", Location: "Bangkok", LookingFor: []string{"designer"}},
		{ID: "b", Name: "B", Location: "Bangkok", Offering: []string{"designer"}},
		{ID: "c", Name: "C", Location: "Lisbon"},
	}

	got, err := NewMatchService(nil, nil, nil, 2).CrossConnections(context.Background(), contacts)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "A", got[0].PersonA)
	assert.Equal(t, "B", got[0].PersonB)
}
