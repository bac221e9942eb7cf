package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

func TestFindCrossConnections(t *testing.T) {
	contacts := []models.Contact{
		{
			Name:       "Ana Lima",
			Location:   "bkk",
			Role:       "Founder",
			Industry:   "Fintech",
			Company:    "Acme",
			Interests:  []string{"sports", "tech"},
			Affinities: []string{"muay thai"},
			LookingFor: []string{"investor intros"},
		},
		{
			Name:       "Ben Ode",
			Location:   "Bangkok",
			Role:       "Angel Investor",
			Industry:   "fintech",
			Interests:  []string{"tech"},
			Affinities: []string{"muay thai", "liverpool"},
			Offering:   []string{"investor intros"},
		},
		{Name: "Cy", Interests: []string{"music"}},
	}

	got := FindCrossConnections(contacts, vocab.Default())
	require.Len(t, got, 1)

	cc := got[0]
	assert.Equal(t, "Ana Lima", cc.PersonA)
	assert.Equal(t, "Ben Ode", cc.PersonB)
	// need/offer 25 + location 15 + interest 10 + industry 10 + roles 15 + affinity 8
	assert.Equal(t, 83, cc.Score)
	assert.Equal(t, []string{
		"Ana Lima is looking for investor intros and Ben Ode offers investor intros",
		"both based in Bangkok",
		"both into tech",
		"both work in Fintech",
		"founder and investor complement each other",
		"both love muay thai",
	}, cc.Reasons)
	assert.Contains(t, cc.IntroMessage, "Hey Ana and Ben!")
}

func TestCrossConnect_Capped(t *testing.T) {
	a := models.Contact{
		Name: "A", Location: "Bali", Company: "Stripe", Industry: "payments",
		Interests: []string{"surf", "crypto"}, LookingFor: []string{"designer"}, Offering: []string{"engineering"},
	}
	b := models.Contact{
		Name: "B", Location: "bali", Company: "stripe", Industry: "Payments",
		Interests: []string{"crypto", "surf"}, LookingFor: []string{"engineering help"}, Expertise: []string{"product designer"},
	}

	cc, ok := CrossConnect(&a, &b, vocab.Default())
	require.True(t, ok)
	assert.Equal(t, 100, cc.Score)
}

func TestCrossConnect_Nothing(t *testing.T) {
	a := models.Contact{Name: "A", Interests: []string{"golf"}}
	b := models.Contact{Name: "B", Interests: []string{"chess"}}
	_, ok := CrossConnect(&a, &b, vocab.Default())
	assert.False(t, ok)

	assert.Empty(t, FindCrossConnections(nil, nil))
}

func TestCrossConnections_SortedByScore(t *testing.T) {
	contacts := []models.Contact{
		{Name: "A", Interests: []string{"x"}},
		{Name: "B", Interests: []string{"x", "y"}},
		{Name: "C", Interests: []string{"x", "y"}, Company: "Acme"},
		{Name: "D", Company: "acme"},
	}
	got := FindCrossConnections(contacts, nil)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
	assert.Equal(t, "B", got[0].PersonA)
	assert.Equal(t, "C", got[0].PersonB)
}

func TestComplementary(t *testing.T) {
	v := vocab.Default()
	a, b, ok := complementary("Senior Engineer", "Technical Recruiter", v)
	require.True(t, ok)
	assert.Equal(t, "engineer", a)
	assert.Equal(t, "recruiter", b)

	_, _, ok = complementary("Engineer", "Engineer", v)
	assert.False(t, ok)
	_, _, ok = complementary("", "Investor", v)
	assert.False(t, ok)
}
