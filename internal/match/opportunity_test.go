package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

func TestDetectOpportunities(t *testing.T) {
	user := models.UserContext{
		Name:        "Raphael",
		Location:    "Bangkok",
		Offerings:   []string{"AI mentorship"},
		Needs:       []string{"fundraising"},
		Interests:   []string{"ufc", "crypto", "yoga"},
		Experiences: []string{"Stripe", "MIT", "Google"},
	}

	roster := []models.DeepProfile{
		person("ana", "Ana", func(d *models.DeepProfile) {
			d.LookingFor = []string{"AI mentorship"}
			d.Current.Location = "Bangkok"
		}),
		person("ben", "Ben", func(d *models.DeepProfile) {
			d.Offering = []string{"Series A fundraising advice"}
			d.Verification.IdentityConfirmed = true
		}),
		person("cy", "Cy", nil),
		person("dee", "Dee", func(d *models.DeepProfile) {
			d.Interests.Obsessions = []models.Obsession{{Topic: "UFC"}, {Topic: "crypto"}}
			d.Timeline.Roles = []models.Role{{Company: "Stripe"}, {Company: "Google"}}
			d.Timeline.Education = []models.Education{{School: "MIT"}}
		}),
	}

	got := DetectOpportunities(user, roster, 10, vocab.Default())
	require.Len(t, got, 3)

	ana := got[0]
	assert.Equal(t, "ana", ana.ProfileID)
	assert.Equal(t, models.OpportunityHiring, ana.Primary.Type)
	assert.GreaterOrEqual(t, ana.Primary.Confidence, 0.85)
	require.Len(t, ana.Secondary, 1)
	assert.Equal(t, models.OpportunityLocation, ana.Secondary[0].Type)
	// (90 + 10 + 20) * 0.7
	assert.Equal(t, 84, ana.Score)
	assert.Contains(t, ana.Reason, "(+1 more)")

	ben := got[1]
	assert.Equal(t, "Ben", ben.Name)
	assert.Equal(t, models.OpportunityIntro, ben.Primary.Type)
	// 85 * 0.8
	assert.Equal(t, 68, ben.Score)
	assert.Empty(t, ben.Secondary)

	dee := got[2]
	assert.Equal(t, models.OpportunityInterest, dee.Primary.Type)
	// (70 + shared experience capped at 20) * 0.7
	assert.Equal(t, 63, dee.Score)

	top := DetectOpportunities(user, roster, 1, nil)
	require.Len(t, top, 1)
	assert.Equal(t, "ana", top[0].ProfileID)
}

func TestDetectOpportunities_Empty(t *testing.T) {
	got := DetectOpportunities(models.UserContext{}, nil, 0, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHiringSignalSources(t *testing.T) {
	v := vocab.Default()
	candidate := person("c", "Cleo", func(d *models.DeepProfile) {
		d.LookingFor = []string{"a senior golang engineer"}
	})

	tests := []struct {
		name string
		user models.UserContext
		want float64
		ok   bool
	}{
		{"offering", models.UserContext{Offerings: []string{"Golang contracting"}}, 0.90, true},
		{"expertise", models.UserContext{Expertise: []string{"golang"}}, 0.85, true},
		{"network", models.UserContext{Network: []string{"senior engineer friends"}}, 0.75, true},
		{"recent mentions", models.UserContext{RecentMentions: []string{"engineer"}}, 0.70, true},
		{"offering beats expertise", models.UserContext{
			Offerings: []string{"golang reviews"}, Expertise: []string{"golang"},
		}, 0.90, true},
		{"nothing", models.UserContext{Offerings: []string{"yoga classes"}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := hiringSignal(tt.user, &candidate, v)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, models.OpportunityHiring, s.Type)
				assert.InDelta(t, tt.want, s.Confidence, 1e-9)
			}
		})
	}
}

func TestExpertiseNeed(t *testing.T) {
	user := models.UserContext{Needs: []string{"help with branding"}}
	c := person("d", "Dana", func(d *models.DeepProfile) {
		d.Current.Role = "Brand designer"
		d.Interests.Creates = []string{"branding kits"}
	})

	got := DetectOpportunities(user, []models.DeepProfile{c}, 5, nil)
	require.Len(t, got, 1)
	assert.Equal(t, models.OpportunityExpertise, got[0].Primary.Type)
	assert.InDelta(t, 0.65, got[0].Primary.Confidence, 1e-9)
}

func TestTextMatch(t *testing.T) {
	v := vocab.Default()
	assert.True(t, textMatch("AI mentorship", "ai mentorship", v))
	assert.True(t, textMatch("mentorship for founders", "AI mentorship", v))
	assert.True(t, textMatch("seo", "SEO audits", v))
	assert.False(t, textMatch("looking for someone", "someone looking", v))
	assert.False(t, textMatch("", "anything", v))
}

func TestLocationBonus(t *testing.T) {
	assert.Equal(t, 20, locationBonus("Bangkok", "bangkok"))
	assert.Equal(t, 10, locationBonus("Bangkok", "Bangkok, Thailand"))
	assert.Equal(t, 0, locationBonus("Bangkok", "Bali"))
	assert.Equal(t, 0, locationBonus("", "Bali"))
}
