package deep

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/circlemap/internal/models"
)

func TestEmpty_SerializesEmptyCollections(t *testing.T) {
	data, err := json.Marshal(Empty())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}

func TestNormalize_FromProfile(t *testing.T) {
	p := &models.Profile{
		ID:          "mike-chen",
		DisplayName: "Mike Chen",
		Location:    models.Location{Cities: []string{"Bangkok", "Bali"}, Primary: "Bangkok"},
		Interests:   []models.Interest{{Category: "sports"}, {Category: "crypto"}},
		Affinities: map[string][]string{
			"sports":     {"liverpool"},
			"activities": {"muay thai"},
		},
	}

	d := Normalize(Partial{Profile: p})
	assert.Equal(t, "mike-chen", d.ID)
	assert.Equal(t, "Mike Chen", d.Name)
	assert.Equal(t, "Bangkok", d.Current.Location)
	assert.Equal(t, []models.Stint{{City: "Bangkok"}, {City: "Bali"}}, d.Timeline.Locations)
	assert.Equal(t, []models.Obsession{
		{Topic: "sports", Depth: models.DepthInterested},
		{Topic: "crypto", Depth: models.DepthInterested},
	}, d.Interests.Obsessions)
	assert.Equal(t, []string{"liverpool"}, d.Scenes.Communities)
	assert.Equal(t, []string{"muay thai"}, d.Interests.Creates)
	assert.False(t, d.Verification.LinkedInVerified)
	assert.Zero(t, d.Verification.ConfidenceScore)
	assert.NotNil(t, d.LookingFor)
}

func TestNormalize_OverlayWins(t *testing.T) {
	p := &models.Profile{
		ID:          "sarah-kim",
		DisplayName: "Sarah Kim",
		Location:    models.Location{Cities: []string{"Bangkok"}, Primary: "Bangkok"},
		Interests:   []models.Interest{{Category: "tech"}},
	}
	o := &models.Overlay{
		Role:       "Staff Engineer",
		Company:    "Stripe",
		Location:   "Singapore",
		Interests:  []string{"Tech", "climbing"},
		Expertise:  []string{"payments"},
		LookingFor: []string{"co-founder", "Co-Founder"},
		Verified:   true,
		Sources:    []string{"linkedin"},
		Timeline: &models.Timeline{
			Roles:     []models.Role{{Title: "Engineer", Company: "Stripe", StartYear: 2018, EndYear: 2022}},
			Locations: []models.Stint{{City: "Bangkok", StartYear: 2020}},
		},
		Current: &models.Current{LifeStage: "early career", Transitions: []string{"moving cities"}},
		DeepInterests: &models.DeepInterests{
			Obsessions: []models.Obsession{{Topic: "tech", Depth: models.DepthObsessed}, {Topic: "sourdough", Depth: "bogus"}},
		},
		Experiences: &models.Experiences{Struggles: []string{"burnout"}},
	}

	d := Normalize(Partial{Profile: p, Overlay: o})

	assert.Equal(t, "sarah-kim", d.ID)
	assert.Equal(t, "Sarah Kim", d.Name)
	assert.Equal(t, models.Current{
		Role:        "Staff Engineer",
		Company:     "Stripe",
		Location:    "Singapore",
		LifeStage:   "early career",
		Transitions: []string{"moving cities"},
	}, d.Current)
	assert.Equal(t, []models.Obsession{
		{Topic: "tech", Depth: models.DepthObsessed},
		{Topic: "climbing", Depth: models.DepthInterested},
		{Topic: "sourdough", Depth: models.DepthInterested},
	}, d.Interests.Obsessions)
	assert.Equal(t, []string{"co-founder"}, d.LookingFor)
	assert.Equal(t, []string{"payments"}, d.Expertise)
	assert.Equal(t, []models.Stint{{City: "Bangkok", StartYear: 2020}}, d.Timeline.Locations)
	assert.Len(t, d.Timeline.Roles, 1)
	assert.Equal(t, []string{"burnout"}, d.Experiences.Struggles)

	assert.True(t, d.Verification.LinkedInVerified)
	assert.Equal(t, 75, d.Verification.ConfidenceScore)
	assert.Equal(t, []string{"linkedin"}, d.Verification.Sources)
}

func TestNormalize_OverlayOnly(t *testing.T) {
	d := Normalize(Partial{Overlay: &models.Overlay{Name: "Jane Doe", LinkedInVerified: true}})
	assert.Equal(t, "jane-doe", d.ID)
	assert.Equal(t, 75, d.Verification.ConfidenceScore)

	blank := Normalize(Partial{})
	assert.Equal(t, Empty(), blank)
}

func TestNormalize_DoesNotMutateInputs(t *testing.T) {
	o := &models.Overlay{Expertise: []string{"go"}}
	_ = Normalize(Partial{Overlay: o})
	_ = Normalize(Partial{Overlay: o})
	assert.Equal(t, []string{"go"}, o.Expertise)
}

func TestParseOverlay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, o models.Overlay)
	}{
		{
			name:  "json",
			input: `{"name":"Sarah Kim","role":"Engineer","lookingFor":["co-founder"],"experiences":{"struggles":["burnout"]}}`,
			check: func(t *testing.T, o models.Overlay) {
				assert.Equal(t, "Sarah Kim", o.Name)
				assert.Equal(t, []string{"co-founder"}, o.LookingFor)
				require.NotNil(t, o.Experiences)
				assert.Equal(t, []string{"burnout"}, o.Experiences.Struggles)
			},
		},
		{
			name:  "yaml",
			input: "name: Mike Chen\nverified: true\noffering: [intros]\n",
			check: func(t *testing.T, o models.Overlay) {
				assert.Equal(t, "Mike Chen", o.Name)
				assert.True(t, o.Verified)
				assert.Equal(t, []string{"intros"}, o.Offering)
			},
		},
		{name: "empty", input: "   ", wantErr: true},
		{name: "broken json", input: `{"name": `, wantErr: true},
		{name: "scalar yaml", input: "just some words", wantErr: true},
		{name: "wrong type", input: `{"expertise": "not a list"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := ParseOverlay([]byte(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedOverlay)
				return
			}
			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}
