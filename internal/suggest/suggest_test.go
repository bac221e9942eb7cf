package suggest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/parser"
	"github.com/raphaelgruber/circlemap/internal/profile"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

func person(name, city string, categories ...string) models.Profile {
	p := models.Profile{DisplayName: name, Location: models.Location{Primary: city}}
	for _, c := range categories {
		p.Interests = append(p.Interests, models.Interest{Category: c})
	}
	return p
}

func TestGenerate_BangkokUFC(t *testing.T) {
	tr := parser.Parse(`1/15/24, 10:00 AM - Mike Chen: Anyone in Bangkok watching UFC this weekend?
1/15/24, 10:05 AM - Sarah Kim: Yes! I live in Bangkok, UFC is my thing`)
	v := vocab.Default()

	got := Generate(profile.Build(tr, v), v)

	want := []models.Suggestion{{
		Location:     "Bangkok",
		Activity:     "sports",
		Title:        v.ActivityFor("sports").Title,
		Emoji:        v.ActivityFor("sports").Emoji,
		Participants: []string{"Mike Chen", "Sarah Kim"},
		Confidence:   62,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_GroupsByNormalizedCity(t *testing.T) {
	profiles := []models.Profile{
		person("A", "bkk", "food", "tech"),
		person("B", "Bangkok", "food", "tech"),
		person("C", "Bangkok", "food"),
		person("D", "Bali", "food"),
		person("E", "", "food"),
	}

	got := Generate(profiles, vocab.Default())
	require.Len(t, got, 2)

	assert.Equal(t, "Bangkok", got[0].Location)
	assert.Equal(t, "food", got[0].Activity)
	assert.Equal(t, []string{"A", "B", "C"}, got[0].Participants)
	assert.Equal(t, 74, got[0].Confidence)

	assert.Equal(t, "tech", got[1].Activity)
	// two of the three Bangkok members share tech
	assert.Equal(t, 62, got[1].Confidence)
}

func TestGenerate_NoGroups(t *testing.T) {
	profiles := []models.Profile{
		person("A", "Bangkok", "food"),
		person("B", "Bangkok", "tech"),
		person("C", "Bali", "food"),
	}
	got := Generate(profiles, nil)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestGenerate_SortOrder(t *testing.T) {
	profiles := []models.Profile{
		person("A", "Lisbon", "music"),
		person("B", "Lisbon", "music"),
		person("C", "Bali", "travel", "music"),
		person("D", "Bali", "travel", "music"),
	}
	got := Generate(profiles, nil)
	require.Len(t, got, 3)
	assert.Equal(t, [2]string{"Bali", "music"}, [2]string{got[0].Location, got[0].Activity})
	assert.Equal(t, [2]string{"Bali", "travel"}, [2]string{got[1].Location, got[1].Activity})
	assert.Equal(t, [2]string{"Lisbon", "music"}, [2]string{got[2].Location, got[2].Activity})
}

func TestConfidence(t *testing.T) {
	prev := 0
	for n := 2; n <= 5; n++ {
		c := Confidence(n)
		assert.Greater(t, c, prev, "n=%d", n)
		prev = c
	}
	assert.Equal(t, 62, Confidence(2))
	assert.Equal(t, 86, Confidence(4))
	assert.Equal(t, 95, Confidence(5))
	assert.Equal(t, 95, Confidence(50))
}
