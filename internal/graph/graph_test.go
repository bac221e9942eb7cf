package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/parser"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

const chat = `1/15/24, 10:00 AM - Mike Chen: Sarah are you around for ufc tonight
1/15/24, 10:02 AM - Sarah Kim: yes!
1/15/24, 10:03 AM - Mike Chen: great
1/15/24, 11:30 PM - Tom Baker: Anyone up`

func TestBuild(t *testing.T) {
	edges := Build(parser.Parse(chat), vocab.Default())

	want := []models.RelationshipEdge{
		{
			PersonA:           "Mike Chen",
			PersonB:           "Sarah Kim",
			Strength:          30,
			Interactions:      2,
			Bidirectional:     true,
			AvgMessageDepth:   1,
			LateNightMessages: 0,
			MediaShared:       0,
			Mentions:          1,
			ResponseSpeed:     models.ResponseFast,
			Informality:       models.InformalityFormal,
			Label:             models.EdgeModerate,
		},
		{
			PersonA:           "Mike Chen",
			PersonB:           "Tom Baker",
			Strength:          10,
			Interactions:      1,
			Bidirectional:     false,
			AvgMessageDepth:   2,
			LateNightMessages: 1,
			Mentions:          0,
			ResponseSpeed:     models.ResponseSlow,
			Informality:       models.InformalityFormal,
			Label:             models.EdgeWeak,
		},
	}
	if diff := cmp.Diff(want, edges); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Invariants(t *testing.T) {
	tr := parser.Parse(chat + "\n1/15/24, 11:31 PM - Sarah Kim: lol Tom go to bed 😂\n1/15/24, 11:32 PM - Tom Baker: <Media omitted>")
	edges := Build(tr, nil)

	seen := make(map[[2]string]bool)
	for _, e := range edges {
		assert.Less(t, e.PersonA, e.PersonB)
		assert.GreaterOrEqual(t, e.Strength, 0)
		assert.LessOrEqual(t, e.Strength, 100)
		k := [2]string{e.PersonA, e.PersonB}
		assert.False(t, seen[k], "duplicate edge %v", k)
		seen[k] = true
	}
	for i := 1; i < len(edges); i++ {
		assert.GreaterOrEqual(t, edges[i-1].Strength, edges[i].Strength)
	}

	g := New(edges)
	st, ok := g.Edge("Sarah Kim", "Tom Baker")
	require.True(t, ok)
	assert.Equal(t, 1, st.MediaShared)
	ts, ok := g.Edge("Tom Baker", "Sarah Kim")
	require.True(t, ok)
	assert.Equal(t, st, ts)
}

func TestBuild_NoInteractions(t *testing.T) {
	assert.Empty(t, Build(parser.Parse("1/15/24, 10:00 AM - Mike Chen: hello?"), nil))
	assert.Empty(t, Build(models.Transcript{}, nil))
}

func TestBuild_MentionOnlyEdge(t *testing.T) {
	tr := parser.Parse("1/15/24, 10:00 AM - Mike Chen: has anyone seen Sarah?\n" +
		"1/15/24, 10:01 AM - Tom Baker: no idea\n" +
		"1/15/24, 10:02 AM - Sarah Kim: morning")

	e, ok := New(Build(tr, nil)).Edge("Sarah Kim", "Mike Chen")
	require.True(t, ok)
	assert.Equal(t, 0, e.Interactions)
	assert.Equal(t, 1, e.Mentions)
	assert.False(t, e.Bidirectional)
	// mention 3 + one informal message from Sarah
	assert.Equal(t, 4, e.Strength)
}

func TestResponseSpeedAcrossMidnight(t *testing.T) {
	msgs := []models.Message{
		{Sender: "A", Time: "11:58 PM"},
		{Sender: "B", Time: "12:01 AM"},
	}
	assert.Equal(t, 3, responseSpeedScores(msgs)[pair{"A", "B"}])

	msgs = []models.Message{
		{Sender: "A", Time: "10:00"},
		{Sender: "B", Time: "10:20"},
		{Sender: "A", Time: "11:00"},
		{Sender: "B", Time: "bogus"},
	}
	assert.Equal(t, 1, responseSpeedScores(msgs)[pair{"A", "B"}])
}

func TestIsInformal(t *testing.T) {
	v := vocab.Default()
	tests := []struct {
		text string
		want bool
	}{
		{"lol that was wild", true},
		{"Broken promises are bad news for everyone", false},
		{"That was hilarious 😂", true},
		{"ok", true},
		{"OK", false},
		{"12345", false},
		{"", false},
		{"This is a perfectly formal sentence.", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isInformal(tt.text, v), tt.text)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, models.EdgeWeak, Label(29))
	assert.Equal(t, models.EdgeModerate, Label(30))
	assert.Equal(t, models.EdgeModerate, Label(59))
	assert.Equal(t, models.EdgeStrong, Label(60))
}

func TestGraphNeighbors(t *testing.T) {
	g := New(Build(parser.Parse(chat), nil))
	assert.Len(t, g.Neighbors("Mike Chen"), 2)
	assert.Len(t, g.Neighbors("Tom Baker"), 1)
	assert.Empty(t, g.Neighbors("Nobody"))
	_, ok := g.Edge("Sarah Kim", "Tom Baker")
	assert.False(t, ok)
}

func TestAnalyze(t *testing.T) {
	profiles := []models.Profile{
		{DisplayName: "Mike", MessageCount: 40, Mentions: []string{"Sarah", "Tom"}, MentionedBy: []string{"Sarah"}},
		{DisplayName: "Sarah", MessageCount: 30, Mentions: []string{"Mike"}, MentionedBy: []string{"Mike", "Tom"}},
		{DisplayName: "Tom", MessageCount: 2, Mentions: []string{"Sarah"}, MentionedBy: []string{"Mike"}},
		{DisplayName: "Quiet", MessageCount: 1},
	}

	roles := Analyze(profiles)
	assert.Equal(t, []models.RoleEntry{{Name: "Sarah", Count: 2}, {Name: "Mike", Count: 1}, {Name: "Tom", Count: 1}}, roles.Hubs)
	assert.Equal(t, []models.RoleEntry{{Name: "Mike", Count: 2}, {Name: "Sarah", Count: 1}, {Name: "Tom", Count: 1}}, roles.Connectors)
	assert.Equal(t, []models.RoleEntry{{Name: "Tom", Count: 1}}, roles.Lurkers)

	empty := Analyze(nil)
	assert.NotNil(t, empty.Hubs)
	assert.Empty(t, empty.Lurkers)
}
