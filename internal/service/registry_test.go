package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/circlemap/internal/models"
)

func loadedRegistry(t *testing.T) *Registry {
	t.Helper()
	a, err := NewAnalyzer(nil, nil, nil).Analyze(context.Background(), bangkokChat)
	require.NoError(t, err)
	r := NewRegistry()
	r.Load(a)
	return r
}

func TestRegistry_GetByIDOrName(t *testing.T) {
	r := loadedRegistry(t)

	p, ok := r.Get("sarah-kim")
	require.True(t, ok)
	assert.Equal(t, "Sarah Kim", p.DisplayName)

	p, ok = r.Get("sarah kim")
	require.True(t, ok)
	assert.Equal(t, "sarah-kim", p.ID)

	_, ok = r.Get("nobody")
	assert.False(t, ok)
}

func TestRegistry_DeepMergesOverlay(t *testing.T) {
	r := loadedRegistry(t)
	r.SetOverlay("mike-chen", models.Overlay{Role: "Founder", Company: "Kickstart"})

	d, ok := r.Deep("Mike Chen")
	require.True(t, ok)
	assert.Equal(t, "mike-chen", d.ID)
	assert.Equal(t, "Founder", d.Current.Role)
	assert.Equal(t, "Kickstart", d.Current.Company)
	assert.Equal(t, "Bangkok", d.Current.Location)
}

func TestRegistry_OverlayOnlyContacts(t *testing.T) {
	r := loadedRegistry(t)
	r.SetOverlay("zoe", models.Overlay{Role: "Designer"})
	r.SetOverlay("ana", models.Overlay{Name: "Ana Lee", Location: "Lisbon"})

	d, ok := r.Deep("Ana Lee")
	require.True(t, ok)
	assert.Equal(t, "ana", d.ID)

	all := r.DeepAll()
	require.Len(t, all, 5)
	ids := make([]string, len(all))
	for i, d := range all {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{"mike-chen", "sarah-kim", "tom", "ana", "zoe"}, ids)
	assert.Equal(t, "zoe", all[4].Name)

	contacts := r.Contacts()
	require.Len(t, contacts, 5)
	assert.Equal(t, "Ana Lee", contacts[3].Name)
	assert.Equal(t, "Lisbon", contacts[3].Location)
	assert.Equal(t, "Designer", contacts[4].Role)
}

func TestRegistry_OverlaysSurviveReload(t *testing.T) {
	r := loadedRegistry(t)
	r.SetOverlay("tom", models.Overlay{Role: "Chef"})

	a, err := NewAnalyzer(nil, nil, nil).Analyze(context.Background(), bangkokChat)
	require.NoError(t, err)
	r.Load(a)

	o, ok := r.Overlay("tom")
	require.True(t, ok)
	assert.Equal(t, "Chef", o.Role)

	assert.True(t, r.DeleteOverlay("tom"))
	assert.False(t, r.DeleteOverlay("tom"))
	assert.Empty(t, r.Overlays())
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	r := loadedRegistry(t)
	snap := r.Snapshot()
	snap[0].DisplayName = "changed"

	p, ok := r.Get("mike-chen")
	require.True(t, ok)
	assert.Equal(t, "Mike Chen", p.DisplayName)
}
