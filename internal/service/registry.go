package service

import (
	"sort"
	"strings"
	"sync"

	"github.com/raphaelgruber/circlemap/internal/deep"
	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/profile"
)

// Registry holds the profiles of the loaded transcript and the overlays
// known for them. Callers own it; readers get copies.
type Registry struct {
	mu       sync.RWMutex
	profiles []models.Profile
	samples  map[string][]string
	overlays map[string]models.Overlay
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		samples:  map[string][]string{},
		overlays: map[string]models.Overlay{},
	}
}

// Load replaces the profiles with those of a. Overlays are kept, so
// re-analyzing a newer export keeps enrichment.
func (r *Registry) Load(a *Analysis) {
	samples := make(map[string][]string, len(a.Profiles))
	for _, p := range a.Profiles {
		samples[p.ID] = a.Samples(p.DisplayName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = append([]models.Profile(nil), a.Profiles...)
	r.samples = samples
}

// SetOverlay stores the overlay for id, replacing any previous one. id may
// name a contact who is not in the transcript.
func (r *Registry) SetOverlay(id string, o models.Overlay) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlays[id] = o
}

// Overlay returns the overlay stored for id.
func (r *Registry) Overlay(id string) (models.Overlay, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.overlays[id]
	return o, ok
}

// DeleteOverlay drops the overlay for id and reports whether one existed.
func (r *Registry) DeleteOverlay(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.overlays[id]
	delete(r.overlays, id)
	return ok
}

// Overlays returns a copy of every stored overlay keyed by id.
func (r *Registry) Overlays() map[string]models.Overlay {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]models.Overlay, len(r.overlays))
	for id, o := range r.overlays {
		out[id] = o
	}
	return out
}

// Get finds a profile by id or display name.
func (r *Registry) Get(key string) (models.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return profile.Find(r.profiles, key)
}

// Samples returns the message texts of a profile.
func (r *Registry) Samples(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.samples[id]
}

// Snapshot returns a copy of the loaded profiles.
func (r *Registry) Snapshot() []models.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Profile{}, r.profiles...)
}

// Deep resolves key (id or name) to a normalized deep profile, combining the
// chat profile and overlay when both exist.
func (r *Registry) Deep(key string) (models.DeepProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := profile.Find(r.profiles, key); ok {
		return deep.Normalize(r.partial(p.ID, &p)), true
	}
	if _, ok := r.overlays[key]; ok {
		return r.orphan(key), true
	}
	for id, o := range r.overlays {
		if strings.EqualFold(o.Name, key) {
			return r.orphan(id), true
		}
	}
	return models.DeepProfile{}, false
}

// DeepAll returns every known person: transcript members in profile order,
// then overlay-only contacts by id.
func (r *Registry) DeepAll() []models.DeepProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.DeepProfile, 0, len(r.profiles)+len(r.overlays))
	for i := range r.profiles {
		p := r.profiles[i]
		out = append(out, deep.Normalize(r.partial(p.ID, &p)))
	}
	for _, id := range r.orphanIDs() {
		out = append(out, r.orphan(id))
	}
	return out
}

// Contacts returns the flat contact view of every known person, in the same
// order as DeepAll.
func (r *Registry) Contacts() []models.Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Contact, 0, len(r.profiles)+len(r.overlays))
	for _, p := range r.profiles {
		var o *models.Overlay
		if ov, ok := r.overlays[p.ID]; ok {
			o = &ov
		}
		out = append(out, profile.ToContact(p, o))
	}
	for _, id := range r.orphanIDs() {
		o := r.overlays[id]
		name := o.Name
		if name == "" {
			name = id
		}
		out = append(out, profile.ToContact(models.Profile{ID: id, DisplayName: name}, &o))
	}
	return out
}

// caller holds r.mu
func (r *Registry) partial(id string, p *models.Profile) deep.Partial {
	part := deep.Partial{Profile: p}
	if o, ok := r.overlays[id]; ok {
		part.Overlay = &o
		if p == nil && o.Name == "" {
			part.Overlay.Name = id
		}
	}
	return part
}

// orphan normalizes an overlay-only contact, keeping its registry id.
// Caller holds r.mu.
func (r *Registry) orphan(id string) models.DeepProfile {
	d := deep.Normalize(r.partial(id, nil))
	d.ID = id
	return d
}

// orphanIDs lists overlay ids with no transcript profile. Caller holds r.mu.
func (r *Registry) orphanIDs() []string {
	known := make(map[string]bool, len(r.profiles))
	for _, p := range r.profiles {
		known[p.ID] = true
	}
	var ids []string
	for id := range r.overlays {
		if !known[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
