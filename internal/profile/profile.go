// Package profile combines parser output and signal extractors into one
// Profile per member.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/signals"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

// Build returns one profile per member, in member order.
func Build(tr models.Transcript, v *vocab.Vocabulary) []models.Profile {
	if v == nil {
		v = vocab.Default()
	}

	mentions := signals.Mentions(tr.Members)
	total := len(tr.Messages)

	profiles := make([]models.Profile, 0, len(tr.Members))
	taken := make(map[string]bool, len(tr.Members))
	for _, m := range tr.Members {
		text := signals.JoinText(m.Messages)
		profiles = append(profiles, models.Profile{
			ID:            uniqueID(m.Name, taken),
			DisplayName:   m.Name,
			MessageCount:  m.MessageCount,
			FirstSeen:     m.FirstSeen,
			LastSeen:      m.LastSeen,
			Location:      signals.Location(text, v),
			Interests:     signals.Interests(text, v),
			Affinities:    signals.Affinities(text, v),
			ActivityLevel: signals.ActivityLevel(m.MessageCount, total),
			Mentions:      nonNil(mentions.Mentions[m.Name]),
			MentionedBy:   nonNil(mentions.MentionedBy[m.Name]),
			Timing:        signals.Timing(m.Messages),
			Emoji:         signals.Emoji(m.Messages),
			Links:         signals.Links(m.Messages, v),
		})
	}
	return profiles
}

// uniqueID gives name its profile ID, adding a name hash when another member
// already slugs to the same ID ("José" and "jose", say).
func uniqueID(name string, taken map[string]bool) string {
	id := models.ProfileID(name)
	if taken[id] {
		id += "-" + models.NameHash(name)
	}
	for base, n := id, 2; taken[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	taken[id] = true
	return id
}

// Find returns the profile with the given id or, failing that, display name.
func Find(profiles []models.Profile, key string) (models.Profile, bool) {
	for _, p := range profiles {
		if p.ID == key {
			return p, true
		}
	}
	for _, p := range profiles {
		if strings.EqualFold(p.DisplayName, key) {
			return p, true
		}
	}
	return models.Profile{}, false
}

// ToContact flattens a profile and an optional overlay into the shape used
// by cross-connection scoring. Overlay scalars win over local signals.
func ToContact(p models.Profile, o *models.Overlay) models.Contact {
	c := models.Contact{
		ID:         p.ID,
		Name:       p.DisplayName,
		Location:   p.Location.Primary,
		Interests:  p.InterestCategories(),
		Affinities: flattenAffinities(p.Affinities),
		LookingFor: []string{},
		Offering:   []string{},
		Expertise:  []string{},
	}
	if o == nil {
		return c
	}

	if o.Name != "" {
		c.Name = o.Name
	}
	if o.Location != "" {
		c.Location = o.Location
	}
	c.Role = o.Role
	c.Company = o.Company
	c.Industry = o.Industry
	c.Interests = union(c.Interests, o.Interests)
	c.Affinities = union(c.Affinities, o.Affinities)
	c.LookingFor = union(c.LookingFor, o.LookingFor)
	c.Offering = union(c.Offering, o.Offering)
	c.Expertise = union(c.Expertise, o.Expertise)
	return c
}

// flattenAffinities lists affinity items ordered by category name.
func flattenAffinities(aff map[string][]string) []string {
	cats := make([]string, 0, len(aff))
	for k := range aff {
		cats = append(cats, k)
	}
	sort.Strings(cats)

	out := []string{}
	for _, k := range cats {
		out = union(out, aff[k])
	}
	return out
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
