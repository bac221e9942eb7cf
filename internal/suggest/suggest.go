// Package suggest proposes meetups for members who share a city and an interest.
package suggest

import (
	"math"
	"sort"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

const (
	minGroupSize   = 2
	baseConfidence = 0.5
	perParticipant = 0.12
	maxConfidence  = 0.95
)

// Generate groups profiles by normalized primary city and emits one
// suggestion per interest shared by at least two members of a group.
// Confidence is sized by the members who share the interest, not by the
// whole city group.
func Generate(profiles []models.Profile, v *vocab.Vocabulary) []models.Suggestion {
	if v == nil {
		v = vocab.Default()
	}

	var cities []string
	groups := make(map[string][]models.Profile)
	for _, p := range profiles {
		city := v.NormalizeCity(p.Location.Primary)
		if city == "" {
			continue
		}
		if _, ok := groups[city]; !ok {
			cities = append(cities, city)
		}
		groups[city] = append(groups[city], p)
	}

	out := []models.Suggestion{}
	for _, city := range cities {
		members := groups[city]
		if len(members) < minGroupSize {
			continue
		}

		var categories []string
		holders := make(map[string][]string)
		for _, p := range members {
			for _, in := range p.Interests {
				if _, ok := holders[in.Category]; !ok {
					categories = append(categories, in.Category)
				}
				holders[in.Category] = append(holders[in.Category], p.DisplayName)
			}
		}

		for _, cat := range categories {
			participants := holders[cat]
			if len(participants) < minGroupSize {
				continue
			}
			act := v.ActivityFor(cat)
			out = append(out, models.Suggestion{
				Location:     city,
				Activity:     cat,
				Title:        act.Title,
				Emoji:        act.Emoji,
				Participants: participants,
				Confidence:   Confidence(len(participants)),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].Activity < out[j].Activity
	})
	return out
}

// Confidence is the percent confidence for a meetup of n participants.
func Confidence(n int) int {
	c := math.Min(baseConfidence+float64(n-1)*perParticipant, maxConfidence)
	return int(math.Round(c * 100))
}
