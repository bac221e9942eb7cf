// Package signals extracts keyword-driven signals from a member's messages.
// Every extractor is pure and returns a zero value when nothing matches.
package signals

import (
	"math"
	"sort"
	"strings"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

// cityHitWeight is the confidence added per city keyword occurrence.
const cityHitWeight = 0.3

// JoinText lowercases and joins message bodies for keyword scans.
func JoinText(messages []models.Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.ToLower(m.Text))
	}
	return b.String()
}

// Location counts city keyword occurrences in lowercase text.
func Location(text string, v *vocab.Vocabulary) models.Location {
	loc := models.Location{Cities: []string{}}

	best, hits := 0, 0
	for _, city := range v.Cities {
		n := 0
		for _, kw := range city.Keywords {
			n += strings.Count(text, strings.ToLower(kw))
		}
		if n == 0 {
			continue
		}
		loc.Cities = append(loc.Cities, city.Name)
		hits += n
		if n > best {
			best = n
			loc.Primary = city.Name
		}
	}
	loc.Confidence = round2(float64(hits) * cityHitWeight)

	return loc
}

// Interests matches every interest category against lowercase text.
// Confidence is the share of the category's keywords that matched.
func Interests(text string, v *vocab.Vocabulary) []models.Interest {
	out := []models.Interest{}
	for _, cat := range v.Interests {
		matched := matchKeywords(text, cat.Keywords)
		if len(matched) == 0 {
			continue
		}
		out = append(out, models.Interest{
			Category:   cat.Name,
			Keywords:   matched,
			Confidence: float64(len(matched)) / float64(len(cat.Keywords)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// Affinities lists the matched items per affinity category. Every category
// of the vocabulary is present in the result.
func Affinities(text string, v *vocab.Vocabulary) map[string][]string {
	out := make(map[string][]string, len(v.Affinities))
	for _, cat := range v.Affinities {
		out[cat.Name] = matchKeywords(text, cat.Keywords)
	}
	return out
}

// matchKeywords returns the distinct keywords contained in text, in list order.
func matchKeywords(text string, keywords []string) []string {
	matched := []string{}
	seen := make(map[string]bool)
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" || seen[kw] {
			continue
		}
		if strings.Contains(text, kw) {
			seen[kw] = true
			matched = append(matched, kw)
		}
	}
	return matched
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
