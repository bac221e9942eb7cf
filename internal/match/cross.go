package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

// Cross-connection points.
const (
	pointsNeedOffer     = 25
	pointsLocation      = 15
	pointsInterest      = 10
	pointsIndustry      = 10
	pointsComplementary = 15
	pointsAffinity      = 8
	pointsEmployer      = 20
)

// FindCrossConnections scores every pair of contacts and returns the pairs
// with a positive score, best first.
func FindCrossConnections(contacts []models.Contact, v *vocab.Vocabulary) []models.CrossConnection {
	if v == nil {
		v = vocab.Default()
	}
	out := []models.CrossConnection{}
	for i := 0; i < len(contacts); i++ {
		for j := i + 1; j < len(contacts); j++ {
			if cc, ok := CrossConnect(&contacts[i], &contacts[j], v); ok {
				out = append(out, cc)
			}
		}
	}
	SortCrossConnections(out)
	return out
}

// SortCrossConnections orders by score, then names.
func SortCrossConnections(out []models.CrossConnection) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].PersonA != out[j].PersonA {
			return out[i].PersonA < out[j].PersonA
		}
		return out[i].PersonB < out[j].PersonB
	})
}

// CrossConnect scores a single pair. ok is false when nothing connects them.
func CrossConnect(a, b *models.Contact, v *vocab.Vocabulary) (models.CrossConnection, bool) {
	score := 0
	var reasons []string

	if need, offer, ok := firstMatch(a.LookingFor, concat(b.Offering, b.Expertise), v); ok {
		score += pointsNeedOffer
		reasons = append(reasons, fmt.Sprintf("%s is looking for %s and %s offers %s", a.Name, need, b.Name, offer))
	}
	if need, offer, ok := firstMatch(b.LookingFor, concat(a.Offering, a.Expertise), v); ok {
		score += pointsNeedOffer
		reasons = append(reasons, fmt.Sprintf("%s is looking for %s and %s offers %s", b.Name, need, a.Name, offer))
	}

	if la := v.NormalizeCity(a.Location); la != "" && strings.EqualFold(la, v.NormalizeCity(b.Location)) {
		score += pointsLocation
		reasons = append(reasons, "both based in "+la)
	}

	for _, in := range intersect(a.Interests, b.Interests) {
		score += pointsInterest
		reasons = append(reasons, "both into "+in)
	}

	if ia := strings.TrimSpace(a.Industry); ia != "" && strings.EqualFold(ia, strings.TrimSpace(b.Industry)) {
		score += pointsIndustry
		reasons = append(reasons, "both work in "+ia)
	}

	if ra, rb, ok := complementary(a.Role, b.Role, v); ok {
		score += pointsComplementary
		reasons = append(reasons, fmt.Sprintf("%s and %s complement each other", ra, rb))
	}

	for _, af := range intersect(a.Affinities, b.Affinities) {
		score += pointsAffinity
		reasons = append(reasons, "both love "+af)
	}

	if ca := strings.TrimSpace(a.Company); ca != "" && strings.EqualFold(ca, strings.TrimSpace(b.Company)) {
		score += pointsEmployer
		reasons = append(reasons, "both at "+ca)
	}

	if score <= 0 {
		return models.CrossConnection{}, false
	}
	return models.CrossConnection{
		PersonA:      a.Name,
		PersonB:      b.Name,
		Score:        min(score, 100),
		Reasons:      reasons,
		IntroMessage: crossIntro(a, b, reasons),
	}, true
}

// complementary reports whether the two roles form a pair from the
// vocabulary's complementary role table, in either order.
func complementary(roleA, roleB string, v *vocab.Vocabulary) (string, string, bool) {
	la, lb := strings.ToLower(roleA), strings.ToLower(roleB)
	if la == "" || lb == "" {
		return "", "", false
	}
	for _, p := range v.ComplementaryRoles {
		if len(p) != 2 {
			continue
		}
		if strings.Contains(la, p[0]) && strings.Contains(lb, p[1]) {
			return p[0], p[1], true
		}
		if strings.Contains(la, p[1]) && strings.Contains(lb, p[0]) {
			return p[1], p[0], true
		}
	}
	return "", "", false
}

// intersect returns the items of a also in b, ignoring case, in a's order.
func intersect(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, s := range b {
		in[strings.ToLower(strings.TrimSpace(s))] = true
	}
	var out []string
	seen := make(map[string]bool)
	for _, s := range a {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" || seen[k] || !in[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

func crossIntro(a, b *models.Contact, reasons []string) string {
	return fmt.Sprintf("Hey %s and %s! You two should meet: %s.",
		firstName(a.Name), firstName(b.Name), strings.Join(reasons, "; "))
}
