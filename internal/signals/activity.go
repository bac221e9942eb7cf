package signals

import (
	"strings"

	"github.com/raphaelgruber/circlemap/internal/models"
)

// minFirstNameLen is the shortest first name that counts as a mention.
const minFirstNameLen = 3

// ActivityLevel buckets a member's share of all messages.
func ActivityLevel(count, total int) models.ActivityLevel {
	if total <= 0 {
		return models.ActivityLow
	}
	share := float64(count) / float64(total)
	switch {
	case share < 0.05:
		return models.ActivityLow
	case share < 0.15:
		return models.ActivityMedium
	default:
		return models.ActivityHigh
	}
}

// MentionName returns the lowercase first name used for mention matching,
// or "" when it is too short to match reliably.
func MentionName(name string) string {
	first := models.FirstName(name)
	if len([]rune(first)) < minFirstNameLen {
		return ""
	}
	return first
}

// MentionIndex records who mentions whom, keyed by member name. Lists follow
// member order.
type MentionIndex struct {
	Mentions    map[string][]string
	MentionedBy map[string][]string
}

// Mentions finds, for every member, the other members whose first name
// appears in their messages.
func Mentions(members []models.Member) MentionIndex {
	idx := MentionIndex{
		Mentions:    make(map[string][]string, len(members)),
		MentionedBy: make(map[string][]string, len(members)),
	}
	for _, m := range members {
		idx.Mentions[m.Name] = []string{}
		idx.MentionedBy[m.Name] = []string{}
	}

	for _, author := range members {
		text := JoinText(author.Messages)
		for _, target := range members {
			if target.Name == author.Name {
				continue
			}
			first := MentionName(target.Name)
			if first == "" || !strings.Contains(text, first) {
				continue
			}
			idx.Mentions[author.Name] = append(idx.Mentions[author.Name], target.Name)
			idx.MentionedBy[target.Name] = append(idx.MentionedBy[target.Name], author.Name)
		}
	}

	return idx
}

// Timing classifies when a member posts. Messages with an unparseable time
// are left out of the ratios.
func Timing(messages []models.Message) models.Timing {
	var parsed, night, early int
	for _, m := range messages {
		h, _, ok := m.Clock()
		if !ok {
			continue
		}
		parsed++
		if IsNightHour(h) {
			night++
		}
		if h >= 5 && h < 8 {
			early++
		}
	}

	t := models.Timing{Pattern: models.TimingRegular}
	if parsed == 0 {
		return t
	}
	t.NightShare = round2(float64(night) / float64(parsed))
	t.EarlyShare = round2(float64(early) / float64(parsed))

	switch {
	case float64(night)/float64(parsed) > 0.3:
		t.Pattern = models.TimingNightOwl
	case float64(early)/float64(parsed) > 0.3:
		t.Pattern = models.TimingEarlyBird
	}
	return t
}

// IsNightHour reports whether h falls between 22:00 and 04:00.
func IsNightHour(h int) bool {
	return h >= 22 || h < 4
}
