package signals

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

const topEmojiCount = 5

var urlRegex = regexp.MustCompile(`https?://[^\s<>"']+`)

// IsEmoji reports whether r is in the pictograph or dingbat blocks.
func IsEmoji(r rune) bool {
	return (r >= 0x1F300 && r <= 0x1FAFF) || (r >= 0x2600 && r <= 0x27BF)
}

// Emoji builds the emoji signature of a set of messages.
func Emoji(messages []models.Message) models.EmojiProfile {
	counts := make(map[rune]int)
	total := 0
	for _, m := range messages {
		for _, r := range m.Text {
			if IsEmoji(r) {
				counts[r]++
				total++
			}
		}
	}

	runes := make([]rune, 0, len(counts))
	for r := range counts {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool {
		if counts[runes[i]] != counts[runes[j]] {
			return counts[runes[i]] > counts[runes[j]]
		}
		return runes[i] < runes[j]
	})
	if len(runes) > topEmojiCount {
		runes = runes[:topEmojiCount]
	}

	p := models.EmojiProfile{Top: make([]models.EmojiCount, 0, len(runes)), Total: total}
	for _, r := range runes {
		p.Top = append(p.Top, models.EmojiCount{Emoji: string(r), Count: counts[r]})
	}
	if len(messages) > 0 {
		p.Density = round2(float64(total) / float64(len(messages)))
	}
	return p
}

// Links extracts and classifies URLs shared in messages.
func Links(messages []models.Message, v *vocab.Vocabulary) []models.SharedLink {
	links := []models.SharedLink{}
	for _, m := range messages {
		for _, raw := range urlRegex.FindAllString(m.Text, -1) {
			raw = strings.TrimRight(raw, ".,;:!?)]}")
			u, err := url.Parse(raw)
			if err != nil || u.Host == "" {
				continue
			}
			links = append(links, models.SharedLink{
				URL:    raw,
				Type:   models.LinkType(v.LinkType(u.Hostname())),
				Sender: m.Sender,
				Date:   m.Date,
			})
		}
	}
	return links
}
