// Package graph builds the weighted relationship graph between chat members
// and projects it into network roles.
package graph

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/signals"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

// lateNightHours are the reply hours counted as late night.
var lateNightHours = map[int]bool{23: true, 0: true, 1: true, 2: true, 3: true, 4: true}

const shortMessageLen = 20

type pair struct{ from, to string }

// directed holds the one-way reply and mention tallies from one member to another.
type directed struct {
	replies   int
	words     int
	lateNight int
	media     int
	mentions  int
}

// Build derives one edge per interacting member pair, strongest first.
func Build(tr models.Transcript, v *vocab.Vocabulary) []models.RelationshipEdge {
	if v == nil {
		v = vocab.Default()
	}

	stats := make(map[pair]*directed)
	get := func(from, to string) *directed {
		k := pair{from, to}
		d, ok := stats[k]
		if !ok {
			d = &directed{}
			stats[k] = d
		}
		return d
	}

	// replies: each message answers the one before it
	for i := 1; i < len(tr.Messages); i++ {
		prev, curr := tr.Messages[i-1], tr.Messages[i]
		if prev.Sender == curr.Sender {
			continue
		}
		d := get(curr.Sender, prev.Sender)
		d.replies++
		d.words += curr.WordCount()
		if h, _, ok := curr.Clock(); ok && lateNightHours[h] {
			d.lateNight++
		}
		if curr.IsMedia {
			d.media++
		}
	}

	names := make(map[string]string, len(tr.Members))
	for _, m := range tr.Members {
		if first := signals.MentionName(m.Name); first != "" {
			names[m.Name] = first
		}
	}
	for _, msg := range tr.Messages {
		lower := strings.ToLower(msg.Text)
		for _, m := range tr.Members {
			first, ok := names[m.Name]
			if !ok || m.Name == msg.Sender {
				continue
			}
			if strings.Contains(lower, first) {
				get(msg.Sender, m.Name).mentions++
			}
		}
	}

	informal := make(map[string]int, len(tr.Members))
	for _, m := range tr.Members {
		for _, msg := range m.Messages {
			if isInformal(msg.Text, v) {
				informal[m.Name]++
			}
		}
	}

	speed := responseSpeedScores(tr.Messages)

	seen := make(map[pair]bool)
	edges := []models.RelationshipEdge{}
	for k := range stats {
		a, b := order(k.from, k.to)
		if seen[pair{a, b}] {
			continue
		}
		seen[pair{a, b}] = true

		ab, ba := stats[pair{a, b}], stats[pair{b, a}]
		if ab == nil {
			ab = &directed{}
		}
		if ba == nil {
			ba = &directed{}
		}
		e, ok := combine(a, b, ab, ba, speed[pair{a, b}], informal[a]+informal[b])
		if ok {
			edges = append(edges, e)
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Strength != edges[j].Strength {
			return edges[i].Strength > edges[j].Strength
		}
		if edges[i].PersonA != edges[j].PersonA {
			return edges[i].PersonA < edges[j].PersonA
		}
		return edges[i].PersonB < edges[j].PersonB
	})
	return edges
}

func combine(a, b string, ab, ba *directed, speedScore, informality int) (models.RelationshipEdge, bool) {
	interactions := ab.replies + ba.replies
	mentions := ab.mentions + ba.mentions
	if interactions+mentions < 1 {
		return models.RelationshipEdge{}, false
	}

	bidirectional := ab.replies+ab.mentions >= 1 && ba.replies+ba.mentions >= 1
	lateNight := ab.lateNight + ba.lateNight
	media := ab.media + ba.media

	var avgDepth float64
	if interactions > 0 {
		avgDepth = float64(ab.words+ba.words) / float64(interactions)
	}

	score := math.Min(float64(interactions*3), 25) +
		math.Min(avgDepth*0.5, 12) +
		math.Min(float64(lateNight*5), 12) +
		math.Min(float64(media*4), 10) +
		math.Min(float64(mentions*3), 10) +
		math.Min(float64(speedScore), 10) +
		math.Min(float64(informality), 9)
	if bidirectional {
		score += 12
	}
	strength := int(math.Min(math.Round(score), 100))

	return models.RelationshipEdge{
		PersonA:           a,
		PersonB:           b,
		Strength:          strength,
		Interactions:      interactions,
		Bidirectional:     bidirectional,
		AvgMessageDepth:   math.Round(avgDepth*10) / 10,
		LateNightMessages: lateNight,
		MediaShared:       media,
		Mentions:          mentions,
		ResponseSpeed:     speedLabel(speedScore),
		Informality:       informalityLabel(informality),
		Label:             Label(strength),
	}, true
}

// responseSpeedScores scores the clock gap of every adjacent message pair
// between two different senders, keyed by ordered name pair. The gap ignores
// the date, so pairs spanning midnight can score as fast.
func responseSpeedScores(msgs []models.Message) map[pair]int {
	scores := make(map[pair]int)
	for i := 1; i < len(msgs); i++ {
		prev, curr := msgs[i-1], msgs[i]
		if prev.Sender == curr.Sender {
			continue
		}
		ph, pm, ok1 := prev.Clock()
		ch, cm, ok2 := curr.Clock()
		if !ok1 || !ok2 {
			continue
		}
		gap := (ch*60 + cm) - (ph*60 + pm)
		a, b := order(prev.Sender, curr.Sender)
		switch {
		case gap <= 5:
			scores[pair{a, b}] += 3
		case gap <= 30:
			scores[pair{a, b}]++
		}
	}
	return scores
}

func speedLabel(score int) models.ResponseSpeed {
	switch {
	case score >= 6:
		return models.ResponseFast
	case score >= 2:
		return models.ResponseNormal
	default:
		return models.ResponseSlow
	}
}

func informalityLabel(count int) models.Informality {
	if count >= 3 {
		return models.InformalityCasual
	}
	return models.InformalityFormal
}

// Label buckets an edge strength.
func Label(strength int) models.EdgeLabel {
	switch {
	case strength >= 60:
		return models.EdgeStrong
	case strength >= 30:
		return models.EdgeModerate
	default:
		return models.EdgeWeak
	}
}

// isInformal reports whether a message reads as casual: a slang word, a
// laughing emoji, or a short all-lowercase line.
func isInformal(text string, v *vocab.Vocabulary) bool {
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, marker := range v.CasualMarkers {
		if isWord(marker) {
			for _, w := range words {
				if w == marker {
					return true
				}
			}
			continue
		}
		if strings.Contains(lower, marker) {
			return true
		}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len([]rune(trimmed)) > shortMessageLen {
		return false
	}
	return trimmed == strings.ToLower(trimmed) && strings.IndexFunc(trimmed, unicode.IsLetter) >= 0
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func order(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
