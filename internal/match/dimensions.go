package match

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

// Dimension names.
const (
	DimensionSharedStruggle       = "SHARED_STRUGGLE"
	DimensionSharedTransformation = "SHARED_TRANSFORMATION"
	DimensionTimelineOverlap      = "TIMELINE_OVERLAP"
	DimensionRelationshipBridge   = "RELATIONSHIP_BRIDGE"
	DimensionSharedAchievement    = "SHARED_ACHIEVEMENT"
	DimensionSharedObsession      = "SHARED_OBSESSION"
	DimensionSceneOverlap         = "SCENE_OVERLAP"
	DimensionContrarianAlignment  = "CONTRARIAN_ALIGNMENT"
	DimensionSharedInfluence      = "SHARED_INFLUENCE"
	DimensionValuesAlignment      = "VALUES_ALIGNMENT"
	DimensionLifeStageSync        = "LIFE_STAGE_SYNC"
)

const (
	longOverlapYears = 2
	longOverlapBonus = 5
	cityPenalty      = -15
	venueBonus       = 10
	obsessedBonus    = 10
	deepBonus        = 5
)

// DefaultDimensions returns the built-in dimension table, strongest first.
// currentYear closes ranges without an end year.
func DefaultDimensions(v *vocab.Vocabulary, currentYear func() int) []Dimension {
	return []Dimension{
		{DimensionSharedStruggle, 90, bucketMatch(v, func(d *models.DeepProfile) []string { return d.Experiences.Struggles },
			"Both went through %s", "Ask each other about %s.")},
		{DimensionSharedTransformation, 85, bucketMatch(v, func(d *models.DeepProfile) []string { return d.Experiences.Transformations },
			"Both transformed through %s", "Compare notes on %s.")},
		{DimensionTimelineOverlap, 80, timelineOverlap(v, currentYear)},
		{DimensionRelationshipBridge, 75, relationshipBridge},
		{DimensionSharedAchievement, 70, bucketMatch(v, func(d *models.DeepProfile) []string { return d.Experiences.Achievements },
			"Both achieved %s", "Swap stories about %s.")},
		{DimensionSharedObsession, 65, sharedObsession},
		{DimensionSceneOverlap, 60, sceneOverlap},
		{DimensionContrarianAlignment, 60, listMatch(func(d *models.DeepProfile) []string { return d.Interests.Contrarian },
			"Both believe %s", "You share an unpopular take: %s.")},
		{DimensionSharedInfluence, 55, listMatch(func(d *models.DeepProfile) []string { return d.Interests.Influences },
			"Both influenced by %s", "Ask what %s changed for each of you.")},
		{DimensionValuesAlignment, 50, listMatch(func(d *models.DeepProfile) []string {
			return concat(d.Values.Causes, d.Values.Practices, d.Values.Philosophy)
		}, "Both care about %s", "You both care about %s.")},
		{DimensionLifeStageSync, 45, lifeStageSync},
	}
}

// bucketMatch groups free-text experiences into vocabulary buckets and hits
// once per shared bucket.
func bucketMatch(v *vocab.Vocabulary, items func(*models.DeepProfile) []string, detail, hook string) MatchFunc {
	return func(a, b *models.DeepProfile) []Hit {
		ba := buckets(v, items(a))
		bb := buckets(v, items(b))
		var hits []Hit
		for _, bucket := range v.ExperienceBuckets {
			if ba[bucket.Name] && bb[bucket.Name] {
				label := humanize(bucket.Name)
				hits = append(hits, Hit{
					Detail: fmt.Sprintf(detail, label),
					Hook:   fmt.Sprintf(hook, label),
				})
			}
		}
		return hits
	}
}

func buckets(v *vocab.Vocabulary, items []string) map[string]bool {
	out := make(map[string]bool)
	for _, item := range items {
		if b, ok := v.Bucket(item); ok {
			out[b] = true
		}
	}
	return out
}

// span is an inclusive year range.
type span struct{ start, end int }

func toSpan(start, end, currentYear int) (span, bool) {
	if start == 0 {
		return span{}, false
	}
	if end == 0 {
		end = currentYear
	}
	return span{start, end}, end >= start
}

// overlap returns the shared years of two ranges.
func overlap(a, b span) (span, bool) {
	s := span{max(a.start, b.start), min(a.end, b.end)}
	return s, s.end >= s.start
}

func (s span) String() string {
	if s.start == s.end {
		return fmt.Sprint(s.start)
	}
	return fmt.Sprintf("%d-%d", s.start, s.end)
}

type placeTime struct {
	place string
	span  span
}

func timelineOverlap(v *vocab.Vocabulary, currentYear func() int) MatchFunc {
	return func(a, b *models.DeepProfile) []Hit {
		now := currentYear()
		var hits []Hit

		// best overlap per shared place, keyed by lowercase name
		best := func(as, bs []placeTime) []placeTime {
			var order []string
			found := make(map[string]placeTime)
			for _, pa := range as {
				for _, pb := range bs {
					if !strings.EqualFold(pa.place, pb.place) {
						continue
					}
					o, ok := overlap(pa.span, pb.span)
					if !ok {
						continue
					}
					key := strings.ToLower(pa.place)
					prev, seen := found[key]
					if !seen {
						order = append(order, key)
					}
					if !seen || o.end-o.start > prev.span.end-prev.span.start {
						found[key] = placeTime{sharedLabel(pa.place, pb.place), o}
					}
				}
			}
			out := make([]placeTime, 0, len(order))
			for _, k := range order {
				out = append(out, found[k])
			}
			return out
		}

		roles := func(d *models.DeepProfile) []placeTime {
			var out []placeTime
			for _, r := range d.Timeline.Roles {
				if s, ok := toSpan(r.StartYear, r.EndYear, now); ok && strings.TrimSpace(r.Company) != "" {
					out = append(out, placeTime{r.Company, s})
				}
			}
			return out
		}
		schools := func(d *models.DeepProfile) []placeTime {
			var out []placeTime
			for _, e := range d.Timeline.Education {
				if s, ok := toSpan(e.StartYear, e.EndYear, now); ok && strings.TrimSpace(e.School) != "" {
					out = append(out, placeTime{e.School, s})
				}
			}
			return out
		}
		cities := func(d *models.DeepProfile) []placeTime {
			var out []placeTime
			for _, l := range d.Timeline.Locations {
				if s, ok := toSpan(l.StartYear, l.EndYear, now); ok && strings.TrimSpace(l.City) != "" {
					out = append(out, placeTime{v.NormalizeCity(l.City), s})
				}
			}
			return out
		}

		bonus := func(s span) int {
			if s.end-s.start >= longOverlapYears {
				return longOverlapBonus
			}
			return 0
		}

		for _, pt := range best(roles(a), roles(b)) {
			hits = append(hits, Hit{
				Bonus:  bonus(pt.span),
				Detail: fmt.Sprintf("Both at %s (%s)", pt.place, pt.span),
				Hook:   fmt.Sprintf("You overlapped at %s around %d.", pt.place, pt.span.start),
			})
		}
		for _, pt := range best(schools(a), schools(b)) {
			hits = append(hits, Hit{
				Bonus:  bonus(pt.span),
				Detail: fmt.Sprintf("Both at %s (%s)", pt.place, pt.span),
				Hook:   fmt.Sprintf("You were both at %s around %d.", pt.place, pt.span.start),
			})
		}
		for _, pt := range best(cities(a), cities(b)) {
			hits = append(hits, Hit{
				Bonus:  bonus(pt.span) + cityPenalty,
				Detail: fmt.Sprintf("Both lived in %s (%s)", pt.place, pt.span),
				Hook:   fmt.Sprintf("You were both in %s around %d.", pt.place, pt.span.start),
			})
		}
		return hits
	}
}

func relationshipBridge(a, b *models.DeepProfile) []Hit {
	people := func(d *models.DeepProfile) []string {
		return concat(d.Relationships.CloseFriends, d.Relationships.Mentors, d.Relationships.Backers)
	}
	var hits []Hit
	seen := make(map[string]bool)
	for _, pa := range people(a) {
		for _, pb := range people(b) {
			name := strings.TrimSpace(pa)
			if name == "" || !strings.EqualFold(name, strings.TrimSpace(pb)) {
				continue
			}
			label := sharedLabel(pa, pb)
			if seen[strings.ToLower(label)] {
				continue
			}
			seen[strings.ToLower(label)] = true
			hits = append(hits, Hit{
				Detail: "Both know " + label,
				Hook:   "You both know " + label + ".",
			})
		}
	}
	return hits
}

var depthBonus = map[string]int{
	models.DepthObsessed: obsessedBonus,
	models.DepthDeep:     deepBonus,
}

func sharedObsession(a, b *models.DeepProfile) []Hit {
	var hits []Hit
	seen := make(map[string]bool)
	for _, oa := range a.Interests.Obsessions {
		for _, ob := range b.Interests.Obsessions {
			if !fuzzy(oa.Topic, ob.Topic) {
				continue
			}
			label := sharedLabel(oa.Topic, ob.Topic)
			key := strings.ToLower(label)
			if seen[key] {
				continue
			}
			seen[key] = true
			hits = append(hits, Hit{
				Bonus:  min(depthBonus[oa.Depth], depthBonus[ob.Depth]),
				Detail: "Both into " + label,
				Hook:   "You're both into " + label + ".",
			})
		}
	}
	return hits
}

func sceneOverlap(a, b *models.DeepProfile) []Hit {
	hits := fuzzyHits(
		concat(a.Scenes.Communities, a.Scenes.Events),
		concat(b.Scenes.Communities, b.Scenes.Events),
		"Both part of %s", "You both show up at %s.")
	for _, h := range fuzzyHits(a.Scenes.Venues, b.Scenes.Venues, "Both frequent %s", "You both hang out at %s.") {
		h.Bonus = venueBonus
		hits = append(hits, h)
	}
	return hits
}

func listMatch(items func(*models.DeepProfile) []string, detail, hook string) MatchFunc {
	return func(a, b *models.DeepProfile) []Hit {
		return fuzzyHits(items(a), items(b), detail, hook)
	}
}

func lifeStageSync(a, b *models.DeepProfile) []Hit {
	var hits []Hit
	if s := strings.TrimSpace(a.Current.LifeStage); s != "" && strings.EqualFold(s, strings.TrimSpace(b.Current.LifeStage)) {
		label := sharedLabel(a.Current.LifeStage, b.Current.LifeStage)
		hits = append(hits, Hit{Detail: "Both at the " + label + " stage", Hook: "You're at the same stage: " + label + "."})
	}
	if m := strings.TrimSpace(a.Current.Mode); m != "" && strings.EqualFold(m, strings.TrimSpace(b.Current.Mode)) {
		label := sharedLabel(a.Current.Mode, b.Current.Mode)
		hits = append(hits, Hit{Detail: "Both in " + label + " mode", Hook: "You're both in " + label + " mode."})
	}
	hits = append(hits, fuzzyHits(a.Current.Transitions, b.Current.Transitions,
		"Both going through %s", "You're both going through %s.")...)
	return hits
}

// fuzzyHits emits one hit per distinct fuzzy match between two lists.
func fuzzyHits(as, bs []string, detail, hook string) []Hit {
	var hits []Hit
	seen := make(map[string]bool)
	for _, x := range as {
		for _, y := range bs {
			if !fuzzy(x, y) {
				continue
			}
			label := sharedLabel(x, y)
			key := strings.ToLower(label)
			if seen[key] {
				continue
			}
			seen[key] = true
			hits = append(hits, Hit{
				Detail: fmt.Sprintf(detail, label),
				Hook:   fmt.Sprintf(hook, label),
			})
		}
	}
	return hits
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
