// Package deep maps local profiles and enrichment overlays onto the nested
// DeepProfile shape the match engine scores.
package deep

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/circlemap/internal/models"
)

// ErrMalformedOverlay is returned when overlay input cannot be decoded.
var ErrMalformedOverlay = errors.New("malformed overlay")

// linkedInConfidence seeds the confidence score of LinkedIn-verified profiles.
const linkedInConfidence = 75

// Partial is whatever is known about a person. Either field may be nil.
type Partial struct {
	Profile *models.Profile
	Overlay *models.Overlay
}

// Empty returns a deep profile whose collections are all empty, not nil.
func Empty() models.DeepProfile {
	var d models.DeepProfile
	fill(&d)
	return d
}

// Normalize never fails; missing data leaves fields empty.
func Normalize(p Partial) models.DeepProfile {
	d := Empty()
	if p.Profile != nil {
		applyProfile(&d, p.Profile)
	}
	if p.Overlay != nil {
		applyOverlay(&d, p.Overlay)
	}
	if d.ID == "" && d.Name != "" {
		d.ID = models.ProfileID(d.Name)
	}
	fill(&d)
	return d
}

func applyProfile(d *models.DeepProfile, p *models.Profile) {
	d.ID = p.ID
	d.Name = p.DisplayName
	d.Current.Location = p.Location.Primary
	for _, city := range p.Location.Cities {
		d.Timeline.Locations = append(d.Timeline.Locations, models.Stint{City: city})
	}
	for _, in := range p.Interests {
		d.Interests.Obsessions = addObsession(d.Interests.Obsessions, models.Obsession{Topic: in.Category, Depth: models.DepthInterested})
	}
	d.Scenes.Communities = appendUnique(d.Scenes.Communities, p.Affinities["sports"]...)
	d.Interests.Creates = appendUnique(d.Interests.Creates, p.Affinities["activities"]...)
}

func applyOverlay(d *models.DeepProfile, o *models.Overlay) {
	if o.Name != "" {
		d.Name = o.Name
	}
	setIf(&d.Current.Role, o.Role)
	setIf(&d.Current.Company, o.Company)
	setIf(&d.Current.Location, o.Location)

	for _, topic := range o.Interests {
		d.Interests.Obsessions = addObsession(d.Interests.Obsessions, models.Obsession{Topic: topic, Depth: models.DepthInterested})
	}
	d.Expertise = appendUnique(d.Expertise, o.Expertise...)
	d.LookingFor = appendUnique(d.LookingFor, o.LookingFor...)
	d.Offering = appendUnique(d.Offering, o.Offering...)

	if o.Timeline != nil {
		d.Timeline.Roles = appendDistinct(d.Timeline.Roles, o.Timeline.Roles...)
		d.Timeline.Education = appendDistinct(d.Timeline.Education, o.Timeline.Education...)
		d.Timeline.Locations = mergeStints(d.Timeline.Locations, o.Timeline.Locations)
	}
	if c := o.Current; c != nil {
		setIf(&d.Current.Role, c.Role)
		setIf(&d.Current.Company, c.Company)
		setIf(&d.Current.Location, c.Location)
		setIf(&d.Current.LifeStage, c.LifeStage)
		setIf(&d.Current.Mode, c.Mode)
		d.Current.Transitions = appendUnique(d.Current.Transitions, c.Transitions...)
	}
	if e := o.Experiences; e != nil {
		d.Experiences.Struggles = appendUnique(d.Experiences.Struggles, e.Struggles...)
		d.Experiences.Achievements = appendUnique(d.Experiences.Achievements, e.Achievements...)
		d.Experiences.Transformations = appendUnique(d.Experiences.Transformations, e.Transformations...)
	}
	if s := o.Scenes; s != nil {
		d.Scenes.Communities = appendUnique(d.Scenes.Communities, s.Communities...)
		d.Scenes.Venues = appendUnique(d.Scenes.Venues, s.Venues...)
		d.Scenes.Events = appendUnique(d.Scenes.Events, s.Events...)
		setIf(&d.Scenes.TravelPattern, s.TravelPattern)
		d.Scenes.TravelCircuit = appendUnique(d.Scenes.TravelCircuit, s.TravelCircuit...)
	}
	if i := o.DeepInterests; i != nil {
		for _, ob := range i.Obsessions {
			d.Interests.Obsessions = addObsession(d.Interests.Obsessions, ob)
		}
		d.Interests.Influences = appendUnique(d.Interests.Influences, i.Influences...)
		d.Interests.Contrarian = appendUnique(d.Interests.Contrarian, i.Contrarian...)
		d.Interests.Creates = appendUnique(d.Interests.Creates, i.Creates...)
	}
	if r := o.Relationships; r != nil {
		d.Relationships.CloseFriends = appendUnique(d.Relationships.CloseFriends, r.CloseFriends...)
		d.Relationships.Mentors = appendUnique(d.Relationships.Mentors, r.Mentors...)
		d.Relationships.Backers = appendUnique(d.Relationships.Backers, r.Backers...)
	}
	if v := o.Values; v != nil {
		d.Values.Causes = appendUnique(d.Values.Causes, v.Causes...)
		d.Values.Practices = appendUnique(d.Values.Practices, v.Practices...)
		d.Values.Philosophy = appendUnique(d.Values.Philosophy, v.Philosophy...)
	}

	ver := &d.Verification
	ver.IdentityConfirmed = ver.IdentityConfirmed || o.IdentityConfirmed
	ver.PhotoMatched = ver.PhotoMatched || o.PhotoMatched
	ver.MutualConfirmed = ver.MutualConfirmed || o.MutualConfirmed
	ver.RecentlyActive = ver.RecentlyActive || o.RecentlyActive
	ver.Sources = appendUnique(ver.Sources, o.Sources...)
	if o.Verified || o.LinkedInVerified {
		ver.LinkedInVerified = true
		ver.ConfidenceScore = linkedInConfidence
	}
}

// ParseOverlay decodes a JSON or YAML overlay.
func ParseOverlay(data []byte) (models.Overlay, error) {
	var o models.Overlay

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return o, fmt.Errorf("%w: empty input", ErrMalformedOverlay)
	}

	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &o); err != nil {
			return models.Overlay{}, fmt.Errorf("%w: %v", ErrMalformedOverlay, err)
		}
		return o, nil
	}
	if err := yaml.Unmarshal(trimmed, &o); err != nil {
		return models.Overlay{}, fmt.Errorf("%w: %v", ErrMalformedOverlay, err)
	}
	return o, nil
}

func setIf(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

var depthRank = map[string]int{
	models.DepthInterested: 1,
	models.DepthDeep:       2,
	models.DepthObsessed:   3,
}

// addObsession adds ob or raises the depth of an existing topic.
func addObsession(list []models.Obsession, ob models.Obsession) []models.Obsession {
	if strings.TrimSpace(ob.Topic) == "" {
		return list
	}
	if depthRank[ob.Depth] == 0 {
		ob.Depth = models.DepthInterested
	}
	for i, existing := range list {
		if strings.EqualFold(existing.Topic, ob.Topic) {
			if depthRank[ob.Depth] > depthRank[existing.Depth] {
				list[i].Depth = ob.Depth
			}
			return list
		}
	}
	return append(list, ob)
}

func mergeStints(list []models.Stint, add []models.Stint) []models.Stint {
	for _, s := range add {
		merged := false
		for i, existing := range list {
			// a bare city from chat signals takes the years from the overlay
			if strings.EqualFold(existing.City, s.City) && existing.StartYear == 0 && existing.EndYear == 0 {
				list[i] = s
				merged = true
				break
			}
		}
		if !merged {
			list = appendDistinct(list, s)
		}
	}
	return list
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		dup := false
		for _, existing := range list {
			if strings.EqualFold(existing, item) {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, item)
		}
	}
	return list
}

func appendDistinct[T comparable](list []T, items ...T) []T {
	for _, item := range items {
		dup := false
		for _, existing := range list {
			if existing == item {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, item)
		}
	}
	return list
}

func fill(d *models.DeepProfile) {
	orEmpty(&d.Timeline.Roles)
	orEmpty(&d.Timeline.Education)
	orEmpty(&d.Timeline.Locations)
	orEmpty(&d.Current.Transitions)
	orEmpty(&d.Experiences.Struggles)
	orEmpty(&d.Experiences.Achievements)
	orEmpty(&d.Experiences.Transformations)
	orEmpty(&d.Scenes.Communities)
	orEmpty(&d.Scenes.Venues)
	orEmpty(&d.Scenes.Events)
	orEmpty(&d.Scenes.TravelCircuit)
	orEmpty(&d.Interests.Obsessions)
	orEmpty(&d.Interests.Influences)
	orEmpty(&d.Interests.Contrarian)
	orEmpty(&d.Interests.Creates)
	orEmpty(&d.Relationships.CloseFriends)
	orEmpty(&d.Relationships.Mentors)
	orEmpty(&d.Relationships.Backers)
	orEmpty(&d.Values.Causes)
	orEmpty(&d.Values.Practices)
	orEmpty(&d.Values.Philosophy)
	orEmpty(&d.Expertise)
	orEmpty(&d.LookingFor)
	orEmpty(&d.Offering)
	orEmpty(&d.Verification.Sources)
}

func orEmpty[T any](s *[]T) {
	if *s == nil {
		*s = []T{}
	}
}
