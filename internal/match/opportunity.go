package match

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

// Signal confidences.
const (
	confHiringOffering  = 0.90
	confHiringExpertise = 0.85
	confHiringNetwork   = 0.75
	confHiringMentions  = 0.70
	confIntro           = 0.85
	confLocation        = 0.60
	confInterest        = 0.70
	confExpertiseNeed   = 0.65

	minSharedInterests      = 2
	exactLocationBonus      = 20
	partialLocationBonus    = 10
	sharedExperienceBonus   = 10
	maxSharedExperience     = 20
	secondarySignalWeight   = 10
	DefaultMaxOpportunities = 10
)

// DetectOpportunities ranks roster members by what the user can do for them
// and they for the user. maxResults <= 0 uses DefaultMaxOpportunities.
func DetectOpportunities(user models.UserContext, roster []models.DeepProfile, maxResults int, v *vocab.Vocabulary) []models.Opportunity {
	if v == nil {
		v = vocab.Default()
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxOpportunities
	}

	out := []models.Opportunity{}
	for i := range roster {
		if opp, ok := scoreCandidate(user, &roster[i], v); ok {
			out = append(out, opp)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

func scoreCandidate(user models.UserContext, c *models.DeepProfile, v *vocab.Vocabulary) (models.Opportunity, bool) {
	signals := candidateSignals(user, c, v)
	if len(signals) == 0 {
		return models.Opportunity{}, false
	}

	// strongest first, generation order on ties
	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Confidence > signals[j].Confidence
	})
	primary, secondary := signals[0], signals[1:]

	locBonus := locationBonus(user.Location, c.Current.Location)
	expBonus := min(sharedExperiences(user, c)*sharedExperienceBonus, maxSharedExperience)
	multiplier := 0.7 + 0.4*float64(Verification(c))/100

	raw := primary.Confidence*100 + float64(secondarySignalWeight*len(secondary)) + float64(locBonus+expBonus)
	score := int(math.Round(math.Min(100, raw*multiplier)))

	reason := primary.Detail
	if len(secondary) > 0 {
		reason = fmt.Sprintf("%s (+%d more)", reason, len(secondary))
	}

	return models.Opportunity{
		ProfileID: c.ID,
		Name:      c.Name,
		Primary:   primary,
		Secondary: append([]models.OpportunitySignal{}, secondary...),
		Score:     score,
		Reason:    reason,
	}, true
}

func candidateSignals(user models.UserContext, c *models.DeepProfile, v *vocab.Vocabulary) []models.OpportunitySignal {
	var signals []models.OpportunitySignal

	if s, ok := hiringSignal(user, c, v); ok {
		signals = append(signals, s)
	}

	if need, have, ok := firstMatch(user.Needs, concat(c.Offering, c.Expertise), v); ok {
		signals = append(signals, models.OpportunitySignal{
			Type:       models.OpportunityIntro,
			Confidence: confIntro,
			Detail:     fmt.Sprintf("You need %s; %s offers %s", need, c.Name, have),
		})
	}

	if fuzzy(user.Location, c.Current.Location) {
		signals = append(signals, models.OpportunitySignal{
			Type:       models.OpportunityLocation,
			Confidence: confLocation,
			Detail:     fmt.Sprintf("Both in %s", sharedLabel(user.Location, c.Current.Location)),
		})
	}

	if shared := sharedInterests(user.Interests, interestTerms(c)); len(shared) >= minSharedInterests {
		signals = append(signals, models.OpportunitySignal{
			Type:       models.OpportunityInterest,
			Confidence: confInterest,
			Detail:     "Shared interests: " + strings.Join(shared, ", "),
		})
	}

	if need, ok := implicitCoverage(user.Needs, c, v); ok {
		signals = append(signals, models.OpportunitySignal{
			Type:       models.OpportunityExpertise,
			Confidence: confExpertiseNeed,
			Detail:     fmt.Sprintf("%s may help with %s", c.Name, need),
		})
	}

	return signals
}

// hiringSignal matches what the candidate is looking for against what the
// user can give, best source first.
func hiringSignal(user models.UserContext, c *models.DeepProfile, v *vocab.Vocabulary) (models.OpportunitySignal, bool) {
	sources := []struct {
		items []string
		conf  float64
		label string
	}{
		{user.Offerings, confHiringOffering, "you offer"},
		{user.Expertise, confHiringExpertise, "your expertise in"},
		{user.Network, confHiringNetwork, "your network includes"},
		{user.RecentMentions, confHiringMentions, "you recently mentioned"},
	}
	for _, src := range sources {
		if want, have, ok := firstMatch(c.LookingFor, src.items, v); ok {
			return models.OpportunitySignal{
				Type:       models.OpportunityHiring,
				Confidence: src.conf,
				Detail:     fmt.Sprintf("%s is looking for %s; %s %s", c.Name, want, src.label, have),
			}, true
		}
	}
	return models.OpportunitySignal{}, false
}

func interestTerms(c *models.DeepProfile) []string {
	terms := make([]string, 0, len(c.Interests.Obsessions)+len(c.Interests.Creates)+len(c.Scenes.Communities))
	for _, o := range c.Interests.Obsessions {
		terms = append(terms, o.Topic)
	}
	terms = append(terms, c.Interests.Creates...)
	return append(terms, c.Scenes.Communities...)
}

// sharedInterests lists the user interests the candidate also has.
func sharedInterests(user, candidate []string) []string {
	var shared []string
	for _, u := range user {
		for _, c := range candidate {
			if fuzzy(u, c) {
				shared = append(shared, u)
				break
			}
		}
	}
	return shared
}

// implicitCoverage finds a user need whose keywords show up in the
// candidate's role, obsessions or creations.
func implicitCoverage(needs []string, c *models.DeepProfile, v *vocab.Vocabulary) (string, bool) {
	corpus := []string{c.Current.Role}
	for _, o := range c.Interests.Obsessions {
		corpus = append(corpus, o.Topic)
	}
	corpus = append(corpus, c.Interests.Creates...)
	text := strings.ToLower(strings.Join(corpus, " "))

	for _, need := range needs {
		for _, tok := range tokens(need, v) {
			if strings.Contains(text, tok) {
				return need, true
			}
		}
	}
	return "", false
}

func locationBonus(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "" || b == "":
		return 0
	case strings.EqualFold(a, b):
		return exactLocationBonus
	case fuzzy(a, b):
		return partialLocationBonus
	default:
		return 0
	}
}

// sharedExperiences counts user companies and schools found on the
// candidate's timeline.
func sharedExperiences(user models.UserContext, c *models.DeepProfile) int {
	var places []string
	for _, r := range c.Timeline.Roles {
		places = append(places, r.Company)
	}
	for _, e := range c.Timeline.Education {
		places = append(places, e.School)
	}
	if c.Current.Company != "" {
		places = append(places, c.Current.Company)
	}

	n := 0
	for _, exp := range user.Experiences {
		for _, p := range places {
			if fuzzy(exp, p) {
				n++
				break
			}
		}
	}
	return n
}
