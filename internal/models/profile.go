package models

// ActivityLevel buckets a member's share of the transcript.
type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityMedium ActivityLevel = "medium"
	ActivityHigh   ActivityLevel = "high"
)

// Location is the city signal extracted from a member's messages.
// Confidence grows by a fixed step per keyword hit and is not capped.
type Location struct {
	Cities     []string `json:"cities"`
	Primary    string   `json:"primary,omitempty"`
	Confidence float64  `json:"confidence"`
}

// Interest is one matched interest category.
type Interest struct {
	Category   string   `json:"category"`
	Keywords   []string `json:"keywords"`
	Confidence float64  `json:"confidence"` // matched / total keywords in category
}

// TimingPattern classifies when a member tends to post.
type TimingPattern string

const (
	TimingNightOwl  TimingPattern = "night_owl"
	TimingEarlyBird TimingPattern = "early_bird"
	TimingRegular   TimingPattern = "regular"
)

// Timing is the per-sender posting-hour signal.
type Timing struct {
	Pattern    TimingPattern `json:"pattern"`
	NightShare float64       `json:"nightShare"`
	EarlyShare float64       `json:"earlyShare"`
}

// EmojiCount is one entry of an emoji leaderboard.
type EmojiCount struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// EmojiProfile is the per-sender emoji signature.
type EmojiProfile struct {
	Top     []EmojiCount `json:"top"`
	Total   int          `json:"total"`
	Density float64      `json:"density"`
}

// LinkType classifies a shared URL by domain.
type LinkType string

const (
	LinkLinkedIn  LinkType = "linkedin"
	LinkTwitter   LinkType = "twitter"
	LinkInstagram LinkType = "instagram"
	LinkSpotify   LinkType = "spotify"
	LinkYouTube   LinkType = "youtube"
	LinkGitHub    LinkType = "github"
	LinkArticle   LinkType = "article"
	LinkEvent     LinkType = "event"
	LinkFitness   LinkType = "fitness"
	LinkBooks     LinkType = "books"
	LinkOther     LinkType = "other"
)

// SharedLink is a URL found in a message.
type SharedLink struct {
	URL    string   `json:"url"`
	Type   LinkType `json:"type"`
	Sender string   `json:"sender"`
	Date   string   `json:"date"`
}

// Profile is the keyword-derived view of one member.
type Profile struct {
	ID            string              `json:"id"`
	DisplayName   string              `json:"displayName"`
	MessageCount  int                 `json:"messageCount"`
	FirstSeen     string              `json:"firstSeen"`
	LastSeen      string              `json:"lastSeen"`
	Location      Location            `json:"location"`
	Interests     []Interest          `json:"interests"`
	Affinities    map[string][]string `json:"affinities"`
	ActivityLevel ActivityLevel       `json:"activityLevel"`
	Mentions      []string            `json:"mentions"`
	MentionedBy   []string            `json:"mentionedBy"`
	Timing        Timing              `json:"timing"`
	Emoji         EmojiProfile        `json:"emoji"`
	Links         []SharedLink        `json:"links"`
}

// InterestCategories returns the matched interest category names in rank order.
func (p *Profile) InterestCategories() []string {
	out := make([]string, 0, len(p.Interests))
	for _, in := range p.Interests {
		out = append(out, in.Category)
	}
	return out
}

// HasInterest reports whether the profile matched the given category.
func (p *Profile) HasInterest(category string) bool {
	for _, in := range p.Interests {
		if in.Category == category {
			return true
		}
	}
	return false
}
