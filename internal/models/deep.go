package models

// Role is one position on a person's timeline. A zero EndYear means current.
type Role struct {
	Title     string `json:"title" yaml:"title"`
	Company   string `json:"company" yaml:"company"`
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`
	StartYear int    `json:"startYear,omitempty" yaml:"startYear,omitempty"`
	EndYear   int    `json:"endYear,omitempty" yaml:"endYear,omitempty"`
}

// Education is one school on a person's timeline.
type Education struct {
	School    string `json:"school" yaml:"school"`
	Degree    string `json:"degree,omitempty" yaml:"degree,omitempty"`
	Field     string `json:"field,omitempty" yaml:"field,omitempty"`
	StartYear int    `json:"startYear,omitempty" yaml:"startYear,omitempty"`
	EndYear   int    `json:"endYear,omitempty" yaml:"endYear,omitempty"`
}

// Stint is a period lived in a city.
type Stint struct {
	City      string `json:"city" yaml:"city"`
	StartYear int    `json:"startYear,omitempty" yaml:"startYear,omitempty"`
	EndYear   int    `json:"endYear,omitempty" yaml:"endYear,omitempty"`
}

type Timeline struct {
	Roles     []Role      `json:"roles" yaml:"roles"`
	Education []Education `json:"education" yaml:"education"`
	Locations []Stint     `json:"locations" yaml:"locations"`
}

type Current struct {
	Role        string   `json:"role" yaml:"role"`
	Company     string   `json:"company" yaml:"company"`
	Location    string   `json:"location" yaml:"location"`
	LifeStage   string   `json:"lifeStage" yaml:"lifeStage"`
	Mode        string   `json:"mode" yaml:"mode"`
	Transitions []string `json:"transitions" yaml:"transitions"`
}

type Experiences struct {
	Struggles       []string `json:"struggles" yaml:"struggles"`
	Achievements    []string `json:"achievements" yaml:"achievements"`
	Transformations []string `json:"transformations" yaml:"transformations"`
}

type Scenes struct {
	Communities   []string `json:"communities" yaml:"communities"`
	Venues        []string `json:"venues" yaml:"venues"`
	Events        []string `json:"events" yaml:"events"`
	TravelPattern string   `json:"travelPattern" yaml:"travelPattern"`
	TravelCircuit []string `json:"travelCircuit" yaml:"travelCircuit"`
}

// Depth levels for obsessions, weakest first.
const (
	DepthInterested = "interested"
	DepthDeep       = "deep"
	DepthObsessed   = "obsessed"
)

// Obsession is a topic a person cares about and how much.
type Obsession struct {
	Topic string `json:"topic" yaml:"topic"`
	Depth string `json:"depth" yaml:"depth"`
}

type DeepInterests struct {
	Obsessions []Obsession `json:"obsessions" yaml:"obsessions"`
	Influences []string    `json:"influences" yaml:"influences"`
	Contrarian []string    `json:"contrarian" yaml:"contrarian"`
	Creates    []string    `json:"creates" yaml:"creates"`
}

type Relationships struct {
	CloseFriends []string `json:"closeFriends" yaml:"closeFriends"`
	Mentors      []string `json:"mentors" yaml:"mentors"`
	Backers      []string `json:"backers" yaml:"backers"`
}

type Values struct {
	Causes     []string `json:"causes" yaml:"causes"`
	Practices  []string `json:"practices" yaml:"practices"`
	Philosophy []string `json:"philosophy" yaml:"philosophy"`
}

// Verification records how much of a profile has been confirmed.
type Verification struct {
	IdentityConfirmed bool     `json:"identityConfirmed" yaml:"identityConfirmed"`
	LinkedInVerified  bool     `json:"linkedinVerified" yaml:"linkedinVerified"`
	PhotoMatched      bool     `json:"photoMatched" yaml:"photoMatched"`
	MutualConfirmed   bool     `json:"mutualConfirmed" yaml:"mutualConfirmed"`
	RecentlyActive    bool     `json:"recentlyActive" yaml:"recentlyActive"`
	Sources           []string `json:"sources" yaml:"sources"`
	ConfidenceScore   int      `json:"confidenceScore" yaml:"confidenceScore"`
}

// DeepProfile is the normalized nested profile the match engine works on.
// Every collection is non-nil after normalization.
type DeepProfile struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Timeline      Timeline      `json:"timeline" yaml:"timeline"`
	Current       Current       `json:"current" yaml:"current"`
	Experiences   Experiences   `json:"experiences" yaml:"experiences"`
	Scenes        Scenes        `json:"scenes" yaml:"scenes"`
	Interests     DeepInterests `json:"interests" yaml:"interests"`
	Relationships Relationships `json:"relationships" yaml:"relationships"`
	Values        Values        `json:"values" yaml:"values"`
	Expertise     []string      `json:"expertise" yaml:"expertise"`
	LookingFor    []string      `json:"lookingFor" yaml:"lookingFor"`
	Offering      []string      `json:"offering" yaml:"offering"`
	Verification  Verification  `json:"verification" yaml:"verification"`
}

// Overlay is an externally supplied enrichment record (LLM output, contact
// note, manual edit) merged into a profile before normalization.
type Overlay struct {
	Name              string   `json:"name,omitempty" yaml:"name,omitempty"`
	Role              string   `json:"role,omitempty" yaml:"role,omitempty"`
	Company           string   `json:"company,omitempty" yaml:"company,omitempty"`
	Industry          string   `json:"industry,omitempty" yaml:"industry,omitempty"`
	Location          string   `json:"location,omitempty" yaml:"location,omitempty"`
	Expertise         []string `json:"expertise,omitempty" yaml:"expertise,omitempty"`
	LookingFor        []string `json:"lookingFor,omitempty" yaml:"lookingFor,omitempty"`
	Offering          []string `json:"offering,omitempty" yaml:"offering,omitempty"`
	Interests         []string `json:"interests,omitempty" yaml:"interests,omitempty"`
	Affinities        []string `json:"affinities,omitempty" yaml:"affinities,omitempty"`
	LinkedInURL       string   `json:"linkedinUrl,omitempty" yaml:"linkedinUrl,omitempty"`
	Verified          bool     `json:"verified,omitempty" yaml:"verified,omitempty"`
	LinkedInVerified  bool     `json:"linkedinVerified,omitempty" yaml:"linkedinVerified,omitempty"`
	IdentityConfirmed bool     `json:"identityConfirmed,omitempty" yaml:"identityConfirmed,omitempty"`
	PhotoMatched      bool     `json:"photoMatched,omitempty" yaml:"photoMatched,omitempty"`
	MutualConfirmed   bool     `json:"mutualConfirmed,omitempty" yaml:"mutualConfirmed,omitempty"`
	RecentlyActive    bool     `json:"recentlyActive,omitempty" yaml:"recentlyActive,omitempty"`
	Sources           []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Optional deep sections.
	Timeline      *Timeline      `json:"timeline,omitempty" yaml:"timeline,omitempty"`
	Current       *Current       `json:"current,omitempty" yaml:"current,omitempty"`
	Experiences   *Experiences   `json:"experiences,omitempty" yaml:"experiences,omitempty"`
	Scenes        *Scenes        `json:"scenes,omitempty" yaml:"scenes,omitempty"`
	DeepInterests *DeepInterests `json:"deepInterests,omitempty" yaml:"deepInterests,omitempty"`
	Relationships *Relationships `json:"relationships,omitempty" yaml:"relationships,omitempty"`
	Values        *Values        `json:"values,omitempty" yaml:"values,omitempty"`
}
