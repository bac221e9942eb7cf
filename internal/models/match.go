package models

// Connection is one reason two deep profiles should meet.
type Connection struct {
	Dimension string `json:"dimension"`
	Strength  int    `json:"strength"`
	Detail    string `json:"detail"`
	HookLine  string `json:"hookLine"`
}

// MatchResult is the serendipity report for a pair of deep profiles.
type MatchResult struct {
	ProfileA         string       `json:"profileA"`
	ProfileB         string       `json:"profileB"`
	Connections      []Connection `json:"connections"`
	SerendipityScore int          `json:"serendipityScore"`
	VerificationA    int          `json:"verificationA"`
	VerificationB    int          `json:"verificationB"`
	ConfidenceScore  int          `json:"confidenceScore"`
	BestHook         string       `json:"bestHook"`
	IntroMessage     string       `json:"introMessage"`
}

// UserContext is the persistent description of the organizer running the tool.
type UserContext struct {
	Name           string   `json:"name" yaml:"name"`
	Location       string   `json:"location" yaml:"location"`
	Offerings      []string `json:"offerings" yaml:"offerings"`
	Expertise      []string `json:"expertise" yaml:"expertise"`
	Needs          []string `json:"needs" yaml:"needs"`
	Network        []string `json:"network" yaml:"network"`
	RecentMentions []string `json:"recentMentions" yaml:"recentMentions"`
	Interests      []string `json:"interests" yaml:"interests"`
	Experiences    []string `json:"experiences" yaml:"experiences"` // companies and schools
}

// OpportunityType names the kind of signal behind an opportunity.
type OpportunityType string

const (
	OpportunityHiring    OpportunityType = "HIRING_MATCH"
	OpportunityIntro     OpportunityType = "INTRO_MATCH"
	OpportunityLocation  OpportunityType = "LOCATION_OVERLAP"
	OpportunityInterest  OpportunityType = "INTEREST_MATCH"
	OpportunityExpertise OpportunityType = "EXPERTISE_NEED"
)

// OpportunitySignal is one reason a candidate is worth contacting.
type OpportunitySignal struct {
	Type       OpportunityType `json:"type"`
	Confidence float64         `json:"confidence"`
	Detail     string          `json:"detail"`
}

// Opportunity is a ranked candidate for the user to act on.
type Opportunity struct {
	ProfileID string              `json:"profileId"`
	Name      string              `json:"name"`
	Primary   OpportunitySignal   `json:"primary"`
	Secondary []OpportunitySignal `json:"secondary"`
	Score     int                 `json:"score"`
	Reason    string              `json:"reason"`
}

// Contact is the flat profile shape used for cross-connection scoring.
type Contact struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Location   string   `json:"location" yaml:"location"`
	Role       string   `json:"role" yaml:"role"`
	Company    string   `json:"company" yaml:"company"`
	Industry   string   `json:"industry" yaml:"industry"`
	Interests  []string `json:"interests" yaml:"interests"`
	Affinities []string `json:"affinities" yaml:"affinities"`
	LookingFor []string `json:"lookingFor" yaml:"lookingFor"`
	Offering   []string `json:"offering" yaml:"offering"`
	Expertise  []string `json:"expertise" yaml:"expertise"`
}

// CrossConnection is a scored introduction between two contacts.
type CrossConnection struct {
	PersonA      string   `json:"personA"`
	PersonB      string   `json:"personB"`
	Score        int      `json:"score"`
	Reasons      []string `json:"reasons"`
	IntroMessage string   `json:"introMessage"`
}
