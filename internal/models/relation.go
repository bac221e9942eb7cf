package models

// ResponseSpeed labels how quickly two members answer each other.
type ResponseSpeed string

const (
	ResponseFast   ResponseSpeed = "fast"
	ResponseNormal ResponseSpeed = "normal"
	ResponseSlow   ResponseSpeed = "slow"
)

// Informality labels the register two members use.
type Informality string

const (
	InformalityCasual Informality = "casual"
	InformalityFormal Informality = "formal"
)

// EdgeLabel buckets edge strength.
type EdgeLabel string

const (
	EdgeStrong   EdgeLabel = "strong"
	EdgeModerate EdgeLabel = "moderate"
	EdgeWeak     EdgeLabel = "weak"
)

// RelationshipEdge is the undirected, weighted tie between two members.
// PersonA sorts before PersonB.
type RelationshipEdge struct {
	PersonA           string        `json:"personA"`
	PersonB           string        `json:"personB"`
	Strength          int           `json:"strength"` // 0-100
	Interactions      int           `json:"interactions"`
	Bidirectional     bool          `json:"bidirectional"`
	AvgMessageDepth   float64       `json:"avgMessageDepth"`
	LateNightMessages int           `json:"lateNightMessages"`
	MediaShared       int           `json:"mediaShared"`
	Mentions          int           `json:"mentions"`
	ResponseSpeed     ResponseSpeed `json:"responseSpeed"`
	Informality       Informality   `json:"informality"`
	Label             EdgeLabel     `json:"label"`
}

// Involves reports whether the edge touches the named member.
func (e RelationshipEdge) Involves(name string) bool {
	return e.PersonA == name || e.PersonB == name
}

// Other returns the member on the far side of the edge from name.
func (e RelationshipEdge) Other(name string) string {
	if e.PersonA == name {
		return e.PersonB
	}
	return e.PersonA
}

// RoleEntry is one ranked member in a network view.
type RoleEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NetworkRoles is the hub/connector/lurker projection of the mention graph.
type NetworkRoles struct {
	Hubs       []RoleEntry `json:"hubs"`
	Connectors []RoleEntry `json:"connectors"`
	Lurkers    []RoleEntry `json:"lurkers"`
}

// Suggestion is a proposed meetup for members sharing a city and an interest.
type Suggestion struct {
	Location     string   `json:"location"`
	Activity     string   `json:"activity"`
	Title        string   `json:"title"`
	Emoji        string   `json:"emoji"`
	Participants []string `json:"participants"`
	Confidence   int      `json:"confidence"` // percent
}
