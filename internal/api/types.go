package api

import (
	"github.com/raphaelgruber/circlemap/internal/models"
)

// AnalyzeRequest carries a raw chat export.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// NormalizeRequest selects what to normalize: a loaded profile by id or
// name, or an ad-hoc profile and/or overlay.
type NormalizeRequest struct {
	ID      string          `json:"id,omitempty"`
	Profile *models.Profile `json:"profile,omitempty"`
	Overlay *models.Overlay `json:"overlay,omitempty"`
}

// SerendipityRequest scores one pair when A and B are set, otherwise every
// pair of the loaded roster.
type SerendipityRequest struct {
	A        string `json:"a,omitempty"`
	B        string `json:"b,omitempty"`
	MinScore int    `json:"minScore,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// OpportunitiesRequest ranks the roster for a user context. Context wins
// over ContextName; with neither, the "default" stored context is used.
type OpportunitiesRequest struct {
	Context     *models.UserContext `json:"context,omitempty"`
	ContextName string              `json:"contextName,omitempty"`
	MaxResults  int                 `json:"maxResults,omitempty"`
}

// EnrichRequest starts an enrichment job. Empty ProfileIDs means everyone.
type EnrichRequest struct {
	Name       string   `json:"name,omitempty"`
	ProfileIDs []string `json:"profileIds,omitempty"`
}

// OverlayResponse is an overlay with the id it is stored under.
type OverlayResponse struct {
	ID      string         `json:"id"`
	Overlay models.Overlay `json:"overlay"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DefaultContextName is used when a request names no user context.
const DefaultContextName = "default"
