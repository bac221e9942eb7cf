package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/circlemap/internal/service"
)

const defaultContextName = "default"

// SerendipityInput defines the input schema for find_serendipity.
type SerendipityInput struct {
	A        string `json:"a,omitempty" jsonschema:"First person (id or name). Omit a and b to score the whole roster"`
	B        string `json:"b,omitempty" jsonschema:"Second person (id or name)"`
	MinScore int    `json:"minScore,omitempty" jsonschema:"Drop roster pairs scoring below this (0-100)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max roster pairs to return, default 10"`
}

// NewSerendipityHandler creates the find_serendipity handler.
func NewSerendipityHandler(deps *Dependencies) mcp.ToolHandlerFor[SerendipityInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SerendipityInput) (*mcp.CallToolResult, any, error) {
		svc := deps.Services

		if input.A != "" || input.B != "" {
			if input.A == "" || input.B == "" {
				return ErrorResult("Both a and b are required", "Or omit both to score the whole roster"), nil, nil
			}
			a, ok := svc.Registry.Deep(input.A)
			if !ok {
				return ErrorResult(fmt.Sprintf("Unknown person %q", input.A), "Run analyze_transcript first or check the id"), nil, nil
			}
			b, ok := svc.Registry.Deep(input.B)
			if !ok {
				return ErrorResult(fmt.Sprintf("Unknown person %q", input.B), "Run analyze_transcript first or check the id"), nil, nil
			}
			return JSONResult(svc.Match.Pair(a, b)), nil, nil
		}

		if input.MinScore < 0 || input.MinScore > 100 {
			return ErrorResult("minScore must be 0-100", ""), nil, nil
		}
		limit := input.Limit
		if limit <= 0 {
			limit = 10
		}
		roster := svc.Registry.DeepAll()
		if len(roster) < 2 {
			return ErrorResult("Not enough people to match", "Run analyze_transcript first"), nil, nil
		}

		results, err := svc.Match.ScoreAll(ctx, roster, service.MatchOptions{MinScore: input.MinScore, Limit: limit})
		if err != nil {
			return ErrorResult("Scoring was interrupted", err.Error()), nil, nil
		}
		return JSONResult(results), nil, nil
	}
}

// OpportunitiesInput defines the input schema for detect_opportunities.
type OpportunitiesInput struct {
	ContextName string   `json:"contextName,omitempty" jsonschema:"Stored user context to use, default \"default\""`
	Offerings   []string `json:"offerings,omitempty" jsonschema:"What the user offers; overrides the stored context"`
	Needs       []string `json:"needs,omitempty" jsonschema:"What the user needs; overrides the stored context"`
	Location    string   `json:"location,omitempty" jsonschema:"Where the user is; overrides the stored context"`
	MaxResults  int      `json:"maxResults,omitempty" jsonschema:"Max candidates to return"`
}

// NewOpportunitiesHandler creates the detect_opportunities handler.
func NewOpportunitiesHandler(deps *Dependencies) mcp.ToolHandlerFor[OpportunitiesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input OpportunitiesInput) (*mcp.CallToolResult, any, error) {
		svc := deps.Services

		name := input.ContextName
		if name == "" {
			name = defaultContextName
		}
		uc, err := svc.UserContext(ctx, name)
		switch {
		case errors.Is(err, service.ErrNotFound):
			if len(input.Offerings) == 0 && len(input.Needs) == 0 && input.Location == "" {
				return ErrorResult(fmt.Sprintf("No user context %q", name), "Pass offerings, needs or location, or store a context first"), nil, nil
			}
		case err != nil:
			deps.logger().Error("failed to load user context", "name", name, "error", err)
			return ErrorResult("Failed to load user context", err.Error()), nil, nil
		}
		if len(input.Offerings) > 0 {
			uc.Offerings = input.Offerings
		}
		if len(input.Needs) > 0 {
			uc.Needs = input.Needs
		}
		if input.Location != "" {
			uc.Location = input.Location
		}

		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = svc.Config.MaxResults
		}
		out, err := svc.Match.Opportunities(ctx, uc, svc.Registry.DeepAll(), maxResults)
		if err != nil {
			return ErrorResult("Opportunity search was interrupted", err.Error()), nil, nil
		}
		return JSONResult(out), nil, nil
	}
}

// CrossConnectionsInput defines the input schema for find_cross_connections.
type CrossConnectionsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max introductions to return, default 10"`
}

// NewCrossConnectionsHandler creates the find_cross_connections handler.
func NewCrossConnectionsHandler(deps *Dependencies) mcp.ToolHandlerFor[CrossConnectionsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CrossConnectionsInput) (*mcp.CallToolResult, any, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = 10
		}
		out, err := deps.Services.Match.CrossConnections(ctx, deps.Services.Registry.Contacts())
		if err != nil {
			return ErrorResult("Scoring was interrupted", err.Error()), nil, nil
		}
		if len(out) > limit {
			out = out[:limit]
		}
		return JSONResult(out), nil, nil
	}
}
