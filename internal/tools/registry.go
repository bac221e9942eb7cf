package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	// Analysis - replaces the roster the other tools work on
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_transcript",
		Description: "Analyze a WhatsApp group export: member profiles, interaction graph, network roles and meetup suggestions",
	}, NewAnalyzeHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_serendipity",
		Description: "Score a pair of members for an introduction, or rank every pair in the roster",
	}, NewSerendipityHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_opportunities",
		Description: "Rank members against the organizer's offerings, needs and location",
	}, NewOpportunitiesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_cross_connections",
		Description: "Suggest introductions between contacts whose needs and offerings complement each other",
	}, NewCrossConnectionsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "normalize_profile",
		Description: "Return the deep profile for a member, or normalize a raw overlay",
	}, NewNormalizeHandler(deps))

	// Memory
	mcp.AddTool(server, &mcp.Tool{
		Name:        "remember_overlay",
		Description: "Store enrichment facts about a person (role, company, expertise, needs) as an overlay",
	}, NewRememberHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user_context",
		Description: "Read the organizer context used for opportunity detection",
	}, NewUserContextHandler(deps))
}
