package tools

import (
	"context"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/circlemap/internal/models"
)

// AnalyzeInput defines the input schema for analyze_transcript.
type AnalyzeInput struct {
	Text string `json:"text,omitempty" jsonschema:"Raw WhatsApp chat export text"`
	Path string `json:"path,omitempty" jsonschema:"Path to an exported _chat.txt file, used when text is empty"`
}

// AnalyzeOutput summarizes an analysis. Full profiles stay in the server
// and are reachable by id from the other tools.
type AnalyzeOutput struct {
	Stats       models.TranscriptStats `json:"stats"`
	Members     []MemberSummary        `json:"members"`
	Roles       models.NetworkRoles    `json:"roles"`
	Suggestions []models.Suggestion    `json:"suggestions"`
	Edges       int                    `json:"edges"`
}

// MemberSummary is the short form of a profile.
type MemberSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Messages  int      `json:"messages"`
	Activity  string   `json:"activity"`
	Location  string   `json:"location,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// NewAnalyzeHandler creates the analyze_transcript handler. The analyzed
// members become the roster for the matching tools.
func NewAnalyzeHandler(deps *Dependencies) mcp.ToolHandlerFor[AnalyzeInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
		text := input.Text
		if strings.TrimSpace(text) == "" {
			if input.Path == "" {
				return ErrorResult("Transcript is empty", "Provide text or a path to a chat export"), nil, nil
			}
			data, err := os.ReadFile(input.Path)
			if err != nil {
				return ErrorResult("Failed to read transcript", err.Error()), nil, nil
			}
			text = string(data)
		}

		a, err := deps.Services.Analyze(ctx, text)
		if err != nil {
			deps.logger().Error("analysis failed", "error", err)
			return ErrorResult("Analysis failed", err.Error()), nil, nil
		}

		out := AnalyzeOutput{
			Stats:       a.Stats,
			Members:     make([]MemberSummary, 0, len(a.Profiles)),
			Roles:       a.Roles,
			Suggestions: a.Suggestions,
			Edges:       len(a.Edges),
		}
		for _, p := range a.Profiles {
			out.Members = append(out.Members, MemberSummary{
				ID:        p.ID,
				Name:      p.DisplayName,
				Messages:  p.MessageCount,
				Activity:  string(p.ActivityLevel),
				Location:  p.Location.Primary,
				Interests: p.InterestCategories(),
			})
		}
		return JSONResult(out), nil, nil
	}
}
