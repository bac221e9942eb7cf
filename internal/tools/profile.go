package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/circlemap/internal/deep"
	"github.com/raphaelgruber/circlemap/internal/metrics"
	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/service"
)

// NormalizeInput defines the input schema for normalize_profile.
type NormalizeInput struct {
	ID      string `json:"id,omitempty" jsonschema:"Id or display name of an analyzed member"`
	Overlay string `json:"overlay,omitempty" jsonschema:"Overlay as JSON or YAML, normalized on its own when id is empty"`
}

// NewNormalizeHandler creates the normalize_profile handler.
func NewNormalizeHandler(deps *Dependencies) mcp.ToolHandlerFor[NormalizeInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input NormalizeInput) (*mcp.CallToolResult, any, error) {
		svc := deps.Services

		if input.ID != "" {
			d, ok := svc.Registry.Deep(input.ID)
			if !ok {
				return ErrorResult(fmt.Sprintf("Unknown person %q", input.ID), "Run analyze_transcript first or check the id"), nil, nil
			}
			return JSONResult(d), nil, nil
		}
		if strings.TrimSpace(input.Overlay) == "" {
			return ErrorResult("id or overlay is required", ""), nil, nil
		}

		o, err := deep.ParseOverlay([]byte(input.Overlay))
		if err != nil {
			return ErrorResult("Invalid overlay", err.Error()), nil, nil
		}
		defer svc.Metrics.Time(metrics.OpNormalize)()
		return JSONResult(deep.Normalize(deep.Partial{Overlay: &o})), nil, nil
	}
}

// RememberInput defines the input schema for remember_overlay.
type RememberInput struct {
	ID      string `json:"id,omitempty" jsonschema:"Profile id the overlay belongs to"`
	Overlay string `json:"overlay,omitempty" jsonschema:"Overlay as JSON or YAML"`
	Source  string `json:"source,omitempty" jsonschema:"Where the overlay came from: manual, note or llm (default manual)"`
}

// NewRememberHandler creates the remember_overlay handler.
func NewRememberHandler(deps *Dependencies) mcp.ToolHandlerFor[RememberInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RememberInput) (*mcp.CallToolResult, any, error) {
		if input.ID == "" {
			return ErrorResult("id is required", ""), nil, nil
		}

		source := input.Source
		switch source {
		case "":
			source = models.OverlaySourceManual
		case models.OverlaySourceManual, models.OverlaySourceNote, models.OverlaySourceLLM:
		default:
			return ErrorResult(fmt.Sprintf("Unknown source %q", source), "Use manual, note or llm"), nil, nil
		}

		o, err := deep.ParseOverlay([]byte(input.Overlay))
		if err != nil {
			return ErrorResult("Invalid overlay", err.Error()), nil, nil
		}
		if err := deps.Services.SetOverlay(ctx, input.ID, source, o); err != nil {
			deps.logger().Error("failed to store overlay", "id", input.ID, "error", err)
			return ErrorResult("Failed to store overlay", err.Error()), nil, nil
		}

		deps.logger().Info("overlay stored", "id", input.ID, "source", source)
		return TextResult(fmt.Sprintf("Stored %s overlay for %s", source, input.ID)), nil, nil
	}
}

// UserContextInput defines the input schema for get_user_context.
type UserContextInput struct {
	Name string `json:"name,omitempty" jsonschema:"Context name, default \"default\""`
}

// NewUserContextHandler creates the get_user_context handler.
func NewUserContextHandler(deps *Dependencies) mcp.ToolHandlerFor[UserContextInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UserContextInput) (*mcp.CallToolResult, any, error) {
		name := input.Name
		if name == "" {
			name = defaultContextName
		}

		uc, err := deps.Services.UserContext(ctx, name)
		if errors.Is(err, service.ErrNotFound) {
			return ErrorResult(fmt.Sprintf("No user context %q", name), "Store one with circlemap context set"), nil, nil
		}
		if err != nil {
			return ErrorResult("Failed to load user context", err.Error()), nil, nil
		}
		return JSONResult(uc), nil, nil
	}
}
