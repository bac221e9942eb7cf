package tools_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/circlemap/internal/config"
	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/service"
	"github.com/raphaelgruber/circlemap/internal/tools"
)

const chat = `1/15/24, 10:00 AM - Mike Chen: Anyone in Bangkok watching UFC this weekend?
1/15/24, 10:02 AM - Mike Chen: <Media omitted>
1/15/24, 10:05 AM - Sarah Kim: Yes! I live in Bangkok, UFC is my thing
1/15/24, 10:07 AM - Tom: Count me in next time`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// connect starts an MCP server over in-memory transports and returns a
// client session plus the services behind it.
func connect(t *testing.T) (context.Context, *mcp.ClientSession, *service.Services) {
	t.Helper()

	svc := service.New(config.Config{MaxResults: 10}, nil, nil, nil, nil, testLogger())
	server := mcp.NewServer(&mcp.Implementation{Name: "test-circlemap", Version: "0.0.1-test"}, nil)
	tools.RegisterAll(server, &tools.Dependencies{Services: svc, Logger: testLogger()})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	go func() { _ = server.Run(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return ctx, session, svc
}

func call(t *testing.T, ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text, result.IsError
}

func TestRegisterAll_ListsTools(t *testing.T) {
	ctx, session, _ := connect(t)

	result, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"analyze_transcript",
		"detect_opportunities",
		"find_cross_connections",
		"find_serendipity",
		"get_user_context",
		"normalize_profile",
		"remember_overlay",
	}, names)
}

func TestAnalyzeTranscript(t *testing.T) {
	ctx, session, svc := connect(t)

	text, isErr := call(t, ctx, session, "analyze_transcript", map[string]any{"text": chat})
	require.False(t, isErr, text)

	var out tools.AnalyzeOutput
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, 4, out.Stats.TotalMessages)
	require.Len(t, out.Members, 3)
	assert.Len(t, svc.Registry.Snapshot(), 3)
}

func TestAnalyzeTranscript_FromPath(t *testing.T) {
	ctx, session, _ := connect(t)

	path := filepath.Join(t.TempDir(), "_chat.txt")
	require.NoError(t, os.WriteFile(path, []byte(chat), 0o600))

	text, isErr := call(t, ctx, session, "analyze_transcript", map[string]any{"path": path})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Sarah Kim")
}

func TestAnalyzeTranscript_Empty(t *testing.T) {
	ctx, session, _ := connect(t)

	text, isErr := call(t, ctx, session, "analyze_transcript", map[string]any{"text": "  "})
	assert.True(t, isErr)
	assert.Contains(t, text, "Transcript is empty")
}

func TestFindSerendipity(t *testing.T) {
	ctx, session, _ := connect(t)
	_, isErr := call(t, ctx, session, "analyze_transcript", map[string]any{"text": chat})
	require.False(t, isErr)

	t.Run("pair", func(t *testing.T) {
		text, isErr := call(t, ctx, session, "find_serendipity", map[string]any{"a": "Mike Chen", "b": "Sarah Kim"})
		require.False(t, isErr, text)

		var res models.MatchResult
		require.NoError(t, json.Unmarshal([]byte(text), &res))
		assert.Equal(t, "mike-chen", res.ProfileA)
		assert.Equal(t, "sarah-kim", res.ProfileB)
	})

	t.Run("missing partner", func(t *testing.T) {
		text, isErr := call(t, ctx, session, "find_serendipity", map[string]any{"a": "Mike Chen"})
		assert.True(t, isErr)
		assert.Contains(t, text, "Both a and b are required")
	})

	t.Run("unknown person", func(t *testing.T) {
		text, isErr := call(t, ctx, session, "find_serendipity", map[string]any{"a": "Mike Chen", "b": "Nobody"})
		assert.True(t, isErr)
		assert.Contains(t, text, "Nobody")
	})

	t.Run("roster", func(t *testing.T) {
		text, isErr := call(t, ctx, session, "find_serendipity", map[string]any{})
		require.False(t, isErr, text)

		var res []models.MatchResult
		require.NoError(t, json.Unmarshal([]byte(text), &res))
		assert.LessOrEqual(t, len(res), 3)
	})

	t.Run("bad min score", func(t *testing.T) {
		_, isErr := call(t, ctx, session, "find_serendipity", map[string]any{"minScore": 101})
		assert.True(t, isErr)
	})
}

func TestDetectOpportunities(t *testing.T) {
	ctx, session, svc := connect(t)

	text, isErr := call(t, ctx, session, "detect_opportunities", map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, `No user context "default"`)

	require.NoError(t, svc.SetOverlay(ctx, "ana", models.OverlaySourceManual, models.Overlay{
		Name:       "Ana",
		Location:   "Bangkok",
		LookingFor: []string{"designer"},
	}))

	text, isErr = call(t, ctx, session, "detect_opportunities", map[string]any{
		"offerings": []string{"designer"},
		"location":  "Bangkok",
	})
	require.False(t, isErr, text)

	var out []models.Opportunity
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.NotEmpty(t, out)
	assert.Equal(t, "Ana", out[0].Name)
}

func TestFindCrossConnections(t *testing.T) {
	ctx, session, svc := connect(t)

	require.NoError(t, svc.SetOverlay(ctx, "ana", models.OverlaySourceManual, models.Overlay{
		Name: "Ana", LookingFor: []string{"fundraising"},
	}))
	require.NoError(t, svc.SetOverlay(ctx, "lee", models.OverlaySourceManual, models.Overlay{
		Name: "Lee", Offering: []string{"fundraising"},
	}))

	text, isErr := call(t, ctx, session, "find_cross_connections", map[string]any{"limit": 5})
	require.False(t, isErr, text)

	var out []models.CrossConnection
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out, 1)
	assert.ElementsMatch(t, []string{"Ana", "Lee"}, []string{out[0].PersonA, out[0].PersonB})
}

func TestNormalizeProfile(t *testing.T) {
	ctx, session, _ := connect(t)

	text, isErr := call(t, ctx, session, "normalize_profile", map[string]any{"overlay": "name: Ana\nrole: Designer\n"})
	require.False(t, isErr, text)

	var d models.DeepProfile
	require.NoError(t, json.Unmarshal([]byte(text), &d))
	assert.Equal(t, "Ana", d.Name)
	assert.Equal(t, "ana", d.ID)
	assert.NotNil(t, d.Expertise)

	_, isErr = call(t, ctx, session, "normalize_profile", map[string]any{})
	assert.True(t, isErr)

	text, isErr = call(t, ctx, session, "normalize_profile", map[string]any{"id": "ghost"})
	assert.True(t, isErr)
	assert.Contains(t, text, "ghost")
}

func TestRememberOverlay(t *testing.T) {
	ctx, session, svc := connect(t)

	text, isErr := call(t, ctx, session, "remember_overlay", map[string]any{
		"id":      "ana",
		"overlay": `{"name":"Ana","company":"Grab"}`,
		"source":  "note",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Stored note overlay for ana")

	o, err := svc.Overlay(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "Grab", o.Company)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing id", map[string]any{"overlay": "name: Ana"}},
		{"bad source", map[string]any{"id": "ana", "overlay": "name: Ana", "source": "rumor"}},
		{"empty overlay", map[string]any{"id": "ana", "overlay": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, isErr := call(t, ctx, session, "remember_overlay", tt.args)
			assert.True(t, isErr)
		})
	}
}

func TestGetUserContext(t *testing.T) {
	ctx, session, svc := connect(t)

	_, isErr := call(t, ctx, session, "get_user_context", map[string]any{})
	assert.True(t, isErr)

	require.NoError(t, svc.SetUserContext(ctx, "default", models.UserContext{Name: "Raphael", Location: "Vienna"}))

	text, isErr := call(t, ctx, session, "get_user_context", map[string]any{})
	require.False(t, isErr, text)

	var uc models.UserContext
	require.NoError(t, json.Unmarshal([]byte(text), &uc))
	assert.Equal(t, "Vienna", uc.Location)
}
