package server_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/circlemap/internal/config"
	"github.com/raphaelgruber/circlemap/internal/metrics"
	"github.com/raphaelgruber/circlemap/internal/server"
	"github.com/raphaelgruber/circlemap/internal/service"
	"github.com/raphaelgruber/circlemap/internal/tools"
)

// testLogger creates a logger that writes to stderr for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func connect(t *testing.T, srv *server.Server) (context.Context, *mcp.ClientSession) {
	t.Helper()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	go func() { _ = srv.MCPServer().Run(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect successfully")
	t.Cleanup(func() { _ = session.Close() })
	return ctx, session
}

func TestServerWithoutTools(t *testing.T) {
	srv := server.New("0.1.0-test", nil, testLogger())
	require.NotNil(t, srv.MCPServer())

	ctx, session := connect(t, srv)

	initResult := session.InitializeResult()
	require.NotNil(t, initResult)
	assert.Equal(t, "circlemap", initResult.ServerInfo.Name)
	assert.Equal(t, "0.1.0-test", initResult.ServerInfo.Version)

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, toolsResult.Tools)
}

func TestServerRecordsToolMetrics(t *testing.T) {
	svc := service.New(config.Config{MaxResults: 10}, nil, nil, nil, nil, testLogger())
	srv := server.New("0.1.0-test", &tools.Dependencies{Services: svc, Logger: testLogger()}, testLogger())

	ctx, session := connect(t, srv)

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, toolsResult.Tools, 7)

	for i := 0; i < 2; i++ {
		_, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "get_user_context",
			Arguments: map[string]any{"name": "missing"},
		})
		require.NoError(t, err, "call %d should succeed", i)
	}

	op := svc.Metrics.Snapshot().Op(metrics.ToolOp("get_user_context"))
	require.NotNil(t, op)
	assert.Equal(t, int64(2), op.Count)
	assert.Nil(t, svc.Metrics.Snapshot().Op(metrics.ToolOp("analyze_transcript")))
}
