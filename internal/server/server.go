// Package server provides the MCP server wrapper with lifecycle management.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/circlemap/internal/tools"
)

// Name is the implementation name reported to MCP clients.
const Name = "circlemap"

// Server wraps the MCP server with dependencies and lifecycle management.
type Server struct {
	mcp    *mcp.Server
	logger *slog.Logger
}

// New creates the MCP server, registers the circlemap tools against deps and
// installs the logging and metrics middleware.
func New(version string, deps *tools.Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    Name,
		Version: version,
	}, nil)

	s := &Server{
		mcp:    mcpServer,
		logger: logger,
	}
	if deps != nil {
		tools.RegisterAll(mcpServer, deps)
	}
	s.setup(deps)
	return s
}

func (s *Server) setup(deps *tools.Dependencies) {
	// outermost first: the logger sees the metrics-timed call
	mw := []mcp.Middleware{LoggingMiddleware(s.logger)}
	if deps != nil && deps.Services != nil {
		mw = append(mw, MetricsMiddleware(deps.Services.Metrics))
	}
	s.mcp.AddReceivingMiddleware(mw...)
}

// Run starts the server on stdio transport and blocks until disconnect or context cancellation.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler serves the same server over the streamable HTTP transport.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}
