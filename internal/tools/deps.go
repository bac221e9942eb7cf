// Package tools provides the MCP tool handlers and their registration.
package tools

import (
	"log/slog"

	"github.com/raphaelgruber/circlemap/internal/service"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Services *service.Services
	Logger   *slog.Logger
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
