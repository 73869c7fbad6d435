package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/pgmeta/statext/internal/core/domain"
	"github.com/pgmeta/statext/internal/core/port"
	"github.com/pgmeta/statext/internal/core/service"
	"go.opentelemetry.io/otel/trace"
)

// NewServer creates an MCPServer with statistics DDL tools and logging hooks.
func NewServer(version string, stats *service.StatisticsService, sess domain.Session, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithHooks(ToolCallHooks(logger, tracer, inst)),
	)

	RegisterTools(s, stats, sess)

	return s
}
