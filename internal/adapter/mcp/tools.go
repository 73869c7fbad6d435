package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pgmeta/statext/internal/adapter/parser"
	"github.com/pgmeta/statext/internal/core/domain"
	"github.com/pgmeta/statext/internal/core/service"
)

// Server metadata
const serverName = "statext"

// Tool descriptions
const (
	descCreateStatistics = "Declare a multi-column statistics object with a CREATE STATISTICS statement, e.g. " +
		"CREATE STATISTICS order_region_city (ndistinct, dependencies) ON region, city FROM orders. " +
		"The named columns must exist on the table, be of sortable types, and there must be between 2 and 8 of them. " +
		"Omitting the kind list requests every kind. Column order does not matter; the stored definition is canonical. " +
		"Use IF NOT EXISTS to make re-declaration a no-op. " +
		"This only reserves the definition — the numeric statistics are computed later by the analysis engine."

	descCreateStatisticsParam = "The CREATE STATISTICS statement to execute"

	descDropStatistics = "Retract a statistics object with a DROP STATISTICS statement, e.g. " +
		"DROP STATISTICS IF EXISTS order_region_city. " +
		"Removes the definition, its dependency edges, and invalidates cached plans for the owning table."

	descDropStatisticsParam = "The DROP STATISTICS statement to execute"

	descListStatistics = "List all declared statistics objects with their table, columns, requested kinds, " +
		"and whether each kind's payload has been computed yet. " +
		"Use this before creating new objects to avoid duplicates, and to check computation progress."
)

func RegisterTools(s *server.MCPServer, stats *service.StatisticsService, sess domain.Session) {
	s.AddTool(
		mcp.NewTool("create_statistics",
			mcp.WithDescription(descCreateStatistics),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description(descCreateStatisticsParam),
			),
		),
		createStatisticsHandler(stats, sess),
	)

	s.AddTool(
		mcp.NewTool("drop_statistics",
			mcp.WithDescription(descDropStatistics),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description(descDropStatisticsParam),
			),
		),
		dropStatisticsHandler(stats, sess),
	)

	s.AddTool(
		mcp.NewTool("list_statistics",
			mcp.WithDescription(descListStatistics),
		),
		listStatisticsHandler(stats),
	)
}

type createResult struct {
	ObjectID int64 `json:"object_id,omitempty"`
	Created  bool  `json:"created"`
}

type dropResult struct {
	Dropped bool `json:"dropped"`
}

func createStatisticsHandler(stats *service.StatisticsService, sess domain.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, ok := request.GetArguments()["sql"].(string)
		if !ok || sql == "" {
			return mcp.NewToolResultError("sql is required"), nil
		}

		req, err := parser.ParseCreateStatistics(sql)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid CREATE STATISTICS statement: %v", err)), nil
		}

		ctx = service.WithToolName(ctx, "create_statistics")
		ctx = service.WithStatement(ctx, sql)
		id, created, err := stats.Create(ctx, sess, *req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("create statistics failed: %v", err)), nil
		}

		data, err := json.Marshal(createResult{ObjectID: int64(id), Created: created})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func dropStatisticsHandler(stats *service.StatisticsService, sess domain.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, ok := request.GetArguments()["sql"].(string)
		if !ok || sql == "" {
			return mcp.NewToolResultError("sql is required"), nil
		}

		req, err := parser.ParseDropStatistics(sql)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid DROP STATISTICS statement: %v", err)), nil
		}

		ctx = service.WithToolName(ctx, "drop_statistics")
		ctx = service.WithStatement(ctx, sql)
		dropped, err := stats.Drop(ctx, sess, req.Schema, req.Name, req.IfExists)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("drop statistics failed: %v", err)), nil
		}

		data, err := json.Marshal(dropResult{Dropped: dropped})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func listStatisticsHandler(stats *service.StatisticsService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		infos, err := stats.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list statistics: %v", err)), nil
		}

		data, err := json.Marshal(infos)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}
