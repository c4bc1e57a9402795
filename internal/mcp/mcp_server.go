// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the perfpipe MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Chess Engine Performance Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("collect_statistics",
		mcp.WithDescription("Discover benchmark result files and report collection statistics (versions, date range, test groups)."),
		mcp.WithString("data_dir", mcp.Description("Directory to search for result files. Defaults to the standard search paths.")),
	), h.handleCollectStatistics)

	s.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Per-version summary statistics for an aggregated performance data file."),
		mcp.WithString("data_file", mcp.Description("Path to chess_engine_performance_data.json."), mcp.Required()),
	), h.handleGetSummary)

	s.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Full performance report (overview, test types, version comparison, best result) for an aggregated data file."),
		mcp.WithString("data_file", mcp.Description("Path to chess_engine_performance_data.json."), mcp.Required()),
	), h.handleGetReport)

	s.AddTool(mcp.NewTool("get_run_history",
		mcp.WithDescription("Recent pipeline runs recorded in the history store, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return. Defaults to 10.")),
	), h.handleGetRunHistory)

	return s
}

// StartMCPServer serves the perfpipe tools over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
