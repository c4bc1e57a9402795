package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/perfpipe/core/analyze"
	"github.com/huangsam/perfpipe/core/collect"
	"github.com/huangsam/perfpipe/core/project"
	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultHistoryLimit = 10

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

func (h *toolHandler) cacheStore() contract.CacheStore {
	if h.mgr == nil {
		return nil
	}
	return h.mgr.GetCacheStore()
}

func (h *toolHandler) historyStore() contract.HistoryStore {
	if h.mgr == nil {
		return nil
	}
	return h.mgr.GetHistoryStore()
}

func (h *toolHandler) handleCollectStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if d := request.GetString("data_dir", ""); d != "" {
		cfg.DataDir = d
	}

	c := collect.New(collect.Options{SearchRoot: cfg.DataDir, SearchPaths: cfg.SearchPaths}, h.cacheStore())
	collection, err := c.CollectAllData(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("collection failed: %v", err)), nil
	}
	if collection.TotalResults() == 0 {
		return mcp.NewToolResultError("no performance data found"), nil
	}
	return jsonResult(c.GetStatistics())
}

func (h *toolHandler) handleGetSummary(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := loadAnalyzer(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(a.Summary())
}

func (h *toolHandler) handleGetReport(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := loadAnalyzer(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(a.Report(time.Now()))
}

func (h *toolHandler) handleGetRunHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := h.historyStore()
	if store == nil {
		return mcp.NewToolResultError("run history is disabled; set --history-backend"), nil
	}
	limit := request.GetInt("limit", defaultHistoryLimit)
	if limit < 1 {
		return mcp.NewToolResultError("limit must be at least 1"), nil
	}
	runs, err := store.GetRuns(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read run history: %v", err)), nil
	}
	if runs == nil {
		runs = []schema.RunRecord{}
	}
	return jsonResult(runs)
}

// loadAnalyzer reads the data file named in the request and projects it.
func loadAnalyzer(request mcp.CallToolRequest) (*analyze.Analyzer, error) {
	path := request.GetString("data_file", "")
	if path == "" {
		return nil, errors.New("data_file is required")
	}
	collection, err := collect.LoadCollection(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load data file: %w", err)
	}
	rows := project.Project(collection)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no test results in %s", path)
	}
	return analyze.New(rows), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
