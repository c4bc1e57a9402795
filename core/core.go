// Package core sequences benchmark collection, projection and analysis.
package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/huangsam/perfpipe/core/collect"
	"github.com/huangsam/perfpipe/core/project"
	"github.com/huangsam/perfpipe/internal/charts"
	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/internal/outwriter"
)

// NewCollector builds a collector for the configured search locations.
func NewCollector(cfg *contract.Config, mgr contract.StoreManager) *collect.Collector {
	var cache contract.CacheStore
	if mgr != nil {
		cache = mgr.GetCacheStore()
	}
	opts := collect.Options{
		SearchRoot:  cfg.DataDir,
		SearchPaths: cfg.SearchPaths,
	}
	if cfg.DataFile != "" {
		opts.DataFileName = filepath.Base(cfg.DataFile)
		opts.DataFile = cfg.DataFile
	}
	return collect.New(opts, cache)
}

// NewPipelineFromConfig wires the pipeline with the default collaborators.
func NewPipelineFromConfig(cfg *contract.Config, mgr contract.StoreManager) *Pipeline {
	var history contract.HistoryStore
	if mgr != nil {
		history = mgr.GetHistoryStore()
	}
	return NewPipeline(cfg, NewCollector(cfg, mgr), nil, outwriter.NewOutWriter(cfg), charts.New(), history)
}

// ExecutePipeline runs the phases selected by cfg.Mode.
// It returns an error when any phase failed.
func ExecutePipeline(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result := NewPipelineFromConfig(cfg, mgr).Run(ctx)
	if result.OK() {
		return nil
	}
	if result.Err == nil {
		return fmt.Errorf("pipeline %s", result.State)
	}
	return fmt.Errorf("pipeline %s: %w", result.State, result.Err)
}

// ExecuteStats collects result files and prints the collection statistics only.
func ExecuteStats(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	c := NewCollector(cfg, mgr)
	collection, err := c.CollectAllData(ctx)
	if err != nil {
		return err
	}
	if collection.TotalResults() == 0 {
		return ErrNoPerformanceData
	}
	return outwriter.NewOutWriter(cfg).WriteCollectionStats(c.GetStatistics())
}

// ExecuteRows loads the aggregated document and prints the projected table.
func ExecuteRows(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	collection, err := collect.LoadCollection(cfg.DataFile)
	if errors.Is(err, contract.ErrInputNotFound) {
		return &contract.MissingInputError{Path: cfg.DataFile}
	}
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter(cfg).WriteRows(project.Project(collection))
}
