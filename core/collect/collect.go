// Package collect has discovery, parsing and merging logic for benchmark result files.
package collect

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"
)

// Options controls where the collector looks for result files.
type Options struct {
	SearchRoot   string   // Explicit root; when set, SearchPaths are ignored
	SearchPaths  []string // Default search paths, relative to BaseDir
	BaseDir      string   // Base for relative search paths (default ".")
	DataFileName string   // Aggregated document name, excluded from discovery
	DataFile     string   // Aggregated document path, excluded from discovery
}

// Collector discovers result files and merges them into one Collection.
// A Collector is used for a single collection session.
type Collector struct {
	opts       Options
	cache      contract.CacheStore
	collection schema.Collection
	files      []string
	warnings   []error
}

// New creates a Collector. The cache store is optional.
func New(opts Options, cache contract.CacheStore) *Collector {
	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}
	if opts.DataFileName == "" {
		opts.DataFileName = schema.DataFileName
	}
	if opts.SearchRoot == "" && len(opts.SearchPaths) == 0 {
		opts.SearchPaths = schema.DefaultSearchPaths
	}
	return &Collector{opts: opts, cache: cache}
}

// CollectAllData discovers every candidate file, parses it and returns the merged Collection.
// Malformed files are skipped with a recorded warning.
func (c *Collector) CollectAllData(ctx context.Context) (schema.Collection, error) {
	roots, err := c.searchRoots()
	if err != nil {
		return schema.Collection{}, err
	}

	files, err := c.discover(ctx, roots)
	if err != nil {
		return schema.Collection{}, err
	}

	c.collection = schema.Collection{Data: []schema.CollectionEntry{}}
	c.files = c.files[:0]
	c.warnings = nil
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return schema.Collection{}, err
		}
		entries, err := c.parseWithCache(path)
		if err != nil {
			c.warn(err)
			continue
		}
		c.files = append(c.files, path)
		c.collection.Data = append(c.collection.Data, entries...)
	}
	return c.collection, nil
}

// Collection returns the result of the last CollectAllData call.
func (c *Collector) Collection() schema.Collection {
	return c.collection
}

// Files returns the paths that contributed entries, in processing order.
func (c *Collector) Files() []string {
	return slices.Clone(c.files)
}

// Warnings returns the parse problems recorded during the last scan.
func (c *Collector) Warnings() []error {
	return slices.Clone(c.warnings)
}

// GetStatistics summarizes the last collected Collection.
func (c *Collector) GetStatistics() schema.CollectionStats {
	return Statistics(c.collection)
}

// ExportToJSON writes the last collected Collection to path atomically.
func (c *Collector) ExportToJSON(path string) error {
	return WriteCollection(path, c.collection)
}

func (c *Collector) warn(err error) {
	c.warnings = append(c.warnings, err)
	contract.LogWarn("Skipping result file", err)
}

// searchRoots returns the existing roots to walk.
func (c *Collector) searchRoots() ([]string, error) {
	if c.opts.SearchRoot != "" {
		info, err := os.Stat(c.opts.SearchRoot)
		if err != nil || !info.IsDir() {
			return nil, &contract.InputNotFoundError{Path: c.opts.SearchRoot}
		}
		return []string{c.opts.SearchRoot}, nil
	}

	var roots []string
	for _, p := range c.opts.SearchPaths {
		candidate := p
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(c.opts.BaseDir, p)
		}
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			roots = append(roots, candidate)
		}
	}
	if len(roots) == 0 {
		return nil, &contract.InputNotFoundError{Path: strings.Join(c.opts.SearchPaths, ", ")}
	}
	return roots, nil
}

// discover walks the roots and returns unique candidate files in sorted order.
func (c *Collector) discover(ctx context.Context, roots []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	var excluded string
	if c.opts.DataFile != "" {
		if p, err := canonicalPath(c.opts.DataFile); err == nil {
			excluded = p
		}
	}

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				c.warn(&contract.ParseError{Path: path, Err: walkErr})
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !c.isCandidate(d.Name()) {
				return nil
			}
			abs, err := canonicalPath(path)
			if err != nil {
				c.warn(&contract.ParseError{Path: path, Err: err})
				return nil
			}
			if _, dup := seen[abs]; dup || abs == excluded {
				return nil
			}
			seen[abs] = struct{}{}
			files = append(files, abs)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	slices.Sort(files)
	return files, nil
}

// isCandidate reports whether a file name looks like a result file.
func (c *Collector) isCandidate(name string) bool {
	if !strings.EqualFold(filepath.Ext(name), ".json") {
		return false
	}
	return !strings.EqualFold(name, c.opts.DataFileName)
}

// canonicalPath resolves a path to its absolute, symlink-free form.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}
