package collect

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL bounds how long a parsed file stays valid in the cache.
const cacheTTL = 7 * 24 * time.Hour

// parseWithCache parses a file, consulting the cache store when one is configured.
// Notes are recorded as warnings; only clean parses are cached.
func (c *Collector) parseWithCache(path string) ([]schema.CollectionEntry, error) {
	if c.cache == nil {
		return c.parseAndNote(path)
	}

	key, err := generateCacheKey(path)
	if err != nil {
		return c.parseAndNote(path)
	}

	// Check for cache hit
	if entries := checkCacheHit(c.cache, key); entries != nil {
		return entries, nil
	}

	// Cache miss: compute and store
	entries, notes, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		c.warn(n)
	}
	if len(notes) == 0 {
		if data, err := json.Marshal(entries); err == nil {
			_ = c.cache.Set(key, data, currentCacheVersion, time.Now().Unix())
		}
	}
	return entries, nil
}

func (c *Collector) parseAndNote(path string) ([]schema.CollectionEntry, error) {
	entries, notes, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		c.warn(n)
	}
	return entries, nil
}

// checkCacheHit attempts to retrieve and validate a cached parse
func checkCacheHit(store contract.CacheStore, key string) []schema.CollectionEntry {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}
	var entries []schema.CollectionEntry
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		return nil
	}
	return entries
}

// generateCacheKey identifies a file by path, size and modification time
func generateCacheKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), nil
}
