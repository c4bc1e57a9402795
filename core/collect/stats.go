package collect

import (
	"slices"

	"github.com/huangsam/perfpipe/schema"
)

// Statistics summarizes a Collection. Zero timestamps are ignored for the date range.
func Statistics(c schema.Collection) schema.CollectionStats {
	stats := schema.CollectionStats{
		TotalFiles:    len(c.Data),
		VersionCounts: make(map[string]int),
		Versions:      []string{},
		TestGroups:    []string{},
	}

	groups := make(map[string]struct{})
	for _, e := range c.Data {
		stats.TotalTestResults += len(e.Results)
		stats.VersionCounts[e.AppVersion]++
		if e.TestGroup != "" {
			groups[e.TestGroup] = struct{}{}
		}

		if e.Timestamp.IsZero() {
			continue
		}
		if stats.DateRange.Earliest.IsZero() || e.Timestamp.Before(stats.DateRange.Earliest) {
			stats.DateRange.Earliest = e.Timestamp
		}
		if stats.DateRange.Latest.IsZero() || e.Timestamp.After(stats.DateRange.Latest) {
			stats.DateRange.Latest = e.Timestamp
		}
	}

	stats.Versions = schema.SortedKeys(stats.VersionCounts)
	for g := range groups {
		stats.TestGroups = append(stats.TestGroups, g)
	}
	slices.Sort(stats.TestGroups)
	return stats
}
