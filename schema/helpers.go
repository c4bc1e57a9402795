package schema

import (
	"slices"
	"time"
)

// HasColumn reports whether at least one row carries the column.
func HasColumn(rows []FlatRow, col Column) bool {
	for _, r := range rows {
		if _, ok := r.Numeric(col); ok {
			return true
		}
		if _, ok := r.Tag(col); ok {
			return true
		}
	}
	return false
}

// ColumnValues returns the present values of a numeric column, in row order.
func ColumnValues(rows []FlatRow, col Column) []float64 {
	var values []float64
	for _, r := range rows {
		if v, ok := r.Numeric(col); ok {
			values = append(values, v)
		}
	}
	return values
}

// PresentNumericColumns returns the numeric columns carried by at least one row.
func PresentNumericColumns(rows []FlatRow) []Column {
	var cols []Column
	for _, col := range NumericColumns {
		if HasColumn(rows, col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// GroupBy partitions rows by a categorical column. Rows without the column are left out.
func GroupBy(rows []FlatRow, col Column) map[string][]FlatRow {
	groups := make(map[string][]FlatRow)
	for _, r := range rows {
		if key, ok := r.Tag(col); ok {
			groups[key] = append(groups[key], r)
		}
	}
	return groups
}

// SortedKeys returns the keys of a group map in lexicographic order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// TimeRange returns the earliest and latest non-zero timestamps of the rows.
func TimeRange(rows []FlatRow) (earliest, latest time.Time) {
	for _, r := range rows {
		if r.Timestamp.IsZero() {
			continue
		}
		if earliest.IsZero() || r.Timestamp.Before(earliest) {
			earliest = r.Timestamp
		}
		if latest.IsZero() || r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}
	return earliest, latest
}
