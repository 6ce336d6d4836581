// Package summary aggregates a ComparisonData-shaped result into the
// counts and top-modified-columns view a report renders.
package summary

import "sort"

// Cell is the common shape of a modified-cell record, shared by the precise
// and fuzzy comparators' own ModifiedCell types.
type Cell struct {
	Key         string
	Column      string
	ValueBefore string
	ValueAfter  string
}

// ColumnCount is one column's modification tally.
type ColumnCount struct {
	Column string
	Count  int
}

// Summary is the aggregated view of one pair's data-level diff.
type Summary struct {
	RowsAdded    int
	RowsDeleted  int
	RowsModified int
	TopColumns   []ColumnCount
}

// Build counts distinct modified row keys and the per-column modification
// tally, keeping the top 5 columns by count descending, ties broken by
// column name ascending.
func Build(rowsAdded, rowsDeleted int, modified []Cell) *Summary {
	distinctKeys := make(map[string]struct{}, len(modified))
	counts := make(map[string]int)
	for _, c := range modified {
		distinctKeys[c.Key] = struct{}{}
		counts[c.Column]++
	}

	columns := make([]ColumnCount, 0, len(counts))
	for col, n := range counts {
		columns = append(columns, ColumnCount{Column: col, Count: n})
	}
	sort.Slice(columns, func(i, j int) bool {
		if columns[i].Count != columns[j].Count {
			return columns[i].Count > columns[j].Count
		}
		return columns[i].Column < columns[j].Column
	})
	if len(columns) > 5 {
		columns = columns[:5]
	}

	return &Summary{
		RowsAdded:    rowsAdded,
		RowsDeleted:  rowsDeleted,
		RowsModified: len(distinctKeys),
		TopColumns:   columns,
	}
}
