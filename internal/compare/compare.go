// Package compare implements the precise, key-joined outer diff: given two
// tables already projected onto their common columns, it buckets rows into
// added / deleted / modified using the inferred sort key, with numeric
// tolerance and schema-drift-aware coercion.
package compare

import (
	"fmt"
	"sort"
	"strings"

	"tablediff/internal/core"
	"tablediff/internal/schemadiff"
)

// ModifiedCell is one differing (key, column) cell, long-form.
type ModifiedCell struct {
	Key         string
	Column      string
	ValueBefore string
	ValueAfter  string
}

// Data is the result of a data-level diff: added/deleted rows projected onto
// common columns, plus the long-form modified cells.
type Data struct {
	Added      *core.Table
	Deleted    *core.Table
	Modified   []ModifiedCell
	Identical  bool
}

// Compare performs the outer-join diff described in spec.md §4.4. before and
// after must already be projected onto their common columns and share the
// same column order. sortKeys are the common-column keys to join on;
// schemaDiff tells the comparator which common columns changed type (those
// are compared as strings regardless of their original type).
func Compare(before, after *core.Table, sortKeys []string, tolerance float64, diff *schemadiff.Diff) *Data {
	stringCoerced := make(map[string]struct{}, len(diff.TypeChanges))
	for name := range diff.TypeChanges {
		if before.IndexOf(name) >= 0 {
			stringCoerced[name] = struct{}{}
		}
	}

	beforeIdx := indexByKey(before, sortKeys)
	afterIdx := indexByKey(after, sortKeys)

	var addedRows, deletedRows [][]core.Value
	var modified []ModifiedCell

	allKeys := unionKeys(beforeIdx, afterIdx)
	for _, key := range allKeys {
		bRows := sortByRowContent(before, beforeIdx[key])
		aRows := sortByRowContent(after, afterIdx[key])
		n := min(len(bRows), len(aRows))

		for i := 0; i < n; i++ {
			modified = append(modified, diffRow(before, after, bRows[i], aRows[i], sortKeys, tolerance, stringCoerced)...)
		}
		for i := n; i < len(bRows); i++ {
			deletedRows = append(deletedRows, before.Rows[bRows[i]])
		}
		for i := n; i < len(aRows); i++ {
			addedRows = append(addedRows, after.Rows[aRows[i]])
		}
	}

	added := &core.Table{Columns: after.Columns, Rows: addedRows}
	deleted := &core.Table{Columns: before.Columns, Rows: deletedRows}

	return &Data{
		Added:     added,
		Deleted:   deleted,
		Modified:  modified,
		Identical: len(addedRows) == 0 && len(deletedRows) == 0 && len(modified) == 0,
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func indexByKey(t *core.Table, keys []string) map[string][]int {
	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		idx = append(idx, t.IndexOf(k))
	}
	out := make(map[string][]int)
	for r, row := range t.Rows {
		key := keyString(row, idx)
		out[key] = append(out[key], r)
	}
	return out
}

func keyString(row []core.Value, idx []int) string {
	parts := make([]string, len(idx))
	for i, ci := range idx {
		parts[i] = core.Stringify(row[ci])
	}
	return strings.Join(parts, "\x1f")
}

// sortByRowContent orders a bucket of same-key row indices by their full,
// whole-row content rather than file position. A non-unique sort key means
// a key bucket can hold more than one row on each side; pairing by raw
// insertion order would report a pair of merely-reordered duplicate rows as
// modified. Sorting both sides the same deterministic way lines up
// identical rows regardless of which order the file listed them in. Rows
// are ordered by their stringified columns joined in schema order and
// compared as one string.
func sortByRowContent(t *core.Table, rows []int) []int {
	if len(rows) < 2 {
		return rows
	}
	allCols := make([]int, len(t.Columns))
	for i := range t.Columns {
		allCols[i] = i
	}
	out := append([]int(nil), rows...)
	sort.Slice(out, func(i, j int) bool {
		return keyString(t.Rows[out[i]], allCols) < keyString(t.Rows[out[j]], allCols)
	})
	return out
}

func unionKeys(a, b map[string][]int) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for k := range a {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	for k := range b {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// diffRow compares one matched (before, after) row pair and returns one
// ModifiedCell per differing non-key column.
func diffRow(before, after *core.Table, bi, ai int, sortKeys []string, tolerance float64, stringCoerced map[string]struct{}) []ModifiedCell {
	keySet := make(map[string]struct{}, len(sortKeys))
	for _, k := range sortKeys {
		keySet[k] = struct{}{}
	}

	bRow, aRow := before.Rows[bi], after.Rows[ai]
	keyStr := rowKeyLabel(before, bRow, sortKeys)

	var out []ModifiedCell
	for ci, col := range before.Columns {
		if _, isKey := keySet[col.Name]; isKey {
			continue
		}
		aiCol := after.IndexOf(col.Name)
		if aiCol < 0 {
			continue
		}
		bv, av := bRow[ci], aRow[aiCol]

		_, coerced := stringCoerced[col.Name]
		var equal bool
		switch {
		case coerced:
			equal = core.IsNull(bv) == core.IsNull(av) && core.Stringify(bv) == core.Stringify(av)
		case col.Type == core.Float:
			equal = core.EqualWithTolerance(bv, av, tolerance)
		default:
			equal = core.EqualStrict(bv, av)
		}
		if !equal {
			out = append(out, ModifiedCell{
				Key:         keyStr,
				Column:      col.Name,
				ValueBefore: core.Stringify(bv),
				ValueAfter:  core.Stringify(av),
			})
		}
	}
	return out
}

func rowKeyLabel(t *core.Table, row []core.Value, keys []string) string {
	vals := make([]string, len(keys))
	for i, k := range keys {
		idx := t.IndexOf(k)
		vals[i] = core.Stringify(row[idx])
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", "))
}
