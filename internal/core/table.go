package core

import "fmt"

// Table is an ordered list of named, typed columns plus N rows. Rows are
// stored positionally: Rows[i][j] is the value of Columns[j] in row i.
type Table struct {
	Columns []Column
	Rows    [][]Value
}

// NewTable builds a Table, validating that every row has one value per
// column.
func NewTable(columns []Column, rows [][]Value) (*Table, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("core: row %d has %d values, want %d", i, len(row), len(columns))
		}
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

// Height returns the row count.
func (t *Table) Height() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnNames returns the schema's column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IndexOf returns the column index for name, or -1 if absent.
func (t *Table) IndexOf(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column looks up a column definition by name.
func (t *Table) Column(name string) (Column, bool) {
	idx := t.IndexOf(name)
	if idx < 0 {
		return Column{}, false
	}
	return t.Columns[idx], true
}

// NUnique returns the number of distinct values (null counted once, like any
// other value) in the column at idx.
func (t *Table) NUnique(idx int) int {
	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		seen[Stringify(row[idx])] = struct{}{}
	}
	return len(seen)
}

// Project returns a new Table containing only the named columns, in the
// order given. Unknown names are silently ignored (callers are expected to
// have already intersected against the schema).
func (t *Table) Project(names []string) *Table {
	idx := make([]int, 0, len(names))
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		i := t.IndexOf(n)
		if i < 0 {
			continue
		}
		idx = append(idx, i)
		cols = append(cols, t.Columns[i])
	}
	rows := make([][]Value, len(t.Rows))
	for r, row := range t.Rows {
		newRow := make([]Value, len(idx))
		for j, i := range idx {
			newRow[j] = row[i]
		}
		rows[r] = newRow
	}
	return &Table{Columns: cols, Rows: rows}
}

// DropColumns returns a new Table with the named columns removed; names
// absent from the schema are ignored.
func (t *Table) DropColumns(names []string) *Table {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	keep := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if _, ok := drop[c.Name]; !ok {
			keep = append(keep, c.Name)
		}
	}
	return t.Project(keep)
}

// SortedBy returns a copy of the table's rows sorted ascending by the named
// key columns, with every remaining column (in schema order) as a
// deterministic tie-break. The receiver is left unmodified.
func (t *Table) SortedBy(keys []string) *Table {
	keyIdx := make([]int, 0, len(keys))
	keySet := make(map[int]struct{}, len(keys))
	for _, k := range keys {
		i := t.IndexOf(k)
		if i < 0 {
			continue
		}
		keyIdx = append(keyIdx, i)
		keySet[i] = struct{}{}
	}
	var tieBreak []int
	for i := range t.Columns {
		if _, ok := keySet[i]; !ok {
			tieBreak = append(tieBreak, i)
		}
	}
	rows := make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		cp := make([]Value, len(row))
		copy(cp, row)
		rows[i] = cp
	}
	sortRowsBy(rows, keyIdx, tieBreak)
	return &Table{Columns: t.Columns, Rows: rows}
}

// Row returns a map of column name to value for the row at idx, for
// name-based cell access.
func (t *Table) Row(idx int) map[string]Value {
	row := t.Rows[idx]
	out := make(map[string]Value, len(row))
	for i, c := range t.Columns {
		out[c.Name] = row[i]
	}
	return out
}
