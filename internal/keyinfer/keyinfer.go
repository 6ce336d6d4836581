// Package keyinfer chooses a natural sort key for a table from its
// column-uniqueness statistics, and separately flags string columns that
// look like datetimes by sampled parse-success rate.
package keyinfer

import (
	"time"

	"tablediff/internal/core"
)

// InferKey picks at most one key column from t, in priority order:
//  1. the first non-numeric column that is perfectly unique,
//  2. else the first column (numeric or not) that is perfectly unique,
//  3. else the first column whose uniqueness ratio is >= threshold,
//  4. else none.
//
// Empty tables yield no key.
func InferKey(t *core.Table, threshold float64) []string {
	height := t.Height()
	if height == 0 {
		return nil
	}

	var firstPerfect string
	haveFirstPerfect := false

	for i, col := range t.Columns {
		if t.NUnique(i) != height {
			continue
		}
		if !isNumeric(col.Type) {
			return []string{col.Name}
		}
		if !haveFirstPerfect {
			firstPerfect = col.Name
			haveFirstPerfect = true
		}
	}
	if haveFirstPerfect {
		return []string{firstPerfect}
	}

	for i, col := range t.Columns {
		ratio := float64(t.NUnique(i)) / float64(height)
		if ratio >= threshold {
			return []string{col.Name}
		}
	}

	return nil
}

func isNumeric(t core.DataType) bool {
	return t == core.Integer || t == core.Float
}

// InferDatetimeColumns samples up to sampleSize non-null values of every
// string column and flags it as a datetime column if at least
// successThreshold of the sample parses as RFC3339. This does not affect
// comparison semantics -- it exists purely so callers can upgrade a
// column's displayed type for reporting, matching the original
// implementation's inference.infer_datetime_columns_pl.
func InferDatetimeColumns(t *core.Table, sampleSize int, successThreshold float64) []string {
	var out []string
	for i, col := range t.Columns {
		if col.Type != core.String {
			continue
		}
		sampled, parsed := 0, 0
		for _, row := range t.Rows {
			v := row[i]
			if core.IsNull(v) {
				continue
			}
			if sampled >= sampleSize {
				break
			}
			sampled++
			s, ok := v.(string)
			if !ok {
				continue
			}
			if _, err := time.Parse(time.RFC3339, s); err == nil {
				parsed++
			}
		}
		if sampled == 0 {
			continue
		}
		if float64(parsed)/float64(sampled) >= successThreshold {
			out = append(out, col.Name)
		}
	}
	return out
}
