// Package pipeline orchestrates one before/after comparison: it stages the
// schema diff, key inference, checksum fast path, and the precise or fuzzy
// data diff into a single terminal status, and never lets a stage's error
// escape as a panic or unhandled error -- every failure mode becomes part of
// the returned Outcome.
package pipeline

import (
	"fmt"

	"tablediff/internal/checksum"
	"tablediff/internal/compare"
	"tablediff/internal/core"
	"tablediff/internal/fuzzy"
	"tablediff/internal/keyinfer"
	"tablediff/internal/log"
	"tablediff/internal/schemadiff"
)

// Status is one of the terminal verdicts a pair comparison can reach.
type Status string

const (
	StatusChecksumMatch         Status = "IDENTICAL (CHECKSUM_MATCH)"
	StatusToleranceMatch        Status = "IDENTICAL (TOLERANCE_MATCH)"
	StatusIdentical             Status = "IDENTICAL"
	StatusFuzzyIdentical        Status = "FUZZY_IDENTICAL"
	StatusDifferencesFound      Status = "DIFFERENCES_FOUND"
	StatusFuzzyDifferencesFound Status = "FUZZY_DIFFERENCES_FOUND"
	StatusReadError             Status = "READ_ERROR"
)

// Rules are per-pair external inputs.
type Rules struct {
	FloatTolerance float64
	IgnoreColumns  []string
}

// Config is process-wide external input, shared across all pairs in a run.
type Config struct {
	KeyUniquenessThreshold float64
	DatetimeParseThreshold float64
	FuzzyMatchThreshold    float64
}

// ChecksumStatus records what the fast-path checksum stage found. Beyond
// reporting, ChecksumMismatch decides the final Status when the precise
// diff is empty: IDENTICAL (TOLERANCE_MATCH) after a mismatch, plain
// IDENTICAL when the checksum did not run.
type ChecksumStatus string

const (
	ChecksumNotRun                ChecksumStatus = ""
	ChecksumMismatch              ChecksumStatus = "CHECKSUM_MISMATCH"
	ChecksumMatchButSchemaDiffers ChecksumStatus = "CHECKSUM_MATCH_BUT_SCHEMA_DIFFERS"
)

// datetimeSampleSize caps how many non-null values of a string column
// InferDatetimeColumns inspects before deciding whether it looks like a
// datetime column, matching the original's sampled inference.
const datetimeSampleSize = 100

// Outcome is everything downstream summary/report stages need about one
// pair's comparison.
type Outcome struct {
	Status           Status
	Details          string
	SchemaDiff       *schemadiff.Diff
	SortKeys         []string
	CommonColumns    []string
	DatetimeColumns  []string
	ChecksumStatus   ChecksumStatus
	Precise          *compare.Data
	Fuzzy            *fuzzy.Data
}

// Run executes the full per-pair pipeline described in spec.md §4.6. It
// never returns a Go error: every failure mode is captured as
// Outcome.Status == StatusReadError with Details carrying the message.
func Run(reader core.Reader, beforePath, afterPath string, rules Rules, cfg Config, skipChecksum bool) *Outcome {
	// Schema is derived from the already-opened tables rather than a
	// separate reader.Schema call: every Reader must fully materialize a
	// table to answer Open anyway, so calling Schema first would parse
	// each file twice for no benefit.
	beforeTable, err := reader.Open(beforePath)
	if err != nil {
		return &Outcome{Status: StatusReadError, Details: fmt.Sprintf("reading %s: %v", beforePath, err)}
	}
	afterTable, err := reader.Open(afterPath)
	if err != nil {
		return &Outcome{Status: StatusReadError, Details: fmt.Sprintf("reading %s: %v", afterPath, err)}
	}

	diff := schemadiff.Compare(dropIgnored(beforeTable.Columns, rules.IgnoreColumns), dropIgnored(afterTable.Columns, rules.IgnoreColumns))
	if !diff.IsIdentical() {
		log.Warnf("schema mismatch between %s and %s; comparing on common columns only", beforePath, afterPath)
	}

	beforeTable = beforeTable.DropColumns(rules.IgnoreColumns)
	afterTable = afterTable.DropColumns(rules.IgnoreColumns)

	commonCols := commonColumns(beforeTable, afterTable)
	beforeCommon := beforeTable.Project(commonCols)
	afterCommon := afterTable.Project(commonCols)

	sortKeys := keyinfer.InferKey(beforeCommon, cfg.KeyUniquenessThreshold)
	datetimeCols := keyinfer.InferDatetimeColumns(beforeCommon, datetimeSampleSize, cfg.DatetimeParseThreshold)

	out := &Outcome{SchemaDiff: diff, SortKeys: sortKeys, CommonColumns: commonCols, DatetimeColumns: datetimeCols}

	if !skipChecksum && len(sortKeys) > 0 {
		hBefore, okBefore := checksum.Checksum(beforeCommon, sortKeys)
		hAfter, okAfter := checksum.Checksum(afterCommon, sortKeys)
		if okBefore && okAfter && hBefore == hAfter {
			if diff.IsIdentical() {
				out.Status = StatusChecksumMatch
				return out
			}
			// Content matches on common columns but the schema itself
			// differs: still a reportable difference, but there is no
			// point re-deriving an empty data diff.
			out.Status = StatusDifferencesFound
			out.ChecksumStatus = ChecksumMatchButSchemaDiffers
			out.Precise = &compare.Data{Identical: true}
			return out
		}
		out.ChecksumStatus = ChecksumMismatch
	}

	if len(sortKeys) == 0 {
		fz := fuzzy.Compare(beforeCommon, afterCommon, cfg.FuzzyMatchThreshold)
		out.Fuzzy = fz
		switch {
		case !diff.IsIdentical():
			out.Status = StatusDifferencesFound
		case fz.Identical:
			out.Status = StatusFuzzyIdentical
		default:
			out.Status = StatusFuzzyDifferencesFound
		}
		return out
	}

	data := compare.Compare(beforeCommon, afterCommon, sortKeys, rules.FloatTolerance, diff)
	out.Precise = data
	switch {
	case data.Identical && diff.IsIdentical():
		if out.ChecksumStatus == ChecksumMismatch {
			out.Status = StatusToleranceMatch
		} else {
			out.Status = StatusIdentical
		}
	default:
		out.Status = StatusDifferencesFound
	}
	return out
}

// dropIgnored returns cols without any column named in ignore, so a column
// the rules exclude from comparison never forces a schema-drift verdict
// either.
func dropIgnored(cols []core.Column, ignore []string) []core.Column {
	if len(ignore) == 0 {
		return cols
	}
	skip := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		skip[name] = struct{}{}
	}
	out := make([]core.Column, 0, len(cols))
	for _, c := range cols {
		if _, ok := skip[c.Name]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// commonColumns returns the names present in both tables, in before's
// schema order, so downstream projection and blocking-column selection are
// deterministic.
func commonColumns(before, after *core.Table) []string {
	afterNames := make(map[string]struct{}, len(after.Columns))
	for _, c := range after.Columns {
		afterNames[c.Name] = struct{}{}
	}
	var out []string
	for _, c := range before.Columns {
		if _, ok := afterNames[c.Name]; ok {
			out = append(out, c.Name)
		}
	}
	return out
}
