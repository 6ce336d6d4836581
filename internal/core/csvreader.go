package core

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CSVReader is the reference Reader implementation: a dependency-free way to
// exercise the comparison engine end to end without a real columnar file
// toolchain. Production deployments are expected to supply their own Reader
// (Parquet, Arrow, ...); this one exists so the pipeline has something to
// run against in tests and examples.
//
// Column types are inferred from every non-empty cell in the column: if
// every value parses as an integer the column is Integer, else if every
// value parses as a float it is Float, else Boolean, else RFC3339 Temporal,
// else String. An empty cell is null. NullValue overrides the literal that
// is treated as null; it defaults to the empty string.
type CSVReader struct {
	NullValue string
}

// NewCSVReader returns a CSVReader using the empty string as its null
// marker.
func NewCSVReader() *CSVReader {
	return &CSVReader{NullValue: ""}
}

func (r *CSVReader) nullValue() string {
	if r.NullValue != "" {
		return r.NullValue
	}
	return ""
}

// Schema returns the columns of the table Open materializes: it reads the
// whole file, rows included, because types are inferred from every cell.
func (r *CSVReader) Schema(path string) ([]Column, error) {
	t, err := r.Open(path)
	if err != nil {
		return nil, err
	}
	return t.Columns, nil
}

// Open reads the whole CSV file into memory.
func (r *CSVReader) Open(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvreader: open %q: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvreader: read %q: %w", path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	header := records[0]
	raw := records[1:]
	colTypes := make([]DataType, len(header))
	for i := range header {
		colTypes[i] = r.inferColumn(raw, i)
	}

	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = Column{Name: name, Type: colTypes[i]}
	}

	rows := make([][]Value, len(raw))
	null := r.nullValue()
	for ri, rec := range raw {
		row := make([]Value, len(header))
		for ci := range header {
			var cell string
			if ci < len(rec) {
				cell = rec[ci]
			} else {
				cell = null
			}
			row[ci] = r.parseCell(cell, null, colTypes[ci])
		}
		rows[ri] = row
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

func (r *CSVReader) inferColumn(rows [][]string, col int) DataType {
	null := r.nullValue()
	sawAny := false
	allInt, allFloat, allBool, allTime := true, true, true, true
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		cell := row[col]
		if cell == null {
			continue
		}
		sawAny = true
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			allFloat = false
		}
		if _, err := strconv.ParseBool(cell); err != nil {
			allBool = false
		}
		if _, err := time.Parse(time.RFC3339, cell); err != nil {
			allTime = false
		}
	}
	switch {
	case !sawAny:
		return String
	case allInt:
		return Integer
	case allFloat:
		return Float
	case allBool:
		return Boolean
	case allTime:
		return Temporal
	default:
		return String
	}
}

func (r *CSVReader) parseCell(cell, null string, t DataType) Value {
	if cell == null {
		return nil
	}
	switch t {
	case Integer:
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return cell
		}
		return v
	case Float:
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return cell
		}
		return v
	case Boolean:
		v, err := strconv.ParseBool(cell)
		if err != nil {
			return cell
		}
		return v
	case Temporal:
		v, err := time.Parse(time.RFC3339, cell)
		if err != nil {
			return cell
		}
		return v
	default:
		return cell
	}
}
