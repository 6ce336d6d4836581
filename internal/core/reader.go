package core

// Reader materializes a table file into memory. The columnar file format
// itself (row groups, typed fields, bulk materialization) is an external
// collaborator to this engine -- Reader is the seam a production deployment
// plugs its real reader (Parquet, Arrow, ...) into. Schema must reflect the
// file's schema even if Open later fails to fully materialize rows.
type Reader interface {
	// Schema returns the file's column list. An implementation that infers
	// types from the data (CSVReader) reads the rows to answer it.
	Schema(path string) ([]Column, error)
	// Open fully materializes the table into memory.
	Open(path string) (*Table, error)
}
