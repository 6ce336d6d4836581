// Package report renders a ComparisonResult into a self-contained HTML
// file, the one human-facing artifact the core hands back to its caller.
package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tablediff/internal/core"
	"tablediff/internal/schemadiff"
	"tablediff/internal/summary"
)

// Data is everything the report template needs about one pair's outcome.
type Data struct {
	FileBefore string
	FileAfter  string
	Status     string
	SchemaDiff      *schemadiff.Diff
	SortKeys        []string
	DatetimeColumns []string
	Summary         *summary.Summary
	Added      *core.Table
	Deleted    *core.Table
	Modified   []summary.Cell
	Generated  time.Time
}

type tableView struct {
	Headers []string
	Rows    [][]string
}

func newTableView(t *core.Table) *tableView {
	if t == nil || t.Height() == 0 {
		return nil
	}
	headers := t.ColumnNames()
	rows := make([][]string, 0, t.Height())
	for _, row := range t.Rows {
		rendered := make([]string, len(row))
		for i, v := range row {
			rendered[i] = core.Stringify(v)
		}
		rows = append(rows, rendered)
	}
	return &tableView{Headers: headers, Rows: rows}
}

type modifiedView struct {
	Key         string
	Column      string
	ValueBefore string
	ValueAfter  string
}

type templateData struct {
	Data
	AddedTable    *tableView
	DeletedTable  *tableView
	ModifiedTable []modifiedView
	SchemaAdded   []string
	SchemaRemoved []string
	TypeChanges   []string
}

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>tablediff report: {{.FileBefore}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ccc; padding: 4px 8px; font-size: 0.9rem; }
th { background: #f0f0f0; text-align: left; }
.status { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.FileBefore}} vs {{.FileAfter}}</h1>
<p class="status">Status: {{.Status}}</p>
<p>Generated: {{.Generated}}</p>
<p>Inferred keys: {{if .SortKeys}}{{range .SortKeys}}{{.}} {{end}}{{else}}(none){{end}}</p>
{{if .DatetimeColumns}}<p>Datetime-like columns: {{range .DatetimeColumns}}{{.}} {{end}}</p>{{end}}

{{if .Summary}}
<h2>Summary</h2>
<ul>
<li>Rows added: {{.Summary.RowsAdded}}</li>
<li>Rows deleted: {{.Summary.RowsDeleted}}</li>
<li>Rows modified: {{.Summary.RowsModified}}</li>
</ul>
{{if .Summary.TopColumns}}
<table>
<tr><th>Column</th><th>Modification count</th></tr>
{{range .Summary.TopColumns}}<tr><td>{{.Column}}</td><td>{{.Count}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}

{{if or .SchemaAdded .SchemaRemoved .TypeChanges}}
<h2>Schema differences</h2>
{{if .SchemaAdded}}<p>Added columns: {{range .SchemaAdded}}{{.}} {{end}}</p>{{end}}
{{if .SchemaRemoved}}<p>Removed columns: {{range .SchemaRemoved}}{{.}} {{end}}</p>{{end}}
{{if .TypeChanges}}<p>Type changes: {{range .TypeChanges}}{{.}} {{end}}</p>{{end}}
{{end}}

{{if .AddedTable}}
<h2>Added rows</h2>
<table>
<tr>{{range .AddedTable.Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .AddedTable.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}
</table>
{{end}}

{{if .DeletedTable}}
<h2>Deleted rows</h2>
<table>
<tr>{{range .DeletedTable.Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .DeletedTable.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}
</table>
{{end}}

{{if .ModifiedTable}}
<h2>Modified cells</h2>
<table>
<tr><th>Key</th><th>Column</th><th>Before</th><th>After</th></tr>
{{range .ModifiedTable}}<tr><td>{{.Key}}</td><td>{{.Column}}</td><td>{{.ValueBefore}}</td><td>{{.ValueAfter}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

// Render writes the rendered HTML report for data to w.
func Render(w io.Writer, data Data) error {
	td := templateData{
		Data:          data,
		AddedTable:    newTableView(data.Added),
		DeletedTable:  newTableView(data.Deleted),
		ModifiedTable: modifiedViews(data.Modified),
	}
	if data.SchemaDiff != nil {
		for name := range data.SchemaDiff.Added {
			td.SchemaAdded = append(td.SchemaAdded, name)
		}
		sort.Strings(td.SchemaAdded)
		for name := range data.SchemaDiff.Removed {
			td.SchemaRemoved = append(td.SchemaRemoved, name)
		}
		sort.Strings(td.SchemaRemoved)
		typeChangeNames := make([]string, 0, len(data.SchemaDiff.TypeChanges))
		for name := range data.SchemaDiff.TypeChanges {
			typeChangeNames = append(typeChangeNames, name)
		}
		sort.Strings(typeChangeNames)
		for _, name := range typeChangeNames {
			tc := data.SchemaDiff.TypeChanges[name]
			td.TypeChanges = append(td.TypeChanges, fmt.Sprintf("%s (%s -> %s)", name, tc.Before, tc.After))
		}
	}
	return tmpl.Execute(w, td)
}

func modifiedViews(cells []summary.Cell) []modifiedView {
	out := make([]modifiedView, 0, len(cells))
	for _, c := range cells {
		out = append(out, modifiedView{Key: c.Key, Column: c.Column, ValueBefore: c.ValueBefore, ValueAfter: c.ValueAfter})
	}
	return out
}

// WriteFile renders data and writes it to a timestamped file under
// outputDir, returning the written path.
func WriteFile(outputDir string, data Data) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("report: create output dir %q: %w", outputDir, err)
	}

	base := strings.TrimSuffix(filepath.Base(data.FileBefore), filepath.Ext(data.FileBefore))
	ts := data.Generated.Format("20060102_150405")
	reportPath := filepath.Join(outputDir, fmt.Sprintf("report_%s_%s.html", base, ts))

	f, err := os.Create(reportPath)
	if err != nil {
		return "", fmt.Errorf("report: create file %q: %w", reportPath, err)
	}
	defer f.Close()

	if err := Render(f, data); err != nil {
		return "", fmt.Errorf("report: render %q: %w", reportPath, err)
	}
	return reportPath, nil
}
