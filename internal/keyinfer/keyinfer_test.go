package keyinfer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tablediff/internal/core"
)

func mustTable(t *testing.T, cols []core.Column, rows [][]core.Value) *core.Table {
	t.Helper()
	tbl, err := core.NewTable(cols, rows)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestInferKeyPrefersNonNumericPerfectKey(t *testing.T) {
	tbl := mustTable(t,
		[]core.Column{{Name: "id", Type: core.Integer}, {Name: "sku", Type: core.String}, {Name: "score", Type: core.Float}},
		[][]core.Value{
			{int64(1), "a", 1.1},
			{int64(2), "b", 1.1},
			{int64(3), "c", 2.2},
		},
	)
	// score is not unique (1.1 repeats); id and sku are both perfectly unique.
	assert.Equal(t, []string{"sku"}, InferKey(tbl, 0.99))
}

func TestInferKeyFallsBackToNumericPerfectKey(t *testing.T) {
	tbl := mustTable(t,
		[]core.Column{{Name: "id", Type: core.Integer}, {Name: "status", Type: core.String}},
		[][]core.Value{
			{int64(1), "a"},
			{int64(2), "a"},
			{int64(3), "a"},
		},
	)
	assert.Equal(t, []string{"id"}, InferKey(tbl, 0.99))
}

func TestInferKeyThresholdFallback(t *testing.T) {
	tbl := mustTable(t,
		[]core.Column{{Name: "a", Type: core.String}},
		[][]core.Value{{"x"}, {"x"}, {"y"}, {"z"}, {"w"}},
	)
	// 4/5 unique = 0.8
	assert.Equal(t, []string{"a"}, InferKey(tbl, 0.75))
	assert.Nil(t, InferKey(tbl, 0.99))
}

func TestInferKeyEmptyTable(t *testing.T) {
	tbl := mustTable(t, []core.Column{{Name: "a", Type: core.String}}, nil)
	assert.Nil(t, InferKey(tbl, 0.5))
}

func TestInferDatetimeColumns(t *testing.T) {
	tbl := mustTable(t,
		[]core.Column{{Name: "ts", Type: core.String}, {Name: "name", Type: core.String}},
		[][]core.Value{
			{"2024-01-01T00:00:00Z", "a"},
			{"2024-01-02T00:00:00Z", "b"},
			{"not-a-date", "c"},
		},
	)
	cols := InferDatetimeColumns(tbl, 1000, 0.6)
	assert.Equal(t, []string{"ts"}, cols)
}
