package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableProjectAndDrop(t *testing.T) {
	tbl, err := NewTable(
		[]Column{{Name: "id", Type: Integer}, {Name: "name", Type: String}, {Name: "score", Type: Float}},
		[][]Value{
			{int64(1), "a", 1.5},
			{int64(2), "b", 2.5},
		},
	)
	require.NoError(t, err)

	projected := tbl.Project([]string{"name", "id"})
	assert.Equal(t, []string{"name", "id"}, projected.ColumnNames())
	assert.Equal(t, Value("a"), projected.Rows[0][0])

	dropped := tbl.DropColumns([]string{"score"})
	assert.Equal(t, []string{"id", "name"}, dropped.ColumnNames())
}

func TestTableNUnique(t *testing.T) {
	tbl, err := NewTable(
		[]Column{{Name: "id", Type: Integer}},
		[][]Value{{int64(1)}, {int64(1)}, {int64(2)}, {nil}},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.NUnique(0))
}

func TestTableSortedByIsDeterministicAndNonMutating(t *testing.T) {
	tbl, err := NewTable(
		[]Column{{Name: "id", Type: Integer}, {Name: "v", Type: String}},
		[][]Value{
			{int64(3), "c"},
			{int64(1), "a"},
			{int64(2), "b"},
		},
	)
	require.NoError(t, err)

	sorted := tbl.SortedBy([]string{"id"})
	assert.Equal(t, []Value{int64(1), int64(2), int64(3)}, []Value{sorted.Rows[0][0], sorted.Rows[1][0], sorted.Rows[2][0]})
	// original table is untouched
	assert.Equal(t, int64(3), tbl.Rows[0][0])
}

func TestNewTableRejectsRaggedRows(t *testing.T) {
	_, err := NewTable([]Column{{Name: "id", Type: Integer}}, [][]Value{{int64(1), int64(2)}})
	assert.Error(t, err)
}

func TestEqualWithToleranceNullSemantics(t *testing.T) {
	assert.True(t, EqualWithTolerance(nil, nil, 0))
	assert.False(t, EqualWithTolerance(nil, 1.0, 0))
	assert.True(t, EqualWithTolerance(1.0, 1.0000001, 1e-6))
	assert.False(t, EqualWithTolerance(1.0, 1.0001, 1e-6))
}
