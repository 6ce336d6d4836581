package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablediff/internal/core"
	"tablediff/internal/schemadiff"
)

func tbl(t *testing.T, cols []core.Column, rows [][]core.Value) *core.Table {
	t.Helper()
	out, err := core.NewTable(cols, rows)
	require.NoError(t, err)
	return out
}

func cols() []core.Column {
	return []core.Column{
		{Name: "id", Type: core.Integer},
		{Name: "name", Type: core.String},
		{Name: "price", Type: core.Float},
	}
}

func TestCompareIdenticalTables(t *testing.T) {
	rows := [][]core.Value{
		{int64(1), "Apple", 1.0},
		{int64(2), "Banana", 2.0},
	}
	before := tbl(t, cols(), rows)
	after := tbl(t, cols(), rows)

	d := Compare(before, after, []string{"id"}, 0.0, &schemadiff.Diff{})
	assert.True(t, d.Identical)
	assert.Empty(t, d.Modified)
	assert.Equal(t, 0, before.Height()-after.Height())
}

func TestCompareDetectsAddedDeletedModified(t *testing.T) {
	before := tbl(t, cols(), [][]core.Value{
		{int64(1), "Apple", 1.0},
		{int64(2), "Banana", 2.0},
		{int64(3), "Cherry", 3.0},
	})
	after := tbl(t, cols(), [][]core.Value{
		{int64(1), "Apple", 1.0},
		{int64(2), "Banana", 2.5},
		{int64(4), "Date", 4.0},
	})

	d := Compare(before, after, []string{"id"}, 0.0, &schemadiff.Diff{})
	require.False(t, d.Identical)
	assert.Equal(t, 1, d.Added.Height())
	assert.Equal(t, 1, d.Deleted.Height())
	require.Len(t, d.Modified, 1)
	assert.Equal(t, "price", d.Modified[0].Column)
	assert.Equal(t, "2", d.Modified[0].ValueBefore)
	assert.Equal(t, "2.5", d.Modified[0].ValueAfter)
}

func TestCompareFloatToleranceSuppressesNoiseDiffs(t *testing.T) {
	before := tbl(t, cols(), [][]core.Value{{int64(1), "Apple", 1.00001}})
	after := tbl(t, cols(), [][]core.Value{{int64(1), "Apple", 1.00002}})

	d := Compare(before, after, []string{"id"}, 0.001, &schemadiff.Diff{})
	assert.True(t, d.Identical)

	d2 := Compare(before, after, []string{"id"}, 0.0000001, &schemadiff.Diff{})
	assert.False(t, d2.Identical)
}

func TestCompareTypeChangedColumnUsesStringComparison(t *testing.T) {
	before := tbl(t, cols(), [][]core.Value{{int64(1), "Apple", 1.0}})
	after := tbl(t, cols(), [][]core.Value{{int64(1), "Apple", 1.5}})

	// Within the float tolerance of 1000, but "1" != "1.5" as strings.
	diff := &schemadiff.Diff{TypeChanges: map[string]schemadiff.TypeChange{
		"price": {Before: core.Float, After: core.String},
	}}
	d := Compare(before, after, []string{"id"}, 1000, diff)
	assert.False(t, d.Identical)
}

// TestCompareDuplicateKeyRowsReorderedAreIdentical guards against pairing
// a non-unique key's bucket by raw file order: the same two rows under
// key "regionA" appear in opposite order in before vs after, and must
// still be reported identical.
func TestCompareDuplicateKeyRowsReorderedAreIdentical(t *testing.T) {
	regionCols := []core.Column{
		{Name: "region", Type: core.String},
		{Name: "product", Type: core.String},
		{Name: "amount", Type: core.Integer},
	}
	before := tbl(t, regionCols, [][]core.Value{
		{"regionA", "foo", int64(1)},
		{"regionA", "bar", int64(2)},
	})
	after := tbl(t, regionCols, [][]core.Value{
		{"regionA", "bar", int64(2)},
		{"regionA", "foo", int64(1)},
	})

	d := Compare(before, after, []string{"region"}, 0.0, &schemadiff.Diff{})
	assert.True(t, d.Identical)
	assert.Empty(t, d.Modified)
}

func TestCompareNullEqualsNull(t *testing.T) {
	before := tbl(t, cols(), [][]core.Value{{int64(1), "Apple", nil}})
	after := tbl(t, cols(), [][]core.Value{{int64(1), "Apple", nil}})

	d := Compare(before, after, []string{"id"}, 0.0, &schemadiff.Diff{})
	assert.True(t, d.Identical)
}
