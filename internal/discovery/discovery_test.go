package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestPairFilesMatchesOnRelativePath(t *testing.T) {
	root := t.TempDir()
	before := filepath.Join(root, "before")
	after := filepath.Join(root, "after")

	writeFile(t, filepath.Join(before, "a.csv"))
	writeFile(t, filepath.Join(before, "sub", "b.csv"))
	writeFile(t, filepath.Join(before, "only_before.csv"))
	writeFile(t, filepath.Join(after, "a.csv"))
	writeFile(t, filepath.Join(after, "sub", "b.csv"))
	writeFile(t, filepath.Join(after, "only_after.csv"))
	writeFile(t, filepath.Join(before, "ignored.parquet"))

	pairs, err := PairFiles(before, after, ".csv")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, filepath.Join(before, "a.csv"), pairs[0].Before)
	assert.Equal(t, filepath.Join(after, "a.csv"), pairs[0].After)
	assert.Equal(t, filepath.Join(before, "sub", "b.csv"), pairs[1].Before)
}

func TestPairFilesMissingDirectory(t *testing.T) {
	root := t.TempDir()
	_, err := PairFiles(filepath.Join(root, "nope"), root, ".csv")
	assert.Error(t, err)
}
