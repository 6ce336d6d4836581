// Package discovery pairs files between a "before" and "after" directory
// tree so the driver can schedule one orchestrator run per pair.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Pair is one discovered (before, after) file pair.
type Pair struct {
	Before string
	After  string
}

// PairFiles walks beforeDir for files matching ext (e.g. ".csv", ".parquet")
// and yields a Pair for every one that has a same-relative-path counterpart
// under afterDir. Files present only under afterDir are not reported and
// never compared, matching the original implementation's before-anchored
// walk.
func PairFiles(beforeDir, afterDir, ext string) ([]Pair, error) {
	beforeInfo, err := os.Stat(beforeDir)
	if err != nil || !beforeInfo.IsDir() {
		return nil, fmt.Errorf("before directory does not exist: %s", beforeDir)
	}
	afterInfo, err := os.Stat(afterDir)
	if err != nil || !afterInfo.IsDir() {
		return nil, fmt.Errorf("after directory does not exist: %s", afterDir)
	}

	var pairs []Pair
	err = filepath.WalkDir(beforeDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ext {
			return nil
		}
		rel, err := filepath.Rel(beforeDir, path)
		if err != nil {
			return err
		}
		after := filepath.Join(afterDir, rel)
		if _, err := os.Stat(after); err == nil {
			pairs = append(pairs, Pair{Before: path, After: after})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", beforeDir, err)
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Before < pairs[j].Before })
	return pairs, nil
}
