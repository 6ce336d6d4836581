// Package checksum computes an order-independent content hash for a table
// given an inferred sort key: the fast path that lets the pipeline decide
// equality without building a full diff.
package checksum

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"tablediff/internal/core"
)

// seed is written once at the start of the digest, ahead of the first row,
// so the digest is stable across runs but differs from a plain xxhash of the
// same row bytes.
const seed uint64 = 0x5a5a5a5a5a5a5a5a

// Checksum returns a stable digest string for t, or ok=false if any key
// column is absent from the schema or keys is empty. Equal content under any
// row order produces the same digest: rows are sorted by keys (with a fixed
// tie-break by remaining columns) before hashing, then the sorted row
// sequence is fed into a single streaming hash, one row after another. The
// sort is what makes the digest order-independent -- the hash itself stays a
// plain sequential digest of the canonical row sequence, so it agrees with
// the precise comparator (duplicate and missing rows change what gets fed
// into the digest, unlike a combiner that could cancel them out).
func Checksum(t *core.Table, keys []string) (digest string, ok bool) {
	if len(keys) == 0 {
		return "", false
	}
	for _, k := range keys {
		if t.IndexOf(k) < 0 {
			return "", false
		}
	}

	sorted := t.SortedBy(keys)

	h := xxhash.New()
	_ = binary.Write(h, binary.LittleEndian, seed)
	for _, row := range sorted.Rows {
		h.Write([]byte{1}) // row separator so an extra/missing row always shifts the digest
		for _, v := range row {
			h.Write([]byte{0}) // field separator so ("ab","c") != ("a","bc")
			h.WriteString(core.Stringify(v))
		}
	}
	return fmt.Sprintf("%016x", h.Sum64()), true
}
