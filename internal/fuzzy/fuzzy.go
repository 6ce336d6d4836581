// Package fuzzy implements the weighted record-linkage fallback used when no
// table-wide key can be inferred: rows are paired by best similarity instead
// of an exact join, mirroring the precise comparator's output shape.
package fuzzy

import (
	"fmt"
	"sort"

	"github.com/xrash/smetrics"

	"tablediff/internal/core"
)

// ModifiedCell is one differing (fuzzy-paired row, column) cell.
type ModifiedCell struct {
	Key         string
	Column      string
	ValueBefore string
	ValueAfter  string
}

// Data is the fuzzy counterpart of compare.Data: rows paired by best
// similarity rather than an exact key join.
type Data struct {
	Added     *core.Table
	Deleted   *core.Table
	Modified  []ModifiedCell
	Identical bool
}

const (
	blockingMin      = 0.1
	blockingMax      = 0.95
	blockingFallback = 0.99
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// Compare pairs rows of before and after by weighted similarity. Columns are
// weighted by cardinality (1 + n_unique/height); string columns are scored
// with Jaro-Winkler similarity, everything else by equality. Each before row
// is paired with its best-scoring after row that no stronger before row
// claims (see matchGreedy); pairs scoring at or above threshold are
// "matched" (identical if score == 1, else modified).
// Unmatched before rows are deleted, unmatched after rows are added.
func Compare(before, after *core.Table, threshold float64) *Data {
	if before.Height() == 0 && after.Height() == 0 {
		return &Data{Identical: true}
	}
	if before.Height() == 0 {
		return &Data{Added: after, Identical: false}
	}
	if after.Height() == 0 {
		return &Data{Deleted: before, Identical: false}
	}

	weights := columnWeights(before)
	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}

	blockingCol := findBlockingColumn(before)
	candidates := buildCandidates(before, after, blockingCol)

	ranked := make(map[int][]scored, before.Height())
	for bi := 0; bi < before.Height(); bi++ {
		list := make([]scored, 0, len(candidates[bi]))
		for _, ai := range candidates[bi] {
			list = append(list, scored{ai, rowSimilarity(before, after, bi, ai, weights, totalWeight)})
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })
		ranked[bi] = list
	}

	assignment, scoreOf := matchGreedy(ranked, threshold, before.Height())

	var modified []ModifiedCell
	var deletedRows [][]core.Value
	usedAfter := make(map[int]struct{}, len(assignment))
	for bi := 0; bi < before.Height(); bi++ {
		ai, ok := assignment[bi]
		if !ok {
			deletedRows = append(deletedRows, before.Rows[bi])
			continue
		}
		usedAfter[ai] = struct{}{}
		if score := scoreOf[bi]; score < 1.0 {
			modified = append(modified, rowDiff(before, after, bi, ai, weights, score)...)
		}
	}
	var addedRows [][]core.Value
	for ai := 0; ai < after.Height(); ai++ {
		if _, ok := usedAfter[ai]; !ok {
			addedRows = append(addedRows, after.Rows[ai])
		}
	}

	added := &core.Table{Columns: after.Columns, Rows: addedRows}
	deleted := &core.Table{Columns: before.Columns, Rows: deletedRows}

	return &Data{
		Added:     added,
		Deleted:   deleted,
		Modified:  modified,
		Identical: len(addedRows) == 0 && len(deletedRows) == 0 && len(modified) == 0,
	}
}

// scored is one (after row, similarity score) candidate for a before row.
type scored struct {
	afterIdx int
	score    float64
}

// matchGreedy runs a deferred-acceptance assignment: each before row proposes
// to its best remaining candidate (in descending score order); an after row
// keeps the higher-scoring proposal (ties won by the lower before index) and
// releases any weaker incumbent back into the pool to try its next
// candidate. A before row that runs out of candidates scoring >= threshold
// goes unmatched. Returns the final before->after assignment and each
// assigned before row's score.
func matchGreedy(ranked map[int][]scored, threshold float64, numBefore int) (map[int]int, map[int]float64) {
	next := make([]int, numBefore)
	assignment := make(map[int]int, numBefore)
	scoreOf := make(map[int]float64, numBefore)
	assignedBy := make(map[int]int) // afterIdx -> beforeIdx

	queue := make([]int, numBefore)
	for i := range queue {
		queue[i] = i
	}

	for len(queue) > 0 {
		bi := queue[0]
		queue = queue[1:]

		candidates := ranked[bi]
		if next[bi] >= len(candidates) {
			continue
		}
		cand := candidates[next[bi]]
		next[bi]++
		if cand.score < threshold {
			continue
		}

		if holder, taken := assignedBy[cand.afterIdx]; taken {
			holderScore := scoreOf[holder]
			biWins := cand.score > holderScore || (cand.score == holderScore && bi < holder)
			if !biWins {
				queue = append(queue, bi)
				continue
			}
			delete(assignment, holder)
			delete(scoreOf, holder)
			queue = append(queue, holder)
		}
		assignedBy[cand.afterIdx] = bi
		assignment[bi] = cand.afterIdx
		scoreOf[bi] = cand.score
	}

	return assignment, scoreOf
}

func columnWeights(t *core.Table) map[string]float64 {
	weights := make(map[string]float64, len(t.Columns))
	height := t.Height()
	if height == 0 {
		return weights
	}
	for i, col := range t.Columns {
		weights[col.Name] = 1.0 + float64(t.NUnique(i))/float64(height)
	}
	return weights
}

// findBlockingColumn picks a string column whose uniqueness ratio falls in
// (blockingMin, blockingMax) -- selective enough to narrow candidates but
// not so unique it amounts to a key. Falls back to the highest-cardinality
// string column under blockingFallback, or none.
func findBlockingColumn(t *core.Table) string {
	height := t.Height()
	if height == 0 {
		return ""
	}
	type cand struct {
		name  string
		ratio float64
	}
	var all []cand
	for i, col := range t.Columns {
		if col.Type != core.String {
			continue
		}
		all = append(all, cand{col.Name, float64(t.NUnique(i)) / float64(height)})
	}
	var best cand
	found := false
	for _, c := range all {
		if c.ratio > blockingMin && c.ratio < blockingMax {
			if !found || c.ratio > best.ratio {
				best, found = c, true
			}
		}
	}
	if found {
		return best.name
	}
	for _, c := range all {
		if c.ratio < blockingFallback {
			if !found || c.ratio > best.ratio {
				best, found = c, true
			}
		}
	}
	if found {
		return best.name
	}
	return ""
}

// buildCandidates maps each before row index to the after row indices it
// should be scored against: rows sharing the blocking column's value, or
// every after row if no blocking column was found.
func buildCandidates(before, after *core.Table, blockingCol string) map[int][]int {
	out := make(map[int][]int, before.Height())
	if blockingCol == "" {
		all := make([]int, after.Height())
		for i := range all {
			all[i] = i
		}
		for bi := 0; bi < before.Height(); bi++ {
			out[bi] = all
		}
		return out
	}

	bIdx := before.IndexOf(blockingCol)
	aIdx := after.IndexOf(blockingCol)
	byValue := make(map[string][]int)
	for ai, row := range after.Rows {
		key := core.Stringify(row[aIdx])
		byValue[key] = append(byValue[key], ai)
	}
	for bi, row := range before.Rows {
		key := core.Stringify(row[bIdx])
		out[bi] = byValue[key]
	}
	return out
}

func rowSimilarity(before, after *core.Table, bi, ai int, weights map[string]float64, totalWeight float64) float64 {
	if totalWeight == 0 {
		return 1.0
	}
	var sum float64
	for ci, col := range before.Columns {
		aiCol := after.IndexOf(col.Name)
		if aiCol < 0 {
			continue
		}
		weight := weights[col.Name]
		bv, av := before.Rows[bi][ci], after.Rows[ai][aiCol]

		var score float64
		switch {
		case core.IsNull(bv) && core.IsNull(av):
			score = 1.0
		case core.IsNull(bv) || core.IsNull(av):
			score = 0.0
		case col.Type == core.String:
			score = smetrics.JaroWinkler(core.Stringify(bv), core.Stringify(av), jwBoostThreshold, jwPrefixSize)
		default:
			if core.EqualStrict(bv, av) {
				score = 1.0
			}
		}
		sum += score * weight
	}
	return sum / totalWeight
}

func rowDiff(before, after *core.Table, bi, ai int, weights map[string]float64, score float64) []ModifiedCell {
	key := fmt.Sprintf("Fuzzy Match (Score: %.3f)", score)
	var out []ModifiedCell
	for ci, col := range before.Columns {
		if _, weighted := weights[col.Name]; !weighted {
			continue
		}
		aiCol := after.IndexOf(col.Name)
		if aiCol < 0 {
			continue
		}
		bv, av := before.Rows[bi][ci], after.Rows[ai][aiCol]
		if core.IsNull(bv) && core.IsNull(av) {
			continue
		}
		if core.EqualStrict(bv, av) {
			continue
		}
		out = append(out, ModifiedCell{
			Key:         key,
			Column:      col.Name,
			ValueBefore: core.Stringify(bv),
			ValueAfter:  core.Stringify(av),
		})
	}
	return out
}
