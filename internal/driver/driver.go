// Package driver fans the per-pair pipeline out across a bounded pool of
// goroutines: the embarrassingly-parallel scheduling layer the core
// orchestrator assumes sits above it.
package driver

import (
	"github.com/nozzle/throttler"

	"tablediff/internal/core"
	"tablediff/internal/discovery"
	"tablediff/internal/pipeline"
)

// PairResult is one pair's discovered paths plus its orchestrator outcome.
type PairResult struct {
	Pair    discovery.Pair
	Outcome *pipeline.Outcome
}

// RunAll compares every pair concurrently, at most concurrency pairs in
// flight at once, and returns one result per input pair in input order.
// A single pair's failure never aborts the others -- pipeline.Run already
// converts every failure mode into an Outcome, so there is nothing here to
// propagate as a driver-level error.
func RunAll(reader core.Reader, pairs []discovery.Pair, rules pipeline.Rules, cfg pipeline.Config, skipChecksum bool, concurrency int) []PairResult {
	results := make([]PairResult, len(pairs))
	th := throttler.New(concurrency, len(pairs))

	for i, pair := range pairs {
		go func(i int, pair discovery.Pair) {
			outcome := pipeline.Run(reader, pair.Before, pair.After, rules, cfg, skipChecksum)
			results[i] = PairResult{Pair: pair, Outcome: outcome}
			th.Done(nil)
		}(i, pair)
		th.Throttle()
	}

	return results
}
