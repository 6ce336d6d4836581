// Package main contains the cli implementation of the tool. It uses cobra
// for cli parsing.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	"tablediff/internal/core"
	"tablediff/internal/discovery"
	"tablediff/internal/driver"
	"tablediff/internal/log"
	"tablediff/internal/pipeline"
	"tablediff/internal/report"
	"tablediff/internal/settings"
	"tablediff/internal/summary"
	"tablediff/internal/tracking"
)

type compareFlags struct {
	rulesFile      string
	floatTolerance float64
	ignoreColumns  []string
	keyThreshold   float64
	fuzzyThreshold float64
	skipChecksum   bool
	outputDir      string
}

type runFlags struct {
	configFile   string
	beforeDir    string
	afterDir     string
	outputDir    string
	extension    string
	concurrency  int
	skipChecksum bool
	trackingDSN  string
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "tablediff",
		Short: "Compares pairs of columnar table files and reports the difference",
	}

	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func compareCmd() *cobra.Command {
	flags := &compareFlags{}
	cmd := &cobra.Command{
		Use:   "compare <before.csv> <after.csv>",
		Short: "Compare a single before/after pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCompare(args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVar(&flags.rulesFile, "rules", "", "Path to a TOML rules file (float_tolerance, ignore_columns)")
	cmd.Flags().Float64Var(&flags.floatTolerance, "float-tolerance", 0, "Absolute float tolerance (overrides --rules)")
	cmd.Flags().StringSliceVar(&flags.ignoreColumns, "ignore-columns", nil, "Columns to drop before comparing (overrides --rules)")
	cmd.Flags().Float64Var(&flags.keyThreshold, "key-uniqueness-threshold", 0.99, "Minimum uniqueness ratio to accept an inferred key")
	cmd.Flags().Float64Var(&flags.fuzzyThreshold, "fuzzy-match-threshold", 0.8, "Minimum similarity score to accept a fuzzy match")
	cmd.Flags().BoolVar(&flags.skipChecksum, "skip-checksum", false, "Skip the checksum fast path")
	cmd.Flags().StringVarP(&flags.outputDir, "output", "o", ".", "Directory to write the HTML report into")

	return cmd
}

func runCompare(beforePath, afterPath string, flags *compareFlags) error {
	rules := pipeline.Rules{FloatTolerance: flags.floatTolerance, IgnoreColumns: flags.ignoreColumns}
	if flags.rulesFile != "" {
		loaded, err := settings.LoadRulesFile(flags.rulesFile)
		if err != nil {
			return err
		}
		rules = loaded
		if flags.floatTolerance != 0 {
			rules.FloatTolerance = flags.floatTolerance
		}
		if len(flags.ignoreColumns) > 0 {
			rules.IgnoreColumns = flags.ignoreColumns
		}
	}

	cfg := pipeline.Config{
		KeyUniquenessThreshold: flags.keyThreshold,
		DatetimeParseThreshold: 0.9,
		FuzzyMatchThreshold:    flags.fuzzyThreshold,
	}

	reader := core.NewCSVReader()
	outcome := pipeline.Run(reader, beforePath, afterPath, rules, cfg, flags.skipChecksum)

	reportPath, err := writeOutcomeReport(outcome, beforePath, afterPath, flags.outputDir)
	if err != nil {
		return err
	}

	fmt.Printf("%s vs %s: %s\n", beforePath, afterPath, outcome.Status)
	if reportPath != "" {
		fmt.Printf("report written to %s\n", reportPath)
	}
	if outcome.Status == pipeline.StatusReadError {
		return fmt.Errorf("%s", outcome.Details)
	}
	return nil
}

func runCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover and compare every pair under two directory trees",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDirectory(flags)
		},
	}

	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to a TOML config file")
	cmd.Flags().StringVar(&flags.beforeDir, "before-dir", "", "Directory of 'before' files (overrides --config)")
	cmd.Flags().StringVar(&flags.afterDir, "after-dir", "", "Directory of 'after' files (overrides --config)")
	cmd.Flags().StringVarP(&flags.outputDir, "output", "o", "", "Directory to write HTML reports into (overrides --config)")
	cmd.Flags().StringVar(&flags.extension, "ext", "", "File extension to discover (overrides --config)")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "Max pairs compared in parallel (overrides --config)")
	cmd.Flags().BoolVar(&flags.skipChecksum, "skip-checksum", false, "Skip the checksum fast path for every pair")
	cmd.Flags().StringVar(&flags.trackingDSN, "tracking-dsn", "", "MySQL DSN for the result-log store (overrides --config)")

	return cmd
}

func runDirectory(flags *runFlags) error {
	cfg := &settings.Config{
		Pipeline: pipeline.Config{KeyUniquenessThreshold: 0.99, DatetimeParseThreshold: 0.9, FuzzyMatchThreshold: 0.8},
		Paths:    settings.Paths{Extension: ".csv"},
		Concurrency: 8,
	}
	if flags.configFile != "" {
		loaded, err := settings.LoadConfigFile(flags.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if flags.beforeDir != "" {
		cfg.Paths.BeforeDir = flags.beforeDir
	}
	if flags.afterDir != "" {
		cfg.Paths.AfterDir = flags.afterDir
	}
	if flags.outputDir != "" {
		cfg.Paths.OutputDir = flags.outputDir
	}
	if flags.extension != "" {
		cfg.Paths.Extension = flags.extension
	}
	if flags.concurrency > 0 {
		cfg.Concurrency = flags.concurrency
	}
	if flags.trackingDSN != "" {
		cfg.TrackingDSN = flags.trackingDSN
	}

	pairs, err := discovery.PairFiles(cfg.Paths.BeforeDir, cfg.Paths.AfterDir, cfg.Paths.Extension)
	if err != nil {
		return err
	}
	log.Infof("discovered %d pair(s) under %s / %s", len(pairs), cfg.Paths.BeforeDir, cfg.Paths.AfterDir)

	var tracker *tracking.Tracker
	if cfg.TrackingDSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		tracker, err = tracking.Open(ctx, cfg.TrackingDSN)
		if err != nil {
			return err
		}
		defer tracker.Close()
	}

	pairs = skipProcessed(tracker, pairs)

	reader := core.NewCSVReader()
	results := driver.RunAll(reader, pairs, pipeline.Rules{}, cfg.Pipeline, flags.skipChecksum, cfg.Concurrency)

	failures := 0
	for _, r := range results {
		reportPath, err := writeOutcomeReport(r.Outcome, r.Pair.Before, r.Pair.After, cfg.Paths.OutputDir)
		if err != nil {
			log.Errorf("rendering report for %s: %v", r.Pair.Before, err)
		}
		log.Infof("%s vs %s: %s", r.Pair.Before, r.Pair.After, r.Outcome.Status)

		if tracker != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := tracker.LogComparison(ctx, r.Pair.Before, r.Pair.After, r.Outcome.Status, reportPath, time.Now()); err != nil {
				log.Errorf("logging comparison for %s: %v", r.Pair.Before, err)
			}
			cancel()
		}
		if r.Outcome.Status == pipeline.StatusReadError {
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d pair(s) failed to read", failures, len(results))
	}
	return nil
}

// skipProcessed drops pairs the tracker already logged an identical
// verdict for, so repeat runs over a mostly-unchanged directory tree don't
// re-diff files that haven't moved.
func skipProcessed(tracker *tracking.Tracker, pairs []discovery.Pair) []discovery.Pair {
	if tracker == nil {
		return pairs
	}
	kept := pairs[:0]
	for _, p := range pairs {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		done, err := tracker.HasBeenProcessed(ctx, p.Before, p.After)
		cancel()
		if err != nil {
			log.Errorf("checking tracked status for %s: %v", p.Before, err)
			kept = append(kept, p)
			continue
		}
		if done {
			log.Infof("skipping %s vs %s: already logged as identical", p.Before, p.After)
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func writeOutcomeReport(outcome *pipeline.Outcome, beforePath, afterPath, outputDir string) (string, error) {
	if outcome.Status == pipeline.StatusReadError || outputDir == "" {
		return "", nil
	}

	var addedTable, deletedTable *core.Table
	var cells []summary.Cell
	var summarized *summary.Summary

	switch {
	case outcome.Precise != nil:
		addedTable, deletedTable = outcome.Precise.Added, outcome.Precise.Deleted
		for _, m := range outcome.Precise.Modified {
			cells = append(cells, summary.Cell(m))
		}
		summarized = summary.Build(addedTable.Height(), deletedTable.Height(), cells)
	case outcome.Fuzzy != nil:
		addedTable, deletedTable = outcome.Fuzzy.Added, outcome.Fuzzy.Deleted
		for _, m := range outcome.Fuzzy.Modified {
			cells = append(cells, summary.Cell(m))
		}
		summarized = summary.Build(addedTable.Height(), deletedTable.Height(), cells)
	}

	data := report.Data{
		FileBefore:      beforePath,
		FileAfter:       afterPath,
		Status:          string(outcome.Status),
		SchemaDiff:      outcome.SchemaDiff,
		SortKeys:        outcome.SortKeys,
		DatetimeColumns: outcome.DatetimeColumns,
		Summary:         summarized,
		Added:           addedTable,
		Deleted:         deletedTable,
		Modified:        cells,
		Generated:       time.Now(),
	}
	return report.WriteFile(outputDir, data)
}
