// Package settings loads the process-wide Config and per-pair Rules from
// TOML files, the way the teacher toolchain loads its own TOML schema
// documents.
package settings

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"tablediff/internal/pipeline"
)

// tomlConfig maps the top-level [config] document. The three threshold
// fields are pointers so an explicit 0 in the document (e.g. "accept any
// fuzzy match") is distinguishable from the key being absent.
type tomlConfig struct {
	KeyUniquenessThreshold *float64 `toml:"key_uniqueness_threshold"`
	DatetimeParseThreshold *float64 `toml:"datetime_parse_threshold"`
	FuzzyMatchThreshold    *float64 `toml:"fuzzy_match_threshold"`
	BeforeDir              string   `toml:"before_dir"`
	AfterDir               string   `toml:"after_dir"`
	OutputDir              string   `toml:"output_dir"`
	Extension              string   `toml:"extension"`
	Concurrency            int      `toml:"concurrency"`
	TrackingDSN            string   `toml:"tracking_dsn"`
}

// Paths are the file-system locations a Config carries alongside the
// tuning knobs in pipeline.Config.
type Paths struct {
	BeforeDir string
	AfterDir  string
	OutputDir string
	Extension string
}

// Config bundles the pipeline-facing tuning knobs with the driver-facing
// paths and concurrency/tracking settings that come from the same file.
type Config struct {
	Pipeline    pipeline.Config
	Paths       Paths
	Concurrency int
	TrackingDSN string
}

// defaults mirror spec.md's documented defaults.
const (
	defaultKeyUniquenessThreshold = 0.99
	defaultDatetimeParseThreshold = 0.9
	defaultFuzzyMatchThreshold    = 0.8
	defaultExtension              = ".csv"
	defaultConcurrency            = 8
)

// LoadConfigFile opens path and parses it as a Config document.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("settings: open config %q: %w", path, err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// LoadConfig reads a Config document from r, filling in documented defaults
// for any threshold key absent from the document (an explicit 0 is kept).
func LoadConfig(r io.Reader) (*Config, error) {
	var tc tomlConfig
	if _, err := toml.NewDecoder(r).Decode(&tc); err != nil {
		return nil, fmt.Errorf("settings: decode config: %w", err)
	}

	cfg := &Config{
		Pipeline: pipeline.Config{
			KeyUniquenessThreshold: orDefault(tc.KeyUniquenessThreshold, defaultKeyUniquenessThreshold),
			DatetimeParseThreshold: orDefault(tc.DatetimeParseThreshold, defaultDatetimeParseThreshold),
			FuzzyMatchThreshold:    orDefault(tc.FuzzyMatchThreshold, defaultFuzzyMatchThreshold),
		},
		Paths: Paths{
			BeforeDir: tc.BeforeDir,
			AfterDir:  tc.AfterDir,
			OutputDir: tc.OutputDir,
			Extension: tc.Extension,
		},
		Concurrency: tc.Concurrency,
		TrackingDSN: tc.TrackingDSN,
	}
	if cfg.Paths.Extension == "" {
		cfg.Paths.Extension = defaultExtension
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg, nil
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// tomlRules maps a standalone rules document: float_tolerance and
// ignore_columns as top-level keys. Keys nested under a table header are
// not read.
type tomlRules struct {
	FloatTolerance float64  `toml:"float_tolerance"`
	IgnoreColumns  []string `toml:"ignore_columns"`
}

// LoadRulesFile opens path and parses it as a Rules document. A missing
// file is not an error: callers receive the zero-value Rules (no tolerance,
// no ignored columns), matching the "rules are optional per pair" policy.
func LoadRulesFile(path string) (pipeline.Rules, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return pipeline.Rules{}, nil
	}
	if err != nil {
		return pipeline.Rules{}, fmt.Errorf("settings: open rules %q: %w", path, err)
	}
	defer f.Close()
	return LoadRules(f)
}

// LoadRules reads a Rules document from r.
func LoadRules(r io.Reader) (pipeline.Rules, error) {
	var tr tomlRules
	if _, err := toml.NewDecoder(r).Decode(&tr); err != nil {
		return pipeline.Rules{}, fmt.Errorf("settings: decode rules: %w", err)
	}
	return pipeline.Rules{FloatTolerance: tr.FloatTolerance, IgnoreColumns: tr.IgnoreColumns}, nil
}
