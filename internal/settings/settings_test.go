package settings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
before_dir = "./before"
after_dir = "./after"
`))
	require.NoError(t, err)
	assert.Equal(t, defaultKeyUniquenessThreshold, cfg.Pipeline.KeyUniquenessThreshold)
	assert.Equal(t, defaultDatetimeParseThreshold, cfg.Pipeline.DatetimeParseThreshold)
	assert.Equal(t, defaultFuzzyMatchThreshold, cfg.Pipeline.FuzzyMatchThreshold)
	assert.Equal(t, defaultExtension, cfg.Paths.Extension)
	assert.Equal(t, defaultConcurrency, cfg.Concurrency)
	assert.Equal(t, "./before", cfg.Paths.BeforeDir)
}

func TestLoadConfigHonorsExplicitValues(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
key_uniqueness_threshold = 0.95
fuzzy_match_threshold = 0.7
extension = ".parquet"
concurrency = 4
`))
	require.NoError(t, err)
	assert.Equal(t, 0.95, cfg.Pipeline.KeyUniquenessThreshold)
	assert.Equal(t, 0.7, cfg.Pipeline.FuzzyMatchThreshold)
	assert.Equal(t, ".parquet", cfg.Paths.Extension)
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestLoadConfigHonorsExplicitZero(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
fuzzy_match_threshold = 0.0
key_uniqueness_threshold = 0.0
`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Pipeline.FuzzyMatchThreshold)
	assert.Equal(t, 0.0, cfg.Pipeline.KeyUniquenessThreshold)
	assert.Equal(t, defaultDatetimeParseThreshold, cfg.Pipeline.DatetimeParseThreshold)
}

func TestLoadRulesFileMissingIsZeroValue(t *testing.T) {
	rules, err := LoadRulesFile("/nonexistent/rules.toml")
	require.NoError(t, err)
	assert.Equal(t, 0.0, rules.FloatTolerance)
	assert.Empty(t, rules.IgnoreColumns)
}

func TestLoadRulesParsesIgnoreColumns(t *testing.T) {
	rules, err := LoadRules(strings.NewReader(`
float_tolerance = 1e-6
ignore_columns = ["updated_at", "etl_batch_id"]
`))
	require.NoError(t, err)
	assert.Equal(t, 1e-6, rules.FloatTolerance)
	assert.Equal(t, []string{"updated_at", "etl_batch_id"}, rules.IgnoreColumns)
}
