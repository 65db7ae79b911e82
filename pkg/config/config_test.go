package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/vennroots/pkg/results"
	"github.com/bastiangx/vennroots/pkg/search"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfigMatchesSearchDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	if diff := cmp.Diff(search.DefaultOptions(), cfg.SearchOptions()); diff != "" {
		t.Errorf("default search options differ (-want +got):\n%s", diff)
	}
	d, err := cfg.SearchTimeout()
	require.NoError(t, err)
	assert.Zero(t, d)
	f, err := cfg.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, results.FormatJSON, f)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	want := DefaultConfig()
	want.Corpus.TopPopularWords = 500
	want.Search.Workers = 4
	want.Output.Format = "yaml"

	require.NoError(t, SaveConfig(want, path))
	got, err := LoadConfig(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config changed on round trip (-want +got):\n%s", diff)
	}
}

func TestLoadConfigKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `
[index]
min_prefix_count = 8

[search]
timeout = "30s"

[[search.stages]]
  [[search.stages.conditions]]
  roots = [1]
  min_shared = 2
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Index.MinPrefixCount)
	assert.Equal(t, 2, cfg.Index.MinRootLength)
	assert.Equal(t, 3000, cfg.Corpus.TopPopularWords)
	assert.Equal(t, "out", cfg.Output.Dir)

	d, err := cfg.SearchTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	stages := cfg.SearchOptions().Stages
	require.Len(t, stages, 1)
	assert.Equal(t, []search.GroupCondition{{Positions: []int{1}, MinShared: 2}}, stages[0].Conditions)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigCustomChainIsNotMergedWithDefaults(t *testing.T) {
	path := writeConfig(t, `
[[search.stages]]
  [[search.stages.conditions]]
  roots = [1]
  min_shared = 1

[[search.stages]]
  [[search.stages.conditions]]
  roots = [2]
  min_shared = 3
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []StageConfig{
		{Conditions: []ConditionConfig{{Roots: []int{1}, MinShared: 1}}},
		{Conditions: []ConditionConfig{{Roots: []int{2}, MinShared: 3}}},
	}, cfg.Search.Stages)
}

func TestLoadConfigRejectsConditionWithoutMinShared(t *testing.T) {
	path := writeConfig(t, `
[[search.stages]]
  [[search.stages.conditions]]
  roots = [1]

[[search.stages]]
  [[search.stages.conditions]]
  roots = [2]
`)
	cfg, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "min_shared")
	assert.Nil(t, cfg)
}

func TestLoadConfigWithoutStagesUsesDefaultChain(t *testing.T) {
	path := writeConfig(t, "[search]\nworkers = 3\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Search.Workers)
	if diff := cmp.Diff(search.DefaultStages(), cfg.SearchOptions().Stages); diff != "" {
		t.Errorf("default stages differ (-want +got):\n%s", diff)
	}
}

func TestLoadConfigRecoversSections(t *testing.T) {
	// workers has the wrong type, so the typed decode fails
	path := writeConfig(t, `
[corpus]
top_popular_words = 1200
filter = false

[search]
workers = "four"
rebuild_index = true

[output]
format = "msgpack"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1200, cfg.Corpus.TopPopularWords)
	assert.False(t, cfg.Corpus.Filter)
	assert.Equal(t, 1, cfg.Search.Workers)
	assert.True(t, cfg.Search.RebuildIndex)
	assert.Equal(t, "msgpack", cfg.Output.Format)
	assert.Len(t, cfg.Search.Stages, 3)
}

func TestLoadConfigUnparseable(t *testing.T) {
	path := writeConfig(t, "[index\nmin_root_length = ")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestInitConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeConfig(t, "[search]\nworkers = 2\n")
	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 2, cfg.Search.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero prefix length", func(c *Config) { c.Index.MaxPrefixLength = 0 }},
		{"zero root length", func(c *Config) { c.Index.MinRootLength = 0 }},
		{"negative prefix count", func(c *Config) { c.Index.MinPrefixCount = -1 }},
		{"negative top words", func(c *Config) { c.Corpus.TopPopularWords = -5 }},
		{"no workers", func(c *Config) { c.Search.Workers = 0 }},
		{"bad timeout", func(c *Config) { c.Search.Timeout = "soon" }},
		{"negative timeout", func(c *Config) { c.Search.Timeout = "-1s" }},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }},
		{"no stages", func(c *Config) { c.Search.Stages = nil }},
		{"future position", func(c *Config) {
			c.Search.Stages[0].Conditions[0].Roots = []int{2}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestValidateStageErrorIsWrapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.Stages[1].Conditions[0].MinShared = -1
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, search.ErrInvalidStage)
}
