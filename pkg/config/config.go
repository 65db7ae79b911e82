/*
Package config manages the TOML config for vennroots.

Every threshold of the root index and of the search stages lives here so a
run can be tuned without code changes:

	[corpus]
	path = "data/"
	top_popular_words = 3000
	filter = true

	[index]
	min_root_length = 2
	max_prefix_length = 3
	min_prefix_count = 6

	[search]
	workers = 1
	rebuild_index = false
	timeout = "0s"

	[[search.stages]]
	  [[search.stages.conditions]]
	  roots = [1]
	  min_shared = 4

	[output]
	dir = "out"
	format = "json"
	compact_index = true
	write_index = true

Stage i picks root i+2; a condition's roots are positions of roots already picked.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/vennroots/internal/utils"
	"github.com/bastiangx/vennroots/pkg/results"
	"github.com/bastiangx/vennroots/pkg/rootindex"
	"github.com/bastiangx/vennroots/pkg/search"
	"github.com/charmbracelet/log"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the entire config structure
type Config struct {
	Corpus CorpusConfig `toml:"corpus"`
	Index  IndexConfig  `toml:"index"`
	Search SearchConfig `toml:"search"`
	Output OutputConfig `toml:"output"`
}

// CorpusConfig selects and trims the word list.
type CorpusConfig struct {
	Path            string `toml:"path"`
	TopPopularWords int    `toml:"top_popular_words"`
	Filter          bool   `toml:"filter"`
}

// IndexConfig holds the root index thresholds.
type IndexConfig struct {
	MinRootLength   int `toml:"min_root_length"`
	MaxPrefixLength int `toml:"max_prefix_length"`
	MinPrefixCount  int `toml:"min_prefix_count"`
}

// SearchConfig holds search options and the stage chain.
type SearchConfig struct {
	Workers      int           `toml:"workers"`
	RebuildIndex bool          `toml:"rebuild_index"`
	Timeout      string        `toml:"timeout"`
	Stages       []StageConfig `toml:"stages"`
}

// StageConfig is the condition chain for one position.
type StageConfig struct {
	Conditions []ConditionConfig `toml:"conditions"`
}

// ConditionConfig asks for MinShared prefixes shared with the roots at the
// given positions.
type ConditionConfig struct {
	Roots     []int `toml:"roots"`
	MinShared int   `toml:"min_shared"`
}

// OutputConfig controls the result sink.
type OutputConfig struct {
	Dir          string `toml:"dir"`
	Format       string `toml:"format"`
	CompactIndex bool   `toml:"compact_index"`
	WriteIndex   bool   `toml:"write_index"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	idx := rootindex.DefaultOptions()
	return &Config{
		Corpus: CorpusConfig{
			Path:            "data/",
			TopPopularWords: 3000,
			Filter:          true,
		},
		Index: IndexConfig{
			MinRootLength:   idx.MinRootLength,
			MaxPrefixLength: idx.MaxPrefixLength,
			MinPrefixCount:  idx.MinPrefixCount,
		},
		Search: SearchConfig{
			Workers:      1,
			RebuildIndex: false,
			Timeout:      "0s",
			Stages:       stageConfigs(search.DefaultStages()),
		},
		Output: OutputConfig{
			Dir:          "out",
			Format:       string(results.FormatJSON),
			CompactIndex: true,
			WriteIndex:   true,
		},
	}
}

func stageConfigs(stages []search.Stage) []StageConfig {
	out := make([]StageConfig, len(stages))
	for i, st := range stages {
		conds := make([]ConditionConfig, len(st.Conditions))
		for j, c := range st.Conditions {
			conds[j] = ConditionConfig{Roots: append([]int(nil), c.Positions...), MinShared: c.MinShared}
		}
		out[i] = StageConfig{Conditions: conds}
	}
	return out
}

// IndexOptions converts the index section.
func (c *Config) IndexOptions() rootindex.Options {
	return rootindex.Options{
		MinRootLength:   c.Index.MinRootLength,
		MaxPrefixLength: c.Index.MaxPrefixLength,
		MinPrefixCount:  c.Index.MinPrefixCount,
	}
}

// SearchOptions converts the index and search sections.
func (c *Config) SearchOptions() search.Options {
	stages := make([]search.Stage, len(c.Search.Stages))
	for i, st := range c.Search.Stages {
		conds := make([]search.GroupCondition, len(st.Conditions))
		for j, cc := range st.Conditions {
			conds[j] = search.GroupCondition{Positions: append([]int(nil), cc.Roots...), MinShared: cc.MinShared}
		}
		stages[i] = search.Stage{Conditions: conds}
	}
	return search.Options{
		Index:        c.IndexOptions(),
		Stages:       stages,
		Workers:      c.Search.Workers,
		RebuildIndex: c.Search.RebuildIndex,
	}
}

// SearchTimeout parses the search timeout. Zero means no deadline.
func (c *Config) SearchTimeout() (time.Duration, error) {
	if c.Search.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Search.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: search.timeout %q: %v", ErrInvalidConfig, c.Search.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: search.timeout %q is negative", ErrInvalidConfig, c.Search.Timeout)
	}
	return d, nil
}

// OutputFormat parses the output format.
func (c *Config) OutputFormat() (results.Format, error) {
	f, err := results.ParseFormat(c.Output.Format)
	if err != nil {
		return "", fmt.Errorf("%w: output.format: %w", ErrInvalidConfig, err)
	}
	return f, nil
}

// Validate rejects values the index or search cannot run with.
func (c *Config) Validate() error {
	if c.Corpus.TopPopularWords < 0 {
		return fmt.Errorf("%w: corpus.top_popular_words must be >= 0, got %d", ErrInvalidConfig, c.Corpus.TopPopularWords)
	}
	if c.Index.MaxPrefixLength < 1 {
		return fmt.Errorf("%w: index.max_prefix_length must be >= 1, got %d", ErrInvalidConfig, c.Index.MaxPrefixLength)
	}
	if c.Index.MinRootLength < 1 {
		return fmt.Errorf("%w: index.min_root_length must be >= 1, got %d", ErrInvalidConfig, c.Index.MinRootLength)
	}
	if c.Index.MinPrefixCount < 0 {
		return fmt.Errorf("%w: index.min_prefix_count must be >= 0, got %d", ErrInvalidConfig, c.Index.MinPrefixCount)
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("%w: search.workers must be >= 1, got %d", ErrInvalidConfig, c.Search.Workers)
	}
	if err := search.ValidateStages(c.SearchOptions().Stages); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.SearchTimeout(); err != nil {
		return err
	}
	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	return nil
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/vennroots, created when missing
// 2. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", utils.AppDirName)
	if err := utils.EnsureDir(primaryPath); err != nil {
		log.Warnf("Cannot create config directory %s: %v", primaryPath, err)
	} else {
		return primaryPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: ~/.config/vennroots/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Scalar keys missing from the file keep
// their defaults. Stages are all or nothing: a file without [[search.stages]]
// gets the default chain, and a file with stages must spell out every
// condition. A file that does not decode is recovered section by section.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	// decoding into the default chain would merge user conditions into it
	config.Search.Stages = nil

	md, err := utils.LoadTOMLFile(configPath, config)
	if err != nil {
		return tryPartialParse(configPath)
	}
	if !md.IsDefined("search", "stages") {
		config.Search.Stages = stageConfigs(search.DefaultStages())
		return config, nil
	}
	if err := checkStageKeys(configPath); err != nil {
		return nil, err
	}
	return config, nil
}

// checkStageKeys rejects stage conditions that leave out roots or min_shared.
func checkStageKeys(configPath string) error {
	data, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		return err
	}
	section, _ := utils.ExtractSection(data, "search")
	stages, _ := utils.ExtractTables(section, "stages")
	for i, stage := range stages {
		conds, _ := utils.ExtractTables(stage, "conditions")
		for j, cond := range conds {
			for _, key := range []string{"roots", "min_shared"} {
				if _, ok := cond[key]; !ok {
					return fmt.Errorf("%w: %s: search.stages[%d].conditions[%d] has no %s",
						ErrInvalidConfig, configPath, i, j, key)
				}
			}
		}
	}
	return nil
}

// tryPartialParse keeps every well-typed key it can find and falls back to
// defaults for the rest. Stages are only taken from a file that decodes fully.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "corpus"); ok {
		extractCorpusConfig(section, &config.Corpus)
	}
	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(tempConfig, "search"); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := utils.ExtractSection(tempConfig, "output"); ok {
		extractOutputConfig(section, &config.Output)
	}
	return config, nil
}

func extractCorpusConfig(data map[string]any, corpus *CorpusConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		corpus.Path = val
	}
	if val, ok := utils.ExtractInt64(data, "top_popular_words"); ok {
		corpus.TopPopularWords = val
	}
	if val, ok := utils.ExtractBool(data, "filter"); ok {
		corpus.Filter = val
	}
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractInt64(data, "min_root_length"); ok {
		index.MinRootLength = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix_length"); ok {
		index.MaxPrefixLength = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix_count"); ok {
		index.MinPrefixCount = val
	}
}

func extractSearchConfig(data map[string]any, s *SearchConfig) {
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		s.Workers = val
	}
	if val, ok := utils.ExtractBool(data, "rebuild_index"); ok {
		s.RebuildIndex = val
	}
	if val, ok := utils.ExtractString(data, "timeout"); ok {
		s.Timeout = val
	}
	if _, ok := data["stages"]; ok {
		log.Warn("Ignoring search.stages from a config that failed to decode; using default stages")
	}
}

func extractOutputConfig(data map[string]any, out *OutputConfig) {
	if val, ok := utils.ExtractString(data, "dir"); ok {
		out.Dir = val
	}
	if val, ok := utils.ExtractString(data, "format"); ok {
		out.Format = val
	}
	if val, ok := utils.ExtractBool(data, "compact_index"); ok {
		out.CompactIndex = val
	}
	if val, ok := utils.ExtractBool(data, "write_index"); ok {
		out.WriteIndex = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
