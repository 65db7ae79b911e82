// Copyright 2025 The vennroots Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the vennroots search CLI and its [DBG] explorer.

Note: This is a BETA release. APIs and functionality may rapidly change.

vennroots looks for four word roots that overlap like a Venn diagram: every
root is a word ending, and the roots of a combination share enough of the
prefixes that turn them into real words. A combination is the answer grid of a
word puzzle where players guess the hidden roots from the shared prefixes.

Words are split into a prefix of 1 to 3 letters and the remaining root. Roots
with fewer than six prefixes are dropped, and the rest are ranked by how many
prefixes they have. The search then picks root 1, root 2, root 3 and root 4 in
order, keeping a candidate only when it shares enough not yet claimed prefixes
with the roots picked before it.

# Usage

Search the default corpus and write results into out/:

	vennroots

Use a custom corpus, limit it to the 5000 most popular words and enable debug mode:

	vennroots -data /path/to/words.txt -words 5000 -d

Run the explorer to inspect roots and prefixes interactively:

	vennroots -c

The corpus is either a directory of chunked binary files named dict_0001.bin,
dict_0002.bin, etc., a single chunk file, or a plain text word list ordered by
popularity. A text list can be converted into chunks with -export.

# Configuration

Thresholds and search stages live in a TOML file that is created with
defaults at ~/.config/vennroots/config.toml if it doesn't exist:

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
	timeout = "0s"

	[output]
	dir = "out"
	format = "json"

Flags override the file for a single run.

# Search

The search is staged: each stage lists conditions over the roots already
picked, and a condition asks for a minimum number of shared prefixes.

	searcher, err := search.New(cfg.SearchOptions())
	res, err := searcher.SearchIndex(ctx, ix)

With -workers above 1 the candidates for root 1 are searched in parallel.
The results keep the same order as a sequential run.

# Output

Two files are written into the output dir:

	index.json          ranked roots with their prefix counts
	combinations.json   every combination with per-root condition outcomes

msgpack and yaml are available through -format.

# Command Line Flags

	-config string
	    Path to a config file
	-data string
	    Corpus path (default from config)
	-words int
	    Number of most popular words to use (0 for all)
	-out string
	    Output directory
	-format string
	    Output format: json, msgpack or yaml
	-workers int
	    Parallel root 1 branches
	-rebuild
	    Rebuild the root index on every evaluation
	-timeout duration
	    Stop the search after this long
	-export string
	    Write the loaded corpus as chunk files into this dir
	-d  Enable debug mode with detailed logging
	-c  Run the explorer instead of searching
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bastiangx/vennroots/internal/cli"
	"github.com/bastiangx/vennroots/internal/logger"
	"github.com/bastiangx/vennroots/internal/utils"
	"github.com/bastiangx/vennroots/pkg/config"
	"github.com/bastiangx/vennroots/pkg/corpus"
	"github.com/bastiangx/vennroots/pkg/results"
	"github.com/bastiangx/vennroots/pkg/rootindex"
	"github.com/bastiangx/vennroots/pkg/search"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	Version = "0.1.0-beta"
	AppName = "vennroots"
	gh      = "https://github.com/bastiangx/vennroots"
)

// main wires config, corpus, index and search together and only manages
// the flow.
func main() {
	configPath := flag.String("config", "", "Path to a config file")
	showVersion := flag.Bool("version", false, "Show current version")
	dataPath := flag.String("data", "", "Corpus path: chunk dir, .bin or .txt (default from config)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run the explorer -- useful for testing and debugging")
	wordLimit := flag.Int("words", -1, "Number of most popular words to use (0 for all, default from config)")
	outDir := flag.String("out", "", "Output directory (default from config)")
	format := flag.String("format", "", "Output format: json, msgpack or yaml (default from config)")
	workers := flag.Int("workers", 0, "Parallel root 1 branches (default from config)")
	rebuild := flag.Bool("rebuild", false, "Rebuild the root index on every evaluation")
	timeout := flag.Duration("timeout", 0, "Stop the search after this long (default from config)")
	exportDir := flag.String("export", "", "Write the loaded corpus as chunk files into this dir")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	cfg, usedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if usedPath == "" {
		log.Debug("Using built-in config defaults")
	} else {
		log.Debugf("Using config file: (%s)", usedPath)
	}

	applyFlags(cfg, *dataPath, *wordLimit, *outDir, *format, *workers, *rebuild, *timeout)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	corpusPath := pathResolver.GetCorpusPath(cfg.Corpus.Path)
	log.Debugf("Using corpus at: %s", corpusPath)

	words, err := corpus.Load(corpus.Options{
		Path:       corpusPath,
		TopPopular: cfg.Corpus.TopPopularWords,
		Filter:     cfg.Corpus.Filter,
	})
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	if len(words) == 0 {
		log.Warn("Corpus is empty, nothing to search")
	}

	if *exportDir != "" {
		paths, err := corpus.WriteChunks(*exportDir, words, corpus.DefaultChunkSize)
		if err != nil {
			log.Fatalf("Failed to export chunks: %v", err)
		}
		log.Printf("Exported %s words into %d chunk files in %s",
			utils.FormatWithCommas(len(words)), len(paths), *exportDir)
	}

	ix := rootindex.Build(words, cfg.IndexOptions())
	log.Debugf("Indexed %d roots from %d words", ix.Len(), len(words))

	// The explorer is mainly for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(ix, corpus.NewLexicon(words), os.Stdin, os.Stdout, 20)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	if err := run(cfg, words, ix); err != nil {
		log.Fatal(err)
	}
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(cfg *config.Config, dataPath string, wordLimit int, outDir, format string, workers int, rebuild bool, timeout time.Duration) {
	if dataPath != "" {
		cfg.Corpus.Path = dataPath
	}
	if wordLimit >= 0 {
		cfg.Corpus.TopPopularWords = wordLimit
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if workers > 0 {
		cfg.Search.Workers = workers
	}
	if rebuild {
		cfg.Search.RebuildIndex = true
	}
	if timeout > 0 {
		cfg.Search.Timeout = timeout.String()
	}
}

// run searches the index and writes the artifacts.
func run(cfg *config.Config, words []string, ix *rootindex.Index) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout, err := cfg.SearchTimeout()
	if err != nil {
		return err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	searcher, err := search.New(cfg.SearchOptions())
	if err != nil {
		return fmt.Errorf("invalid search stages: %w", err)
	}

	var res *search.Result
	if cfg.Search.RebuildIndex {
		res, err = searcher.Search(ctx, words)
	} else {
		res, err = searcher.SearchIndex(ctx, ix)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("no result within %s: %w", timeout, err)
	}
	if err != nil {
		return err
	}

	outFormat, err := cfg.OutputFormat()
	if err != nil {
		return err
	}
	writer := results.NewWriter(cfg.Output.Dir, outFormat, cfg.Output.CompactIndex)
	if cfg.Output.WriteIndex {
		if _, err := writer.WriteIndex(res.Index); err != nil {
			return fmt.Errorf("failed to write index: %w", err)
		}
	}
	report := results.NewReport(uuid.NewString(), len(words), res)
	reportPath, err := writer.WriteReport(report)
	if err != nil {
		return fmt.Errorf("failed to write combinations: %w", err)
	}

	showSummary(report, res.Stats, reportPath)
	return nil
}

// showSummary displays the outcome of a run.
func showSummary(report *results.Report, stats search.Stats, reportPath string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	println("===========")
	println(" vennroots ")
	println("===========")
	log.Infof("run: %s", report.RunID)
	log.Infof("corpus words: %s", utils.FormatWithCommas(report.CorpusWords))
	log.Infof("indexed roots: %s", utils.FormatWithCommas(report.IndexedRoots))
	log.Infof("combinations: %s", utils.FormatWithCommas(report.Count))
	log.Infof("evaluations: %s (pruned per stage %v)", utils.FormatWithCommas(stats.Evaluations), stats.Pruned)
	log.Infof("took: %v", stats.Elapsed)
	log.Infof("written: ( %s )", reportPath)
	println("===========")
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ vennroots ] Finds overlapping word roots for Venn puzzles")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}
