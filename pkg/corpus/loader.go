/*
Package corpus loads the ranked word list the root index is built from.

A corpus path is one of:

	a directory of chunk files  dict_0001.bin, dict_0002.bin, ...
	a single chunk file         *.bin
	a text list                 *.txt, one word per line
	a directory of text lists   read in file name order

Chunk files are little-endian: an int32 entry count, then per entry a uint16
byte length, the word bytes and a uint16 rank (1 is the most popular word).

Text lists are ordered most popular first. A line may carry a second,
integer field with the word frequency; when every line has one, words are
re-ranked by descending frequency. Blank lines and lines starting with '#'
are skipped.
*/
package corpus

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bastiangx/vennroots/internal/utils"
	"github.com/charmbracelet/log"
)

var (
	// ErrCorpusNotFound means the path holds no readable corpus.
	ErrCorpusNotFound = errors.New("corpus not found")
	// ErrUnknownFormat means a file is neither a chunk nor a text list.
	ErrUnknownFormat = errors.New("unknown corpus format")
)

// Options selects and trims the corpus.
type Options struct {
	Path       string
	TopPopular int  // 0 keeps every word
	Filter     bool // lowercase, keep alphabetic words, drop duplicates
}

// rankedWord is a word with its popularity rank, lower is more popular.
type rankedWord struct {
	word string
	rank int
}

// Load reads the corpus at opts.Path and returns its words most popular first.
func Load(opts Options) ([]string, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrCorpusNotFound)
	}
	stat, err := os.Stat(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorpusNotFound, err)
	}

	var ranked []rankedWord
	if stat.IsDir() {
		ranked, err = readDir(opts.Path)
	} else {
		ranked, err = readFile(opts.Path)
	}
	if err != nil {
		return nil, err
	}

	// stable keeps file order among equal ranks
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].rank < ranked[j].rank
	})

	words := make([]string, 0, len(ranked))
	var filter *utils.WordFilter
	if opts.Filter {
		filter = utils.NewWordFilter()
	}
	for _, rw := range ranked {
		word := rw.word
		if filter != nil {
			word = utils.NormalizeWord(word)
			if !utils.IsAlphaWord(word) || !filter.ShouldInclude(word) {
				continue
			}
		}
		words = append(words, word)
		if opts.TopPopular > 0 && len(words) == opts.TopPopular {
			break
		}
	}

	if filter != nil {
		log.Debugf("Filter kept %d distinct words", filter.Seen())
	}
	log.Debugf("Loaded %d of %d corpus words from %s", len(words), len(ranked), opts.Path)
	return words, nil
}

func readDir(dir string) ([]rankedWord, error) {
	chunks, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(chunks) > 0 {
		sort.Strings(chunks)
		var all []rankedWord
		for _, chunk := range chunks {
			words, err := readChunkFile(chunk)
			if err != nil {
				return nil, err
			}
			all = append(all, words...)
		}
		log.Debugf("Read %d chunk files from %s", len(chunks), dir)
		return all, nil
	}

	lists, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(lists) == 0 {
		return nil, fmt.Errorf("%w: no dict_*.bin or *.txt files in %s", ErrCorpusNotFound, dir)
	}
	sort.Strings(lists)
	var all []rankedWord
	for _, list := range lists {
		words, err := readTextFile(list)
		if err != nil {
			return nil, err
		}
		// later files rank after earlier ones
		offset := len(all)
		for i := range words {
			words[i].rank += offset
		}
		all = append(all, words...)
	}
	return all, nil
}

func readFile(path string) ([]rankedWord, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatChunk:
		return readChunkFile(path)
	case FormatText:
		return readTextFile(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

func readChunkFile(path string) ([]rankedWord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk file %s: %w", path, err)
	}
	defer file.Close()
	words, err := readChunk(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("reading chunk %s: %w", path, err)
	}
	return words, nil
}

// readChunk decodes one chunk.
func readChunk(r io.Reader) ([]rankedWord, error) {
	var totalEntries int32
	if err := binary.Read(r, binary.LittleEndian, &totalEntries); err != nil {
		return nil, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if totalEntries < 0 || totalEntries > maxChunkWords {
		return nil, fmt.Errorf("invalid chunk word count %d", totalEntries)
	}

	words := make([]rankedWord, 0, totalEntries)
	for len(words) < int(totalEntries) {
		var wordLen uint16
		if err := binary.Read(r, binary.LittleEndian, &wordLen); err != nil {
			if err == io.EOF {
				log.Warnf("Chunk ended after %d of %d words", len(words), totalEntries)
				break
			}
			return nil, fmt.Errorf("failed to read word length: %w", err)
		}
		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(r, wordBytes); err != nil {
			return nil, fmt.Errorf("failed to read word: %w", err)
		}
		var rank uint16
		if err := binary.Read(r, binary.LittleEndian, &rank); err != nil {
			return nil, fmt.Errorf("failed to read rank: %w", err)
		}
		words = append(words, rankedWord{word: string(wordBytes), rank: int(rank)})
	}
	return words, nil
}

func readTextFile(path string) ([]rankedWord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list %s: %w", path, err)
	}
	defer file.Close()

	var (
		words     []rankedWord
		freqs     []int
		allCounts = true
	)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		words = append(words, rankedWord{word: fields[0], rank: len(words) + 1})

		freq := 0
		if len(fields) > 1 && utils.IsOnlyNumbers(fields[1]) {
			freq, err = strconv.Atoi(fields[1])
			if err != nil {
				allCounts = false
			}
		} else {
			allCounts = false
		}
		freqs = append(freqs, freq)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading word list %s: %w", path, err)
	}

	if allCounts && len(words) > 0 {
		order := make([]int, len(words))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return freqs[order[a]] > freqs[order[b]]
		})
		for rank, i := range order {
			words[i].rank = rank + 1
		}
		log.Debugf("Ranked %s by frequency column", path)
	}
	return words, nil
}
