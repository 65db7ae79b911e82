package corpus

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/vennroots/internal/utils"
	"github.com/charmbracelet/log"
)

// DefaultChunkSize is the number of words per chunk file.
const DefaultChunkSize = 10000

// ChunkFileName returns the file name of the chunk with the given 1-based id.
func ChunkFileName(id int) string {
	return fmt.Sprintf("dict_%04d.bin", id)
}

// WriteChunks writes words, most popular first, as dict_NNNN.bin chunk files
// into dir and returns the written paths. Ranks follow list position.
func WriteChunks(dir string, words []string, chunkSize int) ([]string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if utils.FileExists(dir) && !utils.IsDir(dir) {
		return nil, fmt.Errorf("chunk dir %s is a file", dir)
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("creating chunk dir %s: %w", dir, err)
	}

	ranks := utils.CreateRankList(len(words))
	var paths []string
	for start := 0; start < len(words); start += chunkSize {
		end := min(start+chunkSize, len(words))
		path := filepath.Join(dir, ChunkFileName(len(paths)+1))
		if err := writeChunk(path, words[start:end], ranks[start:end]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	log.Debugf("Wrote %d words into %d chunks in %s", len(words), len(paths), dir)
	return paths, nil
}

func writeChunk(path string, words []string, ranks []uint16) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chunk file %s: %w", path, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := binary.Write(writer, binary.LittleEndian, int32(len(words))); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, word := range words {
		if len(word) > 0xFFFF {
			return fmt.Errorf("word %.20q... too long for a chunk entry", word)
		}
		if err := binary.Write(writer, binary.LittleEndian, uint16(len(word))); err != nil {
			return fmt.Errorf("writing word length: %w", err)
		}
		if _, err := writer.WriteString(word); err != nil {
			return fmt.Errorf("writing word %s: %w", word, err)
		}
		if err := binary.Write(writer, binary.LittleEndian, ranks[i]); err != nil {
			return fmt.Errorf("writing rank for word %s: %w", word, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return file.Close()
}
