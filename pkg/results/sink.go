/*
Package results persists the artifacts of a search run.

Two files are written per run into the output directory:

	index.<ext>         the ranked root index
	combinations.<ext>  every combination with per-root condition outcomes

The extension follows the format: json (default), msgpack or yaml.
Reading a file back picks the decoder from its extension.
*/
package results

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/vennroots/internal/utils"
	"github.com/bastiangx/vennroots/pkg/rootindex"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a format name or extension we cannot handle.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects the serialization of written artifacts.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
	FormatYAML    Format = "yaml"
)

// ParseFormat accepts a format name, case-insensitively. "yml" and "mp" are
// accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// formatFromPath maps a file extension back to its format.
func formatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return ParseFormat(ext)
}

// Encode writes v to w in the given format.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Decode reads one value of the given format from r into v.
func Decode(r io.Reader, format Format, v any) error {
	switch format {
	case FormatJSON:
		return json.NewDecoder(r).Decode(v)
	case FormatMsgpack:
		return msgpack.NewDecoder(r).Decode(v)
	case FormatYAML:
		return yaml.NewDecoder(r).Decode(v)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Writer writes run artifacts into one directory.
type Writer struct {
	dir          string
	format       Format
	compactIndex bool
}

// NewWriter creates a writer. With compactIndex the index file only lists
// roots and prefix counts.
func NewWriter(dir string, format Format, compactIndex bool) *Writer {
	return &Writer{dir: dir, format: format, compactIndex: compactIndex}
}

// WriteIndex writes the root index and returns the file path.
func (w *Writer) WriteIndex(ix *rootindex.Index) (string, error) {
	return w.write("index", NewIndexRecords(ix, w.compactIndex))
}

// WriteReport writes the combinations report and returns the file path.
func (w *Writer) WriteReport(report *Report) (string, error) {
	return w.write("combinations", report)
}

func (w *Writer) write(name string, v any) (string, error) {
	if err := utils.EnsureDir(w.dir); err != nil {
		return "", fmt.Errorf("creating output dir %s: %w", w.dir, err)
	}
	path := filepath.Join(w.dir, name+"."+w.format.Ext())

	// write next to the target and rename so a failed run never leaves half a file
	tmp, err := os.CreateTemp(w.dir, "."+name+"-*")
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	buf := bufio.NewWriter(tmp)
	if err := Encode(buf, w.format, v); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := buf.Flush(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	// CreateTemp opens 0600
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("renaming into %s: %w", path, err)
	}
	log.Debugf("Wrote %s", path)
	return path, nil
}

// ReadReport loads a combinations report written by WriteReport.
func ReadReport(path string) (*Report, error) {
	var report Report
	if err := readFile(path, &report); err != nil {
		return nil, err
	}
	report.CreatedAt = report.CreatedAt.UTC()
	return &report, nil
}

// ReadIndex loads an index file written by WriteIndex.
func ReadIndex(path string) ([]IndexRecord, error) {
	var records []IndexRecord
	if err := readFile(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func readFile(path string, v any) error {
	format, err := formatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if err := Decode(bufio.NewReader(f), format, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
