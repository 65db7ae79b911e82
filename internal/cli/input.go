// Package cli is an interactive explorer over a built root index, handy for
// checking why a root does or does not make it into a combination.
package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/vennroots/internal/utils"
	"github.com/bastiangx/vennroots/pkg/corpus"
	"github.com/bastiangx/vennroots/pkg/rootindex"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads queries line by line:
//
//	ing    show the indexed root "ing" with its prefixes and words
//	bat*   list corpus words starting with "bat" and the roots they feed
type InputHandler struct {
	index   *rootindex.Index
	lexicon *corpus.Lexicon
	in      io.Reader
	out     *log.Logger
	limit   int
}

// NewInputHandler creates an explorer reading from in and printing to out.
// limit caps the words listed for a prefix query.
func NewInputHandler(ix *rootindex.Index, lexicon *corpus.Lexicon, in io.Reader, out io.Writer, limit int) *InputHandler {
	return &InputHandler{
		index:   ix,
		lexicon: lexicon,
		in:      in,
		out:     log.NewWithOptions(out, log.Options{Level: log.InfoLevel}),
		limit:   limit,
	}
}

// Start runs the loop until input ends.
func (h *InputHandler) Start() error {
	h.out.Print("vennroots explorer")
	h.out.Printf("%s roots indexed. Type a root, or a prefix ending in '*' (Ctrl+D to exit):",
		utils.FormatWithCommas(h.index.Len()))

	reader := bufio.NewReader(h.in)
	for {
		line, err := reader.ReadString('\n')
		if query := strings.TrimSpace(line); query != "" {
			h.handleInput(query)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (h *InputHandler) handleInput(query string) {
	start := time.Now()
	if prefix, ok := strings.CutSuffix(query, "*"); ok {
		h.showWords(utils.NormalizeWord(prefix))
	} else {
		h.showRoot(utils.NormalizeWord(query))
	}
	log.Debugf("Took [ %v ] for query '%s'", time.Since(start), query)
}

func (h *InputHandler) showRoot(root string) {
	entry, ok := h.index.Lookup(root)
	if !ok {
		h.out.Warnf("Root '%s' is not indexed", root)
		return
	}
	h.out.Printf("Root '%s': %d prefixes %v", entry.Root, entry.PrefixCount, entry.Prefixes)
	for i, word := range entry.Words() {
		rank := "-"
		if r := h.lexicon.Rank(word); r > 0 {
			rank = utils.FormatWithCommas(r)
		}
		h.out.Printf("%2d. %-20s (rank: %8s)", i+1, wordStyle.Render(word), rank)
	}
}

func (h *InputHandler) showWords(prefix string) {
	if prefix == "" {
		h.out.Error("Empty prefix")
		return
	}
	words := h.lexicon.WithPrefix(prefix, h.limit)
	if len(words) == 0 {
		h.out.Warnf("No corpus words start with '%s'", prefix)
		return
	}
	h.out.Printf("Found %d words starting with '%s':", len(words), prefix)
	for i, word := range words {
		roots := h.feeds(word)
		fed := "none"
		if len(roots) > 0 {
			fed = strings.Join(roots, ", ")
		}
		h.out.Printf("%2d. %-20s (rank: %8s) roots: %s",
			i+1, wordStyle.Render(word), utils.FormatWithCommas(h.lexicon.Rank(word)), fed)
	}
}

// feeds returns the indexed roots that word contributes a prefix to.
func (h *InputHandler) feeds(word string) []string {
	var roots []string
	for k := 1; k <= h.index.Options().MaxPrefixLength && k < len(word); k++ {
		entry, ok := h.index.Lookup(word[k:])
		if ok && entry.HasPrefix(word[:k]) {
			roots = append(roots, entry.Root)
		}
	}
	return roots
}
