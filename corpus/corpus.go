// Package corpus reads batches of serialized graphs from the
// filesystem for conversion and scoring runs. Input selection uses
// glob patterns with ** support; decode failures are captured per
// item so one malformed graph does not lose the rest of the batch or
// break item alignment between a test corpus and a gold corpus.
package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/delph-in/gomrs/codec"
	"github.com/delph-in/gomrs/mrs"
)

// Item is one corpus entry. When decoding failed, Err is set and
// Graph holds an empty placeholder so positional alignment with a
// parallel corpus survives.
type Item struct {
	// ID is the graph's own identifier when the serialization carries
	// one, otherwise a generated unique id.
	ID    string
	Path  string
	Graph *mrs.Graph
	Err   error
}

// Reader decodes corpus files through a codec registry.
type Reader struct {
	registry *codec.Registry
	logger   *slog.Logger
}

// NewReader creates a reader. A nil registry means the default
// registry; a nil logger means slog.Default.
func NewReader(registry *codec.Registry, logger *slog.Logger) *Reader {
	if registry == nil {
		registry = codec.DefaultRegistry
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{registry: registry, logger: logger}
}

// Read expands the glob patterns and decodes every matched file,
// selecting each file's codec by extension. Bank files contribute one
// item per contained graph. The result is ordered by path, then by
// position within the file.
func (r *Reader) Read(patterns []string) ([]Item, error) {
	return r.ReadWith(patterns, nil)
}

// ReadWith is Read with a forced codec; a nil codec selects by file
// extension.
func (r *Reader) ReadWith(patterns []string, forced codec.Codec) ([]Item, error) {
	paths, err := ExpandPatterns(patterns)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, path := range paths {
		items = append(items, r.readFile(path, forced)...)
	}
	return items, nil
}

// readFile decodes one file into items, capturing failures.
func (r *Reader) readFile(path string, forced codec.Codec) []Item {
	fail := func(err error) []Item {
		r.logger.Warn("corpus item failed", "path", path, "error", err)
		placeholder, _ := mrs.Builder{}.Build()
		return []Item{{ID: uuid.NewString(), Path: path, Graph: placeholder, Err: err}}
	}

	c := forced
	if c == nil {
		c = r.registry.ByFile(path)
	}
	if c == nil {
		return fail(fmt.Errorf("no codec for file type: %s", filepath.Ext(path)))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}

	if bank, ok := c.(codec.BankDecoder); ok {
		graphs, err := bank.DecodeAll(data)
		if err != nil {
			return fail(err)
		}
		items := make([]Item, 0, len(graphs))
		for _, g := range graphs {
			items = append(items, Item{ID: itemID(g), Path: path, Graph: g})
		}
		return items
	}

	g, err := c.Decode(data)
	if err != nil {
		return fail(err)
	}
	return []Item{{ID: itemID(g), Path: path, Graph: g}}
}

// Graphs extracts the graphs from items, in order. Placeholders for
// failed items are included.
func Graphs(items []Item) []*mrs.Graph {
	out := make([]*mrs.Graph, len(items))
	for i, it := range items {
		out[i] = it.Graph
	}
	return out
}

// Errors returns the items that failed to decode.
func Errors(items []Item) []Item {
	var failed []Item
	for _, it := range items {
		if it.Err != nil {
			failed = append(failed, it)
		}
	}
	return failed
}

func itemID(g *mrs.Graph) string {
	if id := g.Identifier(); id != "" {
		return id
	}
	return uuid.NewString()
}

// ExpandPatterns resolves glob patterns (with ** support) to a
// deduplicated, sorted list of files. A pattern without glob
// characters names a file directly and must exist.
func ExpandPatterns(patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("resolve pattern %q: is a directory", pattern)
			}
			add(pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			add(m)
		}
	}

	sort.Strings(out)
	return out, nil
}
