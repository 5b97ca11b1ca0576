// Package codec defines the serialization interface shared by the
// format packages and a registry for looking codecs up by format name
// or file extension.
package codec

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/delph-in/gomrs/mrs"
)

// Options controls encoding.
type Options struct {
	// Indent requests a multi-line, indented rendering for formats
	// that support one. The zero value encodes each graph on one line.
	Indent bool
}

// Codec decodes and encodes one serialization format.
type Codec interface {
	// Name returns the format name used for lookup (e.g. "simplemrs").
	Name() string

	// Extensions returns the file extensions this codec claims,
	// including the leading dot.
	Extensions() []string

	// Decode parses one serialized graph.
	Decode(data []byte) (*mrs.Graph, error)

	// Encode serializes one graph. A nil opts means defaults.
	Encode(g *mrs.Graph, opts *Options) ([]byte, error)
}

// BankDecoder is implemented by codecs whose format can hold any
// number of graphs per file.
type BankDecoder interface {
	DecodeAll(data []byte) ([]*mrs.Graph, error)
}

// Registry manages codecs.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Codec
	byExt  map[string]Codec
}

// DefaultRegistry is the global codec registry. Format packages
// register themselves into it from their init functions.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty codec registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Codec),
		byExt:  make(map[string]Codec),
	}
}

// Register adds a codec to the registry, replacing any codec already
// claiming the same name or extensions.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[c.Name()] = c
	for _, ext := range c.Extensions() {
		r.byExt[strings.ToLower(ext)] = c
	}
}

// ByName returns the codec registered under the given format name, or
// nil if none is.
func (r *Registry) ByName(name string) Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// ByFile returns the codec claiming the file's extension, or nil.
// Extensions may span several dots (".mrs.json"); the longest
// registered suffix wins.
func (r *Registry) ByFile(filename string) Codec {
	lower := strings.ToLower(filepath.Base(filename))
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best Codec
	bestLen := 0
	for ext, c := range r.byExt {
		if strings.HasSuffix(lower, ext) && len(ext) > bestLen {
			best, bestLen = c, len(ext)
		}
	}
	return best
}

// Decode parses data with the codec claiming the file's extension.
func (r *Registry) Decode(filename string, data []byte) (*mrs.Graph, error) {
	c := r.ByFile(filename)
	if c == nil {
		return nil, fmt.Errorf("no codec for file type: %s", filepath.Ext(filename))
	}
	return c.Decode(data)
}

// Names returns all registered format names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Register adds a codec to the default registry.
func Register(c Codec) {
	DefaultRegistry.Register(c)
}
