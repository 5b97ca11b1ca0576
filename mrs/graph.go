package mrs

import (
	"errors"
	"fmt"
)

// ErrUnboundVariable is wrapped by Build when a variable is referenced
// somewhere in the graph but missing from the variable bindings.
var ErrUnboundVariable = errors.New("unbound variable")

// Binding pairs a variable with its fully merged property bag.
type Binding struct {
	Variable   Variable
	Properties *Properties
}

// Graph is the top-level underspecified semantic structure. It is
// immutable after construction; derived views (links, role maps) are
// computed by pure functions in other packages.
type Graph struct {
	top        Variable
	index      Variable
	eps        []EP
	hcons      []HCons
	icons      []ICons
	bindings   []Binding
	byID       map[string]int
	lnk        Lnk
	surface    string
	identifier string
}

// Builder collects the parts of a graph. Decoders fill it from a
// Unifier's bindings; tests may fill it directly.
type Builder struct {
	Top        Variable // optional
	Index      Variable // optional
	EPs        []EP
	HCons      []HCons
	ICons      []ICons
	Variables  []Binding
	Lnk        Lnk
	Surface    string
	Identifier string
}

// Build validates and assembles an immutable graph. Every variable
// referenced as top, index, label, argument, or constraint endpoint
// must appear in Variables; otherwise Build fails with an error
// wrapping ErrUnboundVariable.
func (b Builder) Build() (*Graph, error) {
	g := &Graph{
		top:        b.Top,
		index:      b.Index,
		eps:        append([]EP(nil), b.EPs...),
		hcons:      append([]HCons(nil), b.HCons...),
		icons:      append([]ICons(nil), b.ICons...),
		bindings:   append([]Binding(nil), b.Variables...),
		byID:       make(map[string]int, len(b.Variables)),
		lnk:        b.Lnk,
		surface:    b.Surface,
		identifier: b.Identifier,
	}
	for i, bd := range g.bindings {
		g.byID[bd.Variable.String()] = i
	}

	check := func(v Variable, where string) error {
		if v.IsEmpty() {
			return nil
		}
		if _, ok := g.byID[v.String()]; !ok {
			return fmt.Errorf("%w: %s (%s)", ErrUnboundVariable, v, where)
		}
		return nil
	}

	if err := check(g.top, "top"); err != nil {
		return nil, err
	}
	if err := check(g.index, "index"); err != nil {
		return nil, err
	}
	for _, ep := range g.eps {
		if err := check(ep.Label, "label of "+ep.Predicate.String()); err != nil {
			return nil, err
		}
		for _, a := range ep.Args {
			if v, ok := a.Value.Var(); ok {
				if err := check(v, a.Role+" of "+ep.Predicate.String()); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, hc := range g.hcons {
		if err := check(hc.Hi, "hcons hi"); err != nil {
			return nil, err
		}
		if err := check(hc.Lo, "hcons lo"); err != nil {
			return nil, err
		}
	}
	for _, ic := range g.icons {
		if err := check(ic.Left, "icons left"); err != nil {
			return nil, err
		}
		if err := check(ic.Right, "icons right"); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Top returns the top handle, or the empty variable when absent.
func (g *Graph) Top() Variable { return g.top }

// Index returns the index variable, or the empty variable when absent.
func (g *Graph) Index() Variable { return g.index }

// EPs returns the predications in serialization order.
func (g *Graph) EPs() []EP { return append([]EP(nil), g.eps...) }

// HCons returns the scope constraints.
func (g *Graph) HCons() []HCons { return append([]HCons(nil), g.hcons...) }

// ICons returns the individual constraints.
func (g *Graph) ICons() []ICons { return append([]ICons(nil), g.icons...) }

// Variables returns all variable bindings in first-mention order.
func (g *Graph) Variables() []Binding { return append([]Binding(nil), g.bindings...) }

// Properties returns the merged property bag for a variable, or nil
// when the variable is not part of the graph.
func (g *Graph) Properties(v Variable) *Properties {
	if i, ok := g.byID[v.String()]; ok {
		return g.bindings[i].Properties
	}
	return nil
}

// Lnk returns the graph-level surface alignment.
func (g *Graph) Lnk() Lnk { return g.lnk }

// Surface returns the surface string, if any.
func (g *Graph) Surface() string { return g.surface }

// Identifier returns the graph identifier, if any.
func (g *Graph) Identifier() string { return g.identifier }
