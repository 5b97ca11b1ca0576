// Package compare decides structural equivalence of graphs modulo a
// bijective variable renaming, and partitions graph bags for
// test-suite scoring.
package compare

import (
	"errors"
	"sort"
	"strings"

	"github.com/delph-in/gomrs/mrs"
)

// ErrInconclusive is returned when the backtracking search exhausts
// the configured step limit before finding a match or refuting one.
var ErrInconclusive = errors.New("comparison inconclusive: step limit exhausted")

// Options controls a comparison.
type Options struct {
	// Properties requires matched variables to carry exactly equal
	// property bags. Enabled by default.
	Properties bool
	// StepLimit bounds the number of candidate pairings tried; 0
	// means unlimited. The search is exponential in the worst case,
	// so batch callers should set a limit.
	StepLimit int
}

// DefaultOptions returns the default comparison options.
func DefaultOptions() *Options {
	return &Options{Properties: true}
}

// Isomorphic reports whether a and b are structurally identical up to
// a bijective renaming of variables.
func Isomorphic(a, b *mrs.Graph, opts *Options) (bool, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	epsA, epsB := a.EPs(), b.EPs()
	if len(epsA) != len(epsB) ||
		len(a.Variables()) != len(b.Variables()) ||
		len(a.HCons()) != len(b.HCons()) {
		return false, nil
	}
	if a.Top().IsEmpty() != b.Top().IsEmpty() ||
		a.Index().IsEmpty() != b.Index().IsEmpty() {
		return false, nil
	}

	m := &matcher{
		a: a, b: b,
		epsA: epsA, epsB: epsB,
		rmA: roleMap(a), rmB: roleMap(b),
		limit: opts.StepLimit,
		props: opts.Properties,
	}
	if opts.Properties {
		m.propsA, m.propsB = propsByID(a), propsByID(b)
	}

	bij := make(map[string]string, len(a.Variables()))
	rev := make(map[string]string, len(a.Variables()))
	if !a.Top().IsEmpty() && !m.bind(bij, rev, a.Top().String(), b.Top().String()) {
		return false, nil
	}
	if !a.Index().IsEmpty() && !m.bind(bij, rev, a.Index().String(), b.Index().String()) {
		return false, nil
	}

	// Fewest arguments first: small-arity predications have the
	// fewest candidate pairs and prune the search earliest.
	m.order = make([]int, len(epsA))
	for i := range m.order {
		m.order[i] = i
	}
	sort.SliceStable(m.order, func(i, j int) bool {
		return epsA[m.order[i]].Arity() < epsA[m.order[j]].Arity()
	})

	return m.search(0, make([]bool, len(epsB)), bij, rev)
}

type matcher struct {
	a, b           *mrs.Graph
	epsA, epsB     []mrs.EP
	rmA, rmB       map[string]string
	propsA, propsB map[string]*mrs.Properties
	order          []int
	limit          int
	steps          int
	props          bool
}

// bind extends the bijection with va -> vb, refusing any mapping that
// breaks injectivity. It reports success; changed is tracked by the
// caller through map snapshots.
func (m *matcher) bind(bij, rev map[string]string, va, vb string) bool {
	if mapped, ok := bij[va]; ok {
		return mapped == vb
	}
	if mapped, ok := rev[vb]; ok {
		return mapped == va
	}
	bij[va] = vb
	rev[vb] = va
	return true
}

// search recursively pairs the next unmatched predication of graph a
// with role-map-compatible candidates of graph b, in original order.
func (m *matcher) search(depth int, used []bool, bij, rev map[string]string) (bool, error) {
	if depth == len(m.order) {
		if !m.checkHCons(bij) {
			return false, nil
		}
		if m.props && !m.checkProperties(bij) {
			return false, nil
		}
		return true, nil
	}

	epA := m.epsA[m.order[depth]]
	for j, epB := range m.epsB {
		if used[j] {
			continue
		}
		m.steps++
		if m.limit > 0 && m.steps > m.limit {
			return false, ErrInconclusive
		}
		added := m.compatible(epA, epB, bij, rev)
		if added == nil {
			continue
		}
		used[j] = true
		ok, err := m.search(depth+1, used, bij, rev)
		if ok || err != nil {
			return ok, err
		}
		used[j] = false
		for _, va := range added {
			delete(rev, bij[va])
			delete(bij, va)
		}
	}
	return false, nil
}

// compatible checks whether epA can pair with epB under the current
// partial bijection and, if so, extends the bijection with the label
// and all argument variables, returning the newly bound keys. A nil
// result means incompatible (and no bindings were kept).
func (m *matcher) compatible(epA, epB mrs.EP, bij, rev map[string]string) []string {
	if epA.Predicate.Canonical() != epB.Predicate.Canonical() ||
		epA.Arity() != epB.Arity() {
		return nil
	}

	var added []string
	undo := func() {
		for _, va := range added {
			delete(rev, bij[va])
			delete(bij, va)
		}
	}
	tryBind := func(va, vb string) bool {
		if _, ok := bij[va]; !ok {
			if _, taken := rev[vb]; !taken {
				added = append(added, va)
			}
		}
		return m.bind(bij, rev, va, vb)
	}

	if !epA.Label.IsEmpty() || !epB.Label.IsEmpty() {
		if epA.Label.IsEmpty() != epB.Label.IsEmpty() {
			return nil
		}
		if !tryBind(epA.Label.String(), epB.Label.String()) {
			undo()
			return nil
		}
	}

	for _, argA := range epA.Args {
		valB, ok := epB.Arg(argA.Role)
		if !ok {
			undo()
			return nil
		}
		if ca, isConstA := argA.Value.Const(); isConstA {
			cb, isConstB := valB.Const()
			if !isConstB || ca != cb {
				undo()
				return nil
			}
			continue
		}
		va, _ := argA.Value.Var()
		vb, isVarB := valB.Var()
		if !isVarB {
			undo()
			return nil
		}
		if m.rmA[va.String()] != m.rmB[vb.String()] {
			undo()
			return nil
		}
		if !tryBind(va.String(), vb.String()) {
			undo()
			return nil
		}
	}
	return added
}

// checkHCons verifies that a's scope constraints, translated through
// the bijection, equal b's as a multiset.
func (m *matcher) checkHCons(bij map[string]string) bool {
	counts := make(map[string]int)
	for _, hc := range m.b.HCons() {
		counts[hconsKey(hc.Hi.String(), hc.Relation, hc.Lo.String())]++
	}
	for _, hc := range m.a.HCons() {
		hi, ok := bij[hc.Hi.String()]
		if !ok {
			return false
		}
		lo, ok := bij[hc.Lo.String()]
		if !ok {
			return false
		}
		key := hconsKey(hi, hc.Relation, lo)
		counts[key]--
		if counts[key] < 0 {
			return false
		}
	}
	return true
}

func hconsKey(hi string, rel mrs.Relation, lo string) string {
	return hi + " " + string(rel) + " " + lo
}

// checkProperties verifies exact property-bag equality for every
// matched variable pair.
func (m *matcher) checkProperties(bij map[string]string) bool {
	for va, vb := range bij {
		if !m.propsA[va].Equal(m.propsB[vb]) {
			return false
		}
	}
	return true
}

// propsByID indexes the merged property bags by variable identifier,
// so the search's final verification is a map lookup.
func propsByID(g *mrs.Graph) map[string]*mrs.Properties {
	bindings := g.Variables()
	out := make(map[string]*mrs.Properties, len(bindings))
	for _, b := range bindings {
		out[b.Variable.String()] = b.Properties
	}
	return out
}

// roleMap records, per variable, every (predicate, role) context the
// variable appears in as an argument value, plus markers for being the
// top handle or the index. Role maps are invariant under renaming, so
// they prune candidate pairings without consulting the bijection.
func roleMap(g *mrs.Graph) map[string]string {
	contexts := make(map[string][]string)
	for _, ep := range g.EPs() {
		pred := ep.Predicate.Canonical()
		for _, a := range ep.Args {
			if v, ok := a.Value.Var(); ok {
				id := v.String()
				contexts[id] = append(contexts[id], pred+":"+a.Role)
			}
		}
	}
	if top := g.Top(); !top.IsEmpty() {
		contexts[top.String()] = append(contexts[top.String()], "%top")
	}
	if idx := g.Index(); !idx.IsEmpty() {
		contexts[idx.String()] = append(contexts[idx.String()], "%index")
	}

	out := make(map[string]string, len(contexts))
	for id, ctx := range contexts {
		sort.Strings(ctx)
		out[id] = strings.Join(ctx, "|")
	}
	return out
}
