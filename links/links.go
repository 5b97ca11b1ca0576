// Package links derives the concrete directed dependency view from an
// underspecified graph. Scope in the core model is expressed only
// through shared labels and qeq constraints; the dependency
// serializations and the isomorphism comparator's edge checks need the
// resolved links computed here.
package links

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/delph-in/gomrs/mrs"
)

// Post classifies how a link's target was reached.
type Post string

const (
	// EQ connects predications sharing a label.
	EQ Post = "EQ"
	// HEQ marks a direct argument reference to a label.
	HEQ Post = "HEQ"
	// NEQ marks a direct intrinsic-variable reference across labels.
	NEQ Post = "NEQ"
	// H marks resolution through a qeq scope constraint.
	H Post = "H"
)

// Root is the synthetic start node of the top link.
const Root = 0

// Link is one directed dependency. Node ids are 1-based predication
// positions; Root is 0. Role is empty for the top link and for
// synthesized label-equality links.
type Link struct {
	Start int
	End   int
	Role  string
	Post  Post
}

func (l Link) String() string {
	role := l.Role
	if role == "" {
		role = "-"
	}
	return fmt.Sprintf("%d -> %d %s/%s", l.Start, l.End, role, l.Post)
}

// Warning is a malformed-but-recoverable condition found during
// derivation. Warnings never abort derivation; the affected links are
// simply omitted.
type Warning struct {
	Message string
}

func (w Warning) String() string { return w.Message }

// Deriver computes links, reporting structural warnings to its logger.
type Deriver struct {
	logger *slog.Logger
}

// NewDeriver creates a deriver. A nil logger means slog.Default.
func NewDeriver(logger *slog.Logger) *Deriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deriver{logger: logger}
}

// Derive computes the ordered link view of g using the default logger.
func Derive(g *mrs.Graph) ([]Link, []Warning) {
	return NewDeriver(nil).Derive(g)
}

// scopes indexes one graph for derivation.
type scopes struct {
	eps      []mrs.EP
	labels   map[string][]int // label id -> member ep indexes, in order
	ivOwner  map[string]int   // intrinsic variable id -> owning ep index
	qeq      map[string]mrs.Variable
	heads    map[string]int
	warnings []Warning
}

func (d *Deriver) warn(s *scopes, format string, args ...any) {
	w := Warning{Message: fmt.Sprintf(format, args...)}
	s.warnings = append(s.warnings, w)
	d.logger.Warn("link derivation: " + w.Message)
}

// Derive computes the ordered link view of g. The second result lists
// the structural warnings encountered; derivation always completes
// with a best-effort partial result.
func (d *Deriver) Derive(g *mrs.Graph) ([]Link, []Warning) {
	s := &scopes{
		eps:     g.EPs(),
		labels:  make(map[string][]int),
		ivOwner: make(map[string]int),
		qeq:     make(map[string]mrs.Variable),
		heads:   make(map[string]int),
	}

	for i, ep := range s.eps {
		if !ep.Label.IsEmpty() {
			id := ep.Label.String()
			s.labels[id] = append(s.labels[id], i)
		}
		if ep.IsQuantifier() {
			continue
		}
		if iv, ok := ep.Intrinsic(); ok {
			if _, dup := s.ivOwner[iv.String()]; !dup {
				s.ivOwner[iv.String()] = i
			}
		}
	}

	for _, hc := range g.HCons() {
		if hc.Relation != mrs.Qeq {
			continue
		}
		hi := hc.Hi.String()
		if _, dup := s.qeq[hi]; dup {
			d.warn(s, "handle %s is the left side of more than one hcons", hi)
			continue
		}
		s.qeq[hi] = hc.Lo
	}

	for label := range s.labels {
		s.heads[label] = d.computeHead(s, label)
	}

	var out []Link
	out = append(out, d.topLink(s, g.Top())...)
	argLinks, eqConnected := d.argumentLinks(s)
	out = append(out, argLinks...)
	out = append(out, d.labelEqualityLinks(s, eqConnected)...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out, s.warnings
}

// computeHead picks the label-set member with no outgoing argument
// resolving to another member of the same set. Zero or multiple
// candidates are reported and resolved to the first candidate (or
// member) in original order.
func (d *Deriver) computeHead(s *scopes, label string) int {
	members := s.labels[label]
	memberSet := make(map[int]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	var candidates []int
	for _, m := range members {
		internal := false
		for _, a := range s.eps[m].Args {
			v, ok := a.Value.Var()
			if !ok {
				continue
			}
			if tgt, ok := s.ivOwner[v.String()]; ok && tgt != m && memberSet[tgt] {
				internal = true
				break
			}
		}
		if !internal {
			candidates = append(candidates, m)
		}
	}

	switch len(candidates) {
	case 1:
		return candidates[0]
	case 0:
		d.warn(s, "label %s has no scope head", label)
		return members[0]
	default:
		d.warn(s, "label %s has %d scope heads", label, len(candidates))
		return candidates[0]
	}
}

// topLink resolves the designated top handle.
func (d *Deriver) topLink(s *scopes, top mrs.Variable) []Link {
	if top.IsEmpty() {
		return nil
	}
	id := top.String()
	if _, ok := s.labels[id]; ok {
		return []Link{{Start: Root, End: s.heads[id] + 1, Post: HEQ}}
	}
	if lo, ok := s.qeq[id]; ok {
		if _, ok := s.labels[lo.String()]; ok {
			return []Link{{Start: Root, End: s.heads[lo.String()] + 1, Post: H}}
		}
		d.warn(s, "top qeq target %s is not any predication's label", lo)
		return nil
	}
	d.warn(s, "top handle %s resolves to nothing", id)
	return nil
}

// argumentLinks emits one link per resolvable non-intrinsic,
// non-constant argument. The second result records, per label, the
// members already connected by an EQ link.
func (d *Deriver) argumentLinks(s *scopes) ([]Link, map[string]map[int]bool) {
	var out []Link
	eqConnected := make(map[string]map[int]bool)
	markEQ := func(label string, a, b int) {
		if eqConnected[label] == nil {
			eqConnected[label] = make(map[int]bool)
		}
		eqConnected[label][a] = true
		eqConnected[label][b] = true
	}

	for i, ep := range s.eps {
		for _, a := range ep.Args {
			if a.Role == mrs.IntrinsicRole {
				continue
			}
			v, ok := a.Value.Var()
			if !ok {
				continue
			}
			id := v.String()

			if tgt, ok := s.ivOwner[id]; ok && tgt != i {
				post := NEQ
				if !ep.Label.IsEmpty() && ep.Label == s.eps[tgt].Label {
					post = EQ
					markEQ(ep.Label.String(), i, tgt)
				}
				out = append(out, Link{Start: i + 1, End: tgt + 1, Role: a.Role, Post: post})
				continue
			}
			if _, ok := s.labels[id]; ok {
				tgt := d.scopeTarget(s, i, id)
				out = append(out, Link{Start: i + 1, End: tgt + 1, Role: a.Role, Post: HEQ})
				continue
			}
			if lo, ok := s.qeq[id]; ok {
				loID := lo.String()
				if _, ok := s.labels[loID]; !ok {
					d.warn(s, "qeq target %s of %s is not any predication's label", loID, id)
					continue
				}
				tgt := d.scopeTarget(s, i, loID)
				out = append(out, Link{Start: i + 1, End: tgt + 1, Role: a.Role, Post: H})
				continue
			}
			d.warn(s, "argument %s of %s resolves to nothing",
				a.Role, ep.Predicate.Canonical())
		}
	}
	return out, eqConnected
}

// scopeTarget picks the target within a label set: normally the head,
// but a quantifier targets the member carrying its own bound variable,
// since quantifiers bind exactly one node.
func (d *Deriver) scopeTarget(s *scopes, src int, label string) int {
	ep := s.eps[src]
	if ep.IsQuantifier() {
		if bv, ok := ep.Intrinsic(); ok {
			for _, m := range s.labels[label] {
				if iv, ok := s.eps[m].Intrinsic(); ok && iv == bv {
					return m
				}
			}
		}
	}
	return s.heads[label]
}

// labelEqualityLinks synthesizes EQ links from each label-set head to
// members whose label sharing is not otherwise evidenced, in a
// deterministic order (surface alignment start, then original order).
func (d *Deriver) labelEqualityLinks(s *scopes, eqConnected map[string]map[int]bool) []Link {
	var labels []string
	for label, members := range s.labels {
		if len(members) > 1 {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	var out []Link
	for _, label := range labels {
		head := s.heads[label]
		var remaining []int
		for _, m := range s.labels[label] {
			if m != head && !eqConnected[label][m] {
				remaining = append(remaining, m)
			}
		}
		sort.SliceStable(remaining, func(i, j int) bool {
			a, b := remaining[i], remaining[j]
			ca, cb := s.eps[a].Lnk.CFrom(), s.eps[b].Lnk.CFrom()
			if ca != cb {
				return ca < cb
			}
			return a < b
		})
		for _, m := range remaining {
			out = append(out, Link{Start: head + 1, End: m + 1, Post: EQ})
		}
	}
	return out
}
