package mrs

import "fmt"

// VarConflictError reports disagreeing mentions of one variable: either
// two different declared sorts, or two different values for the same
// property. It is always fatal to the decode that produced it.
type VarConflictError struct {
	// Var is the variable identifier.
	Var string
	// Key is the conflicting property name, or empty for a sort
	// conflict.
	Key      string
	Old, New string
}

func (e *VarConflictError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("variable conflict: %s declared with sort %q and %q",
			e.Var, e.Old, e.New)
	}
	return fmt.Sprintf("property conflict for %s: %s is %q, got %q",
		e.Var, e.Key, e.Old, e.New)
}

type unifyRecord struct {
	sort  string
	props *Properties
}

// Unifier merges repeated mentions of variables collected while
// decoding one graph. Each decode call constructs its own Unifier;
// there is no shared state between decodes, so concurrent decodes are
// safe.
//
// Unification is commutative and associative: replaying the same
// mentions in any order yields the same merged bindings or the same
// conflict, because conflicts are detected by pairwise value equality.
type Unifier struct {
	order []int
	recs  map[int]*unifyRecord
}

// NewUnifier creates an empty unifier.
func NewUnifier() *Unifier {
	return &Unifier{recs: make(map[int]*unifyRecord)}
}

// Add records one mention of variable vid. sort may be empty when the
// mention only references the variable without declaring it. props may
// be nil. The returned variable carries the best sort known so far.
func (u *Unifier) Add(vid int, sort string, props *Properties) (Variable, error) {
	rec, ok := u.recs[vid]
	if !ok {
		rec = &unifyRecord{sort: sort, props: &Properties{}}
		u.recs[vid] = rec
		u.order = append(u.order, vid)
	} else if sort != "" {
		if rec.sort == "" {
			rec.sort = sort
		} else if rec.sort != sort {
			return Variable{}, &VarConflictError{
				Var: u.name(vid), Old: rec.sort, New: sort,
			}
		}
	}

	for _, k := range props.Keys() {
		nv, _ := props.Get(k)
		if ov, ok := rec.props.Get(k); ok {
			if ov != nv {
				return Variable{}, &VarConflictError{
					Var: u.name(vid), Key: k, Old: ov, New: nv,
				}
			}
			continue
		}
		rec.props.Set(k, nv)
	}
	return u.variable(vid), nil
}

// AddVariable records a mention given as a parsed variable.
func (u *Unifier) AddVariable(v Variable, props *Properties) (Variable, error) {
	return u.Add(v.VID(), v.Sort(), props)
}

// Mention parses an identifier such as "x3" and records it as a bare
// reference.
func (u *Unifier) Mention(id string) (Variable, error) {
	v, err := ParseVariable(id)
	if err != nil {
		return Variable{}, err
	}
	return u.AddVariable(v, nil)
}

// name renders the identifier for error messages; the sort may still
// be unknown at that point.
func (u *Unifier) name(vid int) string {
	return u.variable(vid).String()
}

// variable returns the variable for vid with its resolved sort,
// defaulting to UnknownSort when no mention declared one.
func (u *Unifier) variable(vid int) Variable {
	sort := UnknownSort
	if rec, ok := u.recs[vid]; ok && rec.sort != "" {
		sort = rec.sort
	}
	return Variable{sort: sort, vid: vid}
}

// Variable returns the variable for vid with its resolved sort,
// defaulting to UnknownSort. Decoders whose serialization allows
// sort-less references use this after all mentions are recorded.
func (u *Unifier) Variable(vid int) Variable {
	return u.variable(vid)
}

// Bindings returns one binding per unique variable, in first-mention
// order. Variables that were only referenced get an empty property bag
// and UnknownSort.
func (u *Unifier) Bindings() []Binding {
	out := make([]Binding, len(u.order))
	for i, vid := range u.order {
		out[i] = Binding{
			Variable:   u.variable(vid),
			Properties: u.recs[vid].props,
		}
	}
	return out
}
