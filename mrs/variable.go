// Package mrs defines the scope-underspecified semantic graph shared by
// all codecs: variables, elementary predications, scope and individual
// constraints, and the per-decode variable unifier.
package mrs

import (
	"fmt"
	"regexp"
)

// Well-known variable sorts.
const (
	// HandleSort marks scope handles. Handles never carry properties.
	HandleSort = "h"
	// UnknownSort is assigned to variables that are referenced but
	// never declared with an explicit sort.
	UnknownSort = "u"
	// EventSort and IndividualSort are the common intrinsic-variable
	// sorts.
	EventSort      = "e"
	IndividualSort = "x"
)

var variablePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z-]*)([0-9]+)$`)

// Variable is a sorted identifier such as h0, e2, or x3. Two mentions
// with the same identifier anywhere in a graph denote the same
// variable. The zero Variable means "absent" (e.g. no top handle).
type Variable struct {
	sort string
	vid  int
}

// NewVariable builds a variable from a sort and a numeric id.
func NewVariable(sort string, vid int) Variable {
	return Variable{sort: sort, vid: vid}
}

// ParseVariable splits an identifier such as "x3" into sort and id.
func ParseVariable(s string) (Variable, error) {
	m := variablePattern.FindStringSubmatch(s)
	if m == nil {
		return Variable{}, fmt.Errorf("invalid variable %q", s)
	}
	var vid int
	fmt.Sscanf(m[2], "%d", &vid)
	return Variable{sort: m[1], vid: vid}, nil
}

// Sort returns the sort letter(s), e.g. "h" or "e".
func (v Variable) Sort() string { return v.sort }

// VID returns the numeric id, unique within one graph.
func (v Variable) VID() int { return v.vid }

// String returns the identifier, e.g. "x3".
func (v Variable) String() string {
	if v.IsEmpty() {
		return ""
	}
	return fmt.Sprintf("%s%d", v.sort, v.vid)
}

// IsEmpty reports whether this is the absent variable.
func (v Variable) IsEmpty() bool { return v.sort == "" }

// IsHandle reports whether the variable has the scope-handle sort.
func (v Variable) IsHandle() bool { return v.sort == HandleSort }

// Properties is an ordered mapping from uppercase feature names to
// values, e.g. TENSE -> pres. Insertion order is preserved for
// serialization. The zero value and nil are both usable empty maps for
// reading.
type Properties struct {
	keys []string
	vals map[string]string
}

// NewProperties builds a property map from alternating key/value pairs.
func NewProperties(pairs ...string) *Properties {
	p := &Properties{}
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Set(pairs[i], pairs[i+1])
	}
	return p
}

// Set adds or replaces a property, preserving first-seen key order.
func (p *Properties) Set(key, value string) {
	if p.vals == nil {
		p.vals = make(map[string]string)
	}
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = value
}

// Get looks up a property value.
func (p *Properties) Get(key string) (string, bool) {
	if p == nil || p.vals == nil {
		return "", false
	}
	v, ok := p.vals[key]
	return v, ok
}

// Len returns the number of properties. Safe on nil.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the property names in insertion order. The caller must
// not modify the returned slice.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return p.keys
}

// Equal reports key-for-key, value-for-value equality, ignoring order.
// Nil and empty compare equal.
func (p *Properties) Equal(o *Properties) bool {
	if p.Len() != o.Len() {
		return false
	}
	for _, k := range p.Keys() {
		pv, _ := p.Get(k)
		ov, ok := o.Get(k)
		if !ok || pv != ov {
			return false
		}
	}
	return true
}

// Copy returns an independent copy. Copying nil yields an empty map.
func (p *Properties) Copy() *Properties {
	c := &Properties{}
	if p == nil {
		return c
	}
	for _, k := range p.keys {
		c.Set(k, p.vals[k])
	}
	return c
}

func (p *Properties) String() string {
	if p.Len() == 0 {
		return "{}"
	}
	s := "{"
	for i, k := range p.keys {
		if i > 0 {
			s += " "
		}
		s += k + ": " + p.vals[k]
	}
	return s + "}"
}
