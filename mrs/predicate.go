package mrs

import (
	"strings"
)

// PredicateKind distinguishes the three closed forms a predicate symbol
// can take in the serializations.
type PredicateKind int

const (
	// AbstractPred is a grammar-internal predicate such as udef_q.
	AbstractPred PredicateKind = iota
	// SurfacePred is a surface (string) predicate, written quoted in
	// some serializations, such as "_dog_n_1_rel".
	SurfacePred
	// RealPred is the decomposed lemma/part-of-speech/sense form of a
	// surface predicate.
	RealPred
)

// Predicate is a predicate symbol. All normalization (case folding,
// quote stripping, _rel suffix handling) is centralized here; codecs
// and the comparator always go through Canonical.
type Predicate struct {
	Kind  PredicateKind
	Name  string // AbstractPred and SurfacePred: the normalized symbol
	Lemma string // RealPred only
	Pos   string // RealPred only
	Sense string // RealPred only, may be empty
}

// NewAbstractPred builds a grammar predicate.
func NewAbstractPred(name string) Predicate {
	return Predicate{Kind: AbstractPred, Name: normalizePredName(name)}
}

// NewSurfacePred builds a string predicate from its written form.
func NewSurfacePred(name string) Predicate {
	return Predicate{Kind: SurfacePred, Name: normalizePredName(name)}
}

// NewRealPred builds a decomposed predicate. sense may be empty.
func NewRealPred(lemma, pos, sense string) Predicate {
	return Predicate{
		Kind:  RealPred,
		Lemma: strings.ToLower(lemma),
		Pos:   strings.ToLower(pos),
		Sense: strings.ToLower(sense),
	}
}

// ParsePredicate interprets a predicate symbol as written in a
// serialization. Double-quoted or single-quote-prefixed symbols are
// surface predicates; unquoted symbols with a leading underscore are
// decomposed into lemma, part of speech, and sense; anything else is an
// abstract predicate.
func ParsePredicate(s string) Predicate {
	quoted := false
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
		quoted = true
	} else if len(s) >= 1 && s[0] == '\'' {
		s = s[1:]
		quoted = true
	}
	if quoted {
		return NewSurfacePred(s)
	}
	if strings.HasPrefix(s, "_") {
		if lemma, pos, sense, ok := splitPredName(s); ok {
			return NewRealPred(lemma, pos, sense)
		}
	}
	return NewAbstractPred(s)
}

// normalizePredName lowercases and strips a trailing _rel.
func normalizePredName(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSuffix(s, "_rel")
	return s
}

// splitPredName decomposes "_lemma_pos(_sense)" after normalization.
// Splitting works from the right so the lemma may itself contain
// underscores: the part of speech is a single letter, and the sense is
// the single optional segment after it.
func splitPredName(s string) (lemma, pos, sense string, ok bool) {
	s = strings.TrimPrefix(normalizePredName(s), "_")
	parts := strings.Split(s, "_")
	n := len(parts)
	if n >= 3 && isPosSegment(parts[n-2]) {
		lemma = strings.Join(parts[:n-2], "_")
		return lemma, parts[n-2], parts[n-1], lemma != ""
	}
	if n >= 2 && isPosSegment(parts[n-1]) {
		lemma = strings.Join(parts[:n-1], "_")
		return lemma, parts[n-1], "", lemma != ""
	}
	return "", "", "", false
}

// isPosSegment reports whether a segment is a part-of-speech tag: a
// single lowercase letter.
func isPosSegment(s string) bool {
	return len(s) == 1 && s[0] >= 'a' && s[0] <= 'z'
}

// Canonical returns the normalized comparison form. Two predicates are
// the same for isomorphism purposes iff their canonical forms are
// equal, so "_Dog_n_1_rel" and _dog_n_1 compare equal.
func (p Predicate) Canonical() string {
	if p.Kind == RealPred {
		s := "_" + p.Lemma + "_" + p.Pos
		if p.Sense != "" {
			s += "_" + p.Sense
		}
		return s
	}
	return p.Name
}

// String returns the serialization form: the canonical symbol, quoted
// for surface predicates.
func (p Predicate) String() string {
	if p.Kind == SurfacePred {
		return `"` + p.Name + `"`
	}
	return p.Canonical()
}

// IsEmpty reports whether the predicate is unset.
func (p Predicate) IsEmpty() bool {
	return p.Name == "" && p.Lemma == ""
}
