// Package parse provides backtracking parser combinators over a token
// slice produced by lex. Small recursive-descent readers (the
// S-expression reader, the grammar-description reader) are assembled
// from these instead of duplicating backtracking logic.
//
// Combinators never consume partial input on failure: a failing parser
// always reports the position it started at, so Choice can retry
// alternatives from the same point.
package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/delph-in/gomrs/lex"
)

// Grammar maps nonterminal names to parsers, for Nonterminal dispatch.
// Entries may be added after the referencing parsers are constructed,
// which is how recursive grammars are tied.
type Grammar map[string]Parser

// Input is the shared, read-only state of one parse: the token slice
// and the grammar used for nonterminal lookup.
type Input struct {
	Tokens  []lex.Token
	Grammar Grammar
}

// Result is a successful parse: the produced value and the index of the
// first unconsumed token.
type Result struct {
	Value any
	Next  int
}

// Parser consumes tokens starting at pos and either succeeds with a
// Result or fails with an *Error positioned at pos.
type Parser func(in *Input, pos int) (Result, error)

// Error is a positioned parse failure. A Choice failure aggregates the
// failures of all alternatives in Alts.
type Error struct {
	Pos      int
	Line     int
	Expected string
	Alts     []*Error
}

func (e *Error) Error() string {
	if len(e.Alts) > 0 {
		parts := make([]string, len(e.Alts))
		for i, a := range e.Alts {
			parts[i] = a.Expected
		}
		return fmt.Sprintf("expected one of %s at line %d",
			strings.Join(parts, ", "), e.Line)
	}
	if e.Line > 0 {
		return fmt.Sprintf("expected %s at line %d", e.Expected, e.Line)
	}
	return "expected " + e.Expected + " at end of input"
}

func fail(in *Input, pos int, expected string) (Result, error) {
	e := &Error{Pos: pos, Expected: expected}
	if pos < len(in.Tokens) {
		e.Line = in.Tokens[pos].Line
	} else if n := len(in.Tokens); n > 0 {
		e.Line = in.Tokens[n-1].Line
	}
	return Result{}, e
}

// discard marks values filtered out of Sequence and repetition results.
type discardValue struct{}

// Run parses the token slice with the named start parser and requires
// all tokens to be consumed.
func Run(g Grammar, start string, tokens []lex.Token) (any, error) {
	p, ok := g[start]
	if !ok {
		return nil, fmt.Errorf("parse: undefined nonterminal %q", start)
	}
	in := &Input{Tokens: tokens, Grammar: g}
	res, err := p(in, 0)
	if err != nil {
		return nil, err
	}
	if res.Next != len(tokens) {
		_, err := fail(in, res.Next, "end of input")
		return nil, err
	}
	return res.Value, nil
}

// Literal matches a token whose text equals text. The value is the text.
func Literal(text string) Parser {
	return func(in *Input, pos int) (Result, error) {
		if pos < len(in.Tokens) && in.Tokens[pos].Text == text {
			return Result{Value: text, Next: pos + 1}, nil
		}
		return fail(in, pos, fmt.Sprintf("%q", text))
	}
}

// Kind matches a token of the given kind. The value is the token.
func Kind(k lex.Kind, name string) Parser {
	return func(in *Input, pos int) (Result, error) {
		if pos < len(in.Tokens) && in.Tokens[pos].Kind == k {
			return Result{Value: in.Tokens[pos], Next: pos + 1}, nil
		}
		return fail(in, pos, name)
	}
}

// Regex matches a token whose whole text matches re. The value is the
// token text.
func Regex(re *regexp.Regexp, name string) Parser {
	return func(in *Input, pos int) (Result, error) {
		if pos < len(in.Tokens) {
			text := in.Tokens[pos].Text
			if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 && loc[1] == len(text) {
				return Result{Value: text, Next: pos + 1}, nil
			}
		}
		return fail(in, pos, name)
	}
}

// Nonterminal dispatches to the grammar entry under name at parse time,
// so mutually recursive rules can be defined in any order.
func Nonterminal(name string) Parser {
	return func(in *Input, pos int) (Result, error) {
		p, ok := in.Grammar[name]
		if !ok {
			return Result{}, fmt.Errorf("parse: undefined nonterminal %q", name)
		}
		return p(in, pos)
	}
}

// Sequence runs parsers in order; all must succeed. The value is the
// slice of sub-values with discarded entries filtered out.
func Sequence(parsers ...Parser) Parser {
	return func(in *Input, pos int) (Result, error) {
		values := make([]any, 0, len(parsers))
		next := pos
		for _, p := range parsers {
			res, err := p(in, next)
			if err != nil {
				return Result{}, err
			}
			if _, skip := res.Value.(discardValue); !skip {
				values = append(values, res.Value)
			}
			next = res.Next
		}
		return Result{Value: values, Next: next}, nil
	}
}

// Choice tries alternatives in order and returns the first success.
// If all fail, the failures are aggregated into one positioned error.
func Choice(parsers ...Parser) Parser {
	return func(in *Input, pos int) (Result, error) {
		alts := make([]*Error, 0, len(parsers))
		for _, p := range parsers {
			res, err := p(in, pos)
			if err == nil {
				return res, nil
			}
			pe, ok := err.(*Error)
			if !ok {
				return Result{}, err
			}
			alts = append(alts, pe)
		}
		_, errRes := fail(in, pos, "")
		e := errRes.(*Error)
		e.Alts = alts
		return Result{}, e
	}
}

// Optional succeeds with def and consumes nothing when p fails.
func Optional(p Parser, def any) Parser {
	return func(in *Input, pos int) (Result, error) {
		res, err := p(in, pos)
		if err != nil {
			return Result{Value: def, Next: pos}, nil
		}
		return res, nil
	}
}

// And is a positive lookahead: it succeeds when p succeeds but consumes
// nothing and produces no value.
func And(p Parser) Parser {
	return func(in *Input, pos int) (Result, error) {
		if _, err := p(in, pos); err != nil {
			return Result{}, err
		}
		return Result{Value: discardValue{}, Next: pos}, nil
	}
}

// Not is a negative lookahead: it succeeds when p fails, consuming
// nothing and producing no value.
func Not(p Parser, name string) Parser {
	return func(in *Input, pos int) (Result, error) {
		if _, err := p(in, pos); err == nil {
			return fail(in, pos, name)
		}
		return Result{Value: discardValue{}, Next: pos}, nil
	}
}

// ZeroOrMore matches p repeatedly, separated by delim when delim is
// non-nil. The value is the slice of p's values; delimiter values are
// dropped.
func ZeroOrMore(p, delim Parser) Parser {
	return repeat(p, delim, 0)
}

// OneOrMore is ZeroOrMore requiring at least one match.
func OneOrMore(p, delim Parser) Parser {
	return repeat(p, delim, 1)
}

func repeat(p, delim Parser, min int) Parser {
	return func(in *Input, pos int) (Result, error) {
		values := []any{}
		next := pos
		for {
			at := next
			if len(values) > 0 && delim != nil {
				res, err := delim(in, at)
				if err != nil {
					break
				}
				at = res.Next
			}
			res, err := p(in, at)
			if err != nil {
				if len(values) < min {
					return Result{}, err
				}
				break
			}
			if _, skip := res.Value.(discardValue); !skip {
				values = append(values, res.Value)
			}
			if res.Next == next {
				// Zero-width match; stop rather than loop.
				break
			}
			next = res.Next
		}
		return Result{Value: values, Next: next}, nil
	}
}

// Map post-processes p's value with f.
func Map(p Parser, f func(any) any) Parser {
	return func(in *Input, pos int) (Result, error) {
		res, err := p(in, pos)
		if err != nil {
			return Result{}, err
		}
		res.Value = f(res.Value)
		return res, nil
	}
}

// Skip runs p but discards its value, so Sequence and repetitions omit
// it from their results. Used for punctuation.
func Skip(p Parser) Parser {
	return func(in *Input, pos int) (Result, error) {
		res, err := p(in, pos)
		if err != nil {
			return Result{}, err
		}
		res.Value = discardValue{}
		return res, nil
	}
}
