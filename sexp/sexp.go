// Package sexp reads and writes S-expressions, the surface syntax used
// by grammar metadata files. It is built on the parse combinators.
package sexp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/delph-in/gomrs/lex"
	"github.com/delph-in/gomrs/parse"
)

// Value is an S-expression: a Symbol, String, Int, Float, or List.
type Value interface {
	fmt.Stringer
	sexpValue()
}

// Symbol is an unquoted atom.
type Symbol string

// String is a double-quoted atom with escapes resolved.
type String string

// Int is an integer atom.
type Int int64

// Float is a floating-point atom.
type Float float64

// List is a parenthesized sequence of values.
type List []Value

func (Symbol) sexpValue() {}
func (String) sexpValue() {}
func (Int) sexpValue()    {}
func (Float) sexpValue()  {}
func (List) sexpValue()   {}

func (v Symbol) String() string { return string(v) }

func (v String) String() string {
	s := strings.ReplaceAll(string(v), `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func (v Int) String() string { return strconv.FormatInt(int64(v), 10) }

func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

func (v List) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

const (
	kindLParen lex.Kind = iota
	kindRParen
	kindString
	kindFloat
	kindInt
	kindSymbol
	kindComment
)

var lexer = lex.NewLexer([]lex.Rule{
	{Pattern: regexp.MustCompile(`;[^\n]*`), Kind: kindComment, Name: "a comment"},
	{Pattern: regexp.MustCompile(`\(`), Kind: kindLParen, Name: `"("`},
	{Pattern: regexp.MustCompile(`\)`), Kind: kindRParen, Name: `")"`},
	{Pattern: regexp.MustCompile(`"([^"\\]*(?:\\.[^"\\]*)*)"`), Kind: kindString, Name: "a string"},
	{Pattern: regexp.MustCompile(`[+-]?\d+\.\d+(?:[eE][+-]?\d+)?|[+-]?\d+[eE][+-]?\d+`), Kind: kindFloat, Name: "a float"},
	{Pattern: regexp.MustCompile(`[+-]?\d+`), Kind: kindInt, Name: "an integer"},
	{Pattern: regexp.MustCompile(`[^()\s";]+`), Kind: kindSymbol, Name: "a symbol"},
})

var grammar parse.Grammar

func init() {
	grammar = parse.Grammar{
		"value": parse.Choice(
			parse.Map(parse.Kind(kindString, "a string"), func(v any) any {
				return String(unescape(v.(lex.Token).Text))
			}),
			parse.Map(parse.Kind(kindFloat, "a float"), func(v any) any {
				f, _ := strconv.ParseFloat(v.(lex.Token).Text, 64)
				return Float(f)
			}),
			parse.Map(parse.Kind(kindInt, "an integer"), func(v any) any {
				n, _ := strconv.ParseInt(v.(lex.Token).Text, 10, 64)
				return Int(n)
			}),
			parse.Map(parse.Kind(kindSymbol, "a symbol"), func(v any) any {
				return Symbol(v.(lex.Token).Text)
			}),
			parse.Nonterminal("list"),
		),
		"list": parse.Map(parse.Sequence(
			parse.Skip(parse.Kind(kindLParen, `"("`)),
			parse.ZeroOrMore(parse.Nonterminal("value"), nil),
			parse.Skip(parse.Kind(kindRParen, `")"`)),
		), func(v any) any {
			elems := v.([]any)[0].([]any)
			list := make(List, len(elems))
			for i, e := range elems {
				list[i] = e.(Value)
			}
			return list
		}),
	}
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// Parse reads a single S-expression from input.
func Parse(input string) (Value, error) {
	tokens, err := lexer.ReadAll(strings.NewReader(input), kindComment)
	if err != nil {
		return nil, err
	}
	v, err := parse.Run(grammar, "value", tokens)
	if err != nil {
		return nil, err
	}
	return v.(Value), nil
}
