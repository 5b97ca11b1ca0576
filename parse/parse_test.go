package parse_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delph-in/gomrs/lex"
	"github.com/delph-in/gomrs/parse"
)

const (
	kindSymbol lex.Kind = iota
	kindNumber
	kindPunct
)

var testRules = []lex.Rule{
	{Pattern: regexp.MustCompile(`\d+`), Kind: kindNumber, Name: "a number"},
	{Pattern: regexp.MustCompile(`[A-Za-z]+`), Kind: kindSymbol, Name: "a symbol"},
	{Pattern: regexp.MustCompile(`[()+,\-]`), Kind: kindPunct, Name: "punctuation"},
}

func tokenize(t *testing.T, input string) []lex.Token {
	t.Helper()
	tokens, err := lex.NewLexer(testRules).ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	return tokens
}

func TestLiteralAndKind(t *testing.T) {
	g := parse.Grammar{
		"lit":  parse.Literal("hello"),
		"kind": parse.Kind(kindNumber, "a number"),
	}

	v, err := parse.Run(g, "lit", tokenize(t, "hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = parse.Run(g, "lit", tokenize(t, "goodbye"))
	var perr *parse.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, perr.Pos)
	assert.Contains(t, perr.Error(), `"hello"`)

	v, err = parse.Run(g, "kind", tokenize(t, "42"))
	require.NoError(t, err)
	assert.Equal(t, "42", v.(lex.Token).Text)
}

func TestSequenceCollectsAndFilters(t *testing.T) {
	g := parse.Grammar{
		"pair": parse.Sequence(
			parse.Skip(parse.Literal("(")),
			parse.Kind(kindSymbol, "a symbol"),
			parse.Skip(parse.Literal(",")),
			parse.Kind(kindSymbol, "a symbol"),
			parse.Skip(parse.Literal(")")),
		),
	}
	v, err := parse.Run(g, "pair", tokenize(t, "(a, b)"))
	require.NoError(t, err)
	vals := v.([]any)
	require.Len(t, vals, 2, "skipped punctuation is filtered out")
	assert.Equal(t, "a", vals[0].(lex.Token).Text)
	assert.Equal(t, "b", vals[1].(lex.Token).Text)
}

func TestChoiceBacktracksAndAggregates(t *testing.T) {
	g := parse.Grammar{
		"ab": parse.Choice(
			parse.Sequence(parse.Literal("a"), parse.Literal("x")),
			parse.Sequence(parse.Literal("a"), parse.Literal("y")),
		),
	}

	// The first alternative consumes "a" then fails on "y"; the second
	// must still see the input from the start.
	v, err := parse.Run(g, "ab", tokenize(t, "a y"))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "y"}, v)

	_, err = parse.Run(g, "ab", tokenize(t, "a z"))
	var perr *parse.Error
	require.ErrorAs(t, err, &perr)
	require.Len(t, perr.Alts, 2, "all alternatives are reported")
	assert.Equal(t, 0, perr.Pos, "failure reports the original position")
}

func TestOptional(t *testing.T) {
	g := parse.Grammar{
		"sign": parse.Sequence(
			parse.Optional(parse.Literal("-"), ""),
			parse.Kind(kindNumber, "a number"),
		),
	}

	v, err := parse.Run(g, "sign", tokenize(t, "- 5"))
	require.NoError(t, err)
	assert.Equal(t, "-", v.([]any)[0])

	v, err = parse.Run(g, "sign", tokenize(t, "5"))
	require.NoError(t, err)
	assert.Equal(t, "", v.([]any)[0], "default value on absence")
}

func TestRepetitionWithDelimiter(t *testing.T) {
	item := parse.Map(parse.Kind(kindSymbol, "a symbol"), func(v any) any {
		return v.(lex.Token).Text
	})
	g := parse.Grammar{
		"list":  parse.ZeroOrMore(item, parse.Skip(parse.Literal(","))),
		"list1": parse.OneOrMore(item, parse.Skip(parse.Literal(","))),
	}

	v, err := parse.Run(g, "list", tokenize(t, "a, b, c"))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, v)

	v, err = parse.Run(g, "list", tokenize(t, ""))
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = parse.Run(g, "list1", tokenize(t, ""))
	require.Error(t, err)
}

func TestLookahead(t *testing.T) {
	g := parse.Grammar{
		// A symbol not followed by "(" is a plain name, not a call.
		"name": parse.Sequence(
			parse.Kind(kindSymbol, "a symbol"),
			parse.Not(parse.Literal("("), "no argument list"),
		),
		"call": parse.Sequence(
			parse.Kind(kindSymbol, "a symbol"),
			parse.And(parse.Literal("(")),
			parse.Skip(parse.Literal("(")),
			parse.Skip(parse.Literal(")")),
		),
	}

	_, err := parse.Run(g, "name", tokenize(t, "f"))
	require.NoError(t, err)

	_, err = parse.Run(g, "call", tokenize(t, "f()"))
	require.NoError(t, err)
}

func TestNonterminalRecursion(t *testing.T) {
	// expr := number | "(" expr "+" expr ")"
	g := parse.Grammar{}
	g["expr"] = parse.Choice(
		parse.Map(parse.Kind(kindNumber, "a number"), func(v any) any {
			return v.(lex.Token).Text
		}),
		parse.Map(parse.Sequence(
			parse.Skip(parse.Literal("(")),
			parse.Nonterminal("expr"),
			parse.Skip(parse.Literal("+")),
			parse.Nonterminal("expr"),
			parse.Skip(parse.Literal(")")),
		), func(v any) any {
			vals := v.([]any)
			return []any{vals[0], vals[1]}
		}),
	)

	v, err := parse.Run(g, "expr", tokenize(t, "(1 + (2 + 3))"))
	require.NoError(t, err)
	assert.Equal(t, []any{"1", []any{"2", "3"}}, v)
}

func TestRunRequiresFullConsumption(t *testing.T) {
	g := parse.Grammar{"one": parse.Literal("a")}
	_, err := parse.Run(g, "one", tokenize(t, "a b"))
	var perr *parse.Error
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "end of input")
}
