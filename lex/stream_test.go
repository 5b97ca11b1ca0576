package lex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delph-in/gomrs/lex"
)

func testStream(input string) *lex.TokenStream {
	return lex.NewTokenStream(testLexer().ScanString(input), kindComment)
}

func TestStreamPeekSkipsComments(t *testing.T) {
	ts := testStream("a ; noise\nb c")

	tok, err := ts.Peek(0)
	require.NoError(t, err)
	assert.Equal(t, "a", tok.Text)

	tok, err = ts.Peek(1)
	require.NoError(t, err)
	assert.Equal(t, "b", tok.Text, "comment is invisible to lookahead")

	tok, err = ts.Peek(2)
	require.NoError(t, err)
	assert.Equal(t, "c", tok.Text)

	tok, err = ts.Peek(3)
	require.NoError(t, err)
	assert.True(t, tok.IsEOF())
}

func TestStreamPeekDoesNotConsume(t *testing.T) {
	ts := testStream("a b")
	for i := 0; i < 3; i++ {
		tok, err := ts.Peek(0)
		require.NoError(t, err)
		assert.Equal(t, "a", tok.Text)
	}
	tok, err := ts.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", tok.Text)
}

func TestStreamNextAtEnd(t *testing.T) {
	ts := testStream("a")
	_, err := ts.Next()
	require.NoError(t, err)

	_, err = ts.Next()
	var serr *lex.SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), "unexpected end of input")
}

func TestStreamExpect(t *testing.T) {
	ts := testStream("name : 7")

	text, err := ts.Expect(kindSymbol)
	require.NoError(t, err)
	assert.Equal(t, "name", text)

	_, err = ts.Expect(kindNumber)
	var serr *lex.SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "a number", serr.Expected)
	assert.Contains(t, serr.Actual, "a colon")
	assert.Equal(t, 1, serr.Line)

	// The failed Expect consumed nothing.
	_, err = ts.Expect(kindColon)
	require.NoError(t, err)
	text, err = ts.Expect(kindNumber)
	require.NoError(t, err)
	assert.Equal(t, "7", text)
}

func TestStreamAccept(t *testing.T) {
	ts := testStream("x 1")

	_, ok := ts.Accept(kindNumber)
	assert.False(t, ok, "mismatch consumes nothing")

	tok, ok := ts.Accept(kindSymbol)
	require.True(t, ok)
	assert.Equal(t, "x", tok.Text)

	tok, ok = ts.Accept(kindNumber)
	require.True(t, ok)
	assert.Equal(t, "1", tok.Text)

	_, ok = ts.Accept(kindNumber)
	assert.False(t, ok, "EOF never matches")
}
