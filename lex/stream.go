package lex

// TokenStream wraps a Scan with arbitrary lookahead and skips tokens of
// designated ignorable kinds (comments) transparently.
type TokenStream struct {
	scan   *Scan
	lexer  *Lexer
	buf    []Token
	ignore map[Kind]bool
	err    error
}

// NewTokenStream wraps a scan. Tokens of the ignore kinds are dropped
// before they become visible to Peek, Next, Expect, or Accept.
func NewTokenStream(s *Scan, ignore ...Kind) *TokenStream {
	ig := make(map[Kind]bool, len(ignore))
	for _, k := range ignore {
		ig[k] = true
	}
	return &TokenStream{scan: s, lexer: s.lexer, ignore: ig}
}

// fill ensures at least n+1 buffered tokens, ending with EOF.
func (ts *TokenStream) fill(n int) error {
	if ts.err != nil {
		return ts.err
	}
	for len(ts.buf) <= n {
		if len(ts.buf) > 0 && ts.buf[len(ts.buf)-1].IsEOF() {
			// Pad with EOF so Peek(n) is total.
			ts.buf = append(ts.buf, ts.buf[len(ts.buf)-1])
			continue
		}
		tok, err := ts.scan.Next()
		if err != nil {
			ts.err = err
			return err
		}
		if !tok.IsEOF() && ts.ignore[tok.Kind] {
			continue
		}
		ts.buf = append(ts.buf, tok)
	}
	return nil
}

// Peek returns the nth-ahead token without consuming it. Peek(0) is the
// token Next would return. Past the end of input it returns the EOF
// token.
func (ts *TokenStream) Peek(n int) (Token, error) {
	if err := ts.fill(n); err != nil {
		return Token{}, err
	}
	return ts.buf[n], nil
}

// Next consumes and returns the next token, or fails with a syntax
// error at end of input.
func (ts *TokenStream) Next() (Token, error) {
	tok, err := ts.Peek(0)
	if err != nil {
		return Token{}, err
	}
	if tok.IsEOF() {
		return Token{}, &SyntaxError{Line: tok.Line, Msg: "unexpected end of input"}
	}
	ts.buf = ts.buf[1:]
	return tok, nil
}

// Expect consumes the next token and returns its text if its kind
// matches, or fails with a syntax error naming the expected and actual
// kinds.
func (ts *TokenStream) Expect(kind Kind) (string, error) {
	tok, err := ts.Peek(0)
	if err != nil {
		return "", err
	}
	if tok.Kind != kind {
		return "", &SyntaxError{
			Line:     tok.Line,
			Expected: ts.lexer.KindName(kind),
			Actual:   ts.describe(tok),
		}
	}
	ts.buf = ts.buf[1:]
	return tok.Text, nil
}

// Accept consumes and returns the next token if its kind matches.
// On mismatch it consumes nothing and reports false.
func (ts *TokenStream) Accept(kind Kind) (Token, bool) {
	tok, err := ts.Peek(0)
	if err != nil || tok.Kind != kind {
		return Token{}, false
	}
	ts.buf = ts.buf[1:]
	return tok, true
}

func (ts *TokenStream) describe(tok Token) string {
	if tok.IsEOF() {
		return "end of input"
	}
	return ts.lexer.KindName(tok.Kind) + " " + "\"" + tok.Text + "\""
}
