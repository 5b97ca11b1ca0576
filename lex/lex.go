// Package lex provides a table-driven regular-expression tokenizer and a
// lookahead token stream. The textual codecs and the grammar-description
// reader are built on top of it.
package lex

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// Kind identifies a token type. Consumers define their own kinds as
// small non-negative integers; negative values are reserved.
type Kind int

// EOF is the kind of the synthetic token returned when peeking past the
// end of input. It never appears in a rule table.
const EOF Kind = -1

// Token is a single lexeme with the line number where it starts.
// For multi-line tokens Line refers to the opening delimiter.
type Token struct {
	Kind Kind
	Text string
	Line int
}

// IsEOF reports whether the token marks the end of input.
func (t Token) IsEOF() bool { return t.Kind == EOF }

// Rule maps a pattern to a token kind. Patterns are tried in table
// order at the current offset; the first match wins. A pattern with a
// capturing group yields only the group's text (used to strip quotes).
type Rule struct {
	Pattern *regexp.Regexp
	Kind    Kind
	Name    string
}

// BoundedRule describes a token that may span multiple lines, such as a
// triple-quoted docstring or a block comment. Start must match at the
// current offset; the token extends to the first match of End, scanning
// forward line by line.
type BoundedRule struct {
	Start *regexp.Regexp
	End   *regexp.Regexp
	Kind  Kind
	Name  string
}

// Lexer turns a character stream into a lazy sequence of tokens.
// A Lexer is immutable after construction and safe for concurrent use
// on independent inputs.
type Lexer struct {
	rules   []Rule
	bounded []BoundedRule
	names   map[Kind]string
}

// NewLexer creates a lexer from an ordered rule table. Bounded rules
// are tried before plain rules at every offset.
func NewLexer(rules []Rule, bounded ...BoundedRule) *Lexer {
	names := make(map[Kind]string, len(rules)+len(bounded))
	for _, r := range rules {
		if _, ok := names[r.Kind]; !ok {
			names[r.Kind] = r.Name
		}
	}
	for _, r := range bounded {
		if _, ok := names[r.Kind]; !ok {
			names[r.Kind] = r.Name
		}
	}
	return &Lexer{rules: rules, bounded: bounded, names: names}
}

// KindName returns the human-readable name for a kind, for error
// messages. Unknown kinds format as "?".
func (l *Lexer) KindName(k Kind) string {
	if k == EOF {
		return "end of input"
	}
	if n, ok := l.names[k]; ok {
		return n
	}
	return "?"
}

// Scan starts tokenizing r. The returned scan is single-use and reads
// input lazily, one line at a time.
func (l *Lexer) Scan(r io.Reader) *Scan {
	return &Scan{lexer: l, scanner: bufio.NewScanner(r)}
}

// ScanString starts tokenizing an in-memory string.
func (l *Lexer) ScanString(s string) *Scan {
	return l.Scan(strings.NewReader(s))
}

// ReadAll tokenizes the whole input into a slice, dropping tokens of
// the given kinds. Used by the combinator parsers, which need random
// access for backtracking.
func (l *Lexer) ReadAll(r io.Reader, drop ...Kind) ([]Token, error) {
	dropped := make(map[Kind]bool, len(drop))
	for _, k := range drop {
		dropped[k] = true
	}
	var tokens []Token
	s := l.Scan(r)
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if tok.IsEOF() {
			return tokens, nil
		}
		if !dropped[tok.Kind] {
			tokens = append(tokens, tok)
		}
	}
}

// Scan is the per-input tokenizing state. It is not safe for
// concurrent use; create one per input.
type Scan struct {
	lexer   *Lexer
	scanner *bufio.Scanner
	line    string
	lineNo  int
	col     int
	done    bool
}

// advanceLine loads the next input line. Reports false at end of input.
func (s *Scan) advanceLine() (bool, error) {
	if s.done {
		return false, nil
	}
	if !s.scanner.Scan() {
		s.done = true
		if err := s.scanner.Err(); err != nil {
			return false, err
		}
		return false, nil
	}
	s.line = s.scanner.Text()
	s.lineNo++
	s.col = 0
	return true, nil
}

// skipSpace moves past whitespace, loading further lines as needed.
// Reports false at end of input.
func (s *Scan) skipSpace() (bool, error) {
	for {
		for s.col < len(s.line) {
			c := s.line[s.col]
			if c != ' ' && c != '\t' && c != '\r' {
				return true, nil
			}
			s.col++
		}
		ok, err := s.advanceLine()
		if !ok || err != nil {
			return false, err
		}
	}
}

// Next returns the next token, or the EOF token at end of input.
// A non-whitespace character matching no rule is a syntax error
// reporting the line, the character offset, and the offending text.
func (s *Scan) Next() (Token, error) {
	ok, err := s.skipSpace()
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{Kind: EOF, Line: s.lineNo}, nil
	}

	rest := s.line[s.col:]
	for _, b := range s.lexer.bounded {
		loc := b.Start.FindStringIndex(rest)
		if loc == nil || loc[0] != 0 {
			continue
		}
		return s.scanBounded(b, loc[1])
	}
	for _, r := range s.lexer.rules {
		m := r.Pattern.FindStringSubmatchIndex(rest)
		if m == nil || m[0] != 0 || m[1] == 0 {
			continue
		}
		text := rest[m[0]:m[1]]
		if len(m) > 2 && m[2] >= 0 {
			text = rest[m[2]:m[3]]
		}
		tok := Token{Kind: r.Kind, Text: text, Line: s.lineNo}
		s.col += m[1]
		return tok, nil
	}

	return Token{}, &SyntaxError{
		Line:   s.lineNo,
		Column: s.col + 1,
		Text:   rest,
		Msg:    "no rule matches input",
	}
}

// scanBounded consumes a multi-line token whose opening delimiter has
// matched startLen bytes at the current offset. The token's line number
// is the line of the opening delimiter.
func (s *Scan) scanBounded(b BoundedRule, startLen int) (Token, error) {
	startLine := s.lineNo
	var sb strings.Builder
	sb.WriteString(s.line[s.col : s.col+startLen])
	s.col += startLen

	for {
		rest := s.line[s.col:]
		if loc := b.End.FindStringIndex(rest); loc != nil {
			sb.WriteString(rest[:loc[1]])
			s.col += loc[1]
			return Token{Kind: b.Kind, Text: sb.String(), Line: startLine}, nil
		}
		sb.WriteString(rest)
		ok, err := s.advanceLine()
		if err != nil {
			return Token{}, err
		}
		if !ok {
			return Token{}, &SyntaxError{
				Line:   startLine,
				Column: 1,
				Msg:    "unterminated " + b.Name,
			}
		}
		sb.WriteByte('\n')
	}
}
