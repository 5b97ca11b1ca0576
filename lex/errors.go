package lex

import "fmt"

// SyntaxError reports malformed input text. It carries the position of
// the failure and, when produced by the token stream, the expected and
// actual token descriptions.
type SyntaxError struct {
	// Line is the 1-based line number of the failure.
	Line int
	// Column is the 1-based character offset within the line, or 0
	// when the failure is not tied to a column.
	Column int
	// Text is the offending text, if any.
	Text string
	// Expected and Actual describe the token mismatch, if any.
	Expected string
	Actual   string
	// Msg is the base description of the failure.
	Msg string
}

func (e *SyntaxError) Error() string {
	msg := e.Msg
	if e.Expected != "" {
		msg = fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
	}
	if e.Text != "" && e.Expected == "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Text)
	}
	if e.Column > 0 {
		return fmt.Sprintf("%s at line %d, column %d", msg, e.Line, e.Column)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	return msg
}
