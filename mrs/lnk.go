package mrs

import (
	"fmt"
	"strconv"
	"strings"
)

// LnkKind distinguishes the closed set of surface-alignment forms.
type LnkKind int

const (
	// LnkNone means no surface alignment.
	LnkNone LnkKind = iota
	// LnkCharSpan is a character span, written <from:to>.
	LnkCharSpan
	// LnkChartSpan is a chart-vertex span, written <from#to>.
	LnkChartSpan
	// LnkTokens is a token-index list, written <t1 t2 ...>.
	LnkTokens
	// LnkEdge is an edge identifier, written <@id>.
	LnkEdge
)

// Lnk aligns a predication (or a whole graph) with the surface string.
// The zero value means no alignment.
type Lnk struct {
	Kind     LnkKind
	From, To int   // LnkCharSpan, LnkChartSpan
	Tokens   []int // LnkTokens
	Edge     int   // LnkEdge
}

// CharSpan builds a character-span alignment.
func CharSpan(from, to int) Lnk { return Lnk{Kind: LnkCharSpan, From: from, To: to} }

// ChartSpan builds a chart-vertex-span alignment.
func ChartSpan(from, to int) Lnk { return Lnk{Kind: LnkChartSpan, From: from, To: to} }

// TokenLnk builds a token-index-list alignment.
func TokenLnk(tokens ...int) Lnk { return Lnk{Kind: LnkTokens, Tokens: tokens} }

// EdgeLnk builds an edge-id alignment.
func EdgeLnk(id int) Lnk { return Lnk{Kind: LnkEdge, Edge: id} }

// ParseLnk reads the angle-bracketed surface form.
func ParseLnk(s string) (Lnk, error) {
	if !strings.HasPrefix(s, "<") || !strings.HasSuffix(s, ">") {
		return Lnk{}, fmt.Errorf("invalid lnk %q", s)
	}
	body := s[1 : len(s)-1]
	switch {
	case body == "":
		return Lnk{}, nil
	case strings.HasPrefix(body, "@"):
		id, err := strconv.Atoi(body[1:])
		if err != nil {
			return Lnk{}, fmt.Errorf("invalid lnk %q", s)
		}
		return EdgeLnk(id), nil
	case strings.ContainsRune(body, ':'):
		return parseSpan(s, body, ":", LnkCharSpan)
	case strings.ContainsRune(body, '#'):
		return parseSpan(s, body, "#", LnkChartSpan)
	default:
		fields := strings.Fields(body)
		tokens := make([]int, len(fields))
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return Lnk{}, fmt.Errorf("invalid lnk %q", s)
			}
			tokens[i] = n
		}
		return TokenLnk(tokens...), nil
	}
}

func parseSpan(orig, body, sep string, kind LnkKind) (Lnk, error) {
	parts := strings.SplitN(body, sep, 2)
	from, err1 := strconv.Atoi(parts[0])
	to, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return Lnk{}, fmt.Errorf("invalid lnk %q", orig)
	}
	return Lnk{Kind: kind, From: from, To: to}, nil
}

// String renders the angle-bracketed surface form; empty for LnkNone.
func (l Lnk) String() string {
	switch l.Kind {
	case LnkCharSpan:
		return fmt.Sprintf("<%d:%d>", l.From, l.To)
	case LnkChartSpan:
		return fmt.Sprintf("<%d#%d>", l.From, l.To)
	case LnkTokens:
		parts := make([]string, len(l.Tokens))
		for i, t := range l.Tokens {
			parts[i] = strconv.Itoa(t)
		}
		return "<" + strings.Join(parts, " ") + ">"
	case LnkEdge:
		return fmt.Sprintf("<@%d>", l.Edge)
	default:
		return ""
	}
}

// CFrom returns the starting character position, or -1 when the
// alignment has none. Used for deterministic ordering.
func (l Lnk) CFrom() int {
	if l.Kind == LnkCharSpan {
		return l.From
	}
	return -1
}
