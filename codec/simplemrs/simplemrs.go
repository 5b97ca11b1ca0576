// Package simplemrs implements the SimpleMRS text serialization, the
// lingua franca format emitted by grammar processors:
//
//	[ TOP: h0 INDEX: e2 [ e TENSE: pres ]
//	  RELS: < [ _bark_v_1<8:14> LBL: h1 ARG0: e2 ARG1: x3 ] >
//	  HCONS: < h0 qeq h1 > ]
//
// Registering the package makes the codec available under the name
// "simplemrs" and the extensions .mrs and .simplemrs.
package simplemrs

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/delph-in/gomrs/codec"
	"github.com/delph-in/gomrs/lex"
	"github.com/delph-in/gomrs/mrs"
)

const (
	kindLBrack lex.Kind = iota
	kindRBrack
	kindLnk
	kindString
	kindQuotedPred
	kindFeature
	kindSymbol
	kindLAngle
	kindRAngle
)

// The rule order matters: lnk spans must win over a bare left angle,
// and a symbol followed by a colon lexes as a feature name.
var lexer = lex.NewLexer([]lex.Rule{
	{Pattern: regexp.MustCompile(`^\[`), Kind: kindLBrack, Name: `"["`},
	{Pattern: regexp.MustCompile(`^\]`), Kind: kindRBrack, Name: `"]"`},
	{Pattern: regexp.MustCompile(`^<(?:-?[0-9]+[:#]-?[0-9]+|@[0-9]+|[0-9]+(?: +[0-9]+)*)?>`), Kind: kindLnk, Name: "lnk"},
	{Pattern: regexp.MustCompile(`^"([^"\\]*(?:\\.[^"\\]*)*)"`), Kind: kindString, Name: "string"},
	{Pattern: regexp.MustCompile(`^'([^\s\]<>]+)`), Kind: kindQuotedPred, Name: "quoted predicate"},
	{Pattern: regexp.MustCompile(`^([^\s:<>\[\]]+):`), Kind: kindFeature, Name: "feature"},
	{Pattern: regexp.MustCompile(`^[^\s:<>\[\]]+`), Kind: kindSymbol, Name: "symbol"},
	{Pattern: regexp.MustCompile(`^<`), Kind: kindLAngle, Name: `"<"`},
	{Pattern: regexp.MustCompile(`^>`), Kind: kindRAngle, Name: `">"`},
})

// Codec is the SimpleMRS codec.
type Codec struct{}

func init() { codec.Register(Codec{}) }

func (Codec) Name() string { return "simplemrs" }

func (Codec) Extensions() []string { return []string{".mrs", ".simplemrs"} }

// Decode parses one serialized graph.
func (Codec) Decode(data []byte) (*mrs.Graph, error) {
	d := newDecoder(data)
	g, err := d.graph()
	if err != nil {
		return nil, err
	}
	if tok, err := d.ts.Peek(0); err != nil {
		return nil, err
	} else if !tok.IsEOF() {
		return nil, fmt.Errorf("line %d: trailing input after graph", tok.Line)
	}
	return g, nil
}

// DecodeAll parses a bank file holding any number of graphs in
// sequence, typically separated by blank lines.
func (Codec) DecodeAll(data []byte) ([]*mrs.Graph, error) {
	d := newDecoder(data)
	var out []*mrs.Graph
	for {
		tok, err := d.ts.Peek(0)
		if err != nil {
			return nil, err
		}
		if tok.IsEOF() {
			return out, nil
		}
		g, err := d.graph()
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
}

type decoder struct {
	ts *lex.TokenStream
	u  *mrs.Unifier
}

func newDecoder(data []byte) *decoder {
	return &decoder{ts: lex.NewTokenStream(lexer.Scan(bytes.NewReader(data)))}
}

func (d *decoder) graph() (*mrs.Graph, error) {
	// A fresh unifier per graph: identifiers are scoped to one graph.
	d.u = mrs.NewUnifier()
	var b mrs.Builder

	if _, err := d.ts.Expect(kindLBrack); err != nil {
		return nil, err
	}
	if tok, ok := d.ts.Accept(kindLnk); ok {
		lnk, err := mrs.ParseLnk(tok.Text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", tok.Line, err)
		}
		b.Lnk = lnk
	}
	if tok, ok := d.ts.Accept(kindString); ok {
		b.Surface = unescape(tok.Text)
	}

	for {
		tok, ok := d.ts.Accept(kindFeature)
		if !ok {
			break
		}
		var err error
		switch strings.ToUpper(tok.Text) {
		case "TOP", "LTOP":
			b.Top, err = d.variable()
		case "INDEX":
			b.Index, err = d.variable()
		case "RELS":
			b.EPs, err = d.rels()
		case "HCONS":
			b.HCons, err = d.hcons()
		case "ICONS":
			b.ICons, err = d.icons()
		default:
			return nil, fmt.Errorf("line %d: unexpected feature %q", tok.Line, tok.Text)
		}
		if err != nil {
			return nil, err
		}
	}

	if _, err := d.ts.Expect(kindRBrack); err != nil {
		return nil, err
	}
	b.Variables = d.u.Bindings()
	return b.Build()
}

// variable reads a variable reference with an optional inline property
// block, routing every mention through the unifier so partial and
// repeated declarations merge.
func (d *decoder) variable() (mrs.Variable, error) {
	tok, err := d.ts.Next()
	if err != nil {
		return mrs.Variable{}, err
	}
	if tok.Kind != kindSymbol {
		return mrs.Variable{}, &lex.SyntaxError{Line: tok.Line, Expected: "variable", Actual: fmt.Sprintf("%q", tok.Text)}
	}
	v, err := mrs.ParseVariable(tok.Text)
	if err != nil {
		return mrs.Variable{}, fmt.Errorf("line %d: %w", tok.Line, err)
	}

	if _, ok := d.ts.Accept(kindLBrack); !ok {
		if _, err := d.u.AddVariable(v, nil); err != nil {
			return mrs.Variable{}, err
		}
		return v, nil
	}

	sortText, err := d.ts.Expect(kindSymbol)
	if err != nil {
		return mrs.Variable{}, err
	}
	props := mrs.NewProperties()
	for {
		ftok, ok := d.ts.Accept(kindFeature)
		if !ok {
			break
		}
		vtok, err := d.ts.Next()
		if err != nil {
			return mrs.Variable{}, err
		}
		if vtok.Kind != kindSymbol && vtok.Kind != kindString {
			return mrs.Variable{}, &lex.SyntaxError{Line: vtok.Line, Expected: "property value", Actual: fmt.Sprintf("%q", vtok.Text)}
		}
		props.Set(ftok.Text, vtok.Text)
	}
	if _, err := d.ts.Expect(kindRBrack); err != nil {
		return mrs.Variable{}, err
	}

	if _, err := d.u.AddVariable(v, props); err != nil {
		return mrs.Variable{}, err
	}
	// The block's sort tag must agree with the reference's sort.
	if _, err := d.u.Add(v.VID(), strings.ToLower(sortText), nil); err != nil {
		return mrs.Variable{}, err
	}
	return v, nil
}

func (d *decoder) rels() ([]mrs.EP, error) {
	if _, err := d.ts.Expect(kindLAngle); err != nil {
		return nil, err
	}
	var eps []mrs.EP
	for {
		if _, ok := d.ts.Accept(kindRAngle); ok {
			return eps, nil
		}
		ep, err := d.ep()
		if err != nil {
			return nil, err
		}
		eps = append(eps, ep)
	}
}

func (d *decoder) ep() (mrs.EP, error) {
	var ep mrs.EP
	if _, err := d.ts.Expect(kindLBrack); err != nil {
		return ep, err
	}

	ptok, err := d.ts.Next()
	if err != nil {
		return ep, err
	}
	switch ptok.Kind {
	case kindSymbol:
		ep.Predicate = mrs.ParsePredicate(ptok.Text)
	case kindString, kindQuotedPred:
		ep.Predicate = mrs.NewSurfacePred(unescape(ptok.Text))
	default:
		return ep, &lex.SyntaxError{Line: ptok.Line, Expected: "predicate", Actual: fmt.Sprintf("%q", ptok.Text)}
	}
	if tok, ok := d.ts.Accept(kindLnk); ok {
		ep.Lnk, err = mrs.ParseLnk(tok.Text)
		if err != nil {
			return ep, fmt.Errorf("line %d: %w", tok.Line, err)
		}
	}
	if tok, ok := d.ts.Accept(kindString); ok {
		ep.Surface = unescape(tok.Text)
	}

	for {
		ftok, ok := d.ts.Accept(kindFeature)
		if !ok {
			break
		}
		role := strings.ToUpper(ftok.Text)
		if role == "LBL" {
			ep.Label, err = d.variable()
			if err != nil {
				return ep, err
			}
			continue
		}
		next, err := d.ts.Peek(0)
		if err != nil {
			return ep, err
		}
		if next.Kind == kindString {
			d.ts.Next()
			ep.Args = append(ep.Args, mrs.Arg{Role: role, Value: mrs.ConstValue(unescape(next.Text))})
			continue
		}
		v, err := d.variable()
		if err != nil {
			return ep, err
		}
		ep.Args = append(ep.Args, mrs.Arg{Role: role, Value: mrs.VarValue(v)})
	}

	if _, err := d.ts.Expect(kindRBrack); err != nil {
		return ep, err
	}
	if ep.Label.IsEmpty() {
		return ep, fmt.Errorf("predication %s has no LBL", ep.Predicate)
	}
	return ep, nil
}

func (d *decoder) hcons() ([]mrs.HCons, error) {
	if _, err := d.ts.Expect(kindLAngle); err != nil {
		return nil, err
	}
	var out []mrs.HCons
	for {
		if _, ok := d.ts.Accept(kindRAngle); ok {
			return out, nil
		}
		hi, err := d.variable()
		if err != nil {
			return nil, err
		}
		rtok, err := d.ts.Expect(kindSymbol)
		if err != nil {
			return nil, err
		}
		var reln mrs.Relation
		switch strings.ToLower(rtok) {
		case "qeq":
			reln = mrs.Qeq
		case "lheq":
			reln = mrs.Lheq
		case "outscopes":
			reln = mrs.Outscopes
		default:
			return nil, fmt.Errorf("unknown hcons relation %q", rtok)
		}
		lo, err := d.variable()
		if err != nil {
			return nil, err
		}
		out = append(out, mrs.HCons{Hi: hi, Relation: reln, Lo: lo})
	}
}

func (d *decoder) icons() ([]mrs.ICons, error) {
	if _, err := d.ts.Expect(kindLAngle); err != nil {
		return nil, err
	}
	var out []mrs.ICons
	for {
		if _, ok := d.ts.Accept(kindRAngle); ok {
			return out, nil
		}
		left, err := d.variable()
		if err != nil {
			return nil, err
		}
		reln, err := d.ts.Expect(kindSymbol)
		if err != nil {
			return nil, err
		}
		right, err := d.variable()
		if err != nil {
			return nil, err
		}
		out = append(out, mrs.ICons{Left: left, Relation: strings.ToLower(reln), Right: right})
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

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Encode serializes one graph, on a single line by default or with one
// feature per line when opts.Indent is set. Variable property blocks
// are written at the variable's first occurrence.
func (Codec) Encode(g *mrs.Graph, opts *codec.Options) ([]byte, error) {
	if opts == nil {
		opts = &codec.Options{}
	}
	e := &encoder{g: g, printed: make(map[string]bool)}

	sep := " "
	epSep := " "
	if opts.Indent {
		sep = "\n  "
		epSep = "\n          "
	}

	e.sb.WriteString("[")
	if g.Lnk().Kind != mrs.LnkNone {
		e.sb.WriteString(" " + g.Lnk().String())
	}
	if g.Surface() != "" {
		e.sb.WriteString(` "` + escape(g.Surface()) + `"`)
	}
	if top := g.Top(); !top.IsEmpty() {
		e.sb.WriteString(" TOP: ")
		e.variable(top)
	}
	if idx := g.Index(); !idx.IsEmpty() {
		e.sb.WriteString(sep + "INDEX: ")
		e.variable(idx)
	}

	eps := g.EPs()
	if len(eps) > 0 {
		e.sb.WriteString(sep + "RELS: <")
		for i, ep := range eps {
			if i == 0 {
				e.sb.WriteString(" ")
			} else {
				e.sb.WriteString(epSep)
			}
			e.ep(ep)
		}
		e.sb.WriteString(" >")
	}
	if hcons := g.HCons(); len(hcons) > 0 {
		e.sb.WriteString(sep + "HCONS: <")
		for _, hc := range hcons {
			e.sb.WriteString(" " + hc.Hi.String() + " " + string(hc.Relation) + " " + hc.Lo.String())
		}
		e.sb.WriteString(" >")
	}
	if icons := g.ICons(); len(icons) > 0 {
		e.sb.WriteString(sep + "ICONS: <")
		for _, ic := range icons {
			e.sb.WriteString(" " + ic.Left.String() + " " + ic.Relation + " " + ic.Right.String())
		}
		e.sb.WriteString(" >")
	}
	e.sb.WriteString(" ]")
	return []byte(e.sb.String()), nil
}

type encoder struct {
	g       *mrs.Graph
	sb      strings.Builder
	printed map[string]bool
}

func (e *encoder) variable(v mrs.Variable) {
	e.sb.WriteString(v.String())
	if e.printed[v.String()] {
		return
	}
	e.printed[v.String()] = true
	props := e.g.Properties(v)
	if props.Len() == 0 {
		return
	}
	e.sb.WriteString(" [ " + v.Sort())
	for _, k := range props.Keys() {
		val, _ := props.Get(k)
		e.sb.WriteString(" " + k + ": " + val)
	}
	e.sb.WriteString(" ]")
}

func (e *encoder) ep(ep mrs.EP) {
	e.sb.WriteString("[ " + ep.Predicate.String())
	if ep.Lnk.Kind != mrs.LnkNone {
		e.sb.WriteString(ep.Lnk.String())
	}
	if ep.Surface != "" {
		e.sb.WriteString(` "` + escape(ep.Surface) + `"`)
	}
	e.sb.WriteString(" LBL: ")
	e.variable(ep.Label)
	for _, a := range ep.Args {
		e.sb.WriteString(" " + a.Role + ": ")
		if c, ok := a.Value.Const(); ok {
			e.sb.WriteString(`"` + escape(c) + `"`)
			continue
		}
		v, _ := a.Value.Var()
		e.variable(v)
	}
	e.sb.WriteString(" ]")
}
