// Package mrx implements the MRX XML serialization. The format writes
// every variable occurrence as a <var> element carrying the sort and
// any property pairs, so one graph typically declares the same
// variable several times with partial information; decoding relies on
// the unifier to reconcile the mentions.
package mrx

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/delph-in/gomrs/codec"
	"github.com/delph-in/gomrs/mrs"
)

// Codec is the MRX codec.
type Codec struct{}

func init() { codec.Register(Codec{}) }

func (Codec) Name() string { return "mrx" }

func (Codec) Extensions() []string { return []string{".mrx"} }

type xmlMRS struct {
	XMLName xml.Name   `xml:"mrs"`
	CFrom   *int       `xml:"cfrom,attr,omitempty"`
	CTo     *int       `xml:"cto,attr,omitempty"`
	Ident   string     `xml:"ident,attr,omitempty"`
	Top     *xmlLabel  `xml:"label"`
	Index   *xmlVar    `xml:"var"`
	EPs     []xmlEP    `xml:"ep"`
	HCons   []xmlHCons `xml:"hcons"`
	ICons   []xmlICons `xml:"icons"`
}

type xmlLabel struct {
	Vid int `xml:"vid,attr"`
}

type xmlVar struct {
	Vid   int            `xml:"vid,attr"`
	Sort  string         `xml:"sort,attr,omitempty"`
	Extra []xmlExtraPair `xml:"extrapair"`
}

type xmlExtraPair struct {
	Path  string `xml:"path"`
	Value string `xml:"value"`
}

type xmlEP struct {
	CFrom    *int         `xml:"cfrom,attr,omitempty"`
	CTo      *int         `xml:"cto,attr,omitempty"`
	Surface  string       `xml:"surface,attr,omitempty"`
	Pred     string       `xml:"pred,omitempty"`
	SPred    string       `xml:"spred,omitempty"`
	RealPred *xmlRealPred `xml:"realpred"`
	Label    xmlLabel     `xml:"label"`
	FVPairs  []xmlFVPair  `xml:"fvpair"`
}

type xmlRealPred struct {
	Lemma string `xml:"lemma,attr"`
	Pos   string `xml:"pos,attr"`
	Sense string `xml:"sense,attr,omitempty"`
}

type xmlFVPair struct {
	RArgName string  `xml:"rargname"`
	Var      *xmlVar `xml:"var"`
	Constant *string `xml:"constant"`
}

type xmlHCons struct {
	HReln string `xml:"hreln,attr"`
	Hi    xmlVar `xml:"hi>var"`
	Lo    xmlVar `xml:"lo>var"`
}

type xmlICons struct {
	IReln string `xml:"ireln,attr"`
	Left  xmlVar `xml:"left>var"`
	Right xmlVar `xml:"right>var"`
}

// Decode parses one serialized graph. Mentions are registered in a
// first pass and the graph assembled in a second, because a sort-less
// reference may only be resolved by a later mention.
func (Codec) Decode(data []byte) (*mrs.Graph, error) {
	var xg xmlMRS
	if err := xml.Unmarshal(data, &xg); err != nil {
		return nil, fmt.Errorf("decoding mrx: %w", err)
	}

	u := mrs.NewUnifier()
	if err := registerMentions(u, &xg); err != nil {
		return nil, err
	}

	var b mrs.Builder
	b.Identifier = xg.Ident
	if xg.CFrom != nil && xg.CTo != nil {
		b.Lnk = mrs.CharSpan(*xg.CFrom, *xg.CTo)
	}
	if xg.Top != nil {
		b.Top = u.Variable(xg.Top.Vid)
	}
	if xg.Index != nil {
		b.Index = u.Variable(xg.Index.Vid)
	}

	for _, xep := range xg.EPs {
		ep, err := assembleEP(u, xep)
		if err != nil {
			return nil, err
		}
		b.EPs = append(b.EPs, ep)
	}

	for _, xhc := range xg.HCons {
		var reln mrs.Relation
		switch strings.ToLower(xhc.HReln) {
		case "qeq":
			reln = mrs.Qeq
		case "lheq":
			reln = mrs.Lheq
		case "outscopes":
			reln = mrs.Outscopes
		default:
			return nil, fmt.Errorf("unknown hcons relation %q", xhc.HReln)
		}
		b.HCons = append(b.HCons, mrs.HCons{
			Hi:       u.Variable(xhc.Hi.Vid),
			Relation: reln,
			Lo:       u.Variable(xhc.Lo.Vid),
		})
	}
	for _, xic := range xg.ICons {
		b.ICons = append(b.ICons, mrs.ICons{
			Left:     u.Variable(xic.Left.Vid),
			Relation: strings.ToLower(xic.IReln),
			Right:    u.Variable(xic.Right.Vid),
		})
	}

	b.Variables = u.Bindings()
	return b.Build()
}

// registerMentions runs every <var> and <label> in the document
// through the unifier.
func registerMentions(u *mrs.Unifier, xg *xmlMRS) error {
	if xg.Top != nil {
		if _, err := u.Add(xg.Top.Vid, mrs.HandleSort, nil); err != nil {
			return err
		}
	}
	if xg.Index != nil {
		if err := mention(u, *xg.Index); err != nil {
			return err
		}
	}
	for _, xep := range xg.EPs {
		if _, err := u.Add(xep.Label.Vid, mrs.HandleSort, nil); err != nil {
			return err
		}
		for _, fv := range xep.FVPairs {
			if fv.Var == nil {
				continue
			}
			if err := mention(u, *fv.Var); err != nil {
				return err
			}
		}
	}
	for _, xhc := range xg.HCons {
		for _, xv := range []xmlVar{xhc.Hi, xhc.Lo} {
			if err := mention(u, xv); err != nil {
				return err
			}
		}
	}
	for _, xic := range xg.ICons {
		for _, xv := range []xmlVar{xic.Left, xic.Right} {
			if err := mention(u, xv); err != nil {
				return err
			}
		}
	}
	return nil
}

// mention merges one <var> element. The sort attribute may be absent
// on bare references.
func mention(u *mrs.Unifier, xv xmlVar) error {
	var props *mrs.Properties
	if len(xv.Extra) > 0 {
		props = mrs.NewProperties()
		for _, ep := range xv.Extra {
			props.Set(strings.ToUpper(ep.Path), ep.Value)
		}
	}
	_, err := u.Add(xv.Vid, strings.ToLower(xv.Sort), props)
	return err
}

func assembleEP(u *mrs.Unifier, xep xmlEP) (mrs.EP, error) {
	var ep mrs.EP
	switch {
	case xep.RealPred != nil:
		ep.Predicate = mrs.NewRealPred(xep.RealPred.Lemma, xep.RealPred.Pos, xep.RealPred.Sense)
	case xep.SPred != "":
		ep.Predicate = mrs.NewSurfacePred(xep.SPred)
	case xep.Pred != "":
		ep.Predicate = mrs.ParsePredicate(xep.Pred)
	default:
		return ep, fmt.Errorf("ep with label vid %d has no predicate", xep.Label.Vid)
	}

	ep.Label = u.Variable(xep.Label.Vid)
	ep.Surface = xep.Surface
	if xep.CFrom != nil && xep.CTo != nil {
		ep.Lnk = mrs.CharSpan(*xep.CFrom, *xep.CTo)
	}

	for _, fv := range xep.FVPairs {
		role := strings.ToUpper(fv.RArgName)
		switch {
		case fv.Constant != nil:
			ep.Args = append(ep.Args, mrs.Arg{Role: role, Value: mrs.ConstValue(*fv.Constant)})
		case fv.Var != nil:
			ep.Args = append(ep.Args, mrs.Arg{Role: role, Value: mrs.VarValue(u.Variable(fv.Var.Vid))})
		default:
			return ep, fmt.Errorf("fvpair %s has neither var nor constant", role)
		}
	}
	return ep, nil
}

// Encode serializes one graph. Every variable occurrence carries the
// full sort and property pairs, as grammar processors emit it.
func (Codec) Encode(g *mrs.Graph, opts *codec.Options) ([]byte, error) {
	if opts == nil {
		opts = &codec.Options{}
	}

	xg := xmlMRS{Ident: g.Identifier()}
	if g.Lnk().Kind == mrs.LnkCharSpan {
		from, to := g.Lnk().From, g.Lnk().To
		xg.CFrom, xg.CTo = &from, &to
	}
	if top := g.Top(); !top.IsEmpty() {
		xg.Top = &xmlLabel{Vid: top.VID()}
	}
	if idx := g.Index(); !idx.IsEmpty() {
		xv := encodeVar(g, idx)
		xg.Index = &xv
	}

	for _, ep := range g.EPs() {
		xep := xmlEP{
			Label:   xmlLabel{Vid: ep.Label.VID()},
			Surface: ep.Surface,
		}
		switch ep.Predicate.Kind {
		case mrs.RealPred:
			xep.RealPred = &xmlRealPred{
				Lemma: ep.Predicate.Lemma,
				Pos:   ep.Predicate.Pos,
				Sense: ep.Predicate.Sense,
			}
		case mrs.SurfacePred:
			xep.SPred = ep.Predicate.Name
		default:
			xep.Pred = ep.Predicate.Name
		}
		if ep.Lnk.Kind == mrs.LnkCharSpan {
			from, to := ep.Lnk.From, ep.Lnk.To
			xep.CFrom, xep.CTo = &from, &to
		}
		for _, a := range ep.Args {
			fv := xmlFVPair{RArgName: a.Role}
			if c, ok := a.Value.Const(); ok {
				fv.Constant = &c
			} else if v, ok := a.Value.Var(); ok {
				xv := encodeVar(g, v)
				fv.Var = &xv
			}
			xep.FVPairs = append(xep.FVPairs, fv)
		}
		xg.EPs = append(xg.EPs, xep)
	}

	for _, hc := range g.HCons() {
		xg.HCons = append(xg.HCons, xmlHCons{
			HReln: string(hc.Relation),
			Hi:    encodeVar(g, hc.Hi),
			Lo:    encodeVar(g, hc.Lo),
		})
	}
	for _, ic := range g.ICons() {
		xg.ICons = append(xg.ICons, xmlICons{
			IReln: ic.Relation,
			Left:  encodeVar(g, ic.Left),
			Right: encodeVar(g, ic.Right),
		})
	}

	if opts.Indent {
		return xml.MarshalIndent(xg, "", "  ")
	}
	return xml.Marshal(xg)
}

func encodeVar(g *mrs.Graph, v mrs.Variable) xmlVar {
	xv := xmlVar{Vid: v.VID(), Sort: v.Sort()}
	props := g.Properties(v)
	for _, k := range props.Keys() {
		val, _ := props.Get(k)
		xv.Extra = append(xv.Extra, xmlExtraPair{Path: k, Value: val})
	}
	return xv
}
