// Package mrsjson implements the JSON serialization of the graph
// model. The object layout mirrors the conventional mrs-json mapping:
//
//	{"top": "h0", "index": "e2",
//	 "relations": [{"predicate": "_bark_v_1", "label": "h1",
//	                "arguments": {"ARG0": "e2", "ARG1": "x3"},
//	                "lnk": {"from": 8, "to": 14}}],
//	 "constraints": [{"relation": "qeq", "high": "h0", "low": "h1"}],
//	 "variables": {"e2": {"TENSE": "pres"}}}
package mrsjson

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/delph-in/gomrs/codec"
	"github.com/delph-in/gomrs/mrs"
)

// Codec is the JSON codec.
type Codec struct{}

func init() { codec.Register(Codec{}) }

func (Codec) Name() string { return "mrs-json" }

func (Codec) Extensions() []string { return []string{".mrs.json"} }

type jsonGraph struct {
	Top         string                       `json:"top,omitempty"`
	Index       string                       `json:"index,omitempty"`
	Relations   []jsonEP                     `json:"relations"`
	Constraints []jsonHCons                  `json:"constraints,omitempty"`
	ICons       []jsonICons                  `json:"icons,omitempty"`
	Variables   map[string]map[string]string `json:"variables,omitempty"`
	Surface     string                       `json:"surface,omitempty"`
	Identifier  string                       `json:"identifier,omitempty"`
}

type jsonEP struct {
	Predicate string            `json:"predicate"`
	Label     string            `json:"label"`
	Arguments map[string]string `json:"arguments,omitempty"`
	Lnk       *jsonLnk          `json:"lnk,omitempty"`
	Surface   string            `json:"surface,omitempty"`
	Base      string            `json:"base,omitempty"`
}

type jsonLnk struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type jsonHCons struct {
	Relation string `json:"relation"`
	High     string `json:"high"`
	Low      string `json:"low"`
}

type jsonICons struct {
	Relation string `json:"relation"`
	Left     string `json:"left"`
	Right    string `json:"right"`
}

// Decode parses one serialized graph.
func (Codec) Decode(data []byte) (*mrs.Graph, error) {
	var jg jsonGraph
	if err := json.Unmarshal(data, &jg); err != nil {
		return nil, fmt.Errorf("decoding mrs-json: %w", err)
	}

	u := mrs.NewUnifier()
	var b mrs.Builder
	b.Surface = jg.Surface
	b.Identifier = jg.Identifier

	var err error
	if jg.Top != "" {
		if b.Top, err = u.Mention(jg.Top); err != nil {
			return nil, err
		}
	}
	if jg.Index != "" {
		if b.Index, err = u.Mention(jg.Index); err != nil {
			return nil, err
		}
	}

	for _, jep := range jg.Relations {
		ep := mrs.EP{
			Predicate: mrs.ParsePredicate(jep.Predicate),
			Surface:   jep.Surface,
			Base:      jep.Base,
		}
		if jep.Label == "" {
			return nil, fmt.Errorf("relation %q has no label", jep.Predicate)
		}
		if ep.Label, err = u.Mention(jep.Label); err != nil {
			return nil, err
		}
		if jep.Lnk != nil {
			ep.Lnk = mrs.CharSpan(jep.Lnk.From, jep.Lnk.To)
		}
		for _, role := range sortedKeys(jep.Arguments) {
			raw := jep.Arguments[role]
			if role == mrs.ConstantRole {
				ep.Args = append(ep.Args, mrs.Arg{Role: role, Value: mrs.ConstValue(raw)})
				continue
			}
			v, verr := u.Mention(raw)
			if verr != nil {
				// Not variable-shaped: a literal constant value.
				ep.Args = append(ep.Args, mrs.Arg{Role: role, Value: mrs.ConstValue(raw)})
				continue
			}
			ep.Args = append(ep.Args, mrs.Arg{Role: role, Value: mrs.VarValue(v)})
		}
		b.EPs = append(b.EPs, ep)
	}

	for _, jhc := range jg.Constraints {
		hi, err := u.Mention(jhc.High)
		if err != nil {
			return nil, err
		}
		lo, err := u.Mention(jhc.Low)
		if err != nil {
			return nil, err
		}
		var reln mrs.Relation
		switch jhc.Relation {
		case "qeq":
			reln = mrs.Qeq
		case "lheq":
			reln = mrs.Lheq
		case "outscopes":
			reln = mrs.Outscopes
		default:
			return nil, fmt.Errorf("unknown hcons relation %q", jhc.Relation)
		}
		b.HCons = append(b.HCons, mrs.HCons{Hi: hi, Relation: reln, Lo: lo})
	}

	for _, jic := range jg.ICons {
		left, err := u.Mention(jic.Left)
		if err != nil {
			return nil, err
		}
		right, err := u.Mention(jic.Right)
		if err != nil {
			return nil, err
		}
		b.ICons = append(b.ICons, mrs.ICons{Left: left, Relation: jic.Relation, Right: right})
	}

	for id, bag := range jg.Variables {
		v, err := mrs.ParseVariable(id)
		if err != nil {
			return nil, fmt.Errorf("variables key %q: %w", id, err)
		}
		props := mrs.NewProperties()
		for _, k := range sortedKeys(bag) {
			props.Set(k, bag[k])
		}
		if _, err := u.AddVariable(v, props); err != nil {
			return nil, err
		}
	}

	b.Variables = u.Bindings()
	return b.Build()
}

// Encode serializes one graph. Indent selects two-space-indented
// output.
func (Codec) Encode(g *mrs.Graph, opts *codec.Options) ([]byte, error) {
	if opts == nil {
		opts = &codec.Options{}
	}

	jg := jsonGraph{
		Relations:  []jsonEP{},
		Surface:    g.Surface(),
		Identifier: g.Identifier(),
	}
	if !g.Top().IsEmpty() {
		jg.Top = g.Top().String()
	}
	if !g.Index().IsEmpty() {
		jg.Index = g.Index().String()
	}

	for _, ep := range g.EPs() {
		jep := jsonEP{
			Predicate: ep.Predicate.String(),
			Label:     ep.Label.String(),
			Surface:   ep.Surface,
			Base:      ep.Base,
		}
		if ep.Lnk.Kind == mrs.LnkCharSpan {
			jep.Lnk = &jsonLnk{From: ep.Lnk.From, To: ep.Lnk.To}
		}
		if len(ep.Args) > 0 {
			jep.Arguments = make(map[string]string, len(ep.Args))
			for _, a := range ep.Args {
				if c, ok := a.Value.Const(); ok {
					// Arguments are bare strings in this mapping, so a
					// variable-shaped constant outside CARG would be
					// read back as a variable. Refuse rather than
					// silently change the graph.
					if a.Role != mrs.ConstantRole {
						if _, err := mrs.ParseVariable(c); err == nil {
							return nil, fmt.Errorf("constant %q in role %s of %s is not representable in mrs-json",
								c, a.Role, ep.Predicate)
						}
					}
					jep.Arguments[a.Role] = c
				} else if v, ok := a.Value.Var(); ok {
					jep.Arguments[a.Role] = v.String()
				}
			}
		}
		jg.Relations = append(jg.Relations, jep)
	}

	for _, hc := range g.HCons() {
		jg.Constraints = append(jg.Constraints, jsonHCons{
			Relation: string(hc.Relation),
			High:     hc.Hi.String(),
			Low:      hc.Lo.String(),
		})
	}
	for _, ic := range g.ICons() {
		jg.ICons = append(jg.ICons, jsonICons{
			Relation: ic.Relation,
			Left:     ic.Left.String(),
			Right:    ic.Right.String(),
		})
	}

	for _, binding := range g.Variables() {
		if binding.Properties.Len() == 0 {
			continue
		}
		if jg.Variables == nil {
			jg.Variables = make(map[string]map[string]string)
		}
		bag := make(map[string]string, binding.Properties.Len())
		for _, k := range binding.Properties.Keys() {
			val, _ := binding.Properties.Get(k)
			bag[k] = val
		}
		jg.Variables[binding.Variable.String()] = bag
	}

	if opts.Indent {
		return json.MarshalIndent(jg, "", "  ")
	}
	return json.Marshal(jg)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
