package mrs

import "strings"

// Reserved argument roles.
const (
	// IntrinsicRole holds a predication's characteristic variable.
	IntrinsicRole = "ARG0"
	// RestrictorRole marks a quantifier's restriction scope. A
	// predication is a quantifier iff it carries this role.
	RestrictorRole = "RSTR"
	// BodyRole marks a quantifier's body scope.
	BodyRole = "BODY"
	// ConstantRole holds a string constant rather than a variable.
	ConstantRole = "CARG"
)

// Value is an argument value: either a variable or a string constant.
type Value struct {
	v       Variable
	c       string
	isConst bool
}

// VarValue wraps a variable as an argument value.
func VarValue(v Variable) Value { return Value{v: v} }

// ConstValue wraps a string constant as an argument value.
func ConstValue(s string) Value { return Value{c: s, isConst: true} }

// Var returns the variable, reporting false for constants.
func (v Value) Var() (Variable, bool) {
	if v.isConst {
		return Variable{}, false
	}
	return v.v, !v.v.IsEmpty()
}

// Const returns the constant, reporting false for variables.
func (v Value) Const() (string, bool) {
	return v.c, v.isConst
}

// String renders the value for serialization; constants are quoted.
func (v Value) String() string {
	if v.isConst {
		return `"` + v.c + `"`
	}
	return v.v.String()
}

// Arg is one role/value pair of a predication. Argument order is
// significant for serialization only.
type Arg struct {
	Role  string
	Value Value
}

// EP is an elementary predication: one predicate-argument unit at a
// scope identified by its label handle.
type EP struct {
	Predicate Predicate
	Label     Variable
	Args      []Arg
	Lnk       Lnk
	Surface   string
	Base      string
}

// Arg looks up an argument value by role name.
func (e EP) Arg(role string) (Value, bool) {
	for _, a := range e.Args {
		if a.Role == role {
			return a.Value, true
		}
	}
	return Value{}, false
}

// IsQuantifier reports whether the predication carries the restriction
// scope role.
func (e EP) IsQuantifier() bool {
	_, ok := e.Arg(RestrictorRole)
	return ok
}

// Intrinsic returns the characteristic variable (the ARG0 value),
// reporting false when absent or constant.
func (e EP) Intrinsic() (Variable, bool) {
	v, ok := e.Arg(IntrinsicRole)
	if !ok {
		return Variable{}, false
	}
	return v.Var()
}

// Arity is the number of arguments.
func (e EP) Arity() int { return len(e.Args) }

func (e EP) String() string {
	var sb strings.Builder
	sb.WriteString("[ ")
	sb.WriteString(e.Predicate.String())
	sb.WriteString(" LBL: ")
	sb.WriteString(e.Label.String())
	for _, a := range e.Args {
		sb.WriteString(" ")
		sb.WriteString(a.Role)
		sb.WriteString(": ")
		sb.WriteString(a.Value.String())
	}
	sb.WriteString(" ]")
	return sb.String()
}
