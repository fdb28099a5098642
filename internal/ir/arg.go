package ir

import "strings"

// Arg is an ordered sequence of typed values (spec §3, "IR argument").
// Length 1 is a scalar reference or literal; length > 1 is a subscripted
// variable or function call, where element 0 is the variable/function name
// and the remaining elements are subscripts/call arguments (an empty
// element marks an omitted optional argument).
type Arg []TypedValue

// NewScalarArg builds a length-1 Arg from a single typed value.
func NewScalarArg(value string, t Type) Arg {
	return Arg{NewTypedValue(value, t)}
}

// IsScalar reports whether the argument is a plain reference or literal.
func (a Arg) IsScalar() bool { return len(a) == 1 }

// IsComposite reports whether the argument is subscripted or a call.
func (a Arg) IsComposite() bool { return len(a) > 1 }

// Name returns the base variable/function name (element 0's value).
func (a Arg) Name() string {
	if len(a) == 0 {
		return ""
	}
	return a[0].Value
}

// BaseType returns element 0's type.
func (a Arg) BaseType() Type {
	if len(a) == 0 {
		return TypeUnknown
	}
	return a[0].Type
}

// Subs returns the subscript/call-argument elements (everything after
// element 0).
func (a Arg) Subs() []TypedValue {
	if len(a) <= 1 {
		return nil
	}
	return a[1:]
}

// Equal reports structural equality between two Args.
func (a Arg) Equal(b Arg) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (a Arg) String() string {
	if len(a) == 0 {
		return ""
	}
	if a.IsScalar() {
		return a[0].String()
	}
	var sb strings.Builder
	sb.WriteString(a[0].String())
	sb.WriteByte('(')
	for i, s := range a.Subs() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// References reports whether the argument, anywhere in its name or
// subscripts, mentions the identifier val.
func (a Arg) References(val string) bool {
	for _, tv := range a {
		if tv.Value == val {
			return true
		}
	}
	return false
}
