// Package stdfn implements the standard library of BASIC built-in
// functions, grounded on B1_CMP_FNS in
// _examples/original_source/common/source/b1cmp.h: a fixed table of
// (name, return type, argument list, internal name) records consulted by
// both the parser (call resolution, spec §4.9) and the optimizer
// (immediate-argument folding, spec §4.10 pass 14-15).
package stdfn

import "github.com/basic1rv32/toolchain/internal/ir"

// Arg describes one formal argument of a standard function.
type Arg struct {
	Type     ir.Type
	Optional bool
	Default  string
}

// Fn is one standard function's signature.
type Fn struct {
	Name    string
	Ret     ir.Type
	Args    []Arg
	IntName string // internal (mangled) name emitted into IR CALL targets
}

var table = []Fn{
	{"LEN", ir.TypeWord, []Arg{{Type: ir.TypeString}}, "__LEN"},
	{"ASC", ir.TypeByte, []Arg{{Type: ir.TypeString}}, "__ASC"},
	{"CHR$", ir.TypeString, []Arg{{Type: ir.TypeByte}}, "__CHR"},
	{"VAL", ir.TypeLong, []Arg{{Type: ir.TypeString}}, "__VAL"},
	{"STR$", ir.TypeString, []Arg{{Type: ir.TypeLong}}, "__STR"},
	{"ABS", ir.TypeLong, []Arg{{Type: ir.TypeLong}}, "__ABS"},
	{"SGN", ir.TypeInt, []Arg{{Type: ir.TypeLong}}, "__SGN"},
	{"CBYTE", ir.TypeByte, []Arg{{Type: ir.TypeLong}}, "__CBYTE"},
	{"CINT", ir.TypeInt, []Arg{{Type: ir.TypeLong}}, "__CINT"},
	{"CWRD", ir.TypeWord, []Arg{{Type: ir.TypeLong}}, "__CWRD"},
	{"CLNG", ir.TypeLong, []Arg{{Type: ir.TypeLong}}, "__CLNG"},
	{"MID$", ir.TypeString, []Arg{{Type: ir.TypeString}, {Type: ir.TypeWord}, {Type: ir.TypeWord, Optional: true, Default: "32767"}}, "__MID"},
	{"LEFT$", ir.TypeString, []Arg{{Type: ir.TypeString}, {Type: ir.TypeWord}}, "__LEFT"},
	{"RIGHT$", ir.TypeString, []Arg{{Type: ir.TypeString}, {Type: ir.TypeWord}}, "__RIGHT"},
	{"UBOUND", ir.TypeLong, []Arg{{Type: ir.TypeVarRef}, {Type: ir.TypeByte, Optional: true, Default: "1"}}, "__UBOUND"},
	{"LBOUND", ir.TypeLong, []Arg{{Type: ir.TypeVarRef}, {Type: ir.TypeByte, Optional: true, Default: "1"}}, "__LBOUND"},
	// IIF is a pseudo-function: its result type is the common type of the
	// two value arms (spec §4.11), resolved by the parser rather than by a
	// fixed Ret here.
	{"IIF", ir.TypeUnknown, []Arg{{Type: ir.TypeByte}, {Type: ir.TypeUnknown}, {Type: ir.TypeUnknown}}, "__IIF"},
}

var byName map[string]*Fn

func init() {
	byName = make(map[string]*Fn, len(table))
	for i := range table {
		byName[table[i].Name] = &table[i]
	}
}

// Exists reports whether name is a standard function.
func Exists(name string) bool {
	_, ok := byName[name]
	return ok
}

// Get returns the standard function named name, or nil.
func Get(name string) *Fn {
	return byName[name]
}

// InternalName returns the mangled name emitted in IR CALL targets for a
// standard function, or "" if name isn't one.
func InternalName(name string) string {
	if fn := Get(name); fn != nil {
		return fn.IntName
	}
	return ""
}

// IsAssignable reports whether an argument of type src may be passed to a
// formal parameter of type dst under the "assignable" compatibility rule
// used for standard-function overload resolution (spec §4.11): exact match,
// or anything into STRING, or any-numeric into any-numeric when neither
// side is a STRING.
func IsAssignable(src, dst ir.Type) bool {
	if src == dst {
		return true
	}
	return ir.Assignable(src, dst)
}
