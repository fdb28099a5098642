// Package symbols implements the symbol & scope manager (component C9):
// per-namespace and global variable/function tables, generated-name
// conventions, and OPTION EXPLICIT enforcement (spec §4.9).
package symbols

import (
	"fmt"

	"github.com/basic1rv32/toolchain/internal/ir"
)

// Variable is one declared variable record (spec §3, "Variable record").
type Variable struct {
	Namespace    string
	Name         string // source name, as written (e.g. "A%")
	GenName      string // "<ns>::__VAR_A" or "<ns>::__MEM_A"
	Type         ir.Type
	DimCount     int
	DimBounds    [][2]int64 // [lower,upper] per dimension, when known
	IsVolatile   bool
	IsMemMapped  bool
	IsStatic     bool
	IsConst      bool
	IsGlobal     bool
	Address      int64 // valid when IsMemMapped
	HasAddress   bool
	InitValues   []string
}

// Function is one user-defined function record (spec §3, "User function
// record").
type Function struct {
	PublicName   string
	InternalName string // "__DEF_<name>" or "<ns>::__DEF_<name>"
	IsGlobal     bool
	ReturnType   ir.Type
	ArgNames     []string
	ArgTypes     []ir.Type
	ArgOptional  []bool
	ArgDefaults  []string
	IsStandard   bool
}

// Table is one namespace's variable/function table plus a shared global
// table reference (spec §4.9: "name resolution... checks namespace first,
// then global").
type Table struct {
	Namespace      string
	vars           map[string]*Variable
	fns            map[string]*Function
	Global         *Table // nil for the global table itself
	OptionExplicit bool
}

// NewGlobal creates the shared global table.
func NewGlobal() *Table {
	return &Table{vars: map[string]*Variable{}, fns: map[string]*Function{}}
}

// NewNamespace creates a per-file table chained to global.
func NewNamespace(namespace string, global *Table) *Table {
	return &Table{Namespace: namespace, vars: map[string]*Variable{}, fns: map[string]*Function{}, Global: global}
}

func genVarName(ns, name string, memMapped bool) string {
	prefix := "__VAR_"
	if memMapped {
		prefix = "__MEM_"
	}
	if ns == "" {
		return prefix + name
	}
	return ns + "::" + prefix + name
}

// Declare registers a new variable. It is an error (AlreadyInUse) to
// redeclare a name already present in this table with a different type or
// dimension count (spec §3: "must not be declared twice" for memory-mapped;
// §7: "redefining variable with different type/dimensions").
func (t *Table) Declare(v *Variable) (*Variable, error) {
	if existing, ok := t.vars[v.Name]; ok {
		if existing.Type != v.Type || existing.DimCount != v.DimCount {
			return nil, fmt.Errorf("redefining variable %q with different type/dimensions", v.Name)
		}
		if existing.IsMemMapped && v.IsMemMapped {
			return nil, fmt.Errorf("memory-mapped variable %q already declared", v.Name)
		}
		return existing, nil
	}
	v.Namespace = t.Namespace
	v.GenName = genVarName(t.Namespace, v.Name, v.IsMemMapped)
	if v.IsGlobal {
		v.GenName = genVarName("", v.Name, v.IsMemMapped)
	}
	t.vars[v.Name] = v
	return v, nil
}

// Lookup resolves name: namespace table first, then global.
func (t *Table) Lookup(name string) (*Variable, bool) {
	if v, ok := t.vars[name]; ok {
		return v, true
	}
	if t.Global != nil {
		return t.Global.Lookup(name)
	}
	return nil, false
}

// MustResolve enforces OPTION EXPLICIT: an unresolved name is an error when
// explicit declarations are required, otherwise it is implicitly declared
// as a non-subscripted variable of the type implied by its
// suffix (spec §4.8: "a missing keyword... DIM... implicit for undeclared
// names unless OPTION EXPLICIT").
func (t *Table) MustResolve(name string) (*Variable, error) {
	if v, ok := t.Lookup(name); ok {
		return v, nil
	}
	if t.OptionExplicit {
		return nil, fmt.Errorf("unknown identifier %q (OPTION EXPLICIT is set)", name)
	}
	return t.Declare(&Variable{Name: name, Type: ImpliedType(name)})
}

// ImpliedType derives a variable's type from its trailing specifier
// ("%" => INT, "$" => STRING, otherwise WORD as the default numeric type).
func ImpliedType(name string) ir.Type {
	if len(name) == 0 {
		return ir.TypeWord
	}
	switch name[len(name)-1] {
	case '%':
		return ir.TypeInt
	case '$':
		return ir.TypeString
	default:
		return ir.TypeWord
	}
}

// DeclareFunction registers a user function signature (pass 1 of C8).
func (t *Table) DeclareFunction(f *Function) (*Function, error) {
	if _, ok := t.fns[f.PublicName]; ok {
		return nil, fmt.Errorf("function %q already declared", f.PublicName)
	}
	if f.IsGlobal {
		f.InternalName = "__DEF_" + f.PublicName
	} else {
		f.InternalName = t.Namespace + "::__DEF_" + f.PublicName
	}
	t.fns[f.PublicName] = f
	return f, nil
}

// LookupFunction resolves a call target in the order spec §4.9 mandates:
// standard library (checked by the caller via internal/stdfn before this),
// then local (namespace) user function, then global user function.
func (t *Table) LookupFunction(name string) (*Function, bool) {
	if f, ok := t.fns[name]; ok {
		return f, true
	}
	if t.Global != nil {
		return t.Global.LookupFunction(name)
	}
	return nil, false
}

// Counters holds a label counter and a local counter. Nothing in the
// module uses it; ir.Commands keeps its own label and local counters.
type Counters struct {
	NextLabel int
	NextLocal int
}
