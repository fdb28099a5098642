// Package typeinfer implements the ascending Type Inference & Propagation
// pass (component C11, spec §4.11): one linear sweep over a namespace's IR
// command list that rebinds every operand naming a declared variable or
// local to that declaration's recorded type. The BASIC front end types
// almost every operand correctly as it emits it, so in the common case
// this pass is a no-op; its purpose is the declaration-table rebind the
// spec requires as an explicit pipeline stage in its own right, run once
// between the optimizer's two fixed-point rounds (spec §2: "... → C10 →
// C11 → C10 again → IR text file"), so that any operand an earlier C10
// round left mistyped — most plausibly a rewritten/renamed operand from
// one of the optimizer's local-reuse passes — is corrected before the
// second C10 round runs against it.
package typeinfer

import "github.com/basic1rv32/toolchain/internal/ir"

// Infer rebinds operand types from cmds' own declaration table (its GA/MA/
// LA records) and reports whether anything changed.
func Infer(cmds []*ir.Command) bool {
	table := declarationTable(cmds)
	changed := false
	for _, c := range cmds {
		if c.Kind != ir.CmdOperation {
			continue
		}
		for i, a := range c.Args {
			if rebound, ok := rebind(a, table); ok {
				c.Args[i] = rebound
				changed = true
			}
		}
	}
	return changed
}

// declarationTable scans GA/MA/LA records for every name's declared type
// (spec §4.11: "bind its type from the declaration table").
func declarationTable(cmds []*ir.Command) map[string]ir.Type {
	table := map[string]ir.Type{}
	for _, c := range cmds {
		if c.Kind != ir.CmdOperation || len(c.Args) < 2 || !c.Args[0].IsScalar() {
			continue
		}
		switch c.Name {
		case ir.MnGlobalAlloc, ir.MnMemAlloc, ir.MnLocalAlloc:
			table[c.Args[0].Name()] = c.Args[1].BaseType()
		}
	}
	return table
}

// rebind returns a, with every element's type corrected against table,
// when at least one element names a declared variable whose recorded type
// disagrees with the type already carried there. Immediate literals are
// left untouched: C10's own folds already carry the correct minimal type
// (spec §4.11's "narrowest fit" rule) forward on every literal they
// produce. VARREF-typed name operands (the variable named by a GA/MA/LA/
// LF/GF record itself) are left untouched as well.
func rebind(a ir.Arg, table map[string]ir.Type) (ir.Arg, bool) {
	if len(a) == 0 {
		return a, false
	}
	out := make(ir.Arg, len(a))
	copy(out, a)
	did := false
	for i, tv := range a {
		if tv.IsEmpty() || tv.Type == ir.TypeVarRef || ir.IsImmediateValue(tv.Value) {
			continue
		}
		declared, ok := table[tv.Value]
		if !ok || declared == tv.Type {
			continue
		}
		out[i] = ir.NewTypedValue(tv.Value, declared)
		did = true
	}
	if !did {
		return a, false
	}
	return out, true
}
