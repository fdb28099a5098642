// Package asmparser adapts the shared IR text format (spec §6.3) to the
// RV32 assembler: it reads the same ":label" / "CMD,arg1,arg2,…" lines the
// BASIC compiler emits and turns each operation line into a flattened
// argument-expression list ready for catalog signature matching (C2) and
// expression evaluation (C4).
//
// The compiler's IR and the assembler's input share one textual grammar
// (internal/ir.ParseLine); for the assembler, "CMD" is simply interpreted
// as an RV32 mnemonic and its arguments as register names, CSR/fence
// names, or arithmetic expressions instead of BASIC variable references.
package asmparser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/basic1rv32/toolchain/internal/ir"
)

// Statement is one parsed program line.
type Statement struct {
	IsLabel  bool
	Label    string
	Mnemonic string
	Args     []ir.Arg
	LineNum  int32
	Raw      string
}

// Program is an ordered statement stream from one or more source files.
type Program struct {
	Statements []*Statement
}

// Parse reads every line of r into a Program. Blank lines and lines
// beginning ';' (source-line comments, spec §6.3) are skipped.
func Parse(r io.Reader) (*Program, error) {
	prog := &Program{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := int32(0)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		cmd, err := ir.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if cmd == nil {
			continue
		}
		st := &Statement{LineNum: lineNo, Raw: line}
		if cmd.IsLabel() {
			st.IsLabel = true
			st.Label = cmd.Name
		} else {
			st.Mnemonic = strings.ToUpper(cmd.Name)
			st.Args = cmd.Args
		}
		prog.Statements = append(prog.Statements, st)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

// Slot is one flattened argument-evaluation slot: the textual expression
// of one element of a source IR argument. It does not record whether that
// element came from a composite "base(sub)" addressing form.
type Slot struct {
	Expr string
}

// Flatten expands a statement's IR-level arguments into the ordered
// evaluation-slot list the catalog's ArgTypes are keyed against: a scalar
// argument contributes one slot, a composite "func(a1,…)" argument
// contributes one slot per element, base first (spec §4.4: "(...) for
// addressing syntax").
func Flatten(args []ir.Arg) []Slot {
	var slots []Slot
	for _, a := range args {
		for _, tv := range a {
			slots = append(slots, Slot{Expr: tv.Value})
		}
	}
	return slots
}

// Signature computes the catalog signature string for a statement's
// arguments (spec §4.4): "XV" for a register-like scalar, "V" for
// anything else, composite args rendered as "base(sub1,sub2,…)".
func Signature(args []ir.Arg, isRegisterName func(string) bool) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a.IsScalar() {
			if isRegisterName(a[0].Value) {
				parts[i] = "XV"
			} else {
				parts[i] = "V"
			}
			continue
		}
		inner := make([]string, len(a)-1)
		for j, tv := range a[1:] {
			if isRegisterName(tv.Value) {
				inner[j] = "XV"
			} else {
				inner[j] = "V"
			}
		}
		base := "V"
		if isRegisterName(a[0].Value) {
			base = "XV"
		}
		parts[i] = base + "(" + strings.Join(inner, ",") + ")"
	}
	return strings.Join(parts, ",")
}
