// Package compiler orchestrates the BASIC compiler pipeline (spec §2's
// "b1c" data flow): per-file lexing/parsing into IR, optimization, and
// final IR-text emission, across one or more source files sharing a
// global symbol table and each keyed by its own namespace.
package compiler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/basic1rv32/toolchain/b1c/optimizer"
	"github.com/basic1rv32/toolchain/b1c/parser"
	"github.com/basic1rv32/toolchain/b1c/symbols"
	"github.com/basic1rv32/toolchain/b1c/typeinfer"
	"github.com/basic1rv32/toolchain/internal/diag"
	"github.com/basic1rv32/toolchain/internal/ir"
)

// Result is one compiled program: its final IR command stream (ready for
// the assembler) and any warnings collected along the way.
type Result struct {
	Commands []*ir.Command
	Warnings []*diag.Warning
}

// Options controls compiler-wide behavior (spec §6.1 CLI flags relevant
// to this package).
type Options struct {
	NoOptimize  bool // "-no"
	EmbedSource bool // "-s"
}

// File is one input source file: its display name (used for namespace
// derivation and diagnostics) and its lines of BASIC text.
type File struct {
	Name   string
	Source []string
}

// Compile runs the full pipeline over one or more source files that share
// a single global symbol table (spec §4.9: functions/variables declared
// GLOBAL are visible across files; everything else is namespace-local to
// its own file, keyed by the file's base name per spec §6.3's multi-file
// handoff).
func Compile(files []File, opts Options) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	global := symbols.NewGlobal()
	diags := &diag.List{}
	var all []*ir.Command
	var warnings []*diag.Warning

	for _, f := range files {
		ns := namespaceFor(f.Name)
		p := parser.New(f.Name, ns, global, f.Source)
		cmds, err := p.Run()
		warnings = append(warnings, p.Diags.Warnings...)
		if err != nil {
			if dl, ok := err.(*diag.List); ok {
				diags.Merge(dl)
				continue
			}
			return nil, err
		}
		if !opts.NoOptimize {
			// C10 → C11 → C10 again (spec §2): the first fixed-point round
			// folds and reshapes the IR, C11 rebinds any operand type that
			// round's renames left stale against its own declaration, and
			// the second round runs again so those rebound types can feed
			// further folds (e.g. an unsigned-bound comparison fold that
			// only becomes sound once C11 has corrected the operand).
			optimizer.Optimize(cmds)
			typeinfer.Infer(cmds.Items)
			optimizer.Optimize(cmds)
		}
		all = append(all, cmds.Items...)
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return &Result{Commands: all, Warnings: warnings}, nil
}

// Emit renders a compiled Result in the IR text format (spec §6.3). When
// opts.EmbedSource is set, sourceLine supplies the original BASIC text
// for each emitted "; " comment line.
func Emit(res *Result, opts Options, sourceLine func(lineCnt int32) string) string {
	return ir.EncodeFile(res.Commands, opts.EmbedSource, sourceLine)
}

// namespaceFor derives a file's namespace from its base name (extension
// stripped, uppercased) — the "NS1::", "NS2::" prefixes spec §4.9
// describes for multi-file programs.
func namespaceFor(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToUpper(base)
}
