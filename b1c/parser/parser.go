// Package parser implements the BASIC front-end (component C8): a
// two-pass, line-driven statement parser that lowers BASIC-1 source into
// the three-address IR (internal/ir), using the symbol/scope manager
// (b1c/symbols), the DATA table manager (b1c/datatable), and the standard
// function table (internal/stdfn).
package parser

import (
	"fmt"
	"strings"

	"github.com/basic1rv32/toolchain/b1c/datatable"
	"github.com/basic1rv32/toolchain/b1c/lexer"
	"github.com/basic1rv32/toolchain/b1c/symbols"
	"github.com/basic1rv32/toolchain/internal/diag"
	"github.com/basic1rv32/toolchain/internal/ir"
)

// Options holds the per-file OPTION settings (spec §4.8 "OPTION").
type Options struct {
	Base          int // array lower bound default, 0 or 1
	Explicit      bool
	NoCheck       bool
	InputDevice   string
	OutputDevice  string
}

// Parser holds the state threaded through both passes of one source file.
type Parser struct {
	File    string
	Lines   []lexer.Line
	pos     int

	Global *symbols.Table
	NS     *symbols.Table
	Data   *datatable.Table
	Cmds   *ir.Commands
	Diags  *diag.List
	Opts   Options

	pendingLocals []string // LIFO stack of locals alive within the current statement

	ifStack    []ifFrame
	forStack   []forFrame
	whileStack []whileFrame

	// argAliases maps a DEF body's formal parameter names to their
	// "__ARG_<i>" slot while that body is being translated (spec §4.9:
	// "formal arguments are substituted as __ARG_<i>").
	argAliases map[string]int
	argTypes   map[string]ir.Type

	sawEnd    bool
	namespace string
}

type ifFrame struct {
	endLabel    string
	nextLabel   string // label for next ELSEIF/ELSE test
	nextEmitted bool   // whether nextLabel has already been placed
}

type forFrame struct {
	varName   string
	varType   ir.Type
	limitLcl  string
	stepLcl   string
	headLabel string
	endLabel  string
}

type whileFrame struct {
	headLabel string
	endLabel  string
}

// New creates a parser for one source file's already-tokenized lines.
func New(file string, nsName string, global *symbols.Table, source []string) *Parser {
	lines := make([]lexer.Line, 0, len(source))
	for _, raw := range source {
		lines = append(lines, lexer.Tokenize(raw))
	}
	ns := symbols.NewNamespace(nsName, global)
	return &Parser{
		File:      file,
		Lines:     lines,
		Global:    global,
		NS:        ns,
		Data:      datatable.New(),
		Cmds:      ir.NewCommands(nsName, 0, 0),
		Diags:     &diag.List{},
		namespace: nsName,
	}
}

func (p *Parser) errf(lineNum int32, kind diag.Kind, format string, args ...interface{}) {
	p.Diags.AddError(diag.New(diag.Position{File: p.File, Line: int(lineNum)}, kind, fmt.Sprintf(format, args...)))
}

func (p *Parser) warnf(lineNum int32, format string, args ...interface{}) {
	p.Diags.AddWarning(&diag.Warning{Pos: diag.Position{File: p.File, Line: int(lineNum)}, Message: fmt.Sprintf(format, args...)})
}

// Run performs both passes and returns the namespace's emitted commands.
// Pass 1 collects function signatures, CONST/volatile/static/global DIMs,
// and OPTION bindings (spec §4.8: "Pass 1 collects... verifies exactly one
// END"). Pass 2 emits IR using those tables.
func (p *Parser) Run() (*ir.Commands, error) {
	p.Cmds.Emit(ir.MnNamespace, ir.NewScalarArg(p.namespace, ir.TypeUnknown))

	if err := p.passOne(); err != nil {
		return nil, err
	}
	if !p.sawEnd {
		p.warnf(0, "no END statement in file")
	}

	p.pos = 0
	p.sawEnd = false
	if err := p.passTwo(); err != nil {
		return nil, err
	}
	if p.Diags.HasErrors() {
		return p.Cmds, p.Diags
	}
	return p.Cmds, nil
}

// passOne walks every line collecting DEF signatures, DIM declarations with
// GLOBAL/CONST/VOLATILE/STATIC modifiers, and OPTION bindings.
func (p *Parser) passOne() error {
	endCount := 0
	for _, line := range p.Lines {
		kw, _ := firstKeyword(line)
		switch kw {
		case "DEF":
			if err := p.collectDef(line); err != nil {
				return err
			}
		case "DIM":
			if err := p.collectDim(line); err != nil {
				return err
			}
		case "OPTION":
			if err := p.applyOption(line); err != nil {
				return err
			}
		case "END":
			endCount++
		}
	}
	if endCount > 1 {
		p.warnf(0, "multiple END statements")
	}
	p.sawEnd = endCount > 0
	return nil
}

// firstKeyword returns the uppercased leading keyword token of a line
// (after its optional line number), ignoring a leading "LET".
func firstKeyword(line lexer.Line) (string, int) {
	if len(line.Tokens) == 0 {
		return "", 0
	}
	i := 0
	if line.Tokens[0].Kind == lexer.KindIdent && line.Tokens[0].Text == "LET" {
		i = 1
	}
	if i >= len(line.Tokens) {
		return "", i
	}
	if line.Tokens[i].Kind == lexer.KindIdent {
		return line.Tokens[i].Text, i
	}
	return "", i
}

// passTwo emits IR for every line.
func (p *Parser) passTwo() error {
	for p.pos = 0; p.pos < len(p.Lines); p.pos++ {
		line := p.Lines[p.pos]
		if len(line.Tokens) == 0 {
			continue
		}
		if line.Number != 0 {
			p.Cmds.SetPos(line.Number, int32(p.pos+1), 0, int32(p.pos+1))
			p.Cmds.EmitNamedLabel(fmt.Sprintf("%s__ULB_%d", p.Cmds.NamePrefix(), line.Number))
		}
		if err := p.statement(line); err != nil {
			return err
		}
	}
	for len(p.ifStack) > 0 {
		f := p.ifStack[len(p.ifStack)-1]
		p.ifStack = p.ifStack[:len(p.ifStack)-1]
		p.Cmds.EmitNamedLabel(f.endLabel)
	}
	return nil
}

// freeExprLocals emits LF for every local allocated while translating the
// current statement, LIFO (spec §3: "LAs and LFs nest LIFO").
func (p *Parser) freeExprLocals() {
	for i := len(p.pendingLocals) - 1; i >= 0; i-- {
		p.Cmds.EmitLocalFree(p.pendingLocals[i])
	}
	p.pendingLocals = p.pendingLocals[:0]
}

func (p *Parser) newLocal(t ir.Type) string {
	name := p.Cmds.EmitLocal(t)
	p.pendingLocals = append(p.pendingLocals, name)
	return name
}

// statement dispatches one line to its statement handler (spec §4.8:
// "Statement dispatch is keyword-based; a missing keyword is interpreted
// as LET").
func (p *Parser) statement(line lexer.Line) error {
	toks := line.Tokens
	if len(toks) > 0 && toks[0].Kind == lexer.KindComment {
		return nil
	}
	kw, kwIdx := firstKeyword(line)
	rest := toks[kwIdx:]

	switch kw {
	case "IF":
		return p.stmtIf(line, rest)
	case "ELSEIF":
		return p.stmtElseIf(line, rest)
	case "ELSE":
		return p.stmtElse(line, rest)
	case "ENDIF":
		return p.stmtEndIf(line)
	case "FOR":
		return p.stmtFor(line, rest)
	case "NEXT":
		return p.stmtNext(line, rest)
	case "WHILE":
		return p.stmtWhile(line, rest)
	case "WEND":
		return p.stmtWend(line)
	case "GOTO":
		return p.stmtGoto(line, rest)
	case "GOSUB":
		return p.stmtGosub(line, rest)
	case "RETURN":
		p.Cmds.Emit(ir.MnRet)
		return nil
	case "DIM":
		return p.emitDimRecord(line, rest)
	case "DEF":
		return p.emitDefBody(line, rest)
	case "DATA":
		return p.stmtData(line, rest)
	case "READ":
		return p.stmtRead(line, rest)
	case "RESTORE":
		return p.stmtRestore(line, rest)
	case "PRINT", "?":
		return p.stmtPrint(line, rest)
	case "INPUT":
		return p.stmtInput(line, rest)
	case "PUT":
		return p.stmtPutGetTransfer(line, rest, ir.MnPut)
	case "GET":
		return p.stmtPutGetTransfer(line, rest, ir.MnGet)
	case "TRANSFER":
		return p.stmtPutGetTransfer(line, rest, ir.MnTransfer)
	case "IOCTL":
		return p.stmtIoctl(line, rest)
	case "OPTION":
		return nil // fully handled in pass 1
	case "ON":
		return p.stmtOn(line, rest)
	case "END":
		p.Cmds.Emit(ir.MnEnd)
		return nil
	case "STOP":
		p.Cmds.Emit(ir.MnStop)
		return nil
	case "BREAK":
		if len(p.forStack) > 0 {
			p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(p.forStack[len(p.forStack)-1].endLabel, ir.TypeLabel))
		} else if len(p.whileStack) > 0 {
			p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(p.whileStack[len(p.whileStack)-1].endLabel, ir.TypeLabel))
		}
		return nil
	case "CONTINUE":
		if len(p.forStack) > 0 {
			p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(p.forStack[len(p.forStack)-1].headLabel, ir.TypeLabel))
		} else if len(p.whileStack) > 0 {
			p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(p.whileStack[len(p.whileStack)-1].headLabel, ir.TypeLabel))
		}
		return nil
	case "ERASE":
		return p.stmtErase(line, rest)
	default:
		return p.stmtLet(line, toks)
	}
}

// identBase strips a trailing %/$ type specifier, returning the bare name.
func identBase(name string) string {
	return strings.TrimRight(name, "%$")
}
