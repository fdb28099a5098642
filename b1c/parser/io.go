package parser

import (
	"fmt"
	"strings"

	"github.com/basic1rv32/toolchain/b1c/lexer"
	"github.com/basic1rv32/toolchain/internal/ir"
)

// stmtData lowers a DATA line: each literal is recorded in the file's
// DATA/READ/RESTORE table (b1c/datatable) and also emitted as a DAT
// record so the IR text alone reflects the program's data (spec §4.7).
func (p *Parser) stmtData(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	var values []ir.TypedValue
	for _, part := range splitTopLevelCommaToks(toks) {
		if len(part) == 0 {
			continue
		}
		if len(part) == 1 && part[0].Kind == lexer.KindIdent {
			if v, ok := p.NS.Lookup(part[0].Text); ok && v.IsConst && len(v.InitValues) > 0 {
				values = append(values, ir.NewTypedValue(v.InitValues[0], v.Type))
				continue
			}
		}
		if part[0].Kind == lexer.KindString {
			raw := part[0].Text
			if len(raw) >= 2 {
				raw = raw[1 : len(raw)-1]
			}
			values = append(values, ir.NewTypedValue(ir.EscapeString(strings.ReplaceAll(raw, `""`, `"`)), ir.TypeString))
			continue
		}
		values = append(values, ir.NewTypedValue(part[0].Text, numericLiteralType(part[0].Text)))
	}
	p.Data.AddRow(line.Number, values)

	args := []ir.Arg{ir.NewScalarArg(p.namespace, ir.TypeUnknown)}
	for _, v := range values {
		args = append(args, ir.Arg{v})
	}
	p.Cmds.Emit(ir.MnData, args...)
	return nil
}

func (p *Parser) stmtRead(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	for _, part := range splitTopLevelCommaToks(toks) {
		if len(part) == 0 {
			continue
		}
		dst, err := p.parseLHS(part, line.Number)
		if err != nil {
			return err
		}
		p.Cmds.Emit(ir.MnRead, ir.NewScalarArg(p.namespace, ir.TypeUnknown), dst)
		p.freeExprLocals()
	}
	return nil
}

func (p *Parser) stmtRestore(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	var lineNum int32
	args := []ir.Arg{ir.NewScalarArg(p.namespace, ir.TypeUnknown)}
	if len(toks) > 0 && toks[0].Kind == lexer.KindNumber {
		lineNum = int32(mustInt(toks[0].Text))
		args = append(args, ir.NewScalarArg(p.ulbLabel(toks[0].Text), ir.TypeLabel))
	}
	p.Data.Restore(lineNum)
	p.Cmds.Emit(ir.MnRestore, args...)
	return nil
}

// stmtPrint lowers PRINT/"?", handling the TAB(n)/SPC(n)/NL pseudo-
// functions and the "," (next print zone)/";" (adjacent) separators
// (spec §4.8). A missing trailing separator appends a newline.
func (p *Parser) stmtPrint(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	dev := p.Opts.OutputDevice
	if dev == "" {
		dev = "CONSOLE"
	}
	devArg := ir.NewScalarArg(dev, ir.TypeUnknown)

	i, n := 0, len(toks)
	lastWasSep := true
	for i < n {
		t := toks[i]
		switch {
		case t.Kind == lexer.KindIdent && (t.Text == "TAB" || t.Text == "SPC") && i+1 < n && toks[i+1].Text == "(":
			j := i + 2
			depth := 1
			for j < n && depth > 0 {
				if toks[j].Text == "(" {
					depth++
				} else if toks[j].Text == ")" {
					depth--
				}
				j++
			}
			argToks := toks[i+2 : j-1]
			a, _, _, err := p.translateExpr(argToks, line.Number)
			if err != nil {
				return err
			}
			p.Cmds.Emit(ir.MnOut, devArg, a)
			p.Cmds.Emit(ir.MnXArg, ir.NewScalarArg(t.Text, ir.TypeUnknown))
			p.freeExprLocals()
			i = j
			lastWasSep = false

		case t.Kind == lexer.KindIdent && t.Text == "NL":
			p.Cmds.Emit(ir.MnOut, devArg, ir.NewScalarArg(`"\n"`, ir.TypeString))
			i++
			lastWasSep = false

		case t.Text == ",":
			p.Cmds.Emit(ir.MnXArg, ir.NewScalarArg("TAB0", ir.TypeUnknown))
			i++
			lastWasSep = true

		case t.Text == ";":
			i++
			lastWasSep = true

		default:
			j := i
			depth := 0
			for j < n {
				if toks[j].Text == "(" {
					depth++
				}
				if toks[j].Text == ")" {
					depth--
				}
				if depth == 0 && (toks[j].Text == "," || toks[j].Text == ";") {
					break
				}
				j++
			}
			a, _, _, err := p.translateExpr(toks[i:j], line.Number)
			if err != nil {
				return err
			}
			p.Cmds.Emit(ir.MnOut, devArg, a)
			p.freeExprLocals()
			i = j
			lastWasSep = false
		}
	}
	if !lastWasSep {
		p.Cmds.Emit(ir.MnOut, devArg, ir.NewScalarArg(`"\n"`, ir.TypeString))
	}
	return nil
}

// stmtInput lowers INPUT, which carries an optional literal prompt and
// a list of destination variables. Each read is guarded by the SET ERR 0
// / retry-on-ERR pattern of spec §4.8 ("a malformed line retries the
// read rather than aborting").
func (p *Parser) stmtInput(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	dev := p.Opts.InputDevice
	if dev == "" {
		dev = "CONSOLE"
	}
	i := 0
	if i < len(toks) && toks[i].Kind == lexer.KindString {
		raw := toks[i].Text
		if len(raw) >= 2 {
			raw = raw[1 : len(raw)-1]
		}
		p.Cmds.Emit(ir.MnOut, ir.NewScalarArg(p.Opts.OutputDevice, ir.TypeUnknown), ir.NewScalarArg(ir.EscapeString(strings.ReplaceAll(raw, `""`, `"`)), ir.TypeString))
		i++
		if i < len(toks) && toks[i].Text == "," {
			i++
		}
	}
	for _, part := range splitTopLevelCommaToks(toks[i:]) {
		if len(part) == 0 {
			continue
		}
		dst, err := p.parseLHS(part, line.Number)
		if err != nil {
			return err
		}
		retryLbl := p.Cmds.EmitLabel()
		p.Cmds.Emit(ir.MnSet, ir.NewScalarArg("ERR", ir.TypeUnknown), ir.NewScalarArg("0", ir.TypeByte))
		p.Cmds.EmitNamedLabel(retryLbl)
		p.Cmds.Emit(ir.MnIn, ir.NewScalarArg(dev, ir.TypeUnknown), dst)
		p.Cmds.Emit(ir.MnErr, ir.NewScalarArg("", ir.TypeString), ir.NewScalarArg(retryLbl, ir.TypeLabel))
		p.freeExprLocals()
	}
	return nil
}

// stmtPutGetTransfer is the shared handler for PUT/GET/TRANSFER, each
// taking an optional "#device," prefix and an optional "USING mask"
// clause (spec §4.8).
func (p *Parser) stmtPutGetTransfer(line lexer.Line, rest []lexer.Token, mn string) error {
	toks := rest[1:]
	i := 0
	dev := "CONSOLE"
	if i < len(toks) && toks[i].Text == "#" {
		i++
		if i < len(toks) {
			dev = toks[i].Text
			i++
		}
		if i < len(toks) && toks[i].Text == "," {
			i++
		}
	}
	body := toks[i:]
	usingIdx := scanKeywordTopLevel(body, "USING")
	mainToks := body
	var usingToks []lexer.Token
	if usingIdx >= 0 {
		mainToks = body[:usingIdx]
		usingToks = body[usingIdx+1:]
	}
	valArg, _, _, err := p.translateExpr(mainToks, line.Number)
	if err != nil {
		return err
	}
	p.Cmds.Emit(mn, ir.NewScalarArg(dev, ir.TypeUnknown), valArg)
	if usingToks != nil {
		p.Cmds.Emit(ir.MnXArg, ir.NewScalarArg(tokensText(usingToks), ir.TypeUnknown))
	}
	p.freeExprLocals()
	return nil
}

func (p *Parser) stmtIoctl(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	parts := splitTopLevelCommaToks(toks)
	if len(parts) < 2 {
		return fmt.Errorf("line %d: IOCTL requires a device and a command", line.Number)
	}
	args := []ir.Arg{
		ir.NewScalarArg(tokensText(parts[0]), ir.TypeUnknown),
		ir.NewScalarArg(tokensText(parts[1]), ir.TypeUnknown),
	}
	if len(parts) > 2 {
		dataArg, _, _, err := p.translateExpr(parts[2], line.Number)
		if err != nil {
			return err
		}
		args = append(args, dataArg)
	}
	p.Cmds.Emit(ir.MnIoctl, args...)
	p.freeExprLocals()
	return nil
}

func (p *Parser) stmtErase(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	for _, part := range splitTopLevelCommaToks(toks) {
		if len(part) == 0 {
			continue
		}
		v, ok := p.NS.Lookup(part[0].Text)
		if !ok {
			continue
		}
		p.Cmds.Emit(ir.MnGlobalFree, ir.NewScalarArg(v.GenName, ir.TypeVarRef))
	}
	return nil
}
