package parser

import (
	"fmt"

	"github.com/basic1rv32/toolchain/b1c/lexer"
	"github.com/basic1rv32/toolchain/internal/ir"
)

// stmtIf handles both the block form ("IF cond THEN" on its own line,
// closed by ENDIF) and the single-line forms ("IF cond THEN 100 [ELSE 200]"
// and "IF cond THEN stmt [ELSE stmt]"), per spec §4.8.
func (p *Parser) stmtIf(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	thenIdx := scanKeywordTopLevel(toks, "THEN")
	if thenIdx < 0 {
		return fmt.Errorf("line %d: IF without THEN", line.Number)
	}
	condToks := toks[:thenIdx]
	after := toks[thenIdx+1:]

	if len(after) > 0 && after[0].Kind == lexer.KindNumber {
		thenNum := after[0].Text
		elseNum := ""
		if len(after) > 2 && after[1].Kind == lexer.KindIdent && after[1].Text == "ELSE" && after[2].Kind == lexer.KindNumber {
			elseNum = after[2].Text
		}
		falseLbl := p.Cmds.EmitLabel()
		if _, err := p.emitCondJumpFalse(condToks, falseLbl); err != nil {
			return err
		}
		p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(p.ulbLabel(thenNum), ir.TypeLabel))
		p.Cmds.EmitNamedLabel(falseLbl)
		if elseNum != "" {
			p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(p.ulbLabel(elseNum), ir.TypeLabel))
		}
		return nil
	}

	endLbl := p.Cmds.EmitLabel()
	falseLbl := p.Cmds.EmitLabel()
	if _, err := p.emitCondJumpFalse(condToks, falseLbl); err != nil {
		return err
	}
	p.ifStack = append(p.ifStack, ifFrame{endLabel: endLbl, nextLabel: falseLbl})

	if len(after) > 0 {
		elseIdx := scanKeywordTopLevel(after, "ELSE")
		thenStmtToks := after
		var elseStmtToks []lexer.Token
		if elseIdx >= 0 {
			thenStmtToks = after[:elseIdx]
			elseStmtToks = after[elseIdx+1:]
		}
		if err := p.execInline(thenStmtToks); err != nil {
			return err
		}
		p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(endLbl, ir.TypeLabel))
		p.Cmds.EmitNamedLabel(falseLbl)
		f := &p.ifStack[len(p.ifStack)-1]
		f.nextEmitted = true
		if elseStmtToks != nil {
			if err := p.execInline(elseStmtToks); err != nil {
				return err
			}
		}
		p.Cmds.EmitNamedLabel(endLbl)
		p.ifStack = p.ifStack[:len(p.ifStack)-1]
	}
	return nil
}

func (p *Parser) stmtElseIf(line lexer.Line, rest []lexer.Token) error {
	if len(p.ifStack) == 0 {
		return fmt.Errorf("line %d: ELSEIF without IF", line.Number)
	}
	f := &p.ifStack[len(p.ifStack)-1]
	p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(f.endLabel, ir.TypeLabel))
	p.Cmds.EmitNamedLabel(f.nextLabel)
	f.nextEmitted = true

	toks := rest[1:]
	thenIdx := scanKeywordTopLevel(toks, "THEN")
	condToks := toks
	if thenIdx >= 0 {
		condToks = toks[:thenIdx]
	}
	newFalse := p.Cmds.EmitLabel()
	if _, err := p.emitCondJumpFalse(condToks, newFalse); err != nil {
		return err
	}
	f.nextLabel = newFalse
	f.nextEmitted = false
	return nil
}

func (p *Parser) stmtElse(line lexer.Line, rest []lexer.Token) error {
	if len(p.ifStack) == 0 {
		return fmt.Errorf("line %d: ELSE without IF", line.Number)
	}
	f := &p.ifStack[len(p.ifStack)-1]
	p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(f.endLabel, ir.TypeLabel))
	p.Cmds.EmitNamedLabel(f.nextLabel)
	f.nextEmitted = true
	return nil
}

func (p *Parser) stmtEndIf(line lexer.Line) error {
	if len(p.ifStack) == 0 {
		return fmt.Errorf("line %d: ENDIF without IF", line.Number)
	}
	f := p.ifStack[len(p.ifStack)-1]
	p.ifStack = p.ifStack[:len(p.ifStack)-1]
	if !f.nextEmitted {
		p.Cmds.EmitNamedLabel(f.nextLabel)
	}
	p.Cmds.EmitNamedLabel(f.endLabel)
	return nil
}

// stmtFor lowers "FOR v = init TO limit [STEP step]" per spec §4.8's
// canonical expansion: compute limit/step into locals that persist to
// NEXT, loop-head label, end-test (v-limit)*sign(step) > 0, body, then
// NEXT emits v += step and jumps back to the head.
func (p *Parser) stmtFor(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	if len(toks) < 2 || toks[0].Kind != lexer.KindIdent || toks[1].Text != "=" {
		return fmt.Errorf("line %d: malformed FOR", line.Number)
	}
	varName := toks[0].Text
	rest2 := toks[2:]
	toIdx := scanKeywordTopLevel(rest2, "TO")
	if toIdx < 0 {
		return fmt.Errorf("line %d: FOR without TO", line.Number)
	}
	initToks := rest2[:toIdx]
	afterTo := rest2[toIdx+1:]
	stepIdx := scanKeywordTopLevel(afterTo, "STEP")
	limitToks := afterTo
	var stepToks []lexer.Token
	if stepIdx >= 0 {
		limitToks = afterTo[:stepIdx]
		stepToks = afterTo[stepIdx+1:]
	}

	v, err := p.NS.MustResolve(varName)
	if err != nil {
		return err
	}

	initArg, _, _, err := p.translateExpr(initToks, line.Number)
	if err != nil {
		return err
	}
	p.Cmds.Emit(ir.MnAssign, initArg, ir.NewScalarArg(v.GenName, v.Type))
	p.freeExprLocals()

	limitArg, _, _, err := p.translateExpr(limitToks, line.Number)
	if err != nil {
		return err
	}
	limitLcl := p.Cmds.EmitLocal(v.Type)
	p.Cmds.Emit(ir.MnAssign, limitArg, ir.NewScalarArg(limitLcl, v.Type))
	p.freeExprLocals()

	var stepArg ir.Arg
	if stepToks != nil {
		stepArg, _, _, err = p.translateExpr(stepToks, line.Number)
		if err != nil {
			return err
		}
	} else {
		stepArg = ir.NewScalarArg("1", v.Type)
	}
	stepLcl := p.Cmds.EmitLocal(v.Type)
	p.Cmds.Emit(ir.MnAssign, stepArg, ir.NewScalarArg(stepLcl, v.Type))
	p.freeExprLocals()

	headLbl := p.Cmds.EmitLabel()
	endLbl := p.Cmds.EmitLabel()
	p.Cmds.EmitNamedLabel(headLbl)

	diffLcl := p.newLocal(v.Type)
	p.Cmds.Emit(ir.MnSub, ir.NewScalarArg(v.GenName, v.Type), ir.NewScalarArg(limitLcl, v.Type), ir.NewScalarArg(diffLcl, v.Type))
	signArg, signType, err := p.emitStdCall("SGN", []ir.Arg{ir.NewScalarArg(stepLcl, v.Type)}, []ir.Type{v.Type}, line.Number)
	if err != nil {
		return err
	}
	prodLcl := p.newLocal(signType)
	p.Cmds.Emit(ir.MnMul, ir.NewScalarArg(diffLcl, v.Type), signArg, ir.NewScalarArg(prodLcl, signType))
	p.Cmds.Emit(ir.MnGt, ir.NewScalarArg(prodLcl, signType), ir.NewScalarArg("0", signType))
	p.Cmds.Emit(ir.MnJt, ir.NewScalarArg(endLbl, ir.TypeLabel))
	p.freeExprLocals()

	p.forStack = append(p.forStack, forFrame{
		varName: v.GenName, varType: v.Type,
		limitLcl: limitLcl, stepLcl: stepLcl,
		headLabel: headLbl, endLabel: endLbl,
	})
	return nil
}

func (p *Parser) stmtNext(line lexer.Line, rest []lexer.Token) error {
	if len(p.forStack) == 0 {
		return fmt.Errorf("line %d: NEXT without FOR", line.Number)
	}
	f := p.forStack[len(p.forStack)-1]
	toks := rest[1:]
	if len(toks) > 0 && toks[0].Kind == lexer.KindIdent {
		if v, ok := p.NS.Lookup(toks[0].Text); ok && v.GenName != f.varName {
			return fmt.Errorf("line %d: NEXT variable %q does not match enclosing FOR", line.Number, toks[0].Text)
		}
	}
	p.forStack = p.forStack[:len(p.forStack)-1]
	p.Cmds.Emit(ir.MnAdd, ir.NewScalarArg(f.varName, f.varType), ir.NewScalarArg(f.stepLcl, f.varType), ir.NewScalarArg(f.varName, f.varType))
	p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(f.headLabel, ir.TypeLabel))
	p.Cmds.EmitNamedLabel(f.endLabel)
	p.Cmds.EmitLocalFree(f.stepLcl)
	p.Cmds.EmitLocalFree(f.limitLcl)
	return nil
}

func (p *Parser) stmtWhile(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	headLbl := p.Cmds.EmitLabel()
	endLbl := p.Cmds.EmitLabel()
	p.Cmds.EmitNamedLabel(headLbl)
	if _, err := p.emitCondJumpFalse(toks, endLbl); err != nil {
		return err
	}
	p.freeExprLocals()
	p.whileStack = append(p.whileStack, whileFrame{headLabel: headLbl, endLabel: endLbl})
	return nil
}

func (p *Parser) stmtWend(line lexer.Line) error {
	if len(p.whileStack) == 0 {
		return fmt.Errorf("line %d: WEND without WHILE", line.Number)
	}
	f := p.whileStack[len(p.whileStack)-1]
	p.whileStack = p.whileStack[:len(p.whileStack)-1]
	p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(f.headLabel, ir.TypeLabel))
	p.Cmds.EmitNamedLabel(f.endLabel)
	return nil
}

func (p *Parser) stmtGoto(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	if len(toks) == 0 || toks[0].Kind != lexer.KindNumber {
		return fmt.Errorf("line %d: GOTO expects a line number", line.Number)
	}
	p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(p.ulbLabel(toks[0].Text), ir.TypeLabel))
	return nil
}

func (p *Parser) stmtGosub(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	if len(toks) == 0 || toks[0].Kind != lexer.KindNumber {
		return fmt.Errorf("line %d: GOSUB expects a line number", line.Number)
	}
	p.Cmds.Emit(ir.MnCall, ir.NewScalarArg(p.ulbLabel(toks[0].Text), ir.TypeLabel))
	return nil
}

// stmtOn lowers "ON expr GOTO/GOSUB l1, l2, ..." as a chain of
// equality tests against the 1-based target index.
func (p *Parser) stmtOn(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	gotoIdx := scanKeywordTopLevel(toks, "GOTO")
	gosubIdx := scanKeywordTopLevel(toks, "GOSUB")
	verb, idx := "GOTO", gotoIdx
	if gosubIdx >= 0 && (gotoIdx < 0 || gosubIdx < gotoIdx) {
		verb, idx = "GOSUB", gosubIdx
	}
	if idx < 0 {
		return fmt.Errorf("line %d: ON expects GOTO or GOSUB", line.Number)
	}
	exprArg, exprType, _, err := p.translateExpr(toks[:idx], line.Number)
	if err != nil {
		return err
	}
	for i, tg := range splitTopLevelCommaToks(toks[idx+1:]) {
		if len(tg) == 0 || tg[0].Kind != lexer.KindNumber {
			continue
		}
		p.Cmds.Emit(ir.MnEq, exprArg, ir.NewScalarArg(fmt.Sprintf("%d", i+1), exprType))
		skip := p.Cmds.EmitLabel()
		p.Cmds.Emit(ir.MnJf, ir.NewScalarArg(skip, ir.TypeLabel))
		lbl := p.ulbLabel(tg[0].Text)
		if verb == "GOTO" {
			p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(lbl, ir.TypeLabel))
		} else {
			p.Cmds.Emit(ir.MnCall, ir.NewScalarArg(lbl, ir.TypeLabel))
		}
		p.Cmds.EmitNamedLabel(skip)
	}
	p.freeExprLocals()
	return nil
}
