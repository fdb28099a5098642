package parser

import (
	"github.com/basic1rv32/toolchain/b1c/lexer"
	"github.com/basic1rv32/toolchain/internal/ir"
)

// emitCondJumpFalse translates a condition expression and emits a jump to
// falseLabel when it is false. The fast path recognizes a single top-level
// comparison (no AND/OR/NOT combinators) and emits the bare IR compare
// directly followed by JF, matching spec §4.8's IF/WHILE comparison-to-JT/JF
// shape exactly (this is also what lets optimizer pass 7, "comparison
// reduction", fire against constant-bound FOR loop tests). Compound
// conditions fall back to evaluating a 0/1 value and comparing it to zero.
func (p *Parser) emitCondJumpFalse(toks []lexer.Token, falseLabel string) ([]lexer.Token, error) {
	if rest, ok, err := p.tryFastCondition(toks, falseLabel, true); err != nil {
		return nil, err
	} else if ok {
		return rest, nil
	}
	val, typ, rest, err := p.translateExpr(toks, 0)
	if err != nil {
		return nil, err
	}
	zero := ir.NewScalarArg("0", typ)
	p.Cmds.Emit(ir.MnEq, val, zero)
	p.Cmds.Emit(ir.MnJt, ir.NewScalarArg(falseLabel, ir.TypeLabel))
	return rest, nil
}

// emitCondJumpTrue is the JT-on-true counterpart of emitCondJumpFalse. No
// statement handler calls it: WHILE uses emitCondJumpFalse and FOR emits
// its own end test.
func (p *Parser) emitCondJumpTrue(toks []lexer.Token, trueLabel string) ([]lexer.Token, error) {
	if rest, ok, err := p.tryFastCondition(toks, trueLabel, false); err != nil {
		return nil, err
	} else if ok {
		return rest, nil
	}
	val, typ, rest, err := p.translateExpr(toks, 0)
	if err != nil {
		return nil, err
	}
	zero := ir.NewScalarArg("0", typ)
	p.Cmds.Emit(ir.MnNe, val, zero)
	p.Cmds.Emit(ir.MnJt, ir.NewScalarArg(trueLabel, ir.TypeLabel))
	return rest, nil
}

// tryFastCondition attempts the single-comparison fast path. jumpWhenFalse
// selects JF vs (inverted) JT emission for the caller's polarity.
func (p *Parser) tryFastCondition(toks []lexer.Token, label string, jumpWhenFalse bool) ([]lexer.Token, bool, error) {
	idx, hasCombinator := scanTopLevelComparison(toks)
	if idx < 0 || hasCombinator {
		return nil, false, nil
	}
	c := &cursor{toks: toks}
	left, _, err := p.parseAdd(c, 0)
	if err != nil {
		return nil, false, err
	}
	opTok, ok := c.next()
	if !ok {
		return nil, false, nil
	}
	mn, isCmp := compareOps[opTok.Text]
	if !isCmp {
		return nil, false, nil
	}
	right, _, err := p.parseAdd(c, 0)
	if err != nil {
		return nil, false, err
	}
	p.Cmds.Emit(mn, left, right)
	if jumpWhenFalse {
		p.Cmds.Emit(ir.MnJf, ir.NewScalarArg(label, ir.TypeLabel))
	} else {
		p.Cmds.Emit(ir.MnJt, ir.NewScalarArg(label, ir.TypeLabel))
	}
	return c.rest(), true, nil
}

// scanTopLevelComparison finds the token index of a paren-depth-0
// comparison operator and reports whether any AND/OR/NOT combinator also
// appears at depth 0 (which forces the compound fallback).
func scanTopLevelComparison(toks []lexer.Token) (idx int, hasCombinator bool) {
	depth := 0
	idx = -1
	for i, t := range toks {
		switch t.Text {
		case "(":
			depth++
		case ")":
			depth--
		}
		if depth != 0 {
			continue
		}
		if _, isCmp := compareOps[t.Text]; isCmp && idx < 0 {
			idx = i
		}
		if t.Kind == lexer.KindIdent && (t.Text == "AND" || t.Text == "OR" || t.Text == "NOT" || t.Text == "XOR") {
			hasCombinator = true
		}
	}
	return idx, hasCombinator
}
