package parser

import (
	"fmt"

	"github.com/basic1rv32/toolchain/b1c/lexer"
	"github.com/basic1rv32/toolchain/internal/ir"
)

// parseLHS resolves an assignment/READ/INPUT destination: a plain
// variable, or a subscripted element whose subscripts are each lowered
// through the full expression translator.
func (p *Parser) parseLHS(toks []lexer.Token, lineNum int32) (ir.Arg, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("line %d: missing destination", lineNum)
	}
	name := toks[0].Text
	v, err := p.NS.MustResolve(name)
	if err != nil {
		return nil, err
	}
	if v.IsConst {
		return nil, fmt.Errorf("line %d: cannot assign to CONST %q", lineNum, name)
	}
	if len(toks) == 1 || toks[1].Text != "(" {
		return ir.NewScalarArg(v.GenName, v.Type), nil
	}
	depth := 1
	j := 2
	for j < len(toks) && depth > 0 {
		if toks[j].Text == "(" {
			depth++
		} else if toks[j].Text == ")" {
			depth--
		}
		j++
	}
	subToks := toks[2 : j-1]
	dst := ir.Arg{ir.NewTypedValue(v.GenName, v.Type)}
	for _, se := range splitTopLevelCommaToks(subToks) {
		sa, st, _, err := p.translateExpr(se, lineNum)
		if err != nil {
			return nil, err
		}
		dst = append(dst, ir.NewTypedValue(argAsName(sa), st))
	}
	return dst, nil
}

// stmtLet lowers a plain or LET-prefixed assignment: dst = expr.
func (p *Parser) stmtLet(line lexer.Line, toks []lexer.Token) error {
	if len(toks) == 0 {
		return nil
	}
	i := 0
	if toks[0].Kind == lexer.KindIdent && toks[0].Text == "LET" {
		i = 1
	}
	if i >= len(toks) || toks[i].Kind != lexer.KindIdent {
		return fmt.Errorf("line %d: expected an assignment", line.Number)
	}

	lhsEnd := i + 1
	if lhsEnd < len(toks) && toks[lhsEnd].Text == "(" {
		depth := 1
		j := lhsEnd + 1
		for j < len(toks) && depth > 0 {
			if toks[j].Text == "(" {
				depth++
			} else if toks[j].Text == ")" {
				depth--
			}
			j++
		}
		lhsEnd = j
	}
	if lhsEnd >= len(toks) || toks[lhsEnd].Text != "=" {
		return fmt.Errorf("line %d: expected '=' in assignment", line.Number)
	}

	dst, err := p.parseLHS(toks[i:lhsEnd], line.Number)
	if err != nil {
		return err
	}
	rhsArg, _, _, err := p.translateExpr(toks[lhsEnd+1:], line.Number)
	if err != nil {
		return err
	}
	p.Cmds.Emit(ir.MnAssign, rhsArg, dst)
	p.freeExprLocals()
	return nil
}
