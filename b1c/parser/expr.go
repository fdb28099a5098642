package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/basic1rv32/toolchain/b1c/lexer"
	"github.com/basic1rv32/toolchain/b1c/symbols"
	"github.com/basic1rv32/toolchain/internal/ir"
	"github.com/basic1rv32/toolchain/internal/stdfn"
)

var compareOps = map[string]string{
	"=": ir.MnEq, "<>": ir.MnNe, "<": ir.MnLt, ">": ir.MnGt, "<=": ir.MnLe, ">=": ir.MnGe,
}

var addOps = map[string]string{"+": ir.MnAdd, "-": ir.MnSub}
var mulOps = map[string]string{"*": ir.MnMul, "/": ir.MnDiv, "MOD": ir.MnMod, "<<": ir.MnShl, ">>": ir.MnShr}
var orOps = map[string]string{"OR": ir.MnOr, "XOR": ir.MnXor}

// cursor walks a token slice for one expression/sub-expression parse.
type cursor struct {
	toks []lexer.Token
	i    int
}

func (c *cursor) peek() (lexer.Token, bool) {
	if c.i >= len(c.toks) {
		return lexer.Token{}, false
	}
	return c.toks[c.i], true
}

func (c *cursor) next() (lexer.Token, bool) {
	t, ok := c.peek()
	if ok {
		c.i++
	}
	return t, ok
}

func (c *cursor) rest() []lexer.Token { return c.toks[c.i:] }

// translateExpr parses a full expression (OR/AND/XOR down to primaries) and
// returns the Arg holding its value plus its type. Comparison operators
// synthesize a 0/1 BYTE value so comparisons compose as ordinary operands
// when used outside a condition context; use condition.go's fast path for
// the common single-comparison-in-an-IF/WHILE case instead.
func (p *Parser) translateExpr(toks []lexer.Token, lineNum int32) (ir.Arg, ir.Type, []lexer.Token, error) {
	c := &cursor{toks: toks}
	arg, typ, err := p.parseOr(c, lineNum)
	if err != nil {
		return nil, 0, nil, err
	}
	return arg, typ, c.rest(), nil
}

func (p *Parser) parseOr(c *cursor, ln int32) (ir.Arg, ir.Type, error) {
	left, lt, err := p.parseCompare(c, ln)
	if err != nil {
		return nil, 0, err
	}
	for {
		t, ok := c.peek()
		if !ok || t.Kind != lexer.KindIdent {
			return left, lt, nil
		}
		mn, isOr := orOps[t.Text]
		if !isOr && t.Text != "AND" {
			return left, lt, nil
		}
		if t.Text == "AND" {
			mn = ir.MnAnd
		}
		c.next()
		right, rt, err := p.parseCompare(c, ln)
		if err != nil {
			return nil, 0, err
		}
		ct, _ := ir.CommonType(lt, rt)
		dst := p.newLocal(ct)
		p.Cmds.Emit(mn, left, right, ir.NewScalarArg(dst, ct))
		left = ir.NewScalarArg(dst, ct)
		lt = ct
	}
}

func (p *Parser) parseCompare(c *cursor, ln int32) (ir.Arg, ir.Type, error) {
	left, lt, err := p.parseAdd(c, ln)
	if err != nil {
		return nil, 0, err
	}
	t, ok := c.peek()
	if !ok {
		return left, lt, nil
	}
	mn, isCmp := compareOps[t.Text]
	if !isCmp {
		return left, lt, nil
	}
	c.next()
	right, _, err := p.parseAdd(c, ln)
	if err != nil {
		return nil, 0, err
	}
	dst := p.newLocal(ir.TypeByte)
	p.Cmds.Emit(mn, left, right)
	trueLbl := p.Cmds.EmitLabel()
	endLbl := p.Cmds.EmitLabel()
	p.Cmds.Emit(ir.MnJt, ir.NewScalarArg(trueLbl, ir.TypeLabel))
	p.Cmds.Emit(ir.MnAssign, ir.NewScalarArg("0", ir.TypeByte), ir.NewScalarArg(dst, ir.TypeByte))
	p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(endLbl, ir.TypeLabel))
	p.Cmds.EmitNamedLabel(trueLbl)
	p.Cmds.Emit(ir.MnAssign, ir.NewScalarArg("1", ir.TypeByte), ir.NewScalarArg(dst, ir.TypeByte))
	p.Cmds.EmitNamedLabel(endLbl)
	return ir.NewScalarArg(dst, ir.TypeByte), ir.TypeByte, nil
}

func (p *Parser) parseAdd(c *cursor, ln int32) (ir.Arg, ir.Type, error) {
	left, lt, err := p.parseMul(c, ln)
	if err != nil {
		return nil, 0, err
	}
	for {
		t, ok := c.peek()
		if !ok {
			return left, lt, nil
		}
		mn, isAdd := addOps[t.Text]
		if !isAdd {
			return left, lt, nil
		}
		c.next()
		right, rt, err := p.parseMul(c, ln)
		if err != nil {
			return nil, 0, err
		}
		ct, ok := ir.CommonType(lt, rt)
		if !ok {
			if mn == ir.MnAdd && (lt == ir.TypeString || rt == ir.TypeString) {
				ct = ir.TypeString
			} else {
				return nil, 0, fmt.Errorf("type mismatch in expression at line %d", ln)
			}
		}
		dst := p.newLocal(ct)
		p.Cmds.Emit(mn, left, right, ir.NewScalarArg(dst, ct))
		left, lt = ir.NewScalarArg(dst, ct), ct
	}
}

func (p *Parser) parseMul(c *cursor, ln int32) (ir.Arg, ir.Type, error) {
	left, lt, err := p.parseUnary(c, ln)
	if err != nil {
		return nil, 0, err
	}
	for {
		t, ok := c.peek()
		if !ok {
			return left, lt, nil
		}
		mn, isMul := mulOps[t.Text]
		if !isMul {
			return left, lt, nil
		}
		c.next()
		right, rt, err := p.parseUnary(c, ln)
		if err != nil {
			return nil, 0, err
		}
		ct, _ := ir.CommonType(lt, rt)
		dst := p.newLocal(ct)
		p.Cmds.Emit(mn, left, right, ir.NewScalarArg(dst, ct))
		left, lt = ir.NewScalarArg(dst, ct), ct
	}
}

func (p *Parser) parseUnary(c *cursor, ln int32) (ir.Arg, ir.Type, error) {
	t, ok := c.peek()
	if ok && t.Kind == lexer.KindOp && t.Text == "-" {
		c.next()
		v, vt, err := p.parseUnary(c, ln)
		if err != nil {
			return nil, 0, err
		}
		dst := p.newLocal(vt)
		p.Cmds.Emit(ir.MnNeg, v, ir.NewScalarArg(dst, vt))
		return ir.NewScalarArg(dst, vt), vt, nil
	}
	if ok && t.Kind == lexer.KindIdent && (t.Text == "NOT") {
		c.next()
		v, vt, err := p.parseUnary(c, ln)
		if err != nil {
			return nil, 0, err
		}
		dst := p.newLocal(vt)
		p.Cmds.Emit(ir.MnNot, v, ir.NewScalarArg(dst, vt))
		return ir.NewScalarArg(dst, vt), vt, nil
	}
	return p.parsePow(c, ln)
}

func (p *Parser) parsePow(c *cursor, ln int32) (ir.Arg, ir.Type, error) {
	left, lt, err := p.parsePrimary(c, ln)
	if err != nil {
		return nil, 0, err
	}
	if t, ok := c.peek(); ok && t.Text == "^" {
		c.next()
		right, _, err := p.parseUnary(c, ln) // right-associative
		if err != nil {
			return nil, 0, err
		}
		dst := p.newLocal(lt)
		p.Cmds.Emit(ir.MnPow, left, right, ir.NewScalarArg(dst, lt))
		return ir.NewScalarArg(dst, lt), lt, nil
	}
	return left, lt, nil
}

func (p *Parser) parsePrimary(c *cursor, ln int32) (ir.Arg, ir.Type, error) {
	t, ok := c.next()
	if !ok {
		return nil, 0, fmt.Errorf("unexpected end of expression at line %d", ln)
	}
	switch {
	case t.Kind == lexer.KindOp && t.Text == "(":
		arg, typ, err := p.parseOr(c, ln)
		if err != nil {
			return nil, 0, err
		}
		if cl, ok := c.next(); !ok || cl.Text != ")" {
			return nil, 0, fmt.Errorf("unbalanced brackets at line %d", ln)
		}
		return arg, typ, nil

	case t.Kind == lexer.KindNumber:
		return p.numericLiteral(t.Text), numericLiteralType(t.Text), nil

	case t.Kind == lexer.KindString:
		raw := t.Text
		if len(raw) >= 2 {
			raw = raw[1 : len(raw)-1]
		}
		return ir.NewScalarArg(ir.EscapeString(strings.ReplaceAll(raw, `""`, `"`)), ir.TypeString), ir.TypeString, nil

	case t.Kind == lexer.KindIdent:
		return p.parseIdentPrimary(c, t, ln)
	}
	return nil, 0, fmt.Errorf("unexpected token %q at line %d", t.Text, ln)
}

func (p *Parser) numericLiteral(text string) ir.Arg {
	return ir.NewScalarArg(text, numericLiteralType(text))
}

// numericLiteralType applies the minimal-numeric-type inference rule
// (spec §4.11) to a literal's textual form.
func numericLiteralType(text string) ir.Type {
	v, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X"), hexOrDec(text), 64)
	if err != nil {
		return ir.TypeLong
	}
	return ir.MinimalNumericType(v)
}

func hexOrDec(text string) int {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		return 16
	}
	return 10
}

// parseIdentPrimary handles a bare identifier: a standard/user function
// call, an array subscript/element reference, or a plain variable read.
func (p *Parser) parseIdentPrimary(c *cursor, t lexer.Token, ln int32) (ir.Arg, ir.Type, error) {
	name := t.Text
	hasParen := false
	if pt, ok := c.peek(); ok && pt.Text == "(" {
		hasParen = true
	}

	switch name {
	case "TRUE":
		return ir.NewScalarArg("1", ir.TypeByte), ir.TypeByte, nil
	case "FALSE":
		return ir.NewScalarArg("0", ir.TypeByte), ir.TypeByte, nil
	}

	if hasParen && (stdfn.Exists(name) || name == "IIF") {
		c.next() // consume "("
		var argVals []ir.Arg
		var argTypes []ir.Type
		for {
			if pt, ok := c.peek(); ok && pt.Text == ")" {
				break
			}
			a, at, err := p.parseOr(c, ln)
			if err != nil {
				return nil, 0, err
			}
			argVals = append(argVals, a)
			argTypes = append(argTypes, at)
			if pt, ok := c.peek(); ok && pt.Text == "," {
				c.next()
				continue
			}
			break
		}
		if ct, ok := c.next(); !ok || ct.Text != ")" {
			return nil, 0, fmt.Errorf("unbalanced brackets in call to %s at line %d", name, ln)
		}
		return p.emitStdCall(name, argVals, argTypes, ln)
	}

	if hasParen {
		// Array element reference or user-function call.
		c.next()
		var subVals []ir.TypedValue
		for {
			if pt, ok := c.peek(); ok && pt.Text == ")" {
				break
			}
			a, at, err := p.parseOr(c, ln)
			if err != nil {
				return nil, 0, err
			}
			subVals = append(subVals, ir.NewTypedValue(argAsName(a), at))
			if pt, ok := c.peek(); ok && pt.Text == "," {
				c.next()
				continue
			}
			break
		}
		if ct, ok := c.next(); !ok || ct.Text != ")" {
			return nil, 0, fmt.Errorf("unbalanced brackets at line %d", ln)
		}
		if fn, ok := p.NS.LookupFunction(name); ok {
			return p.emitUserCall(fn, subVals, ln)
		}
		v, err := p.NS.MustResolve(name)
		if err != nil {
			return nil, 0, err
		}
		arg := ir.Arg{ir.NewTypedValue(v.GenName, v.Type)}
		arg = append(arg, subVals...)
		return arg, v.Type, nil
	}

	if ir.FnArgIndex(name) >= 0 {
		return ir.NewScalarArg(name, ir.TypeUnknown), ir.TypeUnknown, nil
	}
	if idx, ok := p.argAliases[name]; ok {
		at := p.argTypes[name]
		return ir.NewScalarArg(fmt.Sprintf("__ARG_%d", idx), at), at, nil
	}
	v, err := p.NS.MustResolve(name)
	if err != nil {
		return nil, 0, err
	}
	return ir.NewScalarArg(v.GenName, v.Type), v.Type, nil
}

// argAsName collapses a just-parsed value Arg into the single TypedValue a
// composite argument's subscript slot needs: a literal keeps its text, a
// computed value is already a named local/variable.
func argAsName(a ir.Arg) string {
	if len(a) == 1 {
		return a[0].Value
	}
	return a.String()
}

// emitStdCall lowers a call to a standard function (spec §12 / internal/stdfn)
// using the __ARG_i / __RET calling convention: assign each actual into a
// fresh "__ARG_i" slot, CALL the mangled internal name, then read the
// result back from "__RET".
func (p *Parser) emitStdCall(name string, args []ir.Arg, argTypes []ir.Type, ln int32) (ir.Arg, ir.Type, error) {
	if name == "IIF" {
		return p.emitIIF(args, argTypes, ln)
	}
	fn := stdfn.Get(name)
	if fn == nil {
		return nil, 0, fmt.Errorf("unknown function %q at line %d", name, ln)
	}
	retType := fn.Ret
	for i, a := range args {
		argType := ir.TypeUnknown
		if i < len(fn.Args) {
			argType = fn.Args[i].Type
		}
		p.Cmds.Emit(ir.MnAssign, a, ir.NewScalarArg(fmt.Sprintf("__ARG_%d", i), argType))
	}
	p.Cmds.Emit(ir.MnCall, ir.NewScalarArg(fn.IntName, ir.TypeLabel))
	dst := p.newLocal(retType)
	p.Cmds.Emit(ir.MnAssign, ir.NewScalarArg("__RET", retType), ir.NewScalarArg(dst, retType))
	return ir.NewScalarArg(dst, retType), retType, nil
}

// emitIIF lowers the IIF(cond, a, b) pseudo-function as a conditional
// move between two already-evaluated arms, with the common-type rule of
// spec §4.11 applied to the result local.
func (p *Parser) emitIIF(args []ir.Arg, argTypes []ir.Type, ln int32) (ir.Arg, ir.Type, error) {
	if len(args) != 3 {
		return nil, 0, fmt.Errorf("IIF requires 3 arguments at line %d", ln)
	}
	ct, ok := ir.CommonType(argTypes[1], argTypes[2])
	if !ok {
		return nil, 0, fmt.Errorf("IIF arms have incompatible types at line %d", ln)
	}
	dst := p.newLocal(ct)
	zero := ir.NewScalarArg("0", ir.TypeByte)
	elseLbl := p.Cmds.EmitLabel()
	endLbl := p.Cmds.EmitLabel()
	p.Cmds.Emit(ir.MnEq, args[0], zero)
	p.Cmds.Emit(ir.MnJt, ir.NewScalarArg(elseLbl, ir.TypeLabel))
	p.Cmds.Emit(ir.MnAssign, args[1], ir.NewScalarArg(dst, ct))
	p.Cmds.Emit(ir.MnJmp, ir.NewScalarArg(endLbl, ir.TypeLabel))
	p.Cmds.EmitNamedLabel(elseLbl)
	p.Cmds.Emit(ir.MnAssign, args[2], ir.NewScalarArg(dst, ct))
	p.Cmds.EmitNamedLabel(endLbl)
	return ir.NewScalarArg(dst, ct), ct, nil
}

// emitUserCall lowers a call to a user DEF'd function using the same
// __ARG_i / __RET convention as standard functions (spec §4.9: formal
// arguments are substituted as "__ARG_<i>" inside the function body).
func (p *Parser) emitUserCall(fn *symbols.Function, subVals []ir.TypedValue, ln int32) (ir.Arg, ir.Type, error) {
	for i, tv := range subVals {
		argType := ir.TypeUnknown
		if i < len(fn.ArgTypes) {
			argType = fn.ArgTypes[i]
		}
		p.Cmds.Emit(ir.MnAssign, ir.Arg{tv}, ir.NewScalarArg(fmt.Sprintf("__ARG_%d", i), argType))
	}
	for i := len(subVals); i < len(fn.ArgDefaults); i++ {
		p.Cmds.Emit(ir.MnAssign, ir.NewScalarArg(fn.ArgDefaults[i], fn.ArgTypes[i]), ir.NewScalarArg(fmt.Sprintf("__ARG_%d", i), fn.ArgTypes[i]))
	}
	p.Cmds.Emit(ir.MnCall, ir.NewScalarArg(fn.InternalName, ir.TypeLabel))
	dst := p.newLocal(fn.ReturnType)
	p.Cmds.Emit(ir.MnAssign, ir.NewScalarArg("__RET", fn.ReturnType), ir.NewScalarArg(dst, fn.ReturnType))
	return ir.NewScalarArg(dst, fn.ReturnType), fn.ReturnType, nil
}
