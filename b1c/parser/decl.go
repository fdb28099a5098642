package parser

import (
	"fmt"

	"github.com/basic1rv32/toolchain/b1c/lexer"
	"github.com/basic1rv32/toolchain/b1c/symbols"
	"github.com/basic1rv32/toolchain/internal/ir"
)

// collectDim parses one DIM line in pass 1: optional GLOBAL/VOLATILE/
// STATIC/CONST modifiers, name, optional "(bounds)", optional "AS type",
// optional "AT address" (memory-mapped), optional "= initializer".
func (p *Parser) collectDim(line lexer.Line) error {
	toks := line.Tokens
	_, kwIdx := firstKeyword(line)
	i := kwIdx + 1

	var isGlobal, isVolatile, isStatic, isConst bool
	for i < len(toks) && toks[i].Kind == lexer.KindIdent {
		switch toks[i].Text {
		case "GLOBAL":
			isGlobal = true
		case "VOLATILE":
			isVolatile = true
		case "STATIC":
			isStatic = true
		case "CONST":
			isConst = true
		default:
			goto gotName
		}
		i++
	}
gotName:
	if i >= len(toks) {
		return fmt.Errorf("line %d: DIM expects a variable name", line.Number)
	}
	name := toks[i].Text
	i++

	var dimCount int
	var bounds [][2]int64
	if i < len(toks) && toks[i].Text == "(" {
		depth := 1
		j := i + 1
		for j < len(toks) && depth > 0 {
			if toks[j].Text == "(" {
				depth++
			} else if toks[j].Text == ")" {
				depth--
			}
			j++
		}
		subToks := toks[i+1 : j-1]
		i = j
		for _, part := range splitTopLevelCommaToks(subToks) {
			toIdx := scanKeywordTopLevel(part, "TO")
			if toIdx >= 0 {
				bounds = append(bounds, [2]int64{p.evalConstInt(part[:toIdx]), p.evalConstInt(part[toIdx+1:])})
			} else {
				bounds = append(bounds, [2]int64{int64(p.Opts.Base), p.evalConstInt(part)})
			}
			dimCount++
		}
	}

	varType := symbols.ImpliedType(name)
	if i < len(toks) && toks[i].Text == "AS" {
		i++
		if i < len(toks) {
			varType = typeFromKeyword(toks[i].Text)
			i++
		}
	}

	var hasAddr bool
	var addr int64
	if i < len(toks) && toks[i].Text == "AT" {
		if isConst {
			return fmt.Errorf("line %d: CONST %q may not be placed AT an address", line.Number, name)
		}
		i++
		if i < len(toks) {
			addr = p.evalConstInt(toks[i : i+1])
			hasAddr = true
			i++
		}
	}

	var initVals []string
	if i < len(toks) && toks[i].Text == "=" {
		initVals = tokensToLiteralStrings(toks[i+1:])
	}
	if isConst && len(initVals) == 0 {
		return fmt.Errorf("line %d: CONST %q requires an initializer", line.Number, name)
	}

	_, err := p.NS.Declare(&symbols.Variable{
		Name: name, Type: varType, DimCount: dimCount, DimBounds: bounds,
		IsVolatile: isVolatile, IsMemMapped: hasAddr, IsStatic: isStatic, IsConst: isConst,
		IsGlobal: isGlobal, Address: addr, HasAddress: hasAddr, InitValues: initVals,
	})
	return err
}

// dimName re-extracts the declared variable's source name from a DIM line's
// remainder, skipping the modifier keywords collectDim already consumed.
func dimName(rest []lexer.Token) string {
	i := 1 // skip "DIM"
	for i < len(rest) && rest[i].Kind == lexer.KindIdent {
		switch rest[i].Text {
		case "GLOBAL", "VOLATILE", "STATIC", "CONST":
			i++
			continue
		}
		break
	}
	if i < len(rest) {
		return rest[i].Text
	}
	return ""
}

// emitDimRecord emits the pass-2 GA/MA allocation record for a DIM line,
// in source order (spec §4.7: "GA/MA... declares a variable's storage").
func (p *Parser) emitDimRecord(line lexer.Line, rest []lexer.Token) error {
	name := dimName(rest)
	v, ok := p.NS.Lookup(name)
	if !ok {
		return fmt.Errorf("line %d: internal: DIM variable %q not recorded", line.Number, name)
	}
	flags := flagsDescriptor(v)
	args := []ir.Arg{ir.NewScalarArg(v.GenName, ir.TypeVarRef)}
	mn := ir.MnGlobalAlloc
	if v.HasAddress {
		mn = ir.MnMemAlloc
		args = append(args, ir.NewScalarArg(fmt.Sprintf("%d", v.Address), ir.TypeLong))
	}
	args = append(args, ir.NewScalarArg(flags, v.Type))
	for _, b := range v.DimBounds {
		args = append(args, ir.NewScalarArg(fmt.Sprintf("%d..%d", b[0], b[1]), ir.TypeLong))
	}
	p.Cmds.Emit(mn, args...)
	return nil
}

func flagsDescriptor(v *symbols.Variable) string {
	s := v.Type.String()
	if v.IsVolatile {
		s += ":VOLATILE"
	}
	if v.IsStatic {
		s += ":STATIC"
	}
	if v.IsConst {
		s += ":CONST"
	}
	return s
}

// applyOption handles one OPTION line in pass 1 (spec §4.8: BASE,
// EXPLICIT, NOCHECK, INPUTDEVICE, OUTPUTDEVICE).
func (p *Parser) applyOption(line lexer.Line) error {
	toks := line.Tokens
	_, kwIdx := firstKeyword(line)
	i := kwIdx + 1
	if i >= len(toks) {
		return fmt.Errorf("line %d: OPTION expects a name", line.Number)
	}
	switch toks[i].Text {
	case "BASE":
		i++
		if i < len(toks) {
			p.Opts.Base = int(mustInt(toks[i].Text))
		}
	case "EXPLICIT":
		i++
		p.Opts.Explicit = i >= len(toks) || toks[i].Text != "OFF"
		p.NS.OptionExplicit = p.Opts.Explicit
	case "NOCHECK":
		i++
		p.Opts.NoCheck = i >= len(toks) || toks[i].Text != "OFF"
	case "INPUTDEVICE":
		i++
		if i < len(toks) {
			p.Opts.InputDevice = toks[i].Text
		}
	case "OUTPUTDEVICE":
		i++
		if i < len(toks) {
			p.Opts.OutputDevice = toks[i].Text
		}
	default:
		return fmt.Errorf("line %d: unknown OPTION %q", line.Number, toks[i].Text)
	}
	return nil
}

// collectDef parses one DEF signature in pass 1: name, optional
// "(arg[=default], ...)" parameter list, optional "AS type".
func (p *Parser) collectDef(line lexer.Line) error {
	toks := line.Tokens
	_, kwIdx := firstKeyword(line)
	i := kwIdx + 1
	isGlobal := false
	if i < len(toks) && toks[i].Text == "GLOBAL" {
		isGlobal = true
		i++
	}
	if i >= len(toks) {
		return fmt.Errorf("line %d: DEF expects a function name", line.Number)
	}
	name := toks[i].Text
	i++

	var argNames []string
	var argTypes []ir.Type
	var argOpt []bool
	var argDefaults []string
	if i < len(toks) && toks[i].Text == "(" {
		depth := 1
		j := i + 1
		for j < len(toks) && depth > 0 {
			if toks[j].Text == "(" {
				depth++
			} else if toks[j].Text == ")" {
				depth--
			}
			j++
		}
		argToks := toks[i+1 : j-1]
		i = j
		for _, part := range splitTopLevelCommaToks(argToks) {
			if len(part) == 0 {
				continue
			}
			pname := part[0].Text
			t := symbols.ImpliedType(pname)
			opt, def := false, ""
			if len(part) > 2 && part[1].Text == "=" {
				opt = true
				def = tokensText(part[2:])
			}
			argNames = append(argNames, pname)
			argTypes = append(argTypes, t)
			argOpt = append(argOpt, opt)
			argDefaults = append(argDefaults, def)
		}
	}

	retType := symbols.ImpliedType(name)
	if i < len(toks) && toks[i].Text == "AS" {
		i++
		if i < len(toks) {
			retType = typeFromKeyword(toks[i].Text)
		}
	}

	_, err := p.NS.DeclareFunction(&symbols.Function{
		PublicName: name, IsGlobal: isGlobal, ReturnType: retType,
		ArgNames: argNames, ArgTypes: argTypes, ArgOptional: argOpt, ArgDefaults: argDefaults,
	})
	return err
}

// emitDefBody emits a DEF in pass 2: a DEF record with its internal name,
// return type and argument types, then (when the line has a body) a label
// at its internal name, the body expression (with formal parameters
// aliased to __ARG_<i>), a RETVAL, and a RET.
func (p *Parser) emitDefBody(line lexer.Line, rest []lexer.Token) error {
	toks := rest[1:]
	i := 0
	if i < len(toks) && toks[i].Text == "GLOBAL" {
		i++
	}
	if i >= len(toks) {
		return fmt.Errorf("line %d: malformed DEF", line.Number)
	}
	name := toks[i].Text
	i++
	fn, ok := p.NS.LookupFunction(name)
	if !ok {
		return fmt.Errorf("line %d: internal: DEF %q not recorded", line.Number, name)
	}
	defArgs := []ir.Arg{ir.NewScalarArg(fn.InternalName, ir.TypeLabel), ir.NewScalarArg(fn.ReturnType.String(), ir.TypeUnknown)}
	for _, at := range fn.ArgTypes {
		defArgs = append(defArgs, ir.NewScalarArg(at.String(), ir.TypeUnknown))
	}
	p.Cmds.Emit(ir.MnDefFn, defArgs...)
	if i < len(toks) && toks[i].Text == "(" {
		depth := 1
		j := i + 1
		for j < len(toks) && depth > 0 {
			if toks[j].Text == "(" {
				depth++
			} else if toks[j].Text == ")" {
				depth--
			}
			j++
		}
		i = j
	}
	if i < len(toks) && toks[i].Text == "AS" {
		i += 2
	}
	if i >= len(toks) || toks[i].Text != "=" {
		return nil // forward declaration only, no body on this line
	}
	body := toks[i+1:]

	p.argAliases = map[string]int{}
	p.argTypes = map[string]ir.Type{}
	for idx, n := range fn.ArgNames {
		p.argAliases[n] = idx
		p.argTypes[n] = fn.ArgTypes[idx]
	}

	p.Cmds.EmitNamedLabel(fn.InternalName)
	retArg, _, _, err := p.translateExpr(body, line.Number)
	if err != nil {
		p.argAliases, p.argTypes = nil, nil
		return err
	}
	p.Cmds.Emit(ir.MnRetVal, retArg, ir.NewScalarArg(fn.ReturnType.String(), ir.TypeUnknown))
	p.Cmds.Emit(ir.MnRet)
	p.freeExprLocals()
	p.argAliases, p.argTypes = nil, nil
	return nil
}
