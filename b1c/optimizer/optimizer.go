// Package optimizer implements the IR optimizer (component C10): a
// battery of peephole/dataflow passes run to a joint fixed point over one
// namespace's command list (spec §4.10). Each pass is grounded on the
// teacher's own peephole-simplification style in its assembler's
// fix-up/relaxation loop (iterate until a round makes no change).
package optimizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/basic1rv32/toolchain/internal/ir"
)

// maxRounds bounds the fixed-point loop so a pass bug cannot hang the
// compiler; real programs converge in a handful of rounds.
const maxRounds = 64

// Pass is one optimizer pass: it may rewrite cmds.Items in place and
// reports whether anything changed.
type Pass func(cmds []*ir.Command) ([]*ir.Command, bool)

// Passes lists the fixed-point battery in spec §4.10 order. Pass 17
// ("usage recomputation") is not a separate function: it is the fixed-point
// driver itself — every pass below recomputes labels/usage/live spans from
// the current Items slice on every round, so the "iteration boundary
// between optimizer rounds" the spec names is Optimize's round loop.
var Passes = []Pass{
	unusedLabelRemoval,       // 1
	duplicateLabelMerge,      // 2
	deadCodeAfterTerminators, // 3
	redundantJumpRemoval,     // 4
	duplicateAssignmentElim,  // 5 (conservative subset)
	selfAssignmentRemoval,    // 6
	comparisonReduction,      // 7
	unaryConstantFold,        // 8
	localVariableElimination, // 9 (conservative subset)
	zeroInitElision,          // 10
	localReuse,               // 11 (conservative subset)
	variableReuse,            // 12 (conservative subset)
	algebraicIdentities,      // 13
	immediateFunctionFold,    // 14
	inlineAbsSgn,             // 15
	gaGfSimplification,       // 16
}

// Optimize runs every pass to a joint fixed point (spec §4.10: "run to a
// joint fixed point... halts when a round effects zero changes").
func Optimize(cmds *ir.Commands) {
	for round := 0; round < maxRounds; round++ {
		changed := false
		for _, p := range Passes {
			items, c := p(cmds.Items)
			cmds.Items = items
			changed = changed || c
		}
		if !changed {
			return
		}
	}
}

func isLabel(c *ir.Command) bool { return c.Kind == ir.CmdLabel }

// jumpTargets collects every label name referenced as a jump/call target
// anywhere in items.
func jumpTargets(items []*ir.Command) map[string]bool {
	out := map[string]bool{}
	for _, c := range items {
		if c.Kind != ir.CmdOperation || !ir.JumpTargets[c.Name] {
			continue
		}
		if len(c.Args) > 0 && c.Args[0].IsScalar() {
			out[c.Args[0].Name()] = true
		}
	}
	return out
}

// pass 1: unused label removal.
func unusedLabelRemoval(items []*ir.Command) ([]*ir.Command, bool) {
	used := jumpTargets(items)
	var out []*ir.Command
	changed := false
	for _, c := range items {
		if isLabel(c) && !used[c.Name] {
			changed = true
			continue
		}
		out = append(out, c)
	}
	return out, changed
}

// pass 2: duplicate label merge — contiguous labels before the same
// instruction collapse; jumps to the dropped labels redirect to the
// survivor.
func duplicateLabelMerge(items []*ir.Command) ([]*ir.Command, bool) {
	redirect := map[string]string{}
	var out []*ir.Command
	i := 0
	changed := false
	for i < len(items) {
		if !isLabel(items[i]) {
			out = append(out, items[i])
			i++
			continue
		}
		survivor := items[i].Name
		j := i + 1
		for j < len(items) && isLabel(items[j]) {
			redirect[items[j].Name] = survivor
			changed = true
			j++
		}
		out = append(out, items[i])
		i = j
	}
	if !changed {
		return items, false
	}
	for _, c := range out {
		if c.Kind != ir.CmdOperation || !ir.JumpTargets[c.Name] || len(c.Args) == 0 {
			continue
		}
		if to, ok := redirect[c.Args[0].Name()]; ok {
			c.Args[0] = ir.NewScalarArg(to, c.Args[0].BaseType())
		}
	}
	return out, changed
}

// pass 3: dead-code elision after terminators — between JMP/RET/END and
// the next label, drop everything except declarations (DAT/DEF/MA/NS/GA),
// END records and comparison commands.
func deadCodeAfterTerminators(items []*ir.Command) ([]*ir.Command, bool) {
	keepKind := map[string]bool{ir.MnData: true, ir.MnDefFn: true, ir.MnMemAlloc: true, ir.MnNamespace: true, ir.MnEnd: true, ir.MnGlobalAlloc: true}
	var out []*ir.Command
	changed := false
	dead := false
	for _, c := range items {
		if isLabel(c) {
			dead = false
			out = append(out, c)
			continue
		}
		if dead {
			if c.Kind == ir.CmdOperation && (keepKind[c.Name] || ir.LogOps[c.Name]) {
				out = append(out, c)
			} else {
				changed = true
			}
			continue
		}
		out = append(out, c)
		if c.Kind == ir.CmdOperation && ir.Terminators[c.Name] {
			dead = true
		}
	}
	return out, changed
}

// pass 4: redundant jump removal — "JMP L" immediately followed by "L:"
// is deleted.
func redundantJumpRemoval(items []*ir.Command) ([]*ir.Command, bool) {
	var out []*ir.Command
	changed := false
	for i := 0; i < len(items); i++ {
		c := items[i]
		if c.Kind == ir.CmdOperation && c.Name == ir.MnJmp && len(c.Args) == 1 && i+1 < len(items) {
			next := items[i+1]
			if isLabel(next) && next.Name == c.Args[0].Name() {
				changed = true
				continue
			}
		}
		out = append(out, c)
	}
	return out, changed
}

// pass 5 (conservative subset): duplicate-assignment removal. An
// assignment to a scalar local immediately followed by another write to
// the same local, with no intervening read/use and no call/IO in
// between, is dead.
func duplicateAssignmentElim(items []*ir.Command) ([]*ir.Command, bool) {
	changed := false
	keep := make([]bool, len(items))
	for i := range items {
		keep[i] = true
	}
	for i, c := range items {
		dst, ok := c.Dst()
		if !ok || !dst.IsScalar() || c.Name == ir.MnRead {
			continue
		}
		name := dst.Name()
		for j := i + 1; j < len(items); j++ {
			n := items[j]
			if isLabel(n) {
				break
			}
			if n.MayTouchAnyGlobal() || n.IsInlineAsm() {
				break
			}
			if n.IsUsed(name) {
				break
			}
			if nd, ok := n.Dst(); ok && nd.IsScalar() && nd.Name() == name {
				keep[i] = false
				changed = true
				break
			}
			if ir.Terminators[n.Name] {
				break
			}
		}
	}
	if !changed {
		return items, false
	}
	var out []*ir.Command
	for i, c := range items {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out, true
}

// pass 6: self-assignment removal — "=,x,x" is dropped.
func selfAssignmentRemoval(items []*ir.Command) ([]*ir.Command, bool) {
	var out []*ir.Command
	changed := false
	for _, c := range items {
		if c.Kind == ir.CmdOperation && c.Name == ir.MnAssign && len(c.Args) == 2 && c.Args[0].Equal(c.Args[1]) {
			changed = true
			continue
		}
		out = append(out, c)
	}
	return out, changed
}

func intLiteral(a ir.Arg) (int64, bool) {
	if !a.IsScalar() || !ir.IsNumericLiteral(a.Name()) {
		return 0, false
	}
	v, err := a[0].IntValue()
	if err != nil {
		return 0, false
	}
	return v, true
}

// pass 7: comparison reduction — fold a compare with identical operands,
// known constants, or an unsigned variable against an out-of-range/
// boundary constant to always-true/always-false, and turn the dependent
// JT/JF into an unconditional JMP (or drop it).
func comparisonReduction(items []*ir.Command) ([]*ir.Command, bool) {
	var out []*ir.Command
	changed := false
	for i := 0; i < len(items); i++ {
		c := items[i]
		if c.Kind != ir.CmdOperation || !ir.LogOps[c.Name] || len(c.Args) != 2 {
			out = append(out, c)
			continue
		}
		result, known := foldCompare(c)
		if !known {
			out = append(out, c)
			continue
		}
		changed = true
		if i+1 < len(items) {
			next := items[i+1]
			if next.Kind == ir.CmdOperation && (next.Name == ir.MnJt || next.Name == ir.MnJf) && len(next.Args) == 1 {
				takeBranch := (next.Name == ir.MnJt && result) || (next.Name == ir.MnJf && !result)
				if takeBranch {
					out = append(out, &ir.Command{Kind: ir.CmdOperation, Name: ir.MnJmp, Args: next.Args, LineNum: next.LineNum})
				}
				i++ // consume the JT/JF either way
				continue
			}
		}
		// no dependent branch immediately following; drop the now-useless compare
	}
	return out, changed
}

func foldCompare(c *ir.Command) (result bool, known bool) {
	a, b := c.Args[0], c.Args[1]
	if a.IsScalar() && b.IsScalar() && a.Name() == b.Name() {
		switch c.Name {
		case ir.MnEq, ir.MnLe, ir.MnGe:
			return true, true
		case ir.MnNe, ir.MnLt, ir.MnGt:
			return false, true
		}
	}
	av, aok := intLiteral(a)
	bv, bok := intLiteral(b)
	if aok && bok {
		switch c.Name {
		case ir.MnEq:
			return av == bv, true
		case ir.MnNe:
			return av != bv, true
		case ir.MnLt:
			return av < bv, true
		case ir.MnGt:
			return av > bv, true
		case ir.MnLe:
			return av <= bv, true
		case ir.MnGe:
			return av >= bv, true
		}
		return false, false
	}
	// Unsigned-variable-vs-constant range fold (spec §4.10 pass 7): a
	// BYTE/WORD operand's value is statically known to lie in [0, max], so
	// a comparison against a constant outside (or at the low boundary of)
	// that range is decidable without knowing the operand's actual value.
	if bok && !aok && a.IsScalar() && !ir.IsImmediateValue(a.Name()) && isUnsigned(a.BaseType()) {
		return foldUnsignedBound(c.Name, a.BaseType().MaxUnsigned(), bv)
	}
	if aok && !bok && b.IsScalar() && !ir.IsImmediateValue(b.Name()) && isUnsigned(b.BaseType()) {
		return foldUnsignedBound(flipOp(c.Name), b.BaseType().MaxUnsigned(), av)
	}
	return false, false
}

// isUnsigned reports whether t is one of this IR's unsigned numeric types
// (BYTE, WORD); INT and LONG are signed (ir.Type.IsSigned).
func isUnsigned(t ir.Type) bool {
	return t.IsNumeric() && !t.IsSigned()
}

// flipOp mirrors a comparison operator for operand-order swaps ("c < var"
// becomes "var > c").
func flipOp(op string) string {
	switch op {
	case ir.MnLt:
		return ir.MnGt
	case ir.MnGt:
		return ir.MnLt
	case ir.MnLe:
		return ir.MnGe
	case ir.MnGe:
		return ir.MnLe
	default:
		return op
	}
}

// foldUnsignedBound decides "var OP c" given that var's value is known to
// lie in [0, max] (spec §4.10 pass 7 example: a WORD compared "< 0" is
// always false).
func foldUnsignedBound(op string, max, c int64) (result bool, known bool) {
	switch op {
	case ir.MnEq:
		if c < 0 || c > max {
			return false, true
		}
	case ir.MnNe:
		if c < 0 || c > max {
			return true, true
		}
	case ir.MnLt:
		if c <= 0 {
			return false, true
		}
		if c > max {
			return true, true
		}
	case ir.MnGt:
		if c >= max {
			return false, true
		}
		if c < 0 {
			return true, true
		}
	case ir.MnLe:
		if c < 0 {
			return false, true
		}
		if c >= max {
			return true, true
		}
	case ir.MnGe:
		if c <= 0 {
			return true, true
		}
		if c > max {
			return false, true
		}
	}
	return false, false
}

// pass 8: unary constant fold — "-,imm,dst" becomes "=,-imm,dst";
// "!,imm,dst" becomes "=,~imm,dst".
func unaryConstantFold(items []*ir.Command) ([]*ir.Command, bool) {
	changed := false
	for _, c := range items {
		if c.Kind != ir.CmdOperation || len(c.Args) != 2 || !ir.UnOps[c.Name] {
			continue
		}
		v, ok := intLiteral(c.Args[0])
		if !ok {
			continue
		}
		var folded int64
		switch c.Name {
		case ir.MnNeg:
			folded = -v
		case ir.MnNot:
			folded = ^v
		default:
			continue
		}
		c.Name = ir.MnAssign
		c.Args[0] = ir.NewScalarArg(strconv.FormatInt(folded, 10), c.Args[0].BaseType())
		changed = true
	}
	return items, changed
}

// matchingLocalFree returns the index of the LF matching name, searching
// forward from from, or -1 if none is found.
func matchingLocalFree(items []*ir.Command, from int, name string) int {
	for j := from; j < len(items); j++ {
		c := items[j]
		if c.Kind == ir.CmdOperation && c.Name == ir.MnLocalFree && len(c.Args) > 0 && c.Args[0].Name() == name {
			return j
		}
	}
	return -1
}

// usedInRange reports whether name is referenced anywhere (read, written,
// or as a subscript/call argument) within items[from:to). Inline asm is
// opaque and conservatively treated as touching everything.
func usedInRange(items []*ir.Command, from, to int, name string) bool {
	for idx := from; idx < to && idx < len(items); idx++ {
		c := items[idx]
		if c.Kind == ir.CmdInlineAsm {
			return true
		}
		for _, a := range c.Args {
			if a.References(name) {
				return true
			}
		}
	}
	return false
}

// renameInRange rewrites every occurrence (in any argument, including
// subscripts) of oldName to newName within items[from:to).
func renameInRange(items []*ir.Command, from, to int, oldName, newName string) {
	for idx := from; idx < to && idx < len(items); idx++ {
		c := items[idx]
		for ai, a := range c.Args {
			rewritten := false
			newArg := make(ir.Arg, len(a))
			for ei, tv := range a {
				if tv.Value == oldName {
					newArg[ei] = ir.NewTypedValue(newName, tv.Type)
					rewritten = true
				} else {
					newArg[ei] = tv
				}
			}
			if rewritten {
				c.Args[ai] = newArg
			}
		}
	}
}

// localType returns the type an EmitLocal-shaped LA command declares for
// its local (the type carried by its second argument), if present.
func localType(c *ir.Command) (ir.Type, bool) {
	if len(c.Args) < 2 {
		return ir.TypeUnknown, false
	}
	return c.Args[1].BaseType(), true
}

// rewriteOperand returns a copy of n with every scalar argument equal to
// name replaced by replacement, or nil if name does not occur as a scalar
// argument of n.
func rewriteOperand(n *ir.Command, name string, replacement ir.Arg) *ir.Command {
	newArgs := make([]ir.Arg, len(n.Args))
	replaced := false
	for i, a := range n.Args {
		if a.IsScalar() && a.Name() == name {
			newArgs[i] = replacement
			replaced = true
		} else {
			newArgs[i] = a
		}
	}
	if !replaced {
		return nil
	}
	nc := *n
	nc.Args = newArgs
	return &nc
}

// pass 9 (conservative subset): local-variable elimination. "LA L; =,X,L;
// op,...,L,..." where L is written exactly once (as a plain copy of X) and
// then read at most once before its LF rewrites the read's operand to X
// directly and drops the LA/assign/LF trio; a local written but never read
// before its LF is dropped outright.
func localVariableElimination(items []*ir.Command) ([]*ir.Command, bool) {
	changed := false
	skip := make([]bool, len(items))
	for i, c := range items {
		if skip[i] || c.Kind != ir.CmdOperation || c.Name != ir.MnLocalAlloc || len(c.Args) == 0 {
			continue
		}
		name := c.Args[0].Name()
		lfIdx := matchingLocalFree(items, i+1, name)
		if lfIdx < 0 || i+1 >= lfIdx {
			continue
		}
		asg := items[i+1]
		if skip[i+1] || asg.Kind != ir.CmdOperation || asg.Name != ir.MnAssign || len(asg.Args) != 2 {
			continue
		}
		dst := asg.Args[1]
		if !dst.IsScalar() || dst.Name() != name {
			continue
		}
		src := asg.Args[0]

		blocked := false
		readIdx := -1
		for j := i + 2; j < lfIdx; j++ {
			if skip[j] {
				continue
			}
			n := items[j]
			if nd, ok := n.Dst(); ok && nd.IsScalar() && nd.Name() == name {
				blocked = true
				break
			}
			if n.IsSubOrArg(name) {
				blocked = true
				break
			}
			if n.IsSrc(name) {
				if readIdx >= 0 {
					blocked = true
					break
				}
				readIdx = j
			}
		}
		if blocked {
			continue
		}
		if readIdx < 0 {
			skip[i] = true
			skip[i+1] = true
			skip[lfIdx] = true
			changed = true
			continue
		}
		rewritten := rewriteOperand(items[readIdx], name, src)
		if rewritten == nil {
			continue
		}
		items[readIdx] = rewritten
		skip[i] = true
		skip[i+1] = true
		skip[lfIdx] = true
		changed = true
	}
	if !changed {
		return items, false
	}
	var out []*ir.Command
	for i, c := range items {
		if !skip[i] {
			out = append(out, c)
		}
	}
	return out, true
}

// literalText reports whether a is an immediate literal, returning its text.
func literalText(a ir.Arg) (string, bool) {
	if !a.IsScalar() || !ir.IsImmediateValue(a.Name()) {
		return "", false
	}
	return a.Name(), true
}

func isZeroLiteral(a ir.Arg) bool {
	if !a.IsScalar() {
		return false
	}
	if a.Name() == `""` {
		return true
	}
	v, ok := intLiteral(a)
	return ok && v == 0
}

// pass 10: constant propagation and dead-store elision for variables
// initialized zero (spec §4.10 pass 10, "reuse_imm_values(init=true)"):
// the first write of 0/"" to a just-allocated non-volatile, non-memory,
// non-const scalar — an LA local or a GA global — is elided, since its
// storage already reads as zero on allocation; a later write storing a
// literal identical to the one already resident in that scalar is elided
// too. The optimizer has no symbol-table handle (it only ever sees the
// flat IR list), so GA's volatile/const flags are read directly off the
// colon-joined descriptor emitDimRecord packs into the GA's second
// argument rather than consulted from the declaration.
func zeroInitElision(items []*ir.Command) ([]*ir.Command, bool) {
	changed := false
	var out []*ir.Command
	allocated := map[string]bool{}     // just-allocated, no write observed yet
	lastLiteral := map[string]string{} // name -> literal text last stored
	for _, c := range items {
		if c.Kind == ir.CmdOperation && c.Name == ir.MnLocalAlloc && len(c.Args) > 0 {
			allocated[c.Args[0].Name()] = true
			out = append(out, c)
			continue
		}
		if c.Kind == ir.CmdOperation && c.Name == ir.MnGlobalAlloc && len(c.Args) == 2 && c.Args[0].IsScalar() {
			flags := c.Args[1].Name()
			if !strings.Contains(flags, ":VOLATILE") && !strings.Contains(flags, ":CONST") {
				allocated[c.Args[0].Name()] = true
			}
			out = append(out, c)
			continue
		}
		if c.Kind == ir.CmdOperation && c.Name == ir.MnAssign && len(c.Args) == 2 && c.Args[1].IsScalar() {
			name := c.Args[1].Name()
			if lit, isLit := literalText(c.Args[0]); isLit {
				if allocated[name] && isZeroLiteral(c.Args[0]) {
					delete(allocated, name)
					lastLiteral[name] = lit
					changed = true
					continue
				}
				if prev, ok := lastLiteral[name]; ok && prev == lit {
					changed = true
					continue
				}
				delete(allocated, name)
				lastLiteral[name] = lit
				out = append(out, c)
				continue
			}
			delete(allocated, name)
			delete(lastLiteral, name)
			out = append(out, c)
			continue
		}
		if dst, ok := c.Dst(); ok && dst.IsScalar() {
			delete(allocated, dst.Name())
			delete(lastLiteral, dst.Name())
		}
		if c.MayTouchAnyGlobal() || c.IsInlineAsm() {
			lastLiteral = map[string]string{}
		}
		out = append(out, c)
	}
	return out, changed
}

// pass 11 (conservative subset): local reuse. An inner local whose entire
// live span is nested inside an outer, still-open local of the identical
// type, and which never references that outer local during its own span,
// is renamed onto the outer local's storage and its own LA/LF dropped.
func localReuse(items []*ir.Command) ([]*ir.Command, bool) {
	type openLocal struct {
		name string
		typ  ir.Type
	}
	changed := false
	skip := make([]bool, len(items))
	var stack []openLocal
	for i := 0; i < len(items); i++ {
		if skip[i] {
			continue
		}
		c := items[i]
		if c.Kind == ir.CmdOperation && c.Name == ir.MnLocalFree && len(c.Args) > 0 {
			name := c.Args[0].Name()
			for k := len(stack) - 1; k >= 0; k-- {
				if stack[k].name == name {
					stack = append(stack[:k], stack[k+1:]...)
					break
				}
			}
			continue
		}
		if c.Kind != ir.CmdOperation || c.Name != ir.MnLocalAlloc || len(c.Args) == 0 {
			continue
		}
		name := c.Args[0].Name()
		typ, ok := localType(c)
		if !ok {
			continue
		}
		lfIdx := matchingLocalFree(items, i+1, name)
		if lfIdx < 0 {
			stack = append(stack, openLocal{name, typ})
			continue
		}
		reused := false
		for k := len(stack) - 1; k >= 0; k-- {
			cand := stack[k]
			if cand.typ != typ {
				continue
			}
			if usedInRange(items, i+1, lfIdx, cand.name) {
				continue
			}
			renameInRange(items, i, lfIdx+1, name, cand.name)
			skip[i] = true
			skip[lfIdx] = true
			changed = true
			reused = true
			break
		}
		if !reused {
			stack = append(stack, openLocal{name, typ})
		}
	}
	if !changed {
		return items, false
	}
	var out []*ir.Command
	for i, c := range items {
		if !skip[i] {
			out = append(out, c)
		}
	}
	return out, true
}

// pass 12 (conservative subset): variable reuse. "+,A,B,L; -,L,C,L;
// *,D,L,L; /,100,L,E" — when L's last occurrence assigns into a different,
// untouched-until-then destination E of the same type, every earlier write
// to L is rewritten to write E instead and L's LA/LF is dropped.
func variableReuse(items []*ir.Command) ([]*ir.Command, bool) {
	changed := false
	skip := make([]bool, len(items))
	for i, c := range items {
		if skip[i] || c.Kind != ir.CmdOperation || c.Name != ir.MnLocalAlloc || len(c.Args) == 0 {
			continue
		}
		name := c.Args[0].Name()
		typ, ok := localType(c)
		if !ok {
			continue
		}
		lfIdx := matchingLocalFree(items, i+1, name)
		if lfIdx < 0 {
			continue
		}
		lastUse := -1
		for j := i + 1; j < lfIdx; j++ {
			if skip[j] {
				continue
			}
			n := items[j]
			_, isDst := n.Dst()
			if n.IsUsed(name) || (isDst && n.IsDst(name)) {
				lastUse = j
			}
		}
		if lastUse < 0 {
			continue
		}
		last := items[lastUse]
		dst, ok := last.Dst()
		if !ok || !dst.IsScalar() || dst.Name() == name || dst.BaseType() != typ {
			continue
		}
		e := dst.Name()
		if e == "" || ir.IsImmediateValue(e) {
			continue
		}
		if usedInRange(items, i+1, lastUse, e) {
			continue // E touched before its final assignment — aliasing risk
		}
		renameInRange(items, i+1, lastUse+1, name, e)
		skip[i] = true
		skip[lfIdx] = true
		changed = true
	}
	if !changed {
		return items, false
	}
	var out []*ir.Command
	for i, c := range items {
		if !skip[i] {
			out = append(out, c)
		}
	}
	return out, true
}

// pass 13: algebraic identities — "+,X,0", "*,X,1", "*,X,0", "/,X,1",
// "%,X,1", "*,X,-1" simplify; associative chains of add/mul with two
// immediate operands fold their constants together.
func algebraicIdentities(items []*ir.Command) ([]*ir.Command, bool) {
	changed := false
	var out []*ir.Command
	for _, c := range items {
		if c.Kind == ir.CmdOperation && ir.BinOps[c.Name] && len(c.Args) == 3 {
			if simplified, ok := simplifyBinOp(c); ok {
				out = append(out, simplified)
				changed = true
				continue
			}
		}
		out = append(out, c)
	}
	return out, changed
}

func simplifyBinOp(c *ir.Command) (*ir.Command, bool) {
	a, b, dst := c.Args[0], c.Args[1], c.Args[2]
	bv, bIsConst := intLiteral(b)
	switch c.Name {
	case ir.MnAdd:
		if bIsConst && bv == 0 {
			return &ir.Command{Kind: ir.CmdOperation, Name: ir.MnAssign, Args: []ir.Arg{a, dst}, LineNum: c.LineNum}, true
		}
	case ir.MnMul:
		if bIsConst && bv == 1 {
			return &ir.Command{Kind: ir.CmdOperation, Name: ir.MnAssign, Args: []ir.Arg{a, dst}, LineNum: c.LineNum}, true
		}
		if bIsConst && bv == 0 {
			return &ir.Command{Kind: ir.CmdOperation, Name: ir.MnAssign, Args: []ir.Arg{ir.NewScalarArg("0", dst.BaseType()), dst}, LineNum: c.LineNum}, true
		}
		if bIsConst && bv == -1 {
			return &ir.Command{Kind: ir.CmdOperation, Name: ir.MnNeg, Args: []ir.Arg{a, dst}, LineNum: c.LineNum}, true
		}
	case ir.MnDiv, ir.MnMod:
		if bIsConst && bv == 1 && c.Name == ir.MnDiv {
			return &ir.Command{Kind: ir.CmdOperation, Name: ir.MnAssign, Args: []ir.Arg{a, dst}, LineNum: c.LineNum}, true
		}
	}
	return nil, false
}

// truncateToType truncates v to t's storage width, sign-extending when t
// is signed (CBYTE/CINT/CWRD/CLNG, spec §4.10 pass 14).
func truncateToType(v int64, t ir.Type) int64 {
	bits := t.BitWidth()
	if bits <= 0 || bits >= 64 {
		return v
	}
	mask := int64(1)<<uint(bits) - 1
	u := v & mask
	if t.IsSigned() {
		signBit := int64(1) << uint(bits-1)
		if u&signBit != 0 {
			u -= int64(1) << uint(bits)
		}
	}
	return u
}

func foldConv(t ir.Type) func(ir.Arg) (string, ir.Type, bool) {
	return func(lit ir.Arg) (string, ir.Type, bool) {
		v, ok := intLiteral(lit)
		if !ok {
			return "", ir.TypeUnknown, false
		}
		return strconv.FormatInt(truncateToType(v, t), 10), t, true
	}
}

func foldLen(lit ir.Arg) (string, ir.Type, bool) {
	if !lit.IsScalar() || !ir.IsStringLiteral(lit.Name()) {
		return "", ir.TypeUnknown, false
	}
	raw, err := ir.UnescapeString(lit.Name())
	if err != nil {
		return "", ir.TypeUnknown, false
	}
	return strconv.Itoa(len(raw)), ir.TypeWord, true
}

func foldAsc(lit ir.Arg) (string, ir.Type, bool) {
	if !lit.IsScalar() || !ir.IsStringLiteral(lit.Name()) {
		return "", ir.TypeUnknown, false
	}
	raw, err := ir.UnescapeString(lit.Name())
	if err != nil || len(raw) == 0 {
		return "", ir.TypeUnknown, false
	}
	return strconv.Itoa(int(raw[0])), ir.TypeByte, true
}

func foldChr(lit ir.Arg) (string, ir.Type, bool) {
	v, ok := intLiteral(lit)
	if !ok || v < 0 || v > 255 {
		return "", ir.TypeUnknown, false
	}
	return ir.EscapeString(string([]byte{byte(v)})), ir.TypeString, true
}

func foldVal(lit ir.Arg) (string, ir.Type, bool) {
	if !lit.IsScalar() || !ir.IsStringLiteral(lit.Name()) {
		return "", ir.TypeUnknown, false
	}
	raw, err := ir.UnescapeString(lit.Name())
	if err != nil {
		return "", ir.TypeUnknown, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return "", ir.TypeUnknown, false
	}
	return strconv.FormatInt(v, 10), ir.TypeLong, true
}

func foldStr(lit ir.Arg) (string, ir.Type, bool) {
	v, ok := intLiteral(lit)
	if !ok {
		return "", ir.TypeUnknown, false
	}
	return ir.EscapeString(strconv.FormatInt(v, 10)), ir.TypeString, true
}

// immediateFolds maps a standard function's mangled internal name (the
// label a CALL targets, per internal/stdfn's IntName) to its
// immediate-argument fold, for the single-argument functions spec §4.10
// pass 14 names.
var immediateFolds = map[string]func(ir.Arg) (string, ir.Type, bool){
	"__LEN":   foldLen,
	"__ASC":   foldAsc,
	"__CHR":   foldChr,
	"__VAL":   foldVal,
	"__STR":   foldStr,
	"__CBYTE": foldConv(ir.TypeByte),
	"__CINT":  foldConv(ir.TypeInt),
	"__CWRD":  foldConv(ir.TypeWord),
	"__CLNG":  foldConv(ir.TypeLong),
}

// pass 14: immediate function-argument folding. emitStdCall always lowers
// a single-argument standard-function call to exactly "=,arg,__ARG_0",
// "CALL,<intname>", "=,__RET,dst"; when arg is itself an immediate
// literal, the whole triple folds to a plain "=,<folded literal>,dst".
func immediateFunctionFold(items []*ir.Command) ([]*ir.Command, bool) {
	changed := false
	skip := make([]bool, len(items))
	for i, c := range items {
		if c.Kind != ir.CmdOperation || c.Name != ir.MnCall || len(c.Args) != 1 {
			continue
		}
		fold, ok := immediateFolds[c.Args[0].Name()]
		if !ok {
			continue
		}
		argIdx := i - 1
		if argIdx < 0 || skip[argIdx] {
			continue
		}
		argCmd := items[argIdx]
		if argCmd.Kind != ir.CmdOperation || argCmd.Name != ir.MnAssign || len(argCmd.Args) != 2 {
			continue
		}
		if !argCmd.Args[1].IsScalar() || argCmd.Args[1].Name() != "__ARG_0" {
			continue
		}
		if i+1 >= len(items) {
			continue
		}
		retCmd := items[i+1]
		if retCmd.Kind != ir.CmdOperation || retCmd.Name != ir.MnAssign || len(retCmd.Args) != 2 {
			continue
		}
		if !retCmd.Args[0].IsScalar() || retCmd.Args[0].Name() != "__RET" {
			continue
		}
		lit := argCmd.Args[0]
		if !lit.IsScalar() || !ir.IsImmediateValue(lit.Name()) {
			continue
		}
		newVal, newType, ok := fold(lit)
		if !ok {
			continue
		}
		dst := retCmd.Args[1]
		items[i+1] = &ir.Command{Kind: ir.CmdOperation, Name: ir.MnAssign,
			Args: []ir.Arg{ir.NewScalarArg(newVal, newType), dst}, LineNum: retCmd.LineNum}
		skip[argIdx] = true
		skip[i] = true
		changed = true
	}
	if !changed {
		return items, false
	}
	var out []*ir.Command
	for i, c := range items {
		if !skip[i] {
			out = append(out, c)
		}
	}
	return out, true
}

var synthCounter int

// synthLabel returns a fresh, globally-unique label name for inline
// expansions this pass introduces; "__OPT_" cannot collide with any of the
// parser's own auto-generated-name markers ("__ALB_", "__LCL_", "__ULB_",
// "__ARG_").
func synthLabel(tag string) string {
	synthCounter++
	return fmt.Sprintf("__OPT_%s_%d", tag, synthCounter)
}

func newCmp(op string, a, b ir.Arg, ln int32) *ir.Command {
	return &ir.Command{Kind: ir.CmdOperation, Name: op, Args: []ir.Arg{a, b}, LineNum: ln}
}

func newUnary(op string, src, dst ir.Arg, ln int32) *ir.Command {
	return &ir.Command{Kind: ir.CmdOperation, Name: op, Args: []ir.Arg{src, dst}, LineNum: ln}
}

func newJump(op, label string, ln int32) *ir.Command {
	return &ir.Command{Kind: ir.CmdOperation, Name: op, Args: []ir.Arg{ir.NewScalarArg(label, ir.TypeLabel)}, LineNum: ln}
}

func newLabel(name string) *ir.Command {
	return &ir.Command{Kind: ir.CmdLabel, Name: name}
}

func newAssign(src, dst ir.Arg, ln int32) *ir.Command {
	return &ir.Command{Kind: ir.CmdOperation, Name: ir.MnAssign, Args: []ir.Arg{src, dst}, LineNum: ln}
}

func newAssignLit(lit string, t ir.Type, dst ir.Arg, ln int32) *ir.Command {
	return newAssign(ir.NewScalarArg(lit, t), dst, ln)
}

// expandAbs lowers ABS(x) inline (spec §4.10 pass 15): branchless (a plain
// copy) when x's type is unsigned, since it is already non-negative;
// otherwise a conditional negate.
func expandAbs(x, dst ir.Arg, ln int32) []*ir.Command {
	xt := x.BaseType()
	if !xt.IsSigned() {
		return []*ir.Command{newAssign(x, dst, ln)}
	}
	posLbl := synthLabel("ABS")
	endLbl := synthLabel("ABS")
	zero := ir.NewScalarArg("0", xt)
	return []*ir.Command{
		newCmp(ir.MnGe, x, zero, ln),
		newJump(ir.MnJt, posLbl, ln),
		newUnary(ir.MnNeg, x, dst, ln), // fallthrough: x < 0
		newJump(ir.MnJmp, endLbl, ln),
		newLabel(posLbl),
		newAssign(x, dst, ln),
		newLabel(endLbl),
	}
}

// expandSgn lowers SGN(x) inline (spec §4.10 pass 15): a 2-way select (0/1)
// for an unsigned x, a 3-way select (-1/0/1) for a signed x.
func expandSgn(x, dst ir.Arg, ln int32) []*ir.Command {
	xt := x.BaseType()
	dt := dst.BaseType()
	zero := ir.NewScalarArg("0", xt)
	if !xt.IsSigned() {
		zeroLbl := synthLabel("SGN")
		endLbl := synthLabel("SGN")
		return []*ir.Command{
			newCmp(ir.MnEq, x, zero, ln),
			newJump(ir.MnJt, zeroLbl, ln),
			newAssignLit("1", dt, dst, ln),
			newJump(ir.MnJmp, endLbl, ln),
			newLabel(zeroLbl),
			newAssignLit("0", dt, dst, ln),
			newLabel(endLbl),
		}
	}
	zeroLbl := synthLabel("SGN")
	negLbl := synthLabel("SGN")
	endLbl := synthLabel("SGN")
	return []*ir.Command{
		newCmp(ir.MnEq, x, zero, ln),
		newJump(ir.MnJt, zeroLbl, ln),
		newCmp(ir.MnLt, x, zero, ln),
		newJump(ir.MnJt, negLbl, ln),
		newAssignLit("1", dt, dst, ln),
		newJump(ir.MnJmp, endLbl, ln),
		newLabel(negLbl),
		newAssignLit("-1", dt, dst, ln),
		newJump(ir.MnJmp, endLbl, ln),
		newLabel(zeroLbl),
		newAssignLit("0", dt, dst, ln),
		newLabel(endLbl),
	}
}

// pass 15: inline expansion of ABS/SGN. Like the immediate fold above,
// this matches the "=,x,__ARG_0" / "CALL,__ABS|__SGN" / "=,__RET,dst"
// triple emitStdCall produces, but applies regardless of whether x is an
// immediate — the call sequence is replaced by branchy arithmetic instead
// of a real CALL.
func inlineAbsSgn(items []*ir.Command) ([]*ir.Command, bool) {
	changed := false
	var out []*ir.Command
	for i := 0; i < len(items); i++ {
		c := items[i]
		if c.Kind != ir.CmdOperation || c.Name != ir.MnCall || len(c.Args) != 1 {
			out = append(out, c)
			continue
		}
		target := c.Args[0].Name()
		if target != "__ABS" && target != "__SGN" {
			out = append(out, c)
			continue
		}
		if len(out) == 0 {
			out = append(out, c)
			continue
		}
		argCmd := out[len(out)-1]
		if argCmd.Kind != ir.CmdOperation || argCmd.Name != ir.MnAssign || len(argCmd.Args) != 2 ||
			!argCmd.Args[1].IsScalar() || argCmd.Args[1].Name() != "__ARG_0" {
			out = append(out, c)
			continue
		}
		if i+1 >= len(items) {
			out = append(out, c)
			continue
		}
		retCmd := items[i+1]
		if retCmd.Kind != ir.CmdOperation || retCmd.Name != ir.MnAssign || len(retCmd.Args) != 2 ||
			!retCmd.Args[0].IsScalar() || retCmd.Args[0].Name() != "__RET" {
			out = append(out, c)
			continue
		}
		x := argCmd.Args[0]
		dst := retCmd.Args[1]
		out = out[:len(out)-1] // drop the "=,x,__ARG_0" assign
		if target == "__ABS" {
			out = append(out, expandAbs(x, dst, c.LineNum)...)
		} else {
			out = append(out, expandSgn(x, dst, c.LineNum)...)
		}
		i++ // consume the "=,__RET,dst" assign too
		changed = true
	}
	if !changed {
		return items, false
	}
	return out, true
}

// pass 16 (subset): redundant GA/GF simplification for a scalar that is
// never referenced between its GA and its GF.
func gaGfSimplification(items []*ir.Command) ([]*ir.Command, bool) {
	changed := false
	skip := make([]bool, len(items))
	for i, c := range items {
		if c.Kind != ir.CmdOperation || c.Name != ir.MnGlobalAlloc || len(c.Args) == 0 || !c.Args[0].IsScalar() {
			continue
		}
		name := c.Args[0].Name()
		used := false
		gfIdx := -1
		for j := i + 1; j < len(items); j++ {
			n := items[j]
			if n.Kind == ir.CmdOperation && n.Name == ir.MnGlobalFree && len(n.Args) > 0 && n.Args[0].Name() == name {
				gfIdx = j
				break
			}
			if usedInRange(items, j, j+1, name) {
				used = true
			}
		}
		if !used && gfIdx >= 0 {
			skip[i] = true
			skip[gfIdx] = true
			changed = true
		}
	}
	if !changed {
		return items, false
	}
	var out []*ir.Command
	for i, c := range items {
		if !skip[i] {
			out = append(out, c)
		}
	}
	return out, true
}
