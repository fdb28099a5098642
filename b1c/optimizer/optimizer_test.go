package optimizer_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/b1c/optimizer"
	"github.com/basic1rv32/toolchain/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lbl(name string) *ir.Command { return &ir.Command{Kind: ir.CmdLabel, Name: name} }

func op(name string, args ...ir.Arg) *ir.Command {
	return &ir.Command{Kind: ir.CmdOperation, Name: name, Args: args}
}

func scalar(v string, t ir.Type) ir.Arg { return ir.NewScalarArg(v, t) }

func buildCmds(items ...*ir.Command) *ir.Commands {
	cmds := ir.NewCommands("MAIN", 0, 0)
	cmds.Items = items
	return cmds
}

func TestOptimizeRemovesUnusedLabels(t *testing.T) {
	cmds := buildCmds(
		lbl("DEAD"),
		op(ir.MnAssign, scalar("1", ir.TypeInt), scalar("MAIN::X", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	for _, c := range cmds.Items {
		assert.False(t, c.IsLabel() && c.Name == "DEAD")
	}
}

func TestOptimizeKeepsReferencedLabels(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnJmp, scalar("L", ir.TypeLabel)),
		lbl("L"),
	)
	optimizer.Optimize(cmds)
	found := false
	for _, c := range cmds.Items {
		if c.IsLabel() && c.Name == "L" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDuplicateLabelMergeRedirectsJumps(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnJmp, scalar("A", ir.TypeLabel)),
		lbl("A"),
		lbl("B"),
		op(ir.MnAssign, scalar("1", ir.TypeInt), scalar("MAIN::X", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	var labels []string
	for _, c := range cmds.Items {
		if c.IsLabel() {
			labels = append(labels, c.Name)
		}
	}
	assert.Len(t, labels, 1, "duplicate adjacent labels collapse to one survivor")
}

func TestDeadCodeAfterTerminatorsDropped(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnRet),
		op(ir.MnAssign, scalar("1", ir.TypeInt), scalar("MAIN::X", ir.TypeInt)),
		lbl("AFTER"),
		op(ir.MnJmp, scalar("AFTER", ir.TypeLabel)),
	)
	optimizer.Optimize(cmds)
	for _, c := range cmds.Items {
		assert.False(t, c.Kind == ir.CmdOperation && c.Name == ir.MnAssign)
	}
}

func TestRedundantJumpRemoval(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnJmp, scalar("L", ir.TypeLabel)),
		lbl("L"),
		op(ir.MnAssign, scalar("1", ir.TypeInt), scalar("MAIN::X", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	for _, c := range cmds.Items {
		assert.False(t, c.Kind == ir.CmdOperation && c.Name == ir.MnJmp)
	}
}

func TestSelfAssignmentRemoval(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnAssign, scalar("MAIN::X", ir.TypeInt), scalar("MAIN::X", ir.TypeInt)),
		op(ir.MnAssign, scalar("1", ir.TypeInt), scalar("MAIN::Y", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	require.Len(t, cmds.Items, 1)
	assert.Equal(t, "MAIN::Y", cmds.Items[0].Args[1].Name())
}

func TestComparisonReductionFoldsConstantsAndBranch(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnEq, scalar("1", ir.TypeInt), scalar("1", ir.TypeInt)),
		op(ir.MnJf, scalar("ELSE", ir.TypeLabel)),
		op(ir.MnAssign, scalar("1", ir.TypeInt), scalar("MAIN::X", ir.TypeInt)),
		lbl("ELSE"),
	)
	optimizer.Optimize(cmds)
	for _, c := range cmds.Items {
		assert.NotEqual(t, ir.MnEq, c.Name)
		assert.NotEqual(t, ir.MnJf, c.Name)
	}
}

func TestUnaryConstantFold(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnNeg, scalar("5", ir.TypeInt), scalar("MAIN::X", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	require.Len(t, cmds.Items, 1)
	assert.Equal(t, ir.MnAssign, cmds.Items[0].Name)
	assert.Equal(t, "-5", cmds.Items[0].Args[0].Name())
}

func TestAlgebraicIdentityAddZero(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnAdd, scalar("MAIN::A", ir.TypeInt), scalar("0", ir.TypeInt), scalar("MAIN::X", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	require.Len(t, cmds.Items, 1)
	assert.Equal(t, ir.MnAssign, cmds.Items[0].Name)
	assert.Equal(t, "MAIN::A", cmds.Items[0].Args[0].Name())
}

func TestAlgebraicIdentityMulByNegOneNegates(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnMul, scalar("MAIN::A", ir.TypeInt), scalar("-1", ir.TypeInt), scalar("MAIN::X", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	require.Len(t, cmds.Items, 1)
	assert.Equal(t, ir.MnNeg, cmds.Items[0].Name)
}

func TestAlgebraicIdentityMulByZero(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnMul, scalar("MAIN::A", ir.TypeInt), scalar("0", ir.TypeInt), scalar("MAIN::X", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	require.Len(t, cmds.Items, 1)
	assert.Equal(t, ir.MnAssign, cmds.Items[0].Name)
	assert.Equal(t, "0", cmds.Items[0].Args[0].Name())
}

func TestZeroInitElisionDropsRedundantFirstWrite(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnLocalAlloc, scalar("MAIN::__LCL_0", ir.TypeVarRef), scalar("", ir.TypeInt)),
		op(ir.MnAssign, scalar("0", ir.TypeInt), scalar("MAIN::__LCL_0", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	for _, c := range cmds.Items {
		assert.False(t, c.Kind == ir.CmdOperation && c.Name == ir.MnAssign)
	}
}

func TestGaGfSimplificationDropsUnusedGlobal(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnGlobalAlloc, scalar("__VAR_X", ir.TypeInt)),
		op(ir.MnAssign, scalar("1", ir.TypeInt), scalar("MAIN::Y", ir.TypeInt)),
		op(ir.MnGlobalFree, scalar("__VAR_X", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	for _, c := range cmds.Items {
		assert.NotEqual(t, ir.MnGlobalAlloc, c.Name)
		assert.NotEqual(t, ir.MnGlobalFree, c.Name)
	}
}

func TestGaGfSimplificationKeepsUsedGlobal(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnGlobalAlloc, scalar("__VAR_X", ir.TypeInt)),
		op(ir.MnAssign, scalar("1", ir.TypeInt), scalar("__VAR_X", ir.TypeInt)),
		op(ir.MnGlobalFree, scalar("__VAR_X", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	var hasGA, hasGF bool
	for _, c := range cmds.Items {
		if c.Name == ir.MnGlobalAlloc {
			hasGA = true
		}
		if c.Name == ir.MnGlobalFree {
			hasGF = true
		}
	}
	assert.True(t, hasGA)
	assert.True(t, hasGF)
}

func TestImmediateFunctionFoldLen(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnAssign, scalar(`"abc"`, ir.TypeString), scalar("__ARG_0", ir.TypeString)),
		op(ir.MnCall, scalar("__LEN", ir.TypeLabel)),
		op(ir.MnAssign, scalar("__RET", ir.TypeWord), scalar("MAIN::__LCL_0", ir.TypeWord)),
	)
	optimizer.Optimize(cmds)
	require.Len(t, cmds.Items, 1)
	assert.Equal(t, ir.MnAssign, cmds.Items[0].Name)
	assert.Equal(t, "3", cmds.Items[0].Args[0].Name())
}

func TestImmediateFunctionFoldChrEscapesControlChar(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnAssign, scalar("10", ir.TypeByte), scalar("__ARG_0", ir.TypeByte)),
		op(ir.MnCall, scalar("__CHR", ir.TypeLabel)),
		op(ir.MnAssign, scalar("__RET", ir.TypeString), scalar("MAIN::__LCL_0", ir.TypeString)),
	)
	optimizer.Optimize(cmds)
	require.Len(t, cmds.Items, 1)
	assert.Equal(t, `"\n"`, cmds.Items[0].Args[0].Name())
}

func TestImmediateFunctionFoldCbyteTruncatesToWidth(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnAssign, scalar("300", ir.TypeLong), scalar("__ARG_0", ir.TypeLong)),
		op(ir.MnCall, scalar("__CBYTE", ir.TypeLabel)),
		op(ir.MnAssign, scalar("__RET", ir.TypeByte), scalar("MAIN::__LCL_0", ir.TypeByte)),
	)
	optimizer.Optimize(cmds)
	require.Len(t, cmds.Items, 1)
	assert.Equal(t, "44", cmds.Items[0].Args[0].Name()) // 300 mod 256
}

func TestInlineAbsUnsignedIsPlainCopy(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnAssign, scalar("MAIN::X", ir.TypeWord), scalar("__ARG_0", ir.TypeWord)),
		op(ir.MnCall, scalar("__ABS", ir.TypeLabel)),
		op(ir.MnAssign, scalar("__RET", ir.TypeLong), scalar("MAIN::__LCL_0", ir.TypeLong)),
	)
	optimizer.Optimize(cmds)
	for _, c := range cmds.Items {
		assert.NotEqual(t, ir.MnCall, c.Name)
	}
	require.Len(t, cmds.Items, 1)
	assert.Equal(t, ir.MnAssign, cmds.Items[0].Name)
	assert.Equal(t, "MAIN::X", cmds.Items[0].Args[0].Name())
}

func TestInlineAbsSignedExpandsBranches(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnAssign, scalar("MAIN::X", ir.TypeLong), scalar("__ARG_0", ir.TypeLong)),
		op(ir.MnCall, scalar("__ABS", ir.TypeLabel)),
		op(ir.MnAssign, scalar("__RET", ir.TypeLong), scalar("MAIN::__LCL_0", ir.TypeLong)),
	)
	optimizer.Optimize(cmds)
	var hasNeg bool
	for _, c := range cmds.Items {
		assert.NotEqual(t, ir.MnCall, c.Name)
		if c.Kind == ir.CmdOperation && c.Name == ir.MnNeg {
			hasNeg = true
		}
	}
	assert.True(t, hasNeg, "signed ABS expands to a conditional negate")
}

func TestComparisonReductionFoldsUnsignedOutOfRangeConstant(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnLt, scalar("MAIN::W", ir.TypeWord), scalar("0", ir.TypeWord)),
		op(ir.MnJt, scalar("L", ir.TypeLabel)),
		op(ir.MnAssign, scalar("1", ir.TypeInt), scalar("MAIN::Y", ir.TypeInt)),
		lbl("L"),
	)
	optimizer.Optimize(cmds)
	for _, c := range cmds.Items {
		assert.NotEqual(t, ir.MnLt, c.Name)
		assert.NotEqual(t, ir.MnJt, c.Name)
	}
	// "WORD < 0" is always false, so the guarded assignment always runs.
	var hasAssign bool
	for _, c := range cmds.Items {
		if c.Kind == ir.CmdOperation && c.Name == ir.MnAssign {
			hasAssign = true
		}
	}
	assert.True(t, hasAssign)
}

func TestZeroInitElisionElidesGAScalarZeroInit(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnGlobalAlloc, scalar("__VAR_X", ir.TypeVarRef), scalar("WORD", ir.TypeWord)),
		op(ir.MnAssign, scalar("0", ir.TypeWord), scalar("__VAR_X", ir.TypeWord)),
	)
	optimizer.Optimize(cmds)
	for _, c := range cmds.Items {
		assert.False(t, c.Kind == ir.CmdOperation && c.Name == ir.MnAssign)
	}
}

func TestZeroInitElisionKeepsVolatileGAScalarInit(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnGlobalAlloc, scalar("__VAR_X", ir.TypeVarRef), scalar("WORD:VOLATILE", ir.TypeWord)),
		op(ir.MnAssign, scalar("0", ir.TypeWord), scalar("__VAR_X", ir.TypeWord)),
	)
	optimizer.Optimize(cmds)
	var hasAssign bool
	for _, c := range cmds.Items {
		if c.Kind == ir.CmdOperation && c.Name == ir.MnAssign {
			hasAssign = true
		}
	}
	assert.True(t, hasAssign, "volatile globals keep their explicit init write")
}

func TestZeroInitElisionElidesIdenticalRepeatStore(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnLocalAlloc, scalar("MAIN::__LCL_0", ir.TypeVarRef), scalar("", ir.TypeInt)),
		op(ir.MnAssign, scalar("5", ir.TypeInt), scalar("MAIN::__LCL_0", ir.TypeInt)),
		op(ir.MnAssign, scalar("5", ir.TypeInt), scalar("MAIN::__LCL_0", ir.TypeInt)),
	)
	optimizer.Optimize(cmds)
	var assigns int
	for _, c := range cmds.Items {
		if c.Kind == ir.CmdOperation && c.Name == ir.MnAssign {
			assigns++
		}
	}
	assert.Equal(t, 1, assigns, "the second identical store is redundant")
}

func TestLocalVariableEliminationRewritesSingleRead(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnLocalAlloc, scalar("MAIN::__LCL_0", ir.TypeVarRef), scalar("", ir.TypeInt)),
		op(ir.MnAssign, scalar("MAIN::A", ir.TypeInt), scalar("MAIN::__LCL_0", ir.TypeInt)),
		op(ir.MnAdd, scalar("MAIN::__LCL_0", ir.TypeInt), scalar("1", ir.TypeInt), scalar("MAIN::X", ir.TypeInt)),
		op(ir.MnLocalFree, scalar("MAIN::__LCL_0", ir.TypeVarRef)),
	)
	optimizer.Optimize(cmds)
	for _, c := range cmds.Items {
		assert.NotEqual(t, ir.MnLocalAlloc, c.Name)
		assert.NotEqual(t, ir.MnLocalFree, c.Name)
		if c.Kind == ir.CmdOperation && c.Name == ir.MnAdd {
			assert.Equal(t, "MAIN::A", c.Args[0].Name())
		}
	}
}

func TestOptimizeConvergesWithinRoundLimit(t *testing.T) {
	cmds := buildCmds(
		op(ir.MnAdd, scalar("MAIN::A", ir.TypeInt), scalar("0", ir.TypeInt), scalar("MAIN::T1", ir.TypeInt)),
		op(ir.MnMul, scalar("MAIN::T1", ir.TypeInt), scalar("1", ir.TypeInt), scalar("MAIN::T2", ir.TypeInt)),
		op(ir.MnAssign, scalar("MAIN::T2", ir.TypeInt), scalar("MAIN::T2", ir.TypeInt)),
	)
	assert.NotPanics(t, func() { optimizer.Optimize(cmds) })
}
