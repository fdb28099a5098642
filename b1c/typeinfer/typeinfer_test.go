package typeinfer_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/b1c/typeinfer"
	"github.com/basic1rv32/toolchain/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(name string, args ...ir.Arg) *ir.Command {
	return &ir.Command{Kind: ir.CmdOperation, Name: name, Args: args}
}

func scalar(v string, t ir.Type) ir.Arg { return ir.NewScalarArg(v, t) }

func TestInferRebindsStaleOperandType(t *testing.T) {
	cmds := []*ir.Command{
		op(ir.MnGlobalAlloc, scalar("X", ir.TypeVarRef), scalar("WORD", ir.TypeWord)),
		op(ir.MnAdd, scalar("X", ir.TypeByte), scalar("1", ir.TypeByte), scalar("Y", ir.TypeByte)),
	}
	changed := typeinfer.Infer(cmds)
	require.True(t, changed)
	assert.Equal(t, ir.TypeWord, cmds[1].Args[0][0].Type)
}

func TestInferLeavesAgreeingOperandsAlone(t *testing.T) {
	cmds := []*ir.Command{
		op(ir.MnGlobalAlloc, scalar("X", ir.TypeVarRef), scalar("WORD", ir.TypeWord)),
		op(ir.MnAdd, scalar("X", ir.TypeWord), scalar("1", ir.TypeWord), scalar("Y", ir.TypeWord)),
	}
	changed := typeinfer.Infer(cmds)
	assert.False(t, changed)
}

func TestInferLeavesImmediateLiteralsAlone(t *testing.T) {
	cmds := []*ir.Command{
		op(ir.MnLocalAlloc, scalar("L", ir.TypeVarRef), scalar("", ir.TypeByte)),
		op(ir.MnAssign, scalar("5", ir.TypeByte), scalar("L", ir.TypeByte)),
	}
	changed := typeinfer.Infer(cmds)
	assert.False(t, changed)
	assert.Equal(t, "5", cmds[1].Args[0][0].Value)
	assert.Equal(t, ir.TypeByte, cmds[1].Args[0][0].Type)
}

func TestInferRebindsSubscriptedElement(t *testing.T) {
	cmds := []*ir.Command{
		op(ir.MnGlobalAlloc, scalar("A", ir.TypeVarRef), scalar("LONG", ir.TypeLong), scalar("10", ir.TypeWord)),
		op(ir.MnAssign, scalar("0", ir.TypeInt),
			ir.Arg{ir.NewTypedValue("A", ir.TypeInt), ir.NewTypedValue("0", ir.TypeWord)}),
	}
	changed := typeinfer.Infer(cmds)
	require.True(t, changed)
	assert.Equal(t, ir.TypeLong, cmds[1].Args[1][0].Type)
}
