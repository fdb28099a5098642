package ir_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsEmitAndEncode(t *testing.T) {
	cmds := ir.NewCommands("MAIN", 0, 0)
	lbl := cmds.EmitLabel()
	cmds.Emit(ir.MnAssign, ir.NewScalarArg("5", ir.TypeInt), ir.NewScalarArg("MAIN::X", ir.TypeInt))
	loc := cmds.EmitLocal(ir.TypeByte)
	cmds.EmitLocalFree(loc)

	require.Len(t, cmds.Items, 4)
	assert.True(t, cmds.Items[0].IsLabel())
	assert.Equal(t, lbl, cmds.Items[0].Name)
	assert.True(t, cmds.Items[1].IsOperation())
	assert.Equal(t, ir.MnLocalAlloc, cmds.Items[2].Name)
	assert.Equal(t, ir.MnLocalFree, cmds.Items[3].Name)
}

func TestCommandDstAndSrcs(t *testing.T) {
	cmd := &ir.Command{
		Kind: ir.CmdOperation,
		Name: ir.MnAdd,
		Args: []ir.Arg{
			ir.NewScalarArg("A", ir.TypeInt),
			ir.NewScalarArg("B", ir.TypeInt),
			ir.NewScalarArg("C", ir.TypeInt),
		},
	}
	dst, ok := cmd.Dst()
	require.True(t, ok)
	assert.Equal(t, "C", dst.Name())
	srcs := cmd.Srcs()
	require.Len(t, srcs, 2)
	assert.Equal(t, "A", srcs[0].Name())
	assert.Equal(t, "B", srcs[1].Name())

	assert.True(t, cmd.IsDst("C"))
	assert.False(t, cmd.IsDst("A"))
	assert.True(t, cmd.IsSrc("A"))
	assert.True(t, cmd.IsUsed("B"))
	assert.False(t, cmd.IsUsed("Z"))
}

func TestCommandMayTouchAnyGlobal(t *testing.T) {
	call := &ir.Command{Kind: ir.CmdOperation, Name: ir.MnCall}
	assign := &ir.Command{Kind: ir.CmdOperation, Name: ir.MnAssign}
	asm := &ir.Command{Kind: ir.CmdInlineAsm}
	assert.True(t, call.MayTouchAnyGlobal())
	assert.False(t, assign.MayTouchAnyGlobal())
	assert.True(t, asm.MayTouchAnyGlobal())
}

func TestFnArgIndex(t *testing.T) {
	assert.Equal(t, 0, ir.FnArgIndex("__ARG_0"))
	assert.Equal(t, 3, ir.FnArgIndex("NS::__ARG_3"))
	assert.Equal(t, -1, ir.FnArgIndex("NS::X"))
}

func TestIsGenLocalAndLabel(t *testing.T) {
	assert.True(t, ir.IsGenLocal("MAIN::__LCL_2"))
	assert.False(t, ir.IsGenLocal("MAIN::X"))
	assert.True(t, ir.IsGenLabel("MAIN::__ALB_1"))
	assert.True(t, ir.IsSourceLabel("MAIN::__ULB_100"))
}
