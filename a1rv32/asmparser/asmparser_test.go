package asmparser_test

import (
	"strings"
	"testing"

	"github.com/basic1rv32/toolchain/a1rv32/asmparser"
	"github.com/basic1rv32/toolchain/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabelAndOperation(t *testing.T) {
	src := ":LOOP\nADDI,X1,X1,1\n"
	prog, err := asmparser.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)
	assert.True(t, prog.Statements[0].IsLabel)
	assert.Equal(t, "LOOP", prog.Statements[0].Label)
	assert.False(t, prog.Statements[1].IsLabel)
	assert.Equal(t, "ADDI", prog.Statements[1].Mnemonic)
}

func TestParseSkipsBlankLines(t *testing.T) {
	src := "\n\nADDI,X1,X0,0\n\n"
	prog, err := asmparser.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
}

func TestParseUppercasesMnemonic(t *testing.T) {
	prog, err := asmparser.Parse(strings.NewReader("addi,x1,x0,0\n"))
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
	assert.Equal(t, "ADDI", prog.Statements[0].Mnemonic)
}

func TestFlattenScalarArgs(t *testing.T) {
	args := []ir.Arg{
		{ir.NewTypedValue("X1", ir.TypeInt)},
		{ir.NewTypedValue("4", ir.TypeInt)},
	}
	slots := asmparser.Flatten(args)
	require.Len(t, slots, 2)
	assert.Equal(t, "X1", slots[0].Expr)
	assert.Equal(t, "4", slots[1].Expr)
}

func TestFlattenCompositeArgExpandsBaseFirst(t *testing.T) {
	args := []ir.Arg{
		{ir.NewTypedValue("4", ir.TypeInt), ir.NewTypedValue("X1", ir.TypeInt)},
	}
	slots := asmparser.Flatten(args)
	require.Len(t, slots, 2)
	assert.Equal(t, "4", slots[0].Expr)
	assert.Equal(t, "X1", slots[1].Expr)
}

func isReg(s string) bool {
	return s == "X1" || s == "X2"
}

func TestSignatureScalarRegisterAndValue(t *testing.T) {
	args := []ir.Arg{
		{ir.NewTypedValue("X1", ir.TypeInt)},
		{ir.NewTypedValue("X2", ir.TypeInt)},
		{ir.NewTypedValue("7", ir.TypeInt)},
	}
	sig := asmparser.Signature(args, isReg)
	assert.Equal(t, "XV,XV,V", sig)
}

func TestSignatureCompositeLoadStoreForm(t *testing.T) {
	args := []ir.Arg{
		{ir.NewTypedValue("X1", ir.TypeInt)},
		{ir.NewTypedValue("4", ir.TypeInt), ir.NewTypedValue("X2", ir.TypeInt)},
	}
	sig := asmparser.Signature(args, isReg)
	assert.Equal(t, "XV,V(XV)", sig)
}
