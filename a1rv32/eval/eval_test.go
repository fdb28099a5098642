package eval_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/a1rv32/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPostfixL12H20Reconstruct(t *testing.T) {
	value := int32(0x12345678)
	lo, err := eval.ApplyPostfix(value, "L12")
	require.NoError(t, err)
	hi, err := eval.ApplyPostfix(value, "H20")
	require.NoError(t, err)
	assert.Equal(t, value, (hi<<12)+lo)
}

func TestApplyPostfixHalvingLetters(t *testing.T) {
	v, err := eval.ApplyPostfix(0x12345678, "H")
	require.NoError(t, err)
	assert.Equal(t, int32(0x1234), v)

	v, err = eval.ApplyPostfix(0x12345678, "L")
	require.NoError(t, err)
	assert.Equal(t, int32(0x5678), v)

	v, err = eval.ApplyPostfix(0x12345678, "HL")
	require.NoError(t, err)
	assert.Equal(t, int32(0x34), v)
}

func TestApplyPostfixUnknownErrors(t *testing.T) {
	_, err := eval.ApplyPostfix(1, "Q")
	assert.Error(t, err)
}

func TestSplitPostfix(t *testing.T) {
	base, postfix, ok := eval.SplitPostfix("3.H20")
	assert.True(t, ok)
	assert.Equal(t, "3", base)
	assert.Equal(t, "H20", postfix)

	_, _, ok = eval.SplitPostfix("label")
	assert.False(t, ok)
}

func TestRegisterIndexAliasesAndNumeric(t *testing.T) {
	idx, ok := eval.RegisterIndex("sp")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = eval.RegisterIndex("x2")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = eval.RegisterIndex("x32")
	assert.False(t, ok)
}

func TestIsCompressedRegister(t *testing.T) {
	assert.True(t, eval.IsCompressedRegister(8))
	assert.False(t, eval.IsCompressedRegister(7))
	assert.False(t, eval.IsCompressedRegister(16))
}

func TestLookupCSR(t *testing.T) {
	addr, ok := eval.LookupCSR("mstatus")
	require.True(t, ok)
	assert.Equal(t, int64(0x300), addr)

	_, ok = eval.LookupCSR("nope")
	assert.False(t, ok)
}

func TestEvalFenceSet(t *testing.T) {
	v, ok := eval.EvalFenceSet("iorw")
	require.True(t, ok)
	assert.Equal(t, int64(15), v)

	v, ok = eval.EvalFenceSet("rw")
	require.True(t, ok)
	assert.Equal(t, int64(3), v)

	_, ok = eval.EvalFenceSet("x")
	assert.False(t, ok)
}

func TestLookupConstant(t *testing.T) {
	v, ok := eval.LookupConstant("TRUE")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
}

type fakeLabels map[string]int64

func (f fakeLabels) ResolveLabel(name string) (int64, bool) {
	v, ok := f[name]
	return v, ok
}

func TestEvaluatorArithmeticPrecedence(t *testing.T) {
	e := eval.NewEvaluator(nil)
	v, ok, err := e.Eval("2 + 3 * 4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(14), v)
}

func TestEvaluatorParensAndShift(t *testing.T) {
	e := eval.NewEvaluator(nil)
	v, ok, err := e.Eval("(1 + 1) << 4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(32), v)
}

func TestEvaluatorUnresolvedLabelReturnsNotOk(t *testing.T) {
	e := eval.NewEvaluator(nil)
	_, ok, err := e.Eval("UNKNOWN_LABEL")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluatorResolvesLabel(t *testing.T) {
	e := eval.NewEvaluator(fakeLabels{"LOOP": 0x1000})
	v, ok, err := e.Eval("LOOP + 4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(0x1004), v)
}

func TestEvaluatorDivideByZero(t *testing.T) {
	e := eval.NewEvaluator(nil)
	_, _, err := e.Eval("1 / 0")
	assert.Error(t, err)
}

func TestEvaluatorHexAndCharLiterals(t *testing.T) {
	e := eval.NewEvaluator(nil)
	v, ok, err := e.Eval("0x10")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(16), v)

	v, ok, err = e.Eval("'A'")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(65), v)
}

func TestEvalPostfixedAppliesTransform(t *testing.T) {
	e := eval.NewEvaluator(nil)
	v, ok, err := e.EvalPostfixed("0x12345.L12")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int32(0x345), v)
}
