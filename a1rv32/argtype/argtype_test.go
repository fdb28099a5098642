package argtype_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/a1rv32/argtype"
	"github.com/stretchr/testify/assert"
)

func TestImm12SRange(t *testing.T) {
	assert.True(t, argtype.Imm12S.Matches(-2048))
	assert.True(t, argtype.Imm12S.Matches(2047))
	assert.False(t, argtype.Imm12S.Matches(2048))
	assert.False(t, argtype.Imm12S.Matches(-2049))
}

func TestImm6SExcludesZero(t *testing.T) {
	assert.False(t, argtype.Imm6S.Matches(0))
	assert.True(t, argtype.Imm6S.Matches(1))
	assert.True(t, argtype.Imm6S.Matches(-1))
}

func TestOffset13MultipleOfTwo(t *testing.T) {
	assert.True(t, argtype.Offset13.Matches(4094))
	assert.False(t, argtype.Offset13.Matches(4093), "odd offsets are never encodable")
}

func TestImm7UMultipleOfFour(t *testing.T) {
	assert.True(t, argtype.Imm7U.Matches(0))
	assert.True(t, argtype.Imm7U.Matches(124))
	assert.False(t, argtype.Imm7U.Matches(3))
}

func TestRegClasses(t *testing.T) {
	assert.True(t, argtype.Reg.Matches(0))
	assert.True(t, argtype.Reg.Matches(31))
	assert.False(t, argtype.RegNZ.Matches(0), "x0 is excluded from the non-zero register class")
	assert.True(t, argtype.RegNZ.Matches(1))
	assert.True(t, argtype.CompReg.Matches(8))
	assert.False(t, argtype.CompReg.Matches(7), "x7 is outside the compressed register window")
	assert.True(t, argtype.RegSP.Matches(2))
	assert.False(t, argtype.RegSP.Matches(3))
	assert.True(t, argtype.RegZ.Matches(0))
	assert.False(t, argtype.RegNZNSP.Matches(2), "sp is excluded from REG_NZ_NSP")
	assert.True(t, argtype.RegNZNSP.Matches(3))
}

func TestIsRelOffset(t *testing.T) {
	assert.True(t, argtype.Offset21.IsRelOffset())
	assert.False(t, argtype.Imm12S.IsRelOffset())
}
