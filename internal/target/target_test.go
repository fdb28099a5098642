package target_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/internal/target"
	"github.com/stretchr/testify/assert"
)

func TestParseExtensionsBasic(t *testing.T) {
	set := target.ParseExtensions("IMC")
	assert.True(t, set.Has(target.ExtI))
	assert.True(t, set.Has(target.ExtM))
	assert.True(t, set.Has(target.ExtC))
	assert.False(t, set.Has(target.ExtE))
}

func TestParseExtensionsImpliesI(t *testing.T) {
	set := target.ParseExtensions("C")
	assert.True(t, set.Has(target.ExtI), "base I extension is always implied")
}

func TestParseExtensionsPseudoLetters(t *testing.T) {
	set := target.ParseExtensions("IZMMULZICSR")
	assert.True(t, set.HasZmmul())
	assert.True(t, set.HasZicsr())
}

func TestDefaultSettings(t *testing.T) {
	s := target.Default()
	assert.Equal(t, "STM8", s.MCU)
	assert.True(t, s.AutoCompInst)
	assert.Equal(t, uint32(256), s.StackSize)
	assert.Equal(t, uint32(256), s.HeapSize)
	assert.Equal(t, "small", s.MemoryModel)
	assert.True(t, s.Extensions.Has(target.ExtI))
	assert.True(t, s.Extensions.Has(target.ExtC))
}

func TestGetAutoCompInst(t *testing.T) {
	s := target.Default()
	assert.True(t, s.GetAutoCompInst())
	s.AutoCompInst = false
	assert.False(t, s.GetAutoCompInst())

	s2 := target.Settings{Extensions: target.ParseExtensions("I"), AutoCompInst: true}
	assert.False(t, s2.GetAutoCompInst(), "no C extension means no auto compressed substitution")
}

func TestCodeAlignment(t *testing.T) {
	withC := target.Settings{Extensions: target.ParseExtensions("IC")}
	assert.Equal(t, uint32(2), withC.CodeAlignment())

	withoutC := target.Settings{Extensions: target.ParseExtensions("I")}
	assert.Equal(t, uint32(4), withoutC.CodeAlignment())
}
