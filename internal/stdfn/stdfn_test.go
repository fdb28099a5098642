package stdfn_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/internal/ir"
	"github.com/basic1rv32/toolchain/internal/stdfn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistsAndGet(t *testing.T) {
	assert.True(t, stdfn.Exists("LEN"))
	assert.False(t, stdfn.Exists("NOPE"))

	fn := stdfn.Get("MID$")
	require.NotNil(t, fn)
	assert.Equal(t, ir.TypeString, fn.Ret)
	require.Len(t, fn.Args, 3)
	assert.True(t, fn.Args[2].Optional)
	assert.Equal(t, "32767", fn.Args[2].Default)
}

func TestInternalName(t *testing.T) {
	assert.Equal(t, "__LEN", stdfn.InternalName("LEN"))
	assert.Equal(t, "", stdfn.InternalName("NOPE"))
}

func TestIsAssignable(t *testing.T) {
	assert.True(t, stdfn.IsAssignable(ir.TypeInt, ir.TypeInt))
	assert.True(t, stdfn.IsAssignable(ir.TypeByte, ir.TypeLong))
	assert.False(t, stdfn.IsAssignable(ir.TypeString, ir.TypeInt))
}

func TestIIFIsPseudoFunction(t *testing.T) {
	fn := stdfn.Get("IIF")
	require.NotNil(t, fn)
	assert.Equal(t, ir.TypeUnknown, fn.Ret)
	require.Len(t, fn.Args, 3)
	assert.Equal(t, ir.TypeByte, fn.Args[0].Type)
}
