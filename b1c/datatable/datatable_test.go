package datatable_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/b1c/datatable"
	"github.com/basic1rv32/toolchain/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tv(v string) ir.TypedValue { return ir.NewTypedValue(v, ir.TypeInt) }

func TestNextWalksRowsInOrder(t *testing.T) {
	dt := datatable.New()
	dt.AddRow(10, []ir.TypedValue{tv("1"), tv("2")})
	dt.AddRow(20, []ir.TypedValue{tv("3")})

	v, ok := dt.Next()
	require.True(t, ok)
	assert.Equal(t, "1", v.Value)

	v, ok = dt.Next()
	require.True(t, ok)
	assert.Equal(t, "2", v.Value)

	v, ok = dt.Next()
	require.True(t, ok)
	assert.Equal(t, "3", v.Value)

	_, ok = dt.Next()
	assert.False(t, ok, "table is exhausted")
}

func TestRestoreZeroResetsToStart(t *testing.T) {
	dt := datatable.New()
	dt.AddRow(10, []ir.TypedValue{tv("1")})
	dt.AddRow(20, []ir.TypedValue{tv("2")})
	dt.Next()
	dt.Next()

	assert.True(t, dt.Restore(0))
	v, ok := dt.Next()
	require.True(t, ok)
	assert.Equal(t, "1", v.Value)
}

func TestRestoreToLineFindsFirstRowAtOrAfter(t *testing.T) {
	dt := datatable.New()
	dt.AddRow(10, []ir.TypedValue{tv("1")})
	dt.AddRow(20, []ir.TypedValue{tv("2")})
	dt.AddRow(30, []ir.TypedValue{tv("3")})

	require.True(t, dt.Restore(15))
	v, ok := dt.Next()
	require.True(t, ok)
	assert.Equal(t, "2", v.Value)
}

func TestRestorePastEndFails(t *testing.T) {
	dt := datatable.New()
	dt.AddRow(10, []ir.TypedValue{tv("1")})
	assert.False(t, dt.Restore(100))
}

func TestLen(t *testing.T) {
	dt := datatable.New()
	dt.AddRow(10, []ir.TypedValue{tv("1"), tv("2")})
	dt.AddRow(20, []ir.TypedValue{tv("3")})
	assert.Equal(t, 3, dt.Len())
}
