package diag_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionString(t *testing.T) {
	assert.Equal(t, "foo.bas:10", diag.Position{File: "foo.bas", Line: 10}.String())
	assert.Equal(t, "foo.bas:10:4", diag.Position{File: "foo.bas", Line: 10, Column: 4}.String())
}

func TestDiagError(t *testing.T) {
	d := diag.New(diag.Position{File: "a.bas", Line: 3}, diag.KindTypeMismatch, "STRING vs INT")
	assert.Contains(t, d.Error(), "type mismatch")
	assert.Contains(t, d.Error(), "a.bas:3")
	assert.Contains(t, d.Error(), "STRING vs INT")
}

func TestDiagWithContext(t *testing.T) {
	d := diag.NewWithContext(diag.Position{File: "a.bas", Line: 3}, diag.KindSyntax, "bad token", "LET X =")
	assert.Contains(t, d.Error(), "LET X =")
}

func TestListAccumulatesAndMerges(t *testing.T) {
	l := &diag.List{}
	assert.False(t, l.HasErrors())

	l.AddError(diag.New(diag.Position{File: "a.bas", Line: 1}, diag.KindSyntax, "oops"))
	l.AddWarning(&diag.Warning{Pos: diag.Position{File: "a.bas", Line: 2}, Message: "unused variable X"})
	require.True(t, l.HasErrors())
	assert.Equal(t, l.Errors[0], l.First())

	other := &diag.List{}
	other.AddError(diag.New(diag.Position{File: "b.bas", Line: 5}, diag.KindUnknownIdentifier, "Y"))
	l.Merge(other)

	assert.Len(t, l.Errors, 2)
	assert.Contains(t, l.PrintWarnings(), "unused variable X")
	assert.Contains(t, l.Error(), "oops")
	assert.Contains(t, l.Error(), "Y")
}

func TestListMergeNil(t *testing.T) {
	l := &diag.List{}
	l.Merge(nil)
	assert.False(t, l.HasErrors())
}

func TestKindStringUnknown(t *testing.T) {
	assert.Contains(t, diag.Kind(9999).String(), "Kind(9999)")
}
