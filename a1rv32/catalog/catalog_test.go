package catalog_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/a1rv32/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateMetricOrdersSpeedOverSize(t *testing.T) {
	fast := catalog.Candidate{Speed: 2, SizeBytes: 0}
	slow := catalog.Candidate{Speed: 1, SizeBytes: 255}
	assert.Greater(t, fast.Metric(), slow.Metric())
}

func TestSignatureJoinsArgKinds(t *testing.T) {
	assert.Equal(t, "XV,XV,V", catalog.Signature([]bool{true, true, false}))
	assert.Equal(t, "V", catalog.Signature([]bool{false}))
}

func TestPredicateEqArgs(t *testing.T) {
	p := catalog.Predicate{Kind: catalog.PredEqArgs, A: 0, B: 1}
	assert.True(t, p.Eval([]int64{5, 5}))
	assert.False(t, p.Eval([]int64{5, 6}))
}

func TestPredicateNeZero(t *testing.T) {
	p := catalog.Predicate{Kind: catalog.PredNeZero, A: 0}
	assert.True(t, p.Eval([]int64{1}))
	assert.False(t, p.Eval([]int64{0}))
}

func TestPredicateNoneAlwaysPasses(t *testing.T) {
	p := catalog.Predicate{Kind: catalog.PredNone}
	assert.True(t, p.Eval(nil))
}

func TestAddAndLookupPreservesDeclarationOrder(t *testing.T) {
	c := &catalog.Catalog{}
	c.Add(catalog.Candidate{Mnemonic: "X", Signature: "V", VariantID: 0})
	c.Add(catalog.Candidate{Mnemonic: "X", Signature: "V", VariantID: 1})
	got := c.Lookup("x", "V")
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].VariantID)
	assert.Equal(t, 1, got[1].VariantID)
}

func TestVariantsFiltersAndSorts(t *testing.T) {
	c := &catalog.Catalog{}
	c.Add(catalog.Candidate{Mnemonic: "BEQ", Signature: "XV,XV,V", VariantID: 1})
	c.Add(catalog.Candidate{Mnemonic: "BEQ", Signature: "XV,XV,V", VariantID: 0})
	vs := c.Variants("BEQ", "XV,XV,V", 1)
	require.Len(t, vs, 1)
	assert.Equal(t, 1, vs[0].VariantID)
}

func TestHasMnemonicAndInvalidInstructionError(t *testing.T) {
	c := &catalog.Catalog{}
	c.Add(catalog.Candidate{Mnemonic: "ADD", Signature: "XV,XV,XV"})
	assert.True(t, c.HasMnemonic("add"))
	assert.False(t, c.HasMnemonic("bogus"))

	err := &catalog.ErrInvalidInstruction{Mnemonic: "BOGUS"}
	assert.Contains(t, err.Error(), "INVALID_INSTRUCTION")
}

func TestBuildCatalogRegistersCoreInstructions(t *testing.T) {
	c := catalog.BuildCatalog()
	for _, m := range []string{"ADD", "ADDI", "LW", "SW", "BEQ", "JAL", "JALR", "LUI", "CSRRW", "FENCE"} {
		assert.True(t, c.HasMnemonic(m), "expected %s to be registered", m)
	}
}

func TestBuildCatalogBranchHasTwoVariants(t *testing.T) {
	c := catalog.BuildCatalog()
	narrow := c.Lookup("BEQ", "XV,XV,V")
	require.NotEmpty(t, narrow)
	var sawWide bool
	for _, cand := range narrow {
		if cand.VariantID == 1 {
			sawWide = true
			assert.Equal(t, 8, cand.SizeBytes, "the wide BEQ fix-up emits an inverted branch plus a JAL")
		}
	}
	assert.True(t, sawWide)
}

func TestBuildCatalogRTypeUsesThreeRegisterSignature(t *testing.T) {
	c := catalog.BuildCatalog()
	cands := c.Lookup("ADD", "XV,XV,XV")
	require.NotEmpty(t, cands)
	var sawFullWidth bool
	for _, cand := range cands {
		if !cand.Compressed {
			assert.Equal(t, 4, cand.SizeBytes)
			sawFullWidth = true
		}
	}
	assert.True(t, sawFullWidth)
}
