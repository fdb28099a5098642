package bitenc_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/a1rv32/bitenc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplateLiteralAndExtractFields(t *testing.T) {
	toks, err := bitenc.ParseTemplate("0:7 {1:0:5} 0:3 {0:0:5} 33:7")
	require.NoError(t, err)
	require.Len(t, toks, 5)
	assert.True(t, toks[0].Literal)
	assert.Equal(t, 7, toks[0].Width)
	assert.False(t, toks[1].Literal)
	assert.Equal(t, 1, toks[1].ArgIndex)
}

func TestParseTemplateRejectsMalformedLiteral(t *testing.T) {
	_, err := bitenc.ParseTemplate("bad")
	assert.Error(t, err)
}

func TestParseTemplateRejectsUnterminatedExtraction(t *testing.T) {
	_, err := bitenc.ParseTemplate("{0:0:5")
	assert.Error(t, err)
}

func TestSegmentsSplitsOnSeparator(t *testing.T) {
	toks, err := bitenc.ParseTemplate("0:10 | 1:10")
	require.NoError(t, err)
	segs := bitenc.Segments(toks)
	require.Len(t, segs, 2)
	assert.Len(t, segs[0], 1)
	assert.Len(t, segs[1], 1)
}

func TestEncodeAddiLikeInstruction(t *testing.T) {
	// funct7(7)=0000000, rs2(5)=00011(3), rs1(5)=00010(2), funct3(3)=000, rd(5)=00001(1), opcode(7)=0010011
	template := "0:7 {1:0:5} {0:0:5} 0:3 {2:0:5} 13:7"
	out, err := bitenc.Encode(template, []int32{2, 3, 1})
	require.NoError(t, err)
	require.Len(t, out, 4)
}

func TestEncodeRejectsOutOfRangeArgIndex(t *testing.T) {
	_, err := bitenc.Encode("{5:0:5} 0:11", []int32{1})
	assert.Error(t, err)
}

func TestEncodeRejectsLiteralTooWide(t *testing.T) {
	_, err := bitenc.Encode("100:4", nil)
	assert.Error(t, err)
}

func TestEncodeAppliesPostfixToExtractedArg(t *testing.T) {
	out, err := bitenc.Encode("{0.L12:0:c} 0:4", []int32{0x12345})
	require.NoError(t, err)
	require.Len(t, out, 2)
}
