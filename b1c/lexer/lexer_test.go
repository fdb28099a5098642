package lexer_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/b1c/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeLineNumber(t *testing.T) {
	line := lexer.Tokenize("100 LET X = 1")
	assert.Equal(t, int32(100), line.Number)
	require.Len(t, line.Tokens, 4)
	assert.Equal(t, "LET", line.Tokens[0].Text)
	assert.Equal(t, lexer.KindIdent, line.Tokens[0].Kind)
}

func TestTokenizeNoLineNumber(t *testing.T) {
	line := lexer.Tokenize("PRINT X")
	assert.Equal(t, int32(0), line.Number)
	require.Len(t, line.Tokens, 2)
	assert.Equal(t, "PRINT", line.Tokens[0].Text)
}

func TestTokenizeStringWithDoubledQuote(t *testing.T) {
	line := lexer.Tokenize(`PRINT "say ""hi"""`)
	require.Len(t, line.Tokens, 2)
	assert.Equal(t, lexer.KindString, line.Tokens[1].Kind)
	assert.Equal(t, `"say ""hi"""`, line.Tokens[1].Text)
}

func TestTokenizeMultiCharOperators(t *testing.T) {
	line := lexer.Tokenize("IF X <= 5 AND Y >= 2 THEN")
	var ops []string
	for _, tok := range line.Tokens {
		if tok.Kind == lexer.KindOp {
			ops = append(ops, tok.Text)
		}
	}
	assert.Contains(t, ops, "<=")
	assert.Contains(t, ops, ">=")
}

func TestTokenizeHexLiteral(t *testing.T) {
	line := lexer.Tokenize("X = 0xFF")
	require.Len(t, line.Tokens, 3)
	assert.Equal(t, lexer.KindNumber, line.Tokens[2].Kind)
	assert.Equal(t, "0xFF", line.Tokens[2].Text)
}

func TestTokenizeTypeSpecifierSuffix(t *testing.T) {
	line := lexer.Tokenize(`A$ = B%`)
	require.Len(t, line.Tokens, 3)
	assert.Equal(t, "A$", line.Tokens[0].Text)
	assert.Equal(t, "B%", line.Tokens[2].Text)
}

func TestTokenizeCommentForms(t *testing.T) {
	line := lexer.Tokenize("X = 1 ' trailing comment")
	last := line.Tokens[len(line.Tokens)-1]
	assert.Equal(t, lexer.KindComment, last.Kind)

	line2 := lexer.Tokenize("X = 1 REM trailing comment")
	last2 := line2.Tokens[len(line2.Tokens)-1]
	assert.Equal(t, lexer.KindComment, last2.Kind)
}

func TestTokenizeIdentifiersAreUppercased(t *testing.T) {
	line := lexer.Tokenize("let myvar = 1")
	assert.Equal(t, "LET", line.Tokens[0].Text)
	assert.Equal(t, "MYVAR", line.Tokens[1].Text)
}
