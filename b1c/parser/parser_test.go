package parser_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/b1c/parser"
	"github.com/basic1rv32/toolchain/b1c/symbols"
	"github.com/basic1rv32/toolchain/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source []string) *ir.Commands {
	t.Helper()
	global := symbols.NewGlobal()
	p := parser.New("MAIN.bas", "MAIN", global, source)
	cmds, err := p.Run()
	require.NoError(t, err)
	return cmds
}

func names(cmds *ir.Commands) []string {
	var out []string
	for _, c := range cmds.Items {
		out = append(out, c.Name)
	}
	return out
}

func TestSimpleAssignment(t *testing.T) {
	cmds := run(t, []string{
		"10 LET X% = 5",
		"20 END",
	})
	assert.Contains(t, names(cmds), ir.MnAssign)
	assert.Contains(t, names(cmds), ir.MnEnd)
}

func TestBareAssignmentWithoutLet(t *testing.T) {
	cmds := run(t, []string{
		"10 X% = 1 + 2",
		"20 END",
	})
	assert.Contains(t, names(cmds), ir.MnAdd)
}

func TestIfThenElseBlockForm(t *testing.T) {
	cmds := run(t, []string{
		"10 IF X% > 0 THEN",
		"20 Y% = 1",
		"30 ELSE",
		"40 Y% = 2",
		"50 ENDIF",
		"60 END",
	})
	ns := names(cmds)
	assert.Contains(t, ns, ir.MnGt)
	assert.Contains(t, ns, ir.MnJf)
}

func TestIfSingleLineInlineStatement(t *testing.T) {
	cmds := run(t, []string{
		"10 IF X% > 0 THEN Y% = 1 ELSE Y% = 2",
		"20 END",
	})
	ns := names(cmds)
	assert.Contains(t, ns, ir.MnGt)
	assert.Contains(t, ns, ir.MnAssign)
}

func TestForNextEmitsCanonicalEndTest(t *testing.T) {
	cmds := run(t, []string{
		"10 FOR I% = 1 TO 10",
		"20 X% = I%",
		"30 NEXT I%",
		"40 END",
	})
	ns := names(cmds)
	assert.Contains(t, ns, ir.MnSub, "end-test computes v-limit")
	assert.Contains(t, ns, ir.MnMul, "end-test multiplies by sign(step)")
	assert.Contains(t, ns, ir.MnGt)
	assert.Contains(t, ns, ir.MnAdd, "NEXT advances v by step")
	assert.Contains(t, ns, ir.MnCall, "sign(step) goes through the SGN standard call")
}

func TestWhileWendLoop(t *testing.T) {
	cmds := run(t, []string{
		"10 WHILE X% < 10",
		"20 X% = X% + 1",
		"30 WEND",
		"40 END",
	})
	ns := names(cmds)
	assert.Contains(t, ns, ir.MnLt)
	assert.Contains(t, ns, ir.MnJmp)
}

func TestGotoGosubReturn(t *testing.T) {
	cmds := run(t, []string{
		"10 GOSUB 100",
		"20 GOTO 200",
		"100 RETURN",
		"200 END",
	})
	ns := names(cmds)
	assert.Contains(t, ns, ir.MnCall)
	assert.Contains(t, ns, ir.MnJmp)
	assert.Contains(t, ns, ir.MnRet)
}

func TestDimGlobalAllocRecord(t *testing.T) {
	cmds := run(t, []string{
		"10 DIM X AS WORD",
		"20 X = 1",
		"30 END",
	})
	found := false
	for _, c := range cmds.Items {
		if c.Name == ir.MnGlobalAlloc {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDefFunctionCallUsesArgConvention(t *testing.T) {
	cmds := run(t, []string{
		"10 DEF SQ(N) = N * N",
		"20 X% = SQ(5)",
		"30 END",
	})
	ns := names(cmds)
	assert.Contains(t, ns, ir.MnDefFn)
	assert.Contains(t, ns, ir.MnCall)
	assert.Contains(t, ns, ir.MnRetVal)
	var sawArgAssign bool
	for _, c := range cmds.Items {
		if c.Name == ir.MnAssign && len(c.Args) == 2 {
			if dst, ok := c.Dst(); ok && ir.FnArgIndex(dst.Name()) == 0 {
				sawArgAssign = true
			}
		}
	}
	assert.True(t, sawArgAssign, "call site assigns the actual into __ARG_0")
}

func TestDataReadRestore(t *testing.T) {
	cmds := run(t, []string{
		"10 DATA 1, 2, 3",
		"20 READ X%",
		"30 RESTORE",
		"40 READ X%",
		"50 END",
	})
	ns := names(cmds)
	assert.Contains(t, ns, ir.MnData)
	assert.Contains(t, ns, ir.MnRead)
	assert.Contains(t, ns, ir.MnRestore)
}

func TestPrintLiteralAndSeparators(t *testing.T) {
	cmds := run(t, []string{
		`10 PRINT "HELLO"`,
		"20 END",
	})
	assert.Contains(t, names(cmds), ir.MnOut)
}

func TestInputEmitsRetryLoop(t *testing.T) {
	cmds := run(t, []string{
		"10 INPUT X%",
		"20 END",
	})
	ns := names(cmds)
	assert.Contains(t, ns, ir.MnIn)
	assert.Contains(t, ns, ir.MnErr)
}

func TestStdFunctionCallLen(t *testing.T) {
	cmds := run(t, []string{
		`10 X% = LEN("HELLO")`,
		"20 END",
	})
	var sawCall bool
	for _, c := range cmds.Items {
		if c.Name == ir.MnCall && len(c.Args) == 1 && c.Args[0].Name() == "__LEN" {
			sawCall = true
		}
	}
	assert.True(t, sawCall)
}

func TestOnGotoLowersToCompareChain(t *testing.T) {
	cmds := run(t, []string{
		"10 ON X% GOTO 100, 200",
		"20 GOTO 300",
		"100 END",
		"200 END",
		"300 END",
	})
	ns := names(cmds)
	assert.Contains(t, ns, ir.MnEq)
	assert.Contains(t, ns, ir.MnJf)
}

func TestOptionExplicitRejectsUndeclared(t *testing.T) {
	global := symbols.NewGlobal()
	p := parser.New("MAIN.bas", "MAIN", global, []string{
		"10 OPTION EXPLICIT",
		"20 X% = 1",
		"30 END",
	})
	_, err := p.Run()
	assert.Error(t, err)
}

func TestCommentLinesAreSkipped(t *testing.T) {
	cmds := run(t, []string{
		"10 ' just a comment",
		"20 REM also a comment",
		"30 END",
	})
	var ops []string
	for _, c := range cmds.Items {
		if c.IsOperation() {
			ops = append(ops, c.Name)
		}
	}
	assert.Equal(t, []string{ir.MnNamespace, ir.MnEnd}, ops)
}
