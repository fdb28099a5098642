package compiler_test

import (
	"testing"

	"github.com/basic1rv32/toolchain/b1c/compiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSingleFile(t *testing.T) {
	files := []compiler.File{
		{Name: "MAIN.bas", Source: []string{
			"10 LET X% = 1 + 2",
			"20 END",
		}},
	}
	res, err := compiler.Compile(files, compiler.Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Commands)
}

func TestCompileNoOptimizeKeepsRedundantAssignment(t *testing.T) {
	files := []compiler.File{
		{Name: "MAIN.bas", Source: []string{
			"10 X% = 0",
			"20 X% = 0",
			"30 END",
		}},
	}
	withOpt, err := compiler.Compile(files, compiler.Options{})
	require.NoError(t, err)
	withoutOpt, err := compiler.Compile(files, compiler.Options{NoOptimize: true})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(withOpt.Commands), len(withoutOpt.Commands))
}

func TestCompileMultiFileSharesGlobalTable(t *testing.T) {
	files := []compiler.File{
		{Name: "A.bas", Source: []string{
			"10 DIM GLOBAL G AS WORD",
			"20 G = 1",
			"30 END",
		}},
		{Name: "B.bas", Source: []string{
			"10 G = 2",
			"20 END",
		}},
	}
	res, err := compiler.Compile(files, compiler.Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Commands)
}

func TestCompileReportsErrors(t *testing.T) {
	files := []compiler.File{
		{Name: "MAIN.bas", Source: []string{
			"10 OPTION EXPLICIT",
			"20 X% = 1",
			"30 END",
		}},
	}
	_, err := compiler.Compile(files, compiler.Options{})
	assert.Error(t, err)
}

func TestCompileNoInputFiles(t *testing.T) {
	_, err := compiler.Compile(nil, compiler.Options{})
	assert.Error(t, err)
}

func TestEmitProducesIRText(t *testing.T) {
	files := []compiler.File{
		{Name: "MAIN.bas", Source: []string{
			"10 LET X% = 5",
			"20 END",
		}},
	}
	res, err := compiler.Compile(files, compiler.Options{})
	require.NoError(t, err)
	text := compiler.Emit(res, compiler.Options{}, func(int32) string { return "" })
	assert.Contains(t, text, "END")
}
