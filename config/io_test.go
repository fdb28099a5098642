package config_test

import (
	"strings"
	"testing"

	"github.com/basic1rv32/toolchain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIOTableSectionAndAliases(t *testing.T) {
	src := `[UART0,SERIAL,COM1]
OPEN,1,VOID,INT,INLINE,,,0,,,0
`
	table, err := config.ParseIOTable(strings.NewReader(src))
	require.NoError(t, err)
	sec, ok := table.Lookup("UART0")
	require.True(t, ok)
	assert.Equal(t, []string{"SERIAL", "COM1"}, sec.Aliases)

	byAlias, ok := table.Lookup("com1")
	require.True(t, ok)
	assert.Same(t, sec, byAlias)
}

func TestParseIOTableCommandRowFields(t *testing.T) {
	src := `[UART0]
WRITE,2,BYTE,VOID,INLINE,uart.c,0xFF,1,VARREF,extra,1
`
	table, err := config.ParseIOTable(strings.NewReader(src))
	require.NoError(t, err)
	sec, ok := table.Lookup("UART0")
	require.True(t, ok)
	cmd, ok := sec.Commands["WRITE"]
	require.True(t, ok)
	assert.Equal(t, 2, cmd.ID)
	assert.Equal(t, "BYTE", cmd.CallType)
	assert.True(t, cmd.AcceptsData)
	assert.Equal(t, "VARREF", cmd.DataType)
	assert.True(t, cmd.PredefOnly)
}

func TestParseIOTableCommandRowWithPredefinedValues(t *testing.T) {
	src := `[GPIO]
MODE,1,BYTE,VOID,INLINE,,,0,,,0,2,IN,0,OUT,1,IN
`
	table, err := config.ParseIOTable(strings.NewReader(src))
	require.NoError(t, err)
	sec, _ := table.Lookup("GPIO")
	cmd := sec.Commands["MODE"]
	require.Len(t, cmd.Values, 2)
	assert.Equal(t, "IN", cmd.Values[0].Name)
	assert.Equal(t, "0", cmd.Values[0].Value)
	assert.Equal(t, "IN", cmd.Default)
}

func TestParseIOTableRejectsRowBeforeSection(t *testing.T) {
	_, err := config.ParseIOTable(strings.NewReader("A,1,B,C,D,,,0,,,0\n"))
	assert.Error(t, err)
}

func TestParseIOTableRejectsUnterminatedHeader(t *testing.T) {
	_, err := config.ParseIOTable(strings.NewReader("[UART0\n"))
	assert.Error(t, err)
}

func TestLookupUnknownNameFails(t *testing.T) {
	table, err := config.ParseIOTable(strings.NewReader("[UART0]\n"))
	require.NoError(t, err)
	_, ok := table.Lookup("NOPE")
	assert.False(t, ok)
}
