package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/basic1rv32/toolchain/b1c/lexer"
	"github.com/basic1rv32/toolchain/internal/ir"
)

// scanKeywordTopLevel finds the token index of an uppercased identifier
// keyword at parenthesis depth 0, or -1.
func scanKeywordTopLevel(toks []lexer.Token, kw string) int {
	depth := 0
	for i, t := range toks {
		switch t.Text {
		case "(":
			depth++
		case ")":
			depth--
		}
		if depth == 0 && t.Kind == lexer.KindIdent && t.Text == kw {
			return i
		}
	}
	return -1
}

// splitTopLevelCommaToks splits toks on depth-0 commas.
func splitTopLevelCommaToks(toks []lexer.Token) [][]lexer.Token {
	var out [][]lexer.Token
	depth := 0
	start := 0
	for i, t := range toks {
		switch t.Text {
		case "(":
			depth++
		case ")":
			depth--
		case ",":
			if depth == 0 {
				out = append(out, toks[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, toks[start:])
	return out
}

func tokensText(toks []lexer.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

func mustInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 0, 64)
	return v
}

func (p *Parser) evalConstInt(toks []lexer.Token) int64 {
	if len(toks) == 1 && toks[0].Kind == lexer.KindNumber {
		return mustInt(toks[0].Text)
	}
	if len(toks) == 1 && toks[0].Kind == lexer.KindIdent {
		if v, ok := p.NS.Lookup(toks[0].Text); ok && v.IsConst && len(v.InitValues) > 0 {
			return mustInt(v.InitValues[0])
		}
	}
	// Fallback: sum of numeric tokens, good enough for simple constant
	// arithmetic in DIM bounds without re-entering the full expression
	// translator (which would emit IR during a declarations-only pass).
	var v int64
	sign := int64(1)
	for _, t := range toks {
		switch {
		case t.Text == "-":
			sign = -1
		case t.Kind == lexer.KindNumber:
			v += sign * mustInt(t.Text)
			sign = 1
		}
	}
	return v
}

func typeFromKeyword(kw string) ir.Type {
	switch strings.ToUpper(kw) {
	case "BYTE":
		return ir.TypeByte
	case "INT":
		return ir.TypeInt
	case "WORD":
		return ir.TypeWord
	case "LONG":
		return ir.TypeLong
	case "STRING":
		return ir.TypeString
	default:
		return ir.TypeWord
	}
}

// tokensToLiteralStrings renders a top-level-comma-separated initializer
// list (scalar or parenthesized list) as literal text values, preserving
// BASIC string-literal quoting.
func tokensToLiteralStrings(toks []lexer.Token) []string {
	if len(toks) > 0 && toks[0].Text == "(" && toks[len(toks)-1].Text == ")" {
		toks = toks[1 : len(toks)-1]
	}
	var out []string
	for _, part := range splitTopLevelCommaToks(toks) {
		out = append(out, tokensText(part))
	}
	return out
}

// ulbLabel renders the source-line label name for a BASIC line number
// token's text (spec §4.8: GOTO/GOSUB targets are "__ULB_<n>").
func (p *Parser) ulbLabel(numText string) string {
	return fmt.Sprintf("%s__ULB_%s", p.Cmds.NamePrefix(), numText)
}

// execInline runs one statement embedded in the remainder of a line
// (single-line "IF cond THEN stmt [ELSE stmt]" form, spec §4.8).
func (p *Parser) execInline(toks []lexer.Token) error {
	if len(toks) == 0 {
		return nil
	}
	return p.statement(lexer.Line{Tokens: toks})
}
